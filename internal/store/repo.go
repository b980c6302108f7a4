package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// SessionEventData captures a session lifecycle marker. The counters are
// only meaningful on the end action.
type SessionEventData struct {
	SessionID    string
	Mode         string
	Action       string
	Answered     int
	Correct      int
	BestStreak   int
	FinalStreak  int
	DurationSecs int
}

// AnswerEventData captures one graded answer or skip.
type AnswerEventData struct {
	SessionID  string
	QuestionID int
	Prompt     string
	Answer     string
	Skipped    bool
	Correct    bool
	Remaining  int
	Streak     int
	TimeMs     int
}

// SessionSummaryRecord is one finished session as shown in history.
type SessionSummaryRecord struct {
	SessionID    string
	Mode         string
	Timestamp    time.Time
	Answered     int
	Correct      int
	BestStreak   int
	FinalStreak  int
	DurationSecs int
}

// AnswerRecord is one journaled answer as shown in a session detail view.
type AnswerRecord struct {
	QuestionID int
	Prompt     string
	Answer     string
	Skipped    bool
	Correct    bool
	Streak     int
	TimeMs     int
	Timestamp  time.Time
}

// Totals aggregates the whole local history for the stats command.
type Totals struct {
	Sessions   int
	Answered   int
	Correct    int
	Skipped    int
	BestStreak int
	PlaySecs   int
}

// EventRepo provides append and query access to the local play journal.
type EventRepo interface {
	// AppendSessionEvent records a session start or end marker.
	AppendSessionEvent(ctx context.Context, data SessionEventData) error

	// AppendAnswerEvent records one graded answer or skip.
	AppendAnswerEvent(ctx context.Context, data AnswerEventData) error

	// QuerySessionSummaries returns finished sessions, newest first.
	QuerySessionSummaries(ctx context.Context, opts QueryOpts) ([]SessionSummaryRecord, error)

	// QueryAnswers returns the journaled answers of one session in play order.
	QueryAnswers(ctx context.Context, sessionID string) ([]AnswerRecord, error)

	// Totals aggregates all finished sessions and answers.
	Totals(ctx context.Context) (Totals, error)
}
