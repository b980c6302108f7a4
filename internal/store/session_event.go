package store

import (
	"context"
	"fmt"

	"github.com/rkal/geostreak/ent"
	"github.com/rkal/geostreak/ent/answerevent"
	"github.com/rkal/geostreak/ent/sessionevent"
)

// eventRepo implements EventRepo backed by ent and the global sequence counter.
type eventRepo struct {
	client *ent.Client
	seq    *sequenceCounter
}

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.client.SessionEvent.Create().
		SetSequence(seqNum).
		SetSessionID(data.SessionID).
		SetMode(data.Mode).
		SetAction(data.Action).
		SetAnswered(data.Answered).
		SetCorrect(data.Correct).
		SetBestStreak(data.BestStreak).
		SetFinalStreak(data.FinalStreak).
		SetDurationSecs(data.DurationSecs).
		Save(ctx)
	if err != nil {
		return fmt.Errorf("save session event: %w", err)
	}
	return nil
}

func (r *eventRepo) AppendAnswerEvent(ctx context.Context, data AnswerEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.client.AnswerEvent.Create().
		SetSequence(seqNum).
		SetSessionID(data.SessionID).
		SetQuestionID(data.QuestionID).
		SetPrompt(data.Prompt).
		SetAnswer(data.Answer).
		SetSkipped(data.Skipped).
		SetCorrect(data.Correct).
		SetRemaining(data.Remaining).
		SetStreak(data.Streak).
		SetTimeMs(data.TimeMs).
		Save(ctx)
	if err != nil {
		return fmt.Errorf("save answer event: %w", err)
	}
	return nil
}

func (r *eventRepo) QuerySessionSummaries(ctx context.Context, opts QueryOpts) ([]SessionSummaryRecord, error) {
	query := r.client.SessionEvent.Query().
		Where(sessionevent.Action("end")).
		Order(ent.Desc(sessionevent.FieldSequence))

	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.After > 0 {
		query = query.Where(sessionevent.SequenceGT(opts.After))
	}
	if opts.Before > 0 {
		query = query.Where(sessionevent.SequenceLT(opts.Before))
	}
	if !opts.From.IsZero() {
		query = query.Where(sessionevent.TimestampGTE(opts.From))
	}
	if !opts.To.IsZero() {
		query = query.Where(sessionevent.TimestampLTE(opts.To))
	}

	events, err := query.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("query session summaries: %w", err)
	}

	records := make([]SessionSummaryRecord, len(events))
	for i, e := range events {
		records[i] = SessionSummaryRecord{
			SessionID:    e.SessionID,
			Mode:         e.Mode,
			Timestamp:    e.Timestamp,
			Answered:     e.Answered,
			Correct:      e.Correct,
			BestStreak:   e.BestStreak,
			FinalStreak:  e.FinalStreak,
			DurationSecs: e.DurationSecs,
		}
	}
	return records, nil
}

func (r *eventRepo) QueryAnswers(ctx context.Context, sessionID string) ([]AnswerRecord, error) {
	events, err := r.client.AnswerEvent.Query().
		Where(answerevent.SessionID(sessionID)).
		Order(ent.Asc(answerevent.FieldSequence)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("query answers: %w", err)
	}

	records := make([]AnswerRecord, len(events))
	for i, e := range events {
		records[i] = AnswerRecord{
			QuestionID: e.QuestionID,
			Prompt:     e.Prompt,
			Answer:     e.Answer,
			Skipped:    e.Skipped,
			Correct:    e.Correct,
			Streak:     e.Streak,
			TimeMs:     e.TimeMs,
			Timestamp:  e.Timestamp,
		}
	}
	return records, nil
}

func (r *eventRepo) Totals(ctx context.Context) (Totals, error) {
	var t Totals

	ends, err := r.client.SessionEvent.Query().
		Where(sessionevent.Action("end")).
		All(ctx)
	if err != nil {
		return t, fmt.Errorf("query session totals: %w", err)
	}
	for _, e := range ends {
		t.Sessions++
		t.Answered += e.Answered
		t.Correct += e.Correct
		t.PlaySecs += e.DurationSecs
		if e.BestStreak > t.BestStreak {
			t.BestStreak = e.BestStreak
		}
	}

	skipped, err := r.client.AnswerEvent.Query().
		Where(answerevent.Skipped(true)).
		Count(ctx)
	if err != nil {
		return t, fmt.Errorf("count skips: %w", err)
	}
	t.Skipped = skipped

	return t, nil
}
