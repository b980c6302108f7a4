package store

import (
	"context"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenClose(t *testing.T) {
	s := openTestStore(t)
	if s.Client() == nil {
		t.Fatal("expected non-nil ent client")
	}
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	tests := []struct {
		pragma string
		want   string
	}{
		// WAL mode falls back to "memory" for in-memory databases,
		// so we skip journal_mode here. It is tested with file-based DBs.
		{"foreign_keys", "1"},
		{"synchronous", "1"}, // NORMAL = 1
	}

	for _, tt := range tests {
		var got string
		err := db.QueryRow("PRAGMA " + tt.pragma).Scan(&got)
		if err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestSequenceCounter(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var seqs []int64
	for i := 0; i < 5; i++ {
		seq, err := s.seq.Next(ctx)
		if err != nil {
			t.Fatalf("next %d: %v", i, err)
		}
		seqs = append(seqs, seq)
	}

	// Monotonically increasing starting from 1.
	for i, seq := range seqs {
		expected := int64(i + 1)
		if seq != expected {
			t.Errorf("seq[%d] = %d, want %d", i, seq, expected)
		}
	}
}

func TestSessionJournalRoundTrip(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	start := SessionEventData{SessionID: "s1", Mode: "challenge", Action: "start"}
	if err := repo.AppendSessionEvent(ctx, start); err != nil {
		t.Fatalf("append start: %v", err)
	}

	answers := []AnswerEventData{
		{SessionID: "s1", QuestionID: 1, Prompt: "Capital of France", Answer: "paris", Correct: true, Streak: 1, TimeMs: 2100},
		{SessionID: "s1", QuestionID: 2, Prompt: "Capital of Norway", Skipped: true, Streak: 0, TimeMs: 900},
		{SessionID: "s1", QuestionID: 3, Prompt: "Capital of Chile", Answer: "lima", Correct: false, Streak: 0, TimeMs: 4400},
	}
	for i, a := range answers {
		if err := repo.AppendAnswerEvent(ctx, a); err != nil {
			t.Fatalf("append answer %d: %v", i, err)
		}
	}

	end := SessionEventData{
		SessionID: "s1", Mode: "challenge", Action: "end",
		Answered: 3, Correct: 1, BestStreak: 1, FinalStreak: 0, DurationSecs: 61,
	}
	if err := repo.AppendSessionEvent(ctx, end); err != nil {
		t.Fatalf("append end: %v", err)
	}

	sums, err := repo.QuerySessionSummaries(ctx, QueryOpts{})
	if err != nil {
		t.Fatalf("summaries: %v", err)
	}
	if len(sums) != 1 {
		t.Fatalf("summaries = %d, want 1 (start markers excluded)", len(sums))
	}
	got := sums[0]
	if got.Mode != "challenge" || got.Answered != 3 || got.Correct != 1 || got.BestStreak != 1 {
		t.Errorf("summary = %+v", got)
	}

	recs, err := repo.QueryAnswers(ctx, "s1")
	if err != nil {
		t.Fatalf("answers: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("answers = %d, want 3", len(recs))
	}
	if recs[0].QuestionID != 1 || recs[2].QuestionID != 3 {
		t.Errorf("answers out of play order: %+v", recs)
	}
	if !recs[1].Skipped || recs[1].Answer != "" {
		t.Errorf("skip record = %+v", recs[1])
	}
}

func TestSummariesNewestFirstWithLimit(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		err := repo.AppendSessionEvent(ctx, SessionEventData{
			SessionID: id, Mode: "training", Action: "end", Answered: 1,
		})
		if err != nil {
			t.Fatalf("append %s: %v", id, err)
		}
	}

	sums, err := repo.QuerySessionSummaries(ctx, QueryOpts{Limit: 2})
	if err != nil {
		t.Fatalf("summaries: %v", err)
	}
	if len(sums) != 2 {
		t.Fatalf("summaries = %d, want 2", len(sums))
	}
	if sums[0].SessionID != "c" || sums[1].SessionID != "b" {
		t.Errorf("order = %s, %s, want c, b", sums[0].SessionID, sums[1].SessionID)
	}
}

func TestTotals(t *testing.T) {
	s := openTestStore(t)
	repo := s.EventRepo()
	ctx := context.Background()

	sessions := []SessionEventData{
		{SessionID: "s1", Mode: "training", Action: "end", Answered: 10, Correct: 7, BestStreak: 4, DurationSecs: 120},
		{SessionID: "s2", Mode: "challenge", Action: "end", Answered: 5, Correct: 5, BestStreak: 9, DurationSecs: 80},
		// Start markers must not count as sessions.
		{SessionID: "s3", Mode: "challenge", Action: "start"},
	}
	for _, ev := range sessions {
		if err := repo.AppendSessionEvent(ctx, ev); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	if err := repo.AppendAnswerEvent(ctx, AnswerEventData{SessionID: "s1", QuestionID: 9, Prompt: "q", Skipped: true}); err != nil {
		t.Fatalf("append skip: %v", err)
	}

	totals, err := repo.Totals(ctx)
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if totals.Sessions != 2 {
		t.Errorf("sessions = %d, want 2", totals.Sessions)
	}
	if totals.Answered != 15 || totals.Correct != 12 {
		t.Errorf("answered/correct = %d/%d, want 15/12", totals.Answered, totals.Correct)
	}
	if totals.BestStreak != 9 {
		t.Errorf("best streak = %d, want 9", totals.BestStreak)
	}
	if totals.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", totals.Skipped)
	}
	if totals.PlaySecs != 200 {
		t.Errorf("play secs = %d, want 200", totals.PlaySecs)
	}
}

func TestAutoMigrationCreatesTables(t *testing.T) {
	s := openTestStore(t)
	db := s.DB()

	for _, table := range []string{"session_events", "answer_events"} {
		var name string
		err := db.QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}
}
