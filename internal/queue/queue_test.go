package queue

import "testing"

func TestIngest_SelectsFirstQuestion(t *testing.T) {
	q := New()
	q.Ingest(map[int]string{1: "FR", 2: "DE", 3: "IT"})

	cur, ok := q.Current()
	if !ok {
		t.Fatal("expected a current question after first ingest")
	}
	if cur.ID != 1 || cur.Prompt != "FR" {
		t.Errorf("current = %+v, want id 1", cur)
	}
	if q.Remaining() != 2 {
		t.Errorf("Remaining = %d, want 2", q.Remaining())
	}
}

func TestAdvance_WalksArrivalOrder(t *testing.T) {
	q := New()
	q.Ingest(map[int]string{10: "FR", 20: "DE"})
	// Ids need not be contiguous; arrival order is what counts.
	q.Ingest(map[int]string{35: "IT"})

	wantIDs := []int{10, 20, 35}
	for i, want := range wantIDs {
		cur, ok := q.Current()
		if !ok {
			t.Fatalf("step %d: no current question", i)
		}
		if cur.ID != want {
			t.Fatalf("step %d: id = %d, want %d", i, cur.ID, want)
		}
		q.Advance()
	}
}

func TestAdvance_PastEndGoesPending(t *testing.T) {
	q := New()
	q.Ingest(map[int]string{1: "FR"})

	if q.Advance() {
		t.Fatal("Advance past the last question should report false")
	}
	if _, ok := q.Current(); ok {
		t.Fatal("no question should be current while pending")
	}

	q.Ingest(map[int]string{2: "DE"})
	cur, ok := q.Current()
	if !ok {
		t.Fatal("ingest should resolve the pending advance")
	}
	if cur.ID != 2 {
		t.Errorf("current = %+v, want id 2", cur)
	}
}

func TestIngest_DuplicateIDIsIdempotent(t *testing.T) {
	q := New()
	q.Ingest(map[int]string{1: "FR", 2: "DE"})
	q.Ingest(map[int]string{2: "DE-replayed", 3: "IT"})

	if q.Len() != 3 {
		t.Fatalf("Len = %d, want 3", q.Len())
	}
	q.Advance()
	cur, _ := q.Current()
	if cur.Prompt != "DE" {
		t.Errorf("prompt = %q, want the first delivery to win", cur.Prompt)
	}
}

func TestIndex_NeverDecreases(t *testing.T) {
	q := New()
	q.Ingest(map[int]string{1: "FR", 2: "DE", 3: "IT"})

	last := q.Index()
	steps := []func(){
		func() { q.Advance() },
		func() { q.Ingest(map[int]string{1: "FR"}) }, // replay
		func() { q.Advance() },
		func() { q.Advance() }, // goes pending
		func() { q.Ingest(map[int]string{4: "ES"}) },
		func() { q.Advance() },
	}
	for i, step := range steps {
		step()
		if q.Index() < last {
			t.Fatalf("step %d: index decreased from %d to %d", i, last, q.Index())
		}
		if q.Index() >= q.Len() {
			t.Fatalf("step %d: index %d beyond %d received", i, q.Index(), q.Len())
		}
		last = q.Index()
	}
}

func TestRemaining_WhilePending(t *testing.T) {
	q := New()
	q.Ingest(map[int]string{1: "FR"})
	q.Advance() // pending

	if got := q.Remaining(); got != 0 {
		t.Errorf("Remaining while pending = %d, want 0", got)
	}
}

func TestEmptyQueue(t *testing.T) {
	q := New()
	if _, ok := q.Current(); ok {
		t.Error("empty queue should have no current question")
	}
	if q.Advance() {
		t.Error("Advance on empty queue should report false")
	}
	if q.Remaining() != 0 {
		t.Error("Remaining on empty queue should be 0")
	}
}
