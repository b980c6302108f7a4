package queue

import "sort"

// Question is one prompt as delivered by the server. The prompt string is
// opaque to the session core; its meaning (flag payload vs. place name)
// depends on the game mode and only matters to the presentation layer.
type Question struct {
	ID     int
	Prompt string
}

// Queue is the ordered, append-only buffer of questions the server has
// streamed so far, plus the cursor for the question the user is on.
//
// The cursor indexes arrival order, not question ids, and never moves
// backwards. Advancing past the last delivered question parks the queue in
// a pending state that the next ingest resolves.
type Queue struct {
	order   []int
	prompts map[int]string
	index   int
	started bool
	pending bool
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{prompts: make(map[int]string)}
}

// Ingest merges a new_questions batch. Existing entries are never replaced:
// a replayed id keeps its first prompt and does not re-enter the arrival
// order. Ids within one batch are appended in ascending order, since JSON
// object keys carry none and the server issues ids monotonically.
func (q *Queue) Ingest(questions map[int]string) {
	ids := make([]int, 0, len(questions))
	for id := range questions {
		if _, seen := q.prompts[id]; seen {
			continue
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)

	for _, id := range ids {
		q.prompts[id] = questions[id]
		q.order = append(q.order, id)
	}

	if !q.started && len(q.order) > 0 {
		q.started = true
	}

	// A parked advance resolves as soon as the next question exists.
	if q.pending && q.index+1 < len(q.order) {
		q.index++
		q.pending = false
	}
}

// Current returns the question under the cursor. ok is false before the
// first ingest and while an advance is pending delivery.
func (q *Queue) Current() (Question, bool) {
	if !q.started || q.pending || q.index >= len(q.order) {
		return Question{}, false
	}
	id := q.order[q.index]
	return Question{ID: id, Prompt: q.prompts[id]}, true
}

// Advance moves the cursor to the next question in arrival order. If the
// server has not delivered that far yet the queue goes pending and reports
// false; the cursor catches up on the next Ingest.
func (q *Queue) Advance() bool {
	if !q.started {
		return false
	}
	if q.pending {
		return false
	}
	if q.index+1 < len(q.order) {
		q.index++
		return true
	}
	q.pending = true
	return false
}

// Remaining counts delivered questions beyond the cursor. The prefetch rule
// triggers when this drops to 2 or below.
func (q *Queue) Remaining() int {
	if !q.started {
		return 0
	}
	r := len(q.order) - q.index - 1
	if q.pending {
		// The cursor is conceptually past q.index already.
		r--
	}
	if r < 0 {
		return 0
	}
	return r
}

// Index returns the cursor position in arrival order.
func (q *Queue) Index() int {
	return q.index
}

// Len returns the number of distinct questions received so far.
func (q *Queue) Len() int {
	return len(q.order)
}
