package proposals

import (
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/koscakluka/ema-perspective/core/perspective"
)

var (
	ErrProposalNotFound  = errors.New("proposal not found")
	ErrDuplicateProposal = errors.New("proposal duplicates another pending or accepted proposal")
)

// StateMirror receives the options of accepted add_option proposals.
type StateMirror interface {
	ApplyPatch(patch perspective.Patch, source perspective.Source) perspective.Applied
}

// Queue is the ordered, deduplicated list of pending proposals together with
// the grid they are accepted into.
type Queue struct {
	pending []Proposal
	grid    *Grid
	state   StateMirror

	now   func() time.Time
	newID func() string
}

type QueueOption func(*Queue)

// WithStateMirror mirrors accepted options into a perspective store.
func WithStateMirror(state StateMirror) QueueOption {
	return func(q *Queue) {
		q.state = state
	}
}

func WithClock(now func() time.Time) QueueOption {
	return func(q *Queue) {
		if now != nil {
			q.now = now
		}
	}
}

func WithIDGenerator(newID func() string) QueueOption {
	return func(q *Queue) {
		if newID != nil {
			q.newID = newID
		}
	}
}

func NewQueue(grid *Grid, opts ...QueueOption) *Queue {
	if grid == nil {
		grid = NewGrid()
	}
	q := &Queue{
		grid:  grid,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

func (q *Queue) Grid() *Grid { return q.grid }

// Enqueue appends proposals that are valid and not already pending, accepted
// into the grid, or repeated earlier in the same batch. It returns what was
// actually enqueued.
func (q *Queue) Enqueue(proposals ...Proposal) []Proposal {
	var enqueued []Proposal
	for _, p := range proposals {
		p = p.normalized()
		if !p.Valid() {
			continue
		}
		if q.indexOfKey(p.Key()) >= 0 || q.grid.Contains(p) {
			continue
		}
		if p.ID == "" || q.indexOf(p.ID) >= 0 {
			p.ID = q.newID()
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = q.now()
		}
		q.pending = append(q.pending, p)
		enqueued = append(enqueued, p.clone())
	}
	if len(enqueued) > 0 {
		logger.Debug("proposals enqueued", slog.Int("count", len(enqueued)), slog.Int("pending", len(q.pending)))
	}
	return enqueued
}

// Accept commits the proposal into the grid and removes it from the queue.
func (q *Queue) Accept(id string) (Proposal, error) {
	i := q.indexOf(id)
	if i < 0 {
		return Proposal{}, ErrProposalNotFound
	}
	p := q.pending[i]
	q.pending = slices.Delete(q.pending, i, i+1)

	switch p.Kind {
	case KindAddOption:
		q.grid.AddOption(p.Option)
		if q.state != nil {
			var patch perspective.Patch
			patch.Add.Append(perspective.BucketOptions, p.Option)
			q.state.ApplyPatch(patch, perspective.SourceProposal)
		}
	case KindAddCriterion:
		q.grid.AddCriterion(p.Criterion)
	case KindSetCell:
		q.grid.SetCell(p.Option, p.Criterion, Cell{
			Weight:     p.Weight,
			Confidence: p.Confidence,
			Rationale:  p.Rationale,
			Anchors:    p.Anchors,
		})
	}

	logger.Info("proposal accepted",
		slog.String("id", p.ID),
		slog.String("kind", string(p.Kind)),
		slog.String("source", string(p.Source)))
	return p.clone(), nil
}

// Edit holds the fields to change on a pending proposal; nil fields are left
// untouched.
type Edit struct {
	Option     *string
	Criterion  *string
	Weight     *int
	Confidence *float64
	Rationale  *string
}

// Edit mutates a pending proposal in place, clamping weight and confidence.
// An edit that would give the proposal the key of another pending or accepted
// proposal is rejected and leaves it unchanged.
func (q *Queue) Edit(id string, edit Edit) (Proposal, error) {
	i := q.indexOf(id)
	if i < 0 {
		return Proposal{}, ErrProposalNotFound
	}
	p := q.pending[i]
	if edit.Option != nil && perspective.Normalize(*edit.Option) != "" {
		p.Option = *edit.Option
	}
	if edit.Criterion != nil && perspective.Normalize(*edit.Criterion) != "" {
		p.Criterion = *edit.Criterion
	}
	if edit.Weight != nil {
		p.Weight = *edit.Weight
	}
	if edit.Confidence != nil {
		p.Confidence = *edit.Confidence
	}
	if edit.Rationale != nil {
		p.Rationale = *edit.Rationale
	}
	p = p.normalized()
	if key := p.Key(); key != q.pending[i].Key() {
		if j := q.indexOfKey(key); (j >= 0 && j != i) || q.grid.Contains(p) {
			return Proposal{}, ErrDuplicateProposal
		}
	}
	q.pending[i] = p
	return q.pending[i].clone(), nil
}

// SelectAnchor toggles an anchor on a pending set_cell proposal.
func (q *Queue) SelectAnchor(id string, anchor Anchor) (Proposal, error) {
	i := q.indexOf(id)
	if i < 0 {
		return Proposal{}, ErrProposalNotFound
	}
	q.pending[i].Anchors = SelectAnchor(q.pending[i].Anchors, anchor)
	return q.pending[i].clone(), nil
}

// Discard removes a pending proposal without any other effect.
func (q *Queue) Discard(id string) error {
	i := q.indexOf(id)
	if i < 0 {
		return ErrProposalNotFound
	}
	q.pending = slices.Delete(q.pending, i, i+1)
	return nil
}

func (q *Queue) Get(id string) (Proposal, bool) {
	i := q.indexOf(id)
	if i < 0 {
		return Proposal{}, false
	}
	return q.pending[i].clone(), true
}

// Pending returns a copy of the queue in insertion order.
func (q *Queue) Pending() []Proposal {
	out := make([]Proposal, len(q.pending))
	for i, p := range q.pending {
		out[i] = p.clone()
	}
	return out
}

func (q *Queue) Len() int { return len(q.pending) }

// Clear empties the queue and the grid.
func (q *Queue) Clear() {
	q.pending = nil
	q.grid.Clear()
}

func (q *Queue) indexOf(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(q.pending, func(p Proposal) bool { return p.ID == id })
}

func (q *Queue) indexOfKey(key string) int {
	return slices.IndexFunc(q.pending, func(p Proposal) bool { return p.Key() == key })
}
