package perspective

import (
	"log/slog"
	"slices"
	"sync"
	"time"
)

// Store holds the seven bucket perspective state. While the definition gate
// is open, patches are ignored.
type Store struct {
	mu       sync.RWMutex
	buckets  map[Bucket][]Entry
	gateOpen bool

	matcher *Matcher
	now     func() time.Time
}

type StoreOption func(*Store)

// WithMatcher overrides the lexicon used for reconciliation.
func WithMatcher(m *Matcher) StoreOption {
	return func(s *Store) {
		if m != nil {
			s.matcher = m
		}
	}
}

// WithClock overrides the time source used to stamp entries.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		buckets: make(map[Bucket][]Entry, len(Buckets)),
		matcher: DefaultMatcher(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) SetGateOpen(open bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gateOpen = open
}

func (s *Store) GateOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gateOpen
}

// ApplyPatch applies removals first, then additions. Adding text that is
// already present (case-insensitive) and removing absent text are no-ops.
func (s *Store) ApplyPatch(patch Patch, source Source) Applied {
	s.mu.Lock()
	defer s.mu.Unlock()

	var applied Applied
	if s.gateOpen {
		if !patch.IsEmpty() {
			logger.Debug("ignoring perspective patch while definition gate is open", slog.String("source", string(source)))
		}
		return applied
	}

	for _, bucket := range Buckets {
		for _, text := range patch.Remove.Get(bucket) {
			if removed, ok := s.remove(bucket, text); ok {
				applied.Removed.Append(bucket, removed.Text)
			}
		}
	}

	now := s.now()
	for _, bucket := range Buckets {
		for _, text := range patch.Add.Get(bucket) {
			if added, ok := s.add(bucket, text, source, now); ok {
				applied.Added.Append(bucket, added.Text)
			}
		}
	}

	if !applied.IsEmpty() {
		logger.Debug("perspective patch applied",
			slog.String("source", string(source)),
			slog.Int("added", applied.Added.Len()),
			slog.Int("removed", applied.Removed.Len()))
	}
	return applied
}

func (s *Store) add(bucket Bucket, text string, source Source, at time.Time) (Entry, bool) {
	text = Normalize(text)
	if text == "" || s.indexOf(bucket, text) >= 0 {
		return Entry{}, false
	}
	entry := Entry{
		ID:      EntryID(bucket, text),
		Bucket:  bucket,
		Text:    text,
		Source:  source,
		AddedAt: at,
	}
	s.buckets[bucket] = append(s.buckets[bucket], entry)
	return entry, true
}

func (s *Store) remove(bucket Bucket, text string) (Entry, bool) {
	i := s.indexOf(bucket, text)
	if i < 0 {
		return Entry{}, false
	}
	entry := s.buckets[bucket][i]
	s.buckets[bucket] = slices.Delete(s.buckets[bucket], i, i+1)
	return entry, true
}

func (s *Store) indexOf(bucket Bucket, text string) int {
	k := key(text)
	return slices.IndexFunc(s.buckets[bucket], func(e Entry) bool { return key(e.Text) == k })
}

// Contains reports whether bucket holds text, case-insensitively.
func (s *Store) Contains(bucket Bucket, text string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexOf(bucket, text) >= 0
}

// Entries returns a copy of the entries in bucket, in insertion order.
func (s *Store) Entries(bucket Bucket) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.buckets[bucket])
}

// Lists returns the current texts of every bucket.
func (s *Store) Lists() Lists {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var lists Lists
	for _, bucket := range Buckets {
		for _, e := range s.buckets[bucket] {
			lists.Append(bucket, e.Text)
		}
	}
	return lists
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, entries := range s.buckets {
		total += len(entries)
	}
	return total
}

// Clear drops every entry. The gate flag is left untouched.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buckets = make(map[Bucket][]Entry, len(Buckets))
}

// Matcher returns the lexicon the store reconciles with.
func (s *Store) Matcher() *Matcher { return s.matcher }
