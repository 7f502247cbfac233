package draft

import (
	"context"
	"sync"
	"time"

	"github.com/wudworks/fitquote/internal/models"
	"github.com/wudworks/fitquote/internal/store"
)

// DefaultQuietPeriod is how long a draft must sit unmodified before its
// pending snapshot is flushed to the store.
const DefaultQuietPeriod = 2000 * time.Millisecond

// Snapshot produces the full current section collection of a draft. It is
// invoked at flush time, not at schedule time, so the flush always carries
// the latest state.
type Snapshot func() []models.Section

// Scheduler owns one cancellable flush timer per package draft. Scheduling
// while a timer is pending cancels and restarts it (debounce), so flush
// frequency stays bounded no matter how fast edits arrive. A failed flush
// leaves the draft marked dirty until a later flush succeeds; local state is
// never rolled back.
type Scheduler struct {
	store   store.SectionStore
	quiet   time.Duration
	onError func(packageID uint, err error)

	mu     sync.Mutex
	timers map[uint]*time.Timer
	dirty  map[uint]bool
	closed bool
}

// NewScheduler builds a scheduler flushing through st after quiet of
// inactivity (DefaultQuietPeriod when quiet <= 0). onError, if non-nil,
// receives flush failures; it runs on the timer goroutine.
func NewScheduler(st store.SectionStore, quiet time.Duration, onError func(uint, error)) *Scheduler {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	return &Scheduler{
		store:   st,
		quiet:   quiet,
		onError: onError,
		timers:  make(map[uint]*time.Timer),
		dirty:   make(map[uint]bool),
	}
}

// ScheduleFlush marks the draft dirty and (re)starts its quiet-period timer.
func (s *Scheduler) ScheduleFlush(packageID uint, snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.dirty[packageID] = true
	if t, ok := s.timers[packageID]; ok {
		t.Stop()
	}
	s.timers[packageID] = time.AfterFunc(s.quiet, func() {
		s.flush(context.Background(), packageID, snap)
	})
}

// FlushNow cancels any pending timer and flushes synchronously, returning
// the store error if the save fails.
func (s *Scheduler) FlushNow(ctx context.Context, packageID uint, snap Snapshot) error {
	s.CancelPending(packageID)
	return s.flush(ctx, packageID, snap)
}

// CancelPending stops the draft's pending timer, if any. The dirty flag is
// left as is: cancelling a flush does not make unsaved edits saved.
func (s *Scheduler) CancelPending(packageID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[packageID]; ok {
		t.Stop()
		delete(s.timers, packageID)
	}
}

// Dirty reports whether the draft has edits not yet confirmed by a
// successful flush.
func (s *Scheduler) Dirty(packageID uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty[packageID]
}

// Close stops every pending timer. In-flight flushes are not interrupted.
func (s *Scheduler) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
}

func (s *Scheduler) flush(ctx context.Context, packageID uint, snap Snapshot) error {
	sections := snap()
	err := s.store.SaveSections(ctx, packageID, sections)

	s.mu.Lock()
	delete(s.timers, packageID)
	if err != nil {
		s.dirty[packageID] = true
	} else {
		s.dirty[packageID] = false
	}
	s.mu.Unlock()

	if err != nil && s.onError != nil {
		s.onError(packageID, err)
	}
	return err
}
