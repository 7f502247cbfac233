package draft

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/wudworks/fitquote/internal/models"
)

// recordingStore counts saves and can be told to fail.
type recordingStore struct {
	mu    sync.Mutex
	saves int
	last  []models.Section
	err   error
	saved chan struct{}
}

func newRecordingStore() *recordingStore {
	return &recordingStore{saved: make(chan struct{}, 16)}
}

func (s *recordingStore) LoadSections(_ context.Context, _ uint) ([]models.Section, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, nil
}

func (s *recordingStore) SaveSections(_ context.Context, _ uint, sections []models.Section) error {
	s.mu.Lock()
	err := s.err
	if err == nil {
		s.saves++
		s.last = sections
	}
	s.mu.Unlock()
	s.saved <- struct{}{}
	return err
}

func (s *recordingStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func (s *recordingStore) fail(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func waitSave(t *testing.T, s *recordingStore) {
	t.Helper()
	select {
	case <-s.saved:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for flush")
	}
}

func snapshotOf(sections []models.Section) Snapshot {
	return func() []models.Section { return sections }
}

func TestScheduleFlushDebounces(t *testing.T) {
	st := newRecordingStore()
	s := NewScheduler(st, 40*time.Millisecond, nil)
	defer s.Close()

	snap := snapshotOf([]models.Section{{Name: "hall", Type: models.SectionTypeSquareNet}})
	for i := 0; i < 5; i++ {
		s.ScheduleFlush(1, snap)
		time.Sleep(10 * time.Millisecond)
	}
	// Five rapid schedules collapse into one flush after the quiet period.
	waitSave(t, st)
	time.Sleep(60 * time.Millisecond)
	if got := st.saveCount(); got != 1 {
		t.Fatalf("saves = %d, want 1", got)
	}
	if s.Dirty(1) {
		t.Fatal("draft still dirty after successful flush")
	}
}

func TestFlushNowSkipsQuietPeriod(t *testing.T) {
	st := newRecordingStore()
	s := NewScheduler(st, time.Hour, nil)
	defer s.Close()

	snap := snapshotOf(nil)
	s.ScheduleFlush(7, snap)
	if !s.Dirty(7) {
		t.Fatal("scheduled draft should be dirty")
	}
	if err := s.FlushNow(context.Background(), 7, snap); err != nil {
		t.Fatalf("FlushNow: %v", err)
	}
	if got := st.saveCount(); got != 1 {
		t.Fatalf("saves = %d, want 1", got)
	}
	if s.Dirty(7) {
		t.Fatal("draft still dirty after FlushNow")
	}
}

func TestFailedFlushKeepsDirty(t *testing.T) {
	st := newRecordingStore()
	var gotErr error
	s := NewScheduler(st, time.Hour, func(_ uint, err error) { gotErr = err })
	defer s.Close()

	boom := errors.New("connection reset")
	st.fail(boom)
	snap := snapshotOf(nil)
	if err := s.FlushNow(context.Background(), 3, snap); !errors.Is(err, boom) {
		t.Fatalf("FlushNow err = %v, want %v", err, boom)
	}
	if !errors.Is(gotErr, boom) {
		t.Fatalf("onError got %v, want %v", gotErr, boom)
	}
	if !s.Dirty(3) {
		t.Fatal("draft must stay dirty after failed flush")
	}

	// The next successful flush clears the flag.
	st.fail(nil)
	if err := s.FlushNow(context.Background(), 3, snap); err != nil {
		t.Fatalf("FlushNow: %v", err)
	}
	if s.Dirty(3) {
		t.Fatal("draft still dirty after recovery flush")
	}
}

func TestCancelPendingStopsTimerButKeepsDirty(t *testing.T) {
	st := newRecordingStore()
	s := NewScheduler(st, 30*time.Millisecond, nil)
	defer s.Close()

	s.ScheduleFlush(5, snapshotOf(nil))
	s.CancelPending(5)
	time.Sleep(80 * time.Millisecond)
	if got := st.saveCount(); got != 0 {
		t.Fatalf("saves = %d, want 0 after cancel", got)
	}
	if !s.Dirty(5) {
		t.Fatal("cancelling must not mark unsaved edits as saved")
	}
}

func TestCloseStopsPendingTimers(t *testing.T) {
	st := newRecordingStore()
	s := NewScheduler(st, 30*time.Millisecond, nil)
	s.ScheduleFlush(9, snapshotOf(nil))
	s.Close()
	time.Sleep(80 * time.Millisecond)
	if got := st.saveCount(); got != 0 {
		t.Fatalf("saves = %d, want 0 after close", got)
	}
	// Scheduling after close is ignored.
	s.ScheduleFlush(9, snapshotOf(nil))
	time.Sleep(80 * time.Millisecond)
	if got := st.saveCount(); got != 0 {
		t.Fatalf("saves = %d, want 0 after close", got)
	}
}
