package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/claude/gymflow/internal/models"
)

// TestMarkSetStartsRest verifies marking a set starts the countdown at the
// parsed rest and computes the next set.
func TestMarkSetStartsRest(t *testing.T) {
	h := newHarness(t, Options{})
	h.toggle(t, bench1)

	s := h.engine.Snapshot()
	if s.Status != StatusInProgress {
		t.Errorf("status = %q, want in_progress", s.Status)
	}
	if s.Rest.State != RestResting || !s.Rest.Resting {
		t.Errorf("rest state = %q", s.Rest.State)
	}
	if s.Rest.Remaining != 90 || s.Rest.Total != 90 {
		t.Errorf("rest = %d/%d, want 90/90", s.Rest.Remaining, s.Rest.Total)
	}
	if s.Rest.ActiveKey != bench1 || s.Rest.NextKey != bench2 {
		t.Errorf("keys = %q -> %q", s.Rest.ActiveKey, s.Rest.NextKey)
	}
	if s.Rest.UpNext == nil || s.Rest.UpNext.Title != "Bench Press" || s.Rest.UpNext.Detail != "Set 2 · 8 reps" {
		t.Errorf("upNext = %+v", s.Rest.UpNext)
	}
	if s.CompletedSets != 1 || s.TotalSets != 3 {
		t.Errorf("progress = %d/%d, want 1/3", s.CompletedSets, s.TotalSets)
	}
	if got := h.sched.active(tick); got != 1 {
		t.Errorf("active countdowns = %d, want 1", got)
	}
}

// TestRestDurationSources checks explicit seconds, parsed text and the
// no-unit form all drive the countdown.
func TestRestDurationSources(t *testing.T) {
	tests := []struct {
		key  string
		want int
	}{
		{key: bench1, want: 90},
		{key: bench2, want: 120},
		{key: row1, want: 45},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			h := newHarness(t, Options{})
			h.toggle(t, tt.key)
			if got := h.engine.Snapshot().Rest.Remaining; got != tt.want {
				t.Errorf("remaining = %d, want %d", got, tt.want)
			}
		})
	}
}

// TestTimerMonotonicity verifies that N ticks from N land exactly on 0 in the
// finished state, and N-1 ticks leave one second.
func TestTimerMonotonicity(t *testing.T) {
	for _, n := range []int{1, 5, 90} {
		t.Run(time.Duration(n*int(time.Second)).String(), func(t *testing.T) {
			store := &stubStore{program: models.Program{
				ID: "p",
				Days: []models.ProgramDay{{ID: "d", Exercises: []models.ProgramExercise{{
					ID: "e", Sets: []models.ProgramSetSchema{{ID: "s1", RestSeconds: intp(n)}},
				}}}},
			}}
			sched := &fakeScheduler{}
			e, err := Start(store, "p", "d", Deps{Scheduler: sched, Log: discard, Options: Options{TickInterval: tick, AlertInterval: alert}})
			if err != nil {
				t.Fatalf("Start: %v", err)
			}
			defer e.Close()

			if err := e.ToggleSet("e-s1-0"); err != nil {
				t.Fatal(err)
			}
			sched.ticks(n - 1)
			if s := e.Snapshot(); s.Rest.Remaining != 1 || s.Rest.State != RestResting {
				t.Fatalf("after %d ticks: %d %q", n-1, s.Rest.Remaining, s.Rest.State)
			}
			sched.ticks(1)
			if s := e.Snapshot(); s.Rest.Remaining != 0 || s.Rest.State != RestFinished {
				t.Errorf("after %d ticks: %d %q", n, s.Rest.Remaining, s.Rest.State)
			}
			if sched.active(tick) != 0 {
				t.Error("countdown still running after finish")
			}
		})
	}
}

// TestFinishedRestAlerts verifies the first alert fires on finish and then
// repeats on the alert interval while the rest card stays up.
func TestFinishedRestAlerts(t *testing.T) {
	h := newHarness(t, Options{})
	h.toggle(t, row1)
	h.sched.ticks(45)

	if a, _ := h.notifier.counts(); a != 1 {
		t.Errorf("alerts after finish = %d, want 1", a)
	}
	if h.sched.active(alert) != 1 {
		t.Errorf("active alert loops = %d, want 1", h.sched.active(alert))
	}
	h.sched.fire(alert)
	h.sched.fire(alert)
	if a, _ := h.notifier.counts(); a != 3 {
		t.Errorf("alerts = %d, want 3", a)
	}

	s := h.engine.Snapshot()
	if s.Rest.State != RestFinished || s.Rest.ActiveKey != row1 || s.Rest.Progress != 1 {
		t.Errorf("rest card = %+v", s.Rest)
	}
}

// TestUnmarkActiveSetCancelsRest verifies un-marking the set that drives the
// rest stops the countdown and clears every rest field, even mid-countdown.
func TestUnmarkActiveSetCancelsRest(t *testing.T) {
	h := newHarness(t, Options{})
	h.toggle(t, bench1)
	h.sched.ticks(10)
	h.toggle(t, bench1)

	s := h.engine.Snapshot()
	if s.Rest.State != RestIdle || s.Rest.Resting {
		t.Errorf("rest state = %q", s.Rest.State)
	}
	if s.Rest.Remaining != 0 || s.Rest.Total != 0 || s.Rest.ActiveKey != "" || s.Rest.NextKey != "" || s.Rest.UpNext != nil {
		t.Errorf("rest not cleared: %+v", s.Rest)
	}
	if s.CompletedSets != 0 {
		t.Errorf("completed = %d, want 0", s.CompletedSets)
	}
	if h.sched.active(tick) != 0 {
		t.Error("countdown still active")
	}

	// A late callback from the stopped ticker must not revive the countdown.
	h.sched.fireAll(tick)
	if s := h.engine.Snapshot(); s.Rest.State != RestIdle || s.Rest.Remaining != 0 {
		t.Errorf("stale tick changed state: %+v", s.Rest)
	}
}

// TestUnmarkOtherSetKeepsRest verifies only the active set clears the rest.
func TestUnmarkOtherSetKeepsRest(t *testing.T) {
	h := newHarness(t, Options{})
	h.toggle(t, bench1)
	h.toggle(t, bench2)
	h.toggle(t, bench1)

	s := h.engine.Snapshot()
	if s.Rest.State != RestResting || s.Rest.ActiveKey != bench2 || s.Rest.Remaining != 120 {
		t.Errorf("rest = %+v", s.Rest)
	}
}

// TestMarkingRestartsRest verifies a new set replaces the running countdown so
// only one countdown exists.
func TestMarkingRestartsRest(t *testing.T) {
	h := newHarness(t, Options{})
	h.toggle(t, bench1)
	h.sched.ticks(5)
	h.toggle(t, bench2)

	if h.sched.active(tick) != 1 {
		t.Fatalf("active countdowns = %d, want 1", h.sched.active(tick))
	}
	h.sched.fireAll(tick)
	if got := h.engine.Snapshot().Rest.Remaining; got != 119 {
		t.Errorf("remaining = %d, want 119", got)
	}
}

// TestMarkingDuringFinishedRestStopsAlerts verifies a new rest tears down the
// alert loop of the previous one.
func TestMarkingDuringFinishedRestStopsAlerts(t *testing.T) {
	h := newHarness(t, Options{})
	h.toggle(t, bench1)
	h.sched.ticks(90)
	h.toggle(t, bench2)

	if h.sched.active(alert) != 0 {
		t.Error("alert loop survived a new rest")
	}
	if _, stops := h.notifier.counts(); stops != 1 {
		t.Errorf("stops = %d, want 1", stops)
	}
}

// TestPauseTimer verifies pausing freezes the remaining time and resume picks
// up where it stopped.
func TestPauseTimer(t *testing.T) {
	h := newHarness(t, Options{})
	if err := h.engine.PauseTimer(); !errors.Is(err, ErrNoRest) {
		t.Errorf("pause with no rest: err = %v, want ErrNoRest", err)
	}

	h.toggle(t, bench1)
	h.sched.ticks(10)
	if err := h.engine.PauseTimer(); err != nil {
		t.Fatal(err)
	}
	h.sched.fireAll(tick)

	s := h.engine.Snapshot()
	if s.Rest.State != RestPaused || s.Rest.Remaining != 80 || !s.Rest.Resting {
		t.Errorf("paused rest = %+v", s.Rest)
	}
	if h.sched.active(tick) != 0 {
		t.Error("countdown running while paused")
	}

	if err := h.engine.ResumeTimer(); err != nil {
		t.Fatal(err)
	}
	h.sched.ticks(1)
	if s := h.engine.Snapshot(); s.Rest.State != RestResting || s.Rest.Remaining != 79 {
		t.Errorf("resumed rest = %+v", s.Rest)
	}
	if err := h.engine.ResumeTimer(); !errors.Is(err, ErrNoRest) {
		t.Errorf("resume while resting: err = %v, want ErrNoRest", err)
	}
}

// TestPauseWorkoutFreezesCountdown verifies the workout pause also freezes the
// rest countdown.
func TestPauseWorkoutFreezesCountdown(t *testing.T) {
	h := newHarness(t, Options{})
	h.toggle(t, bench1)
	h.sched.ticks(10)

	if err := h.engine.PauseWorkout(); err != nil {
		t.Fatal(err)
	}
	if h.sched.active(tick) != 0 {
		t.Error("countdown running while workout paused")
	}
	s := h.engine.Snapshot()
	if s.Status != StatusPaused || s.Rest.State != RestResting || s.Rest.Remaining != 80 {
		t.Errorf("snapshot = %q %+v", s.Status, s.Rest)
	}

	if err := h.engine.ResumeWorkout(); err != nil {
		t.Fatal(err)
	}
	h.sched.ticks(1)
	if got := h.engine.Snapshot().Rest.Remaining; got != 79 {
		t.Errorf("remaining = %d, want 79", got)
	}
}

// TestPauseWorkoutSuppressesAlerts verifies pausing stops the alert loop but
// keeps the finished flag, and resuming restarts it.
func TestPauseWorkoutSuppressesAlerts(t *testing.T) {
	h := newHarness(t, Options{})
	h.toggle(t, row1)
	h.sched.ticks(45)

	if err := h.engine.PauseWorkout(); err != nil {
		t.Fatal(err)
	}
	if h.sched.active(alert) != 0 {
		t.Error("alerts still repeating while paused")
	}
	h.sched.fireAll(alert)
	if a, stops := h.notifier.counts(); a != 1 || stops != 1 {
		t.Errorf("alerts/stops = %d/%d, want 1/1", a, stops)
	}
	if s := h.engine.Snapshot(); s.Rest.State != RestFinished {
		t.Errorf("rest state = %q, want finished", s.Rest.State)
	}

	if err := h.engine.ResumeWorkout(); err != nil {
		t.Fatal(err)
	}
	if h.sched.active(alert) != 1 {
		t.Error("alerts not restarted on resume")
	}
	if a, _ := h.notifier.counts(); a != 2 {
		t.Errorf("alerts = %d, want 2", a)
	}
}

// TestMarkSetResumesPausedWorkout verifies marking a set moves a paused
// workout back in progress.
func TestMarkSetResumesPausedWorkout(t *testing.T) {
	h := newHarness(t, Options{})
	h.toggle(t, bench1)
	if err := h.engine.PauseWorkout(); err != nil {
		t.Fatal(err)
	}
	h.toggle(t, bench2)

	if s := h.engine.Snapshot(); s.Status != StatusInProgress {
		t.Errorf("status = %q, want in_progress", s.Status)
	}
	if h.sched.active(tick) != 1 {
		t.Error("countdown not running after resume by marking")
	}
}

// TestAcknowledgeRest verifies acknowledging clears a finished rest without
// touching completion flags.
func TestAcknowledgeRest(t *testing.T) {
	h := newHarness(t, Options{})
	h.toggle(t, bench1)
	if err := h.engine.AcknowledgeRest(); !errors.Is(err, ErrNoRest) {
		t.Errorf("ack while resting: err = %v, want ErrNoRest", err)
	}

	h.sched.ticks(90)
	if err := h.engine.AcknowledgeRest(); err != nil {
		t.Fatal(err)
	}

	s := h.engine.Snapshot()
	if s.Rest.State != RestIdle || s.Rest.ActiveKey != "" {
		t.Errorf("rest = %+v", s.Rest)
	}
	if !s.Sets[0].Completed {
		t.Error("acknowledge un-marked the set")
	}
	if h.sched.active(alert) != 0 {
		t.Error("alert loop still active")
	}
	if _, stops := h.notifier.counts(); stops != 1 {
		t.Errorf("stops = %d, want 1", stops)
	}
}

// TestSkipRest verifies skipping clears the rest from every non-idle state.
func TestSkipRest(t *testing.T) {
	tests := []struct {
		name  string
		setup func(h *harness)
	}{
		{name: "resting", setup: func(h *harness) {}},
		{name: "paused", setup: func(h *harness) { h.engine.PauseTimer() }},
		{name: "finished", setup: func(h *harness) { h.sched.ticks(90) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, Options{})
			h.toggle(t, bench1)
			tt.setup(h)

			if err := h.engine.SkipRest(); err != nil {
				t.Fatal(err)
			}
			s := h.engine.Snapshot()
			if s.Rest.State != RestIdle || s.Rest.Remaining != 0 {
				t.Errorf("rest = %+v", s.Rest)
			}
			if h.sched.active(tick) != 0 || h.sched.active(alert) != 0 {
				t.Error("timers still active")
			}
			if s.CompletedSets != 1 {
				t.Errorf("completed = %d, want 1", s.CompletedSets)
			}
		})
	}

	h := newHarness(t, Options{})
	if err := h.engine.SkipRest(); err != nil {
		t.Errorf("skip with no rest: %v", err)
	}
}

// TestUpNextTerminal verifies the last set surfaces the closing message.
func TestUpNextTerminal(t *testing.T) {
	h := newHarness(t, Options{})
	h.toggle(t, row1)

	s := h.engine.Snapshot()
	if s.Rest.NextKey != "" {
		t.Errorf("nextKey = %q, want empty", s.Rest.NextKey)
	}
	if s.Rest.UpNext == nil || s.Rest.UpNext.Title != FinalUpNextTitle || s.Rest.UpNext.Detail != FinalUpNextDetail {
		t.Errorf("upNext = %+v", s.Rest.UpNext)
	}
	for _, set := range s.Sets {
		if set.Ready {
			t.Errorf("set %s ready with no next set", set.Key)
		}
	}
}

// TestReadyFlag verifies the next set is flagged only once the countdown has
// stopped running.
func TestReadyFlag(t *testing.T) {
	h := newHarness(t, Options{})
	h.toggle(t, bench1)

	if s := h.engine.Snapshot(); s.Sets[1].Ready {
		t.Error("next set ready while resting")
	}
	h.engine.PauseTimer()
	if s := h.engine.Snapshot(); s.Sets[1].Ready {
		t.Error("next set ready while rest paused")
	}
	h.engine.ResumeTimer()
	h.sched.ticks(90)

	s := h.engine.Snapshot()
	if !s.Sets[1].Ready {
		t.Error("next set not ready after rest finished")
	}
	if s.Sets[0].Ready || s.Sets[2].Ready {
		t.Error("wrong set flagged ready")
	}
}

// TestProgressBounds checks completed never exceeds total and
// AllCompleted tracks equality through a sequence of toggles.
func TestProgressBounds(t *testing.T) {
	h := newHarness(t, Options{})
	for _, key := range []string{bench1, bench2, bench1, row1, bench1, bench2, bench2} {
		h.toggle(t, key)
		s := h.engine.Snapshot()
		if s.CompletedSets > s.TotalSets {
			t.Fatalf("completed %d > total %d", s.CompletedSets, s.TotalSets)
		}
		if s.AllCompleted != (s.CompletedSets == s.TotalSets && s.TotalSets > 0) {
			t.Fatalf("allCompleted = %v with %d/%d", s.AllCompleted, s.CompletedSets, s.TotalSets)
		}
	}
	if s := h.engine.Snapshot(); !s.AllCompleted || s.Progress != 1 {
		t.Errorf("final snapshot = %d/%d %v", s.CompletedSets, s.TotalSets, s.AllCompleted)
	}
}

// TestEmptyDayNeverCompletes verifies a day with no sets cannot be finished.
func TestEmptyDayNeverCompletes(t *testing.T) {
	store := &stubStore{program: models.Program{ID: "p", Days: []models.ProgramDay{{ID: "d"}}}}
	e, err := Start(store, "p", "d", Deps{Scheduler: &fakeScheduler{}, Log: discard})
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	if s := e.Snapshot(); s.AllCompleted || s.TotalSets != 0 {
		t.Errorf("snapshot = %+v", s)
	}
	if err := e.Complete(context.Background()); !errors.Is(err, ErrSetsIncomplete) {
		t.Errorf("err = %v, want ErrSetsIncomplete", err)
	}
}

// TestCompleteRequiresAllSets verifies the completion precondition.
func TestCompleteRequiresAllSets(t *testing.T) {
	h := newHarness(t, Options{})
	h.toggle(t, bench1)

	if err := h.engine.Complete(context.Background()); !errors.Is(err, ErrSetsIncomplete) {
		t.Fatalf("err = %v, want ErrSetsIncomplete", err)
	}
	if s := h.engine.Snapshot(); s.Status != StatusInProgress || s.Rest.State != RestResting {
		t.Errorf("state changed on failed completion: %q %q", s.Status, s.Rest.State)
	}
	if h.store.completes != 0 {
		t.Error("store was called")
	}
}

// TestComplete verifies the completion transition: timers cleared, store
// updated once, navigation handed off.
func TestComplete(t *testing.T) {
	h := newHarness(t, Options{})
	h.toggle(t, bench1)
	h.toggle(t, bench2)
	h.toggle(t, row1)

	if err := h.engine.Complete(context.Background()); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	s := h.engine.Snapshot()
	if s.Status != StatusCompleted || s.Rest.State != RestIdle || s.CompletedAt == nil {
		t.Errorf("snapshot = %q %q %v", s.Status, s.Rest.State, s.CompletedAt)
	}
	if h.sched.active(tick) != 0 || h.sched.active(alert) != 0 {
		t.Error("timers still active after completion")
	}
	if h.store.completes != 1 {
		t.Errorf("store completes = %d, want 1", h.store.completes)
	}
	if len(h.nav.calls) != 1 || h.nav.calls[0].screen != ScreenProgramDetails || h.nav.calls[0].params["programId"] != "p1" {
		t.Errorf("navigation = %+v", h.nav.calls)
	}

	if err := h.engine.Complete(context.Background()); !errors.Is(err, ErrSessionCompleted) {
		t.Errorf("second Complete err = %v, want ErrSessionCompleted", err)
	}
	if err := h.engine.ToggleSet(bench1); !errors.Is(err, ErrSessionCompleted) {
		t.Errorf("toggle after completion err = %v", err)
	}
	if h.store.completes != 1 {
		t.Errorf("store completes = %d, want 1", h.store.completes)
	}
}

// TestCompleteRollsBackOnStoreFailure verifies a failing store leaves the
// session retryable.
func TestCompleteRollsBackOnStoreFailure(t *testing.T) {
	h := newHarness(t, Options{})
	h.toggle(t, bench1)
	h.toggle(t, bench2)
	h.toggle(t, row1)
	h.store.panicMsg = "storage unavailable"

	err := h.engine.Complete(context.Background())
	if !errors.Is(err, ErrCompletionFailed) {
		t.Fatalf("err = %v, want ErrCompletionFailed", err)
	}
	if s := h.engine.Snapshot(); s.Status != StatusInProgress {
		t.Errorf("status = %q, want rollback to in_progress", s.Status)
	}
	if len(h.nav.calls) != 0 {
		t.Error("navigated after failure")
	}

	h.store.panicMsg = ""
	if err := h.engine.Complete(context.Background()); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if h.store.completes != 1 {
		t.Errorf("store completes = %d, want 1", h.store.completes)
	}
}

// TestCompleteCancelledContext verifies a cancelled caller leaves the session
// untouched.
func TestCompleteCancelledContext(t *testing.T) {
	h := newHarness(t, Options{})
	h.toggle(t, bench1)
	h.toggle(t, bench2)
	h.toggle(t, row1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := h.engine.Complete(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if s := h.engine.Snapshot(); s.Status != StatusInProgress || s.Rest.State != RestResting {
		t.Errorf("state changed: %q %q", s.Status, s.Rest.State)
	}
}

// TestMaxAlertsExpires verifies the alert loop ends after MaxAlerts and an
// expired rest is not re-alerted on resume.
func TestMaxAlertsExpires(t *testing.T) {
	h := newHarness(t, Options{MaxAlerts: 2})
	h.toggle(t, row1)
	h.sched.ticks(45)
	h.sched.fire(alert)

	if a, stops := h.notifier.counts(); a != 2 || stops != 1 {
		t.Errorf("alerts/stops = %d/%d, want 2/1", a, stops)
	}
	if h.sched.active(alert) != 0 {
		t.Error("alert loop still active after expiry")
	}
	s := h.engine.Snapshot()
	if !s.Rest.Expired || s.Rest.State != RestFinished {
		t.Errorf("rest = %+v", s.Rest)
	}

	h.engine.PauseWorkout()
	h.engine.ResumeWorkout()
	if h.sched.active(alert) != 0 {
		t.Error("expired rest re-alerted on resume")
	}
}

// TestNotifierErrorsSwallowed verifies alert failures never block a
// transition.
func TestNotifierErrorsSwallowed(t *testing.T) {
	h := newHarness(t, Options{})
	h.notifier.err = errBoom
	h.toggle(t, row1)
	h.sched.ticks(45)

	if s := h.engine.Snapshot(); s.Rest.State != RestFinished {
		t.Fatalf("rest state = %q", s.Rest.State)
	}
	if err := h.engine.AcknowledgeRest(); err != nil {
		t.Errorf("ack: %v", err)
	}
}

// TestCloseStopsTimers verifies navigating away tears down both repeaters.
func TestCloseStopsTimers(t *testing.T) {
	h := newHarness(t, Options{})
	h.toggle(t, bench1)
	h.sched.ticks(90)
	h.toggle(t, bench2)
	h.engine.Close()

	if h.sched.active(tick) != 0 || h.sched.active(alert) != 0 {
		t.Error("timers active after Close")
	}
	h.sched.fireAll(tick)
	if got := h.engine.Snapshot().Rest.Remaining; got != 120 {
		t.Errorf("remaining = %d, want 120", got)
	}
	if err := h.engine.ToggleSet(row1); !errors.Is(err, ErrSessionClosed) {
		t.Errorf("err = %v, want ErrSessionClosed", err)
	}
}

// TestStartUnknownIDs verifies explicit lookup failures.
func TestStartUnknownIDs(t *testing.T) {
	store := &stubStore{program: testProgram()}
	if _, err := Start(store, "nope", "d1", Deps{Log: discard}); !errors.Is(err, ErrProgramNotFound) {
		t.Errorf("err = %v, want ErrProgramNotFound", err)
	}
	if _, err := Start(store, "p1", "nope", Deps{Log: discard}); !errors.Is(err, ErrDayNotFound) {
		t.Errorf("err = %v, want ErrDayNotFound", err)
	}
}

// TestToggleUnknownSet rejects keys that are not part of the day.
func TestToggleUnknownSet(t *testing.T) {
	h := newHarness(t, Options{})
	if err := h.engine.ToggleSet("bench-s9-9"); !errors.Is(err, ErrUnknownSet) {
		t.Errorf("err = %v, want ErrUnknownSet", err)
	}
}

type panicNotifier struct{}

func (panicNotifier) Alert() error { panic("speaker gone") }
func (panicNotifier) Stop() error  { panic("speaker gone") }

// blockingNotifier holds every Alert until release is closed.
type blockingNotifier struct {
	entered chan struct{}
	release chan struct{}
}

func (n *blockingNotifier) Alert() error {
	n.entered <- struct{}{}
	<-n.release
	return nil
}

func (n *blockingNotifier) Stop() error { return nil }

func startWithNotifier(t *testing.T, n Notifier) (*Engine, *fakeScheduler) {
	t.Helper()
	sched := &fakeScheduler{}
	e, err := Start(&stubStore{program: testProgram()}, "p1", "d1", Deps{
		Notifier:  n,
		Scheduler: sched,
		Log:       discard,
		Options:   Options{TickInterval: tick, AlertInterval: alert},
	})
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(e.Close)
	return e, sched
}

// TestNotifierPanicRecovered verifies a panicking notifier neither escapes
// the timer callback nor wedges later transitions.
func TestNotifierPanicRecovered(t *testing.T) {
	e, sched := startWithNotifier(t, panicNotifier{})
	if err := e.ToggleSet(row1); err != nil {
		t.Fatal(err)
	}
	sched.ticks(45)
	sched.fire(alert)

	if s := e.Snapshot(); s.Rest.State != RestFinished {
		t.Fatalf("rest state = %q, want finished", s.Rest.State)
	}
	if err := e.AcknowledgeRest(); err != nil {
		t.Fatalf("AcknowledgeRest: %v", err)
	}
	if s := e.Snapshot(); s.Rest.State != RestIdle {
		t.Errorf("rest state = %q, want idle", s.Rest.State)
	}
}

// TestSlowNotifierReleasesLock verifies reads proceed while an alert is
// still being played.
func TestSlowNotifierReleasesLock(t *testing.T) {
	n := &blockingNotifier{entered: make(chan struct{}, 8), release: make(chan struct{})}
	e, sched := startWithNotifier(t, n)
	if err := e.ToggleSet(row1); err != nil {
		t.Fatal(err)
	}
	sched.ticks(44)

	done := make(chan struct{})
	go func() {
		defer close(done)
		sched.fire(tick)
	}()
	<-n.entered

	snap := make(chan Snapshot, 1)
	go func() { snap <- e.Snapshot() }()
	select {
	case s := <-snap:
		if s.Rest.State != RestFinished {
			t.Errorf("rest state = %q, want finished", s.Rest.State)
		}
	case <-time.After(time.Second):
		t.Error("Snapshot blocked behind the notifier")
	}

	close(n.release)
	<-done
}
