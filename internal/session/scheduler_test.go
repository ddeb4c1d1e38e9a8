package session

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/claude/gymflow/internal/models"
)

// TestTickerSchedulerStops verifies the repeater fires until stopped and that
// stop is safe to call twice. goleak in TestMain checks the goroutine exits.
func TestTickerSchedulerStops(t *testing.T) {
	fired := make(chan struct{}, 16)
	stop := TickerScheduler{}.Every(time.Millisecond, func() {
		select {
		case fired <- struct{}{}:
		default:
		}
	})

	for i := 0; i < 3; i++ {
		select {
		case <-fired:
		case <-time.After(2 * time.Second):
			t.Fatalf("repeater fired %d times before timeout", i)
		}
	}
	stop()
	stop()
}

// TestEngineWithRealTimers runs a short rest on real tickers through to the
// repeating alert and acknowledges it.
func TestEngineWithRealTimers(t *testing.T) {
	var alerts atomic.Int32
	notifier := &countingNotifier{alerts: &alerts}
	store := &stubStore{program: models.Program{
		ID: "p",
		Days: []models.ProgramDay{{ID: "d", Exercises: []models.ProgramExercise{{
			ID: "e", Sets: []models.ProgramSetSchema{{ID: "s1", RestSeconds: intp(3)}},
		}}}},
	}}

	e, err := Start(store, "p", "d", Deps{
		Notifier: notifier,
		Log:      discard,
		Options:  Options{TickInterval: time.Millisecond, AlertInterval: time.Millisecond},
	})
	if err != nil {
		t.Fatal(err)
	}
	defer e.Close()

	if err := e.ToggleSet("e-s1-0"); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for alerts.Load() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("alerts = %d before timeout, rest = %+v", alerts.Load(), e.Snapshot().Rest)
		}
		time.Sleep(time.Millisecond)
	}

	if s := e.Snapshot(); s.Rest.State != RestFinished || s.Rest.Remaining != 0 {
		t.Errorf("rest = %+v", s.Rest)
	}
	if err := e.AcknowledgeRest(); err != nil {
		t.Fatal(err)
	}
}

type countingNotifier struct {
	alerts *atomic.Int32
}

func (n *countingNotifier) Alert() error {
	n.alerts.Add(1)
	return nil
}

func (n *countingNotifier) Stop() error { return nil }
