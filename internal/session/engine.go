package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/gymflow/internal/models"
)

var (
	ErrProgramNotFound  = errors.New("program not found")
	ErrDayNotFound      = errors.New("day not found")
	ErrUnknownSet       = errors.New("unknown set")
	ErrSetsIncomplete   = errors.New("complete all sets before finishing the workout")
	ErrSessionCompleted = errors.New("session already completed")
	ErrSessionClosed    = errors.New("session closed")
	ErrNoRest           = errors.New("no rest timer in that state")
	ErrCompletionFailed = errors.New("could not complete workout, try again")
)

// WorkoutStatus is the session-level state.
type WorkoutStatus string

const (
	StatusNotStarted WorkoutStatus = "not_started"
	StatusInProgress WorkoutStatus = "in_progress"
	StatusPaused     WorkoutStatus = "paused"
	StatusCompleted  WorkoutStatus = "completed"
)

// RestState is the rest-timer state.
type RestState string

const (
	RestIdle     RestState = "idle"
	RestResting  RestState = "resting"
	RestFinished RestState = "finished" // finished, not yet acknowledged
	RestPaused   RestState = "paused"
)

// Up-next text shown after the last set.
const (
	FinalUpNextTitle  = "Session almost done"
	FinalUpNextDetail = "No more sets after this"
)

// ProgramStore is the part of the program store a session needs.
type ProgramStore interface {
	Program(id string) (models.Program, bool)
	CompleteWorkoutDay(programID, dayID string)
}

// Options tune the timers.
type Options struct {
	TickInterval  time.Duration
	AlertInterval time.Duration
	// MaxAlerts stops the alert loop after that many alerts. 0 repeats until
	// the rest is acknowledged.
	MaxAlerts int
}

// Deps are the collaborators injected into every engine. Nil fields get
// no-op or real-time defaults.
type Deps struct {
	Notifier  Notifier
	Navigator Navigator
	Scheduler Scheduler
	Log       *slog.Logger
	Now       func() time.Time
	Options   Options
}

func (d Deps) withDefaults() Deps {
	if d.Notifier == nil {
		d.Notifier = NopNotifier{}
	}
	if d.Navigator == nil {
		d.Navigator = nopNavigator{}
	}
	if d.Scheduler == nil {
		d.Scheduler = TickerScheduler{}
	}
	if d.Log == nil {
		d.Log = slog.Default()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Options.TickInterval <= 0 {
		d.Options.TickInterval = time.Second
	}
	if d.Options.AlertInterval <= 0 {
		d.Options.AlertInterval = 2500 * time.Millisecond
	}
	return d
}

type flatSet struct {
	key          string
	exerciseID   string
	exerciseName string
	set          models.ProgramSetSchema
	restSeconds  int
}

// UpNext describes the set after the one just finished.
type UpNext struct {
	Key    string `json:"key,omitempty"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// Engine drives one workout day. All methods are safe for concurrent use;
// timer callbacks take the same lock as user actions.
type Engine struct {
	mu sync.Mutex

	store     ProgramStore
	notifier  Notifier
	navigator Navigator
	scheduler Scheduler
	log       *slog.Logger
	now       func() time.Time
	opts      Options

	programID string
	day       models.ProgramDay
	sets      []flatSet
	index     map[string]int
	completed map[string]bool
	status    WorkoutStatus
	closed    bool

	startedAt   time.Time
	completedAt time.Time

	rest       RestState
	remaining  int
	total      int
	activeKey  string
	nextKey    string
	upNext     *UpNext
	expired    bool
	alertsSent int

	// At most one of each repeater exists; the generation counters make
	// callbacks from a stopped repeater no-ops.
	stopCountdown func()
	stopAlerts    func()
	countdownGen  uint64
	alertGen      uint64

	// Notifier calls are queued under mu and delivered by unlock once mu is
	// released, in the order their tickets were taken.
	pending    []notifyCall
	nextTicket uint64
	notifyMu   sync.Mutex
	notifyCond *sync.Cond
	serving    uint64
}

type notifyCall int

const (
	notifyAlert notifyCall = iota
	notifyStop
)

// Start snapshots a program day and returns an engine in not_started state.
func Start(store ProgramStore, programID, dayID string, deps Deps) (*Engine, error) {
	p, ok := store.Program(programID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrProgramNotFound, programID)
	}
	day, ok := p.Day(dayID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrDayNotFound, dayID)
	}
	deps = deps.withDefaults()

	e := &Engine{
		store:     store,
		notifier:  deps.Notifier,
		navigator: deps.Navigator,
		scheduler: deps.Scheduler,
		log:       deps.Log.With("program_id", programID, "day_id", dayID),
		now:       deps.Now,
		opts:      deps.Options,
		programID: programID,
		day:       day,
		index:     make(map[string]int),
		completed: make(map[string]bool),
		status:    StatusNotStarted,
		rest:      RestIdle,
		startedAt: deps.Now(),
	}
	e.notifyCond = sync.NewCond(&e.notifyMu)
	for _, ex := range day.Exercises {
		for i, s := range ex.Sets {
			key := models.SetKey(ex.ID, s.ID, i)
			e.index[key] = len(e.sets)
			e.sets = append(e.sets, flatSet{
				key:          key,
				exerciseID:   ex.ID,
				exerciseName: ex.Name,
				set:          s,
				restSeconds:  s.RestDuration(),
			})
		}
	}
	return e, nil
}

// ProgramID returns the program the session belongs to.
func (e *Engine) ProgramID() string { return e.programID }

// DayID returns the day being trained.
func (e *Engine) DayID() string { return e.day.ID }

// ToggleSet marks a set done, or un-marks it when already done. Marking
// starts the rest for that set; un-marking the set that owns the running
// rest clears it.
func (e *Engine) ToggleSet(key string) error {
	e.mu.Lock()
	defer e.unlock()

	if err := e.checkActive(); err != nil {
		return err
	}
	i, ok := e.index[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSet, key)
	}

	if e.completed[key] {
		delete(e.completed, key)
		if key == e.activeKey {
			e.clearRest()
		}
		return nil
	}

	e.completed[key] = true
	if e.status == StatusNotStarted || e.status == StatusPaused {
		e.status = StatusInProgress
	}
	e.startRest(i)
	return nil
}

// PauseTimer freezes a running countdown.
func (e *Engine) PauseTimer() error {
	e.mu.Lock()
	defer e.unlock()

	if err := e.checkActive(); err != nil {
		return err
	}
	if e.rest != RestResting {
		return ErrNoRest
	}
	e.rest = RestPaused
	e.reconcile()
	return nil
}

// ResumeTimer continues a paused countdown from where it stopped.
func (e *Engine) ResumeTimer() error {
	e.mu.Lock()
	defer e.unlock()

	if err := e.checkActive(); err != nil {
		return err
	}
	if e.rest != RestPaused {
		return ErrNoRest
	}
	e.rest = RestResting
	e.reconcile()
	return nil
}

// PauseWorkout pauses the whole session. The countdown freezes and alerts
// stop, but a finished rest stays unacknowledged.
func (e *Engine) PauseWorkout() error {
	e.mu.Lock()
	defer e.unlock()

	if err := e.checkActive(); err != nil {
		return err
	}
	if e.status != StatusInProgress {
		return nil
	}
	e.status = StatusPaused
	e.reconcile()
	return nil
}

// ResumeWorkout resumes a paused session, restarting alerts for a finished
// rest that is still unacknowledged.
func (e *Engine) ResumeWorkout() error {
	e.mu.Lock()
	defer e.unlock()

	if err := e.checkActive(); err != nil {
		return err
	}
	if e.status != StatusPaused {
		return nil
	}
	e.status = StatusInProgress
	e.reconcile()
	return nil
}

// AcknowledgeRest dismisses a finished rest.
func (e *Engine) AcknowledgeRest() error {
	e.mu.Lock()
	defer e.unlock()

	if err := e.checkActive(); err != nil {
		return err
	}
	if e.rest != RestFinished {
		return ErrNoRest
	}
	e.clearRest()
	return nil
}

// SkipRest clears the rest in any state. Skipping with no rest is a no-op.
func (e *Engine) SkipRest() error {
	e.mu.Lock()
	defer e.unlock()

	if err := e.checkActive(); err != nil {
		return err
	}
	e.clearRest()
	return nil
}

// Complete finishes the session and writes the completion into the program
// store. On success the navigator is sent to the program details screen.
func (e *Engine) Complete(ctx context.Context) error {
	e.mu.Lock()
	if err := e.checkActive(); err != nil {
		e.unlock()
		return err
	}
	if !e.allCompleted() {
		e.unlock()
		return ErrSetsIncomplete
	}
	if err := ctx.Err(); err != nil {
		e.unlock()
		return fmt.Errorf("completing session: %w", err)
	}

	prev := e.status
	e.clearRest()
	e.status = StatusCompleted
	if err := e.commit(); err != nil {
		e.status = prev
		e.unlock()
		e.log.Error("workout completion failed", "error", err)
		return fmt.Errorf("%w: %v", ErrCompletionFailed, err)
	}
	e.completedAt = e.now()
	programID := e.programID
	e.unlock()

	e.log.Info("workout completed", "sets", len(e.sets))
	e.navigator.Navigate(ScreenProgramDetails, map[string]string{"programId": programID})
	return nil
}

// Close stops every timer. The session cannot be used afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.unlock()

	e.haltCountdown()
	e.haltAlerts()
	e.closed = true
}

func (e *Engine) commit() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("program store panicked: %v", r)
		}
	}()
	e.store.CompleteWorkoutDay(e.programID, e.day.ID)
	return nil
}

func (e *Engine) checkActive() error {
	if e.closed {
		return ErrSessionClosed
	}
	if e.status == StatusCompleted {
		return ErrSessionCompleted
	}
	return nil
}

func (e *Engine) allCompleted() bool {
	return len(e.sets) > 0 && len(e.completed) == len(e.sets)
}

// startRest replaces any current rest with a fresh countdown for set i.
func (e *Engine) startRest(i int) {
	e.haltCountdown()
	e.haltAlerts()

	fs := e.sets[i]
	e.rest = RestResting
	e.remaining = fs.restSeconds
	e.total = fs.restSeconds
	e.activeKey = fs.key
	e.expired = false
	e.alertsSent = 0

	if i+1 < len(e.sets) {
		next := e.sets[i+1]
		e.nextKey = next.key
		e.upNext = &UpNext{
			Key:    next.key,
			Title:  next.exerciseName,
			Detail: fmt.Sprintf("%s · %s", next.set.Label, next.set.TargetReps),
		}
	} else {
		e.nextKey = ""
		e.upNext = &UpNext{Title: FinalUpNextTitle, Detail: FinalUpNextDetail}
	}

	e.log.Debug("rest started", "set", fs.key, "seconds", fs.restSeconds)
	e.reconcile()
}

func (e *Engine) clearRest() {
	e.haltCountdown()
	e.haltAlerts()
	e.rest = RestIdle
	e.remaining = 0
	e.total = 0
	e.activeKey = ""
	e.nextKey = ""
	e.upNext = nil
	e.expired = false
	e.alertsSent = 0
}

// reconcile starts or stops the repeaters to match the current state.
// The countdown runs only while resting in an unpaused workout; alerts run
// only for a finished, unexpired rest in an unpaused workout.
func (e *Engine) reconcile() {
	wantCountdown := e.rest == RestResting && e.status != StatusPaused
	switch {
	case wantCountdown && e.stopCountdown == nil:
		e.countdownGen++
		gen := e.countdownGen
		e.stopCountdown = e.scheduler.Every(e.opts.TickInterval, func() { e.tick(gen) })
	case !wantCountdown && e.stopCountdown != nil:
		e.haltCountdown()
	}

	wantAlerts := e.rest == RestFinished && e.status != StatusPaused && !e.expired
	switch {
	case wantAlerts && e.stopAlerts == nil:
		e.alertGen++
		gen := e.alertGen
		e.stopAlerts = e.scheduler.Every(e.opts.AlertInterval, func() { e.repeatAlert(gen) })
		e.fireAlert()
	case !wantAlerts && e.stopAlerts != nil:
		e.haltAlerts()
	}
}

func (e *Engine) tick(gen uint64) {
	e.mu.Lock()
	defer e.unlock()

	if gen != e.countdownGen || e.rest != RestResting || e.status == StatusPaused {
		return
	}
	e.remaining--
	if e.remaining <= 0 {
		e.remaining = 0
		e.rest = RestFinished
		e.log.Debug("rest finished", "set", e.activeKey)
	}
	e.reconcile()
}

func (e *Engine) repeatAlert(gen uint64) {
	e.mu.Lock()
	defer e.unlock()

	if gen != e.alertGen || e.stopAlerts == nil {
		return
	}
	e.fireAlert()
}

func (e *Engine) fireAlert() {
	e.alertsSent++
	e.pending = append(e.pending, notifyAlert)
	if e.opts.MaxAlerts > 0 && e.alertsSent >= e.opts.MaxAlerts {
		e.expired = true
		e.haltAlerts()
	}
}

func (e *Engine) haltCountdown() {
	if e.stopCountdown == nil {
		return
	}
	e.stopCountdown()
	e.stopCountdown = nil
	e.countdownGen++
}

func (e *Engine) haltAlerts() {
	if e.stopAlerts == nil {
		return
	}
	e.stopAlerts()
	e.stopAlerts = nil
	e.alertGen++
	e.pending = append(e.pending, notifyStop)
}

// unlock releases mu, then delivers the notifier calls queued while it was
// held. A slow notifier never holds up the engine lock.
func (e *Engine) unlock() {
	calls := e.pending
	e.pending = nil
	ticket := e.nextTicket
	if len(calls) > 0 {
		e.nextTicket++
	}
	e.mu.Unlock()
	if len(calls) == 0 {
		return
	}

	e.notifyMu.Lock()
	defer e.notifyMu.Unlock()
	for e.serving != ticket {
		e.notifyCond.Wait()
	}
	for _, c := range calls {
		e.deliver(c)
	}
	e.serving++
	e.notifyCond.Broadcast()
}

func (e *Engine) deliver(c notifyCall) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("rest notifier panicked", "panic", r)
		}
	}()
	if c == notifyAlert {
		if err := e.notifier.Alert(); err != nil {
			e.log.Warn("rest alert failed", "error", err)
		}
		return
	}
	if err := e.notifier.Stop(); err != nil {
		e.log.Warn("stopping rest alert failed", "error", err)
	}
}
