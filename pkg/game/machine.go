package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/illusionaire/pkg/state"
	"github.com/jwebster45206/illusionaire/pkg/world"
)

var (
	ErrUnknownAction = errors.New("unknown action")
	ErrNoMonster     = errors.New("no monster to face")
	ErrAppeaseSpent  = errors.New("monster will not be appeased again")
	ErrNoRiddle      = errors.New("no riddle pending")
	ErrBusy          = errors.New("the monster is busy")
	ErrClosed        = errors.New("game session closed")
)

// errNoChange aborts an update without emitting a snapshot or an error.
var errNoChange = errors.New("no change")

const (
	DefaultHurtRevertDelay = 1200 * time.Millisecond
	DefaultDefeatDelay     = 1500 * time.Millisecond
	DefaultAppeasePenalty  = 15
	DefaultRiddleTimeout   = 20 * time.Second

	subscriberBuffer = 16
)

// RiddleService asks themed riddles and judges answers.
type RiddleService interface {
	GetRiddle(ctx context.Context, theme string) (string, error)
	CheckAnswer(ctx context.Context, riddle, answer string) (bool, error)
}

// Options tunes a Machine. Zero fields take the defaults above.
type Options struct {
	HurtRevertDelay time.Duration
	DefeatDelay     time.Duration // Measured from the hit, not from the hurt revert
	AppeasePenalty  int
	RiddleTimeout   time.Duration
	MaxHealth       int // Starting and maximum health, state.DefaultMaxHealth when unset
	Scheduler       Scheduler
}

func (o Options) withDefaults() Options {
	if o.HurtRevertDelay <= 0 {
		o.HurtRevertDelay = DefaultHurtRevertDelay
	}
	if o.DefeatDelay <= 0 {
		o.DefeatDelay = DefaultDefeatDelay
	}
	if o.AppeasePenalty <= 0 {
		o.AppeasePenalty = DefaultAppeasePenalty
	}
	if o.RiddleTimeout <= 0 {
		o.RiddleTimeout = DefaultRiddleTimeout
	}
	if o.MaxHealth <= 0 {
		o.MaxHealth = state.DefaultMaxHealth
	}
	if o.Scheduler == nil {
		o.Scheduler = RealScheduler{}
	}
	return o
}

// Machine is the game state machine for one session. Every mutation, whether
// it comes from a player intent, a timer or a riddle response, runs through
// update and is serialized by mu.
type Machine struct {
	catalog *world.Catalog
	riddles RiddleService
	opts    Options
	logger  *slog.Logger

	ctx    context.Context // Cancelled by Close; bounds riddle calls
	cancel context.CancelFunc

	mu        sync.Mutex
	gs        *state.GameState
	riddleFor string             // Action the pending riddle was asked for
	timers    map[string][]Timer // Deferred transitions by action ID
	subs      map[int]chan state.Snapshot
	nextSub   int
	closed    bool

	inflight sync.WaitGroup
}

// New starts a session in the catalog's starting room.
func New(catalog *world.Catalog, riddles RiddleService, logger *slog.Logger, opts Options) *Machine {
	opts = opts.withDefaults()
	gs := state.New(catalog)
	gs.SetMaxHealth(opts.MaxHealth, true)
	ctx, cancel := context.WithCancel(context.Background())
	return &Machine{
		catalog: catalog,
		riddles: riddles,
		opts:    opts,
		logger:  logger.With("session_id", gs.ID.String()),
		ctx:     ctx,
		cancel:  cancel,
		gs:      gs,
		timers:  make(map[string][]Timer),
		subs:    make(map[int]chan state.Snapshot),
	}
}

// ID returns the session id.
func (m *Machine) ID() uuid.UUID {
	return m.gs.ID
}

// Snapshot returns the current state.
func (m *Machine) Snapshot() state.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gs.Snapshot()
}

// Subscribe returns a channel that receives the current snapshot and then one
// snapshot per transition. A slow reader loses intermediate snapshots, never
// the latest. The channel is closed by cancel or Close.
func (m *Machine) Subscribe() (<-chan state.Snapshot, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan state.Snapshot, subscriberBuffer)
	if m.closed {
		close(ch)
		return ch, func() {}
	}
	id := m.nextSub
	m.nextSub++
	m.subs[id] = ch
	ch <- m.gs.Snapshot()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if c, ok := m.subs[id]; ok {
				delete(m.subs, id)
				close(c)
			}
		})
	}
}

// Wait blocks until no riddle request is in flight.
func (m *Machine) Wait() {
	m.inflight.Wait()
}

// Close stops deferred transitions, cancels riddle calls and closes every
// subscription. Later intents fail with ErrClosed.
func (m *Machine) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	m.cancel()
	for id := range m.timers {
		m.clearTimers(id)
	}
	for id, ch := range m.subs {
		delete(m.subs, id)
		close(ch)
	}
	m.logger.Debug("Game session closed")
	return nil
}

// update applies fn to the state under the lock and publishes the result. If
// fn returns an error the state must be left untouched.
func (m *Machine) update(fn func(gs *state.GameState) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}
	if err := fn(m.gs); err != nil {
		if errors.Is(err, errNoChange) {
			return nil
		}
		return err
	}
	m.gs.Touch()
	m.publish(m.gs.Snapshot())
	return nil
}

// publish must be called with mu held.
func (m *Machine) publish(snap state.Snapshot) {
	for _, ch := range m.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

// schedule must be called with mu held.
func (m *Machine) schedule(actionID string, d time.Duration, fn func(gs *state.GameState) error) {
	t := m.opts.Scheduler.AfterFunc(d, func() {
		if err := m.update(fn); err != nil && !errors.Is(err, ErrClosed) {
			m.logger.Error("Deferred transition failed", "action_id", actionID, "error", err)
		}
	})
	m.timers[actionID] = append(m.timers[actionID], t)
}

// clearTimers must be called with mu held.
func (m *Machine) clearTimers(actionID string) {
	for _, t := range m.timers[actionID] {
		t.Stop()
	}
	delete(m.timers, actionID)
}

// async runs fn in the background and tracks it for Wait.
func (m *Machine) async(fn func()) {
	m.inflight.Add(1)
	go func() {
		defer m.inflight.Done()
		fn()
	}()
}

// callContext bounds a riddle call by the configured timeout and by Close,
// but not by the cancellation of the intent that started it.
func (m *Machine) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.opts.RiddleTimeout)
	stop := context.AfterFunc(m.ctx, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

func (m *Machine) reject(op string, err error, args ...any) error {
	m.logger.Warn("Rejected "+op, append(args, "error", err)...)
	return fmt.Errorf("%s: %w", op, err)
}
