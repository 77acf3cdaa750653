// Package arena runs live battles between a trainer's pet and a chosen
// opponent. It owns per-match state, schedules the automated opponent turn and
// dispatches finish hooks; the turn arithmetic itself lives in package battle.
package arena

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/onegotchi/arena/internal/game/battle"
)

var (
	// ErrInvalidSelection is returned when a battle is started without two distinct pets.
	ErrInvalidSelection = errors.New("arena: select both a pet and an opponent")
	// ErrNotYourTurn is returned when the trainer attacks while the opponent is due.
	ErrNotYourTurn = errors.New("arena: not your turn")
	// ErrBattleFinished is returned when attacking in a finished battle.
	ErrBattleFinished = errors.New("arena: battle is finished")
	// ErrMatchNotFound is returned for an unknown or abandoned match ID.
	ErrMatchNotFound = errors.New("arena: match not found")
	// ErrTooManyMatches is returned when the active match limit is reached.
	ErrTooManyMatches = errors.New("arena: too many active matches")
	// ErrArenaClosed is returned by Start after Close.
	ErrArenaClosed = errors.New("arena: closed")
)

const hookTimeout = 10 * time.Second

// Options configures an Arena. Zero values disable the corresponding hook.
type Options struct {
	// OpponentDelay separates the trainer's attack from the automated reply.
	OpponentDelay time.Duration
	// ResultDelay postpones the finish notification after the final blow.
	ResultDelay time.Duration
	// MaxActiveMatches caps concurrent matches; 0 means unlimited.
	MaxActiveMatches int

	Recorder Recorder
	Reward   RewardHook
	Narrator Narrator
	Logger   *zap.Logger
	Now      func() time.Time
}

// Match is a read-only snapshot of one battle.
type Match struct {
	ID        string
	Trainer   string
	Self      battle.Combatant
	Opponent  battle.Combatant
	State     battle.State
	StartedAt time.Time
	// Result is set once the finish hooks have run.
	Result *MatchResult
}

type match struct {
	mu sync.Mutex
	// notifyMu serializes listener calls so a match's events arrive in order.
	notifyMu sync.Mutex

	id        string
	trainer   string
	self      battle.Combatant
	opponent  battle.Combatant
	state     battle.State
	startedAt time.Time
	result    *MatchResult
	left      bool

	timer    *TurnTimer
	listener Listener
}

func (m *match) snapshot() Match {
	st := m.state
	st.Log = append([]battle.LogEntry(nil), m.state.Log...)
	out := Match{
		ID:        m.id,
		Trainer:   m.trainer,
		Self:      m.self,
		Opponent:  m.opponent,
		State:     st,
		StartedAt: m.startedAt,
	}
	if m.result != nil {
		r := *m.result
		out.Result = &r
	}
	return out
}

// Arena holds every active match. It is safe for concurrent use.
type Arena struct {
	opts   Options
	logger *zap.Logger
	now    func() time.Time

	mu      sync.RWMutex
	matches map[string]*match
	closed  bool

	wg sync.WaitGroup
}

// New creates an Arena.
//
// Postcondition: the returned Arena has no matches.
func New(opts Options) *Arena {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Arena{
		opts:    opts,
		logger:  logger,
		now:     now,
		matches: make(map[string]*match),
	}
}

// Start begins a battle between self and opponent on behalf of trainer. The
// trainer's pet always moves first. l receives asynchronous notifications and
// may be nil. Listeners must not call Attack synchronously.
//
// Precondition: self and opponent carry distinct, non-empty IDs.
// Postcondition: the match is in progress and it is the trainer's turn.
func (a *Arena) Start(ctx context.Context, trainer string, self, opponent battle.Combatant, l Listener) (Match, error) {
	if err := ctx.Err(); err != nil {
		return Match{}, err
	}
	if self.ID == "" || opponent.ID == "" || self.ID == opponent.ID {
		return Match{}, ErrInvalidSelection
	}
	if l == nil {
		l = NopListener{}
	}

	m := &match{
		id:        uuid.NewString(),
		trainer:   trainer,
		self:      self,
		opponent:  opponent,
		state:     battle.Start(self, opponent),
		startedAt: a.now(),
		timer:     NewTurnTimer(),
		listener:  l,
	}

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return Match{}, ErrArenaClosed
	}
	if a.opts.MaxActiveMatches > 0 && len(a.matches) >= a.opts.MaxActiveMatches {
		a.mu.Unlock()
		return Match{}, ErrTooManyMatches
	}
	a.matches[m.id] = m
	a.mu.Unlock()

	a.logger.Info("match started",
		zap.String("match", m.id),
		zap.String("trainer", trainer),
		zap.String("self", self.Name),
		zap.String("opponent", opponent.Name),
	)
	return m.snapshot(), nil
}

// Attack resolves the trainer's turn in matchID. When the battle continues the
// opponent's reply is scheduled after OpponentDelay.
//
// Postcondition: on success the returned event is also delivered to the listener.
func (a *Arena) Attack(ctx context.Context, matchID string) (TurnEvent, error) {
	if err := ctx.Err(); err != nil {
		return TurnEvent{}, err
	}
	m, err := a.lookup(matchID)
	if err != nil {
		return TurnEvent{}, err
	}

	m.mu.Lock()
	switch {
	case m.left:
		m.mu.Unlock()
		return TurnEvent{}, ErrMatchNotFound
	case m.state.Finished:
		m.mu.Unlock()
		return TurnEvent{}, ErrBattleFinished
	case m.state.Turn != battle.SideSelf:
		m.mu.Unlock()
		return TurnEvent{}, ErrNotYourTurn
	}
	ev := a.resolve(m)
	var sched *ScheduledTurn
	if !ev.State.Finished {
		st := ScheduledTurn{
			MatchID: m.id,
			Side:    battle.SideOpponent,
			Round:   len(m.state.Log),
			Due:     a.now().Add(a.opts.OpponentDelay),
		}
		sched = &st
		m.timer.Reset(a.opts.OpponentDelay, func() { a.fire(st) })
	}
	m.notifyMu.Lock()
	m.mu.Unlock()

	m.listener.OnTurn(ev)
	if sched != nil {
		m.listener.OnScheduled(*sched)
	}
	m.notifyMu.Unlock()

	if ev.State.Finished {
		a.finish(m)
	}
	return ev, nil
}

// fire runs a scheduled opponent turn. Stale events are ignored.
func (a *Arena) fire(st ScheduledTurn) {
	m, err := a.lookup(st.MatchID)
	if err != nil {
		return
	}
	m.mu.Lock()
	if m.left || m.state.Finished || m.state.Turn != st.Side || len(m.state.Log) != st.Round {
		m.mu.Unlock()
		a.logger.Debug("dropping stale scheduled turn", zap.String("match", st.MatchID))
		return
	}
	ev := a.resolve(m)
	m.notifyMu.Lock()
	m.mu.Unlock()

	m.listener.OnTurn(ev)
	m.notifyMu.Unlock()

	if ev.State.Finished {
		a.finish(m)
	}
}

// resolve executes the pending turn. The caller holds m.mu.
func (a *Arena) resolve(m *match) TurnEvent {
	before := len(m.state.Log)
	m.state = battle.ExecuteTurn(m.state, m.self, m.opponent)

	ev := TurnEvent{MatchID: m.id, Entry: m.state.Log[before]}
	if len(m.state.Log) > before+1 {
		res := m.state.Log[before+1]
		ev.Result = &res
	}
	ev.State = m.state
	ev.State.Log = append([]battle.LogEntry(nil), m.state.Log...)

	a.logger.Debug("turn resolved",
		zap.String("match", m.id),
		zap.Int("round", ev.Entry.Round),
		zap.Stringer("attacker", ev.Entry.Attacker),
		zap.Int("atk", ev.Entry.Strike.AttackPower),
		zap.Int("def", ev.Entry.Strike.DefensePower),
		zap.Int("damage", ev.Entry.Strike.Damage),
		zap.Int("self_hp", m.state.SelfHealth),
		zap.Int("opponent_hp", m.state.OpponentHealth),
	)
	return ev
}

// finish runs the finish hooks in the background and then notifies the listener.
func (a *Arena) finish(m *match) {
	m.mu.Lock()
	res := MatchResult{
		MatchID:    m.id,
		Trainer:    m.trainer,
		Self:       m.self,
		Opponent:   m.opponent,
		Winner:     m.state.Winner,
		Rounds:     m.state.Rounds(),
		SelfHealth: m.state.SelfHealth,
		OppHealth:  m.state.OpponentHealth,
		Log:        append([]battle.LogEntry(nil), m.state.Log...),
		StartedAt:  m.startedAt,
		FinishedAt: a.now(),
	}
	m.mu.Unlock()

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		a.logger.Warn("arena closed, dropping match result", zap.String("match", res.MatchID))
		return
	}
	a.wg.Add(1)
	a.mu.Unlock()

	go func() {
		defer a.wg.Done()
		finished := time.Now()
		res = a.runHooks(res)

		if wait := a.opts.ResultDelay - time.Since(finished); wait > 0 {
			time.Sleep(wait)
		}

		m.mu.Lock()
		m.result = &res
		m.notifyMu.Lock()
		m.mu.Unlock()
		// Leaving stops further turns, so only decided battles get here; a
		// trainer who left after the final blow still sees the result.
		m.listener.OnFinish(res)
		m.notifyMu.Unlock()

		a.logger.Info("match finished",
			zap.String("match", res.MatchID),
			zap.String("winner", res.WinnerName()),
			zap.Int("rounds", res.Rounds),
		)
	}()
}

func (a *Arena) runHooks(res MatchResult) MatchResult {
	ctx, cancel := context.WithTimeout(context.Background(), hookTimeout)
	defer cancel()

	if a.opts.Reward != nil {
		line, err := a.opts.Reward.Reward(res)
		if err != nil {
			a.logger.Warn("reward hook failed", zap.String("match", res.MatchID), zap.Error(err))
		}
		res.Reward = line
	}
	if a.opts.Narrator != nil {
		text, err := a.opts.Narrator.Epilogue(ctx, res)
		if err != nil {
			a.logger.Warn("narration failed", zap.String("match", res.MatchID), zap.Error(err))
		}
		res.Epilogue = text
	}
	if a.opts.Recorder != nil {
		if err := a.opts.Recorder.Record(ctx, res); err != nil {
			a.logger.Error("recording battle", zap.String("match", res.MatchID), zap.Error(err))
		}
	}
	return res
}

// Get returns a snapshot of matchID.
func (a *Arena) Get(matchID string) (Match, error) {
	m, err := a.lookup(matchID)
	if err != nil {
		return Match{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshot(), nil
}

// Leave abandons matchID: any scheduled turn is cancelled and the state discarded.
// A battle that was already decided still delivers its result to the listener.
// Leaving an unknown match is a no-op.
func (a *Arena) Leave(matchID string) {
	a.mu.Lock()
	m, ok := a.matches[matchID]
	delete(a.matches, matchID)
	a.mu.Unlock()
	if !ok {
		return
	}
	m.timer.Stop()
	m.mu.Lock()
	m.left = true
	m.mu.Unlock()
	a.logger.Debug("match left", zap.String("match", matchID))
}

// Active returns the number of matches currently held.
func (a *Arena) Active() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return len(a.matches)
}

// Close abandons every match and waits for in-flight finish hooks.
func (a *Arena) Close() {
	a.mu.Lock()
	a.closed = true
	ids := make([]string, 0, len(a.matches))
	for id := range a.matches {
		ids = append(ids, id)
	}
	a.mu.Unlock()
	for _, id := range ids {
		a.Leave(id)
	}
	a.wg.Wait()
}

func (a *Arena) lookup(id string) (*match, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	m, ok := a.matches[id]
	if !ok {
		return nil, ErrMatchNotFound
	}
	return m, nil
}
