package table

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/chiptally/chiptally/internal/cache"
	"github.com/chiptally/chiptally/internal/models"
	"github.com/chiptally/chiptally/internal/monitor"
)

// Config holds the engine's tunable delays. Both reveal windows keep the
// finished round on screen before the delayed reset wipes it.
type Config struct {
	// AwardRevealDelay runs after an auto-award or a manual pot award.
	AwardRevealDelay time.Duration
	// ResetRevealDelay runs after an operator-triggered round reset; longer,
	// since nothing was awarded and observers may still be comparing stacks.
	ResetRevealDelay time.Duration
}

// DefaultConfig mirrors the delays the frontend animation was tuned against.
func DefaultConfig() Config {
	return Config{
		AwardRevealDelay: 3 * time.Second,
		ResetRevealDelay: 5 * time.Second,
	}
}

// Engine orchestrates every room mutation as one serialized
// load → mutate → save → broadcast cycle. There is no authoritative in-memory
// room; the store owns the state and the engine owns the ordering. A per-code
// mutex serializes cycles in-process and the store's version check guards
// against anything that slips past it.
type Engine struct {
	store Store
	cfg   Config
	log   *logrus.Logger

	// Broadcaster may be set after construction, before the engine serves
	// traffic. Nil disables broadcasting (tests, tooling).
	Broadcaster Broadcaster

	// Metrics is optional; a nil monitor is a no-op.
	Metrics *monitor.Monitor

	mu          sync.Mutex
	roomLocks   map[string]*sync.Mutex
	resetTimers map[string]*time.Timer
	resetGen    map[string]uint64
}

// NewEngine builds an engine on top of the given store.
func NewEngine(store Store, cfg Config, logger *logrus.Logger) *Engine {
	if logger == nil {
		logger = logrus.New()
	}
	return &Engine{
		store:       store,
		cfg:         cfg,
		log:         logger,
		roomLocks:   make(map[string]*sync.Mutex),
		resetTimers: make(map[string]*time.Timer),
		resetGen:    make(map[string]uint64),
	}
}

// roomLock returns the mutex serializing all mutation cycles for one code.
func (e *Engine) roomLock(code string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.roomLocks[code]
	if !ok {
		l = &sync.Mutex{}
		e.roomLocks[code] = l
	}
	return l
}

// NormalizeCode folds a join code to its canonical (stored) form.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// CreateRoom allocates a fresh room with a unique join code.
func (e *Engine) CreateRoom(ctx context.Context, name string) (*models.Room, error) {
	for attempt := 0; attempt < 5; attempt++ {
		room := models.NewRoom(name, newRoomCode())
		err := e.store.CreateRoom(ctx, room)
		if errors.Is(err, ErrCodeTaken) {
			continue
		}
		if err != nil {
			return nil, err
		}
		e.log.WithFields(logrus.Fields{"room": room.Code, "name": name}).Info("Room created")
		e.Metrics.RoomCreated()
		return room, nil
	}
	return nil, fmt.Errorf("could not allocate a unique room code")
}

// GetRoom loads a room snapshot by code without mutating it.
func (e *Engine) GetRoom(ctx context.Context, code string) (*models.Room, error) {
	return e.store.LoadRoom(ctx, NormalizeCode(code))
}

// AddPlayer seats a new player and returns the updated room and the created
// seat so the caller can bind the requesting connection to it.
func (e *Engine) AddPlayer(ctx context.Context, code, name string, balance int) (*models.Room, *models.Player, error) {
	code = NormalizeCode(code)
	lock := e.roomLock(code)
	lock.Lock()
	defer lock.Unlock()

	room, err := e.store.LoadRoom(ctx, code)
	if err != nil {
		return nil, nil, err
	}
	// A negative stack would break pot accounting; treat it as unspecified.
	if balance < 0 {
		balance = models.DefaultBalance
	}
	player := addPlayer(room, name, balance)
	if err := e.store.SaveRoom(ctx, room); err != nil {
		return nil, nil, err
	}
	e.log.WithFields(logrus.Fields{"room": code, "player": player.ID, "name": name}).Info("Player joined")
	e.broadcastRoom(room)
	return room, player, nil
}

// HandleAction applies one fold/call/raise from the given player, then runs
// round-closure bookkeeping: stage advance on a normal close, auto-award and
// reveal timer on a collapse.
func (e *Engine) HandleAction(ctx context.Context, code string, playerID uuid.UUID, action Action, amount int) (*models.Room, error) {
	code = NormalizeCode(code)
	lock := e.roomLock(code)
	lock.Lock()
	defer lock.Unlock()

	room, err := e.store.LoadRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	idx := room.PlayerIndex(playerID)
	if idx < 0 {
		return nil, ErrNotAuthorized
	}

	outcome, err := applyAction(room, idx, action, amount)
	if err != nil {
		return nil, err
	}

	var ended *awardResult
	switch outcome {
	case RoundClosed:
		advanceStage(room)
	case RoundCollapsed:
		ended = collapseRound(room)
	}

	if err := e.store.SaveRoom(ctx, room); err != nil {
		return nil, err
	}

	e.logAction(room, playerID, action, amount)
	e.Metrics.ActionApplied(string(action))
	e.broadcastRoom(room)
	e.finishCollapsedRound(room, ended)
	return room, nil
}

// LeaveMode selects between a temporary leave (seat kept, auto-folded) and a
// permanent one (seat removed, indices re-based).
type LeaveMode string

const (
	LeaveTemporary LeaveMode = "temporary"
	LeavePermanent LeaveMode = "permanent"
)

// Leave handles both leave modes for the given player. Either mode can drop
// the active count to one mid-round, in which case the remaining player is
// auto-awarded the pot just as if the others had folded in turn.
func (e *Engine) Leave(ctx context.Context, code string, playerID uuid.UUID, mode LeaveMode) (*models.Room, error) {
	code = NormalizeCode(code)
	lock := e.roomLock(code)
	lock.Lock()
	defer lock.Unlock()

	room, err := e.store.LoadRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	idx := room.PlayerIndex(playerID)
	if idx < 0 {
		return nil, ErrNotAuthorized
	}

	switch mode {
	case LeaveTemporary:
		leaveTemporarily(room, idx)
	case LeavePermanent:
		removePlayer(room, idx)
	default:
		return nil, fmt.Errorf("unknown leave mode %q", mode)
	}

	var ended *awardResult
	if room.Stage != models.StageShowdown && room.Pot > 0 && room.ActiveCount() == 1 {
		ended = collapseRound(room)
	}

	if err := e.store.SaveRoom(ctx, room); err != nil {
		return nil, err
	}
	e.log.WithFields(logrus.Fields{"room": code, "player": playerID, "mode": mode}).Info("Player left")
	e.broadcastRoom(room)
	e.finishCollapsedRound(room, ended)
	return room, nil
}

// Rejoin restores a temporarily-left player's eligibility.
func (e *Engine) Rejoin(ctx context.Context, code string, playerID uuid.UUID) (*models.Room, error) {
	code = NormalizeCode(code)
	lock := e.roomLock(code)
	lock.Lock()
	defer lock.Unlock()

	room, err := e.store.LoadRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	idx := room.PlayerIndex(playerID)
	if idx < 0 {
		return nil, ErrNotAuthorized
	}
	rejoinSeat(room, idx)

	if err := e.store.SaveRoom(ctx, room); err != nil {
		return nil, err
	}
	e.broadcastRoom(room)
	return room, nil
}

// AwardPot splits the pot across the manually selected winners. Only valid
// at a natural showdown while winner selection is open. The award is revealed,
// then the shared reveal-window reset starts a fresh hand.
func (e *Engine) AwardPot(ctx context.Context, code string, winnerIDs []uuid.UUID) (*models.Room, error) {
	code = NormalizeCode(code)
	lock := e.roomLock(code)
	lock.Lock()
	defer lock.Unlock()

	room, err := e.store.LoadRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := awardPot(room, winnerIDs); err != nil {
		return nil, err
	}
	if err := e.store.SaveRoom(ctx, room); err != nil {
		return nil, err
	}
	e.log.WithFields(logrus.Fields{"room": code, "winners": len(winnerIDs)}).Info("Pot awarded")
	e.broadcastRoom(room)
	e.scheduleReset(code, e.cfg.AwardRevealDelay)
	return room, nil
}

// ResetRound is the operator-triggered reset: reveal immediately, then wipe
// the round after the longer reveal window.
func (e *Engine) ResetRound(ctx context.Context, code string) (*models.Room, error) {
	code = NormalizeCode(code)
	lock := e.roomLock(code)
	lock.Lock()
	defer lock.Unlock()

	room, err := e.store.LoadRoom(ctx, code)
	if err != nil {
		return nil, err
	}
	room.ShowCards = true
	if err := e.store.SaveRoom(ctx, room); err != nil {
		return nil, err
	}
	e.broadcastRoom(room)
	e.scheduleReset(code, e.cfg.ResetRevealDelay)
	return room, nil
}

// finishCollapsedRound broadcasts the round:ended notification and arms the
// reveal-window reset after an auto-award. No-op when the round didn't end.
func (e *Engine) finishCollapsedRound(room *models.Room, ended *awardResult) {
	if ended == nil {
		return
	}
	e.log.WithFields(logrus.Fields{
		"room":   room.Code,
		"winner": ended.WinnerID,
		"amount": ended.Amount,
	}).Info("Round ended, last player standing")
	if e.Broadcaster != nil {
		winnerID := ended.WinnerID
		e.Broadcaster.BroadcastToRoom(room.Code, Event{
			Type:      EventRoundEnded,
			WinnerID:  &winnerID,
			AmountWon: ended.Amount,
		})
	}
	e.scheduleReset(room.Code, e.cfg.AwardRevealDelay)
}

// scheduleReset arms the delayed full reset for a room, replacing any reset
// already pending for the same code so a rapid double-trigger can't fire two
// stale resets into a new hand. Stop alone is not enough: a timer that has
// already fired and is waiting on the room lock ignores Stop, so each arm
// also bumps a per-room generation that the callback re-checks.
func (e *Engine) scheduleReset(code string, delay time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if t, ok := e.resetTimers[code]; ok {
		t.Stop()
	}
	e.resetGen[code]++
	gen := e.resetGen[code]
	e.resetTimers[code] = time.AfterFunc(delay, func() {
		e.fireReset(code, gen)
	})
}

// fireReset runs when a reveal window elapses. It reloads fresh state under
// the room lock rather than closing over the snapshot that armed it, so
// actions taken during the delay are not clobbered. A room deleted in the
// meantime skips the reset silently.
func (e *Engine) fireReset(code string, gen uint64) {
	lock := e.roomLock(code)
	lock.Lock()
	defer lock.Unlock()

	e.mu.Lock()
	if e.resetGen[code] != gen {
		// A newer reset was armed while this callback waited on the room
		// lock; that one owns the reveal window now.
		e.mu.Unlock()
		return
	}
	delete(e.resetTimers, code)
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	room, err := e.store.LoadRoom(ctx, code)
	if err != nil {
		if !errors.Is(err, ErrRoomNotFound) {
			e.log.WithField("room", code).Warnf("Reset reload failed: %v", err)
		}
		return
	}
	resetRound(room)
	if err := e.store.SaveRoom(ctx, room); err != nil {
		e.log.WithField("room", code).Warnf("Reset save failed: %v", err)
		return
	}
	e.log.WithField("room", code).Info("Round reset")
	e.broadcastRoom(room)
}

// broadcastRoom fans the full snapshot out to every connection joined to the
// room code.
func (e *Engine) broadcastRoom(room *models.Room) {
	if e.Broadcaster == nil {
		return
	}
	e.Broadcaster.BroadcastToRoom(room.Code, Event{Type: EventRoomUpdate, Room: room})
}

// logAction pushes the applied action onto the Redis history queue,
// asynchronously so table latency never waits on Redis.
func (e *Engine) logAction(room *models.Room, playerID uuid.UUID, action Action, amount int) {
	record := cache.TableActionRecord{
		RoomID:    room.ID,
		RoomCode:  room.Code,
		PlayerID:  playerID,
		Action:    string(action),
		Amount:    amount,
		PotAfter:  room.Pot,
		Timestamp: time.Now().UnixMilli(),
	}
	go func(rec cache.TableActionRecord) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if cache.Rdb == nil {
			return
		}
		if err := cache.PublishTableAction(ctx, rec); err != nil {
			log.Printf("Error publishing action record for room %s: %v", rec.RoomCode, err)
		}
	}(record)
}
