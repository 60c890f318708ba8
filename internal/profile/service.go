package profile

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/retroplay/internal/config"
	"github.com/vovakirdan/retroplay/internal/core"
	"github.com/vovakirdan/retroplay/internal/identity"
	"github.com/vovakirdan/retroplay/internal/remote"
	"github.com/vovakirdan/retroplay/internal/storage"
)

// EventKind classifies service events.
type EventKind int

const (
	// EventSynced follows a successful identity sync.
	EventSynced EventKind = iota
	// EventXPChanged follows any change of the displayed XP.
	EventXPChanged
	// EventLeaderboard carries a refreshed board.
	EventLeaderboard
	// EventSyncFailed reports a transient remote failure.
	EventSyncFailed
)

func (k EventKind) String() string {
	switch k {
	case EventSynced:
		return "synced"
	case EventXPChanged:
		return "xp_changed"
	case EventLeaderboard:
		return "leaderboard"
	case EventSyncFailed:
		return "sync_failed"
	default:
		return "unknown"
	}
}

// Event is delivered on Service.Events.
type Event struct {
	Kind  EventKind
	XP    int64
	Board Board
	Err   error
}

// Board is a leaderboard as shown to the player. Remote is false when the
// rows come from the local per-device cache.
type Board struct {
	GameKey string
	Entries []remote.Entry
	Remote  bool
}

// Snapshot is the displayed profile state.
type Snapshot struct {
	Identity identity.Identity
	UserID   int64
	XP       int64
	Synced   bool
	Pending  int
}

// Options configures a Service.
type Options struct {
	// Store is the remote profile store. Nil runs the service offline.
	Store    remote.Store
	KV       core.KV
	Identity identity.Identity
	Config   config.SyncConfig
	Logger   *log.Logger

	// Outbox and Board may be shared by services running on the same KV,
	// as the SSH server does for concurrent sessions.
	Outbox *Outbox
	Board  *storage.Leaderboard
}

const eventBuffer = 32

// Service owns the player's profile for one host session.
type Service struct {
	store  remote.Store
	kv     core.KV
	cfg    config.SyncConfig
	logger *log.Logger
	board  *storage.Leaderboard
	outbox *Outbox
	events chan Event

	// net serializes remote work.
	net sync.Mutex
	wg  sync.WaitGroup

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	closed  bool
	ident   identity.Identity
	userIDs map[string]int64
	localXP int64
	authXP  int64
	hasAuth bool
}

// New creates a service. Call Start to begin syncing.
func New(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	kv := opts.KV
	if kv == nil {
		kv = storage.NewMemory()
	}
	cfg := opts.Config
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.LeaderboardLimit <= 0 {
		cfg.LeaderboardLimit = remote.DefaultLimit
	}
	ident := opts.Identity
	if ident.ID == "" {
		ident = identity.Identity{ID: identity.GuestID, DisplayName: identity.GuestName}
	}

	outbox := opts.Outbox
	if outbox == nil {
		outbox = NewOutbox(kv)
	}
	board := opts.Board
	if board == nil {
		board = storage.NewLeaderboard(kv, cfg.CacheCap)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		store:   opts.Store,
		kv:      kv,
		cfg:     cfg,
		logger:  logger,
		board:   board,
		outbox:  outbox,
		events:  make(chan Event, eventBuffer),
		ctx:     ctx,
		cancel:  cancel,
		ident:   ident,
		userIDs: make(map[string]int64),
	}
	s.localXP = s.loadLocalXP(ident.ID)
	return s
}

// Events delivers profile events. The channel is closed by Close.
func (s *Service) Events() <-chan Event {
	return s.events
}

// Start binds the service to ctx and runs the first sync.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	if s.closed || s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.cancel()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()
	s.Foreground()
}

// Foreground re-syncs the identity and replays pending submissions. Hosts
// call it whenever the app returns to the foreground.
func (s *Service) Foreground() {
	if s.store == nil {
		return
	}
	s.spawn(s.sync)
}

// RecordSession applies a finished session locally and submits it in the
// background. It returns the XP earned.
func (s *Service) RecordSession(gameKey string, score int) int64 {
	if score < 0 {
		score = 0
	}
	xp := int64(score) * int64(s.cfg.Multiplier(gameKey))

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0
	}
	ident := s.ident
	p := Pending{
		ID:       uuid.NewString(),
		Identity: ident.ID,
		Name:     ident.DisplayName,
		GameKey:  gameKey,
		Score:    int64(score),
		XP:       xp,
		At:       time.Now(),
	}
	s.localXP += xp
	s.saveLocalXPLocked()
	s.board.Record(gameKey, ident.ID, ident.DisplayName, score)
	s.outbox.Add(p)
	s.emitLocked(Event{Kind: EventXPChanged, XP: s.localXP})
	s.mu.Unlock()

	s.logger.Debug("session recorded", "game", gameKey, "score", score, "xp", xp, "identity", ident.ID)
	if s.store != nil {
		s.spawn(func(ctx context.Context) { s.submit(ctx, p) })
	}
	return xp
}

// Snapshot returns the displayed profile state.
func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Identity: s.ident,
		UserID:   s.userIDs[s.ident.ID],
		XP:       s.displayXPLocked(),
		Synced:   s.hasAuth,
		Pending:  len(s.outbox.List(s.ident.ID)),
	}
}

// Leaderboard returns the global board for gameKey (XP when empty), falling
// back to the local cache when the store is unavailable.
func (s *Service) Leaderboard(ctx context.Context, gameKey string) Board {
	if s.store != nil {
		ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
		defer cancel()
		entries, err := RefreshLeaderboard(ctx, s.store, gameKey, s.cfg.LeaderboardLimit)
		if err == nil {
			return Board{GameKey: gameKey, Entries: entries, Remote: true}
		}
		s.logger.Warn("leaderboard unavailable, using local cache", "game", gameKey, "error", err)
	}
	return s.localBoard(gameKey)
}

// Close stops background work. Results that arrive afterwards are dropped.
func (s *Service) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.cancel()
	s.mu.Unlock()

	s.wg.Wait()
	close(s.events)
}

func (s *Service) spawn(fn func(ctx context.Context)) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	ctx := s.ctx
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		fn(ctx)
	}()
}

func (s *Service) sync(ctx context.Context) {
	s.net.Lock()
	defer s.net.Unlock()

	s.mu.Lock()
	ident := s.ident
	s.mu.Unlock()

	userID, p, err := s.syncIdentity(ctx, ident)
	if err != nil {
		s.fail("identity sync failed", err)
		return
	}

	s.mu.Lock()
	if s.closed || s.ident.ID != ident.ID {
		s.mu.Unlock()
		return
	}
	s.authXP = p.XP
	s.hasAuth = true
	s.reconcileLocked()
	s.emitLocked(Event{Kind: EventSynced, XP: s.displayXPLocked()})
	s.mu.Unlock()
	s.logger.Info("profile synced", "identity", ident.ID, "user_id", userID, "xp", p.XP)

	for _, pending := range s.outbox.List(ident.ID) {
		if ctx.Err() != nil {
			return
		}
		if !s.submitLocked(ctx, pending) {
			return
		}
	}
}

func (s *Service) submit(ctx context.Context, p Pending) {
	s.net.Lock()
	defer s.net.Unlock()
	s.submitLocked(ctx, p)
}

// submitLocked sends p. The caller holds s.net. It reports whether the
// store was reachable.
func (s *Service) submitLocked(ctx context.Context, p Pending) bool {
	if !s.beginFlight(p) {
		return true
	}
	defer s.endFlight(p)

	userID, err := s.userIDFor(ctx, p)
	if err != nil {
		s.fail("submission deferred", err)
		return false
	}

	rctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	prof, err := Submit(rctx, s.store, userID, p.ID, p.GameKey, p.Score, p.XP)
	cancel()

	var serr *SubmitError
	switch {
	case err == nil:
		s.outbox.Remove(p.ID)
	case errors.As(err, &serr) && serr.Applied():
		s.outbox.Remove(p.ID)
		s.logger.Warn("profile refresh failed after submit", "game", p.GameKey, "error", err)
	default:
		s.fail("submission failed", err)
		return false
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return true
	}
	if p.Identity == s.ident.ID {
		switch {
		case err == nil:
			s.authXP = prof.XP
			s.hasAuth = true
		case s.hasAuth:
			s.authXP += p.XP
		}
	}
	s.reconcileLocked()
	s.emitLocked(Event{Kind: EventXPChanged, XP: s.displayXPLocked()})
	s.mu.Unlock()

	s.refreshBoards(ctx, p.GameKey)
	return true
}

func (s *Service) userIDFor(ctx context.Context, p Pending) (int64, error) {
	s.mu.Lock()
	userID, ok := s.userIDs[p.Identity]
	s.mu.Unlock()
	if ok {
		return userID, nil
	}
	userID, _, err := s.syncIdentity(ctx, identity.Identity{ID: p.Identity, DisplayName: p.Name})
	return userID, err
}

func (s *Service) syncIdentity(ctx context.Context, ident identity.Identity) (int64, remote.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	userID, p, err := SyncIdentity(ctx, s.store, ident.ID, ident.DisplayName)
	if err != nil {
		return 0, remote.Profile{}, err
	}
	s.mu.Lock()
	s.userIDs[ident.ID] = userID
	s.mu.Unlock()
	return userID, p, nil
}

func (s *Service) refreshBoards(ctx context.Context, gameKey string) {
	for _, key := range []string{gameKey, ""} {
		rctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
		entries, err := RefreshLeaderboard(rctx, s.store, key, s.cfg.LeaderboardLimit)
		cancel()
		if err != nil {
			s.logger.Warn("leaderboard refresh failed", "game", key, "error", err)
			continue
		}
		s.mu.Lock()
		s.emitLocked(Event{Kind: EventLeaderboard, Board: Board{GameKey: key, Entries: entries, Remote: true}})
		s.mu.Unlock()
	}
}

// beginFlight claims p in the shared outbox. It fails when p was already
// sent or another session is sending it.
func (s *Service) beginFlight(p Pending) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed && s.outbox.Claim(p.ID)
}

func (s *Service) endFlight(p Pending) {
	s.outbox.Release(p.ID)
}

func (s *Service) fail(msg string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.logger.Warn(msg, "error", err)
	s.emitLocked(Event{Kind: EventSyncFailed, XP: s.displayXPLocked(), Err: err})
}

// reconcileLocked moves local XP toward the authoritative value. With
// nothing pending the store wins outright; otherwise local XP never drops
// below what the store will hold once the pending sessions land.
func (s *Service) reconcileLocked() {
	if !s.hasAuth {
		return
	}
	pending := s.outbox.List(s.ident.ID)
	if len(pending) == 0 {
		s.localXP = s.authXP
	} else {
		floor := s.authXP
		for _, p := range pending {
			if !s.outbox.Claimed(p.ID) {
				floor += p.XP
			}
		}
		s.localXP = max(s.localXP, floor)
	}
	s.saveLocalXPLocked()
}

func (s *Service) displayXPLocked() int64 {
	if s.hasAuth && len(s.outbox.List(s.ident.ID)) == 0 {
		return s.authXP
	}
	return s.localXP
}

func (s *Service) emitLocked(ev Event) {
	if s.closed {
		return
	}
	select {
	case s.events <- ev:
	default:
		s.logger.Debug("profile event dropped", "kind", ev.Kind)
	}
}

func (s *Service) localBoard(gameKey string) Board {
	if gameKey == "" {
		s.mu.Lock()
		defer s.mu.Unlock()
		return Board{Entries: []remote.Entry{{
			UserID:   s.userIDs[s.ident.ID],
			StableID: s.ident.ID,
			Name:     remote.DisplayName(s.ident.DisplayName),
			Score:    s.displayXPLocked(),
		}}}
	}
	local := s.board.Top(gameKey, s.cfg.LeaderboardLimit)
	entries := make([]remote.Entry, 0, len(local))
	for _, e := range local {
		entries = append(entries, remote.Entry{
			StableID: e.Identity,
			Name:     remote.DisplayName(e.Name),
			Score:    int64(e.Score),
		})
	}
	return Board{GameKey: gameKey, Entries: entries}
}

func xpKey(identityID string) string {
	return "retroplay_xp_" + identityID
}

func (s *Service) loadLocalXP(identityID string) int64 {
	raw, ok := s.kv.Get(xpKey(identityID))
	if !ok {
		return 0
	}
	xp, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || xp < 0 {
		return 0
	}
	return xp
}

func (s *Service) saveLocalXPLocked() {
	s.kv.Set(xpKey(s.ident.ID), strconv.FormatInt(s.localXP, 10))
}
