package ws

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ktz03/tab-game/internal/game"
	"github.com/ktz03/tab-game/internal/logger"
)

var ErrSessionNotFound = errors.New("session not found")

const (
	DefaultWaitTimeout     = time.Hour
	DefaultCleanupInterval = 10 * time.Minute
)

// QueueKey identifies a matchmaking queue.
type QueueKey struct {
	Group int
	Size  int
}

type waitingEntry struct {
	Nick      string
	SessionID string
	Since     time.Time
}

// JoinResult describes what a join did.
type JoinResult struct {
	SessionID string
	Created   bool
	Paired    bool
}

// Hub is the session registry and the matchmaking queue. Lock order is key
// lock, then room lock, then broadcaster lock. h.mu only guards the maps and
// is never held while taking another lock.
type Hub struct {
	mu      sync.RWMutex
	Rooms   map[string]*Room
	Waiting map[QueueKey]waitingEntry

	keyMu    sync.Mutex
	keyLocks map[QueueKey]*sync.Mutex

	Broadcaster *Broadcaster
	rng         *game.Source
	log         *slog.Logger

	WaitTimeout time.Duration
}

func NewHub(b *Broadcaster, rng *game.Source) *Hub {
	return &Hub{
		Rooms:       make(map[string]*Room),
		Waiting:     make(map[QueueKey]waitingEntry),
		keyLocks:    make(map[QueueKey]*sync.Mutex),
		Broadcaster: b,
		rng:         rng,
		log:         logger.With("component", "hub"),
		WaitTimeout: DefaultWaitTimeout,
	}
}

func (h *Hub) keyLock(k QueueKey) *sync.Mutex {
	h.keyMu.Lock()
	defer h.keyMu.Unlock()

	l, ok := h.keyLocks[k]
	if !ok {
		l = &sync.Mutex{}
		h.keyLocks[k] = l
	}
	return l
}

// Join pairs nick with the waiter of (group, size) or becomes the waiter.
// Joining again while already waiting returns the same session.
func (h *Hub) Join(group, size int, nick string) (JoinResult, error) {
	if !game.ValidSize(size) {
		return JoinResult{}, game.ErrInvalidSize
	}

	k := QueueKey{Group: group, Size: size}
	l := h.keyLock(k)
	l.Lock()
	defer l.Unlock()

	h.mu.RLock()
	entry, waiting := h.Waiting[k]
	h.mu.RUnlock()

	if waiting {
		if entry.Nick == nick {
			return JoinResult{SessionID: entry.SessionID}, nil
		}

		room, err := h.Room(entry.SessionID)
		if err == nil {
			err = room.Apply(func(s *game.Session) (game.Delta, error) {
				return s.Pair(nick, h.rng.CoinFlip())
			})
		}
		if err == nil {
			h.mu.Lock()
			delete(h.Waiting, k)
			h.mu.Unlock()

			h.log.Info("session paired", "session", entry.SessionID, "host", entry.Nick, "guest", nick,
				"group", group, "size", size)
			return JoinResult{SessionID: entry.SessionID, Paired: true}, nil
		}

		h.log.Warn("stale waiting entry cleared", "session", entry.SessionID, "error", err)
		h.mu.Lock()
		delete(h.Waiting, k)
		h.mu.Unlock()
	}

	s, err := game.NewSession(uuid.NewString(), group, size, nick)
	if err != nil {
		return JoinResult{}, err
	}

	h.mu.Lock()
	h.Rooms[s.ID] = NewRoom(s, h.Broadcaster)
	h.Waiting[k] = waitingEntry{Nick: nick, SessionID: s.ID, Since: s.CreatedAt}
	h.mu.Unlock()

	h.log.Info("session created", "session", s.ID, "nick", nick, "group", group, "size", size)
	return JoinResult{SessionID: s.ID, Created: true}, nil
}

// CreatePaired starts a session between host and guest without going through
// the queue.
func (h *Hub) CreatePaired(group, size int, host, guest string) (string, error) {
	s, err := game.NewSession(uuid.NewString(), group, size, host)
	if err != nil {
		return "", err
	}
	if _, err := s.Pair(guest, h.rng.CoinFlip()); err != nil {
		return "", err
	}

	h.mu.Lock()
	h.Rooms[s.ID] = NewRoom(s, h.Broadcaster)
	h.mu.Unlock()

	h.log.Info("session created paired", "session", s.ID, "host", host, "guest", guest)
	return s.ID, nil
}

func (h *Hub) Room(id string) (*Room, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	r, ok := h.Rooms[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return r, nil
}

// Leave cancels a waiting session of its host or forfeits a running one. The
// result is nil when nothing was decided.
func (h *Hub) Leave(id, nick string) (*game.GameResult, error) {
	room, err := h.Room(id)
	if err != nil {
		return nil, err
	}

	if room.State() == game.StateWaiting {
		k := QueueKey{Group: room.Group, Size: room.Size}
		l := h.keyLock(k)
		l.Lock()
		defer l.Unlock()
	}

	var result *game.GameResult
	err = room.Apply(func(s *game.Session) (game.Delta, error) {
		if s.State == game.StateWaiting {
			return nil, s.Cancel(nick)
		}
		d, err := s.Forfeit(nick)
		if err != nil {
			return nil, err
		}
		result = s.Result()
		return d, nil
	})
	if err != nil {
		return nil, err
	}

	h.Remove(id)
	h.log.Info("session left", "session", id, "nick", nick, "forfeit", result != nil)
	return result, nil
}

// Remove drops the session and ends its subscriptions.
func (h *Hub) Remove(id string) {
	h.mu.Lock()
	delete(h.Rooms, id)
	for k, e := range h.Waiting {
		if e.SessionID == id {
			delete(h.Waiting, k)
		}
	}
	h.mu.Unlock()

	h.Broadcaster.CloseSession(id)
}

// Len is the number of registered sessions.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.Rooms)
}

// StartCleanup expires waiting sessions older than WaitTimeout until ctx is
// done.
func (h *Hub) StartCleanup(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.CleanupStale(time.Now())
		}
	}
}

// CleanupStale removes waiting sessions created before now minus WaitTimeout.
// It returns how many were removed.
func (h *Hub) CleanupStale(now time.Time) int {
	h.mu.RLock()
	var stale []QueueKey
	for k, e := range h.Waiting {
		if now.Sub(e.Since) > h.WaitTimeout {
			stale = append(stale, k)
		}
	}
	h.mu.RUnlock()

	removed := 0
	for _, k := range stale {
		l := h.keyLock(k)
		l.Lock()

		h.mu.RLock()
		e, ok := h.Waiting[k]
		h.mu.RUnlock()

		if ok && now.Sub(e.Since) > h.WaitTimeout {
			if room, err := h.Room(e.SessionID); err == nil {
				_ = room.Apply(func(s *game.Session) (game.Delta, error) {
					return nil, s.Cancel(s.Host)
				})
			}
			h.Remove(e.SessionID)
			removed++
			h.log.Info("cleaned up stale session", "session", e.SessionID, "nick", e.Nick)
		}
		l.Unlock()
	}
	return removed
}
