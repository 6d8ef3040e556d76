package ws

import (
	"sync"

	"github.com/ktz03/tab-game/internal/game"
)

// Room owns one session. Every read or mutation of the session goes through
// the room lock, and deltas are published before the lock is released so
// subscribers see them in mutation order.
type Room struct {
	ID    string
	Group int
	Size  int

	mu          sync.Mutex
	session     *game.Session
	broadcaster *Broadcaster
}

func NewRoom(s *game.Session, b *Broadcaster) *Room {
	return &Room{
		ID:          s.ID,
		Group:       s.Group,
		Size:        s.Size,
		session:     s,
		broadcaster: b,
	}
}

// Apply runs fn against the session and publishes the delta it returns. A
// rejected fn publishes nothing.
func (r *Room) Apply(fn func(s *game.Session) (game.Delta, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, err := fn(r.session)
	if err != nil {
		return err
	}
	r.broadcaster.Publish(r.ID, d)
	return nil
}

// View runs fn with the session locked. fn must not keep references to
// session internals.
func (r *Room) View(fn func(s *game.Session)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.session)
}

// Subscribe opens an update stream for nick. Once the game is running the
// stream starts with a full snapshot, taken under the room lock so no delta
// can overtake it.
func (r *Room) Subscribe(nick string) (*Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.session
	if s.State == game.StateFinished {
		return nil, game.ErrGameOver
	}
	if !s.IsMember(nick) {
		return nil, game.ErrNotPlayer
	}

	var initial game.Delta
	if s.State == game.StatePlaying {
		initial = s.Snapshot()
	}
	return r.broadcaster.Subscribe(r.ID, nick, initial), nil
}

func (r *Room) State() game.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session.State
}
