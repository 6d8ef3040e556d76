package ws

import (
	"log/slog"
	"sync"

	"github.com/ktz03/tab-game/internal/game"
	"github.com/ktz03/tab-game/internal/logger"
)

const DefaultSubscriberBuffer = 64

// Subscription is one live update stream for a (session, nick) pair. The
// channel is closed when the subscription is replaced, dropped for being
// slow, unsubscribed or the session ends.
type Subscription struct {
	SessionID string
	Nick      string

	ch     chan game.Delta
	closed bool
}

func (s *Subscription) Updates() <-chan game.Delta { return s.ch }

// Broadcaster fans session deltas out to subscribers without ever blocking
// the publisher.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[string]map[string]*Subscription
	buffer int
	log    *slog.Logger

	// OnDrop is called under the broadcaster lock when a slow subscriber is
	// removed.
	OnDrop func(sessionID, nick string)
}

func NewBroadcaster(buffer int) *Broadcaster {
	if buffer <= 0 {
		buffer = DefaultSubscriberBuffer
	}
	return &Broadcaster{
		subs:   make(map[string]map[string]*Subscription),
		buffer: buffer,
		log:    logger.With("component", "broadcaster"),
	}
}

// Subscribe registers nick on sessionID, closing any previous subscription of
// the same nick. A non-nil initial delta is queued before anything else.
func (b *Broadcaster) Subscribe(sessionID, nick string, initial game.Delta) *Subscription {
	sub := &Subscription{
		SessionID: sessionID,
		Nick:      nick,
		ch:        make(chan game.Delta, b.buffer),
	}
	if initial != nil {
		sub.ch <- initial
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	bySession, ok := b.subs[sessionID]
	if !ok {
		bySession = make(map[string]*Subscription)
		b.subs[sessionID] = bySession
	}
	if old, ok := bySession[nick]; ok {
		b.close(old)
		b.log.Debug("subscription replaced", "session", sessionID, "nick", nick)
	}
	bySession[nick] = sub
	return sub
}

// Publish queues d for every subscriber of sessionID. Subscribers whose buffer
// is full are dropped; they resync on reconnect.
func (b *Broadcaster) Publish(sessionID string, d game.Delta) {
	if len(d) == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	for nick, sub := range b.subs[sessionID] {
		select {
		case sub.ch <- d:
		default:
			b.close(sub)
			delete(b.subs[sessionID], nick)
			b.log.Warn("slow subscriber dropped", "session", sessionID, "nick", nick)
			if b.OnDrop != nil {
				b.OnDrop(sessionID, nick)
			}
		}
	}
}

// Unsubscribe removes sub if it is still the live subscription for its nick.
func (b *Broadcaster) Unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	bySession := b.subs[sub.SessionID]
	if cur, ok := bySession[sub.Nick]; ok && cur == sub {
		delete(bySession, sub.Nick)
		if len(bySession) == 0 {
			delete(b.subs, sub.SessionID)
		}
	}
	b.close(sub)
}

// CloseSession ends every subscription of sessionID. Already queued deltas
// remain readable.
func (b *Broadcaster) CloseSession(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs[sessionID] {
		b.close(sub)
	}
	delete(b.subs, sessionID)
}

func (b *Broadcaster) Count(sessionID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[sessionID])
}

func (b *Broadcaster) close(sub *Subscription) {
	if sub.closed {
		return
	}
	sub.closed = true
	close(sub.ch)
}
