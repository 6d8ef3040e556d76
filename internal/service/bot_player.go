package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/ktz03/tab-game/internal/game"
	"github.com/ktz03/tab-game/internal/logger"
	"github.com/ktz03/tab-game/internal/ws"
)

// BotPlayer plays one seat of a session through the same operations a remote
// client uses. It acts once per batch of updates so it never races itself.
type BotPlayer struct {
	Nick  string
	Level game.BotLevel

	room  *ws.Room
	sub   *ws.Subscription
	games *GameService
	delay time.Duration
	log   *slog.Logger
}

func NewBotPlayer(nick string, level game.BotLevel, room *ws.Room, sub *ws.Subscription, games *GameService, delay time.Duration) *BotPlayer {
	return &BotPlayer{
		Nick:  nick,
		Level: level,
		room:  room,
		sub:   sub,
		games: games,
		delay: delay,
		log:   logger.With("component", "bot", "session", room.ID, "nick", nick),
	}
}

// Run plays until the session ends or ctx is done.
func (b *BotPlayer) Run(ctx context.Context) {
	defer b.games.Unsubscribe(b.sub)

	updates := b.sub.Updates()
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-updates:
			if !ok {
				return
			}
			if !b.drain(updates) {
				return
			}
			b.act(ctx)
		}
	}
}

// drain discards queued updates. It reports false once the stream is closed.
func (b *BotPlayer) drain(updates <-chan game.Delta) bool {
	for {
		select {
		case _, ok := <-updates:
			if !ok {
				return false
			}
		default:
			return true
		}
	}
}

func (b *BotPlayer) act(ctx context.Context) {
	next, what := b.nextAction(ctx)
	if next == nil {
		return
	}

	if b.delay > 0 {
		t := time.NewTimer(b.delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}

	if err := next(); err != nil {
		b.log.Debug("bot action rejected", "action", what, "error", err)
	}
}

func (b *BotPlayer) nextAction(ctx context.Context) (func() error, string) {
	var (
		next func() error
		what string
	)
	id := b.room.ID

	b.room.View(func(s *game.Session) {
		if s.State != game.StatePlaying || s.Turn != b.Nick {
			return
		}
		switch {
		case s.Dice == nil:
			next, what = func() error { return b.games.Roll(ctx, id, b.Nick) }, "roll"
		case s.MustPass:
			next, what = func() error { return b.games.Pass(ctx, id, b.Nick) }, "pass"
		case s.Step == game.StepFrom:
			m, ok := game.ChooseMove(b.Level, s.Board, s.LegalMoves(b.Nick), b.games.rng)
			if !ok {
				return
			}
			next, what = func() error { return b.games.Notify(ctx, id, b.Nick, m.From) }, "select"
		default:
			side, _ := s.SideOf(b.Nick)
			to, ok := game.LegalTarget(s.Board, s.Selected, side, s.Dice.Value)
			if !ok {
				return
			}
			next, what = func() error { return b.games.Notify(ctx, id, b.Nick, to) }, "move"
		}
	})
	return next, what
}
