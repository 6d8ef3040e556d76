package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ktz03/tab-game/internal/domain"
	"github.com/ktz03/tab-game/internal/game"
	"github.com/ktz03/tab-game/internal/logger"
	"github.com/ktz03/tab-game/internal/ws"
)

// OpponentBot asks join for a server-side opponent.
const OpponentBot = "bot"

type HistoryStore interface {
	SaveGame(ctx context.Context, g *domain.GameRecord) error
	GamesByNick(ctx context.Context, nick string, limit int) ([]domain.GameRecord, error)
}

type JoinRequest struct {
	Group    int
	Nick     string
	Size     int
	Opponent string
	Level    string
}

// GameService runs the session operations on top of the hub. Callers
// authenticate first.
type GameService struct {
	hub     *ws.Hub
	ranking *RankingLedger
	history HistoryStore
	dice    *game.Dice
	rng     *game.Source
	log     *slog.Logger

	// bots live as long as ctx
	ctx      context.Context
	botDelay time.Duration
}

func NewGameService(ctx context.Context, hub *ws.Hub, ranking *RankingLedger, history HistoryStore, rng *game.Source, botDelay time.Duration) *GameService {
	hub.Broadcaster.OnDrop = func(string, string) { PushDropped.Inc() }
	return &GameService{
		hub:      hub,
		ranking:  ranking,
		history:  history,
		dice:     game.NewDice(rng),
		rng:      rng,
		log:      logger.With("component", "game_service"),
		ctx:      ctx,
		botDelay: botDelay,
	}
}

func (s *GameService) Hub() *ws.Hub { return s.hub }

// Join queues the caller or starts a bot game. It returns the session id.
func (s *GameService) Join(ctx context.Context, req JoinRequest) (string, error) {
	if req.Opponent == OpponentBot {
		return s.joinBot(req)
	}

	res, err := s.hub.Join(req.Group, req.Size, req.Nick)
	if err != nil {
		return "", err
	}
	if res.Created {
		SessionsCreated.Inc()
	}
	SessionsActive.Set(float64(s.hub.Len()))
	return res.SessionID, nil
}

func (s *GameService) joinBot(req JoinRequest) (string, error) {
	level, err := game.ParseBotLevel(req.Level)
	if err != nil {
		return "", err
	}
	botNick := BotNickPrefix + string(level)

	id, err := s.hub.CreatePaired(req.Group, req.Size, req.Nick, botNick)
	if err != nil {
		return "", err
	}
	room, err := s.hub.Room(id)
	if err != nil {
		return "", err
	}
	sub, err := room.Subscribe(botNick)
	if err != nil {
		s.hub.Remove(id)
		return "", err
	}

	SessionsCreated.Inc()
	SessionsActive.Set(float64(s.hub.Len()))

	bot := NewBotPlayer(botNick, level, room, sub, s, s.botDelay)
	go bot.Run(s.ctx)

	s.log.Info("bot game started", "session", id, "nick", req.Nick, "level", level)
	return id, nil
}

func (s *GameService) Leave(ctx context.Context, id, nick string) error {
	room, err := s.hub.Room(id)
	if err != nil {
		return err
	}
	result, err := s.hub.Leave(id, nick)
	if err != nil {
		return err
	}
	if result != nil {
		s.record(ctx, room, result)
	}
	SessionsActive.Set(float64(s.hub.Len()))
	return nil
}

func (s *GameService) Roll(ctx context.Context, id, nick string) error {
	room, err := s.hub.Room(id)
	if err != nil {
		return err
	}
	return room.Apply(func(sess *game.Session) (game.Delta, error) {
		return sess.Roll(nick, s.dice.Roll())
	})
}

func (s *GameService) Pass(ctx context.Context, id, nick string) error {
	room, err := s.hub.Room(id)
	if err != nil {
		return err
	}
	return room.Apply(func(sess *game.Session) (game.Delta, error) {
		return sess.Pass(nick)
	})
}

// Notify forwards a cell click. A move that captures the last opposing piece
// ends the session.
func (s *GameService) Notify(ctx context.Context, id, nick string, cell int) error {
	room, err := s.hub.Room(id)
	if err != nil {
		return err
	}

	var (
		out    *game.MoveOutcome
		result *game.GameResult
	)
	err = room.Apply(func(sess *game.Session) (game.Delta, error) {
		d, o, err := sess.Notify(nick, cell)
		if err != nil {
			return nil, err
		}
		out, result = o, sess.Result()
		return d, nil
	})
	if err != nil {
		return err
	}

	if out != nil {
		MovesTotal.Inc()
		if out.Captured {
			CapturesTotal.Inc()
		}
	}
	if result != nil {
		s.hub.Remove(id)
		s.record(ctx, room, result)
		SessionsActive.Set(float64(s.hub.Len()))
	}
	return nil
}

// Subscribe opens an update stream for nick on session id.
func (s *GameService) Subscribe(id, nick string) (*ws.Subscription, error) {
	room, err := s.hub.Room(id)
	if err != nil {
		return nil, err
	}
	return room.Subscribe(nick)
}

func (s *GameService) Unsubscribe(sub *ws.Subscription) {
	s.hub.Broadcaster.Unsubscribe(sub)
}

func (s *GameService) Standings(group, size int) []domain.RankingEntry {
	return s.ranking.Standings(group, size)
}

func (s *GameService) History(ctx context.Context, nick string, limit int) ([]domain.GameRecord, error) {
	games, err := s.history.GamesByNick(ctx, nick, limit)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	if games == nil {
		games = []domain.GameRecord{}
	}
	return games, nil
}

// record books a finished game. Bot games are not ranked.
func (s *GameService) record(ctx context.Context, room *ws.Room, result *game.GameResult) {
	GamesFinished.WithLabelValues(result.Reason).Inc()
	s.log.Info("game finished", "session", room.ID, "winner", result.Winner, "loser", result.Loser,
		"reason", result.Reason)

	if strings.HasPrefix(result.Winner, BotNickPrefix) || strings.HasPrefix(result.Loser, BotNickPrefix) {
		return
	}

	// bookkeeping outlives the request
	ctx = context.WithoutCancel(ctx)
	s.ranking.RecordResult(ctx, room.Group, room.Size, result.Winner, result.Loser)

	rec := &domain.GameRecord{
		SessionID:  room.ID,
		Group:      room.Group,
		Size:       room.Size,
		Winner:     result.Winner,
		Loser:      result.Loser,
		Reason:     result.Reason,
		FinishedAt: time.Now().UTC(),
	}
	if err := s.history.SaveGame(ctx, rec); err != nil {
		s.log.Error("save game history failed", "session", room.ID, "error", err)
	}
}
