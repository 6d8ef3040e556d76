package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/ktz03/tab-game/internal/domain"
	"github.com/ktz03/tab-game/internal/logger"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrReservedNick       = errors.New("nickname is reserved")
)

// BotNickPrefix marks nicknames played by the server.
const BotNickPrefix = "bot:"

type UserStore interface {
	LoadUsers(ctx context.Context) ([]domain.User, error)
	SaveUser(ctx context.Context, u domain.User) error
}

// AccountService is the in-memory credential table, saved through a
// UserStore after each registration.
type AccountService struct {
	mu    sync.RWMutex
	users map[string]domain.User
	store UserStore
	cost  int
	log   *slog.Logger
}

func NewAccountService(store UserStore, bcryptCost int) *AccountService {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AccountService{
		users: make(map[string]domain.User),
		store: store,
		cost:  bcryptCost,
		log:   logger.With("component", "accounts"),
	}
}

// Load replaces the table with what the store holds.
func (s *AccountService) Load(ctx context.Context) error {
	users, err := s.store.LoadUsers(ctx)
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = make(map[string]domain.User, len(users))
	for _, u := range users {
		s.users[u.Nick] = u
	}
	s.log.Info("users loaded", "count", len(users))
	return nil
}

// Register creates nick or, when it exists, checks the password. Registering
// twice with the same password succeeds.
func (s *AccountService) Register(ctx context.Context, nick, password string) error {
	if nick == "" || password == "" {
		return ErrInvalidCredentials
	}
	if strings.HasPrefix(nick, BotNickPrefix) {
		return ErrReservedNick
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[nick]; ok {
		if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
			return ErrInvalidCredentials
		}
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u := domain.User{Nick: nick, PasswordHash: string(hash), CreatedAt: time.Now().UTC()}
	if err := s.store.SaveUser(ctx, u); err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	s.users[nick] = u

	s.log.Info("user registered", "nick", nick)
	return nil
}

// Authenticate reports ErrInvalidCredentials unless nick is registered with
// password.
func (s *AccountService) Authenticate(nick, password string) error {
	s.mu.RLock()
	u, ok := s.users[nick]
	s.mu.RUnlock()

	if !ok || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return ErrInvalidCredentials
	}
	return nil
}

func (s *AccountService) Exists(nick string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[nick]
	return ok
}
