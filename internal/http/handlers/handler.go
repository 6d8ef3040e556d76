package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ktz03/tab-game/internal/game"
	"github.com/ktz03/tab-game/internal/logger"
	"github.com/ktz03/tab-game/internal/service"
	"github.com/ktz03/tab-game/internal/ws"
)

type Handler struct {
	Accounts *service.AccountService
	Games    *service.GameService
}

func NewHandler(accounts *service.AccountService, games *service.GameService) *Handler {
	return &Handler{
		Accounts: accounts,
		Games:    games,
	}
}

// credentials is embedded by every authenticated request body.
type credentials struct {
	Nick     string `json:"nick"`
	Password string `json:"password"`
}

func (h *Handler) authenticate(c *gin.Context, cr credentials) bool {
	if err := h.Accounts.Authenticate(cr.Nick, cr.Password); err != nil {
		writeError(c, err)
		return false
	}
	return true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// writeError maps domain errors to a status and the {"error": ...} body.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, game.ErrRejected), errors.Is(err, service.ErrReservedNick):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, ws.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		logger.WithContext(c.Request.Context()).Error("request failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
