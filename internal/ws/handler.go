package ws

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/ktz03/tab-game/internal/game"
	"github.com/ktz03/tab-game/internal/logger"
)

// TokenParser resolves a bearer token to a nickname.
type TokenParser func(token string) (string, error)

func HandleWS(hub *Hub, parse TokenParser, actions Actions, allowedOrigin string) gin.HandlerFunc {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if allowedOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == allowedOrigin
		},
	}

	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
			return
		}

		nick, err := parse(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		room, err := hub.Room(c.Query("game"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}

		sub, err := room.Subscribe(nick)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, game.ErrRejected) {
				status = http.StatusBadRequest
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			hub.Broadcaster.Unsubscribe(sub)
			logger.Warn("ws upgrade error", "error", err)
			return
		}

		logger.Debug("ws connected", "session", room.ID, "nick", nick)
		NewClient(nick, conn, hub, sub, actions).Run()
	}
}
