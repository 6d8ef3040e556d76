package handlers

import (
	"io"

	"github.com/gin-gonic/gin"

	"github.com/ktz03/tab-game/internal/logger"
)

// GET /update?nick=&game=
//
// Streams every delta of the session as a server-sent event until the session
// ends or the client goes away.
func (h *Handler) Update(c *gin.Context) {
	nick, id := c.Query("nick"), c.Query("game")
	if nick == "" || id == "" {
		badRequest(c, "nick and game are required")
		return
	}

	sub, err := h.Games.Subscribe(id, nick)
	if err != nil {
		writeError(c, err)
		return
	}
	defer h.Games.Unsubscribe(sub)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	logger.Debug("sse connected", "session", id, "nick", nick)

	updates := sub.Updates()
	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case d, ok := <-updates:
			if !ok {
				return false
			}
			c.SSEvent("", d)
			return true
		}
	})

	logger.Debug("sse disconnected", "session", id, "nick", nick)
}
