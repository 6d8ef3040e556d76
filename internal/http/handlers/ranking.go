package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ktz03/tab-game/internal/game"
)

type rankingRequest struct {
	Group int `json:"group"`
	Size  int `json:"size"`
}

// POST /ranking with {group,size}, or GET /ranking?group=&size=
func (h *Handler) Ranking(c *gin.Context) {
	var req rankingRequest
	if c.Request.Method == http.MethodGet {
		group, gerr := strconv.Atoi(c.Query("group"))
		size, serr := strconv.Atoi(c.Query("size"))
		if gerr != nil || serr != nil {
			badRequest(c, "group and size must be integers")
			return
		}
		req = rankingRequest{Group: group, Size: size}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}

	if !game.ValidSize(req.Size) {
		writeError(c, game.ErrInvalidSize)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ranking": h.Games.Standings(req.Group, req.Size)})
}

// GET /history?nick=&limit=
func (h *Handler) History(c *gin.Context) {
	nick := c.Query("nick")
	if nick == "" {
		badRequest(c, "nick is required")
		return
	}
	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 100 {
			badRequest(c, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	games, err := h.Games.History(c.Request.Context(), nick, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"games": games})
}
