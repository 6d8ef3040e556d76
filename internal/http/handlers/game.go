package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ktz03/tab-game/internal/service"
)

type registerRequest struct {
	credentials
}

type joinRequest struct {
	credentials
	Group    int    `json:"group"`
	Size     int    `json:"size"`
	Opponent string `json:"opponent"`
	Level    string `json:"level"`
}

type gameRequest struct {
	credentials
	Game string `json:"game"`
}

type notifyRequest struct {
	gameRequest
	Move *int `json:"move"`
}

// POST /register
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}

	if err := h.Accounts.Register(c.Request.Context(), req.Nick, req.Password); err != nil {
		writeError(c, err)
		return
	}

	token, err := service.GenerateJWT(req.Nick)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// POST /join
func (h *Handler) Join(c *gin.Context) {
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	if !h.authenticate(c, req.credentials) {
		return
	}

	id, err := h.Games.Join(c.Request.Context(), service.JoinRequest{
		Group:    req.Group,
		Nick:     req.Nick,
		Size:     req.Size,
		Opponent: req.Opponent,
		Level:    req.Level,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"game": id})
}

// bindGame decodes a {nick,password,game} body and authenticates it.
func (h *Handler) bindGame(c *gin.Context, req *gameRequest) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		badRequest(c, "invalid body")
		return false
	}
	if req.Game == "" {
		badRequest(c, "game is required")
		return false
	}
	return h.authenticate(c, req.credentials)
}

// POST /leave
func (h *Handler) Leave(c *gin.Context) {
	var req gameRequest
	if !h.bindGame(c, &req) {
		return
	}
	if err := h.Games.Leave(c.Request.Context(), req.Game, req.Nick); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// POST /roll
func (h *Handler) Roll(c *gin.Context) {
	var req gameRequest
	if !h.bindGame(c, &req) {
		return
	}
	if err := h.Games.Roll(c.Request.Context(), req.Game, req.Nick); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// POST /pass
func (h *Handler) Pass(c *gin.Context) {
	var req gameRequest
	if !h.bindGame(c, &req) {
		return
	}
	if err := h.Games.Pass(c.Request.Context(), req.Game, req.Nick); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// POST /notify
func (h *Handler) Notify(c *gin.Context) {
	var req notifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid body")
		return
	}
	if req.Game == "" || req.Move == nil {
		badRequest(c, "game and move are required")
		return
	}
	if !h.authenticate(c, req.credentials) {
		return
	}

	if err := h.Games.Notify(c.Request.Context(), req.Game, req.Nick, *req.Move); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}
