package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ktz03/tab-game/internal/logger"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second
)

// Actions are the session commands a websocket client may send in band.
type Actions interface {
	Roll(ctx context.Context, sessionID, nick string) error
	Pass(ctx context.Context, sessionID, nick string) error
	Notify(ctx context.Context, sessionID, nick string, cell int) error
	Leave(ctx context.Context, sessionID, nick string) error
}

// Client bridges one websocket connection to a session subscription.
type Client struct {
	Nick      string
	SessionID string
	Conn      *websocket.Conn

	hub     *Hub
	sub     *Subscription
	actions Actions
	send    chan []byte
	done    chan struct{}
	log     *slog.Logger
}

func NewClient(nick string, conn *websocket.Conn, hub *Hub, sub *Subscription, actions Actions) *Client {
	return &Client{
		Nick:      nick,
		SessionID: sub.SessionID,
		Conn:      conn,
		hub:       hub,
		sub:       sub,
		actions:   actions,
		send:      make(chan []byte, 16),
		done:      make(chan struct{}),
		log:       logger.With("component", "ws_client", "session", sub.SessionID, "nick", nick),
	}
}

// Run pumps until the connection or the subscription ends.
func (c *Client) Run() {
	go c.writePump()
	c.readPump()
}

func (c *Client) readPump() {
	defer func() {
		close(c.done)
		c.hub.Broadcaster.Unsubscribe(c.sub)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(4096)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Warn("read error", "error", err)
			}
			return
		}
		c.handle(raw)
	}
}

func (c *Client) handle(raw []byte) {
	var cmd CommandPayload
	if err := json.Unmarshal(raw, &cmd); err != nil {
		c.sendError("malformed message")
		return
	}

	ctx := context.Background()
	var err error
	switch cmd.Type {
	case MsgRoll:
		err = c.actions.Roll(ctx, c.SessionID, c.Nick)
	case MsgPass:
		err = c.actions.Pass(ctx, c.SessionID, c.Nick)
	case MsgNotify:
		if cmd.Move == nil {
			c.sendError("move required")
			return
		}
		err = c.actions.Notify(ctx, c.SessionID, c.Nick, *cmd.Move)
	case MsgLeave:
		err = c.actions.Leave(ctx, c.SessionID, c.Nick)
	default:
		c.sendError("unknown message type")
		return
	}

	if err != nil {
		c.log.Debug("command rejected", "type", cmd.Type, "error", err)
		c.sendError(err.Error())
	}
}

func (c *Client) sendError(msg string) {
	data, _ := json.Marshal(Message{Type: MsgError, Payload: ErrorPayload{Message: msg}})
	select {
	case c.send <- data:
	default:
		c.log.Warn("error reply dropped", "message", msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	updates := c.sub.Updates()
	for {
		select {
		case d, ok := <-updates:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.Conn.WriteJSON(Message{Type: MsgUpdate, Payload: d}); err != nil {
				c.log.Warn("write error", "error", err)
				return
			}

		case msg := <-c.send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.log.Warn("write error", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			return
		}
	}
}
