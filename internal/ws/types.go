package ws

const (
	// client - server
	MsgRoll   = "roll"
	MsgPass   = "pass"
	MsgNotify = "notify"
	MsgLeave  = "leave"

	// server - client
	MsgUpdate = "update"
	MsgError  = "error"
)

// Message is the server to client envelope.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}
