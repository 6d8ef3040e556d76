package ws

// client → server
type CommandPayload struct {
	Type string `json:"type"`           // roll | pass | notify | leave
	Move *int   `json:"move,omitempty"` // cell index, notify only
}

// server → client
type ErrorPayload struct {
	Message string `json:"message"`
}
