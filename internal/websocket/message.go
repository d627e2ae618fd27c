package websocket

import "encoding/json"

// Message defines the structure for websocket messages.
type Message struct {
	Action  string      `json:"action"`
	Payload interface{} `json:"payload"`
}

// NewMessage marshals an action and payload into a wire-ready message.
// Marshal failures are swallowed into an empty body; payloads are
// always plain structs or maps.
func NewMessage(action string, payload interface{}) []byte {
	b, err := json.Marshal(Message{Action: action, Payload: payload})
	if err != nil {
		return []byte(`{"action":"` + action + `"}`)
	}
	return b
}
