package models

// MessageType discriminates the records exchanged on the duplex channel.
type MessageType string

const (
	// Outbound, client to backend.
	TypeConnect      MessageType = "connect"
	TypeProcessFrame MessageType = "process_frame"
	TypePong         MessageType = "pong"

	// Inbound, backend to client.
	TypeConnectionEstablished MessageType = "connection_established"
	TypeVideoInfo             MessageType = "video_info"
	TypeClassification        MessageType = "classification"
	TypeError                 MessageType = "error"
	TypePing                  MessageType = "ping"
)

// Message is the wire envelope for every channel message. Only the fields
// relevant to a given Type are populated.
type Message struct {
	Type       MessageType `json:"type"`
	SessionID  string      `json:"session_id,omitempty"`
	Timestamp  float64     `json:"timestamp,omitempty"`
	Label      string      `json:"label,omitempty"`
	Confidence float64     `json:"confidence,omitempty"`
	Flagged    bool        `json:"flagged,omitempty"`
	Duration   float64     `json:"duration,omitempty"`
	FPS        float64     `json:"fps,omitempty"`
	FrameCount int64       `json:"frame_count,omitempty"`
	Message    string      `json:"message,omitempty"`
}
