package broker

import "time"

// Sample is a live accelerometer value.
type Sample struct {
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Z         float64   `json:"z"`
	Timestamp time.Time `json:"timestamp"`
}

func (Sample) Name() string { return "sample" }

// Notice is a short user-facing message, e.g. an export confirmation.
type Notice struct {
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

func (Notice) Name() string { return "notice" }
