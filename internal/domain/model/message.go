package model

import (
	"strconv"
	"time"
)

// Message is the persisted, user-facing commentary unit. Created by the
// composer, appended by the history store, never mutated afterwards.
type Message struct {
	Bot       string    `json:"bot"`
	Text      string    `json:"text"`
	Type      string    `json:"type"`
	Team      string    `json:"team,omitempty"`
	Score     string    `json:"score"`
	Clock     string    `json:"clock"`
	Period    int       `json:"period"`
	Timestamp time.Time `json:"timestamp"`
	Sequence  int       `json:"action_number"`
}

// DedupKey returns the uniqueness key within one game's history:
// (sequence order, persona, kind).
func (m Message) DedupKey() string {
	return strconv.Itoa(m.Sequence) + "|" + m.Bot + "|" + m.Type
}
