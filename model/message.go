package model

// This module defines implementation neutral chat message data structures,
// every message source converts whatever it receives into these before it
// is fanned out to the effect engine

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Message is a single free text command
type Message struct {
	ID       string    `json:"id"`
	Source   string    `json:"source"`
	Text     string    `json:"text"`
	Received time.Time `json:"received"`
}

// NewMessage stamps a command with an id and the time it arrived
func NewMessage(source string, text string) (msg *Message) {
	return &Message{
		ID:       uuid.NewString(),
		Source:   source,
		Text:     text,
		Received: time.Now(),
	}
}

// Command is the text as it is interpreted, commands are case insensitive
func (msg *Message) Command() string {
	return strings.ToLower(msg.Text)
}

// DeepCopy deepcopies a to b using json marshaling
func (msg *Message) DeepCopy() (cpy *Message) {
	cpy = &Message{}

	byt, _ := json.Marshal(msg)
	json.Unmarshal(byt, cpy)
	return cpy
}
