package core

import "time"

// Conversation is an ordered message history identified by an opaque unique
// token. It is owned exclusively by a conversation.Store; callers receive
// clones and mutate only through Store operations.
type Conversation struct {
	ID       string    `json:"id"`
	Messages []Message `json:"messages"`
	Created  time.Time `json:"created_at"`
	Updated  time.Time `json:"updated_at"`
}

// Clone returns a deep copy safe for independent use. Message metadata maps
// are copied one level deep, which is sufficient because the engine never
// mutates metadata values after append.
func (c *Conversation) Clone() *Conversation {
	clone := &Conversation{
		ID:       c.ID,
		Messages: make([]Message, len(c.Messages)),
		Created:  c.Created,
		Updated:  c.Updated,
	}
	for i, m := range c.Messages {
		cm := m
		if m.Metadata != nil {
			cm.Metadata = make(map[string]any, len(m.Metadata))
			for k, v := range m.Metadata {
				cm.Metadata[k] = v
			}
		}
		clone.Messages[i] = cm
	}
	return clone
}

// Summary is the diagnostic listing shape for a conversation.
type Summary struct {
	ID           string    `json:"id"`
	Created      time.Time `json:"created_at"`
	Updated      time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}
