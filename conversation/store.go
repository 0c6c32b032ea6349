// Package conversation provides the conversation store: an in-memory,
// process-lifetime mapping from opaque conversation identifiers to ordered
// message histories. Histories are append-only except for explicit deletion;
// nothing survives a restart.
package conversation

import (
	"errors"

	"github.com/toolbridge/toolbridge/core"
)

// ErrNotFound is returned by Append when the conversation id is unknown.
// Callers of Get treat "not found" as a recoverable condition and fall back
// to creating a new conversation.
var ErrNotFound = errors.New("conversation: not found")

// Store persists conversations for the lifetime of the process.
type Store interface {
	// Create stores an empty conversation under a fresh globally-unique
	// identifier and returns the identifier.
	Create() string

	// Get returns a snapshot of the conversation, or false when unknown.
	Get(id string) (*core.Conversation, bool)

	// Append adds a message with the current timestamp and bumps the
	// conversation's updated timestamp. Fails with ErrNotFound when id is
	// unknown and rejects roles outside the four known ones. Multiple
	// related appends are not atomic; the chat engine is the single writer
	// per conversation.
	Append(id string, role core.Role, content string, metadata map[string]any) error

	// Delete removes the conversation, reporting whether it existed.
	Delete(id string) bool

	// List returns summaries for all conversations, for diagnostic listing.
	List() []core.Summary
}
