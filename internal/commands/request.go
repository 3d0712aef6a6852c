package commands

import (
	"github.com/tndm-coder/fate-ardent-bot/internal/storage"
)

// Person is a chat user as seen by the adapter.
type Person struct {
	ID   storage.Identifier `json:"id"`
	Name string             `json:"name"`
}

// Request is one action as delivered by the chat adapter.
type Request struct {
	Actor Person `json:"actor"`

	// ReplyTo is the author of the message the command replied to, if any.
	ReplyTo *Person `json:"reply_to,omitempty"`

	Args []string `json:"args,omitempty"`
}

// FirstArg returns the first free-text argument, or "".
func (r Request) FirstArg() string {
	if len(r.Args) == 0 {
		return ""
	}
	return r.Args[0]
}

// DisplayName returns Name, falling back to the identity when the adapter
// knows no name.
func (p Person) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID.String()
}
