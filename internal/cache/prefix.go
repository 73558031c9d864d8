package cache

import "fmt"

type Prefix string

const (
	// SentReplies maps a provider message sid to the auto-reply it belongs to.
	SentReplies Prefix = "sent_replies"
)

func (p Prefix) Key(id string) string {
	return fmt.Sprintf("%s:%s", p, id)
}
