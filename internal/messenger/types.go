package messenger

import "strconv"

// Webhook payload shapes for Meta page subscriptions. Only the fields the
// bot reads are declared.

// WebhookPayload is the top-level POST body.
type WebhookPayload struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

// Entry is one page entry; it may carry messaging events, feed changes, or both.
type Entry struct {
	ID        string           `json:"id"`
	Time      int64            `json:"time"`
	Messaging []MessagingEvent `json:"messaging,omitempty"`
	Changes   []Change         `json:"changes,omitempty"`
}

// Principal identifies a conversation participant.
type Principal struct {
	ID string `json:"id"`
}

// MessagingEvent is one inbound message or postback.
type MessagingEvent struct {
	Sender    Principal `json:"sender"`
	Recipient Principal `json:"recipient"`
	Timestamp int64     `json:"timestamp"`
	Message   *Message  `json:"message,omitempty"`
	Postback  *Postback `json:"postback,omitempty"`
}

// Message is the free-text / quick-reply / attachment part of an event.
type Message struct {
	MID         string        `json:"mid"`
	Text        string        `json:"text"`
	IsEcho      bool          `json:"is_echo,omitempty"`
	QuickReply  *QuickReplyIn `json:"quick_reply,omitempty"`
	Attachments []Attachment  `json:"attachments,omitempty"`
}

// QuickReplyIn carries the payload of a tapped quick-reply button.
type QuickReplyIn struct {
	Payload string `json:"payload"`
}

// Attachment is a non-text message part (image, audio, sticker, ...).
type Attachment struct {
	Type string `json:"type"`
}

// Postback is a tapped template or persistent-menu button.
type Postback struct {
	Title   string `json:"title"`
	Payload string `json:"payload"`
}

// Change is a page feed change; the bot only reacts to comment additions.
type Change struct {
	Field string       `json:"field"`
	Value CommentValue `json:"value"`
}

// CommentValue is the comment payload inside a feed change.
type CommentValue struct {
	Item      string    `json:"item"`
	Verb      string    `json:"verb"`
	CommentID string    `json:"comment_id"`
	Message   string    `json:"message"`
	From      Principal `json:"from"`
}

// EventKey returns a stable identity for replay deduplication: the message
// mid when present, else sender+timestamp.
func (e *MessagingEvent) EventKey() string {
	if e.Message != nil && e.Message.MID != "" {
		return e.Message.MID
	}
	return e.Sender.ID + ":" + strconv.FormatInt(e.Timestamp, 10)
}
