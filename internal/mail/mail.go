// Package mail delivers outbound messages such as reset tokens.
package mail

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// Message is a plain-text mail.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a message or returns an error when delivery failed.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ResetMessage builds the reset-token mail. When resetURL is set the token is appended as
// the "token" query parameter.
func ResetMessage(to, token, resetURL string) Message {
	var b strings.Builder
	b.WriteString("A request was made to reset the secret of your account.\n\n")
	if resetURL != "" {
		link := resetURL
		if u, err := url.Parse(resetURL); err == nil {
			q := u.Query()
			q.Set("token", token)
			u.RawQuery = q.Encode()
			link = u.String()
		}
		fmt.Fprintf(&b, "Follow this link to choose a new secret:\n%s\n\n", link)
	} else {
		fmt.Fprintf(&b, "Use this token to choose a new secret:\n%s\n\n", token)
	}
	b.WriteString("If you did not ask for this, ignore this message.\n")

	return Message{To: to, Subject: "Secret reset request", Body: b.String()}
}

// NoticeMessage builds an informational mail.
func NoticeMessage(to, subject, body string) Message {
	return Message{To: to, Subject: subject, Body: body}
}

// Outbox keeps sent messages in memory.
type Outbox struct {
	mu   sync.Mutex
	sent []Message
	// Err, when set, is returned by Send and nothing is recorded.
	Err error
}

// NewOutbox creates an empty outbox.
func NewOutbox() *Outbox {
	return &Outbox{}
}

func (o *Outbox) Send(_ context.Context, msg Message) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.Err != nil {
		return o.Err
	}
	o.sent = append(o.sent, msg)
	return nil
}

// Sent returns a copy of the delivered messages.
func (o *Outbox) Sent() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Message(nil), o.sent...)
}

// Last returns the most recent message addressed to to.
func (o *Outbox) Last(to string) (Message, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i := len(o.sent) - 1; i >= 0; i-- {
		if o.sent[i].To == to {
			return o.sent[i], true
		}
	}
	return Message{}, false
}
