package mailbox

import (
	"bytes"
	"context"
	"io"
	"strings"
	"time"

	gomessage "github.com/emersion/go-message"
	gomail "github.com/emersion/go-message/mail"
	htmlcharset "golang.org/x/net/html/charset"
)

func init() {
	gomessage.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		return htmlcharset.NewReaderLabel(charset, input)
	}
}

// Message is one raw message fetched from a mailbox.
type Message struct {
	// UID is the mailbox-assigned unique identifier of the message.
	UID string

	// Seq is the message's sequence number within this session.
	Seq int

	// RemoteID names the message across runs, combining the account and
	// the UID.
	RemoteID string

	// Fetched records when the message was retrieved.
	Fetched time.Time

	// Raw holds the message bytes exactly as retrieved.
	Raw []byte

	// Envelope carries a best-effort summary of the message header for
	// logging and reporting. Fields may be empty if the corresponding
	// headers were missing or malformed.
	Envelope Envelope
}

// Handler consumes one fetched message. Returning an error stops the fetch
// and leaves this message, and every message after it, on the server.
type Handler interface {
	Handle(ctx context.Context, msg *Message) error
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, msg *Message) error

// Handle calls f(ctx, msg).
func (f HandlerFunc) Handle(ctx context.Context, msg *Message) error {
	return f(ctx, msg)
}

// Envelope summarizes the header of a fetched message.
type Envelope struct {
	From      string
	To        []string
	Subject   string
	Date      time.Time
	MessageID string
}

// ParseEnvelope reads the header of the given raw message and summarizes
// it. Individual fields that cannot be read are left at their zero values;
// an error is returned only when the header itself cannot be parsed.
func ParseEnvelope(raw []byte) (Envelope, error) {
	var env Envelope

	r, err := gomail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return env, err
	}

	if list, err := r.Header.AddressList("From"); err == nil && len(list) > 0 {
		env.From = list[0].Address
	}
	if list, err := r.Header.AddressList("To"); err == nil {
		for _, a := range list {
			env.To = append(env.To, a.Address)
		}
	}
	if subject, err := r.Header.Subject(); err == nil {
		env.Subject = subject
	}
	if date, err := r.Header.Date(); err == nil {
		env.Date = date
	}
	if id := r.Header.Get("Message-Id"); id != "" {
		env.MessageID = strings.Trim(strings.TrimSpace(id), "<>")
	}

	return env, nil
}
