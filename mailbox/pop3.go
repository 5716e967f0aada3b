package mailbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/knadh/go-pop3"
)

// DefaultDialTimeout bounds the TCP dial to the mail server.
const DefaultDialTimeout = 30 * time.Second

// pop3Connection is the slice of the POP3 client the source depends on.
type pop3Connection interface {
	Auth(user, password string) error
	Quit() error
	Uidl(msgID int) ([]pop3.MessageID, error)
	RetrRaw(msgID int) (*bytes.Buffer, error)
	Dele(msgID ...int) error
}

type connFactory func(Account) (pop3Connection, error)

// POP3Source drains POP3 mailboxes and hands each message to a Handler.
type POP3Source struct {
	keep        bool
	dialTimeout time.Duration
	logger      *slog.Logger
	now         func() time.Time
	newConn     connFactory
}

// Option customizes a POP3Source.
type Option func(*POP3Source)

// NewPOP3Source returns a source that deletes messages from the server once
// they have been handled successfully.
func NewPOP3Source(opts ...Option) *POP3Source {
	s := &POP3Source{
		dialTimeout: DefaultDialTimeout,
		logger:      slog.Default(),
		now:         func() time.Time { return time.Now().UTC() },
	}
	s.newConn = s.defaultConnFactory
	for _, opt := range opts {
		opt(s)
	}
	if s.newConn == nil {
		s.newConn = s.defaultConnFactory
	}
	return s
}

// WithKeepMessages leaves handled messages on the server instead of
// deleting them.
func WithKeepMessages(keep bool) Option {
	return func(s *POP3Source) {
		s.keep = keep
	}
}

// WithLogger overrides the logger used for fetch diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *POP3Source) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithDialTimeout overrides the socket dial timeout.
func WithDialTimeout(timeout time.Duration) Option {
	return func(s *POP3Source) {
		if timeout > 0 {
			s.dialTimeout = timeout
		}
	}
}

// WithClock overrides the wall clock, primarily for tests.
func WithClock(now func() time.Time) Option {
	return func(s *POP3Source) {
		if now != nil {
			s.now = now
		}
	}
}

func withConnFactory(factory connFactory) Option {
	return func(s *POP3Source) {
		s.newConn = factory
	}
}

// Fetch drains the account's mailbox, handing each message to handler in
// mailbox order. A message is deleted from the server only after the
// handler accepts it; a handler failure stops the fetch and leaves the
// failing message and everything after it on the server. Fetch reports the
// number of messages handled.
func (s *POP3Source) Fetch(ctx context.Context, account Account, handler Handler) (int, error) {
	if handler == nil {
		return 0, errors.New("mailbox: fetch requires a handler")
	}
	if err := account.validate(); err != nil {
		return 0, err
	}

	log := s.logger.With(
		slog.String("host", account.Host),
		slog.String("user", account.Username),
	)

	conn, err := s.newConn(account)
	if err != nil {
		return 0, fmt.Errorf("pop3 connect: %w", err)
	}
	defer s.safeQuit(log, conn)

	if err := conn.Auth(account.Username, account.Password); err != nil {
		return 0, fmt.Errorf("pop3 auth: %w", err)
	}

	msgs, err := conn.Uidl(0)
	if err != nil {
		return 0, fmt.Errorf("pop3 uidl: %w", err)
	}
	log.Debug("mailbox listed", slog.Int("messages", len(msgs)))

	handled := 0
	for _, meta := range msgs {
		if ctx.Err() != nil {
			return handled, ctx.Err()
		}

		payload, err := conn.RetrRaw(meta.ID)
		if err != nil {
			return handled, fmt.Errorf("pop3 retr %d: %w", meta.ID, err)
		}

		msg := s.buildMessage(log, account, meta, payload.Bytes())
		if err := handler.Handle(ctx, msg); err != nil {
			return handled, fmt.Errorf("handling %s: %w", msg.RemoteID, err)
		}
		handled++

		if !s.keep {
			if err := conn.Dele(meta.ID); err != nil {
				return handled, fmt.Errorf("pop3 dele %d: %w", meta.ID, err)
			}
		}
	}

	return handled, nil
}

func (s *POP3Source) buildMessage(log *slog.Logger, account Account, meta pop3.MessageID, payload []byte) *Message {
	uid := meta.UID
	if uid == "" {
		uid = strconv.Itoa(meta.ID)
	}
	raw := append([]byte(nil), payload...)

	env, err := ParseEnvelope(raw)
	if err != nil {
		log.Warn("message header unreadable",
			slog.String("uid", uid),
			slog.Any("error", err))
	}

	return &Message{
		UID:      uid,
		Seq:      meta.ID,
		RemoteID: remoteID(account, uid),
		Fetched:  s.now(),
		Raw:      raw,
		Envelope: env,
	}
}

func (s *POP3Source) safeQuit(log *slog.Logger, conn pop3Connection) {
	if conn == nil {
		return
	}
	if err := conn.Quit(); err != nil {
		log.Warn("pop3 quit failed", slog.Any("error", err))
	}
}

func (s *POP3Source) defaultConnFactory(account Account) (pop3Connection, error) {
	client := pop3.New(pop3.Opt{
		Host:        account.Host,
		Port:        account.port(),
		DialTimeout: s.dialTimeout,
		TLSEnabled:  account.TLS,
	})
	return client.NewConn()
}

func remoteID(account Account, uid string) string {
	return fmt.Sprintf("%s@%s:%s", account.Username, account.Host, uid)
}
