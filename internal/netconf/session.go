// Package netconf is a thin NETCONF client: hello exchange, framing and
// message-id matching. Reply content is returned raw.
package netconf

import (
	"bufio"
	"bytes"
	"context"
	"encoding/xml"
	stderrors "errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tturner/yangfuzz/internal/logging"
	"github.com/tturner/yangfuzz/internal/transport"
)

const (
	BaseNS = "urn:ietf:params:xml:ns:netconf:base:1.0"

	CapBase10 = "urn:ietf:params:netconf:base:1.0"
	CapBase11 = "urn:ietf:params:netconf:base:1.1"

	closeTimeout = 5 * time.Second
)

// ErrClosed is returned by operations on a closed session.
var ErrClosed = stderrors.New("netconf session closed")

// Options configure a session.
type Options struct {
	// Capabilities advertised in the client hello. Defaults to base 1.0
	// and 1.1.
	Capabilities []string
	Logger       *logging.Logger
}

// Session is one NETCONF session over a stream. Requests are serialized.
type Session struct {
	mu      sync.Mutex
	stream  io.ReadWriteCloser
	r       *bufio.Reader
	log     *logging.Logger
	id      string
	caps    []string
	chunked bool
	msgID   uint64
	closed  bool
}

// Dial opens the netconf subsystem on conn and exchanges hellos.
func Dial(ctx context.Context, conn *transport.SSH, opts Options) (*Session, error) {
	stream, err := conn.Subsystem(ctx, "netconf")
	if err != nil {
		return nil, err
	}
	return Open(ctx, stream, opts)
}

// Open exchanges hellos on stream. Chunked framing is selected when both
// peers advertise base:1.1. The stream is closed if the exchange fails.
func Open(ctx context.Context, stream io.ReadWriteCloser, opts Options) (*Session, error) {
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	caps := opts.Capabilities
	if len(caps) == 0 {
		caps = []string{CapBase10, CapBase11}
	}
	s := &Session{stream: stream, r: bufio.NewReader(stream), log: log}

	var b strings.Builder
	b.WriteString(xml.Header)
	fmt.Fprintf(&b, `<hello xmlns="%s"><capabilities>`, BaseNS)
	for _, c := range caps {
		b.WriteString("<capability>")
		xml.EscapeText(&b, []byte(c))
		b.WriteString("</capability>")
	}
	b.WriteString("</capabilities></hello>")

	var server hello
	err := s.run(ctx, func() error {
		// Both peers send their hello at once; write concurrently so an
		// unbuffered stream cannot deadlock.
		werr := make(chan error, 1)
		go func() { werr <- writeEOM(stream, []byte(b.String())) }()
		raw, err := readEOM(s.r)
		if err != nil {
			return fmt.Errorf("read server hello: %w", err)
		}
		if err := <-werr; err != nil {
			return fmt.Errorf("send hello: %w", err)
		}
		server, err = parseHello(raw)
		if err != nil {
			return fmt.Errorf("parse server hello: %w", err)
		}
		return nil
	})
	if err != nil {
		stream.Close()
		return nil, err
	}
	s.caps = server.Capabilities
	s.id = server.SessionID
	s.chunked = slices.Contains(caps, CapBase11) && slices.Contains(s.caps, CapBase11)
	log.Verbose("netconf session %s established (%d capabilities, chunked=%v)", s.id, len(s.caps), s.chunked)
	return s, nil
}

// Capabilities returns the capabilities from the server hello.
func (s *Session) Capabilities() []string {
	return append([]string(nil), s.caps...)
}

// ID returns the server-assigned session id.
func (s *Session) ID() string { return s.id }

// Chunked reports whether base:1.1 framing is in use.
func (s *Session) Chunked() bool { return s.chunked }

// Get issues <get> with a subtree filter and returns the raw reply.
func (s *Session) Get(ctx context.Context, filter string) ([]byte, error) {
	body := "<get>"
	if filter != "" {
		body += `<filter type="subtree">` + filter + "</filter>"
	}
	body += "</get>"
	return s.Send(ctx, body)
}

// EditConfig merges config into the target datastore and returns the raw
// reply. config is placed inside <config> unchanged.
func (s *Session) EditConfig(ctx context.Context, target, config string) ([]byte, error) {
	if target == "" {
		target = "running"
	}
	body := fmt.Sprintf("<edit-config><target><%s/></target><config>%s</config></edit-config>", target, config)
	return s.Send(ctx, body)
}

// Send wraps operation in an <rpc> with the next message-id, sends it and
// returns the <rpc-reply> carrying the same id. Other messages received in
// between, such as notifications, are discarded.
func (s *Session) Send(ctx context.Context, operation string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	s.msgID++
	id := strconv.FormatUint(s.msgID, 10)
	msg := fmt.Sprintf(`<rpc message-id="%s" xmlns="%s">%s</rpc>`, id, BaseNS, operation)
	s.log.Debug("netconf send message-id=%s (%d bytes)", id, len(msg))

	var reply []byte
	err := s.run(ctx, func() error {
		if err := s.write([]byte(msg)); err != nil {
			return fmt.Errorf("send rpc %s: %w", id, err)
		}
		for {
			raw, err := s.read()
			if err != nil {
				return fmt.Errorf("read reply to %s: %w", id, err)
			}
			got, ok := replyID(raw)
			if ok && got == id {
				reply = raw
				return nil
			}
			s.log.Debug("netconf skipping message (message-id=%q) while waiting for %s", got, id)
		}
	})
	if err != nil {
		if ctx.Err() != nil {
			s.closed = true
		}
		return nil, err
	}
	return reply, nil
}

// Close sends <close-session> and closes the stream. It is safe to call
// more than once.
func (s *Session) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()
	_, sendErr := s.Send(ctx, "<close-session/>")

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed && sendErr == ErrClosed {
		return nil
	}
	s.closed = true
	err := s.stream.Close()
	if sendErr != nil && !stderrors.Is(sendErr, io.EOF) && !stderrors.Is(sendErr, io.ErrUnexpectedEOF) {
		s.log.Debug("close-session: %v", sendErr)
	}
	return err
}

// run executes fn, abandoning it and closing the stream if ctx ends first.
func (s *Session) run(ctx context.Context, fn func() error) error {
	done := make(chan error, 1)
	go func() { done <- fn() }()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		s.stream.Close()
		<-done
		return ctx.Err()
	}
}

func (s *Session) write(msg []byte) error {
	if s.chunked {
		return writeChunked(s.stream, msg)
	}
	return writeEOM(s.stream, msg)
}

func (s *Session) read() ([]byte, error) {
	if s.chunked {
		return readChunked(s.r)
	}
	return readEOM(s.r)
}

// replyID returns the message-id attribute of the first element.
func replyID(msg []byte) (string, bool) {
	d := xml.NewDecoder(bytes.NewReader(msg))
	for {
		tok, err := d.Token()
		if err != nil {
			return "", false
		}
		if se, ok := tok.(xml.StartElement); ok {
			if se.Name.Local != "rpc-reply" {
				return "", false
			}
			for _, a := range se.Attr {
				if a.Name.Local == "message-id" {
					return a.Value, true
				}
			}
			return "", false
		}
	}
}
