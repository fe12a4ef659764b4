package netconf

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
)

const (
	endOfMessage = "]]>]]>"
	// maxChunkSize is the largest chunk RFC 6242 allows.
	maxChunkSize = 4294967295
	// maxMessageSize bounds a single reply held in memory.
	maxMessageSize = 64 << 20
)

// readEOM reads one base:1.0 message terminated by "]]>]]>".
func readEOM(r *bufio.Reader) ([]byte, error) {
	var buf bytes.Buffer
	for {
		b, err := r.ReadByte()
		if err != nil {
			if err == io.EOF && buf.Len() > 0 {
				return nil, io.ErrUnexpectedEOF
			}
			return nil, err
		}
		buf.WriteByte(b)
		if b == '>' && bytes.HasSuffix(buf.Bytes(), []byte(endOfMessage)) {
			return buf.Bytes()[:buf.Len()-len(endOfMessage)], nil
		}
		if buf.Len() > maxMessageSize {
			return nil, fmt.Errorf("message exceeds %d bytes", maxMessageSize)
		}
	}
}

func writeEOM(w io.Writer, msg []byte) error {
	frame := make([]byte, 0, len(msg)+len(endOfMessage))
	frame = append(frame, msg...)
	frame = append(frame, endOfMessage...)
	_, err := w.Write(frame)
	return err
}

// readChunked reads one base:1.1 chunked message.
func readChunked(r *bufio.Reader) ([]byte, error) {
	var buf bytes.Buffer
	for {
		if err := expect(r, "\n#"); err != nil {
			return nil, err
		}
		b, err := r.ReadByte()
		if err != nil {
			return nil, unexpected(err)
		}
		if b == '#' {
			if err := expect(r, "\n"); err != nil {
				return nil, err
			}
			if buf.Len() == 0 {
				return nil, fmt.Errorf("chunked framing: empty message")
			}
			return buf.Bytes(), nil
		}
		if b < '1' || b > '9' {
			return nil, fmt.Errorf("chunked framing: bad chunk size start %q", b)
		}
		digits := []byte{b}
		for {
			b, err = r.ReadByte()
			if err != nil {
				return nil, unexpected(err)
			}
			if b == '\n' {
				break
			}
			if b < '0' || b > '9' || len(digits) >= 10 {
				return nil, fmt.Errorf("chunked framing: bad chunk size %q", append(digits, b))
			}
			digits = append(digits, b)
		}
		size, err := strconv.ParseUint(string(digits), 10, 64)
		if err != nil || size > maxChunkSize {
			return nil, fmt.Errorf("chunked framing: chunk size %s out of range", digits)
		}
		if uint64(buf.Len())+size > maxMessageSize {
			return nil, fmt.Errorf("message exceeds %d bytes", maxMessageSize)
		}
		if _, err := io.CopyN(&buf, r, int64(size)); err != nil {
			return nil, unexpected(err)
		}
	}
}

func writeChunked(w io.Writer, msg []byte) error {
	var frame bytes.Buffer
	fmt.Fprintf(&frame, "\n#%d\n", len(msg))
	frame.Write(msg)
	frame.WriteString("\n##\n")
	_, err := w.Write(frame.Bytes())
	return err
}

func expect(r *bufio.Reader, s string) error {
	for i := 0; i < len(s); i++ {
		b, err := r.ReadByte()
		if err != nil {
			if i == 0 {
				return err
			}
			return unexpected(err)
		}
		if b != s[i] {
			return fmt.Errorf("chunked framing: got %q, want %q", b, s[i])
		}
	}
	return nil
}

func unexpected(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
