package netconf

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
)

type hello struct {
	XMLName      xml.Name `xml:"hello"`
	Capabilities []string `xml:"capabilities>capability"`
	SessionID    string   `xml:"session-id"`
}

func parseHello(raw []byte) (hello, error) {
	var h hello
	if err := xml.Unmarshal(raw, &h); err != nil {
		return h, err
	}
	if len(h.Capabilities) == 0 {
		return h, fmt.Errorf("hello lists no capabilities")
	}
	for i, c := range h.Capabilities {
		h.Capabilities[i] = strings.TrimSpace(c)
	}
	h.SessionID = strings.TrimSpace(h.SessionID)
	return h, nil
}

// ParseCapabilities reads a saved server hello, with or without its
// end-of-message marker. Input that is not XML is read as one capability
// URI per line; blank lines and lines starting with # are ignored.
func ParseCapabilities(data []byte) ([]string, error) {
	data = bytes.TrimSpace(data)
	data = bytes.TrimSpace(bytes.TrimSuffix(data, []byte(endOfMessage)))
	if bytes.HasPrefix(data, []byte("<")) {
		h, err := parseHello(data)
		if err != nil {
			return nil, fmt.Errorf("parse hello: %w", err)
		}
		return h.Capabilities, nil
	}
	var caps []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		caps = append(caps, line)
	}
	if len(caps) == 0 {
		return nil, fmt.Errorf("no capabilities found")
	}
	return caps, nil
}
