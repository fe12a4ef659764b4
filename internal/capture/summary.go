package capture

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// Summary describes the NETCONF traffic in a pcap file.
type Summary struct {
	Packets      int
	Bytes        uint64 // Captured frame bytes
	ToServer     int
	FromServer   int
	PayloadBytes uint64 // TCP payload bytes in both directions
	SYN          int
	FIN          int
	RST          int
	First        time.Time
	Last         time.Time
}

// Duration returns the time between the first and last packet.
func (s *Summary) Duration() time.Duration {
	if s.First.IsZero() {
		return 0
	}
	return s.Last.Sub(s.First)
}

// Summarize reads a pcap stream and counts the TCP packets to and from
// serverPort. Other packets are ignored.
func Summarize(r io.Reader, serverPort int) (*Summary, error) {
	pr, err := pcapgo.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("read pcap header: %w", err)
	}
	s := &Summary{}
	port := layers.TCPPort(serverPort)
	for {
		data, ci, err := pr.ReadPacketData()
		if err == io.EOF {
			break
		}
		if err != nil {
			return s, fmt.Errorf("read packet %d: %w", s.Packets+1, err)
		}
		pkt := gopacket.NewPacket(data, pr.LinkType(), gopacket.NoCopy)
		tcpLayer := pkt.Layer(layers.LayerTypeTCP)
		if tcpLayer == nil {
			continue
		}
		tcp := tcpLayer.(*layers.TCP)
		switch {
		case tcp.DstPort == port:
			s.ToServer++
		case tcp.SrcPort == port:
			s.FromServer++
		default:
			continue
		}

		s.Packets++
		s.Bytes += uint64(ci.CaptureLength)
		s.PayloadBytes += uint64(len(tcp.Payload))
		if tcp.SYN {
			s.SYN++
		}
		if tcp.FIN {
			s.FIN++
		}
		if tcp.RST {
			s.RST++
		}
		if s.First.IsZero() {
			s.First = ci.Timestamp
		}
		s.Last = ci.Timestamp
	}
	return s, nil
}

// SummarizeFile summarizes the pcap file at path.
func SummarizeFile(path string, serverPort int) (*Summary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pcap: %w", err)
	}
	defer f.Close()
	return Summarize(f, serverPort)
}
