// Package capture records the TCP traffic of a NETCONF session to a pcap
// file and summarizes pcap files afterwards.
package capture

import (
	"fmt"
	"net"
	"os"
	"sync"
	"sync/atomic"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"
	"github.com/google/gopacket/pcapgo"
)

const snapLen = 65535

// Capture is a running packet capture.
type Capture struct {
	handle   *pcap.Handle
	writer   *pcapgo.Writer
	file     *os.File
	iface    string
	packets  atomic.Int64
	stopChan chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	writeErr error
}

// Filter returns the BPF expression for the session with host:port.
func Filter(host string, port int) string {
	return fmt.Sprintf("tcp and host %s and port %d", host, port)
}

// Start captures packets matching filter on iface into outputFile.
func Start(iface, outputFile, filter string) (*Capture, error) {
	handle, err := pcap.OpenLive(iface, snapLen, false, pcap.BlockForever)
	if err != nil {
		return nil, fmt.Errorf("open live capture on %s: %w", iface, err)
	}
	if err := handle.SetBPFFilter(filter); err != nil {
		handle.Close()
		return nil, fmt.Errorf("set BPF filter %q: %w", filter, err)
	}

	file, err := os.Create(outputFile)
	if err != nil {
		handle.Close()
		return nil, fmt.Errorf("create pcap file: %w", err)
	}
	writer := pcapgo.NewWriter(file)
	if err := writer.WriteFileHeader(snapLen, handle.LinkType()); err != nil {
		file.Close()
		handle.Close()
		return nil, fmt.Errorf("write pcap header: %w", err)
	}

	c := &Capture{
		handle:   handle,
		writer:   writer,
		file:     file,
		iface:    iface,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
	go c.captureLoop()
	return c, nil
}

// StartForTarget captures the NETCONF session with host:port. An empty
// iface selects the interface that routes to host.
func StartForTarget(iface, host string, port int, outputFile string) (*Capture, error) {
	ip, err := resolve(host)
	if err != nil {
		return nil, err
	}
	if iface == "" {
		iface, err = InterfaceFor(ip)
		if err != nil {
			return nil, err
		}
	}
	return Start(iface, outputFile, Filter(ip.String(), port))
}

func (c *Capture) captureLoop() {
	defer close(c.done)
	source := gopacket.NewPacketSource(c.handle, c.handle.LinkType())
	packets := source.Packets()
	for {
		select {
		case <-c.stopChan:
			return
		case packet, ok := <-packets:
			if !ok {
				return
			}
			ci := packet.Metadata().CaptureInfo
			if err := c.writer.WritePacket(ci, packet.Data()); err != nil && c.writeErr == nil {
				c.writeErr = err
			}
			c.packets.Add(1)
		}
	}
}

// Interface returns the capture interface name.
func (c *Capture) Interface() string { return c.iface }

// Packets returns the number of packets written so far.
func (c *Capture) Packets() int64 { return c.packets.Load() }

// Stop ends the capture and closes the file. It is safe to call more than
// once; later calls return nil.
func (c *Capture) Stop() error {
	var err error
	c.stopOnce.Do(func() {
		close(c.stopChan)
		c.handle.Close()
		<-c.done
		err = c.writeErr
		if cerr := c.file.Close(); err == nil {
			err = cerr
		}
	})
	return err
}

func resolve(host string) (net.IP, error) {
	if ip := net.ParseIP(host); ip != nil {
		return ip, nil
	}
	addrs, err := net.LookupIP(host)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", host, err)
	}
	for _, a := range addrs {
		if a.To4() != nil {
			return a, nil
		}
	}
	if len(addrs) == 0 {
		return nil, fmt.Errorf("resolve %s: no addresses", host)
	}
	return addrs[0], nil
}

// InterfaceFor returns the capture device that carries traffic to ip. The
// local source address is taken from a connected UDP socket, which sends
// nothing, and matched against the device addresses.
func InterfaceFor(ip net.IP) (string, error) {
	devices, err := pcap.FindAllDevs()
	if err != nil {
		return "", fmt.Errorf("find network devices: %w", err)
	}

	var local net.IP
	if ip.IsLoopback() {
		local = ip
	} else {
		conn, err := net.Dial("udp", net.JoinHostPort(ip.String(), "9"))
		if err != nil {
			return "", fmt.Errorf("route to %s: %w", ip, err)
		}
		local = conn.LocalAddr().(*net.UDPAddr).IP
		conn.Close()
	}

	for _, d := range devices {
		for _, a := range d.Addresses {
			if a.IP.Equal(local) || (ip.IsLoopback() && a.IP.IsLoopback()) {
				return d.Name, nil
			}
		}
	}
	return "", fmt.Errorf("no capture device has address %s", local)
}
