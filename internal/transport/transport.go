// Package transport opens the SSH connections NETCONF sessions run over and
// copies YANG module files from a target, either over SFTP or from a local
// directory.
package transport

import (
	"context"
	"time"
)

// DefaultNetconfPort is the IANA port for NETCONF over SSH.
const DefaultNetconfPort = 830

// ModuleSource copies module files into a local directory.
type ModuleSource interface {
	// FetchDir copies the regular files in dir whose base name matches
	// pattern (filepath.Match syntax) into localDir and returns the local
	// paths in name order.
	FetchDir(ctx context.Context, dir, localDir, pattern string) ([]string, error)

	// Close releases any held resources (e.g., SSH connection).
	Close() error

	// String returns a human-readable description of the source.
	String() string
}

// Options configures transport behavior.
type Options struct {
	Timeout time.Duration // Per-operation timeout, zero means none
}

// DefaultOptions returns sensible default options.
func DefaultOptions() Options {
	return Options{
		Timeout: time.Minute,
	}
}

// SSHOptions configures SSH-specific transport behavior.
type SSHOptions struct {
	Options

	// Authentication
	User          string // SSH username
	KeyFile       string // Path to private key file
	KeyPassphrase string // Passphrase for encrypted key (optional)
	Password      string // Password authentication (fallback)
	Agent         bool   // Use SSH agent for authentication

	// Host verification
	KnownHostsFile     string // Path to known_hosts file
	InsecureIgnoreHost bool   // Skip host key verification (dangerous)

	// Connection
	Port           int           // SSH port (default 830)
	ConnectTimeout time.Duration // Connection timeout
	KeepAlive      time.Duration // Keep-alive interval
}

// DefaultSSHOptions returns sensible default SSH options.
func DefaultSSHOptions() SSHOptions {
	return SSHOptions{
		Options:        DefaultOptions(),
		Port:           DefaultNetconfPort,
		ConnectTimeout: 30 * time.Second,
		KeepAlive:      30 * time.Second,
		Agent:          true, // Try SSH agent by default
	}
}
