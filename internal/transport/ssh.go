package transport

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/sftp"
	"go.uber.org/multierr"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/crypto/ssh/knownhosts"
)

// SSH is a connection to a NETCONF target. It opens subsystem channels
// for sessions and an SFTP client for module retrieval.
type SSH struct {
	opts   SSHOptions
	host   string
	client *ssh.Client
	sftp   *sftp.Client
	mu     sync.Mutex
}

// NewSSH creates a new SSH transport. No connection is made until it is
// needed.
func NewSSH(host string, opts SSHOptions) (*SSH, error) {
	if host == "" {
		return nil, fmt.Errorf("host is required")
	}
	return &SSH{opts: opts, host: host}, nil
}

// Host returns the target host name.
func (s *SSH) Host() string { return s.host }

// Port returns the target port, defaulting to 830.
func (s *SSH) Port() int {
	if s.opts.Port == 0 {
		return DefaultNetconfPort
	}
	return s.opts.Port
}

// Connect establishes the SSH connection if not already connected.
func (s *SSH) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return nil
	}

	config, err := s.buildSSHConfig()
	if err != nil {
		return fmt.Errorf("build SSH config: %w", err)
	}

	// Build address (use JoinHostPort to properly handle IPv6)
	addr := net.JoinHostPort(s.host, strconv.Itoa(s.Port()))

	timeout := s.opts.ConnectTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}

	// SSH handshake
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		conn.Close()
		return fmt.Errorf("SSH handshake: %w", err)
	}
	s.client = ssh.NewClient(sshConn, chans, reqs)

	if s.opts.KeepAlive > 0 {
		go s.keepAlive(s.client)
	}
	return nil
}

// Subsystem opens a session channel running the named subsystem
// ("netconf" for NETCONF). Closing the returned stream closes the channel.
func (s *SSH) Subsystem(ctx context.Context, name string) (io.ReadWriteCloser, error) {
	if err := s.Connect(ctx); err != nil {
		return nil, err
	}
	s.mu.Lock()
	client := s.client
	s.mu.Unlock()
	if client == nil {
		return nil, fmt.Errorf("not connected")
	}

	session, err := client.NewSession()
	if err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}
	stdin, err := session.StdinPipe()
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("stdin pipe: %w", err), session.Close())
	}
	stdout, err := session.StdoutPipe()
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("stdout pipe: %w", err), session.Close())
	}
	if err := session.RequestSubsystem(name); err != nil {
		return nil, multierr.Append(fmt.Errorf("request subsystem %s: %w", name, err), session.Close())
	}
	return &subsystemStream{Reader: stdout, WriteCloser: stdin, session: session}, nil
}

type subsystemStream struct {
	io.Reader
	io.WriteCloser
	session *ssh.Session
	once    sync.Once
	err     error
}

func (c *subsystemStream) Close() error {
	c.once.Do(func() {
		c.err = multierr.Combine(c.WriteCloser.Close(), ignoreEOF(c.session.Close()))
	})
	return c.err
}

func ignoreEOF(err error) error {
	if err == io.EOF {
		return nil
	}
	return err
}

// buildSSHConfig builds the SSH client configuration.
func (s *SSH) buildSSHConfig() (*ssh.ClientConfig, error) {
	var authMethods []ssh.AuthMethod

	// Try SSH agent first
	if s.opts.Agent {
		if agentAuth := sshAgentAuth(); agentAuth != nil {
			authMethods = append(authMethods, agentAuth)
		}
	}

	if s.opts.KeyFile != "" {
		keyAuth, err := publicKeyAuth(s.opts.KeyFile, s.opts.KeyPassphrase)
		if err != nil {
			return nil, fmt.Errorf("key file auth: %w", err)
		}
		authMethods = append(authMethods, keyAuth)
	}

	// Try default key files if no key specified
	if s.opts.KeyFile == "" && !s.opts.Agent {
		for _, keyPath := range defaultKeyPaths() {
			if keyAuth, err := publicKeyAuth(keyPath, ""); err == nil {
				authMethods = append(authMethods, keyAuth)
				break
			}
		}
	}

	// NETCONF devices commonly accept only password or
	// keyboard-interactive logins.
	if s.opts.Password != "" {
		password := s.opts.Password
		authMethods = append(authMethods,
			ssh.Password(password),
			ssh.KeyboardInteractive(func(_, _ string, questions []string, _ []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range answers {
					answers[i] = password
				}
				return answers, nil
			}),
		)
	}

	if len(authMethods) == 0 {
		return nil, fmt.Errorf("no authentication methods available")
	}

	hostKeyCallback, err := s.hostKeyCallback()
	if err != nil {
		return nil, err
	}

	user := s.opts.User
	if user == "" {
		user = currentUser()
	}

	return &ssh.ClientConfig{
		User:            user,
		Auth:            authMethods,
		HostKeyCallback: hostKeyCallback,
		Timeout:         s.opts.ConnectTimeout,
	}, nil
}

func (s *SSH) hostKeyCallback() (ssh.HostKeyCallback, error) {
	if s.opts.InsecureIgnoreHost {
		return ssh.InsecureIgnoreHostKey(), nil
	}
	if s.opts.KnownHostsFile != "" {
		cb, err := knownhosts.New(s.opts.KnownHostsFile)
		if err != nil {
			return nil, fmt.Errorf("known hosts: %w", err)
		}
		return cb, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("no known_hosts file and no home directory; set known_hosts or insecure")
	}
	defaultKnownHosts := filepath.Join(home, ".ssh", "known_hosts")
	cb, err := knownhosts.New(defaultKnownHosts)
	if err != nil {
		return nil, fmt.Errorf("known hosts %s: %w", defaultKnownHosts, err)
	}
	return cb, nil
}

// keepAlive sends periodic keep-alive requests until the client closes.
func (s *SSH) keepAlive(client *ssh.Client) {
	ticker := time.NewTicker(s.opts.KeepAlive)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.Lock()
		current := s.client
		s.mu.Unlock()
		if current != client {
			return
		}
		if _, _, err := client.SendRequest("keepalive@openssh.com", true, nil); err != nil {
			return
		}
	}
}

// getSFTP returns the SFTP client, creating it if necessary.
func (s *SSH) getSFTP() (*sftp.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sftp != nil {
		return s.sftp, nil
	}
	if s.client == nil {
		return nil, fmt.Errorf("not connected")
	}
	sftpClient, err := sftp.NewClient(s.client)
	if err != nil {
		return nil, fmt.Errorf("create SFTP client: %w", err)
	}
	s.sftp = sftpClient
	return s.sftp, nil
}

// FetchDir copies matching files from the remote directory over SFTP.
// Failures on individual files are collected and returned together with
// the paths that were copied.
func (s *SSH) FetchDir(ctx context.Context, dir, localDir, pattern string) ([]string, error) {
	if err := s.Connect(ctx); err != nil {
		return nil, err
	}
	client, err := s.getSFTP()
	if err != nil {
		return nil, err
	}

	infos, err := client.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read remote directory %s: %w", dir, err)
	}
	var names []string
	for _, fi := range infos {
		if !fi.Mode().IsRegular() {
			continue
		}
		ok, err := path.Match(pattern, fi.Name())
		if err != nil {
			return nil, fmt.Errorf("match %q: %w", pattern, err)
		}
		if ok && validateFileName(fi.Name()) == nil {
			names = append(names, fi.Name())
		}
	}
	sort.Strings(names)

	if err := os.MkdirAll(localDir, 0755); err != nil {
		return nil, fmt.Errorf("create local directory: %w", err)
	}
	var paths []string
	var errs error
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return paths, multierr.Append(errs, err)
		}
		dst := filepath.Join(localDir, name)
		if err := s.get(client, path.Join(dir, name), dst); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		paths = append(paths, dst)
	}
	return paths, errs
}

// Get copies a remote file to the local host.
func (s *SSH) Get(ctx context.Context, remotePath, localPath string) error {
	if err := s.Connect(ctx); err != nil {
		return err
	}
	client, err := s.getSFTP()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(localPath), 0755); err != nil {
		return fmt.Errorf("create local directory: %w", err)
	}
	return s.get(client, remotePath, localPath)
}

func (s *SSH) get(client *sftp.Client, remotePath, localPath string) error {
	remoteFile, err := client.Open(remotePath)
	if err != nil {
		return fmt.Errorf("open remote file: %w", err)
	}
	defer remoteFile.Close()

	localFile, err := os.OpenFile(localPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("create local file: %w", err)
	}
	if _, err := io.Copy(localFile, remoteFile); err != nil {
		return multierr.Append(fmt.Errorf("copy: %w", err), localFile.Close())
	}
	return multierr.Append(localFile.Sync(), localFile.Close())
}

// Close closes the SFTP client and the SSH connection.
func (s *SSH) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs error
	if s.sftp != nil {
		errs = multierr.Append(errs, s.sftp.Close())
		s.sftp = nil
	}
	if s.client != nil {
		errs = multierr.Append(errs, s.client.Close())
		s.client = nil
	}
	return errs
}

// String returns a description of this transport.
func (s *SSH) String() string {
	user := s.opts.User
	if user == "" {
		user = currentUser()
	}
	if user == "" {
		user = "unknown"
	}
	return fmt.Sprintf("ssh://%s@%s", user, net.JoinHostPort(s.host, strconv.Itoa(s.Port())))
}

// Helper functions

func currentUser() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return os.Getenv("USERNAME") // Windows
}

// sshAgentAuth returns an SSH agent authentication method, or nil when no
// agent socket is available.
func sshAgentAuth() ssh.AuthMethod {
	socket := os.Getenv("SSH_AUTH_SOCK")
	if socket == "" {
		return nil
	}
	conn, err := net.Dial("unix", socket)
	if err != nil {
		return nil
	}
	agentClient := agent.NewClient(conn)
	return ssh.PublicKeysCallback(agentClient.Signers)
}

// publicKeyAuth returns a public key authentication method.
func publicKeyAuth(keyPath, passphrase string) (ssh.AuthMethod, error) {
	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, err
	}

	var signer ssh.Signer
	if passphrase != "" {
		signer, err = ssh.ParsePrivateKeyWithPassphrase(key, []byte(passphrase))
	} else {
		signer, err = ssh.ParsePrivateKey(key)
	}
	if err != nil {
		return nil, err
	}
	return ssh.PublicKeys(signer), nil
}

// defaultKeyPaths returns default SSH key file paths.
func defaultKeyPaths() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return []string{
		filepath.Join(home, ".ssh", "id_ed25519"),
		filepath.Join(home, ".ssh", "id_rsa"),
		filepath.Join(home, ".ssh", "id_ecdsa"),
	}
}

// validateFileName rejects remote directory entries that would escape the
// local directory.
func validateFileName(name string) error {
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("invalid file name %q", name)
	}
	if filepath.Base(name) != name || path.Base(name) != name {
		return fmt.Errorf("file name %q contains a separator", name)
	}
	return nil
}

var _ ModuleSource = (*SSH)(nil)
