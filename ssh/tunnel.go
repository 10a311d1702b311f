// Package ssh reaches the backend through an SSH bastion. The tunnel's
// DialContext plugs into the HTTP client so every request is forwarded over
// a single SSH connection.
package ssh

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// Config represents SSH connection configuration
type Config struct {
	Host           string        `yaml:"host"`
	Port           int           `yaml:"port"`
	User           string        `yaml:"user"`
	KeyPath        string        `yaml:"key_path,omitempty"`
	Password       string        `yaml:"password,omitempty"`
	KnownHosts     string        `yaml:"known_hosts,omitempty"`
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
}

// Address returns host:port of the bastion.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, fmt.Sprint(c.Port))
}

// Tunnel forwards TCP connections through an SSH server.
type Tunnel struct {
	config *Config

	mu     sync.Mutex
	client *ssh.Client
}

// NewTunnel creates a tunnel. Port defaults to 22 and the connect timeout to
// 30 seconds.
func NewTunnel(config *Config) *Tunnel {
	if config.Port == 0 {
		config.Port = 22
	}
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = 30 * time.Second
	}
	return &Tunnel{config: config}
}

// Connect establishes the SSH connection
func (t *Tunnel) Connect(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client != nil {
		return nil
	}

	var authMethods []ssh.AuthMethod
	if t.config.KeyPath != "" {
		key, err := loadPrivateKey(t.config.KeyPath)
		if err != nil {
			return fmt.Errorf("failed to load private key: %w", err)
		}
		authMethods = append(authMethods, ssh.PublicKeys(key))
	}
	if t.config.Password != "" {
		authMethods = append(authMethods, ssh.Password(t.config.Password))
	}
	if len(authMethods) == 0 {
		return fmt.Errorf("no authentication method provided")
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey()
	if t.config.KnownHosts != "" {
		cb, err := knownhosts.New(expandHome(t.config.KnownHosts))
		if err != nil {
			return fmt.Errorf("failed to load known hosts: %w", err)
		}
		hostKeyCallback = cb
	}

	sshConfig := &ssh.ClientConfig{
		User:            t.config.User,
		Auth:            authMethods,
		HostKeyCallback: hostKeyCallback,
		Timeout:         t.config.ConnectTimeout,
	}

	address := t.config.Address()
	client, err := dialWithContext(ctx, address, sshConfig)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	t.client = client
	return nil
}

// DialContext opens a connection to addr from the far side of the tunnel.
func (t *Tunnel) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	t.mu.Lock()
	client := t.client
	t.mu.Unlock()
	if client == nil {
		return nil, fmt.Errorf("tunnel not connected")
	}

	conn, err := client.DialContext(ctx, network, addr)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s through %s: %w", addr, t.config.Address(), err)
	}
	return conn, nil
}

// Config returns the SSH configuration
func (t *Tunnel) Config() *Config {
	return t.config
}

// IsConnected returns true if the tunnel is up
func (t *Tunnel) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client != nil
}

// Close closes the SSH connection
func (t *Tunnel) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.client == nil {
		return nil
	}
	err := t.client.Close()
	t.client = nil
	return err
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}

func loadPrivateKey(keyPath string) (ssh.Signer, error) {
	keyData, err := os.ReadFile(expandHome(keyPath))
	if err != nil {
		return nil, err
	}
	return ssh.ParsePrivateKey(keyData)
}

// dialWithContext provides context-aware dialing
func dialWithContext(ctx context.Context, address string, config *ssh.ClientConfig) (*ssh.Client, error) {
	dialer := &net.Dialer{Timeout: config.Timeout}
	conn, err := dialer.DialContext(ctx, "tcp", address)
	if err != nil {
		return nil, err
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, address, config)
	if err != nil {
		conn.Close()
		return nil, err
	}
	return ssh.NewClient(sshConn, chans, reqs), nil
}
