package remote

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	pathpkg "path"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/sftp"
	"github.com/sadopc/treezy/internal/model"
	"github.com/sadopc/treezy/internal/walker"
	"golang.org/x/crypto/ssh"
)

const defaultRemotePath = "."

const defaultDialTimeout = 15 * time.Second

// Config configures a remote SFTP connection.
type Config struct {
	Target    string
	Port      int
	BatchMode bool
	Timeout   time.Duration
}

type sftpClient interface {
	ReadDir(string) ([]os.FileInfo, error)
	Lstat(string) (os.FileInfo, error)
}

var dialContext = func(ctx context.Context, network, address string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, network, address)
}

var sshNewClientConn = func(conn net.Conn, addr string, config *ssh.ClientConfig) (ssh.Conn, <-chan ssh.NewChannel, <-chan *ssh.Request, error) {
	return ssh.NewClientConn(conn, addr, config)
}

// FS is a walker.FS backed by an SFTP session. SFTP listings carry no inode
// numbers, so entries report ino 0.
type FS struct {
	client sftpClient
	closer io.Closer
}

var _ walker.FS = (*FS)(nil)

// Dial connects to cfg.Target and starts the SFTP subsystem. The connection
// stays open until Close.
func Dial(ctx context.Context, cfg Config) (*FS, error) {
	client, closer, err := dialSFTP(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &FS{client: client, closer: closer}, nil
}

// Close ends the SFTP session and the SSH connection under it.
func (f *FS) Close() error {
	if f.closer == nil {
		return nil
	}
	return f.closer.Close()
}

func (f *FS) Separator() byte { return '/' }

// OpenDir lists path in a single round of READDIR requests. The handle then
// hands the whole listing out as one batch.
func (f *FS) OpenDir(path string) (walker.DirHandle, error) {
	infos, err := f.client.ReadDir(path)
	if err != nil {
		return nil, err
	}
	entries := make([]walker.DirEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, walker.DirEntry{
			Name: info.Name(),
			Hint: model.HintFromMode(info.Mode()),
		})
	}
	return &listing{entries: entries}, nil
}

func (f *FS) Lstat(path string) (model.Status, error) {
	info, err := f.client.Lstat(path)
	if err != nil {
		return model.Status{}, err
	}
	return statusFromRemote(info), nil
}

// CleanPath normalizes a remote path to POSIX form. An empty path means the
// login directory.
func CleanPath(p string) string {
	if strings.TrimSpace(p) == "" {
		return defaultRemotePath
	}
	return pathpkg.Clean(strings.ReplaceAll(p, "\\", "/"))
}

type listing struct {
	entries []walker.DirEntry
	done    bool
}

func (l *listing) ReadBatch() ([]walker.DirEntry, error) {
	if l.done {
		return nil, io.EOF
	}
	l.done = true
	if len(l.entries) == 0 {
		return nil, io.EOF
	}
	return l.entries, nil
}

func (l *listing) Close() error {
	l.entries = nil
	return nil
}

func statusFromRemote(info os.FileInfo) model.Status {
	st := model.Status{
		Mode:  info.Mode(),
		Size:  info.Size(),
		Mtime: info.ModTime(),
	}
	if attrs, ok := info.Sys().(*sftp.FileStat); ok {
		st.UID = attrs.UID
		st.GID = attrs.GID
		st.HasOwner = true
	}
	return st
}

func dialSFTP(ctx context.Context, cfg Config) (sftpClient, io.Closer, error) {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, nil, fmt.Errorf("ssh port must be between 1 and 65535")
	}

	user, host, err := parseSSHTarget(cfg.Target)
	if err != nil {
		return nil, nil, err
	}

	hostCB, err := hostKeyCallback(host, cfg.Port, cfg.BatchMode)
	if err != nil {
		return nil, nil, err
	}

	auth, err := newCredentials(cfg, user, host).methods()
	if err != nil {
		return nil, nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultDialTimeout
	}
	dialCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	sshConfig := &ssh.ClientConfig{
		User:            user,
		Auth:            auth,
		HostKeyCallback: hostCB,
		Timeout:         timeout,
	}

	addr := net.JoinHostPort(host, strconv.Itoa(cfg.Port))
	sshClient, err := connectSSH(dialCtx, addr, sshConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("SSH connection failed: %w", err)
	}

	client, err := sftp.NewClient(sshClient)
	if err != nil {
		_ = sshClient.Close()
		return nil, nil, fmt.Errorf("cannot start SFTP subsystem: %w", err)
	}

	return client, &remoteCloser{ssh: sshClient, sftp: client}, nil
}

func connectSSH(ctx context.Context, addr string, config *ssh.ClientConfig) (*ssh.Client, error) {
	conn, err := dialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	// Cancellation must interrupt the handshake too.
	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.Close()
		case <-done:
		}
	}()

	c, chans, reqs, err := sshNewClientConn(conn, addr, config)
	close(done)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return ssh.NewClient(c, chans, reqs), nil
}

type remoteCloser struct {
	ssh  *ssh.Client
	sftp *sftp.Client
}

func (c *remoteCloser) Close() error {
	var retErr error
	if c.sftp != nil {
		retErr = c.sftp.Close()
	}
	if c.ssh != nil {
		if err := c.ssh.Close(); err != nil && retErr == nil {
			retErr = err
		}
	}
	return retErr
}
