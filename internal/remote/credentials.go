package remote

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/agent"
	"golang.org/x/term"
)

var errNoCredentials = errors.New("no SSH credentials available (load a key into ssh-agent, add one under ~/.ssh, or drop --ssh-batch)")

// identityFiles are tried in order under the key directory.
var identityFiles = []string{"id_ed25519", "id_ecdsa", "id_rsa"}

// credentials is everything one Dial may authenticate with. Password and
// keyboard-interactive share a single answer, asked for at most once.
type credentials struct {
	user   string
	host   string
	batch  bool
	agent  string
	keyDir string

	// readSecret asks for a secret without echo.
	readSecret func(prompt string) (string, error)
	secret     func() (string, error)
}

func newCredentials(cfg Config, user, host string) *credentials {
	c := &credentials{
		user:       user,
		host:       host,
		batch:      cfg.BatchMode,
		agent:      strings.TrimSpace(os.Getenv("SSH_AUTH_SOCK")),
		readSecret: readTerminalSecret,
	}
	if home, err := os.UserHomeDir(); err == nil {
		c.keyDir = filepath.Join(home, ".ssh")
	}
	c.secret = sync.OnceValues(func() (string, error) {
		return c.readSecret(fmt.Sprintf("%s@%s's password: ", c.user, c.host))
	})
	return c
}

// methods lists agent keys first, then on-disk keys. Interactive methods
// are only offered outside batch mode.
func (c *credentials) methods() ([]ssh.AuthMethod, error) {
	var out []ssh.AuthMethod
	if c.agent != "" {
		out = append(out, ssh.PublicKeysCallback(c.agentSigners))
	}
	if signers := c.diskSigners(); len(signers) > 0 {
		out = append(out, ssh.PublicKeys(signers...))
	}
	if !c.batch {
		out = append(out, ssh.PasswordCallback(c.secret), ssh.KeyboardInteractive(c.challenge))
	}
	if len(out) == 0 {
		return nil, errNoCredentials
	}
	return out, nil
}

func (c *credentials) agentSigners() ([]ssh.Signer, error) {
	conn, err := net.Dial("unix", c.agent)
	if err != nil {
		return nil, fmt.Errorf("ssh-agent: %w", err)
	}
	defer conn.Close()
	return agent.NewClient(conn).Signers()
}

// diskSigners skips keys that are absent, unreadable or passphrase-protected.
func (c *credentials) diskSigners() []ssh.Signer {
	if c.keyDir == "" {
		return nil
	}
	var signers []ssh.Signer
	for _, name := range identityFiles {
		raw, err := os.ReadFile(filepath.Join(c.keyDir, name))
		if err != nil {
			continue
		}
		if s, err := ssh.ParsePrivateKey(raw); err == nil {
			signers = append(signers, s)
		}
	}
	return signers
}

// challenge answers every hidden question with the password. Echoed
// questions (usernames, OTP labels) stay blank.
func (c *credentials) challenge(_, _ string, questions []string, echos []bool) ([]string, error) {
	answers := make([]string, len(questions))
	for i := range questions {
		if i < len(echos) && echos[i] {
			continue
		}
		secret, err := c.secret()
		if err != nil {
			return nil, err
		}
		answers[i] = secret
	}
	return answers, nil
}

func readTerminalSecret(prompt string) (string, error) {
	if !terminal.interactive() {
		return "", fmt.Errorf("cannot prompt for SSH password: stdin is not a terminal")
	}
	fmt.Fprint(terminal.out, prompt)
	b, err := term.ReadPassword(int(terminal.in.Fd()))
	fmt.Fprintln(terminal.out)
	if err != nil {
		return "", fmt.Errorf("password prompt failed: %w", err)
	}
	return string(b), nil
}
