package cli

import (
	"fmt"
	"os"
	"strings"
)

// target is what the positional arguments resolve to: a local directory, or
// an SSH destination plus a path on that host.
type target struct {
	Remote bool
	// Path is the directory to walk, local or remote.
	Path string
	// Dest is the user@host for remote walks.
	Dest string
}

// resolveTarget interprets
//
//	treezy [path | user@host [remote-path]]
//
// An existing local path always wins over a user@host reading of the same
// argument.
func resolveTarget(args []string) (target, error) {
	if len(args) == 0 {
		return target{Path: "."}, nil
	}

	first := args[0]
	if _, err := os.Stat(first); err == nil {
		if len(args) > 1 {
			return target{}, fmt.Errorf("too many positional arguments for a local walk")
		}
		return target{Path: first}, nil
	}

	remote, err := parseDestination(first)
	if remote {
		if err != nil {
			return target{}, err
		}
		if len(args) > 2 {
			return target{}, fmt.Errorf("too many positional arguments for a remote walk")
		}
		path := "."
		if len(args) == 2 && strings.TrimSpace(args[1]) != "" {
			path = args[1]
		}
		return target{Remote: true, Dest: first, Path: path}, nil
	}

	if len(args) > 1 {
		return target{}, fmt.Errorf("too many positional arguments")
	}
	return target{Path: first}, nil
}

// parseDestination reports whether raw reads as user@host and, if so,
// whether it is well formed. Anything containing a path separator is a
// local path.
func parseDestination(raw string) (bool, error) {
	if strings.ContainsAny(raw, `/\`) || strings.Count(raw, "@") != 1 {
		return false, nil
	}

	user, host, _ := strings.Cut(raw, "@")
	switch {
	case user == "" || host == "":
		return true, fmt.Errorf("invalid remote target %q: expected user@host", raw)
	case strings.HasPrefix(user, "-") || strings.HasPrefix(host, "-"):
		return true, fmt.Errorf("invalid remote target %q", raw)
	case strings.ContainsAny(raw, " \t\n\r"):
		return true, fmt.Errorf("invalid remote target %q: spaces are not allowed", raw)
	}

	if strings.HasPrefix(host, "[") {
		return true, checkBracketedHost(raw, host)
	}
	if strings.Contains(host, "]") {
		return true, fmt.Errorf("invalid remote target %q: malformed bracketed host", raw)
	}
	if name, port, ok := strings.Cut(host, ":"); ok && !strings.Contains(port, ":") && name != "" && isDigits(port) {
		return true, fmt.Errorf("remote target %q must not include :port; use --ssh-port", raw)
	}
	return true, nil
}

// checkBracketedHost accepts "[addr]" only; a trailing ":port" is rejected
// with a hint.
func checkBracketedHost(raw, host string) error {
	end := strings.Index(host, "]")
	switch {
	case end == -1:
		return fmt.Errorf("invalid remote target %q: malformed bracketed host", raw)
	case end == 1:
		return fmt.Errorf("invalid remote target %q: empty host", raw)
	case end == len(host)-1:
		return nil
	}
	if rest := host[end+1:]; strings.HasPrefix(rest, ":") && isDigits(rest[1:]) {
		return fmt.Errorf("remote target %q must not include :port; use --ssh-port", raw)
	}
	return fmt.Errorf("invalid remote target %q: malformed bracketed host", raw)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
