// Package cli wires configuration, the filesystem backend, the walker and
// the output writer into the treezy command.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/spf13/cobra"

	"github.com/sadopc/treezy/internal/config"
)

// CLI is one invocation of the command.
type CLI struct {
	version string
	stdout  io.Writer
	stderr  io.Writer

	exitCode int
}

// New creates a CLI writing to the process's standard streams.
func New(version string) *CLI {
	return &CLI{version: version, stdout: os.Stdout, stderr: os.Stderr}
}

// Execute runs treezy with os.Args and returns the process exit code.
func Execute(version string) int {
	return New(version).Run(context.Background(), os.Args[1:])
}

// Run executes the command with args and returns the exit code: 0 when the
// walk recorded no errors, 1 otherwise.
func (c *CLI) Run(ctx context.Context, args []string) int {
	cmd := c.command()
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(c.stderr, "Error: %v\n", err)
		return 1
	}
	return c.exitCode
}

func (c *CLI) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "treezy [path | user@host [remote-path]]",
		Short: "List a directory tree with inode numbers and entry types",
		Long: heredoc.Doc(`
			treezy walks a directory tree depth-first and prints one line per entry:

			  <path>:ino=<inode>[:dtype=<hint>]:type=<f|d|l>

			followed by a summary of files, directories, symbolic links and errors.
			Symbolic links are reported, never followed. Entries that cannot be
			inspected are reported on stderr and counted as errors; the walk carries on.

			The exit status is 0 when no errors were recorded and 1 otherwise.

			A user@host argument walks a remote tree over SFTP instead.

			Every flag can also be set through a TREEZY_<FLAG> environment variable
			(e.g. TREEZY_MAX_DEPTH=2) or a config file.
		`),
		Example: heredoc.Doc(`
			treezy                         Walk the current directory
			treezy /etc --sort             Walk /etc in natural name order
			treezy --no-recurse --dtype .  List one level with raw type hints
			treezy --format json /srv      Emit JSON lines
			treezy alice@10.0.0.5 /var/log Walk a remote tree over SFTP
		`),
		Version:       c.version,
		Args:          cobra.MaximumNArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			tgt, err := resolveTarget(args)
			if err != nil {
				return err
			}
			code, err := c.walk(cmd.Context(), cfg, tgt)
			if err != nil {
				return err
			}
			c.exitCode = code
			return nil
		},
	}
	cmd.SetOut(c.stdout)
	cmd.SetErr(c.stderr)
	cmd.SetVersionTemplate("treezy {{.Version}}\n")
	cmd.Flags().SortFlags = false
	config.RegisterFlags(cmd.Flags())
	return cmd
}
