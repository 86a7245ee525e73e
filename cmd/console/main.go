package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/practice-admin/internal/app"
	"github.com/jwalitptl/practice-admin/internal/config"
	"github.com/jwalitptl/practice-admin/internal/model"
	"github.com/jwalitptl/practice-admin/internal/page"
	"github.com/jwalitptl/practice-admin/internal/session"
	"github.com/jwalitptl/practice-admin/internal/table"
	apperrors "github.com/jwalitptl/practice-admin/pkg/errors"
)

// errReported marks errors whose notification has already been printed.
var errReported = errors.New("reported")

type console struct {
	configDir   string
	sessionFile string

	in  *bufio.Reader
	out io.Writer

	app   *app.App
	store *session.Store
}

func main() {
	c := &console{in: bufio.NewReader(os.Stdin), out: os.Stdout}
	root := c.rootCmd()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := root.ExecuteContext(ctx)
	stop()
	c.close()

	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "Error:", consoleMessage(err))
		}
		os.Exit(1)
	}
}

func (c *console) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "practice-console",
		Short:         "Practice administration console",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.configDir, "config", "", "directory containing config.yml")
	root.PersistentFlags().StringVar(&c.sessionFile, "session-file", "", "file that stores the signed-in session token")

	root.AddCommand(
		c.signInCmd(),
		c.signOutCmd(),
		c.whoamiCmd(),
		c.configCmd(),
		c.listCmd(),
		c.addCmd(),
		c.editCmd(),
		c.deleteCmd(),
		c.bulkDeleteCmd(),
		c.exportCmd(),
		c.watchCmd(),
	)
	return root
}

// init loads configuration, connects to the backend and restores any saved
// session. It runs once per invocation.
func (c *console) init(ctx context.Context) error {
	if c.app != nil {
		return nil
	}

	var paths []string
	if c.configDir != "" {
		paths = append(paths, c.configDir)
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		return err
	}

	logger := app.NewLogger(cfg.Log, os.Stderr)
	a, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	c.app = a

	if c.sessionFile == "" {
		c.sessionFile = cfg.Console.SessionFile
	}
	if c.sessionFile == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("failed to locate session file: %w", err)
		}
		c.sessionFile = filepath.Join(dir, "practice-admin", "session")
	}

	c.store = session.NewStore(a.Auth, logger)
	return c.store.Init(ctx, c.readToken())
}

// requireSession initializes and fails unless someone is signed in.
func (c *console) requireSession(ctx context.Context) error {
	if err := c.init(ctx); err != nil {
		return err
	}
	if c.store.Current() == nil {
		return errors.New("not signed in; run `practice-console sign-in` first")
	}
	return nil
}

func (c *console) close() {
	if c.store != nil {
		c.store.Close()
	}
	if c.app != nil {
		_ = c.app.Close()
	}
}

func (c *console) readToken() string {
	b, err := os.ReadFile(c.sessionFile)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func (c *console) saveToken(token string) error {
	if token == "" {
		if err := os.Remove(c.sessionFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove session file: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(c.sessionFile), 0o700); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}
	if err := os.WriteFile(c.sessionFile, []byte(token+"\n"), 0o600); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// openPage starts a page for dataSource. Callers must Close it.
func (c *console) openPage(ctx context.Context, dataSource string, filter *model.ListFilter) (*page.Page, error) {
	cfg, err := c.app.MasterData.Config(dataSource)
	if err != nil {
		return nil, fmt.Errorf("unknown data source %q (known: %s)", dataSource, strings.Join(c.app.Configs.Sources(), ", "))
	}
	p := page.New(cfg, c.app.MasterData, c.app.Broker, c.app.Logger)
	p.SetFilter(filter)
	if err := p.Start(ctx); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// report prints the session's notification and marks err as reported.
func (c *console) report(sess *table.Session, err error) error {
	if n := sess.Notification(); n != nil {
		renderNotification(c.out, n)
		if err != nil {
			return fmt.Errorf("%w: %v", errReported, err)
		}
	}
	return err
}

func consoleMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return apperrors.UserMessage(err)
	}
	return err.Error()
}
