package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dmitrijs2005/codecredits/internal/client/config"
	"github.com/dmitrijs2005/codecredits/internal/client/notify"
	"github.com/dmitrijs2005/codecredits/internal/client/store"
	"github.com/dmitrijs2005/codecredits/internal/common"
	"github.com/dmitrijs2005/codecredits/internal/logging"
	"github.com/spf13/cobra"
)

// Root restores the saved session, starts the periodic credit refresh and
// runs the REPL until the user exits or ctx is done.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to codecredits (type 'help' for commands)")

	a.restore(ctx, true)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go a.store.RefreshCreditsEvery(ctx, a.refreshInterval)

	runREPL(ctx, a, a.getStatus, a.reader)
}

// restore revalidates the saved session. verbose reports the outcome.
func (a *App) restore(ctx context.Context, verbose bool) {
	err := a.store.RestoreSession(ctx)
	switch {
	case err == nil:
		if verbose {
			notify.Success(a.notifier, "Welcome back, %s", a.store.CurrentUser().Username)
		}
	case errors.Is(err, common.ErrNoSession):
		if verbose {
			notify.Info(a.notifier, "Not logged in. Run 'login' or 'register'.")
		}
	case store.IsSessionRejected(err):
		notify.Warning(a.notifier, "Saved session is no longer valid. Please log in again.")
	default:
		a.log.Warn(ctx, "session restore failed", "error", err)
		notify.Warning(a.notifier, "Could not restore the saved session")
	}
}

// runOnce executes a single command non-interactively.
func (a *App) runOnce(ctx context.Context, name string, args []string) error {
	if name != "login" && name != "register" {
		a.restore(ctx, false)
	}
	return a.Exec(ctx, name, args)
}

// NewRootCommand builds the codecredits command tree. Without a subcommand
// the interactive shell starts.
func NewRootCommand() *cobra.Command {
	var app *App

	root := &cobra.Command{
		Use:           "codecredits",
		Short:         "Generate code with credits from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			log := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat)
			app, err = NewApp(cmd.Context(), cfg, log)
			return err
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if app == nil {
				return nil
			}
			return app.Close()
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			app.Root(cmd.Context())
			return nil
		},
	}
	config.RegisterFlags(root.PersistentFlags())

	for _, c := range commands {
		if c.name == "admin" {
			continue
		}
		root.AddCommand(&cobra.Command{
			Use:   c.usage,
			Short: c.short,
			RunE: func(cmd *cobra.Command, args []string) error {
				return app.runOnce(cmd.Context(), c.name, args)
			},
		})
	}
	root.AddCommand(newAdminCommand(func() *App { return app }))

	return root
}

func newAdminCommand(app func() *App) *cobra.Command {
	admin := &cobra.Command{
		Use:   "admin",
		Short: "Administration commands",
	}
	sub := []struct {
		use, short string
		args       cobra.PositionalArgs
	}{
		{"users [page]", "list users", cobra.MaximumNArgs(1)},
		{"grant <user-id> <amount>", "add credits to a user", cobra.ExactArgs(2)},
		{"stats", "show payment statistics", cobra.NoArgs},
	}
	for _, s := range sub {
		name := strings.Fields(s.use)[0]
		admin.AddCommand(&cobra.Command{
			Use:   s.use,
			Short: s.short,
			Args:  s.args,
			RunE: func(cmd *cobra.Command, args []string) error {
				return app().runOnce(cmd.Context(), "admin", append([]string{name}, args...))
			},
		})
	}
	return admin
}
