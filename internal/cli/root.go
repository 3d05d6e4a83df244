package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"fintrack/internal/store"
)

type settings struct {
	version    string
	configPath string
	store      store.Store
	in         io.Reader
	out        io.Writer
	errOut     io.Writer

	app *App
}

type Option func(*settings)

// WithStore runs commands against st instead of the configured backend.
func WithStore(st store.Store) Option {
	return func(s *settings) { s.store = st }
}

func WithIO(in io.Reader, out, errOut io.Writer) Option {
	return func(s *settings) {
		s.in, s.out, s.errOut = in, out, errOut
	}
}

func WithVersion(v string) Option {
	return func(s *settings) { s.version = v }
}

// Run executes one command line and releases everything it opened.
func Run(ctx context.Context, args []string, opts ...Option) error {
	s := &settings{
		version: "dev",
		in:      os.Stdin,
		out:     os.Stdout,
		errOut:  os.Stderr,
	}
	for _, opt := range opts {
		opt(s)
	}

	root := newRootCommand(s)
	root.SetArgs(args)
	root.SetIn(s.in)
	root.SetOut(s.out)
	root.SetErr(s.errOut)

	err := root.ExecuteContext(ctx)
	if s.app != nil {
		if cerr := s.app.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func newRootCommand(s *settings) *cobra.Command {
	root := &cobra.Command{
		Use:           "fintrack",
		Short:         "Personal income, expense and budget tracker",
		Version:       s.version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(cmd.Context(), s, cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			s.app = app
			return nil
		},
	}
	root.SetVersionTemplate(`{{printf "fintrack version: %s\n" .Version}}`)
	root.PersistentFlags().StringVarP(&s.configPath, "config", "C", "", "Path to a YAML or TOML configuration file")

	budget := &cobra.Command{
		Use:   "budget",
		Short: "Manage budgets",
	}
	budget.AddCommand(budgetSetCommand(s))

	root.AddCommand(
		registerCommand(s),
		loginCommand(s),
		logoutCommand(s),
		whoamiCommand(s),
		addCommand(s),
		deleteCommand(s),
		listCommand(s),
		budgetsCommand(s),
		budget,
		summaryCommand(s),
		monthlyCommand(s),
		categoriesCommand(s),
		watchCommand(s),
	)
	return root
}
