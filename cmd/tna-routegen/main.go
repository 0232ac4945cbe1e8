package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/akam1o/tna-routegen/pkg/config"
	"github.com/akam1o/tna-routegen/pkg/datastore"
	"github.com/akam1o/tna-routegen/pkg/errors"
	"github.com/akam1o/tna-routegen/pkg/logger"
	"github.com/akam1o/tna-routegen/pkg/routegen"
	"github.com/akam1o/tna-routegen/pkg/template"
)

var (
	// Version information (set by ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Exit codes
const (
	ExitSuccess        = 0
	ExitOperationError = 1
	ExitUsageError     = 2
)

type flags struct {
	configPath string
	logLevel   string
	root       string
	backend    string
}

// app carries what every subcommand needs once the root flags are parsed
type app struct {
	flags flags
	cfg   *config.Config
	log   *logger.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCommand(stdin, stdout, stderr)
	cmd.SetArgs(args)

	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		if isUsageError(err) {
			return ExitUsageError
		}
		return ExitOperationError
	}
	return ExitSuccess
}

func newRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	a := &app{}
	create := newCreateCommand(a)

	cmd := &cobra.Command{
		Use:   "tna-routegen",
		Short: "Generate fabric-tna route descriptors for a gNB attached switch",
		Long: `tna-routegen asks for the routes to install on a fabric-tna switch and
writes the filtering, forward and next descriptors that program them.

Running it without a command starts an interactive create session.`,
		Args: usageArgs(cobra.NoArgs),
		// Errors are printed by run, with the exit code they map to.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.setup(cmd.ErrOrStderr()); err != nil {
				return usageError{err}
			}
			return nil
		},
		RunE: create.RunE,
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err}
	})
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.flags.configPath, "config", "", "Configuration file (optional)")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "Log level, overrides the configuration file")
	pf.StringVar(&a.flags.root, "root", "", "Directory holding link configuration, artifacts and templates")
	pf.StringVar(&a.flags.backend, "backend", "", "Datastore backend (file, sqlite or etcd)")

	cmd.AddCommand(
		create,
		newGnbCommand(a),
		newRoutesCommand(a),
		newAuditCommand(a),
		newTemplatesCommand(a),
		newVersionCommand(),
	)
	return cmd
}

// setup loads the configuration, applies the command line overrides and
// creates the logger.
func (a *app) setup(stderr io.Writer) error {
	cfg, err := config.Load(a.flags.configPath)
	if err != nil {
		return err
	}

	if a.flags.root != "" {
		defaults := config.Default()
		cfg.Store.Root = a.flags.root
		if cfg.Store.SQLitePath == defaults.Store.SQLitePath {
			cfg.Store.SQLitePath = filepath.Join(a.flags.root, "routegen.db")
		}
		if cfg.Templates.Dir == defaults.Templates.Dir {
			cfg.Templates.Dir = filepath.Join(a.flags.root, "model")
		}
	}
	if a.flags.backend != "" {
		cfg.Store.Backend = a.flags.backend
	}
	if a.flags.logLevel != "" {
		cfg.Logger.Level = a.flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.ResolveSecrets(); err != nil {
		return err
	}

	level, err := logger.ParseLevel(cfg.Logger.Level)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger.New("tna-routegen", &logger.Config{
		Level:        level,
		ReportCaller: cfg.Logger.ReportCaller,
		Output:       stderr,
	})
	cfg.Print(a.log)
	return nil
}

func (a *app) openStore() (datastore.Datastore, error) {
	ds, err := datastore.NewDatastore(a.cfg.DatastoreConfig())
	if err != nil {
		return nil, err
	}
	a.log.WithField("backend", a.cfg.Store.Backend).Debug("Opened datastore")
	return ds, nil
}

func (a *app) loadTemplates() (template.Set, error) {
	return template.LoadSet(template.NewStore(a.cfg.Templates.Dir))
}

func (a *app) newGenerator() (*routegen.Generator, error) {
	templates, err := a.loadTemplates()
	if err != nil {
		return nil, err
	}
	return routegen.NewGenerator(templates)
}

// usageError marks failures caused by the command line or the configuration
// file, which exit with ExitUsageError.
type usageError struct {
	err error
}

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

func isUsageError(err error) bool {
	var u usageError
	return errors.As(err, &u)
}
