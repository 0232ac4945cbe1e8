package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/akam1o/tna-routegen/pkg/audit"
	"github.com/akam1o/tna-routegen/pkg/cli"
	"github.com/akam1o/tna-routegen/pkg/metrics"
	"github.com/akam1o/tna-routegen/pkg/prompt"
	"github.com/akam1o/tna-routegen/pkg/routeid"
)

func newCreateCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Interactively create routes until a blank answer is given",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.create(cmd)
		},
	}
}

func (a *app) create(cmd *cobra.Command) error {
	mode, err := routeid.ParseMode(a.cfg.Allocator.Mode)
	if err != nil {
		return err
	}
	gen, err := a.newGenerator()
	if err != nil {
		return err
	}

	ds, err := a.openStore()
	if err != nil {
		return err
	}
	defer ds.Close()

	p, err := a.newPrompter(cmd)
	if err != nil {
		return err
	}
	defer p.Close()

	m := metrics.New()
	defer func() {
		if flushErr := m.Flush(a.cfg.Metrics.Textfile); flushErr != nil {
			a.log.WithField("error", flushErr).Warn("Failed to write metrics textfile")
		}
	}()

	session := cli.NewSession(&cli.Config{
		Datastore:     ds,
		Prompter:      p,
		Generator:     gen,
		AllocatorMode: mode,
		Backend:       a.cfg.Store.Backend,
		Audit:         audit.NewLogger(ds, a.log),
		Metrics:       m,
		Logger:        a.log,
	})
	return session.Run(cmd.Context())
}

// newPrompter uses readline on the process terminal and plain lines for any
// other input, which is what tests and piped answers use.
func (a *app) newPrompter(cmd *cobra.Command) (prompt.Prompter, error) {
	if cmd.InOrStdin() == os.Stdin {
		return prompt.New(a.cfg.Prompt.HistoryFile)
	}
	return prompt.NewLinePrompter(cmd.InOrStdin(), cmd.OutOrStdout()), nil
}
