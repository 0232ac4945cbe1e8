package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akam1o/tna-routegen/pkg/audit"
	"github.com/akam1o/tna-routegen/pkg/datastore"
	"github.com/akam1o/tna-routegen/pkg/gnb"
)

const noLinkConfig = "No gNB link configuration stored, the next create session will ask for it."

func newGnbCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gnb",
		Short: "Inspect or reset the stored gNB link configuration",
		Args:  usageArgs(cobra.NoArgs),
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the stored gNB link configuration",
			Args:  usageArgs(cobra.NoArgs),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.gnbShow(cmd)
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Delete the stored gNB link configuration",
			Args:  usageArgs(cobra.NoArgs),
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.gnbReset(cmd)
			},
		},
	)
	return cmd
}

func (a *app) gnbShow(cmd *cobra.Command) error {
	ds, err := a.openStore()
	if err != nil {
		return err
	}
	defer ds.Close()

	link, err := gnb.NewResolver(ds, nil, a.log).Load(cmd.Context())
	if err != nil {
		if datastore.IsNotFound(err) {
			fmt.Fprintln(cmd.OutOrStdout(), noLinkConfig)
			return nil
		}
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), link.Summary())
	return nil
}

func (a *app) gnbReset(cmd *cobra.Command) error {
	ds, err := a.openStore()
	if err != nil {
		return err
	}
	defer ds.Close()

	r := gnb.NewResolver(ds, nil, a.log, gnb.WithRecorder(audit.NewLogger(ds, a.log)))
	if err := r.Reset(cmd.Context()); err != nil {
		if datastore.IsNotFound(err) {
			fmt.Fprintln(cmd.OutOrStdout(), noLinkConfig)
			return nil
		}
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "gNB link configuration deleted.")
	return nil
}
