package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/akam1o/tna-routegen/pkg/routegen"
	"github.com/akam1o/tna-routegen/pkg/routeid"
)

func newRoutesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Inspect generated route descriptors",
		Args:  usageArgs(cobra.NoArgs),
	}

	var pattern string
	list := &cobra.Command{
		Use:     "list",
		Short:   "List the persisted descriptor documents",
		Example: "  tna-routegen routes list --pattern 'next-*'",
		Args:    usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.routesList(cmd, pattern)
		},
	}
	list.Flags().StringVar(&pattern, "pattern", "*", "Only list artifacts matching this glob")

	cmd.AddCommand(list)
	return cmd
}

func (a *app) routesList(cmd *cobra.Command, pattern string) error {
	ds, err := a.openStore()
	if err != nil {
		return err
	}
	defer ds.Close()

	ctx := cmd.Context()
	names, err := ds.ListArtifacts(ctx, pattern)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		row := []string{name, "-", "-", "-", "-"}
		if info, ok := routegen.ParseArtifactName(name); ok {
			row[1], row[2], row[3] = info.Route, string(info.Direction), string(info.Kind)
		}
		artifact, err := ds.GetArtifact(ctx, name)
		if err != nil {
			return err
		}
		if !artifact.UpdatedAt.IsZero() {
			row[4] = artifact.UpdatedAt.Local().Format(time.DateTime)
		}
		rows = append(rows, row)
	}

	out := cmd.OutOrStdout()
	if err := FormatTable(out, []string{"NAME", "ROUTE", "DIRECTION", "KIND", "UPDATED"}, rows); err != nil {
		return err
	}

	all, err := ds.ListArtifacts(ctx, "*")
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d artifacts, next standard route uses ids %d and %d\n",
		len(names), routeid.NextID(all), routeid.NextID(all)+1)
	return nil
}
