package main

import (
	"time"

	"github.com/spf13/cobra"
)

func newAuditCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Inspect the audit trail",
		Args:  usageArgs(cobra.NoArgs),
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List audit events, newest first",
		Args:  usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.auditList(cmd, limit)
		},
	}
	list.Flags().IntVar(&limit, "limit", 20, "Maximum number of events, 0 for all")

	cmd.AddCommand(list)
	return cmd
}

func (a *app) auditList(cmd *cobra.Command, limit int) error {
	ds, err := a.openStore()
	if err != nil {
		return err
	}
	defer ds.Close()

	events, err := ds.ListAuditEvents(cmd.Context(), limit)
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(events))
	for _, e := range events {
		rows = append(rows, []string{
			e.Timestamp.Local().Format(time.DateTime),
			e.Action,
			e.Result,
			orDash(e.ErrorCode),
			shortID(e.SessionID),
			orDash(e.Details),
		})
	}
	return FormatTable(cmd.OutOrStdout(), []string{"TIME", "ACTION", "RESULT", "ERROR", "SESSION", "DETAILS"}, rows)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return orDash(id)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
