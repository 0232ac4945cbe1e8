package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akam1o/tna-routegen/pkg/errors"
	"github.com/akam1o/tna-routegen/pkg/netid"
	"github.com/akam1o/tna-routegen/pkg/template"
)

// sampleArgs fills every placeholder of a kind with a plausible value
func sampleArgs(kind template.Kind) ([]any, error) {
	port, err := netid.ValidatePort("10")
	if err != nil {
		return nil, err
	}
	ip, err := netid.ValidateIPWithMask("192.168.1.0/24")
	if err != nil {
		return nil, err
	}
	switchMAC, err := netid.ValidateMAC("00:11:22:33:44:55")
	if err != nil {
		return nil, err
	}
	pdnMAC, err := netid.ValidateMAC("66:77:88:99:aa:bb")
	if err != nil {
		return nil, err
	}

	switch kind {
	case template.KindFiltering:
		return []any{port, switchMAC}, nil
	case template.KindForward:
		return []any{ip, 2}, nil
	case template.KindNext:
		return []any{port, switchMAC, pdnMAC, 2}, nil
	default:
		return nil, errors.FormatError("template kind", string(kind), "one of filtering, forward or next")
	}
}

func newTemplatesCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Inspect the descriptor templates",
		Args:  usageArgs(cobra.NoArgs),
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show [kind...]",
		Short: "Render templates with sample values",
		Long: `Render each template with sample values. Templates found in the templates
directory override the built-in ones.`,
		Example:   "  tna-routegen templates show next",
		ValidArgs: []string{string(template.KindFiltering), string(template.KindForward), string(template.KindNext)},
		Args:      usageArgs(cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.templatesShow(cmd, args)
		},
	})
	return cmd
}

func (a *app) templatesShow(cmd *cobra.Command, args []string) error {
	templates, err := a.loadTemplates()
	if err != nil {
		return err
	}

	kinds := template.Kinds
	if len(args) > 0 {
		kinds = nil
		for _, arg := range args {
			kinds = append(kinds, template.Kind(arg))
		}
	}

	for _, kind := range kinds {
		sample, err := sampleArgs(kind)
		if err != nil {
			return err
		}
		body, err := templates[kind].Render(sample...)
		if err != nil {
			return err
		}
		title := fmt.Sprintf("%s (%d arguments)", kind, kind.ArgCount())
		if err := FormatSection(cmd.OutOrStdout(), title, body); err != nil {
			return err
		}
	}
	return nil
}
