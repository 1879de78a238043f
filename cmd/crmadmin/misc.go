package main

import (
	"fmt"
	"strings"

	"crmadmin/internal/badge"
	"crmadmin/internal/format"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the effective configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the merged configuration with the api key masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg.Redacted()
			if cfg.Archive.Path == "" {
				cfg.Archive.Path = a.archivePath()
			}
			out := cmd.OutOrStdout()
			if f := a.format(); f == "json" || f == "jsonl" {
				return format.WriteJSON(out, cfg)
			}
			fmt.Fprintf(out, "# %s\n", a.configPath)
			enc := yaml.NewEncoder(out)
			enc.SetIndent(2)
			if err := enc.Encode(cfg); err != nil {
				return fmt.Errorf("encode config: %w", err)
			}
			return enc.Close()
		},
	})
	return cmd
}

func newBadgesCmd(a *app) *cobra.Command {
	var noHeader bool

	cmd := &cobra.Command{
		Use:   "badges [kind...]",
		Short: "Show the badge legend for status values",
		Long:  "Show the badge legend. Kinds: booking, report, model, client-app, log.",
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := badge.Kinds
			if len(args) > 0 {
				kinds = nil
				for _, arg := range args {
					k, err := parseKind(arg)
					if err != nil {
						return err
					}
					kinds = append(kinds, k)
				}
			}
			out := cmd.OutOrStdout()
			color := a.useColor(out)
			return format.WriteList(out, format.BadgeRows(kinds...), format.Badges(color), format.Options{
				Format:        a.format(),
				IncludeHeader: !noHeader,
				Color:         color,
			})
		},
	}

	cmd.Flags().BoolVar(&noHeader, "no-header", false, "omit header row")
	return cmd
}

func parseKind(s string) (badge.Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range badge.Kinds {
		if string(k) == s || string(k)+"s" == s {
			return k, nil
		}
	}
	names := make([]string, len(badge.Kinds))
	for i, k := range badge.Kinds {
		names[i] = string(k)
	}
	return "", fmt.Errorf("unknown badge kind %q (want one of: %s)", s, strings.Join(names, ", "))
}
