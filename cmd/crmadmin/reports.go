package main

import (
	"context"
	"fmt"
	"strings"

	"crmadmin/internal/badge"
	"crmadmin/internal/format"
	"crmadmin/internal/gateway"
	"crmadmin/internal/model"
	"crmadmin/internal/query"
	"crmadmin/internal/store"

	"github.com/spf13/cobra"
)

func newReportsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reports",
		Aliases: []string{"report"},
		Short:   "Review and moderate user reports",
	}
	cmd.AddCommand(
		newReportsListCmd(a),
		newReportsGetCmd(a),
		newReportsStatusCmd(a),
		newReportsVisibilityCmd(a),
		newReportsFeatureCmd(a),
		newReportsTagsCmd(a),
		newReportsDeleteCmd(a),
	)
	return cmd
}

func newReportsListCmd(a *app) *cobra.Command {
	var (
		lf       listFlags
		category string
		public   string
		featured string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkEnum(badge.KindReport, lf.status); err != nil {
				return err
			}
			isPublic, err := triState("public", public)
			if err != nil {
				return err
			}
			isFeatured, err := triState("featured", featured)
			if err != nil {
				return err
			}
			gw, err := a.client()
			if err != nil {
				return err
			}
			return runList(cmd, a, &lf, gw.Reports.List, format.Reports, func(f *query.Filter) {
				f.Set("category", category)
				f.Set("isPublic", isPublic)
				f.Set("isFeatured", isFeatured)
			})
		},
	}

	lf.register(cmd.Flags(), true, false)
	cmd.Flags().StringVar(&category, "category", query.All, "report category, or 'all'")
	cmd.Flags().StringVar(&public, "public", query.All, "visibility filter: true, false or all")
	cmd.Flags().StringVar(&featured, "featured", query.All, "featured filter: true, false or all")
	return cmd
}

func newReportsGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := a.client()
			if err != nil {
				return err
			}
			r, err := gw.Reports.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get report: %w", err)
			}
			return writeItem(cmd, a, r, "REPORT", func(color bool) []format.KV {
				return format.ReportDetail(r, color)
			})
		},
	}
}

// mutateReport applies change through a report list store and prints the
// updated report.
func mutateReport(cmd *cobra.Command, a *app, what string, change func(ctx context.Context, gw *gateway.Client) (model.Report, error)) error {
	gw, err := a.client()
	if err != nil {
		return err
	}
	var updated model.Report
	list := store.New(gw.Reports.List, query.Filter{Page: 1, PageSize: a.pageSize(0)})
	err = list.Mutate(cmd.Context(), func(ctx context.Context) error {
		var err error
		updated, err = change(ctx, gw)
		return err
	})
	if err := a.applied(err); err != nil {
		return fmt.Errorf("%s: %w", what, err)
	}
	a.logger.Debug("report updated", "id", updated.ID, "change", what)
	return writeItem(cmd, a, updated, "REPORT", func(color bool) []format.KV {
		return format.ReportDetail(updated, color)
	})
}

func newReportsStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Set the review status of a report",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status := strings.ToLower(strings.TrimSpace(args[1]))
			if query.IsSentinel(status) {
				return fmt.Errorf("status must be one of: %s", strings.Join(badge.Values(badge.KindReport), ", "))
			}
			if err := checkEnum(badge.KindReport, status); err != nil {
				return err
			}
			return mutateReport(cmd, a, "set report status", func(ctx context.Context, gw *gateway.Client) (model.Report, error) {
				return gw.Reports.SetStatus(ctx, args[0], model.ReportStatus(status))
			})
		},
	}
}

func newReportsVisibilityCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:       "visibility <id> public|private",
		Short:     "Publish or hide a report",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"public", "private"},
		RunE: func(cmd *cobra.Command, args []string) error {
			var public bool
			switch strings.ToLower(strings.TrimSpace(args[1])) {
			case "public":
				public = true
			case "private":
				public = false
			default:
				return fmt.Errorf("invalid visibility %q: expected public or private", args[1])
			}
			return mutateReport(cmd, a, "set report visibility", func(ctx context.Context, gw *gateway.Client) (model.Report, error) {
				return gw.Reports.SetVisibility(ctx, args[0], public)
			})
		},
	}
}

func newReportsFeatureCmd(a *app) *cobra.Command {
	var off bool

	cmd := &cobra.Command{
		Use:   "feature <id>",
		Short: "Feature a report, or unfeature it with --off",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return mutateReport(cmd, a, "set report featured", func(ctx context.Context, gw *gateway.Client) (model.Report, error) {
				return gw.Reports.SetFeatured(ctx, args[0], !off)
			})
		},
	}

	cmd.Flags().BoolVar(&off, "off", false, "remove the featured flag")
	return cmd
}

func newReportsTagsCmd(a *app) *cobra.Command {
	var clearTags bool

	cmd := &cobra.Command{
		Use:   "tags <id> [tag,tag...]",
		Short: "Replace the tags of a report",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var tags []string
			if len(args) == 2 {
				tags = query.ParseCSV(args[1])
			}
			if len(tags) == 0 && !clearTags {
				return fmt.Errorf("no tags given: pass a comma-separated list or --clear")
			}
			if clearTags {
				tags = []string{}
			}
			return mutateReport(cmd, a, "set report tags", func(ctx context.Context, gw *gateway.Client) (model.Report, error) {
				return gw.Reports.SetTags(ctx, args[0], tags)
			})
		},
	}

	cmd.Flags().BoolVar(&clearTags, "clear", false, "remove every tag")
	return cmd
}

func newReportsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := a.client()
			if err != nil {
				return err
			}
			return removeAndReport(cmd, a, "report", args[0], gw.Reports.List, gw.Reports.Delete)
		},
	}
}
