package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"crmadmin/internal/badge"
	"crmadmin/internal/format"
	"crmadmin/internal/model"
	"crmadmin/internal/query"
	"crmadmin/internal/store"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"
)

func newClientAppsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "client-apps",
		Aliases: []string{"apps"},
		Short:   "Manage tenant client applications",
	}
	cmd.AddCommand(
		newClientAppsListCmd(a),
		newClientAppsGetCmd(a),
		newClientAppsCreateCmd(a),
		newClientAppsUpdateCmd(a),
		newClientAppsDeleteCmd(a),
		newClientAppsToggleCmd(a),
		newClientAppsKeyCmd(a),
	)
	return cmd
}

func newClientAppsListCmd(a *app) *cobra.Command {
	var lf listFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List client applications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkEnum(badge.KindClientApp, lf.status); err != nil {
				return err
			}
			gw, err := a.client()
			if err != nil {
				return err
			}
			return runList(cmd, a, &lf, gw.ClientApps.List, format.ClientApps, nil)
		},
	}

	lf.register(cmd.Flags(), true, true)
	return cmd
}

func newClientAppsGetCmd(a *app) *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Show a client application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := a.client()
			if err != nil {
				return err
			}
			ca, err := gw.ClientApps.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get client app: %w", err)
			}
			if !reveal {
				ca.APIKey = format.MaskKey(ca.APIKey)
			}
			return writeItem(cmd, a, ca, "CLIENT APP", func(color bool) []format.KV {
				return format.ClientAppDetail(ca, color, true)
			})
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "show the full api key")
	return cmd
}

// appInputFlags binds the create/update fields of a client application.
type appInputFlags struct {
	name        string
	typ         string
	domains     string
	status      string
	description string
}

func (f *appInputFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.name, "name", "", "application name")
	flags.StringVar(&f.typ, "type", "", "application type")
	flags.StringVar(&f.domains, "domains", "", "comma-separated allowed domains")
	flags.StringVar(&f.status, "status", "", "application status")
	flags.StringVar(&f.description, "description", "", "free-text description")
}

// input builds the request body from the flags the user actually set.
func (f *appInputFlags) input(cmd *cobra.Command) (model.ClientAppInput, error) {
	var in model.ClientAppInput
	changed := cmd.Flags().Changed
	if changed("name") {
		in.Name = strings.TrimSpace(f.name)
	}
	if changed("type") {
		in.Type = strings.TrimSpace(f.typ)
	}
	if changed("domains") {
		in.Domain = splitList(f.domains)
	}
	if changed("status") {
		if err := checkEnum(badge.KindClientApp, f.status); err != nil || query.IsSentinel(f.status) {
			if err == nil {
				err = errors.New("--status must name a status")
			}
			return in, err
		}
		in.Status = model.ClientAppStatus(strings.ToLower(f.status))
	}
	if changed("description") {
		in.Description = collapseWhitespace(f.description)
	}
	return in, nil
}

func (f *appInputFlags) anyChanged(cmd *cobra.Command) bool {
	for _, name := range []string{"name", "type", "domains", "status", "description"} {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func newClientAppsCreateCmd(a *app) *cobra.Command {
	var f appInputFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a client application",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := f.input(cmd)
			if err != nil {
				return err
			}
			gw, err := a.client()
			if err != nil {
				return err
			}
			created, err := gw.ClientApps.Create(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("create client app: %w", err)
			}
			return writeItem(cmd, a, created, "CLIENT APP", func(color bool) []format.KV {
				return format.ClientAppDetail(created, color, true)
			})
		},
	}

	f.register(cmd)
	return cmd
}

func newClientAppsUpdateCmd(a *app) *cobra.Command {
	var f appInputFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update fields of a client application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := f.input(cmd)
			if err != nil {
				return err
			}
			if !f.anyChanged(cmd) {
				return errors.New("nothing to update: set at least one field flag")
			}
			gw, err := a.client()
			if err != nil {
				return err
			}
			updated, err := gw.ClientApps.Update(cmd.Context(), args[0], in)
			if err != nil {
				return fmt.Errorf("update client app: %w", err)
			}
			return writeItem(cmd, a, updated, "CLIENT APP", func(color bool) []format.KV {
				return format.ClientAppDetail(updated, color, false)
			})
		},
	}

	f.register(cmd)
	return cmd
}

func newClientAppsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a client application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := a.client()
			if err != nil {
				return err
			}
			return removeAndReport(cmd, a, "client app", args[0], gw.ClientApps.List, gw.ClientApps.Delete)
		},
	}
}

func newClientAppsToggleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Switch a client application between active and inactive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := a.client()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			current, err := gw.ClientApps.Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("get client app: %w", err)
			}
			next := model.ClientAppActive
			if strings.EqualFold(string(current.Status), string(model.ClientAppActive)) {
				next = model.ClientAppInactive
			}

			var updated model.ClientApp
			list := store.New(gw.ClientApps.List, query.Filter{Page: 1, PageSize: a.pageSize(0)})
			err = list.Mutate(ctx, func(ctx context.Context) error {
				var err error
				updated, err = gw.ClientApps.Update(ctx, current.ID, model.ClientAppInput{Status: next})
				return err
			})
			if err := a.applied(err); err != nil {
				return fmt.Errorf("toggle client app: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s -> %s\n", updated.Name,
				badge.Render(badge.ForClientApp(current.Status), a.useColor(out)),
				badge.Render(badge.ForClientApp(updated.Status), a.useColor(out)))
			return nil
		},
	}
}

func newClientAppsKeyCmd(a *app) *cobra.Command {
	var copyKey bool

	cmd := &cobra.Command{
		Use:   "key <id>",
		Short: "Print or copy the api key of a client application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := a.client()
			if err != nil {
				return err
			}
			ca, err := gw.ClientApps.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get client app: %w", err)
			}
			if ca.APIKey == "" {
				return fmt.Errorf("client app %s has no api key", ca.ID)
			}
			if copyKey {
				if err := clipboard.WriteAll(ca.APIKey); err != nil {
					return fmt.Errorf("copy api key: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "copied api key %s to clipboard\n", format.MaskKey(ca.APIKey))
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), ca.APIKey)
			return nil
		},
	}

	cmd.Flags().BoolVar(&copyKey, "copy", false, "copy the key to the clipboard instead of printing it")
	return cmd
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
