package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"crmadmin/internal/checkin"
	"crmadmin/internal/format"
	"crmadmin/internal/query"
	"crmadmin/internal/store"

	"github.com/spf13/cobra"
)

func newCheckinFormsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "checkin-forms",
		Aliases: []string{"forms"},
		Short:   "Build and manage property check-in forms",
	}
	cmd.AddCommand(
		newFormsListCmd(a),
		newFormsGetCmd(a),
		newFormsCreateCmd(a),
		newFormsUpdateCmd(a),
		newFormsDeleteCmd(a),
		newFormsActivateCmd(a),
		newFormsValidateCmd(),
		newFormsCheckCmd(),
	)
	return cmd
}

func newFormsListCmd(a *app) *cobra.Command {
	var (
		lf       listFlags
		property string
		active   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List check-in forms",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			isActive, err := triState("active", active)
			if err != nil {
				return err
			}
			gw, err := a.client()
			if err != nil {
				return err
			}
			return runList(cmd, a, &lf, gw.CheckinForms.List, func(bool) format.Layout[checkin.Form] {
				return format.CheckinForms()
			}, func(f *query.Filter) {
				f.Set("propertyId", property)
				f.Set("isActive", isActive)
			})
		},
	}

	lf.register(cmd.Flags(), false, false)
	cmd.Flags().StringVar(&property, "property", "", "only forms attached to this property id")
	cmd.Flags().StringVar(&active, "active", query.All, "active filter: true, false or all")
	return cmd
}

func newFormsGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a check-in form with its sections and fields",
		Long:  "Show a check-in form. --format yaml prints a definition that create and update accept.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := a.client()
			if err != nil {
				return err
			}
			form, err := gw.CheckinForms.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get check-in form: %w", err)
			}
			out := cmd.OutOrStdout()
			switch a.format() {
			case "json", "jsonl":
				return format.WriteJSON(out, form)
			case "yaml":
				data, err := checkin.Marshal(form)
				if err != nil {
					return fmt.Errorf("encode form: %w", err)
				}
				_, err = out.Write(data)
				return err
			default:
				format.WriteForm(out, form)
				return nil
			}
		},
	}
}

// loadForm reads a definition file and rejects it before any request is
// made when it is structurally invalid.
func loadForm(path string) (checkin.Form, error) {
	if strings.TrimSpace(path) == "" {
		return checkin.Form{}, errors.New("--file is required")
	}
	form, err := checkin.Load(path)
	if err != nil {
		return checkin.Form{}, err
	}
	if err := checkin.Check(form); err != nil {
		return checkin.Form{}, err
	}
	return form, nil
}

func newFormsCreateCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a check-in form from a YAML or JSON definition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			form, err := loadForm(file)
			if err != nil {
				return err
			}
			gw, err := a.client()
			if err != nil {
				return err
			}
			created, err := gw.CheckinForms.Create(cmd.Context(), form)
			if err != nil {
				return fmt.Errorf("create check-in form: %w", err)
			}
			return writeForm(cmd, a, created)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "form definition (.yaml, .yml or .json)")
	return cmd
}

func newFormsUpdateCmd(a *app) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace a check-in form with a YAML or JSON definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := loadForm(file)
			if err != nil {
				return err
			}
			gw, err := a.client()
			if err != nil {
				return err
			}
			updated, err := gw.CheckinForms.Update(cmd.Context(), args[0], form)
			if err != nil {
				return fmt.Errorf("update check-in form: %w", err)
			}
			return writeForm(cmd, a, updated)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "form definition (.yaml, .yml or .json)")
	return cmd
}

func newFormsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a check-in form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := a.client()
			if err != nil {
				return err
			}
			return removeAndReport(cmd, a, "check-in form", args[0], gw.CheckinForms.List, gw.CheckinForms.Delete)
		},
	}
}

func newFormsActivateCmd(a *app) *cobra.Command {
	var off bool

	cmd := &cobra.Command{
		Use:   "activate <id>",
		Short: "Activate a check-in form, or deactivate it with --off",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := a.client()
			if err != nil {
				return err
			}
			var updated checkin.Form
			list := store.New(gw.CheckinForms.List, query.Filter{Page: 1, PageSize: a.pageSize(0)})
			err = list.Mutate(cmd.Context(), func(ctx context.Context) error {
				var err error
				updated, err = gw.CheckinForms.SetActive(ctx, args[0], !off)
				return err
			})
			if err := a.applied(err); err != nil {
				return fmt.Errorf("set check-in form active: %w", err)
			}
			state := "inactive"
			if updated.IsActive {
				state = "active"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", formLabel(updated), state)
			return nil
		},
	}

	cmd.Flags().BoolVar(&off, "off", false, "deactivate instead")
	return cmd
}

func newFormsValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>",
		Short: "Check a form definition locally without contacting the gateway",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := checkin.Load(args[0])
			if err != nil {
				return err
			}
			errs := checkin.Validate(&form)
			out := cmd.OutOrStdout()
			for _, e := range errs {
				fmt.Fprintf(out, "  - %v\n", e)
			}
			if len(errs) > 0 {
				return fmt.Errorf("%s: %d problem(s)", args[0], len(errs))
			}
			fmt.Fprintf(out, "%s: ok (%d sections, %d fields)\n", args[0], len(form.Sections), form.FieldCount())
			return nil
		},
	}
}

func newFormsCheckCmd() *cobra.Command {
	var values []string

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Validate guest answers against a form definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form, err := checkin.Load(args[0])
			if err != nil {
				return err
			}
			if err := checkin.Check(form); err != nil {
				return err
			}
			answers := make(map[string]string, len(values))
			for _, v := range values {
				key, value, ok := strings.Cut(v, "=")
				if !ok || strings.TrimSpace(key) == "" {
					return fmt.Errorf("invalid --value %q: expected field=value", v)
				}
				answers[strings.TrimSpace(key)] = value
			}

			fieldErrs := checkin.ValidateSubmission(form, answers)
			out := cmd.OutOrStdout()
			for _, id := range fieldErrs.Keys() {
				fmt.Fprintf(out, "%s: %s\n", id, fieldErrs[id])
			}
			if len(fieldErrs) > 0 {
				return fmt.Errorf("%d field(s) failed validation", len(fieldErrs))
			}
			fmt.Fprintln(out, "all answers valid")
			return nil
		},
	}

	cmd.Flags().StringArrayVar(&values, "value", nil, "answer as field=value (repeatable)")
	return cmd
}

func writeForm(cmd *cobra.Command, a *app, form checkin.Form) error {
	out := cmd.OutOrStdout()
	switch a.format() {
	case "json", "jsonl":
		return format.WriteJSON(out, form)
	default:
		format.WriteForm(out, form)
		return nil
	}
}

func formLabel(f checkin.Form) string {
	if f.Name == "" {
		return f.ID
	}
	return fmt.Sprintf("%s (%s)", f.Name, f.ID)
}
