package main

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"crmadmin/internal/badge"
	"crmadmin/internal/format"
	"crmadmin/internal/gateway"
	"crmadmin/internal/model"
	"crmadmin/internal/query"
	"crmadmin/internal/store"

	"github.com/spf13/cobra"
)

func newMLCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ml",
		Short: "Inspect and test intelligence hub models",
	}
	cmd.AddCommand(
		newMLModelsCmd(a),
		newMLModelCmd(a),
		newMLStatusCmd(a),
		newMLTestCmd(a),
	)
	return cmd
}

func newMLModelsCmd(a *app) *cobra.Command {
	var (
		lf     listFlags
		entity string
	)

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List registered models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkEnum(badge.KindModel, lf.status); err != nil {
				return err
			}
			if !query.IsSentinel(entity) {
				if _, err := gateway.ProfileFor(model.EntityType(entity)); err != nil {
					return err
				}
			}
			gw, err := a.client()
			if err != nil {
				return err
			}
			return runList(cmd, a, &lf, gw.ML.Models, format.Models, func(f *query.Filter) {
				f.Set("entityType", strings.ToLower(entity))
			})
		},
	}

	lf.register(cmd.Flags(), true, false)
	cmd.Flags().StringVar(&entity, "entity", query.All, "entity type (project, task, business, employee), or 'all'")
	return cmd
}

func newMLModelCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "model <id>",
		Short: "Show a registered model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := a.client()
			if err != nil {
				return err
			}
			m, err := gw.ML.Model(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get model: %w", err)
			}
			return writeItem(cmd, a, m, "MODEL", func(color bool) []format.KV {
				return format.ModelDetail(m, color)
			})
		},
	}
}

func newMLStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Change the deployment status of a model",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			status := strings.ToLower(strings.TrimSpace(args[1]))
			if query.IsSentinel(status) {
				return fmt.Errorf("status must be one of: %s", strings.Join(badge.Values(badge.KindModel), ", "))
			}
			if err := checkEnum(badge.KindModel, status); err != nil {
				return err
			}
			gw, err := a.client()
			if err != nil {
				return err
			}

			var updated model.MLModel
			list := store.New(gw.ML.Models, query.Filter{Page: 1, PageSize: a.pageSize(0)})
			err = list.Mutate(cmd.Context(), func(ctx context.Context) error {
				var err error
				updated, err = gw.ML.SetStatus(ctx, args[0], model.ModelStatus(status))
				return err
			})
			if err := a.applied(err); err != nil {
				return fmt.Errorf("set model status: %w", err)
			}
			return writeItem(cmd, a, updated, "MODEL", func(color bool) []format.KV {
				return format.ModelDetail(updated, color)
			})
		},
	}
}

func newMLTestCmd(a *app) *cobra.Command {
	var (
		modelID  string
		features []string
	)

	cmd := &cobra.Command{
		Use:   "test <entity-type> <entity-id>",
		Short: "Run a test prediction against one entity",
		Long: "Run a test prediction against one entity. Entity types: " +
			"project, task, business, employee.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := gateway.ProfileFor(model.EntityType(args[0]))
			if err != nil {
				return err
			}
			values, err := parsePairs(features, profile.IsNumeric)
			if err != nil {
				return err
			}
			for name := range values {
				if !slices.Contains(profile.Features, name) {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: feature %q is not used by %s models\n", name, profile.Type)
				}
			}

			gw, err := a.client()
			if err != nil {
				return err
			}
			pred, err := gw.ML.Predict(cmd.Context(), model.PredictRequest{
				ModelID:    modelID,
				EntityType: profile.Type,
				EntityID:   args[1],
				Features:   values,
			})
			if err != nil {
				return fmt.Errorf("predict: %w", err)
			}
			a.logger.Debug("prediction", "entity", profile.Type, "id", pred.EntityID, "confidence", pred.Confidence)
			return writeItem(cmd, a, pred, "PREDICTION", func(bool) []format.KV {
				return format.PredictionDetail(pred)
			})
		},
	}

	cmd.Flags().StringVar(&modelID, "model", "", "model id (default: the active model for the entity type)")
	cmd.Flags().StringArrayVar(&features, "feature", nil, "feature override as key=value (repeatable)")
	return cmd
}
