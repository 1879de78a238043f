package main

import (
	"fmt"

	"crmadmin/internal/format"
	"crmadmin/internal/imagegen"
	"crmadmin/internal/model"
	"crmadmin/internal/query"

	"github.com/spf13/cobra"
)

func newImagesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "images",
		Aliases: []string{"image"},
		Short:   "Generate and manage template images",
	}
	cmd.AddCommand(
		newImagesListCmd(a),
		newImagesGenerateCmd(a),
		newImagesDeleteCmd(a),
		newImagesTemplatesCmd(a),
	)
	return cmd
}

func newImagesListCmd(a *app) *cobra.Command {
	var (
		lf       listFlags
		template string
		entityID string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List generated images",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gw, err := a.client()
			if err != nil {
				return err
			}
			return runList(cmd, a, &lf, gw.Images.List, func(bool) format.Layout[model.GeneratedImage] {
				return format.Images()
			}, func(f *query.Filter) {
				f.Set("templateType", template)
				f.Set("entityId", entityID)
			})
		},
	}

	lf.register(cmd.Flags(), false, false)
	cmd.Flags().StringVar(&template, "template", query.All, "template type, or 'all'")
	cmd.Flags().StringVar(&entityID, "entity-id", "", "only images attached to this entity")
	return cmd
}

func newImagesGenerateCmd(a *app) *cobra.Command {
	var (
		pairs    []string
		entityID string
	)

	cmd := &cobra.Command{
		Use:   "generate <template>",
		Short: "Render an image from a template",
		Long:  "Render an image from a template. Run 'images templates' to see the data keys each template accepts.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := imagegen.ParseData(pairs)
			if err != nil {
				return err
			}
			req, err := imagegen.Lookup(imagegen.TemplateType(args[0])).Build(data, entityID)
			if err != nil {
				return err
			}
			gw, err := a.client()
			if err != nil {
				return err
			}
			img, err := gw.Images.Generate(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("generate image: %w", err)
			}
			a.logger.Info("image generated", "id", img.ID, "template", img.TemplateType)
			return writeItem(cmd, a, img, "IMAGE", func(bool) []format.KV {
				return []format.KV{
					{Key: "ID", Value: img.ID},
					{Key: "TEMPLATE", Value: img.TemplateType},
					{Key: "ENTITY", Value: img.EntityType + " " + img.EntityID},
					{Key: "PATH", Value: img.Path},
				}
			})
		},
	}

	cmd.Flags().StringArrayVar(&pairs, "data", nil, "template data as key=value (repeatable)")
	cmd.Flags().StringVar(&entityID, "entity-id", "", "entity to attach the image to")
	return cmd
}

func newImagesDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a generated image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := a.client()
			if err != nil {
				return err
			}
			return removeAndReport(cmd, a, "image", args[0], gw.Images.List, gw.Images.Delete)
		},
	}
}

func newImagesTemplatesCmd(a *app) *cobra.Command {
	var noHeader bool

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List image templates and the data they need",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			return format.WriteList(out, imagegen.Templates(), format.Templates(), format.Options{
				Format:        a.format(),
				IncludeHeader: !noHeader,
				Color:         a.useColor(out),
			})
		},
	}

	cmd.Flags().BoolVar(&noHeader, "no-header", false, "omit header row")
	return cmd
}
