package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"crmadmin/internal/badge"
	"crmadmin/internal/format"
	"crmadmin/internal/gateway"
	"crmadmin/internal/query"
	"crmadmin/internal/store"

	"github.com/spf13/cobra"
)

func newBookingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "bookings",
		Aliases: []string{"booking"},
		Short:   "List, inspect, sync and delete property bookings",
	}
	cmd.AddCommand(
		newBookingsListCmd(a),
		newBookingsGetCmd(a),
		newBookingsSyncCmd(a),
		newBookingsDeleteCmd(a),
	)
	return cmd
}

func newBookingsListCmd(a *app) *cobra.Command {
	var (
		lf       listFlags
		property string
		source   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List bookings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := checkEnum(badge.KindBooking, lf.status); err != nil {
				return err
			}
			gw, err := a.client()
			if err != nil {
				return err
			}
			return runList(cmd, a, &lf, gw.Bookings.List, format.Bookings, func(f *query.Filter) {
				f.Set("propertyId", property)
				f.Set("source", source)
			})
		},
	}

	lf.register(cmd.Flags(), true, false)
	cmd.Flags().StringVar(&property, "property", "", "only bookings of this property id")
	cmd.Flags().StringVar(&source, "source", query.All, "booking channel, or 'all'")
	return cmd
}

func newBookingsGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := a.client()
			if err != nil {
				return err
			}
			b, err := gw.Bookings.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get booking: %w", err)
			}
			return writeItem(cmd, a, b, "BOOKING", func(color bool) []format.KV {
				return format.BookingDetail(b, color)
			})
		},
	}
}

func newBookingsSyncCmd(a *app) *cobra.Command {
	var opts gateway.SyncOptions

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Pull bookings from the upstream channels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			gw, err := a.client()
			if err != nil {
				return err
			}
			res, err := gw.Bookings.Sync(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("sync bookings: %w", err)
			}
			a.logger.Info("bookings synced", "created", res.Created, "updated", res.Updated, "skipped", res.Skipped)
			return writeItem(cmd, a, res, "SYNC", func(bool) []format.KV {
				return format.SyncDetail(res)
			})
		},
	}

	cmd.Flags().StringVar(&opts.PropertyID, "property", "", "sync only this property id")
	cmd.Flags().StringVar(&opts.Source, "source", "", "sync only this channel")
	return cmd
}

func newBookingsDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a booking",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := a.client()
			if err != nil {
				return err
			}
			return removeAndReport(cmd, a, "booking", args[0], gw.Bookings.List, gw.Bookings.Delete)
		},
	}
}

// removeAndReport confirms, deletes id through a list store and prints the
// refreshed total.
func removeAndReport[T any](cmd *cobra.Command, a *app, noun, id string, fetch store.Fetcher[T], del func(context.Context, string) error) error {
	id = strings.TrimSpace(id)
	ok, err := a.confirm(cmd, fmt.Sprintf("Delete %s %s?", noun, id))
	if err != nil || !ok {
		return err
	}

	list := store.New(fetch, query.Filter{Page: 1, PageSize: a.pageSize(0)}).WithDeleter(del)
	err = list.Remove(cmd.Context(), id)
	if errors.Is(err, store.ErrNotRefreshed) {
		a.logger.Warn("deleted but the list could not be reloaded", "kind", noun, "id", id, "error", err)
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %s %s\n", noun, id)
		return nil
	}
	if err != nil {
		return err
	}
	st := list.State()
	a.logger.Debug("deleted", "kind", noun, "id", id, "remaining", st.Total)
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %s %s (%d remaining)\n", noun, id, st.Total)
	return nil
}
