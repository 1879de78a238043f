package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"crmadmin/internal/archive"
	"crmadmin/internal/badge"
	"crmadmin/internal/format"
	"crmadmin/internal/model"
	"crmadmin/internal/query"
	"crmadmin/internal/session"
	"crmadmin/internal/store"
	"crmadmin/internal/tui"
	"crmadmin/internal/view"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newLogsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "logs",
		Aliases: []string{"log"},
		Short:   "Browse activity logs grouped by session",
	}
	cmd.AddCommand(
		newLogsListCmd(a),
		newLogsSessionsCmd(a),
		newLogsViewCmd(a),
		newLogsPullCmd(a),
		newLogsExportCmd(a),
		newLogsImportCmd(a),
		newLogsBrowseCmd(a),
	)
	return cmd
}

// logFlags extends listFlags with the log-specific controls.
type logFlags struct {
	listFlags
	action    string
	sessionID string
	// recent caps archive reads to the newest records; zero reads all.
	recent int
}

func (lf *logFlags) register(cmd *cobra.Command) {
	lf.listFlags.register(cmd.Flags(), false, true)
	cmd.Flags().StringVar(&lf.action, "action", query.All, "action type, or 'all'")
	cmd.Flags().StringVar(&lf.sessionID, "session", "", "only records of this session id")
}

func (lf *logFlags) filter(a *app) (query.Filter, error) {
	if err := checkEnum(badge.KindLog, lf.typ); err != nil {
		return query.Filter{}, err
	}
	f, err := lf.listFlags.filter(a)
	if err != nil {
		return f, err
	}
	if !query.IsSentinel(f.Type) {
		f.Type = strings.ToUpper(f.Type)
	}
	f.Set("actionType", lf.action)
	f.Set("sessionId", strings.TrimSpace(lf.sessionID))
	return f, nil
}

// archiveQuery maps the same controls onto an archive query.
func (lf *logFlags) archiveQuery() (archive.Query, error) {
	q := archive.Query{
		SessionID: strings.TrimSpace(lf.sessionID),
		Search:    strings.TrimSpace(lf.search),
		Limit:     lf.recent,
	}
	if !query.IsSentinel(lf.typ) {
		q.Types = []model.LogType{model.LogType(strings.ToUpper(lf.typ))}
	}
	if !query.IsSentinel(lf.action) {
		q.ActionType = lf.action
	}
	var err error
	if q.From, err = query.ParseDate(lf.fromStr); err != nil {
		return q, fmt.Errorf("invalid --from value: %w", err)
	}
	if q.To, err = query.ParseDateEnd(lf.toStr); err != nil {
		return q, fmt.Errorf("invalid --to value: %w", err)
	}
	return q, nil
}

func (a *app) archivePath() string {
	if p := strings.TrimSpace(a.cfg.Archive.Path); p != "" {
		return p
	}
	return archive.DefaultPath()
}

func (a *app) openArchive() (*archive.Archive, error) {
	return archive.Open(a.archivePath())
}

// loadRecords returns the records a command works on: the requested page
// from the gateway, or every matching archived record when fromArchive is
// set.
func loadRecords(cmd *cobra.Command, a *app, lf *logFlags, fromArchive bool) ([]model.LogRecord, error) {
	if fromArchive {
		q, err := lf.archiveQuery()
		if err != nil {
			return nil, err
		}
		arc, err := a.openArchive()
		if err != nil {
			return nil, err
		}
		defer arc.Close() //nolint:errcheck
		return arc.Records(cmd.Context(), q)
	}

	f, err := lf.filter(a)
	if err != nil {
		return nil, err
	}
	gw, err := a.client()
	if err != nil {
		return nil, err
	}
	st, err := store.New(gw.Logs.List, f).Reload(cmd.Context())
	if err != nil {
		return nil, err
	}
	if st.Pages > 1 {
		a.logger.Debug("grouping a single page", "page", st.Page, "pages", st.Pages, "total", st.Total)
	}
	return st.Items, nil
}

func newLogsListCmd(a *app) *cobra.Command {
	var lf logFlags

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List log records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := lf.filter(a)
			if err != nil {
				return err
			}
			gw, err := a.client()
			if err != nil {
				return err
			}
			return runList(cmd, a, &lf.listFlags, gw.Logs.List, format.Logs, func(dst *query.Filter) {
				*dst = f
			})
		},
	}

	lf.register(cmd)
	return cmd
}

func newLogsSessionsCmd(a *app) *cobra.Command {
	var (
		lf          logFlags
		fromArchive bool
	)

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Summarize log records by session",
		Long: "Summarize log records by session. Only the fetched page is grouped, so a session " +
			"that spans pages appears truncated; use --archive to group every pulled record.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			records, err := loadRecords(cmd, a, &lf, fromArchive)
			if err != nil {
				return err
			}
			sessions := session.Group(records).Sessions()
			summaries := make([]session.Summary, 0, len(sessions))
			for _, s := range sessions {
				summaries = append(summaries, s.Summary())
			}
			out := cmd.OutOrStdout()
			return format.WriteList(out, summaries, format.Sessions(a.useColor(out)), format.Options{
				Format:        a.format(),
				IncludeHeader: !lf.noHeader,
				Color:         a.useColor(out),
			})
		},
	}

	lf.register(cmd)
	cmd.Flags().BoolVar(&fromArchive, "archive", false, "group every matching record in the local archive")
	return cmd
}

func newLogsViewCmd(a *app) *cobra.Command {
	var (
		lf          logFlags
		fromArchive bool
		mode        string
		maxRecords  int
		wrap        int
	)

	cmd := &cobra.Command{
		Use:   "view [session-id]",
		Short: "Render log records as a timeline or as session cards",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				lf.sessionID = args[0]
			}
			typeArg, actionArg := lf.typ, lf.action
			// Type and action narrow locally so --type accepts a list.
			lf.typ, lf.action = query.All, query.All
			if query.IsSentinel(typeArg) && query.IsSentinel(actionArg) {
				lf.recent = maxRecords
			}
			records, err := loadRecords(cmd, a, &lf, fromArchive)
			if err != nil {
				return err
			}

			opts := view.Options{
				Format:       mode,
				Wrap:         wrap,
				MaxRecords:   maxRecords,
				TypeArg:      typeArg,
				ActionArg:    actionArg,
				ForceColor:   a.cfg.Output.Color == "always",
				ForceNoColor: a.cfg.Output.Color == "never",
				Out:          cmd.OutOrStdout(),
			}
			if len(args) == 1 {
				opts.SessionID = args[0]
			}
			if f, ok := cmd.OutOrStdout().(*os.File); ok {
				opts.OutFile = f
			}
			return view.Run(records, opts)
		},
	}

	lf.register(cmd)
	cmd.Flags().BoolVar(&fromArchive, "archive", false, "read records from the local archive")
	cmd.Flags().StringVar(&mode, "mode", "text", "output mode: text, raw, or cards")
	cmd.Flags().IntVar(&maxRecords, "max", 0, "show only the most recent N records (0 = all)")
	cmd.Flags().IntVar(&wrap, "wrap", 0, "wrap message bodies at N columns (0 = terminal width)")
	return cmd
}

func newLogsPullCmd(a *app) *cobra.Command {
	var (
		lf    logFlags
		pages int
		all   bool
	)

	cmd := &cobra.Command{
		Use:   "pull",
		Short: "Fetch log pages into the local archive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if pages < 1 && !all {
				return errors.New("--pages must be at least 1")
			}
			f, err := lf.filter(a)
			if err != nil {
				return err
			}
			gw, err := a.client()
			if err != nil {
				return err
			}
			arc, err := a.openArchive()
			if err != nil {
				return err
			}
			defer arc.Close() //nolint:errcheck

			ctx := cmd.Context()
			list := store.New(gw.Logs.List, f)
			fetched, saved := 0, 0
			for n := 0; all || n < pages; n++ {
				st, err := list.Reload(ctx)
				if err != nil {
					return fmt.Errorf("fetch page %d: %w", list.Filter().Page, err)
				}
				written, err := arc.Save(ctx, st.Items)
				if err != nil {
					return fmt.Errorf("archive page %d: %w", st.Page, err)
				}
				fetched += len(st.Items)
				saved += written
				a.logger.Debug("pulled page", "page", st.Page, "pages", st.Pages, "records", len(st.Items))
				if len(st.Items) == 0 || !list.NextPage() {
					break
				}
			}

			total, err := arc.Count(ctx)
			if err != nil {
				return fmt.Errorf("count archive: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "pulled %d records (%d saved), archive holds %d\n", fetched, saved, total)
			return nil
		},
	}

	lf.register(cmd)
	cmd.Flags().IntVar(&pages, "pages", 1, "number of pages to fetch starting at --page")
	cmd.Flags().BoolVar(&all, "all", false, "fetch every remaining page")
	return cmd
}

func newLogsExportCmd(a *app) *cobra.Command {
	var lf logFlags

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Write archived records as JSONL (.zst compresses, - is stdout)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := loadRecords(cmd, a, &lf, true)
			if err != nil {
				return err
			}
			if args[0] == "-" {
				return archive.WriteJSONL(cmd.OutOrStdout(), records, false)
			}
			if err := archive.ExportFile(args[0], records); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "exported %d records to %s\n", len(records), args[0])
			return nil
		},
	}

	lf.register(cmd)
	return cmd
}

func newLogsImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Load a JSONL export into the local archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := archive.ImportFile(args[0])
			if err != nil {
				return err
			}
			for _, w := range result.Warnings {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", w)
			}

			arc, err := a.openArchive()
			if err != nil {
				return err
			}
			defer arc.Close() //nolint:errcheck

			saved, err := arc.Save(cmd.Context(), result.Records)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d records (%d skipped)\n", saved, len(result.Warnings))
			return nil
		},
	}
}

func newLogsBrowseCmd(a *app) *cobra.Command {
	var lf logFlags

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse log sessions interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := lf.filter(a)
			if err != nil {
				return err
			}
			gw, err := a.client()
			if err != nil {
				return err
			}
			m := tui.New(store.New(gw.Logs.List, f), time.Duration(a.cfg.Gateway.Timeout))
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				return fmt.Errorf("run browser: %w", err)
			}
			return nil
		},
	}

	lf.register(cmd)
	return cmd
}
