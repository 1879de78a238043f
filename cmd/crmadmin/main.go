// Package main provides the crmadmin CLI for administering the CRM through
// the omnigateway API.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"crmadmin/internal/config"
	"crmadmin/internal/gateway"
	"crmadmin/internal/store"
	"crmadmin/internal/view"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "crmadmin: %v\n", err)
		os.Exit(1)
	}
}

// app carries the global flags and everything derived from them.
type app struct {
	configPath string
	gatewayURL string
	apiKey     string
	formatFlag string
	verbose    bool
	color      bool
	noColor    bool
	yes        bool

	cfg    config.Config
	logger *slog.Logger
	gw     *gateway.Client
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "crmadmin",
		Short:         "Administer the CRM through the omnigateway API",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", config.DefaultPath(), "path to the config file")
	flags.StringVar(&a.gatewayURL, "gateway", "", "gateway base url (env: CRMADMIN_GATEWAY_URL)")
	flags.StringVar(&a.apiKey, "api-key", "", "gateway api key (env: CRMADMIN_API_KEY)")
	flags.StringVar(&a.formatFlag, "format", "", "output format: table, plain, json, or jsonl (default from config)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log gateway requests to stderr")
	flags.BoolVar(&a.color, "color", false, "force-enable ANSI colors even when stdout is not a TTY")
	flags.BoolVar(&a.noColor, "no-color", false, "disable ANSI colors regardless of terminal detection")
	flags.BoolVarP(&a.yes, "yes", "y", false, "do not ask for confirmation before destructive actions")

	root.AddCommand(
		newBookingsCmd(a),
		newClientAppsCmd(a),
		newReportsCmd(a),
		newCheckinFormsCmd(a),
		newImagesCmd(a),
		newLogsCmd(a),
		newMLCmd(a),
		newConfigCmd(a),
		newBadgesCmd(a),
	)
	return root
}

// load resolves configuration with precedence flags > env > file > defaults
// and sets up logging.
func (a *app) load(cmd *cobra.Command) error {
	if a.color && a.noColor {
		return errors.New("--color and --no-color cannot be used together")
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.gatewayURL != "" {
		cfg.Gateway.URL = a.gatewayURL
	}
	if a.apiKey != "" {
		cfg.Gateway.APIKey = a.apiKey
	}
	if a.formatFlag != "" {
		cfg.Output.Format = a.formatFlag
	}
	if a.color {
		cfg.Output.Color = "always"
	}
	if a.noColor {
		cfg.Output.Color = "never"
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}
	a.cfg = cfg

	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

// client returns the gateway client, validating the configuration the first
// time it is needed.
func (a *app) client() (*gateway.Client, error) {
	if a.gw != nil {
		return a.gw, nil
	}
	if errs := a.cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	timeout := time.Duration(a.cfg.Gateway.Timeout)
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	gw, err := gateway.New(gateway.Options{
		BaseURL: a.cfg.Gateway.URL,
		APIKey:  a.cfg.Gateway.APIKey,
		Timeout: timeout,
		Logger:  a.logger,
	})
	if err != nil {
		return nil, err
	}
	a.gw = gw
	return gw, nil
}

func (a *app) format() string {
	f := strings.ToLower(strings.TrimSpace(a.cfg.Output.Format))
	if f == "" {
		return "table"
	}
	return f
}

func (a *app) pageSize(flag int) int {
	if flag > 0 {
		return flag
	}
	return a.cfg.Defaults.PageSize
}

func (a *app) useColor(out io.Writer) bool {
	switch strings.ToLower(a.cfg.Output.Color) {
	case "always":
		return true
	case "never":
		return false
	default:
		return view.ColorEnabled(out, false, false)
	}
}

// confirm asks the user to approve a destructive action. It returns true
// without prompting when --yes is set.
// applied reports whether a change went through. A failed follow-up list
// refresh is logged as a warning instead of failing the command.
func (a *app) applied(err error) error {
	if errors.Is(err, store.ErrNotRefreshed) {
		a.logger.Warn("change applied but the list could not be reloaded", "error", err)
		return nil
	}
	return err
}

func (a *app) confirm(cmd *cobra.Command, prompt string) (bool, error) {
	if a.yes {
		return true, nil
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s [y/N]: ", prompt)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("read confirmation: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		fmt.Fprintln(cmd.ErrOrStderr(), "aborted")
		return false, nil
	}
}
