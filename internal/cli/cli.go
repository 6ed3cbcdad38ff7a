package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/nutcparking/parkspace/internal/config"
	"github.com/nutcparking/parkspace/internal/logger"
	"github.com/nutcparking/parkspace/internal/parse"
	"github.com/nutcparking/parkspace/internal/scraper"
)

const (
	ExitSuccess = 0
	ExitError   = 1
	ExitEmpty   = 2
)

var version = "dev"

// exitError carries a process exit code. err may be nil when the command
// already reported the problem on its output.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

// ExitCode maps a command error to the process exit code
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	var empty *scraper.EmptyResultError
	if errors.As(err, &empty) {
		return ExitEmpty
	}
	return ExitError
}

// rootOptions holds the persistent flags and what is built from them
type rootOptions struct {
	configPath string
	logLevel   string
	format     string
	url        string
	markup     string

	cfg    *config.Config
	log    *logger.Logger
	output OutputFormat
	out    io.Writer
	errOut io.Writer
}

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(os.Stdout, os.Stderr)
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	opts := &rootOptions{out: out, errOut: errOut}

	cmd := &cobra.Command{
		Use:   "parkspace",
		Short: "Check free parking spaces on the NUTC campus",
		Long: `A CLI tool to check free motorcycle and car parking spaces on the
National Taichung University of Science and Technology campus.

Reads the public parking status page, and can watch it for changes, serve it
over HTTP, post availability notifications and follow a single lot.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: opts.setup,
	}
	cmd.SetOut(out)
	cmd.SetErr(errOut)

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "Path to a YAML config file (default: $CONFIG_PATH or ./"+config.DefaultFile+")")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn or error (overrides config)")
	pf.StringVarP(&opts.format, "format", "o", "text", "Output format: text or json")
	pf.StringVar(&opts.url, "url", "", "Parking status page URL (overrides config)")
	pf.StringVar(&opts.markup, "markup", "", "Page reader: regex or dom (overrides config)")

	cmd.AddCommand(
		newLotsCmd(opts),
		newWatchCmd(opts),
		newServeCmd(opts),
		newNotifyCmd(opts),
		newCommuteCmd(opts),
	)

	return cmd
}

// setup loads the configuration and builds the logger before any command runs
func (o *rootOptions) setup(cmd *cobra.Command, _ []string) error {
	format := OutputFormat(strings.ToLower(o.format))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", o.format)
	}
	o.output = format

	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	if o.url != "" {
		cfg.Upstream.URL = o.url
	}
	if o.markup != "" {
		if _, err := parse.MarkupByName(o.markup); err != nil {
			return err
		}
		cfg.Upstream.Markup = o.markup
	}
	if o.logLevel != "" {
		cfg.Log.Level = o.logLevel
	}
	o.cfg = cfg

	level, err := logger.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	// background refreshes log from their own goroutines
	w := zerolog.SyncWriter(o.errOut)
	if cfg.Log.Format == "console" {
		o.log = logger.NewConsole(level, w)
	} else {
		o.log = logger.New(level, w)
	}
	logger.SetDefault(o.log)

	logger.Debug("configuration loaded", logger.Fields{
		"command": cmd.Name(),
		"url":     cfg.Upstream.URL,
		"markup":  cfg.Upstream.Markup,
	})
	return nil
}

// newScraper builds a scraper from the loaded configuration
func (o *rootOptions) newScraper() (*scraper.Scraper, error) {
	markup, err := parse.MarkupByName(o.cfg.Upstream.Markup)
	if err != nil {
		return nil, err
	}

	opts := []scraper.Option{
		scraper.WithURL(o.cfg.Upstream.URL),
		scraper.WithTimeout(o.cfg.Upstream.Timeout),
		scraper.WithMarkup(markup),
		scraper.WithLogger(o.log.Component("scraper")),
	}
	if o.cfg.Upstream.UserAgent != "" {
		opts = append(opts, scraper.WithUserAgent(o.cfg.Upstream.UserAgent))
	}
	if !o.cfg.Upstream.Breaker.Disabled {
		breaker := scraper.DefaultBreakerConfig()
		breaker.ConsecutiveFailures = o.cfg.Upstream.Breaker.Failures
		breaker.OpenTimeout = o.cfg.Upstream.Breaker.OpenFor
		opts = append(opts, scraper.WithBreaker(breaker))
	}

	return scraper.New(opts...), nil
}

// Execute runs the CLI and exits with the command's exit code
func Execute() {
	err := NewRootCmd().Execute()
	var exit *exitError
	if err != nil && (!errors.As(err, &exit) || exit.err != nil) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(ExitCode(err))
}
