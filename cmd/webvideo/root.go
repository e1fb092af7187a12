package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"webvideo/internal/config"
	"webvideo/internal/content"
	"webvideo/pkg/types"
)

// version is overridden at link time with -ldflags "-X main.version=...".
var version = "dev"

// options collects flag values shared by every subcommand.
type options struct {
	configPath string
	logLevel   string
	logFormat  string

	addr        string
	renderer    string
	chromePath  string
	contentDir  string
	urlTemplate string
	corsOrigins string

	log zerolog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "webvideo",
		Short:         "Render web panels off-screen and play them as host video",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&opts.configPath, "config", "c", "", "Config file (.yaml, .yml, .json or .toml)")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level: debug|info|warn|error (defaults WEBVIDEO_LOG_LEVEL or info)")
	pf.StringVar(&opts.logFormat, "log-format", "", "Log format: console|json (defaults WEBVIDEO_LOG_FORMAT or console)")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		level := firstNonEmpty(opts.logLevel, os.Getenv(config.EnvPrefix+"LOG_LEVEL"), "info")
		format := firstNonEmpty(opts.logFormat, os.Getenv(config.EnvPrefix+"LOG_FORMAT"), "console")
		opts.log = newLogger(cmd.ErrOrStderr(), level, format)
	}

	root.AddCommand(newServeCmd(opts), newPanelsCmd(opts), newVersionCmd())

	completionCmd := &cobra.Command{Use: "completion", Short: "Generate the autocompletion script for the specified shell"}
	completionCmd.AddCommand(&cobra.Command{Use: "bash", Short: "Bash completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenBashCompletion(cmd.OutOrStdout()) }})
	completionCmd.AddCommand(&cobra.Command{Use: "zsh", Short: "Zsh completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenZshCompletion(cmd.OutOrStdout()) }})
	completionCmd.AddCommand(&cobra.Command{Use: "fish", Short: "Fish completion", RunE: func(cmd *cobra.Command, args []string) error { return root.GenFishCompletion(cmd.OutOrStdout(), true) }})
	completionCmd.AddCommand(&cobra.Command{Use: "powershell", Short: "PowerShell completion", RunE: func(cmd *cobra.Command, args []string) error {
		return root.GenPowerShellCompletionWithDesc(cmd.OutOrStdout())
	}})
	root.AddCommand(completionCmd)
	return root
}

func newServeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Run the panels, the host tick loop and the HTTP surface",
		Example: "  webvideo serve --renderer synthetic\n  webvideo serve -c webvideo.yaml --content-dir ~/panels",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(opts, cmd)
			if err != nil {
				return err
			}
			log := newLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
			return runServe(cmd.Context(), cfg, log)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.addr, "addr", "", "HTTP listen address, e.g. :8080")
	f.StringVar(&opts.renderer, "renderer", "", "Renderer backend: headless|synthetic")
	f.StringVar(&opts.chromePath, "chrome-path", "", "Chrome or Chromium executable for the headless renderer")
	f.StringVar(&opts.contentDir, "content-dir", "", "Directory holding one sub-directory with an index.html per panel")
	f.StringVar(&opts.urlTemplate, "url-template", "", "Panel URL template; {name} is replaced by the panel name")
	f.StringVar(&opts.corsOrigins, "cors-origins", "", "Comma-separated allowed origins; enables CORS when set")
	return cmd
}

func newPanelsCmd(opts *options) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "panels [dir]",
		Short: "List panel content found in a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := opts.contentDir
			if len(args) == 1 {
				dir = args[0]
			}
			if dir == "" {
				cfg, err := loadConfig(opts, cmd)
				if err != nil {
					return err
				}
				dir = cfg.ContentDir
			}
			if dir == "" {
				return fmt.Errorf("no content directory: pass one or set %sCONTENT_DIR", config.EnvPrefix)
			}
			items, err := content.LoadDir(dir)
			if err != nil {
				return err
			}
			opts.log.Debug().Str("dir", dir).Int("count", len(items)).Msg("event=content_scanned")
			return printPanels(cmd.OutOrStdout(), items, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON instead of a table")
	cmd.Flags().StringVar(&opts.contentDir, "content-dir", "", "Directory to scan")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "webvideo", version)
		},
	}
}

// loadConfig layers, from lowest to highest precedence: defaults, the config
// file, WEBVIDEO_* variables, and flags set on the command line.
func loadConfig(opts *options, cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if opts.configPath != "" {
		loaded, err := config.Load(opts.configPath)
		if err != nil {
			return cfg, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	}
	cfg.ApplyEnv()

	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}
	if changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if changed("log-format") {
		cfg.LogFormat = opts.logFormat
	}
	if changed("addr") {
		cfg.Addr = opts.addr
	}
	if changed("renderer") {
		cfg.Renderer = opts.renderer
	}
	if changed("chrome-path") {
		cfg.ChromePath = opts.chromePath
	}
	if changed("content-dir") {
		cfg.ContentDir = opts.contentDir
	}
	if changed("url-template") {
		cfg.URLTemplate = opts.urlTemplate
	}
	if changed("cors-origins") {
		cfg.CORS.Origins = config.SplitCSV(opts.corsOrigins)
		cfg.CORS.Enabled = len(cfg.CORS.Origins) > 0
	}

	cfg.Defaults()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger(w io.Writer, level, format string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	if strings.EqualFold(format, "json") {
		return zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	}
	cw := zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	return zerolog.New(cw).Level(lvl).With().Timestamp().Logger()
}

func printPanels(w io.Writer, items []types.Content, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(items)
	}
	for _, it := range items {
		fmt.Fprintf(w, "%-20s %s\n", it.Name, it.URL)
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
