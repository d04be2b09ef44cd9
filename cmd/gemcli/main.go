package main

import (
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

	"github.com/atotto/clipboard"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/studiowebux/gemcli/internal/cli"
	"github.com/studiowebux/gemcli/internal/config"
	"github.com/studiowebux/gemcli/internal/gemini"
	"github.com/studiowebux/gemcli/internal/history"
	"github.com/studiowebux/gemcli/internal/keybinds"
	"github.com/studiowebux/gemcli/internal/knownhosts"
	"github.com/studiowebux/gemcli/internal/logging"
	"github.com/studiowebux/gemcli/internal/tui"
	"github.com/studiowebux/gemcli/internal/viewport"
)

var (
	version = "0.1.0"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "gemcli [url]",
	Short: "gemcli - terminal Gemini browser",
	Long: `gemcli is a Gemini protocol browser with an interactive TUI.

Run without arguments to open the home page from config.yaml, or give a URL.
The gemini:// scheme is optional - 'geminiprotocol.net/' works.

Keys in the browser:
  j/k, up/down   move between lines      enter   follow link
  g g / G        first / last line       r       reload
  :              command (go <url>, q)   y       copy link URL
  /              search                  q       quit

Examples:
  gemcli                                   # Open the home page
  gemcli geminiprotocol.net/               # Open a capsule
  gemcli fetch geminiprotocol.net/ -o json # Print a page as JSON
  gemcli hosts list                        # Show pinned certificates
  gemcli hosts forget example.org          # Trust a new certificate`,
	Version:       version,
	Args:          cobra.MaximumNArgs(1),
	SilenceErrors: true,
	SilenceUsage:  true,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		startURL := a.settings.HomeURL
		if len(args) > 0 {
			startURL = args[0]
		}
		return runTUI(cmd.Context(), a, startURL)
	},
}

var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Print one page to stdout",
	Long: `Fetch a page and print it without starting the TUI.

The text output is wrapped like the browser shows it. Color is used only when
stdout is a terminal.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		return cli.Fetch(cmd.Context(), cli.FetchOptions{
			URL:      args[0],
			Output:   flagOutput,
			Width:    flagWidth,
			NoColor:  flagNoColor,
			Theme:    themeName(a.settings.Theme),
			Transact: a.client().Transact,
			Stdout:   os.Stdout,
		})
	},
}

var hostsCmd = &cobra.Command{
	Use:   "hosts",
	Short: "Manage pinned server certificates",
}

var hostsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pinned hosts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		pins, err := a.hosts.List()
		if err != nil {
			return err
		}
		return cli.ListHosts(os.Stdout, pins, time.Now())
	},
}

var hostsForgetCmd = &cobra.Command{
	Use:   "forget [host]",
	Short: "Remove the pins of a host so its next certificate is trusted",
	Long: `Remove every pinned certificate of a host, on all ports.

Without a host, an interactive list of pinned hosts is shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		var host string
		if len(args) > 0 {
			host = args[0]
		} else {
			if !isatty.IsTerminal(os.Stdin.Fd()) {
				return fmt.Errorf("no host given and stdin is not a terminal")
			}
			pins, err := a.hosts.List()
			if err != nil {
				return err
			}
			host, err = cli.SelectHost(pins)
			if errors.Is(err, cli.ErrSelectionCancelled) {
				return nil
			}
			if err != nil {
				return err
			}
		}

		n, err := a.hosts.Forget(host)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("no pinned certificate for %s", host)
		}
		a.logger.Info("forgot pinned host", "host", host, "pins", n)
		fmt.Printf("Forgot %d pin(s) for %s\n", n, host)
		return nil
	},
}

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List key bindings and check keybinds.jsonc",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		registry, result, err := keybinds.LoadOrDefault(config.KeybindsFile)
		if err != nil {
			return err
		}
		if result.HasWarnings() {
			fmt.Fprintln(os.Stderr, result.String())
		}
		return cli.ListKeys(os.Stdout, registry)
	},
}

// Persistent flags override config.yaml
var (
	flagInsecure bool
	flagTimeout  time.Duration
	flagTheme    string
	flagLogLevel string
)

// Flags for fetch
var (
	flagOutput  string
	flagWidth   int
	flagNoColor bool
)

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagInsecure, "insecure", false, "Accept any server certificate (disable pinning)")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 0, "Connect timeout (default from config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagTheme, "theme", "", "Color theme (auto/dark/light)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level (debug/info/warn/error)")

	fetchCmd.Flags().StringVarP(&flagOutput, "output", "o", cli.OutputText, "Output format (text/raw/json/yaml)")
	fetchCmd.Flags().IntVarP(&flagWidth, "width", "w", 0, "Wrap width (default terminal width or 80)")
	fetchCmd.Flags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")

	hostsCmd.AddCommand(hostsListCmd)
	hostsCmd.AddCommand(hostsForgetCmd)

	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(hostsCmd)
	rootCmd.AddCommand(keysCmd)
}

// app holds what every command shares once the config is loaded.
type app struct {
	settings config.Settings
	logger   *slog.Logger
	hosts    *knownhosts.Manager
	closers  []io.Closer
}

func setup(cmd *cobra.Command) (*app, error) {
	if err := config.Initialize(); err != nil {
		return nil, fmt.Errorf("failed to initialize config: %w", err)
	}

	settings, err := config.Load(config.SettingsFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("insecure") && flagInsecure {
		settings.TLS.Verification = config.VerificationInsecure
	}
	if flags.Changed("timeout") {
		settings.ConnectTimeout = flagTimeout
	}
	if flags.Changed("theme") {
		settings.Theme = flagTheme
	}
	if flags.Changed("log-level") {
		settings.LogLevel = flagLogLevel
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	logger, logCloser, err := logging.Open(config.LogFile, settings.LogLevel)
	if err != nil {
		return nil, err
	}
	a := &app{settings: settings, logger: logger, closers: []io.Closer{logCloser}}

	hosts, err := knownhosts.NewManager(config.DatabasePath)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.hosts = hosts
	a.closers = append(a.closers, hosts)

	logger.Debug("starting", "version", version, "command", cmd.Name(), "config", config.ConfigDir)
	return a, nil
}

// client returns a transaction client honoring the TLS and limit settings.
func (a *app) client() *gemini.Client {
	var verifier gemini.CertVerifier
	if a.settings.Insecure() {
		a.logger.Warn("certificate verification disabled")
	} else {
		verifier = knownhosts.NewTOFU(a.hosts, a.logger)
	}

	c := gemini.NewClient(verifier, a.logger)
	c.ConnectTimeout = a.settings.ConnectTimeout
	c.MaxRedirects = a.settings.MaxRedirects
	return c
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i].Close()
	}
}

// runTUI starts the interactive browser
func runTUI(ctx context.Context, a *app, startURL string) error {
	hist, err := history.Load(config.HistoryFile)
	if err != nil {
		return err
	}

	keys, result, err := keybinds.LoadOrDefault(config.KeybindsFile)
	if err != nil {
		return err
	}
	if result.HasWarnings() {
		a.logger.Warn("keybinds warnings", "details", result.String())
	}

	return tui.Run(ctx, tui.Options{
		StartURL:    startURL,
		Transact:    a.client().Transact,
		Theme:       viewport.NewTheme(themeName(a.settings.Theme)),
		Keys:        keys,
		History:     hist,
		HistoryPath: config.HistoryFile,
		Clipboard:   clipboard.WriteAll,
		Logger:      a.logger,
	})
}

// themeName resolves "auto" once, before the UI owns the terminal.
func themeName(setting string) string {
	switch name := strings.ToLower(setting); name {
	case "dark", "light":
		return name
	}
	if termenv.HasDarkBackground() {
		return "dark"
	}
	return "light"
}
