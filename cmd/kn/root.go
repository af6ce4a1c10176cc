package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/pders01/kn/internal/app"
	"github.com/pders01/kn/internal/config"
	"github.com/pders01/kn/internal/debuglog"
	"github.com/pders01/kn/internal/kilonova"
	"github.com/pders01/kn/internal/search"
	"github.com/pders01/kn/internal/storage"
	"github.com/pders01/kn/internal/tui"
	"github.com/pders01/kn/internal/validation"
	"github.com/pders01/kn/internal/waiter"
)

// options are the persistent flags shared by every command.
type options struct {
	configPath string
	dbPath     string
	debug      bool
}

func newRootCmd(version string) *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:   "kn",
		Short: "A command line client for kilonova.ro",
		Long: `kn searches kilonova.ro problems, shows their statements in the terminal
and submits solutions to the last problem you looked at.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetVersionTemplate(`{{printf "kn version %s\n" .Version}}`)

	flags := root.PersistentFlags()
	flags.StringVar(&o.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	flags.StringVar(&o.dbPath, "db", "", "database file (overrides config)")
	flags.BoolVar(&o.debug, "debug", false, "write debug logs")

	root.AddCommand(
		newStartCmd(o, version),
		newLoginCmd(o),
		newLogoutCmd(o),
		newMeCmd(o),
		newSearchCmd(o),
		newSubmitCmd(o),
		newSetLanguageCmd(o),
		newSetStatementLanguageCmd(o),
		newViewCmd(o),
		newHistoryCmd(o),
		newOpenCmd(o),
		newGenerateConfigCmd(o),
		newVersionCmd(version),
	)
	return root
}

// loadConfig applies the flags on top of the configuration file.
func loadConfig(o *options) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}

	if o.dbPath != "" {
		path := o.dbPath
		if !filepath.IsAbs(path) && !strings.HasPrefix(path, "~") {
			if abs, err := filepath.Abs(path); err == nil {
				path = abs
			}
		}
		path, err = validation.NewDataFileValidator().ValidateFile(path)
		if err != nil {
			return nil, fmt.Errorf("--db: %w", err)
		}
		cfg.Database.Path = path
	}

	cfg.API.BaseURL, err = validation.NormalizeBaseURL(cfg.API.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("api.base_url: %w", err)
	}

	if o.debug {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// openApp wires the configured components. The returned function releases
// them.
func openApp(cmd *cobra.Command, o *options) (*app.App, func(), error) {
	cfg, err := loadConfig(o)
	if err != nil {
		return nil, nil, err
	}

	logFile := cfg.Log.File
	if logFile == "" {
		logFile = debuglog.DefaultPath()
	}
	if err := debuglog.Setup(debuglog.ParseLogLevel(cfg.Log.Level), logFile); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), tui.Status(tui.StatusWarn, err.Error()))
	}

	tui.ApplyColors(cfg.UI.Colors)
	waiter.Style = lipgloss.NewStyle().Foreground(tui.AccentColor)

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating database directory: %w", err)
	}
	store, err := storage.NewStore(cfg.Database.Path, cfg.Database.Timeout)
	if err != nil {
		debuglog.Close()
		return nil, nil, err
	}

	index := search.Open(store, cfg.Database.SearchIndex)
	client := kilonova.NewClient(cfg.API.BaseURL,
		kilonova.WithUserAgent(cfg.API.UserAgent),
		kilonova.WithTimeout(cfg.API.HTTPTimeout),
	)

	a := app.New(cfg, store, client, index, cmd.OutOrStdout())
	cleanup := func() {
		if err := index.Close(); err != nil {
			debuglog.Warnf("closing search index: %v", err)
		}
		if err := store.Close(); err != nil {
			debuglog.Warnf("closing database: %v", err)
		}
		debuglog.Close()
	}
	return a, cleanup, nil
}

// runApp adapts an App method into a cobra RunE.
func runApp(o *options, run func(cmd *cobra.Command, args []string, a *app.App) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, cleanup, err := openApp(cmd, o)
		if err != nil {
			return err
		}
		defer cleanup()
		return run(cmd, args, a)
	}
}
