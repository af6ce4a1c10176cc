package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pders01/kn/internal/app"
	"github.com/pders01/kn/internal/config"
	"github.com/pders01/kn/internal/languages"
	"github.com/pders01/kn/internal/tui"
)

func newStartCmd(o *options, version string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Check that kilonova.ro is up and extend your login session",
		Args:  cobra.NoArgs,
		RunE: runApp(o, func(cmd *cobra.Command, _ []string, a *app.App) error {
			return a.Start(cmd.Context(), version)
		}),
	}
}

func newLoginCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Log in to kilonova.ro",
		Args:  cobra.NoArgs,
		RunE: runApp(o, func(cmd *cobra.Command, _ []string, a *app.App) error {
			return a.Login(cmd.Context())
		}),
	}
}

func newLogoutCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Log out and forget the session token",
		Args:  cobra.NoArgs,
		RunE: runApp(o, func(cmd *cobra.Command, _ []string, a *app.App) error {
			return a.Logout(cmd.Context())
		}),
	}
}

func newMeCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show who you are logged in as",
		Args:  cobra.NoArgs,
		RunE: runApp(o, func(cmd *cobra.Command, _ []string, a *app.App) error {
			return a.Me(cmd.Context())
		}),
	}
}

func newSearchCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "search <name...>",
		Short: "Search problems by name and read the one you pick",
		Long: `Search problems by name. Use the arrow keys (or f/d) to move, left/right
(or k/j) to change page, Enter to open a statement and Esc, q or Ctrl+C to quit.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runApp(o, func(cmd *cobra.Command, args []string, a *app.App) error {
			return a.Search(cmd.Context(), strings.Join(args, " "))
		}),
	}
}

func newSubmitCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "submit <path>",
		Short: "Submit a solution to the last viewed problem",
		Args:  cobra.ExactArgs(1),
		RunE: runApp(o, func(cmd *cobra.Command, args []string, a *app.App) error {
			_, err := a.Submit(cmd.Context(), args[0])
			return err
		}),
	}
}

func newSetLanguageCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:       "set-language <name>",
		Short:     "Set the default language for submissions",
		Long:      "Set the default language for submissions. Allowed: " + strings.Join(languages.Names(), ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: languages.Names(),
		RunE: runApp(o, func(_ *cobra.Command, args []string, a *app.App) error {
			return a.SetLanguage(args[0])
		}),
	}
}

func newSetStatementLanguageCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:       "set-statement-language <" + strings.Join(languages.StatementLanguages, "|") + ">",
		Short:     "Set the preferred language for statements",
		Args:      cobra.ExactArgs(1),
		ValidArgs: languages.StatementLanguages,
		RunE: runApp(o, func(_ *cobra.Command, args []string, a *app.App) error {
			return a.SetStatementLanguage(args[0])
		}),
	}
}

func newViewCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "view",
		Short: "Show the statement of the last viewed problem",
		Args:  cobra.NoArgs,
		RunE: runApp(o, func(cmd *cobra.Command, _ []string, a *app.App) error {
			return a.View(cmd.Context())
		}),
	}
}

func newHistoryCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "history [query...]",
		Short: "Browse statements you viewed before, offline",
		RunE: runApp(o, func(cmd *cobra.Command, args []string, a *app.App) error {
			return a.History(cmd.Context(), strings.Join(args, " "))
		}),
	}
}

func newOpenCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "open",
		Short: "Open the last viewed problem in the browser",
		Args:  cobra.NoArgs,
		RunE: runApp(o, func(_ *cobra.Command, _ []string, a *app.App) error {
			return a.Open()
		}),
	}
}

func newGenerateConfigCmd(o *options) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "generate-config",
		Short: "Write the default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := o.configPath
			if path == "" {
				path = config.DefaultPath()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}
			if err := config.GenerateDefaultConfig(path); err != nil {
				return fmt.Errorf("generating config: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), tui.Status(tui.StatusSuccess, "Generated default configuration at: "+path))
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of kn",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "kn version %s\n", version)
			fmt.Fprintln(cmd.OutOrStdout(), "github.com/pders01/kn")
		},
	}
}
