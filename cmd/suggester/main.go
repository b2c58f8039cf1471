package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/robottwo/suggester/internal/config"
	"github.com/robottwo/suggester/internal/server"
	"github.com/robottwo/suggester/internal/styles"
)

var BUILD_VERSION = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, styles.ERROR(err.Error()))
		stop()
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string

	prompt := newPromptCommand(&configPath)
	root := &cobra.Command{
		Use:           "suggester",
		Short:         "Text field with inline completion and a suggestion list",
		Version:       BUILD_VERSION,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          prompt.RunE,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/suggester/config.yaml)")
	root.Flags().AddFlagSet(prompt.Flags())

	root.AddCommand(
		prompt,
		newServeCommand(&configPath),
		newHistoryCommand(&configPath),
		newConfigCommand(&configPath),
	)
	return root
}

func newPromptCommand(configPath *string) *cobra.Command {
	var fullscreen bool

	cmd := &cobra.Command{
		Use:   "prompt",
		Short: "Run the interactive field; Enter prints and records the value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer func() {
				_ = a.close()
			}()

			if !term.IsTerminal(int(os.Stdin.Fd())) {
				return completeLines(cmd.Context(), a.source, os.Stdin, os.Stdout)
			}

			model, err := newPromptModel(cmd.Context(), a, fullscreen)
			if err != nil {
				return err
			}

			options := []tea.ProgramOption{tea.WithContext(cmd.Context()), tea.WithReportFocus()}
			if fullscreen {
				options = append(options, tea.WithAltScreen(), tea.WithMouseCellMotion())
			}
			_, err = tea.NewProgram(model, options...).Run()
			if errors.Is(err, tea.ErrProgramKilled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().BoolVar(&fullscreen, "fullscreen", false, "use the alternate screen and enable mouse picks")
	return cmd
}

func newServeCommand(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the configured sources over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer func() {
				_ = a.close()
			}()

			if addr == "" {
				addr = a.cfg.Server.Addr
			}
			timeout := time.Duration(a.cfg.Engine.FetchTimeoutMs) * time.Millisecond
			srv := server.New(a.source, a.cfg.Engine.MaxSuggestions, timeout, a.logger.Named("server"))

			fmt.Println(styles.HINT("listening on " + addr))
			return srv.Run(cmd.Context(), addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: server.addr)")
	return cmd
}

func newHistoryCommand(configPath *string) *cobra.Command {
	var limit int
	var clearAll bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded values by use count",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer func() {
				_ = a.close()
			}()
			if err := a.requireHistory(); err != nil {
				return err
			}

			if clearAll {
				if err := a.history.Clear(cmd.Context()); err != nil {
					return err
				}
				fmt.Println(styles.HINT("history cleared"))
				return nil
			}

			usage, err := a.history.Usage(cmd.Context(), limit)
			if err != nil {
				return err
			}
			for _, u := range usage {
				fmt.Printf("%s  %s  %s\n",
					styles.COUNT(fmt.Sprintf("%5s", humanize.Comma(u.Uses))),
					u.Value,
					styles.HINT(humanize.Time(u.LastUsed)))
			}
			a.logger.Debug("history listed", zap.Int("count", len(usage)))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of values to list")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "delete all recorded values")
	return cmd
}

func newConfigCommand(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or create the config file",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := defaultConfigPath(*configPath)
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return errors.Newf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.Default().Save(path); err != nil {
				return err
			}
			fmt.Println(styles.HINT("wrote " + path))
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the config file in use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, loaded, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			if loaded == "" {
				fmt.Println(styles.HINT("no config file found, using defaults"))
				return nil
			}
			fmt.Println(loaded)
			return nil
		},
	}

	cmd.AddCommand(initCmd, pathCmd)
	return cmd
}

func defaultConfigPath(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	paths := config.Paths()
	if len(paths) == 0 {
		return "", errors.New("cannot locate a config directory; pass --config")
	}
	return paths[0], nil
}
