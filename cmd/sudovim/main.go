package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/sudovim/sudovim/internal/config"
	"github.com/sudovim/sudovim/internal/session"
	"github.com/sudovim/sudovim/internal/utils"
	"github.com/sudovim/sudovim/internal/version"
)

var errRecordsFailed = errors.New("some files could not be processed")

// logCloser flushes and closes the audit log file, if one was opened.
var logCloser io.Closer = closerFunc(func() error { return nil })

var rootCmd = &cobra.Command{
	Use:   "sudovim [flags] FILE...",
	Short: "Edit files as root and mirror every new or changed file into a shadow tree",
	Long: `sudovim opens FILE... in a privileged editor. Afterwards every file that was
created or modified gets a symlink at <shadow root>/<absolute path>, so the
shadow tree lists everything ever changed through sudovim.

Use ./list to edit a file named "list".`,
	Version: version.Detailed(),
	Args:    cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		listOnly, _ := cmd.Flags().GetBool("list")
		if !listOnly && len(args) == 0 {
			return cmd.Help()
		}

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cmd.SilenceUsage = true
		if err := setupLogging(cmd, cfg); err != nil {
			return err
		}

		if listOnly {
			return printList(cmd.OutOrStdout(), cfg.ShadowRoot, listOptions{})
		}

		editor := &session.ExecEditor{SudoCommand: cfg.SudoCommand, Editor: cfg.Editor}
		report, err := session.New(cfg.ShadowRoot, editor).Run(cmd.Context(), args)
		if report != nil {
			printReport(cmd.OutOrStdout(), report)
		}
		if err != nil {
			return err
		}
		if report.Failed() {
			return errRecordsFailed
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().SortFlags = false
	rootCmd.Flags().BoolP("list", "l", false, "List the shadow tree and exit")
	rootCmd.PersistentFlags().StringP("root", "r", "", "Shadow tree root (default $XDG_DATA_HOME/sudovim or $HOME/sudovim)")
	rootCmd.PersistentFlags().StringP("editor", "e", "", "Editor to run (default "+config.DefaultEditor+")")
	rootCmd.PersistentFlags().String("log-file", "", "Append logs to this file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Debug logging")
	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultConfigPath, "sudovim config file")
}

func main() {
	// The editor shares our terminal and receives ^C itself. Catching the
	// signals here keeps us alive to reconcile after it exits.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if cerr := logCloser.Close(); cerr != nil {
		fmt.Fprintf(os.Stderr, "closing log file: %v\n", cerr)
	}
	if err != nil {
		os.Exit(1)
	}
}

// loadConfig merges defaults, the config file, SUDOVIM_* environment
// variables and flags, in increasing order of precedence.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := viper.New()
	v.SetDefault("editor", config.DefaultEditor)
	v.SetDefault("sudo_command", config.DefaultSudoCommand)

	explicit := false
	configPath := config.DefaultConfigPath
	if f := cmd.Flag("config"); f != nil && f.Changed {
		configPath, explicit = f.Value.String(), true
	} else if envPath := os.Getenv("SUDOVIM_CONFIG_PATH"); envPath != "" {
		configPath, explicit = envPath, true
	}
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.Is(err, os.ErrNotExist) || errors.As(err, &notFound)
		if !missing || explicit {
			return nil, fmt.Errorf("config read '%s': %w", configPath, err)
		}
	}

	for key, flag := range map[string]string{
		"shadow_root": "root",
		"editor":      "editor",
		"log_file":    "log-file",
	} {
		if f := cmd.Flag(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}

	v.SetEnvPrefix("SUDOVIM")
	v.AutomaticEnv()

	cfg := &config.Config{
		ShadowRoot:  v.GetString("shadow_root"),
		Editor:      v.GetString("editor"),
		SudoCommand: v.GetString("sudo_command"),
		LogFile:     v.GetString("log_file"),
		Path:        v.ConfigFileUsed(),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// setupLogging installs the default slog logger: tint on stderr, plus a
// line-numbered text log when a log file is configured.
func setupLogging(cmd *cobra.Command, cfg *config.Config) error {
	level := slog.LevelInfo
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		level = slog.LevelDebug
	}

	handlers := []slog.Handler{
		tint.NewHandler(cmd.ErrOrStderr(), &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
			NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
		}),
	}

	if cfg.LogFile != "" {
		if err := utils.EnsureParent(cfg.LogFile); err != nil {
			return fmt.Errorf("create log directory %s: %w", filepath.Dir(cfg.LogFile), err)
		}
		file, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		interceptor := utils.NewLogInterceptor(file)
		logCloser = closerFunc(func() error {
			return errors.Join(interceptor.Close(), file.Close())
		})
		handlers = append(handlers, slog.NewTextHandler(interceptor, &slog.HandlerOptions{
			Level: slog.LevelDebug,
			// the interceptor stamps the time
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey && len(groups) == 0 {
					return slog.Attr{}
				}
				return a
			},
		}))
	}

	slog.SetDefault(slog.New(utils.NewMultiLogHandler(handlers...)))
	return nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }
