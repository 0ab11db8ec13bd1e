package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/hylla/dragboard/internal/adapters/server"
	"github.com/hylla/dragboard/internal/adapters/storage/sqlite"
	"github.com/hylla/dragboard/internal/app"
	"github.com/hylla/dragboard/internal/config"
	"github.com/hylla/dragboard/internal/platform"
	"github.com/hylla/dragboard/internal/tui"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

// version is set at build time.
var version = "dev"

// program is the slice of tea.Program the CLI drives.
type program interface {
	Run() (tea.Model, error)
}

// programFactory builds the TUI program; tests replace it.
var programFactory = func(m tea.Model) program {
	return tea.NewProgram(m)
}

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// run executes the command tree for args.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return fang.Execute(ctx, root, fang.WithVersion(version))
}

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	dbPath     string
	appName    string
	devMode    bool
}

// runtimeEnv is the resolved configuration for one command run.
type runtimeEnv struct {
	paths        platform.Paths
	configPath   string
	dbPath       string
	dbOverridden bool
	defaults     config.Config
	cfg          config.Config
}

func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{appName: platform.DefaultAppName, devMode: version == "dev"}
	if envDev, ok := parseBoolEnv("DRAGBOARD_DEV_MODE"); ok {
		opts.devMode = envDev
	}
	if envApp := strings.TrimSpace(os.Getenv("DRAGBOARD_APP_NAME")); envApp != "" {
		opts.appName = envApp
	}

	root := &cobra.Command{
		Use:   "dragboard",
		Short: "A terminal board of sortable, draggable columns",
		Long: `dragboard renders columns of cards you can drag with the mouse or the keyboard.

Run without a subcommand to open the board. Use serve to expose the same
drag controller over HTTP, WebSocket and MCP.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return runTUI(opts, stderr)
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config TOML")
	flags.StringVar(&opts.dbPath, "db", "", "path to sqlite database")
	flags.StringVar(&opts.appName, "app", opts.appName, "application name for config/data path resolution")
	flags.BoolVar(&opts.devMode, "dev", opts.devMode, "use dev mode paths (<app>-dev)")

	root.AddCommand(
		newServeCommand(opts, stderr),
		newPathsCommand(opts, stdout),
		newExportCommand(opts, stdout, stderr),
		newImportCommand(opts, stderr),
		newVersionCommand(stdout),
	)
	return root
}

// resolve applies env overrides and loads the config file.
func (o *rootOptions) resolve() (runtimeEnv, error) {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{AppName: o.appName, DevMode: o.devMode})
	if err != nil {
		return runtimeEnv{}, err
	}
	env := runtimeEnv{paths: paths, configPath: o.configPath, dbPath: o.dbPath}
	env.dbOverridden = strings.TrimSpace(env.dbPath) != ""
	if env.configPath == "" {
		if envPath := strings.TrimSpace(os.Getenv("DRAGBOARD_CONFIG")); envPath != "" {
			env.configPath = envPath
		} else {
			env.configPath = paths.ConfigPath
		}
	}
	if !env.dbOverridden {
		if envPath := strings.TrimSpace(os.Getenv("DRAGBOARD_DB_PATH")); envPath != "" {
			env.dbPath = envPath
			env.dbOverridden = true
		} else {
			env.dbPath = paths.DBPath
		}
	}

	env.defaults = config.Default(env.dbPath)
	env.cfg, err = config.Load(env.configPath, env.defaults)
	if err != nil {
		return runtimeEnv{}, fmt.Errorf("load config %q: %w", env.configPath, err)
	}
	if env.dbOverridden {
		env.cfg.Database.Path = env.dbPath
	}
	return env, nil
}

// bootstrap resolves config, configures logging and opens storage.
func (o *rootOptions) bootstrap(command string, stderr io.Writer) (runtimeEnv, *runtimeLogger, *sqlite.Repository, *app.Service, error) {
	env, err := o.resolve()
	if err != nil {
		return runtimeEnv{}, nil, nil, nil, err
	}
	logger, err := newRuntimeLogger(stderr, o.appName, o.devMode, env.cfg.Logging, time.Now)
	if err != nil {
		return runtimeEnv{}, nil, nil, nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	if command == "tui" {
		// Runtime logs stay in the dev-file sink while the board is on screen.
		logger.SetConsoleEnabled(false)
	}
	logger.Info("startup configuration resolved", "app", o.appName, "dev_mode", o.devMode, "command", command)
	logger.Debug("runtime paths resolved", "config_path", env.configPath, "data_dir", env.paths.DataDir, "db_path", env.dbPath)
	if devPath := logger.DevLogPath(); devPath != "" {
		logger.Info("dev file logging enabled", "path", devPath)
	}

	logger.Info("opening sqlite repository", "db_path", env.cfg.Database.Path)
	repo, err := sqlite.Open(env.cfg.Database.Path)
	if err != nil {
		logger.Error("sqlite open failed", "db_path", env.cfg.Database.Path, "err", err)
		_ = logger.Close()
		return runtimeEnv{}, nil, nil, nil, fmt.Errorf("open sqlite repository: %w", err)
	}

	svc, err := newService(repo, env.cfg)
	if err != nil {
		_ = repo.Close()
		_ = logger.Close()
		return runtimeEnv{}, nil, nil, nil, err
	}
	logger.Debug("board service initialized", "id_style", env.cfg.Board.IDStyle, "columns", len(env.cfg.Board.Columns))
	return env, logger, repo, svc, nil
}

// newService maps board config onto the application service.
func newService(repo app.Repository, cfg config.Config) (*app.Service, error) {
	idGen, err := app.NewIDGenerator(app.IDStyle(cfg.Board.IDStyle))
	if err != nil {
		return nil, fmt.Errorf("configure id generator: %w", err)
	}
	columns := make([]app.ColumnSpec, 0, len(cfg.Board.Columns))
	for _, c := range cfg.Board.Columns {
		columns = append(columns, app.ColumnSpec{ID: c.ID, Items: c.Items})
	}
	return app.NewService(repo, idGen, nil, app.ServiceConfig{
		BoardName: cfg.Board.Name,
		Columns:   columns,
	}), nil
}

// closeAll releases storage and the log file.
func closeAll(logger *runtimeLogger, repo *sqlite.Repository, stderr io.Writer) {
	if err := repo.Close(); err != nil {
		logger.Warn("sqlite close failed", "err", err)
	}
	if err := logger.Close(); err != nil && logger.shouldLogToSink(logger.consoleSink) {
		_, _ = fmt.Fprintf(stderr, "warning: close runtime log sink: %v\n", err)
	}
}

// runTUI opens the board in the terminal.
func runTUI(opts *rootOptions, stderr io.Writer) error {
	env, logger, repo, svc, err := opts.bootstrap("tui", stderr)
	if err != nil {
		return err
	}
	defer closeAll(logger, repo, stderr)

	runtimeCfg, err := toTUIRuntimeConfig(env.cfg)
	if err != nil {
		return err
	}
	modelOpts := []tui.Option{
		tui.WithBoardID(env.cfg.Board.ID),
		tui.WithRuntimeConfig(runtimeCfg),
	}

	if err := config.EnsureConfigDir(env.configPath); err != nil {
		logger.Warn("config dir unavailable, live reload disabled", "config_path", env.configPath, "err", err)
	} else if watcher, err := config.Watch(env.configPath); err != nil {
		logger.Warn("config watch failed, live reload disabled", "config_path", env.configPath, "err", err)
	} else {
		defer func() {
			if err := watcher.Close(); err != nil {
				logger.Warn("config watcher close failed", "err", err)
			}
		}()
		modelOpts = append(modelOpts, tui.WithConfigReload(watcher.Changes(), func() (tui.RuntimeConfig, error) {
			logger.Info("runtime config reload requested", "config_path", env.configPath)
			reloaded, err := loadRuntimeConfig(env.configPath, env.defaults)
			if err != nil {
				logger.Error("runtime config reload failed", "config_path", env.configPath, "err", err)
				return tui.RuntimeConfig{}, err
			}
			logger.Info("runtime config reload complete", "config_path", env.configPath)
			return reloaded, nil
		}))
		logger.Debug("config watcher started", "config_path", watcher.Path())
	}

	m := tui.NewModel(svc, modelOpts...)
	logger.Info("starting tui program loop", "board_id", env.cfg.Board.ID)
	if _, err := programFactory(m).Run(); err != nil {
		logger.Error("tui program terminated with error", "err", err)
		return fmt.Errorf("run tui program: %w", err)
	}
	logger.Info("command flow complete", "command", "tui")
	return nil
}

func newServeCommand(opts *rootOptions, stderr io.Writer) *cobra.Command {
	var bind string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board over HTTP, WebSocket and MCP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, logger, repo, svc, err := opts.bootstrap("serve", stderr)
			if err != nil {
				return err
			}
			defer closeAll(logger, repo, stderr)

			if _, _, err := svc.LoadOrSeed(cmd.Context(), env.cfg.Board.ID); err != nil {
				return fmt.Errorf("load board %q: %w", env.cfg.Board.ID, err)
			}
			registry := prometheus.NewRegistry()
			registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			metrics := server.NewMetrics(registry)

			serverCfg := server.Config{
				HTTPBind:        env.cfg.Server.Bind,
				APIEndpoint:     env.cfg.Server.APIEndpoint,
				MCPEndpoint:     env.cfg.Server.MCPEndpoint,
				WSEndpoint:      env.cfg.Server.WSEndpoint,
				MetricsEndpoint: env.cfg.Server.MetricsEndpoint,
				ServerName:      platform.DefaultAppName,
				ServerVersion:   version,
			}
			if strings.TrimSpace(bind) != "" {
				serverCfg.HTTPBind = bind
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			logger.Info("command flow start", "command", "serve", "bind", serverCfg.HTTPBind)
			err = server.Run(ctx, serverCfg, server.Dependencies{
				Sessions: app.NewSessionManager(svc, metrics),
				Gatherer: registry,
				Logger:   logger.consoleSink,
			})
			if err != nil {
				logger.Error("command flow failed", "command", "serve", "err", err)
				return fmt.Errorf("run serve command: %w", err)
			}
			logger.Info("command flow complete", "command", "serve")
			return nil
		},
	}
	cmd.Flags().StringVar(&bind, "bind", "", "listen address (overrides [server].bind)")
	return cmd
}

func newPathsCommand(opts *rootOptions, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config, data and database paths",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			env, err := opts.resolve()
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(stdout, "app: %s\n", opts.appName)
			_, _ = fmt.Fprintf(stdout, "dev_mode: %t\n", opts.devMode)
			_, _ = fmt.Fprintf(stdout, "config: %s\n", env.configPath)
			_, _ = fmt.Fprintf(stdout, "data_dir: %s\n", env.paths.DataDir)
			_, _ = fmt.Fprintf(stdout, "db: %s\n", env.cfg.Database.Path)
			_, _ = fmt.Fprintf(stdout, "log_dir: %s\n", env.paths.LogDir)
			return nil
		},
	}
}

func newExportCommand(opts *rootOptions, stdout, stderr io.Writer) *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every board as a JSON snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, logger, repo, svc, err := opts.bootstrap("export", stderr)
			if err != nil {
				return err
			}
			defer closeAll(logger, repo, stderr)
			if err := runExport(cmd.Context(), svc, outPath, stdout); err != nil {
				logger.Error("command flow failed", "command", "export", "err", err)
				return fmt.Errorf("run export command: %w", err)
			}
			logger.Info("command flow complete", "command", "export")
			return nil
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "-", "output file path ('-' for stdout)")
	return cmd
}

func newImportCommand(opts *rootOptions, stderr io.Writer) *cobra.Command {
	var inPath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import boards from a JSON snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(inPath) == "" {
				return fmt.Errorf("--in is required")
			}
			_, logger, repo, svc, err := opts.bootstrap("import", stderr)
			if err != nil {
				return err
			}
			defer closeAll(logger, repo, stderr)
			if err := runImport(cmd.Context(), svc, inPath); err != nil {
				logger.Error("command flow failed", "command", "import", "err", err)
				return fmt.Errorf("run import command: %w", err)
			}
			logger.Info("command flow complete", "command", "import")
			return nil
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "input snapshot JSON file")
	return cmd
}

func newVersionCommand(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the dragboard version",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			_, _ = fmt.Fprintf(stdout, "dragboard %s\n", version)
		},
	}
}

// runExport writes the snapshot to outPath, or stdout for "-".
func runExport(ctx context.Context, svc *app.Service, outPath string, stdout io.Writer) error {
	snap, err := svc.ExportSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("export snapshot: %w", err)
	}
	encoded, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot json: %w", err)
	}
	encoded = append(encoded, '\n')

	if outPath == "" || outPath == "-" {
		if _, err := stdout.Write(encoded); err != nil {
			return fmt.Errorf("write snapshot to stdout: %w", err)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create export output dir: %w", err)
	}
	if err := os.WriteFile(outPath, encoded, 0o644); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}
	return nil
}

// runImport reads and applies one snapshot file.
func runImport(ctx context.Context, svc *app.Service, inPath string) error {
	content, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("read import file: %w", err)
	}
	var snap app.Snapshot
	if err := json.Unmarshal(content, &snap); err != nil {
		return fmt.Errorf("decode snapshot json: %w", err)
	}
	if err := svc.ImportSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("import snapshot: %w", err)
	}
	return nil
}

// parseBoolEnv reads a boolean env var; ok is false when unset or invalid.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

// loadRuntimeConfig re-reads the runtime-updateable settings.
func loadRuntimeConfig(configPath string, defaults config.Config) (tui.RuntimeConfig, error) {
	cfg, err := config.Load(configPath, defaults)
	if err != nil {
		return tui.RuntimeConfig{}, fmt.Errorf("load config %q: %w", configPath, err)
	}
	return toTUIRuntimeConfig(cfg)
}

// toTUIRuntimeConfig maps persisted config values into runtime model options.
func toTUIRuntimeConfig(cfg config.Config) (tui.RuntimeConfig, error) {
	fade, err := cfg.Drag.FadeDelayDuration()
	if err != nil {
		return tui.RuntimeConfig{}, err
	}
	return tui.RuntimeConfig{
		FadeDelay: fade,
		DeadZone:  cfg.Drag.DeadZone,
		Keys: tui.KeyConfig{
			Pick:      cfg.Keys.Pick,
			Cancel:    cfg.Keys.Cancel,
			AddColumn: cfg.Keys.AddColumn,
			Yank:      cfg.Keys.Yank,
			Help:      cfg.Keys.Help,
			Quit:      cfg.Keys.Quit,
		},
	}, nil
}
