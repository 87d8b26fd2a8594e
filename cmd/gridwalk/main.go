package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/gridwalk/gridwalk/internal/config"
	"github.com/gridwalk/gridwalk/internal/data"
	"github.com/gridwalk/gridwalk/internal/movement"
	"github.com/gridwalk/gridwalk/internal/scripting"
	"github.com/gridwalk/gridwalk/internal/session"
	"github.com/gridwalk/gridwalk/internal/system"
	"github.com/gridwalk/gridwalk/internal/visual"
	"github.com/gridwalk/gridwalk/internal/world"
)

const defaultConfigPath = "config/gridwalk.toml"

func main() {
	// A missing .env is fine.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: load .env: %v\n", err)
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "gridwalk",
		Usage: "grid pathfinding and click-to-move simulation",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the TOML config",
				Value:   defaultConfigPath,
				Sources: cli.EnvVars(config.EnvPath),
			},
			&cli.StringFlag{
				Name:    "level",
				Aliases: []string{"l"},
				Usage:   "level file, overrides level.path",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "run the simulation, reading commands from stdin",
				Action: runSimulation,
			},
			{
				Name:  "path",
				Usage: "print the path between two tiles of a level",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "from", Usage: "start tile as x,z", Required: true},
					&cli.StringFlag{Name: "to", Usage: "end tile as x,z", Required: true},
				},
				Action: printPath,
			},
		},
	}
}

// setup loads the config and builds the logger. The default config path may
// be absent, in which case built-in defaults apply.
func setup(cmd *cli.Command) (*config.Config, *zap.Logger, error) {
	path := cmd.String("config")
	cfg, err := config.Load(path)
	if errors.Is(err, os.ErrNotExist) && path == defaultConfigPath {
		cfg, err = config.Default(), nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if lvl := cmd.String("level"); lvl != "" {
		cfg.Level.Path = lvl
	}

	log, err := newLogger(cfg.Logging)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, log, nil
}

func loadSession(cfg *config.Config, scripts *scripting.Engine, hub *visual.Hub, log *zap.Logger) (*session.Session, error) {
	lvl, err := data.LoadLevel(cfg.Level.Path)
	if err != nil {
		return nil, err
	}
	return session.New(lvl, cfg, scripts, hub, log)
}

func runSimulation(ctx context.Context, cmd *cli.Command) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	printBanner()

	scripts, err := scripting.NewEngine(cfg.Scripts.Dir, log)
	if err != nil {
		return err
	}
	defer scripts.Close()

	var hub *visual.Hub
	if cfg.Visualizer.BindAddress != "" {
		hub = visual.NewHub(log)
		go hub.Run(ctx)

		srv := newVisualServer(cfg.Visualizer.BindAddress, hub)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("visualizer server", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	sess, err := loadSession(cfg, scripts, hub, log)
	if err != nil {
		return err
	}
	sess.OnClickResult(func(c system.Click, res movement.Result) {
		fmt.Printf("  click %s -> %s\n", sess.Grid().WorldToGrid(c.Hit), res)
	})

	st := sess.Stats()
	printSection("Level " + sess.Name())
	printStat("tiles", st.Tiles)
	printStat("path nodes", st.Nodes)
	printStat("path edges", st.Edges)
	printStat("items", st.Items)
	printStat("entities", st.Entities)
	printStat("agents", st.Agents)
	if st.Skipped > 0 {
		printStat("skipped objects", st.Skipped)
	}
	fmt.Println()

	printSection("Ready")
	if hub != nil {
		printReady(fmt.Sprintf("visualizer on ws://%s/ws", cfg.Visualizer.BindAddress))
	}
	printReady(fmt.Sprintf("simulation loop (tick: %s)", cfg.Simulation.TickRate))
	printReady("commands: click x z [agent] | place x z name | clear x z | block x z | open x z | agents | quit")
	fmt.Println()

	lines := readLines(ctx, os.Stdin)
	ticker := time.NewTicker(cfg.Simulation.TickRate)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			sess.Tick(cfg.Simulation.TickRate)
		case line, ok := <-lines:
			if !ok {
				log.Info("stdin closed, stopping")
				return nil
			}
			if quit := runCommand(sess, line, os.Stdout); quit {
				log.Info("stopped", zap.Uint64("ticks", sess.Ticks()))
				return nil
			}
		case <-ctx.Done():
			log.Info("shutdown signal received", zap.Uint64("ticks", sess.Ticks()))
			return nil
		}
	}
}

func newVisualServer(addr string, hub *visual.Hub) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	return &http.Server{
		Addr:        addr,
		Handler:     mux,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}
}

func printPath(_ context.Context, cmd *cli.Command) error {
	cfg, log, err := setup(cmd)
	if err != nil {
		return err
	}
	defer log.Sync()

	from, err := parsePos(cmd.String("from"))
	if err != nil {
		return fmt.Errorf("--from: %w", err)
	}
	to, err := parsePos(cmd.String("to"))
	if err != nil {
		return fmt.Errorf("--to: %w", err)
	}

	sess, err := loadSession(cfg, nil, nil, log)
	if err != nil {
		return err
	}
	path := sess.Engine().FindPath(from, to)
	if path.Empty() {
		return cli.Exit(fmt.Sprintf("no path from %s to %s", from, to), 2)
	}
	fmt.Println(formatPath(path))
	return nil
}

func formatPath(path []world.GridPos) string {
	out := fmt.Sprintf("%d tiles:", len(path))
	for _, p := range path {
		out += " " + p.String()
	}
	return out
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = zapcore.InfoLevel
	}

	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapCfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		zapCfg.EncoderConfig.ConsoleSeparator = "  "
		zapCfg.DisableCaller = true
		zapCfg.DisableStacktrace = true
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg.Build()
}
