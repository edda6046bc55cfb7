package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ledmatrix/matrixstore/internal/config"
	"github.com/ledmatrix/matrixstore/internal/gitx"
	"github.com/ledmatrix/matrixstore/internal/i18n"
	"github.com/ledmatrix/matrixstore/internal/installer"
	"github.com/ledmatrix/matrixstore/internal/logging"
	"github.com/ledmatrix/matrixstore/internal/render"
	"github.com/ledmatrix/matrixstore/internal/runtime"
	_ "github.com/ledmatrix/matrixstore/internal/runtime/builtin" // register builtin factories
	"github.com/ledmatrix/matrixstore/internal/server"
	"github.com/ledmatrix/matrixstore/internal/updater"
)

var (
	serveAddr   string
	serveNoHost bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the display rotation loop",
	Long: `Run the matrixstore daemon: the HTTP API for the web UI, the
display rotation loop driving enabled plugins, and the periodic
registry sync.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8090", "API listen address")
	serveCmd.Flags().BoolVar(&serveNoHost, "no-host", false, "serve the API without driving the display")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	log, err := logging.New(logging.Config{
		Dir:        config.LogDir(),
		Level:      cfg.Log.Level,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
		Console:    verbose,
	})
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	inst := installer.New(cfg.PluginsDir, config.StagingDir(), gitx.NewClient(), log)
	store := registryStore()

	// Periodic registry sync
	checker := updater.NewChecker(store, inst, cfg.RegistryURL, log)
	go checker.Run(ctx, cfg.RefreshIntervalDuration())

	// lookup feeds discovery from the live host config
	lookup := func(id string) (bool, map[string]any) {
		pc := config.Get().Plugin(id)
		return pc.Enabled, pc.Settings
	}

	if !serveNoHost {
		// TODO: replace the log sink with the rgbmatrix driver once
		// the hardware bindings land
		sink := runtime.SinkFunc(func(id string, frame *render.Frame) error {
			log.Debug("frame presented", zap.String("plugin", id))
			return nil
		})

		host := runtime.NewHost(sink, log, cfg.Display.Width, cfg.Display.Height)
		if err := host.Discover(cfg.PluginsDir, lookup); err != nil {
			return err
		}

		go host.Watch(ctx, cfg.PluginsDir, lookup)
		go func() {
			if err := host.Run(ctx); err != nil && ctx.Err() == nil {
				log.Error("rotation loop stopped", zap.Error(err))
			}
		}()
	}

	srv := &server.Server{
		Installer: inst,
		Store:     store,
		Log:       log,
		SetEnabled: func(id string, enabled bool) error {
			return config.SetPluginEnabled(id, enabled)
		},
		RemoveConfig: config.RemovePlugin,
	}

	fmt.Println(i18n.T("ServeListening", map[string]any{"Addr": serveAddr}))
	return srv.ListenAndServe(ctx, serveAddr)
}
