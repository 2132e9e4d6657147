package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/plugin"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/tray"
)

// activityRetention is how long logged actions are kept.
const activityRetention = 30 * 24 * time.Hour

// CLI flags
var (
	configFlag    string
	headlessFlag  bool
	logLevelFlag  string
	addrFlag      string
	cameraFlag    int
	handFlag      string
	pluginDirFlag string
	webDirFlag    string
)

var rootCmd = &cobra.Command{
	Use:   "mudra",
	Short: "Control the pointer with hand gestures",
	Long: `Mudra watches the webcam, tracks one hand and turns its pose into
pointer actions: point to move, pinch to click, raise two fingers to
scroll and swipe them right to go back.

Examples:
  mudra
  mudra --headless --log-level debug
  mudra --hand left --camera 1`,
	SilenceUsage: true,
	RunE:         runMain,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Config file (default ~/.mudra/config.json)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.Flags().BoolVar(&headlessFlag, "headless", false, "Run without the tray icon")
	rootCmd.Flags().StringVar(&addrFlag, "addr", "", "HTTP listen address")
	rootCmd.Flags().IntVar(&cameraFlag, "camera", 0, "Camera device id")
	rootCmd.Flags().StringVar(&handFlag, "hand", "", "Hand to track: left or right")
	rootCmd.PersistentFlags().StringVar(&pluginDirFlag, "plugin-dir", "", "Plugin directory")
	rootCmd.Flags().StringVar(&webDirFlag, "web-dir", "", "Static settings UI directory")

	rootCmd.AddCommand(configCmd, pluginsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies the flags that were set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	dataDir := config.DefaultDataDir()
	path := configPath(dataDir)

	cfg, err := config.Load(path, dataDir)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevelFlag
	}
	if flags.Changed("addr") {
		cfg.Addr = addrFlag
	}
	if flags.Changed("camera") {
		cfg.CameraID = cameraFlag
	}
	if flags.Changed("hand") {
		cfg.RequiredHand = handFlag
	}
	if flags.Changed("plugin-dir") {
		cfg.PluginDir = pluginDirFlag
	}
	if flags.Changed("web-dir") {
		cfg.StaticDir = webDirFlag
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

func configPath(dataDir string) string {
	if configFlag != "" {
		return configFlag
	}
	return filepath.Join(dataDir, "config.json")
}

func runMain(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logging.Init(cfg.LogLevel)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	st, err := store.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	if added, err := st.Bindings().SeedDefaults(); err != nil {
		return fmt.Errorf("seed bindings: %w", err)
	} else if added > 0 {
		log.Info().Int("count", added).Msg("seeded default bindings")
	}
	if n, err := st.Activity().PruneBefore(time.Now().Add(-activityRetention)); err != nil {
		log.Warn().Err(err).Msg("failed to prune activity log")
	} else if n > 0 {
		log.Debug().Int64("count", n).Msg("pruned activity log")
	}

	plugins := plugin.NewManager(cfg.PluginDir)
	if err := plugins.Discover(); err != nil {
		return fmt.Errorf("discover plugins: %w", err)
	}

	sink := plugin.NewSink(plugins, plugin.NewExecutor(cfg.PluginTimeout), st.Bindings())

	a := app.New(app.Config{
		Camera: capture.NewCamera(capture.Options{
			DeviceID: cfg.CameraID,
			Width:    cfg.FrameWidth,
			Height:   cfg.FrameHeight,
			Mirror:   cfg.Mirror,
		}),
		Sink:         sink,
		Recorder:     st.Activity(),
		Settings:     st.Settings(),
		Tuning:       cfg.Tuning.Gesture(),
		Screen:       cfg.Screen(),
		Hand:         cfg.Hand(),
		MotionThresh: cfg.MotionThresh,
		IdleFPS:      cfg.IdleFPS,
		ActiveFPS:    cfg.ActiveFPS,
		IdleTimeout:  cfg.IdleTimeoutDuration(),
	})

	hub := server.NewEventHub()
	a.OnDecision(hub.Publish)

	webDir := cfg.StaticDir
	if webDir == "" {
		webDir = findWebDir(filepath.Dir(cfg.DBPath))
	}
	if webDir != "" {
		log.Info().Str("dir", webDir).Msg("serving static files")
	}

	srv := server.New(server.Config{
		StaticDir:  webDir,
		Store:      st,
		Plugins:    plugins,
		Controller: a,
		Events:     hub,
	})

	if err := a.Start(); err != nil {
		return fmt.Errorf("start pipeline: %w", err)
	}
	defer a.Stop()

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- srv.ListenAndServe(cfg.Addr)
	}()
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("http shutdown")
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	if headlessFlag {
		select {
		case <-sigCh:
			log.Info().Msg("shutting down")
			return nil
		case err := <-serveErr:
			return fmt.Errorf("http server: %w", err)
		}
	}

	t := tray.New(a.IsEnabled())
	bindTray(t, a)
	t.OnSettings(func() { openBrowser(settingsURL(cfg.Addr)) })
	t.OnQuit(func() {
		log.Info().Msg("quit from tray")
		hub.Close()
	})

	quitErr := make(chan error, 1)
	go func() {
		select {
		case <-sigCh:
			log.Info().Msg("shutting down")
			quitErr <- nil
		case err := <-serveErr:
			quitErr <- fmt.Errorf("http server: %w", err)
		}
		t.Quit()
	}()

	t.Run()
	select {
	case err := <-quitErr:
		return err
	default:
		return nil
	}
}

// bindTray keeps the tray and the app in step. Toggles from the tray drive
// the app; changes made elsewhere, such as over HTTP, update the tray.
func bindTray(t *tray.Tray, a *app.App) {
	t.OnToggle(a.SetEnabled)
	a.OnEnabledChange(t.SetEnabled)
	a.OnDecision(t.ObserveDecision)
}

// settingsURL turns a listen address into a browsable URL.
func settingsURL(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		addr = "127.0.0.1" + addr
	}
	return "http://" + addr + "/"
}

func openBrowser(url string) {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", url)
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		log.Warn().Err(err).Str("url", url).Msg("failed to open browser")
		return
	}
	go cmd.Wait()
}

// findWebDir searches for the web directory in common locations.
// It checks: "web", "../web", "../../web", and dataDir/web.
// Returns the first existing directory or empty string if none found.
func findWebDir(dataDir string) string {
	relativePaths := []string{"web", "../web", "../../web"}
	for _, p := range relativePaths {
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			absPath, err := filepath.Abs(p)
			if err == nil {
				return absPath
			}
			return p
		}
	}

	dataWebDir := filepath.Join(dataDir, "web")
	if info, err := os.Stat(dataWebDir); err == nil && info.IsDir() {
		return dataWebDir
	}

	return ""
}
