// Package main provides the CLI entrypoint for the Cronos engagement tracking agent.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/mhaile-revolts/cronosFacial/internal/app"
	"github.com/mhaile-revolts/cronosFacial/internal/config"
	"github.com/mhaile-revolts/cronosFacial/internal/server"
	"github.com/mhaile-revolts/cronosFacial/internal/session"
	"github.com/mhaile-revolts/cronosFacial/internal/store"
	"github.com/mhaile-revolts/cronosFacial/internal/tray"
	"github.com/mhaile-revolts/cronosFacial/internal/uploader"
)

const (
	defaultListenAddr = ":8080"
	defaultCameraID   = 0
	defaultThreshold  = 1.0
	defaultTimeoutSec = 30
)

var (
	flagConfig        string
	flagCamera        int
	flagThreshold     float64
	flagListen        string
	flagFacialURL     string
	flagAnalyticsURL  string
	flagTimeoutSec    int
	flagPluginDir     string
	flagDBPath        string
	flagStaticDir     string
	flagStreamUploads bool
	flagNoTray        bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "cronos",
		Short:         "Engagement tracking agent",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runAgent,
	}

	rootCmd.Flags().StringVar(&flagConfig, "config", "", "path to TOML config file")
	rootCmd.Flags().IntVar(&flagCamera, "camera", defaultCameraID, "camera device ID")
	rootCmd.Flags().Float64Var(&flagThreshold, "activity-threshold", defaultThreshold, "scene activity threshold (% pixel change)")
	rootCmd.Flags().StringVar(&flagListen, "listen", defaultListenAddr, "HTTP listen address")
	rootCmd.Flags().StringVar(&flagFacialURL, "facial-url", "", "facial analysis backend base URL")
	rootCmd.Flags().StringVar(&flagAnalyticsURL, "analytics-url", "", "analytics backend base URL")
	rootCmd.Flags().IntVar(&flagTimeoutSec, "timeout-sec", defaultTimeoutSec, "backend request timeout in seconds")
	rootCmd.Flags().StringVar(&flagPluginDir, "plugin-dir", "", "alert plugin directory")
	rootCmd.Flags().StringVar(&flagDBPath, "db-path", "", "SQLite database path")
	rootCmd.Flags().StringVar(&flagStaticDir, "static-dir", "", "dashboard static files directory")
	rootCmd.Flags().BoolVar(&flagStreamUploads, "stream-uploads", false, "post every analyzed frame to the facial backend")
	rootCmd.Flags().BoolVar(&flagNoTray, "no-tray", false, "run headless without the system tray")

	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runAgent(cmd *cobra.Command, _ []string) error {
	configPath := flagConfig
	if configPath == "" {
		configPath = config.DefaultConfigPath()
	}
	fileCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "camera", &flagCamera, fileCfg.Camera.DeviceID)
	applyFloatConfig(cmd, "activity-threshold", &flagThreshold, fileCfg.Camera.ActivityThreshold)
	applyStringConfig(cmd, "listen", &flagListen, fileCfg.Server.ListenAddr)
	applyStringConfig(cmd, "facial-url", &flagFacialURL, fileCfg.Backends.FacialURL)
	applyStringConfig(cmd, "analytics-url", &flagAnalyticsURL, fileCfg.Backends.AnalyticsURL)
	applyIntConfig(cmd, "timeout-sec", &flagTimeoutSec, fileCfg.Backends.TimeoutSec)
	applyStringConfig(cmd, "plugin-dir", &flagPluginDir, fileCfg.Plugins.Dir)
	applyStringConfig(cmd, "db-path", &flagDBPath, fileCfg.Storage.DBPath)

	dbPath := flagDBPath
	if dbPath == "" {
		dbPath = config.DefaultDBPath()
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	st, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer st.Close()
	log.Printf("Store initialized at %s", dbPath)

	timeout := time.Duration(flagTimeoutSec) * time.Second
	var facial *uploader.FacialClient
	if flagFacialURL != "" {
		facial = uploader.NewFacialClient(flagFacialURL, timeout)
		log.Printf("Facial analysis backend: %s", flagFacialURL)
	}
	var analytics *uploader.AnalyticsClient
	if flagAnalyticsURL != "" {
		analytics = uploader.NewAnalyticsClient(flagAnalyticsURL, timeout)
		log.Printf("Analytics backend: %s", flagAnalyticsURL)
	}

	pluginDir := flagPluginDir
	if pluginDir == "" {
		pluginDir = config.DefaultPluginDir()
	}

	application := app.New(app.Config{
		Store:          st,
		Facial:         facial,
		Analytics:      analytics,
		PluginDir:      pluginDir,
		CameraID:       flagCamera,
		ActivityThresh: flagThreshold,
		StreamUploads:  flagStreamUploads,
	})

	if err := application.DiscoverPlugins(); err != nil {
		log.Printf("Plugin discovery failed: %v", err)
	} else {
		log.Printf("Discovered %d alert plugin(s)", len(application.PluginManager().List()))
	}

	socket := server.NewEngagementSocket()
	application.RegisterRecordCallback(socket.Publish)

	srv := server.New(server.Config{
		StaticDir:  findWebDir(flagStaticDir),
		Store:      st,
		Controller: application,
		Camera:     application.Camera(),
		Estimator:  application.Engagement(),
		Socket:     socket,
	})

	go func() {
		log.Printf("HTTP server listening on %s", flagListen)
		if err := srv.ListenAndServe(flagListen); err != nil {
			log.Fatalf("HTTP server failed: %v", err)
		}
	}()

	if flagNoTray {
		// Headless mode: tracking is driven entirely over the HTTP API.
		select {}
	}

	return runTray(application, socket)
}

// runTray wires the application into the system tray and blocks until quit.
func runTray(application *app.App, socket *server.EngagementSocket) error {
	t := tray.New()

	application.RegisterRecordCallback(func(rec session.Record) {
		t.SetEngagementState(rec.Engagement)
	})

	t.OnToggle(func(enabled bool) {
		if enabled {
			id, err := application.StartSession()
			if err != nil {
				log.Printf("Failed to start session: %v", err)
				return
			}
			log.Printf("Session %s started", id)
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			sess, err := application.StopSession(ctx)
			if err != nil {
				log.Printf("Failed to stop session: %v", err)
				return
			}
			log.Printf("Session %s stopped with %d frames", sess.ID, sess.FrameCount)
			t.SetEngagementState("")
		}
	})

	t.OnSettings(func() {
		openBrowser(dashboardURL(flagListen))
	})

	t.OnQuit(func() {
		if application.ActiveSessionID() != "" {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if _, err := application.StopSession(ctx); err != nil {
				log.Printf("Failed to stop session on quit: %v", err)
			}
		}
	})

	t.Run()
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}
	cmd := exec.Command(editor, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# cronos configuration
# Uncomment a value to enable it. CLI flags override config values.

[camera]
# device-id = %d
# activity-threshold = %.1f    # Scene activity threshold (%% pixel change)

[server]
# listen-addr = %q

[backends]
# facial-url = "https://facial.example.com"
# analytics-url = "https://analytics.example.com"
# timeout-sec = %d

[plugins]
# dir = %q

[storage]
# db-path = %q
`,
		defaultCameraID,
		defaultThreshold,
		defaultListenAddr,
		defaultTimeoutSec,
		config.DefaultPluginDir(),
		config.DefaultDBPath(),
	)
}

// findWebDir locates the dashboard static files. An explicit directory wins;
// otherwise common locations relative to the binary and the data dir are tried.
func findWebDir(explicit string) string {
	if explicit != "" {
		return explicit
	}

	candidates := []string{
		"web",
		filepath.Join("..", "web"),
		filepath.Join("..", "..", "web"),
		filepath.Join(config.XDGDataHome(), "cronos", "web"),
	}
	for _, dir := range candidates {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir
		}
	}
	return ""
}

// dashboardURL turns a listen address into a browsable URL.
func dashboardURL(listen string) string {
	if listen == "" {
		listen = defaultListenAddr
	}
	if listen[0] == ':' {
		return "http://localhost" + listen
	}
	return "http://" + listen
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
		log.Printf("Failed to open browser: %v", err)
	}
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}
