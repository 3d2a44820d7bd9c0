// Package main is the CLI entry point for ariang.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/putao520/aria-ng-gui/internal/config"
	"github.com/putao520/aria-ng-gui/internal/domain"
	"github.com/putao520/aria-ng-gui/internal/infra"
)

var (
	// Version info (set via ldflags)
	Version   = "1.3.0"
	Commit    = "dev"
	BuildTime = "unknown"
)

const commandTimeout = 3 * time.Second

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "ariang",
	Short: "AriaNg GUI - desktop shell for the aria2 download engine",
	Long: `ariang runs the bundled aria2 engine and keeps it alive while the
AriaNg window is open. Closing the window hides it to the tray; the engine
keeps downloading until the shell quits.

Only one instance runs per user. Starting another one brings the running
window to the front.`,
	Version:      Version,
	SilenceUsage: true,
	RunE:         runShell,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the shell in the foreground (default)",
	RunE:  runShell,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show engine status",
	Long:  `Shows whether the shell and its engine are running, based on the engine registry.`,
	RunE:  runStatus,
}

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Print the files and directories the shell uses",
	RunE:  runPaths,
}

var progressCmd = &cobra.Command{
	Use:   "progress [value]",
	Short: "Set the window progress indicator of the running shell",
	Long: `Sends a progress update to the running shell. A value in (0,1] shows
proportional progress, a value above 1 shows indeterminate progress, and
0 or no value clears the indicator.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProgress,
}

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Pop up the context menu of the running shell",
	Args:  cobra.NoArgs,
	RunE:  runMenu,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Prints version, commit, and build time. Use --json for machine-readable output.`,
	Run:   runVersion,
}

var (
	settingsPath string
	installDir   string
	debugLogging bool
	jsonOutput   bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&settingsPath, "config", "", "Settings file (default <user data>/settings.toml)")
	rootCmd.PersistentFlags().StringVar(&installDir, "install-dir", "", "Install directory holding the aria2 bundle")
	rootCmd.PersistentFlags().BoolVar(&debugLogging, "debug", false, "Enable debug logging")
	versionCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output version info as JSON")
	statusCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the engine record as JSON")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(pathsCmd)
	rootCmd.AddCommand(progressCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadEnvironment resolves settings and paths. Flags win over the settings
// file, which wins over defaults.
func loadEnvironment() (config.Settings, *infra.AppPaths, error) {
	userData, err := infra.DefaultUserDataDir()
	if err != nil {
		return config.Settings{}, nil, err
	}

	path := settingsPath
	if path == "" {
		path = filepath.Join(userData, config.FileName)
	}
	settings, err := config.Load(path)
	if err != nil {
		return config.Settings{}, nil, err
	}

	dir := installDir
	if dir == "" {
		dir = settings.InstallDir
	}

	paths, err := infra.DetectAppPaths(dir)
	if err != nil {
		return config.Settings{}, nil, err
	}
	paths.SettingsPath = path
	return settings, paths, nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	_, paths, err := loadEnvironment()
	if err != nil {
		return err
	}

	pm := infra.NewProcessManager()
	registry := infra.NewFileRegistry(paths.RegistryPath)

	record, err := registry.Load()
	if err != nil {
		return err
	}

	if jsonOutput {
		if record == nil {
			record = &domain.EngineRecord{State: domain.EngineStopped}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	}

	fmt.Println("\n=== AriaNg GUI Status ===")
	if record == nil {
		fmt.Println("Status: NOT RUNNING")
		fmt.Println("==========================")
		return nil
	}

	hostAlive := pm.IsRunning(record.HostPID)
	engineAlive := record.EnginePID > 0 && pm.IsRunning(record.EnginePID)

	switch {
	case hostAlive && engineAlive:
		fmt.Println("Status: RUNNING")
	case hostAlive:
		fmt.Printf("Status: DEGRADED (engine %s, restarting)\n", record.State)
	case engineAlive:
		fmt.Println("Status: ORPHANED (engine alive without shell, reaped on next start)")
	default:
		fmt.Println("Status: NOT RUNNING")
	}

	fmt.Printf("\nShell PID:  %d\n", record.HostPID)
	fmt.Printf("Engine PID: %d\n", record.EnginePID)
	fmt.Printf("Engine:     %s\n", record.EnginePath)
	fmt.Printf("Config:     %s\n", record.ConfigPath)
	fmt.Printf("Restarts:   %d\n", record.Restarts)
	if record.StartedAt > 0 {
		started := time.Unix(record.StartedAt, 0)
		fmt.Printf("Uptime:     %s\n", time.Since(started).Round(time.Second))
	}
	fmt.Println("==========================")
	return nil
}

func runPaths(cmd *cobra.Command, args []string) error {
	_, paths, err := loadEnvironment()
	if err != nil {
		return err
	}

	fmt.Printf("Install dir:    %s\n", paths.InstallDir)
	fmt.Printf("Engine bundle:  %s\n", paths.BinDir)
	fmt.Printf("User data:      %s\n", paths.UserDataDir)
	fmt.Printf("Engine config:  %s\n", paths.Engine.CurrentConfigPath)
	fmt.Printf("Engine session: %s\n", paths.Engine.CurrentSessionPath)
	fmt.Printf("Settings:       %s\n", paths.SettingsPath)
	fmt.Printf("Engine state:   %s\n", infra.NewFileRegistry(paths.RegistryPath).GetRegistryPath())
	fmt.Printf("Logs:           %s\n", paths.LogDir)
	return nil
}

func runProgress(cmd *cobra.Command, args []string) error {
	command := domain.Command{Kind: domain.CommandProgress}
	if len(args) == 1 {
		v, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid progress value %q: %w", args[0], err)
		}
		command.Value = &v
	}
	return sendToRunning(command)
}

func runMenu(cmd *cobra.Command, args []string) error {
	return sendToRunning(domain.Command{Kind: domain.CommandContextMenu})
}

func sendToRunning(command domain.Command) error {
	_, paths, err := loadEnvironment()
	if err != nil {
		return err
	}
	return infra.SendCommand(paths.InstanceInfoPath, command, commandTimeout)
}

// createLogger logs to <logDir>/ariang.log and stderr. --debug lowers the
// level to debug and keeps both outputs.
func createLogger(logDir string, level zapcore.Level) *zap.Logger {
	logger, err := loggerConfig(logDir, level, debugLogging).Build()
	if err != nil {
		// Fallback to stderr if file logging fails
		logger, _ = zap.NewProduction()
	}
	return logger
}

func loggerConfig(logDir string, level zapcore.Level, debug bool) zap.Config {
	if debug {
		level = zapcore.DebugLevel
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{filepath.Join(logDir, "ariang.log"), "stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return cfg
}

func runVersion(cmd *cobra.Command, args []string) {
	if jsonOutput {
		fmt.Printf(`{"version":"%s","commit":"%s","build_time":"%s"}`+"\n",
			Version, Commit, BuildTime)
	} else {
		fmt.Printf("ariang %s (commit: %s, built: %s)\n",
			Version, Commit, BuildTime)
	}
}
