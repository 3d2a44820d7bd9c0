package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/putao520/aria-ng-gui/internal/daemon"
	"github.com/putao520/aria-ng-gui/internal/domain"
	"github.com/putao520/aria-ng-gui/internal/infra"
	"github.com/putao520/aria-ng-gui/internal/platform"
	"github.com/putao520/aria-ng-gui/internal/ui"
	"github.com/putao520/aria-ng-gui/internal/usecase"
)

func runShell(cmd *cobra.Command, args []string) error {
	settings, paths, err := loadEnvironment()
	if err != nil {
		return err
	}
	if err := paths.EnsureUserDataDir(); err != nil {
		return err
	}

	logger := createLogger(paths.LogDir, settings.LogLevel)
	defer logger.Sync()

	// The lock comes first: a second instance must not touch the engine.
	lock := infra.NewInstanceLock(paths.LockPath)
	acquired, err := lock.TryAcquire()
	if err != nil {
		logger.Error("failed to acquire instance lock", zap.Error(err))
		return err
	}
	if !acquired {
		logger.Info("shell already running, activating it")
		if err := infra.SendCommand(paths.InstanceInfoPath, domain.Command{Kind: domain.CommandActivate}, commandTimeout); err != nil {
			logger.Warn("failed to notify running instance", zap.Error(err))
		}
		return nil
	}
	defer lock.Release()

	// Signals are captured from here on; Run handles any that arrive first.
	signals, stopSignals := daemon.NotifySignals()
	defer stopSignals()

	ctx := cmd.Context()

	commands := make(chan domain.Command, 16)
	server, err := infra.StartCommandServer(paths.InstanceInfoPath, logger)
	if err != nil {
		logger.Error("failed to start command server", zap.Error(err))
		return err
	}
	defer server.Close()
	go func() {
		if err := server.Serve(ctx, commands); err != nil {
			logger.Warn("command server stopped", zap.Error(err))
		}
	}()

	profile := platform.NewRegistry().Current()
	fs := infra.NewFileSystemManager()
	editor := infra.NewConfEditor(profile, paths.Engine.CurrentSessionPath, settings.DownloadDir, logger)
	registry := infra.NewFileRegistry(paths.RegistryPath)

	launcher := usecase.NewLauncher(
		usecase.StartupConfig{
			Platform: profile.Platform(),
			Arch:     platform.CurrentArch(),
			Paths:    paths.Engine,
		},
		infra.NewLocator(paths.BinDir, logger),
		infra.NewMigrator(fs, logger),
		editor,
		infra.NewProcessManager(),
		registry,
		logger,
	)

	binary, err := launcher.Prepare()
	if err != nil {
		logger.Error("startup failed", zap.Error(err))
		return fmt.Errorf("startup failed: %w", err)
	}

	supConfig := daemon.DefaultSupervisorConfig(binary, paths.Engine.CurrentConfigPath)
	supConfig.RestartDelay = settings.RestartDelay
	supervisor := daemon.NewSupervisor(supConfig, infra.NewExecSpawner(), editor, registry, logger)

	window := ui.NewHeadlessWindow(platform.Locale(), logger)
	tray := ui.NewHeadlessTray(logger)
	coordinator := daemon.NewCoordinator(supervisor, window, tray, commands, logger).WithSignals(signals)

	logger.Info("shell starting",
		zap.String("version", Version),
		zap.String("install_dir", paths.InstallDir),
		zap.String("user_data", paths.UserDataDir))

	supervisor.Start()
	window.Emit(domain.WindowReadyToShow)

	return coordinator.Run(ctx)
}
