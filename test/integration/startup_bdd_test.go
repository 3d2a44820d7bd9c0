//go:build integration && !windows

package integration

import (
	"os"
	"path/filepath"
	"syscall"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/putao520/aria-ng-gui/internal/daemon"
	"github.com/putao520/aria-ng-gui/internal/domain"
	"github.com/putao520/aria-ng-gui/internal/infra"
	"github.com/putao520/aria-ng-gui/internal/platform"
	"github.com/putao520/aria-ng-gui/internal/usecase"
	"github.com/putao520/aria-ng-gui/test/fixtures"
)

var _ = Describe("Engine startup", func() {
	var (
		tmpDir     string
		install    *fixtures.FakeInstall
		paths      *infra.AppPaths
		registry   *infra.FileRegistry
		editor     *infra.ConfEditor
		launcher   *usecase.Launcher
		supervisor *daemon.Supervisor
		logger     *zap.Logger
	)

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "ariang-integration-*")
		Expect(err).NotTo(HaveOccurred())

		logger = zap.NewNop()
		install = fixtures.NewFakeInstall(tmpDir)
		_, err = install.Create("linux", "x64")
		Expect(err).NotTo(HaveOccurred())

		paths = infra.NewAppPaths(install.InstallDir, install.UserDataDir)
		profile := platform.NewUnixProfileWithHome("linux", tmpDir)
		editor = infra.NewConfEditor(profile, paths.Engine.CurrentSessionPath, filepath.Join(tmpDir, "downloads"), logger)
		registry = infra.NewFileRegistry(paths.RegistryPath)

		launcher = usecase.NewLauncher(
			usecase.StartupConfig{Platform: "linux", Arch: "x64", Paths: paths.Engine},
			infra.NewLocator(paths.BinDir, logger),
			infra.NewMigrator(infra.NewFileSystemManagerWithHome(tmpDir), logger),
			editor,
			infra.NewProcessManager(),
			registry,
			logger,
		)
	})

	AfterEach(func() {
		if supervisor != nil {
			supervisor.Close()
			supervisor = nil
		}
		os.RemoveAll(tmpDir)
	})

	startEngine := func() string {
		binary, err := launcher.Prepare()
		Expect(err).NotTo(HaveOccurred())

		config := daemon.DefaultSupervisorConfig(binary, paths.Engine.CurrentConfigPath)
		supervisor = daemon.NewSupervisor(config, infra.NewExecSpawner(), editor, registry, logger)
		supervisor.Start()
		Expect(supervisor.State()).To(Equal(domain.EngineRunning))
		return binary
	}

	Describe("fresh install", func() {
		It("creates the config at the current path and launches with it", func() {
			binary := startEngine()

			info, err := os.Stat(binary)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.Mode().Perm() & 0111).NotTo(BeZero())

			Expect(paths.Engine.CurrentConfigPath).To(BeAnExistingFile())
			Expect(paths.Engine.CurrentSessionPath).To(BeAnExistingFile())
			Expect(paths.Engine.LegacyConfigPath).NotTo(BeAnExistingFile())

			Eventually(install.Launches, 5*time.Second).Should(Equal([]string{
				"--conf-path=" + paths.Engine.CurrentConfigPath,
			}))
		})
	})

	Describe("upgrade install", func() {
		BeforeEach(func() {
			Expect(install.WithLegacyConfig("max-concurrent-downloads=2\n")).To(Succeed())
			Expect(install.WithLegacySession("https://example.com/a.iso\n")).To(Succeed())
		})

		It("moves legacy files and only uses the current location", func() {
			startEngine()

			Expect(paths.Engine.LegacyConfigPath).NotTo(BeAnExistingFile())
			Expect(paths.Engine.LegacySessionPath).NotTo(BeAnExistingFile())

			conf, err := os.ReadFile(paths.Engine.CurrentConfigPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(conf)).To(ContainSubstring("max-concurrent-downloads=2"))
			Expect(string(conf)).To(ContainSubstring("input-file=" + paths.Engine.CurrentSessionPath))

			session, err := os.ReadFile(paths.Engine.CurrentSessionPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(session)).To(Equal("https://example.com/a.iso\n"))

			Eventually(install.Launches, 5*time.Second).Should(HaveLen(1))
			Expect(install.Launches()[0]).To(Equal("--conf-path=" + paths.Engine.CurrentConfigPath))
		})

		It("keeps the current config when both copies exist", func() {
			Expect(os.MkdirAll(paths.UserDataDir, 0755)).To(Succeed())
			Expect(os.WriteFile(paths.Engine.CurrentConfigPath, []byte("split=8\n"), 0644)).To(Succeed())

			startEngine()

			conf, err := os.ReadFile(paths.Engine.CurrentConfigPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(conf)).To(ContainSubstring("split=8"))
			Expect(string(conf)).NotTo(ContainSubstring("max-concurrent-downloads"))
			Expect(paths.Engine.LegacyConfigPath).NotTo(BeAnExistingFile())
		})
	})

	Describe("supervision", func() {
		It("respawns the engine after it is killed externally", func() {
			startEngine()
			firstPID := supervisor.PID()
			Eventually(install.Launches, 5*time.Second).Should(HaveLen(1))

			Expect(syscall.Kill(firstPID, syscall.SIGKILL)).To(Succeed())

			var ev daemon.Event
			Eventually(supervisor.Events(), 5*time.Second).Should(Receive(&ev))
			Expect(ev.Kind).To(Equal(daemon.EventExited))
			supervisor.HandleEvent(ev)

			Expect(supervisor.PID()).NotTo(Equal(firstPID))
			Expect(supervisor.Restarts()).To(Equal(1))
			Eventually(install.Launches, 5*time.Second).Should(HaveLen(2))
		})

		It("stops the engine on kill without restarting it", func() {
			startEngine()
			pid := supervisor.PID()
			pm := infra.NewProcessManager()

			supervisor.Kill()

			Eventually(func() bool { return pm.IsRunning(pid) }, 5*time.Second).Should(BeFalse())
			Consistently(supervisor.Events(), 300*time.Millisecond).ShouldNot(Receive())

			rec, err := registry.Load()
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.State).To(Equal(domain.EngineStopped))
		})
	})
})
