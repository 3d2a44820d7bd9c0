//go:build integration && !windows

package integration

import (
	"context"
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/putao520/aria-ng-gui/internal/domain"
	"github.com/putao520/aria-ng-gui/internal/infra"
)

var _ = Describe("Single instance", func() {
	var tmpDir string

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "ariang-instance-*")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	It("lets only one lock holder in and hands activation to it", func() {
		lockPath := filepath.Join(tmpDir, "instance.lock")
		infoPath := filepath.Join(tmpDir, "instance.json")

		primary := infra.NewInstanceLock(lockPath)
		ok, err := primary.TryAcquire()
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		defer primary.Release()

		server, err := infra.StartCommandServer(infoPath, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		commands := make(chan domain.Command, 1)
		go server.Serve(ctx, commands)

		secondary := infra.NewInstanceLock(lockPath)
		ok, err = secondary.TryAcquire()
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())

		Expect(infra.SendCommand(infoPath, domain.Command{Kind: domain.CommandActivate}, time.Second)).To(Succeed())
		Eventually(commands, 2*time.Second).Should(Receive(Equal(domain.Command{Kind: domain.CommandActivate})))
	})

	It("frees the lock when the holder releases it", func() {
		lockPath := filepath.Join(tmpDir, "instance.lock")

		first := infra.NewInstanceLock(lockPath)
		ok, err := first.TryAcquire()
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(first.Release()).To(Succeed())

		second := infra.NewInstanceLock(lockPath)
		ok, err = second.TryAcquire()
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(second.Release()).To(Succeed())
	})
})
