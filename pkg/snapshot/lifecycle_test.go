// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package snapshot

import (
	"context"
	"os"
	"path/filepath"

	"github.com/luxfi/restorepoint/pkg/prompts/mocks"
	ginkgo "github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"
	"github.com/stretchr/testify/mock"
)

var _ = ginkgo.Describe("[Lifecycle]", func() {
	var (
		env    *testEnv
		prompt *mocks.Prompter
		ctx    context.Context
	)

	ginkgo.BeforeEach(func() {
		prompt = &mocks.Prompter{}
		env = newTestEnv(filepath.Join(ginkgo.GinkgoT().TempDir(), "store"), prompt)
		ctx = context.Background()
	})

	ginkgo.It("lists nothing before the first create", func() {
		gomega.Expect(env.manager.List()).Should(gomega.BeEmpty())
	})

	ginkgo.It("records exactly the resolved path set", func() {
		env.devices.volumes = []string{"/media/usb1", "/media/usb2"}
		prompt.On("CaptureStringAllowEmpty", mock.Anything).Return("2", nil).Once()

		rec, err := env.manager.Create(ctx, CreateOptions{Kind: KindFull, IncludeRemovable: true})
		gomega.Expect(err).Should(gomega.BeNil())

		list := env.manager.List()
		gomega.Expect(list).Should(gomega.HaveLen(1))
		gomega.Expect(list[0].Name).Should(gomega.Equal(rec.Name))
		gomega.Expect(list[0].IncludedPaths).Should(gomega.Equal([]string{"/etc", "/home", "/media/usb2"}))
	})

	ginkgo.It("orders N records newest first", func() {
		for i := 0; i < 5; i++ {
			_, err := env.manager.Create(ctx, CreateOptions{Kind: KindSystem})
			gomega.Expect(err).Should(gomega.BeNil())
		}
		list := env.manager.List()
		gomega.Expect(list).Should(gomega.HaveLen(5))
		for i := 1; i < len(list); i++ {
			gomega.Expect(list[i-1].CreatedAt.After(list[i].CreatedAt)).Should(gomega.BeTrue())
		}
	})

	ginkgo.It("does not touch the filesystem when restoring an unknown name", func() {
		err := env.manager.Restore(ctx, "nonexistent-name", false)
		gomega.Expect(err).Should(gomega.MatchError(ErrNotFound))
		gomega.Expect(env.archiver.extracted).Should(gomega.BeEmpty())
	})

	ginkgo.It("leaves no record when create is interrupted", func() {
		cctx, cancel := context.WithCancel(ctx)
		env.archiver.cancel = cancel

		_, err := env.manager.Create(cctx, CreateOptions{Kind: KindSystem})
		gomega.Expect(err).ShouldNot(gomega.BeNil())
		gomega.Expect(env.manager.List()).Should(gomega.BeEmpty())
		gomega.Expect(env.manager.Orphans()).Should(gomega.BeEmpty())
	})

	ginkgo.It("keeps state when the confirmation phrase does not match", func() {
		rec, err := env.manager.Create(ctx, CreateOptions{Kind: KindSystem})
		gomega.Expect(err).Should(gomega.BeNil())
		prompt.On("CaptureStringAllowEmpty", mock.Anything).Return("y", nil).Twice()

		gomega.Expect(env.manager.Restore(ctx, rec.Name, false)).Should(gomega.MatchError(ErrCancelled))
		gomega.Expect(env.manager.Delete(ctx, rec.Name, false)).Should(gomega.MatchError(ErrCancelled))
		gomega.Expect(env.archiver.extracted).Should(gomega.BeEmpty())
		gomega.Expect(env.manager.List()).Should(gomega.HaveLen(1))
	})

	ginkgo.It("creates, lists and deletes a system restore point", func() {
		rec, err := env.manager.Create(ctx, CreateOptions{Kind: KindSystem})
		gomega.Expect(err).Should(gomega.BeNil())
		gomega.Expect(rec.Name).Should(gomega.Equal("system_20240101_120000"))
		gomega.Expect(rec.IncludedPaths).Should(gomega.ConsistOf("/etc"))

		list := env.manager.List()
		gomega.Expect(list).Should(gomega.HaveLen(1))
		gomega.Expect(list[0].Kind).Should(gomega.Equal(KindSystem))

		prompt.On("CaptureStringAllowEmpty", mock.Anything).Return("YES", nil).Once()
		gomega.Expect(env.manager.Delete(ctx, "system_20240101_120000", false)).Should(gomega.Succeed())

		gomega.Expect(env.manager.List()).Should(gomega.BeEmpty())
		_, err = os.Stat(filepath.Join(env.baseDir, "system_20240101_120000", "backup.tar.gz"))
		gomega.Expect(os.IsNotExist(err)).Should(gomega.BeTrue())
		prompt.AssertExpectations(ginkgo.GinkgoT())
	})
})
