package rewriting

import (
	"bytes"
	"log"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/hunterpope03/c-l-system-studio/lsystem"
)

var _ = Describe("LogHook", func() {
	var (
		out    *bytes.Buffer
		engine *Engine
	)

	BeforeEach(func() {
		out = new(bytes.Buffer)
		engine = MakeBuilder().Build()
		engine.AcceptHook(NewLogHook(log.New(out, "", 0)))
	})

	It("should log the progress of an expansion", func() {
		rules := lsystem.NewRuleSet(
			lsystem.Rule{Symbol: 'X', Replacement: "F[+X][-X]FX"},
			lsystem.Rule{Symbol: 'F', Replacement: "FF"},
		)

		_, err := engine.Expand([]byte("X"), rules, 1)

		Expect(err).NotTo(HaveOccurred())
		Expect(strings.Split(strings.TrimSpace(out.String()), "\n")).
			To(Equal([]string{
				"Engine: Seeding",
				"Engine: Iterating 1/1",
				"Engine.BufB: Resize (append) 10 -> 1000012, needed 12, length 0",
				"Engine.BufA: Grow (scratch-grow) 10 -> 22, needed 22, length 0",
				"Engine: swap after iteration 1, length 11, capacity 1000012",
				"Engine: Finalizing (growth 6.500, planned capacity 10, 2 resizes)",
				"Engine: finalized, length 11",
				"Engine: Done",
			}))
	})

	It("should log failures", func() {
		mockCtrl := gomock.NewController(GinkgoT())
		alloc := NewMockAllocator(mockCtrl)
		engine = MakeBuilder().
			WithName("Plant").
			WithAllocator(alloc).
			Build()
		engine.AcceptHook(NewLogHook(log.New(out, "", 0)))

		alloc.EXPECT().Allocate(10).Return(nil, ErrAllocationFailure)

		_, err := engine.Expand([]byte("F"), lsystem.RuleSet{}, 1)

		Expect(err).To(HaveOccurred())
		Expect(out.String()).To(ContainSubstring(
			"Plant: Failed: allocation failure: seed of 10 bytes for Plant.BufA"))
	})

	It("should log a failed shrink", func() {
		mockCtrl := gomock.NewController(GinkgoT())
		alloc := NewMockAllocator(mockCtrl)
		engine = MakeBuilder().WithAllocator(alloc).Build()
		engine.AcceptHook(NewLogHook(log.New(out, "", 0)))

		gomock.InOrder(
			alloc.EXPECT().Allocate(10).Return(make([]byte, 0, 10), nil),
			alloc.EXPECT().Allocate(10).Return(make([]byte, 0, 10), nil),
			alloc.EXPECT().Allocate(2).Return(nil, ErrAllocationFailure),
		)
		alloc.EXPECT().Release(gomock.Any())

		_, err := engine.Expand([]byte("F"), lsystem.RuleSet{}, 0)

		Expect(err).NotTo(HaveOccurred())
		Expect(out.String()).To(ContainSubstring(
			"Engine: shrink failed, keeping capacity 10 for length 1"))
	})
})
