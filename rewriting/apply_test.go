package rewriting

import (
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/hunterpope03/c-l-system-studio/lsystem"
)

var _ = Describe("Apply", func() {
	var (
		current *WorkingBuffer
		next    *WorkingBuffer
	)

	makeBuffers := func(alloc Allocator, content string, capacity int) {
		var err error

		current, err = NewWorkingBuffer("Current", alloc, capacity)
		Expect(err).NotTo(HaveOccurred())
		Expect(current.Append([]byte(content))).To(Succeed())

		next, err = NewWorkingBuffer("Next", alloc, capacity)
		Expect(err).NotTo(HaveOccurred())
	}

	It("should rewrite every symbol that has a rule", func() {
		makeBuffers(HeapAllocator{}, "X", 10)
		rules := lsystem.NewRuleSet(
			lsystem.Rule{Symbol: 'X', Replacement: "F[+X][-X]FX"},
			lsystem.Rule{Symbol: 'F', Replacement: "FF"},
		)

		Expect(Apply(current, rules, EstimateGrowth(rules), next)).To(Succeed())

		Expect(string(next.Bytes())).To(Equal("F[+X][-X]FX"))
		Expect(string(current.Bytes())).To(Equal("X"))
	})

	It("should copy symbols without rules", func() {
		makeBuffers(HeapAllocator{}, "F+[G]-a", 20)
		rules := lsystem.NewRuleSet(
			lsystem.Rule{Symbol: 'F', Replacement: "FF"},
		)

		Expect(Apply(current, rules, 2.0, next)).To(Succeed())

		Expect(string(next.Bytes())).To(Equal("FF+[G]-a"))
	})

	It("should discard what next held before", func() {
		makeBuffers(HeapAllocator{}, "F", 20)
		Expect(next.Append([]byte("junk"))).To(Succeed())
		rules := lsystem.NewRuleSet(
			lsystem.Rule{Symbol: 'F', Replacement: "F+F"},
		)

		Expect(Apply(current, rules, 3.0, next)).To(Succeed())

		Expect(string(next.Bytes())).To(Equal("F+F"))
	})

	It("should grow next to the predicted size before the pass", func() {
		var err error

		current, err = NewWorkingBuffer("Current", HeapAllocator{}, 200)
		Expect(err).NotTo(HaveOccurred())
		Expect(current.Append([]byte(strings.Repeat("F", 100)))).To(Succeed())
		next, err = NewWorkingBuffer("Next", HeapAllocator{}, 10)
		Expect(err).NotTo(HaveOccurred())

		rules := lsystem.NewRuleSet(
			lsystem.Rule{Symbol: 'F', Replacement: "FF"},
		)

		Expect(Apply(current, rules, 2.0, next)).To(Succeed())

		Expect(next.Len()).To(Equal(200))
		Expect(next.Capacity()).To(Equal(240))
		Expect(next.Resizes()).To(Equal(1))
	})

	It("should resize on demand when growth is underestimated", func() {
		makeBuffers(HeapAllocator{}, "F", 4)
		rules := lsystem.NewRuleSet(
			lsystem.Rule{Symbol: 'F', Replacement: "FFFFFFFFFF"},
		)

		Expect(Apply(current, rules, 1.5, next)).To(Succeed())

		Expect(next.Len()).To(Equal(10))
		Expect(next.Capacity()).To(Equal(11 + ResizeHeadroom))
	})

	It("should leave current intact when next cannot grow", func() {
		alloc := NewBudgetAllocator(15)
		makeBuffers(alloc, "FF", 4)
		rules := lsystem.NewRuleSet(
			lsystem.Rule{Symbol: 'F', Replacement: "FFFFF"},
		)

		err := Apply(current, rules, 5.0, next)

		var allocErr *AllocationError
		Expect(err).To(BeAssignableToTypeOf(allocErr))
		allocErr = err.(*AllocationError)
		Expect(allocErr.Stage).To(Equal(StagePredictiveGrow))
		Expect(allocErr.Requested).To(Equal(12))

		Expect(string(current.Bytes())).To(Equal("FF"))
		Expect(next.Len()).To(Equal(0))
		Expect(alloc.InUse()).To(Equal(8))
	})
})
