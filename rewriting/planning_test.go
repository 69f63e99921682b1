package rewriting

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/hunterpope03/c-l-system-studio/lsystem"
)

var _ = Describe("EstimateGrowth", func() {
	It("should use the floor for an empty rule set", func() {
		Expect(EstimateGrowth(lsystem.RuleSet{})).To(Equal(1.5))
	})

	It("should average replacement lengths", func() {
		rules := lsystem.NewRuleSet(
			lsystem.Rule{Symbol: 'F', Replacement: "FF"},
		)

		Expect(EstimateGrowth(rules)).To(Equal(2.0))
	})

	It("should clamp short replacements to the floor", func() {
		rules := lsystem.NewRuleSet(
			lsystem.Rule{Symbol: 'F', Replacement: "F"},
		)

		Expect(EstimateGrowth(rules)).To(Equal(1.5))
	})

	It("should only count symbols that have rules", func() {
		rules := lsystem.NewRuleSet(
			lsystem.Rule{Symbol: 'X', Replacement: "F[+X][-X]FX"},
			lsystem.Rule{Symbol: 'F', Replacement: "FF"},
		)

		Expect(EstimateGrowth(rules)).To(Equal(6.5))
	})

	It("should ignore duplicated rules", func() {
		rules := lsystem.NewRuleSet(
			lsystem.Rule{Symbol: 'F', Replacement: "FF"},
			lsystem.Rule{Symbol: 'F', Replacement: "FFFFFFFF"},
		)

		Expect(EstimateGrowth(rules)).To(Equal(2.0))
	})
})

var _ = Describe("PlanCapacity", func() {
	DescribeTable("initial capacity",
		func(axiomLen int, growth float64, iterations, expected int) {
			Expect(PlanCapacity(axiomLen, growth, iterations)).
				To(Equal(expected))
		},
		Entry("axiom floor", 1, 2.0, 3, 10),
		Entry("estimate", 100, 2.0, 10, 102401),
		Entry("ceiling", 1, 11.0, 8, CapacityCeiling),
		Entry("axiom floor above ceiling", 200_000, 11.0, 8, 2_000_000),
		Entry("no iterations", 7, 11.0, 0, 70),
		Entry("empty axiom", 0, 1.5, 5, 1),
		Entry("overflowing estimate", 15, 1e300, 8, CapacityCeiling),
	)
})

var _ = Describe("NextCapacity", func() {
	It("should add a megabyte of headroom to small buffers", func() {
		Expect(NextCapacity(100, 150)).To(Equal(150 + ResizeHeadroom))
	})

	It("should double large buffers", func() {
		Expect(NextCapacity(2_000_000, 2_000_000)).To(Equal(4_000_000))
	})

	It("should saturate instead of overflowing", func() {
		Expect(NextCapacity(math.MaxInt/2+1, 10)).To(Equal(math.MaxInt))
		Expect(NextCapacity(10, math.MaxInt-1)).To(Equal(math.MaxInt))
	})
})

var _ = Describe("PredictCapacity", func() {
	It("should scale the length by growth and slack", func() {
		Expect(PredictCapacity(100, 2.0)).To(Equal(240))
	})

	It("should truncate", func() {
		Expect(PredictCapacity(1, 3.0)).To(Equal(3))
	})

	It("should predict nothing for an empty generation", func() {
		Expect(PredictCapacity(0, 5.0)).To(Equal(0))
	})
})
