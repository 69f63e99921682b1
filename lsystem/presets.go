package lsystem

import "sort"

var presets = []LSystem{
	{
		Name:  "binary-bush",
		Axiom: "X",
		Rules: NewRuleSet(
			Rule{Symbol: 'X', Replacement: "F[+X][-X]FX"},
			Rule{Symbol: 'F', Replacement: "FF"},
		),
		Iterations:     10,
		TurnAngle:      45,
		StartDirection: 0,
	},
	{
		Name:  "fractal-plant",
		Axiom: "-X",
		Rules: NewRuleSet(
			Rule{Symbol: 'X', Replacement: "F-[[X]+X]+F[+FX]-X"},
			Rule{Symbol: 'F', Replacement: "FF"},
		),
		Iterations:     8,
		TurnAngle:      25,
		StartDirection: 90,
	},
	{
		Name:  "weed",
		Axiom: "Y",
		Rules: NewRuleSet(
			Rule{Symbol: 'X', Replacement: "X[-FFF][+FFF]FX"},
			Rule{Symbol: 'Y', Replacement: "YFX[+Y][-Y]"},
		),
		Iterations:     10,
		TurnAngle:      25.7,
		StartDirection: 90,
	},
	{
		Name:  "bush",
		Axiom: "F",
		Rules: NewRuleSet(
			Rule{Symbol: 'F', Replacement: "FF+[+F-F-F]-[-F+F+F]"},
		),
		Iterations:     6,
		TurnAngle:      22.5,
		StartDirection: 90,
	},
	{
		Name:  "sticks",
		Axiom: "VZFFF",
		Rules: NewRuleSet(
			Rule{Symbol: 'V', Replacement: "[+++W][---W]YV"},
			Rule{Symbol: 'W', Replacement: "+X[-W]Z"},
			Rule{Symbol: 'X', Replacement: "-W[+X]Z"},
			Rule{Symbol: 'Y', Replacement: "YZ"},
			Rule{Symbol: 'Z', Replacement: "[-FFF][+FFF]F"},
		),
		Iterations:     14,
		TurnAngle:      20,
		StartDirection: 90,
	},
	{
		Name:  "koch-island",
		Axiom: "F+F+F+F",
		Rules: NewRuleSet(
			Rule{Symbol: 'F', Replacement: "FF+F+F+F+FF"},
		),
		Iterations:     6,
		TurnAngle:      90,
		StartDirection: 0,
	},
	{
		Name:  "sierpinski-arrowhead",
		Axiom: "YF",
		Rules: NewRuleSet(
			Rule{Symbol: 'X', Replacement: "YF+XF+Y"},
			Rule{Symbol: 'Y', Replacement: "XF-YF-X"},
		),
		Iterations:     11,
		TurnAngle:      60,
		StartDirection: 180,
	},
	{
		Name:  "pentaplexity",
		Axiom: "F++F++F++F++F",
		Rules: NewRuleSet(
			Rule{Symbol: 'F', Replacement: "F++F++F+++++F-F++F"},
		),
		Iterations:     6,
		TurnAngle:      36,
		StartDirection: 0,
	},
	{
		Name:  "dragon-curve",
		Axiom: "FX",
		Rules: NewRuleSet(
			Rule{Symbol: 'X', Replacement: "X+YF+"},
			Rule{Symbol: 'Y', Replacement: "-FX-Y"},
		),
		Iterations:     18,
		TurnAngle:      90,
		StartDirection: 0,
	},
	{
		Name:  "gosper-curve",
		Axiom: "XF",
		Rules: NewRuleSet(
			Rule{Symbol: 'X', Replacement: "X+YF++YF-FX--FXFX-YF+"},
			Rule{Symbol: 'Y', Replacement: "-FX+YFYF++YF+FX--FX-Y"},
		),
		Iterations:     5,
		TurnAngle:      60,
		StartDirection: 0,
	},
}

// Presets returns the built-in library of systems in catalog order.
func Presets() []LSystem {
	out := make([]LSystem, len(presets))
	copy(out, presets)

	return out
}

// PresetNames returns the names of the built-in systems, sorted.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for _, p := range presets {
		names = append(names, p.Name)
	}

	sort.Strings(names)

	return names
}

// Preset returns the built-in system with the given name.
func Preset(name string) (LSystem, bool) {
	for _, p := range presets {
		if p.Name == name {
			return p, true
		}
	}

	return LSystem{}, false
}
