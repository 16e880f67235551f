package scenario

// BuiltIn returns the predefined load sweeps keyed by name.
func BuiltIn() map[string]Sweep {
	return map[string]Sweep{
		"light": {
			Name:        "Light",
			Description: "Sparse traffic where wake-up collisions are rare and the idle baseline dominates energy.",
			Rates:       []float64{0.001, 0.002, 0.005},
		},
		"moderate": {
			Name:        "Moderate",
			Description: "Around the reference load of 0.02 attempts per ms per node.",
			Rates:       []float64{0.01, 0.02, 0.03, 0.05},
		},
		"saturated": {
			Name:        "Saturated",
			Description: "Dense network pushed past the point where most exchanges collide.",
			Rates:       []float64{0.05, 0.1, 0.2, 0.5},
			Nodes:       20,
		},
	}
}
