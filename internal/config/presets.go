package config

import "sort"

// Presets are complete material setups selectable by name.
var Presets = map[string]func() *Config{
	"copper": DefaultConfig,
	"aluminium": func() *Config {
		c := DefaultConfig()
		c.Name = "aluminium"
		c.Elastic = ElasticConfig{C11: 108.2e9, C12: 61.3e9, C44: 28.5e9, Koef: 1, Shear: "c44"}
		// the softer lattice needs a shorter step for the m=50 flow rule
		c.Dt = 2.5e-4
		c.Steps = 8000
		c.WriteStep = 80
		c.Hardening = HardeningConfig{TauC0: 8e6, TauSat: 60e6, H0: 120, A: 2.25, QLat: 1.4}
		c.HallPetch = HallPetchConfig{Enabled: true, B: 2.86e-10, Ky: 0.04e6}
		c.Recrystallization.Egb = 0.324
		return c
	},
	"elastic": func() *Config {
		c := DefaultConfig()
		c.Name = "elastic"
		c.Grains = 1
		c.Steps = 10
		c.WriteStep = 1
		c.Dt = 1
		c.Loading.Rate = 1e-3
		c.Hardening.TauC0 = 1e15
		c.HallPetch.Enabled = false
		c.GrainSize.RadiusStdDev = 0
		c.Recrystallization.Enabled = false
		c.Output.KeepGrains = true
		return c
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	build, ok := Presets[name]
	if !ok {
		return nil
	}
	return build()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
