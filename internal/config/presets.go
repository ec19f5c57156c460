package config

import "sort"

func intPtr(v int) *int { return &v }

// Presets are complete configurations selectable by name.
var Presets = map[string]func() *Config{
	"rope": DefaultConfig,
	"heavy-handle": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "heavy-handle"
		cfg.Chain.Count = 6
		cfg.Chain.Segment = 30
		cfg.Chain.HandleMass = 4000
		return cfg
	},
	"long": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "long"
		cfg.Chain.Count = 30
		cfg.Chain.Segment = 10
		cfg.Run.Frames = 1200
		return cfg
	},
	"brace": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "brace"
		cfg.Layout = LayoutBrace
		cfg.Chain.Mass = 10000
		cfg.Chain.Pins = nil
		cfg.Chain.Corners = []VecConfig{{X: 220, Y: 20}, {X: 280, Y: 20}, {X: 280, Y: 60}, {X: 220, Y: 80}}
		cfg.Gravity = VecConfig{X: 0, Y: 5}
		return cfg
	},
	"pendulum": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "pendulum"
		cfg.Chain.Count = 2
		cfg.Chain.Segment = 150
		cfg.Chain.Origin = VecConfig{X: 250, Y: 100}
		cfg.Chain.Pins = []PinConfig{{Index: 0}}
		cfg.Chain.Handle = intPtr(1)
		cfg.Script = []KeyframeConfig{
			{Frame: 0, X: 250, Y: 250, Down: true},
			{Frame: 20, X: 380, Y: 180, Down: true},
			{Frame: 21, X: 380, Y: 180, Down: false},
		}
		return cfg
	},
	"fling": func() *Config {
		cfg := DefaultConfig()
		cfg.Name = "fling"
		cfg.Script = []KeyframeConfig{
			{Frame: 0, X: 250, Y: 175, Down: true},
			{Frame: 30, X: 480, Y: 60, Down: true},
			{Frame: 40, X: 480, Y: 60, Down: false},
		}
		return cfg
	},
}

var descriptions = map[string]string{
	"rope":         "eight links hanging from a pin",
	"heavy-handle": "short rope with a heavy end",
	"long":         "thirty short links",
	"brace":        "free box with a diagonal",
	"pendulum":     "one long link, scripted swing",
	"fling":        "scripted drag past the threshold",
}

// Describe returns a one-line summary of a preset.
func Describe(name string) string {
	return descriptions[name]
}

// Descriptions returns the summary of every preset.
func Descriptions() map[string]string {
	out := make(map[string]string, len(descriptions))
	for k, v := range descriptions {
		out[k] = v
	}
	return out
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
