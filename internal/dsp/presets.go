package dsp

// Presets is the small built-in EQ preset table referenced by the Engine
// Config's eq_preset field. Presets are applied once at startup by the
// composition root; they never become invented mid-session engine state.
var Presets = map[string]map[string]float64{
	"flat": {},
	"rock": {
		"31": 4, "62": 3, "125": 0, "250": -2, "500": -1,
		"1k": 1, "2k": 2, "4k": 3, "8k": 3, "16k": 3,
	},
	"pop": {
		"31": -1, "62": 1, "125": 3, "250": 3, "500": 1,
		"1k": -1, "2k": -1, "4k": 1, "8k": 2, "16k": 2,
	},
	"classical": {
		"31": 3, "62": 2, "125": 1, "250": 0, "500": 0,
		"1k": 0, "2k": 0, "4k": -1, "8k": -1, "16k": -2,
	},
	"bass-boost": {
		"31": 8, "62": 6, "125": 4, "250": 1, "500": 0,
		"1k": 0, "2k": 0, "4k": 0, "8k": 0, "16k": 0,
	},
}

// Preset returns the gain map for a named built-in preset. ok is false for
// an unrecognized name.
func Preset(name string) (map[string]float64, bool) {
	gains, ok := Presets[name]
	if !ok {
		return nil, false
	}
	out := make(map[string]float64, len(gains))
	for k, v := range gains {
		out[k] = v
	}
	return out, true
}
