package ritual

import "time"

// QuickCharge is the 30 second initial charge.
func QuickCharge() Config {
	return Config{
		Name:           "quick_charge",
		Phases:         []Phase{{Name: "Charge", Seconds: 30}},
		HapticInterval: 5,
		Prompts: []Prompt{
			{At: 0, Text: "Focus on your anchor"},
			{At: 10, Text: "Feel your intention as already true"},
			{At: 20, Text: "Pour your energy into the symbol"},
			{At: 27, Text: "Let it go"},
		},
		CompletionDelay: 1500 * time.Millisecond,
	}
}

// DeepCharge is the five phase, five minute charge.
func DeepCharge() Config {
	return Config{
		Name: "deep_charge",
		Phases: []Phase{
			{Name: "Breathe", Seconds: 30},
			{Name: "Focus", Seconds: 60},
			{Name: "Visualize", Seconds: 90},
			{Name: "Embody", Seconds: 30},
			{Name: "Release", Seconds: 90},
		},
		HapticInterval: 15,
		Prompts: []Prompt{
			{At: 0, Text: "Breathe slowly and settle in"},
			{At: 30, Text: "Fix your gaze on the anchor"},
			{At: 90, Text: "See your intention fulfilled"},
			{At: 180, Text: "Feel it in your body"},
			{At: 210, Text: "Release the intention and let the symbol hold it"},
		},
		CompletionDelay: 2 * time.Second,
	}
}

// Activation is the short visual activation.
func Activation() Config {
	return Config{
		Name:           "activation",
		Phases:         []Phase{{Name: "Activate", Seconds: 10}},
		HapticInterval: 2,
		Prompts: []Prompt{
			{At: 0, Text: "Look at your anchor"},
			{At: 5, Text: "Let it sink in"},
		},
		CompletionDelay: 1500 * time.Millisecond,
	}
}
