package ritual

// Phase is one timed segment of a ritual.
type Phase struct {
	Name    string
	Seconds int
}

// Prompt is the text shown from At seconds of elapsed time onwards.
type Prompt struct {
	At   int
	Text string
}

// Total returns the summed duration of phases in seconds.
func Total(phases []Phase) int {
	total := 0
	for _, p := range phases {
		total += p.Seconds
	}
	return total
}

// ActivePhase returns the index of the phase running at elapsed seconds and
// the seconds left in it. Once elapsed reaches the total, the last phase is
// reported with zero remaining. It returns -1 for an empty list.
func ActivePhase(phases []Phase, elapsed int) (index int, remaining int) {
	if len(phases) == 0 {
		return -1, 0
	}
	if elapsed < 0 {
		elapsed = 0
	}
	end := 0
	for i, p := range phases {
		end += p.Seconds
		if elapsed < end {
			return i, end - elapsed
		}
	}
	return len(phases) - 1, 0
}

// PromptAt returns the text of the last prompt whose offset is <= elapsed.
// Prompts must be sorted by offset.
func PromptAt(prompts []Prompt, elapsed int) string {
	text := ""
	for _, p := range prompts {
		if p.At > elapsed {
			break
		}
		text = p.Text
	}
	return text
}
