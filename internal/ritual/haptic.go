package ritual

// Feedback is the kind of haptic the device should play.
type Feedback int

const (
	FeedbackLight Feedback = iota + 1
	FeedbackMedium
	FeedbackHeavy
	FeedbackSuccess
)

func (f Feedback) String() string {
	switch f {
	case FeedbackLight:
		return "light"
	case FeedbackMedium:
		return "medium"
	case FeedbackHeavy:
		return "heavy"
	case FeedbackSuccess:
		return "success"
	}
	return "none"
}

// IntensityFor grows stronger as the countdown approaches zero.
func IntensityFor(remaining int) Feedback {
	switch {
	case remaining > 10:
		return FeedbackLight
	case remaining > 5:
		return FeedbackMedium
	default:
		return FeedbackHeavy
	}
}
