package anchor

// Segment is the onboarding answer that tailors copy and defaults.
type Segment string

const (
	SegmentBeginner     Segment = "beginner"
	SegmentPractitioner Segment = "practitioner"
	SegmentSkeptic      Segment = "skeptic"
)

func (s Segment) Valid() bool {
	switch s {
	case SegmentBeginner, SegmentPractitioner, SegmentSkeptic:
		return true
	}
	return false
}

// SessionFlags is the client's view of who is signed in and how far they got.
type SessionFlags struct {
	Authenticated      bool
	OnboardingComplete bool
	Segment            Segment
}
