package services

// Metadata keys.
const (
	keyUsername           = "username"
	keySalt               = "salt"
	keyVerifier           = "verifier"
	keyOnboardingComplete = "onboarding_complete"
	keySegment            = "segment"
)
