package sequencer

// NarrativeBackLock is the first onboarding step the user cannot go back from.
const NarrativeBackLock = 3

// NarrativeOnboarding is the five screen introduction shown after sign up.
func NarrativeOnboarding() []Step {
	return []Step{
		{
			Key:      "welcome",
			Headline: "Welcome to Anchor",
			Body:     "Turn what you want into a symbol you can carry.",
			CTA:      "Begin",
		},
		{
			Key:      "intention",
			Headline: "Start with an intention",
			Body:     "Write a short, present-tense statement of what you want.",
			CTA:      "Continue",
		},
		{
			Key:      "sigil",
			Headline: "Your intention becomes a sigil",
			Body:     "Letters are distilled and drawn into a unique anchor.",
			CTA:      "Continue",
		},
		{
			Key:      "charge",
			Headline: "Charge it with focus",
			Body:     "A short timed ritual binds the anchor to your intention.",
			CTA:      "Continue",
		},
		{
			Key:      "activate",
			Headline: "Activate it daily",
			Body:     "A ten second glance keeps the intention alive.",
			CTA:      "Create my first anchor",
		},
	}
}

// CreationWizard lists the anchor creation screens in order.
func CreationWizard() []Step {
	return []Step{
		{Key: "intention", Headline: "What do you want?", Body: "Write your intention.", CTA: "Next"},
		{Key: "category", Headline: "Pick a category", Body: "Which area of life is this about?", CTA: "Next"},
		{Key: "sigil", Headline: "Your sigil", Body: "Generated from your intention.", CTA: "Next"},
		{Key: "reinforcement", Headline: "Make it yours", Body: "Trace over the sigil to reinforce it.", CTA: "Next"},
		{Key: "enhancement", Headline: "Enhance", Body: "Optionally apply an artistic style.", CTA: "Next"},
		{Key: "review", Headline: "Review", Body: "Save the anchor to your vault.", CTA: "Save anchor"},
	}
}
