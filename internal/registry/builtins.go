package registry

// builtins returns the provider table. Google is primary with OpenAI as its
// fallback, and vice versa, so losing either service still leaves the
// platform able to answer.
func builtins() []Descriptor {
	return []Descriptor{
		{
			Name:         "google",
			DefaultModel: "gemini-1.5-flash",
			FallbackTo:   "openai",
			Models: []ModelSpec{
				{
					ID:          "gemini-1.5-flash",
					DisplayName: "Gemini 1.5 Flash (Fast)",
					Description: "Quick responses with good quality",
					MaxTokens:   8192,
				},
				{
					ID:          "gemini-1.5-pro",
					DisplayName: "Gemini 1.5 Pro (Advanced)",
					Description: "Most capable Gemini model for complex tasks",
					MaxTokens:   32768,
				},
				{
					ID:          "gemini-pro",
					DisplayName: "Gemini Pro (Standard)",
					Description: "Reliable performance for most tasks",
					MaxTokens:   4096,
				},
			},
		},
		{
			Name:         "openai",
			DefaultModel: "gpt-4o-mini",
			FallbackTo:   "google",
			Models: []ModelSpec{
				{
					ID:          "gpt-4o-mini",
					DisplayName: "GPT-4o Mini (Fast & Efficient)",
					Description: "Best for quick analysis and cost-effective processing",
					MaxTokens:   16384,
				},
				{
					ID:          "gpt-4o",
					DisplayName: "GPT-4o (Advanced)",
					Description: "Most capable model for complex analysis",
					MaxTokens:   4096,
				},
				{
					ID:          "gpt-4-turbo",
					DisplayName: "GPT-4 Turbo (Balanced)",
					Description: "Good balance of capability and speed",
					MaxTokens:   4096,
				},
				{
					ID:          "gpt-3.5-turbo",
					DisplayName: "GPT-3.5 Turbo (Basic)",
					Description: "Basic analysis capabilities, fastest response",
					MaxTokens:   4096,
				},
			},
		},
	}
}
