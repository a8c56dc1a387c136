package gateway

import "strings"

// Offline responses shown when no provider can serve a call. Selection is a
// simple heuristic over the system prompt so the UI always gets something
// coherent for its context. Each message carries the "test response" marker
// so degraded output is recognizable in transcripts and exports.

const offlineBiasText = `I apologize, but I'm unable to perform the bias analysis at this time due to a technical issue.

However, here are some general questions you can consider when analyzing your vignette for potential bias:

1. **Gender Bias**: Does the scenario make assumptions based on gender or pronouns?
2. **Cultural Bias**: Are there stereotypes related to nationality or cultural background?
3. **Academic Field Bias**: Does the scenario reflect stereotypes about certain fields of study?
4. **Performance Bias**: Are the expectations and outcomes influenced by demographic factors?
5. **Support Bias**: Is the type of support offered influenced by student characteristics?

Note: this is a test response generated without an AI service. For a real bias analysis, provide a valid API key.`

const offlinePromptText = `I apologize, but I'm having trouble processing your request right now. Let me help you with some general prompt engineering guidance:

For creating effective AI prompts, consider including:

1. **Clear Task**: What exactly do you want the AI to do?
2. **Context**: What background information is relevant?
3. **Audience**: Who is this for?
4. **Format**: How should the output be structured?
5. **Tone**: What style or voice should be used?

Note: this is a test response generated without an AI service. Please try again once a provider is configured.`

const offlineGenericText = `I apologize, but I'm having a technical difficulty right now. However, I'd still like to help you learn! Here are some ways we can approach your question:

1. **Break it down**: What specific part would you like to understand better?
2. **Context**: What have you already learned about this topic?
3. **Application**: How do you think this might be used in real situations?

Note: this is a test response generated without an AI service. Please try asking again in a moment.`

// offlineText picks the canned message matching the call's system prompt.
func offlineText(systemPrompt string) string {
	lower := strings.ToLower(systemPrompt)
	switch {
	case strings.Contains(lower, "bias"):
		return offlineBiasText
	case strings.Contains(lower, "prompt engineering"):
		return offlinePromptText
	default:
		return offlineGenericText
	}
}
