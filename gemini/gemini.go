// Package gemini implements [relay.Provider] for the Google Gemini API.
//
// It wraps the google.golang.org/genai SDK, translating between relay's
// domain types and the Gemini API types. Each Complete call is a single
// blocking GenerateContent request.
package gemini

const (
	defaultModel     = "gemini-3.1-pro-preview"
	defaultMaxTokens = 65536
)

// planSystemPrompt steers the one-shot planning call used by the plan tool.
const planSystemPrompt = `You are a planning assistant. Given a goal, produce a short numbered
plan of concrete steps to achieve it. Be specific and keep each step to one
sentence. Do not execute anything; only plan.`
