// Package demo wires the three bundled demos onto the orchestration patterns:
// country info (fan-out + synthesize), mood handoff (classify-then-branch)
// and product suggestion (single pass). Each constructor takes the shared
// completion backend so tests can run the demos against a model.MockModel.
package demo

import (
	"fmt"
	"time"

	"github.com/hupe1980/agentrelay/agent"
	"github.com/hupe1980/agentrelay/flow"
	"github.com/hupe1980/agentrelay/logging"
	"github.com/hupe1980/agentrelay/model"
	"github.com/hupe1980/agentrelay/mood"
	"github.com/hupe1980/agentrelay/runner"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Agent instructions.
const (
	CapitalInstructions    = "Return ONLY the capital city of the provided country. No explanation."
	LanguageInstructions   = "Return ONLY the main language spoken in the provided country. No explanation."
	PopulationInstructions = "Return ONLY the population of the provided country in short format (e.g., '241 million')."

	CountrySummaryInstructions = `You are a smart assistant that summarizes the results from 3 agents: Capital, Language, and Population.

Respond like this:
'The capital of [country] is [capital], the language is [language], and the population is [population].'

If any value is missing, reply:
'I cannot fulfill that request. Please provide a valid country name.'`

	MoodInstructions = "You're a mood analysis bot. Read the user's message and respond with ONLY ONE word: " +
		"happy, sad, angry, excited, stressed, or neutral. No extra text or explanation."

	UpliftInstructions = "If the user's mood is sad, stressed, or angry, suggest a simple and comforting activity.\n\n" +
		"Use this format:\n" +
		"🧘 Suggested Activity: [activity]\n💬 Note: [encouraging message]"

	StoreInstructions = "Suggest a relevant medicine or product based on the user's problem. " +
		"Include a short, clear reason.\n\n" +
		"Format:\n🤖 Suggestion: [product]\n📌 Reason: [explanation]"
)

// Fixed user-facing messages of the mood demo.
const (
	MoodAcknowledgment = "✅ You're doing well! Keep up the positive vibes! 🌟"
	MoodNotRecognized  = "⚠️ Mood not recognized. Try expressing it differently."
)

// Options configures the demo flows.
type Options struct {
	// Logger is shared by agents and flows.
	Logger logging.Logger
	// Concurrent fans the country specialists out in parallel.
	Concurrent bool
	// Timeout bounds each completion call (0 = none).
	Timeout time.Duration
}

func buildOptions(optFns []func(o *Options)) Options {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return opts
}

func newAgent(name, instructions string, llm model.Model, opts Options) *agent.Agent {
	return agent.New(name, instructions, llm, func(o *agent.Options) {
		o.Logger = opts.Logger
		o.Timeout = opts.Timeout
	})
}

// NewCountryInfo builds the country info flow: capital, language and
// population finders feeding one summarizing agent.
func NewCountryInfo(llm model.Model, optFns ...func(o *Options)) *flow.FanOut {
	opts := buildOptions(optFns)

	fields := []flow.Field{
		{Label: "Capital", Agent: newAgent("Capital Finder", CapitalInstructions, llm, opts)},
		{Label: "Language", Agent: newAgent("Language Finder", LanguageInstructions, llm, opts)},
		{Label: "Population", Agent: newAgent("Population Finder", PopulationInstructions, llm, opts)},
	}

	synthesizer := newAgent("Country Info Orchestrator", CountrySummaryInstructions, llm, opts)

	return flow.NewFanOut("country-info", "Country", fields, synthesizer, func(o *flow.FanOutOptions) {
		o.Concurrent = opts.Concurrent
		o.Logger = opts.Logger
	})
}

// NewMoodHandoff builds the mood flow: a mood detector whose negative labels
// are handed off to an uplift agent.
func NewMoodHandoff(llm model.Model, optFns ...func(o *Options)) *flow.Branch {
	opts := buildOptions(optFns)

	detector := newAgent("Mood Detector", MoodInstructions, llm, opts)
	uplift := newAgent("Uplift Buddy", UpliftInstructions, llm, opts)

	return flow.NewBranch("mood-handoff", detector, uplift, mood.ParseLabel, func(o *flow.BranchOptions) {
		o.Acknowledgment = MoodAcknowledgment
		o.NotRecognized = MoodNotRecognized
		o.Render = RenderMood
		o.Logger = opts.Logger
	})
}

// RenderMood prints the detected mood followed by the outcome text.
func RenderMood(o flow.Outcome) string {
	return fmt.Sprintf("🔍 Detected Mood: %s\n%s\n", o.Classification, o.Text)
}

// NewProductSuggest builds the single-agent smart store flow.
func NewProductSuggest(llm model.Model, optFns ...func(o *Options)) *flow.Single {
	opts := buildOptions(optFns)

	store := newAgent("Smart Store Agent", StoreInstructions, llm, opts)

	return flow.NewSingle("product-suggest", store, func(o *flow.SingleOptions) {
		o.Logger = opts.Logger
	})
}

// TitleCase normalizes a country name ("united kingdom" -> "United Kingdom").
func TitleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// CountryInfoSession configures the interaction loop of the country demo.
func CountryInfoSession(o *runner.Options) {
	o.Greeting = "🌍 Welcome to the Country Info Toolkit! (Type 'exit' to quit)\n"
	o.Prompt = "🔎 Enter a country name: "
	o.Farewell = "👋 Goodbye!"
	o.Normalize = TitleCase
	o.ResultPrefix = "\n📘 Country Summary:\n"
	o.ResultSuffix = "\n"
	o.ErrorNotice = "❌ An error occurred:"
}

// MoodHandoffSession configures the interaction loop of the mood demo.
func MoodHandoffSession(o *runner.Options) {
	o.Greeting = "🌈 Welcome to the Mood Analyzer! (Type 'exit' to quit)\n"
	o.Prompt = "🗣️ How are you feeling? "
	o.Farewell = "👋 Take care! Stay strong and positive.\n"
	o.RejectEmpty = true
	o.EmptyNotice = "⚠️ Please enter a message to analyze.\n"
	o.ErrorNotice = "❌ An error occurred:"
}

// ProductSuggestSession configures the interaction loop of the store demo.
func ProductSuggestSession(o *runner.Options) {
	o.Greeting = "🛒 Welcome to the Smart Store! Describe your issue (or type 'exit' to quit):"
	o.Prompt = "🗣️ You: "
	o.Farewell = "👋 Goodbye! Take care."
	o.ResultSuffix = "\n"
	o.ErrorNotice = "❌ An error occurred:"
}
