package flow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hupe1980/agentrelay/core"
	"github.com/hupe1980/agentrelay/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countryFields() (capital, language, population *testutil.ScriptedAgent, fields []Field) {
	capital = testutil.NewScriptedAgent("Capital Finder").Reply("Islamabad")
	language = testutil.NewScriptedAgent("Language Finder").Reply("Urdu")
	population = testutil.NewScriptedAgent("Population Finder").Reply(" 241 million\n")
	fields = []Field{
		{Label: "Capital", Agent: capital},
		{Label: "Language", Agent: language},
		{Label: "Population", Agent: population},
	}
	return capital, language, population, fields
}

func TestFanOut_Plan(t *testing.T) {
	_, _, _, fields := countryFields()
	f := NewFanOut("country-info", "Country", fields, testutil.NewScriptedAgent("Synth").Reply("ok"))

	assert.Equal(t, "country-info", f.Name())
	assert.Equal(t, Plan{Calls: 4, Synthesize: true}, f.Plan())
}

func TestFanOut_Run_SynthesizesInFixedOrder(t *testing.T) {
	for _, concurrent := range []bool{false, true} {
		capital, language, population, fields := countryFields()
		synth := testutil.NewScriptedAgent("Country Info Orchestrator").Reply("stub summary")

		f := NewFanOut("country-info", "Country", fields, synth, func(o *FanOutOptions) {
			o.Concurrent = concurrent
		})

		out, err := f.Run(context.Background(), "Pakistan")
		require.NoError(t, err)
		assert.Equal(t, "stub summary", out, "synthesizer output is passed through")

		for _, a := range []*testutil.ScriptedAgent{capital, language, population} {
			assert.Equal(t, []string{"Pakistan"}, a.Inputs())
		}

		require.Equal(t, 1, synth.Calls())
		assert.Equal(t,
			"Country: Pakistan, Capital: Islamabad, Language: Urdu, Population: 241 million",
			synth.Inputs()[0],
		)
	}
}

func TestFanOut_Run_FailFast(t *testing.T) {
	boom := errors.New("network down")
	capital := testutil.NewScriptedAgent("Capital Finder").Reply("Islamabad")
	language := testutil.NewScriptedAgent("Language Finder").Fail(boom)
	population := testutil.NewScriptedAgent("Population Finder").Reply("241 million")
	synth := testutil.NewScriptedAgent("Synth").Reply("never")

	f := NewFanOut("country-info", "Country", []Field{
		{Label: "Capital", Agent: capital},
		{Label: "Language", Agent: language},
		{Label: "Population", Agent: population},
	}, synth)

	out, err := f.Run(context.Background(), "Pakistan")
	assert.Empty(t, out)
	assert.ErrorIs(t, err, boom)
	assert.True(t, core.IsProviderFailure(err))

	assert.Equal(t, 0, synth.Calls(), "synthesizer must not run after a specialist failure")
	assert.Equal(t, 0, population.Calls(), "sequential mode stops at the first failure")
}

func TestFanOut_Run_ConcurrentFailFastCancelsSiblings(t *testing.T) {
	boom := errors.New("auth error")
	slow := testutil.NewScriptedAgent("Capital Finder").BlockUntilCanceled()
	failing := testutil.NewScriptedAgent("Language Finder").Fail(boom)
	synth := testutil.NewScriptedAgent("Synth").Reply("never")

	f := NewFanOut("country-info", "Country", []Field{
		{Label: "Capital", Agent: slow},
		{Label: "Language", Agent: failing},
	}, synth, func(o *FanOutOptions) { o.Concurrent = true })

	done := make(chan error, 1)
	go func() {
		_, err := f.Run(context.Background(), "Pakistan")
		done <- err
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, boom)
	case <-time.After(2 * time.Second):
		t.Fatal("fan-out did not cancel the blocked specialist")
	}

	assert.Equal(t, 0, synth.Calls())
}

func TestFanOut_Run_SynthesizerFailureFailsRun(t *testing.T) {
	boom := errors.New("rate limited")
	_, _, _, fields := countryFields()
	synth := testutil.NewScriptedAgent("Synth").Fail(boom)

	out, err := NewFanOut("country-info", "Country", fields, synth).Run(context.Background(), "Pakistan")
	assert.Empty(t, out)
	assert.ErrorIs(t, err, boom)
	assert.True(t, core.IsProviderFailure(err))
}

func TestFanOut_Run_InvalidPlan(t *testing.T) {
	_, err := NewFanOut("empty", "Country", nil, testutil.NewScriptedAgent("Synth")).Run(context.Background(), "x")
	assert.Error(t, err)

	_, _, _, fields := countryFields()
	_, err = NewFanOut("nosynth", "Country", fields, nil).Run(context.Background(), "x")
	assert.Error(t, err)
}

func TestFanOut_Compose(t *testing.T) {
	_, _, _, fields := countryFields()
	f := NewFanOut("country-info", "Country", fields, nil)

	assert.Equal(t,
		"Country: Atlantis, Capital: , Language: , Population: ",
		f.Compose("Atlantis", nil),
	)
}

func TestPlan_StateLimits(t *testing.T) {
	assert.Equal(t,
		map[core.State]int{core.StateRunning: 3, core.StateSynthesize: 1},
		Plan{Calls: 4, Synthesize: true}.stateLimits())
	assert.Equal(t,
		map[core.State]int{core.StateRunning: 2},
		Plan{Calls: 2, Branch: true}.stateLimits())
}
