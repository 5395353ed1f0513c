// Package mood defines the closed label set produced by the mood classifier.
// New moods are added here as enum members; the branch disposition of each
// is decided in one place.
package mood

import "github.com/hupe1980/agentrelay/flow"

// Mood is a classifier label. The zero value is Unrecognized.
type Mood int

const (
	// Unrecognized is any classifier output outside the label set.
	Unrecognized Mood = iota
	// Happy mood.
	Happy
	// Sad mood.
	Sad
	// Angry mood.
	Angry
	// Excited mood.
	Excited
	// Stressed mood.
	Stressed
	// Neutral mood.
	Neutral
)

var names = map[Mood]string{
	Unrecognized: "unrecognized",
	Happy:        "happy",
	Sad:          "sad",
	Angry:        "angry",
	Excited:      "excited",
	Stressed:     "stressed",
	Neutral:      "neutral",
}

// All returns every known mood in declaration order, excluding Unrecognized.
func All() []Mood {
	return []Mood{Happy, Sad, Angry, Excited, Stressed, Neutral}
}

// Parse normalizes raw classifier output and maps it onto the label set.
func Parse(raw string) Mood {
	normalized := flow.Normalize(raw)
	for _, m := range All() {
		if names[m] == normalized {
			return m
		}
	}
	return Unrecognized
}

// ParseLabel adapts Parse to flow.ParseFunc.
func ParseLabel(normalized string) flow.Label {
	return Parse(normalized)
}

// String returns the lower-case mood name.
func (m Mood) String() string {
	if n, ok := names[m]; ok {
		return n
	}
	return names[Unrecognized]
}

// Disposition maps negative moods to remediation and positive or neutral
// moods to a static acknowledgment.
func (m Mood) Disposition() flow.Disposition {
	switch m {
	case Sad, Stressed, Angry:
		return flow.Remediate
	case Happy, Excited, Neutral:
		return flow.Acknowledge
	default:
		return flow.Unrecognized
	}
}
