// Package funnel defines the fixed lead-intake questionnaire: a linear
// sequence of steps whose answers accumulate into a single key-value record.
package funnel

// Step is one question in the funnel. The sequence is hard-coded; there is
// no branching.
type Step struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Prompt   string `json:"prompt"`
	Required bool   `json:"required"`
}

var Steps = []Step{
	{ID: "goals", Title: "Goals", Prompt: "What should this project achieve for your business?", Required: true},
	{ID: "audience", Title: "Audience", Prompt: "Who is your target audience?", Required: true},
	{ID: "style", Title: "Style", Prompt: "Which brands or sites have a look you admire?", Required: false},
	{ID: "scope", Title: "Scope", Prompt: "What pages or features do you need?", Required: true},
	{ID: "timeline", Title: "Timeline", Prompt: "When do you want to launch?", Required: true},
}

// LastStepIndex is the index of the final step; reaching it with all
// required answers present completes the funnel.
func LastStepIndex() int {
	return len(Steps) - 1
}

// IsKnownStep reports whether id names a step in the sequence.
func IsKnownStep(id string) bool {
	for _, s := range Steps {
		if s.ID == id {
			return true
		}
	}
	return false
}

// MissingRequired returns the ids of required steps with no answer in data.
func MissingRequired(data map[string]string) []string {
	var missing []string
	for _, s := range Steps {
		if s.Required && data[s.ID] == "" {
			missing = append(missing, s.ID)
		}
	}
	return missing
}
