// Package extract turns raw LLM output into structured requirement answers.
package extract

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"
)

// ArchiveNeeds values accepted from the model.
const (
	ArchiveNone    = "none"
	ArchivePartial = "partial"
	ArchiveFull    = "full"
)

// Answers holds the structured fields extracted from an assistant reply.
// Absent fields stay at their unknown defaults; they are never guessed.
type Answers struct {
	Blockchains           []string `json:"blockchains"`
	RequestVolumePerMonth *int64   `json:"request_volume_per_month"`
	ArchiveNeeds          *string  `json:"archive_needs"`
	GeoPreference         *string  `json:"geo_preference"`
	BudgetMonthlyCents    *int64   `json:"budget_monthly_cents"`
}

// Result is the outcome of parsing one assistant reply.
type Result struct {
	AssistantText string
	Answers       Answers
	RawText       string
}

// fallbackAssistantText is shown when the reply was nothing but the answers
// block (or empty), so the user never sees a blank assistant turn.
const fallbackAssistantText = "Could you tell me a bit more about your requirements?"

var answersBlock = regexp.MustCompile(`(?is)<answers>(.*?)</answers>`)

// Defaults returns the all-unknown answer set.
func Defaults() Answers {
	return Answers{Blockchains: []string{}}
}

// Parse extracts structured answers from raw LLM output and strips the
// machine-readable block from the user-facing text. It is total: any input,
// including garbage, yields the all-unknown defaults rather than an error.
func Parse(raw string) Result {
	answers := Defaults()

	if match := answersBlock.FindStringSubmatch(raw); match != nil {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal([]byte(strings.TrimSpace(match[1])), &fields); err == nil {
			answers = merge(answers, fields)
		}
	}

	assistantText := strings.TrimSpace(answersBlock.ReplaceAllString(raw, ""))
	if assistantText == "" {
		assistantText = fallbackAssistantText
	}

	return Result{
		AssistantText: assistantText,
		Answers:       answers,
		RawText:       raw,
	}
}

// merge overrides defaults field by field, accepting a value only when its
// JSON type matches the declared type. A malformed field never invalidates
// the others.
func merge(answers Answers, fields map[string]json.RawMessage) Answers {
	if raw, ok := fields["blockchains"]; ok {
		var values []interface{}
		if json.Unmarshal(raw, &values) == nil {
			for _, v := range values {
				if s, ok := v.(string); ok {
					answers.Blockchains = append(answers.Blockchains, s)
				}
			}
		}
	}

	if n, ok := decodeInt(fields["request_volume_per_month"]); ok {
		answers.RequestVolumePerMonth = &n
	}

	if raw, ok := fields["archive_needs"]; ok {
		var s string
		if json.Unmarshal(raw, &s) == nil {
			if s == ArchiveNone || s == ArchivePartial || s == ArchiveFull {
				answers.ArchiveNeeds = &s
			}
		}
	}

	if raw, ok := fields["geo_preference"]; ok {
		var s string
		if json.Unmarshal(raw, &s) == nil {
			answers.GeoPreference = &s
		}
	}

	if n, ok := decodeInt(fields["budget_monthly_cents"]); ok {
		answers.BudgetMonthlyCents = &n
	}

	return answers
}

// decodeInt accepts only integral JSON numbers. Fractional values are
// dropped rather than truncated, so the field stays unknown.
func decodeInt(raw json.RawMessage) (int64, bool) {
	if raw == nil {
		return 0, false
	}
	var f float64
	if json.Unmarshal(raw, &f) != nil {
		return 0, false
	}
	if f != math.Trunc(f) {
		return 0, false
	}
	return int64(f), true
}
