package analysis

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/steveyiyo/asanasense-backend/pkg/types"
)

const (
	maxEntries     = 3
	maxCoachingLen = 120
)

var (
	requiredKeys = []string{"asanaName", "alignmentHighlights", "improvementTips", "riskWarnings", "coachingCopy"}
	fenceRe      = regexp.MustCompile("(?is)^```(?:json)?[ \t]*\r?\n?(.*?)\r?\n?```$")
)

// StripFence removes a surrounding Markdown code fence, optionally tagged json.
func StripFence(text string) string {
	text = strings.TrimSpace(text)
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return text
}

// ParseResponse parses the model's reply into Feedback. A reply that is not
// JSON, or that misses any required key, is an ErrParse.
func ParseResponse(text string) (types.Feedback, error) {
	body := StripFence(text)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return types.Feedback{}, fmt.Errorf("%w: %w", ErrParse, err)
	}
	for _, k := range requiredKeys {
		if _, ok := fields[k]; !ok {
			return types.Feedback{}, fmt.Errorf("%w: missing key %q", ErrParse, k)
		}
	}

	var fb types.Feedback
	if err := json.Unmarshal([]byte(body), &fb); err != nil {
		return types.Feedback{}, fmt.Errorf("%w: %w", ErrParse, err)
	}
	if strings.TrimSpace(fb.AsanaName) == "" {
		return types.Feedback{}, fmt.Errorf("%w: empty asanaName", ErrParse)
	}
	fb.AlignmentHighlights = capEntries(fb.AlignmentHighlights)
	fb.ImprovementTips = capEntries(fb.ImprovementTips)
	fb.RiskWarnings = capEntries(fb.RiskWarnings)
	fb.CoachingCopy = capWords(strings.TrimSpace(fb.CoachingCopy), maxCoachingLen)
	return fb, nil
}

func capEntries(in []string) []string {
	out := make([]string, 0, min(len(in), maxEntries))
	for _, s := range in {
		if s = strings.TrimSpace(s); s == "" {
			continue
		}
		if len(out) == maxEntries {
			break
		}
		out = append(out, s)
	}
	return out
}

func capWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return s
	}
	return strings.Join(words[:n], " ") + "…"
}
