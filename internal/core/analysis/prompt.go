package analysis

import "strings"

const basePrompt = `You are an experienced yoga teacher looking at a single photo of a student.
Identify the asana and coach the student on it.
Respond with compact JSON only, no prose and no Markdown, using exactly these keys:
{"asanaName": string, "alignmentHighlights": [string], "improvementTips": [string], "riskWarnings": [string], "coachingCopy": string}
- alignmentHighlights, improvementTips and riskWarnings hold 2 to 3 short entries each; riskWarnings may be empty when nothing is risky.
- coachingCopy is a warm, spoken-style cue under 120 words.
- If no person or pose is visible, set asanaName to "Unknown" and explain in coachingCopy.`

// BuildPrompt returns the analysis instruction. extraContext is appended verbatim.
func BuildPrompt(extraContext string) string {
	if strings.TrimSpace(extraContext) == "" {
		return basePrompt
	}
	return basePrompt + "\n" + extraContext
}
