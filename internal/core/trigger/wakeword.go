package trigger

import (
	"errors"
	"regexp"
	"strings"
)

var DefaultWakeWords = []string{"analyze", "analyse", "analyzing", "click", "capture"}

// WakeWord matches utterances against a set of whole words, ignoring case.
type WakeWord struct {
	re *regexp.Regexp
}

func NewWakeWord(words []string) (*WakeWord, error) {
	var quoted []string
	for _, w := range words {
		if w = strings.TrimSpace(w); w != "" {
			quoted = append(quoted, regexp.QuoteMeta(w))
		}
	}
	if len(quoted) == 0 {
		return nil, errors.New("trigger: no wake words")
	}
	re, err := regexp.Compile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
	if err != nil {
		return nil, err
	}
	return &WakeWord{re: re}, nil
}

func (w *WakeWord) Match(utterance string) bool {
	return w.re.MatchString(utterance)
}
