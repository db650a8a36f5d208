package session

import (
	"github.com/steveyiyo/asanasense-backend/internal/core/orchestrator"
	"github.com/steveyiyo/asanasense-backend/pkg/types"
)

// StatusText maps the machine state to the line shown under the camera.
// The error state keeps its specific failure message, and a capability
// failure reported mid-analysis is shown next to the processing line.
func StatusText(st orchestrator.State) string {
	switch st.System {
	case types.StateListening:
		return `Listening… say "analyze" to capture your pose.`
	case types.StateProcessing:
		if st.PendingFailure != "" {
			return "Analyzing your pose… " + st.PendingFailure
		}
		return "Analyzing your pose…"
	case types.StateError:
		if st.Failure != "" {
			return st.Failure
		}
		return "Something went wrong. Press Capture to try again."
	default:
		return "Ready. Press Capture or turn on voice."
	}
}
