package types

type SystemState string

const (
	StateReady      SystemState = "ready"
	StateListening  SystemState = "listening"
	StateProcessing SystemState = "processing"
	StateError      SystemState = "error"
)

// Feedback is the structured coaching result of one successful analysis.
type Feedback struct {
	AsanaName           string   `json:"asanaName"`
	AlignmentHighlights []string `json:"alignmentHighlights"`
	ImprovementTips     []string `json:"improvementTips"`
	RiskWarnings        []string `json:"riskWarnings"`
	CoachingCopy        string   `json:"coachingCopy"`
}

type VoicePreference struct {
	Enabled   bool `json:"enabled"`
	Supported bool `json:"supported"`
}

type Speech struct {
	AudioURL   string `json:"audioUrl"`
	DurationMs int64  `json:"durationMs"`
}

// Snapshot is what the presentation layer renders on each cycle.
type Snapshot struct {
	Type            string      `json:"type,omitempty"`
	SessionID       string      `json:"sessionId,omitempty"`
	SystemState     SystemState `json:"systemState"`
	Feedback        *Feedback   `json:"feedback"`
	RawAnalysisText string      `json:"rawAnalysisText"`
	VoiceEnabled    bool        `json:"voiceEnabled"`
	VoiceSupported  bool        `json:"voiceSupported"`
	StatusText      string      `json:"statusText"`
	ShouldSpeak     bool        `json:"shouldSpeak"`
	LastCaptureID   string      `json:"lastCaptureId"`
	Transcript      string      `json:"transcript,omitempty"`
	Speech          *Speech     `json:"speech,omitempty"`
}

// EventReq is the single event the presentation layer may return per cycle.
type EventReq struct {
	Type    string `json:"type"`
	ID      string `json:"id"`
	Source  string `json:"source,omitempty"`
	Image   string `json:"image,omitempty"`
	Enabled *bool  `json:"enabled,omitempty"`
	Message string `json:"message,omitempty"`
	Text    string `json:"text,omitempty"`
}

type CreateSessionReq struct {
	VoiceSupported *bool `json:"voiceSupported"`
	VoiceEnabled   bool  `json:"voiceEnabled"`
}

type CreateSessionResp struct {
	SessionID string   `json:"sessionId"`
	WSURL     string   `json:"wsUrl"`
	Snapshot  Snapshot `json:"snapshot"`
}

type FrameReq struct {
	Image string `json:"image" binding:"required"`
}

type TTSReq struct {
	SessionID string  `json:"sessionId"`
	Text      string  `json:"text"`
	Voice     string  `json:"voice"`
	Speed     float32 `json:"speed"`
	Pitch     float32 `json:"pitch"`
	Format    string  `json:"format"`
}

type TTSResp struct {
	AudioURL   string `json:"audioUrl"`
	DurationMs int64  `json:"durationMs"`
}

type SummaryResp struct {
	SessionID     string      `json:"sessionId"`
	State         SystemState `json:"state"`
	Captures      int64       `json:"captures"`
	Analyses      int64       `json:"analyses"`
	Failures      int64       `json:"failures"`
	Suppressed    int64       `json:"suppressed"`
	Duplicates    int64       `json:"duplicates"`
	LastAsanaName string      `json:"lastAsanaName,omitempty"`
}
