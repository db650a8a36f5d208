package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/steveyiyo/asanasense-backend/internal/config"
	"github.com/steveyiyo/asanasense-backend/internal/core/session"
	"github.com/steveyiyo/asanasense-backend/internal/core/tts"
	"github.com/steveyiyo/asanasense-backend/internal/repo/memory"
	"github.com/steveyiyo/asanasense-backend/pkg/types"
)

type okAnalyzer struct{}

func (okAnalyzer) AnalyzeCapture(context.Context, string) (types.Feedback, string, error) {
	return types.Feedback{
		AsanaName:           "Warrior II",
		AlignmentHighlights: []string{"front knee tracks over ankle"},
		ImprovementTips:     []string{"square hips"},
		RiskWarnings:        []string{},
		CoachingCopy:        "Nice stance.",
	}, `{"asanaName":"Warrior II"}`, nil
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	speech := tts.NewGoogleStub("https://tts.test")
	svc, err := session.NewService(ctx, memory.NewStore[*session.Bridge](), okAnalyzer{}, speech, session.Options{}, log)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	t.Cleanup(func() {
		svc.Shutdown()
		cancel()
	})
	return NewRouter(config.Config{Port: "8080"}, svc, speech, log)
}

func do(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createSession(t *testing.T, r *gin.Engine) types.CreateSessionResp {
	t.Helper()
	w := do(t, r, "POST", "/v1/sessions", `{"voiceSupported":true}`)
	if w.Code != stdhttp.StatusOK {
		t.Fatalf("create = %d %s", w.Code, w.Body)
	}
	var resp types.CreateSessionResp
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return resp
}

func TestSessionEventFlow(t *testing.T) {
	r := newTestRouter(t)
	sess := createSession(t, r)
	if !strings.HasPrefix(sess.SessionID, "sess_") || !strings.HasPrefix(sess.WSURL, "ws://localhost:8080/v1/stream?sess=") {
		t.Fatalf("create resp = %+v", sess)
	}
	if sess.Snapshot.SystemState != types.StateReady || !sess.Snapshot.VoiceSupported {
		t.Fatalf("initial snapshot = %+v", sess.Snapshot)
	}

	base := "/v1/sessions/" + sess.SessionID
	w := do(t, r, "POST", base+"/events", `{"type":"capture","id":"c1","source":"manual","image":"data:image/jpeg;base64,AAAA"}`)
	if w.Code != stdhttp.StatusOK {
		t.Fatalf("event = %d %s", w.Code, w.Body)
	}

	var snap types.Snapshot
	deadline := time.Now().Add(2 * time.Second)
	for {
		w = do(t, r, "GET", base, "")
		if err := json.Unmarshal(w.Body.Bytes(), &snap); err != nil {
			t.Fatalf("decode snapshot: %v", err)
		}
		if snap.Feedback != nil || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if snap.Feedback == nil || snap.Feedback.AsanaName != "Warrior II" || snap.LastCaptureID != "c1" {
		t.Fatalf("snapshot = %+v", snap)
	}

	w = do(t, r, "GET", base+"/summary", "")
	var sum types.SummaryResp
	_ = json.Unmarshal(w.Body.Bytes(), &sum)
	if sum.Captures != 1 || sum.Analyses != 1 || sum.LastAsanaName != "Warrior II" {
		t.Fatalf("summary = %+v", sum)
	}

	if w = do(t, r, "DELETE", base, ""); w.Code != stdhttp.StatusNoContent {
		t.Fatalf("delete = %d", w.Code)
	}
	if w = do(t, r, "GET", base, ""); w.Code != stdhttp.StatusNotFound {
		t.Fatalf("get after delete = %d", w.Code)
	}
}

func TestEventValidation(t *testing.T) {
	r := newTestRouter(t)
	base := "/v1/sessions/" + createSession(t, r).SessionID

	tests := []struct {
		body string
		code int
	}{
		{body: `{"type":"capture"}`, code: stdhttp.StatusBadRequest},
		{body: `{"type":"wave","id":"x"}`, code: stdhttp.StatusBadRequest},
		{body: `not json`, code: stdhttp.StatusBadRequest},
		{body: `{"type":"camera_error","id":"e1","message":"denied"}`, code: stdhttp.StatusOK},
	}
	for _, tc := range tests {
		if w := do(t, r, "POST", base+"/events", tc.body); w.Code != tc.code {
			t.Fatalf("POST %s = %d, want %d", tc.body, w.Code, tc.code)
		}
	}
	if w := do(t, r, "POST", "/v1/sessions/sess_missing/events", `{"type":"capture","id":"x"}`); w.Code != stdhttp.StatusNotFound {
		t.Fatalf("missing session = %d", w.Code)
	}
}

func TestFramesAndTTS(t *testing.T) {
	r := newTestRouter(t)
	base := "/v1/sessions/" + createSession(t, r).SessionID

	if w := do(t, r, "POST", base+"/frames", `{"image":"data:image/jpeg;base64,AAAA"}`); w.Code != stdhttp.StatusNoContent {
		t.Fatalf("frame = %d", w.Code)
	}
	if w := do(t, r, "POST", base+"/frames", `{}`); w.Code != stdhttp.StatusBadRequest {
		t.Fatalf("empty frame = %d", w.Code)
	}

	w := do(t, r, "POST", "/v1/tts", `{"text":"Lengthen your spine.","format":"mp3"}`)
	if w.Code != stdhttp.StatusOK || !bytes.Contains(w.Body.Bytes(), []byte("https://tts.test/")) {
		t.Fatalf("tts = %d %s", w.Code, w.Body)
	}
}

func TestWireKeysAreCamelCase(t *testing.T) {
	r := newTestRouter(t)

	w := do(t, r, "POST", "/v1/sessions", `{"voiceSupported":true,"voiceEnabled":true}`)
	var created map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, k := range []string{"sessionId", "wsUrl", "snapshot"} {
		if _, ok := created[k]; !ok {
			t.Fatalf("create response %s lacks %q", w.Body, k)
		}
	}
	var id string
	_ = json.Unmarshal(created["sessionId"], &id)
	var snap types.Snapshot
	_ = json.Unmarshal(created["snapshot"], &snap)
	if !snap.VoiceEnabled || snap.SystemState != types.StateListening {
		t.Fatalf("voiceEnabled request field ignored: %+v", snap)
	}

	w = do(t, r, "GET", "/v1/sessions/"+id+"/summary", "")
	if !bytes.Contains(w.Body.Bytes(), []byte(`"sessionId":`)) {
		t.Fatalf("summary = %s", w.Body)
	}
	w = do(t, r, "POST", "/v1/tts", `{"sessionId":"`+id+`","text":"Breathe in."}`)
	for _, k := range []string{`"audioUrl":`, `"durationMs":`} {
		if !bytes.Contains(w.Body.Bytes(), []byte(k)) {
			t.Fatalf("tts = %s, missing %s", w.Body, k)
		}
	}
}

func TestStreamPushesSnapshots(t *testing.T) {
	r := newTestRouter(t)
	sess := createSession(t, r)
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/stream?sess=" + sess.SessionID
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))

	var hello map[string]any
	if err := conn.ReadJSON(&hello); err != nil || hello["type"] != "hello" {
		t.Fatalf("hello = %v, %v", hello, err)
	}
	var first types.Snapshot
	if err := conn.ReadJSON(&first); err != nil || first.SystemState != types.StateReady {
		t.Fatalf("initial snapshot = %+v, %v", first, err)
	}

	if err := conn.WriteJSON(types.EventReq{Type: "capture", ID: "c1", Image: "data:image/jpeg;base64,AAAA"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	for {
		var s types.Snapshot
		if err := conn.ReadJSON(&s); err != nil {
			t.Fatalf("read: %v", err)
		}
		if s.SystemState == types.StateReady && s.Feedback != nil {
			if !s.ShouldSpeak || s.Speech == nil {
				t.Fatalf("pushed result should be spoken: %+v", s)
			}
			break
		}
	}

	// A redelivered event still gets a snapshot back, without a new analysis.
	if err := conn.WriteJSON(types.EventReq{Type: "capture", ID: "c1"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	var dup types.Snapshot
	if err := conn.ReadJSON(&dup); err != nil {
		t.Fatalf("read: %v", err)
	}
	if dup.SystemState != types.StateReady || dup.ShouldSpeak {
		t.Fatalf("duplicate snapshot = %+v", dup)
	}
}
