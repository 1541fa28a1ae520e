package coach

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	pion "github.com/pion/webrtc/v3"

	"github.com/lenscoach/lenscoach/pkg/analyze"
	"github.com/lenscoach/lenscoach/pkg/config"
	"github.com/lenscoach/lenscoach/pkg/logger"
	"github.com/lenscoach/lenscoach/pkg/session"
	"github.com/lenscoach/lenscoach/pkg/webrtc"
)

func testHub(t *testing.T) *Hub {
	t.Helper()
	conf := config.Coach{
		DarkMax: 0.45, BrightMin: 0.65, TiltMaxDeg: 7, MaxLines: 8, AnalysisWidth: 320,
		FeedbackLabel:    "coach-feedback",
		AdvisoryInterval: 500 * time.Millisecond,
		PliInterval:      3 * time.Second,
	}
	log := logger.Default()
	api, err := webrtc.NewApiFactory(config.Webrtc{LogLevel: 3}, log, nil)
	if err != nil {
		t.Fatal(err)
	}
	return NewHub(conf, api, analyze.New(conf), session.NewRegistry(log), log)
}

func TestSignalRejectsGet(t *testing.T) {
	h := testHub(t)
	w := httptest.NewRecorder()
	h.handleSignal(w, httptest.NewRequest(http.MethodGet, "/signal", nil))
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %v, want %v", w.Code, http.StatusMethodNotAllowed)
	}
}

func TestSignalRejectsMalformedBody(t *testing.T) {
	h := testHub(t)
	for _, body := range []string{
		"not json at all",
		`{"type":"answer","sdp":"v=0"}`,
		`{"type":"offer","sdp":""}`,
	} {
		w := httptest.NewRecorder()
		h.handleSignal(w, httptest.NewRequest(http.MethodPost, "/signal", strings.NewReader(body)))
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %v, want %v", body, w.Code, http.StatusBadRequest)
		}
	}
}

func TestOfferAnswer(t *testing.T) {
	h := testHub(t)
	client, err := pion.NewPeerConnection(pion.Configuration{})
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = client.Close() }()

	if _, err = client.CreateDataChannel("coach-feedback", nil); err != nil {
		t.Fatal(err)
	}
	if _, err = client.AddTransceiverFromKind(pion.RTPCodecTypeVideo,
		pion.RTPTransceiverInit{Direction: pion.RTPTransceiverDirectionSendonly}); err != nil {
		t.Fatal(err)
	}
	offer, err := client.CreateOffer(nil)
	if err != nil {
		t.Fatal(err)
	}
	gathered := pion.GatheringCompletePromise(client)
	if err = client.SetLocalDescription(offer); err != nil {
		t.Fatal(err)
	}
	<-gathered

	answer, err := h.handleOffer(*client.LocalDescription())
	if err != nil {
		t.Fatal(err)
	}
	if answer.Type != pion.SDPTypeAnswer {
		t.Errorf("answer type = %v", answer.Type)
	}
	if h.sessions.Len() != 1 {
		t.Errorf("registered sessions = %v, want 1", h.sessions.Len())
	}
	if err = client.SetRemoteDescription(*answer); err != nil {
		t.Fatal(err)
	}

	h.sessions.CloseAll()
	if h.sessions.Len() != 0 {
		t.Errorf("sessions left after close: %v", h.sessions.Len())
	}
}

func TestEarlyPeerDeathNotLeftRegistered(t *testing.T) {
	h := testHub(t)
	_, s, err := h.connect()
	if err != nil {
		t.Fatal(err)
	}
	// the peer dies while the answer is still in flight, the close
	// callback fires before the session gets registered
	s.Close()
	if err := h.register(s); err == nil {
		t.Fatal("a dead peer was registered without an error")
	}
	if h.sessions.Len() != 0 {
		t.Errorf("closed session stuck in the registry: %v", h.sessions.Len())
	}
	h.sessions.CloseAll()
	if h.sessions.Len() != 0 {
		t.Errorf("sessions left after close: %v", h.sessions.Len())
	}
}

func TestOfferAnswerGarbageSdp(t *testing.T) {
	h := testHub(t)
	_, err := h.handleOffer(pion.SessionDescription{Type: pion.SDPTypeOffer, SDP: "v=0\r\n"})
	if err == nil {
		t.Fatal("broken SDP was accepted")
	}
	if h.sessions.Len() != 0 {
		t.Errorf("a failed negotiation left %v sessions behind", h.sessions.Len())
	}
}
