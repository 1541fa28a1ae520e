package coach

import (
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	pion "github.com/pion/webrtc/v3"

	"github.com/lenscoach/lenscoach/pkg/config"
	"github.com/lenscoach/lenscoach/pkg/logger"
	"github.com/lenscoach/lenscoach/pkg/network/httpx"
)

// handleSignal accepts a JSON offer and replies with a complete
// (non-trickle) JSON answer.
func (h *Hub) handleSignal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	var offer pion.SessionDescription
	if err := json.NewDecoder(r.Body).Decode(&offer); err != nil ||
		offer.Type != pion.SDPTypeOffer || offer.SDP == "" {
		http.Error(w, "malformed offer", http.StatusBadRequest)
		return
	}
	answer, err := h.handleOffer(offer)
	if err != nil {
		h.log.Error().Err(err).Msg("signaling failed")
		status := http.StatusInternalServerError
		if errors.Is(err, ErrNegotiation) {
			status = http.StatusBadRequest
		}
		http.Error(w, "negotiation failed", status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(answer); err != nil {
		h.log.Error().Err(err).Msg("answer write failed")
	}
}

func index(conf config.Coach, log *logger.Logger) httpx.Handler {
	tpl, err := template.ParseFiles("./web/index.html")
	if err != nil {
		log.Fatal().Err(err).Msg("the web root is missing")
	}
	return httpx.HandlerFunc(func(w httpx.ResponseWriter, r *httpx.Request) {
		// return 404 on unknown
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		if err := tpl.Execute(w, conf); err != nil {
			log.Error().Err(err).Msg("couldn't render the page")
		}
	})
}

func static(dir string) httpx.Handler {
	return http.StripPrefix("/static/", httpx.FileServer(dir))
}
