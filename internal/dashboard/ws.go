package dashboard

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/osegonte/fbintel/internal/pipeline"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Dashboard is local-only; same-origin enforcement is not useful here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsMessage frames every event sent over the collection socket.
type wsMessage struct {
	Type    string             `json:"type"` // "day" | "done" | "error"
	Day     *pipeline.DayEvent `json:"day,omitempty"`
	Summary *pipeline.Result   `json:"summary,omitempty"`
	Error   string             `json:"error,omitempty"`
}

// handleCollectWS runs a collection and streams one event per completed day.
// The socket closes when the run finishes.
func (s *Server) handleCollectWS(w http.ResponseWriter, r *http.Request) {
	days := parseIntParam(r, "days", 7)
	if days < 1 || days > 60 {
		writeError(w, http.StatusBadRequest, "days must be between 1 and 60")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	var writeMu sync.Mutex
	send := func(msg wsMessage) {
		writeMu.Lock()
		defer writeMu.Unlock()
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(msg); err != nil {
			log.Debug().Err(err).Msg("websocket write failed")
		}
	}

	from := time.Now().UTC()
	result, err := s.collector.Run(r.Context(), from, days, func(ev pipeline.DayEvent) {
		e := ev
		send(wsMessage{Type: "day", Day: &e})
	})
	if err != nil {
		send(wsMessage{Type: "error", Error: err.Error()})
		return
	}
	send(wsMessage{Type: "done", Summary: result})
}
