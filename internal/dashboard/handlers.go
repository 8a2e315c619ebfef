package dashboard

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/osegonte/fbintel/internal/stats"
	"github.com/osegonte/fbintel/internal/storage"
)

const indexHTML = `<!DOCTYPE html>
<html>
<head><title>Football Intelligence</title></head>
<body>
  <h1>⚽ Football Intelligence</h1>
  <p>JSON API endpoints:</p>
  <ul>
    <li><a href="/health">/health</a></li>
    <li><a href="/api/matches">/api/matches</a> — ?from=&amp;to=&amp;team=&amp;competition=&amp;source=&amp;limit=&amp;offset=</li>
    <li><a href="/api/teams">/api/teams</a></li>
    <li><a href="/api/stats">/api/stats</a></li>
    <li><a href="/api/sources">/api/sources</a></li>
    <li><a href="/metrics">/metrics</a></li>
  </ul>
</body>
</html>`

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "healthy",
		"uptime_seconds": int(time.Since(s.startedAt).Seconds()),
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleMatches(w http.ResponseWriter, r *http.Request) {
	filter, err := parseMatchFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	matches, err := s.data.List(r.Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("matches query failed")
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(matches),
		"matches": matches,
	})
}

func (s *Server) handleTeams(w http.ResponseWriter, r *http.Request) {
	tr, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	limit := parseIntParam(r, "limit", 50)

	summaries, err := s.data.Summaries(r.Context(), tr, limit)
	if err != nil {
		log.Error().Err(err).Msg("teams query failed")
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(summaries),
		"teams": summaries,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	filter, err := parseMatchFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter.Limit = 1 << 20

	matches, err := s.data.List(r.Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("stats query failed")
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, stats.Compute(matches))
}

func (s *Server) handleCompetitions(w http.ResponseWriter, r *http.Request) {
	filter, err := parseMatchFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	filter.Limit = 1 << 20

	matches, err := s.data.List(r.Context(), filter)
	if err != nil {
		log.Error().Err(err).Msg("competitions query failed")
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	report := stats.Compute(matches)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":        len(report.ByCompetition),
		"competitions": report.ByCompetition,
	})
}

func (s *Server) handleSources(w http.ResponseWriter, r *http.Request) {
	tr, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	counts, err := s.data.CountBySource(r.Context(), tr)
	if err != nil {
		log.Error().Err(err).Msg("sources query failed")
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"sources": counts})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "not found")
}

// parseRange reads from/to query params, defaulting to a week either side of
// today so recent results and upcoming fixtures both show.
func parseRange(r *http.Request) (storage.TimeRange, error) {
	now := time.Now().UTC().Truncate(24 * time.Hour)
	tr := storage.TimeRange{From: now.AddDate(0, 0, -7), To: now.AddDate(0, 0, 7)}

	if from := r.URL.Query().Get("from"); from != "" {
		t, err := time.Parse("2006-01-02", from)
		if err != nil {
			return tr, err
		}
		tr.From = t
	}
	if to := r.URL.Query().Get("to"); to != "" {
		t, err := time.Parse("2006-01-02", to)
		if err != nil {
			return tr, err
		}
		tr.To = t
	}
	return tr, nil
}

func parseMatchFilter(r *http.Request) (storage.MatchFilter, error) {
	tr, err := parseRange(r)
	if err != nil {
		return storage.MatchFilter{}, err
	}
	q := r.URL.Query()
	return storage.MatchFilter{
		Range:       tr,
		Team:        q.Get("team"),
		Competition: q.Get("competition"),
		Source:      q.Get("source"),
		Limit:       parseIntParam(r, "limit", 100),
		Offset:      parseIntParam(r, "offset", 0),
	}, nil
}

func parseIntParam(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
