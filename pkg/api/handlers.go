package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/DeBrosOfficial/ufwtail/pkg/errors"
	"github.com/DeBrosOfficial/ufwtail/pkg/httputil"
	"github.com/DeBrosOfficial/ufwtail/pkg/logging"
	"github.com/DeBrosOfficial/ufwtail/pkg/pipeline"
)

const maxEntriesLimit = 10_000_000

var (
	errNotReady     = errors.NewInternalError("no snapshot published yet", nil)
	errHostDisabled = errors.NewNotFoundError("host sampling")
)

func (s *Server) routes() {
	s.router.Get("/health", s.handleHealth)
	s.router.Route("/v1", func(r chi.Router) {
		r.Get("/entries", s.handleEntries)
		r.Get("/stats", s.handleStats)
		r.Get("/filters", s.handleFilters)
		r.Get("/host", s.handleHost)
		r.Get("/stream", s.handleStream)
	})
}

func (s *Server) state(w http.ResponseWriter, r *http.Request) (*pipeline.State, bool) {
	st := s.source.State()
	if st == nil || st.View == nil {
		s.writeError(w, r, errNotReady)
		return nil, false
	}
	return st, true
}

// writeError logs err by category and renders it. Internal failures are
// logged with their root cause; client errors only at debug level.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetErrorCode(err)
	fields := []zap.Field{
		zap.String("path", r.URL.Path),
		zap.String("code", code),
		zap.String("category", string(errors.GetCategory(code))),
	}
	switch {
	case errors.IsInternal(err):
		s.logger.ComponentError(logging.ComponentAPI, "request failed",
			append(fields, zap.NamedError("cause", errors.Cause(err)))...)
	case errors.IsNotFound(err):
		s.logger.ComponentDebug(logging.ComponentAPI, "resource unavailable", fields...)
	default:
		s.logger.ComponentDebug(logging.ComponentAPI, "request rejected",
			append(fields, zap.Error(err))...)
	}
	httputil.WriteError(w, r, err)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteStatus(w, http.StatusOK, "ok")
}

// handleEntries returns the visible rows, optionally only those after
// ?since=<seq> and at most the newest ?limit=<n>.
func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	st, ok := s.state(w, r)
	if !ok {
		return
	}
	limit, err := httputil.QueryInt(r, "limit", 0, 0, maxEntriesLimit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	since, err := httputil.QueryUint64(r, "since")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	rows := st.View.Since(since)
	if limit > 0 && len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}
	httputil.WriteJSON(w, http.StatusOK, EntriesResponse{
		Version: st.View.Version,
		Total:   len(st.View.Rows),
		Cursor:  st.View.Cursor,
		Rows:    toRows(rows),
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, ok := s.state(w, r)
	if !ok {
		return
	}
	resp := StatsResponse{
		Stats:       st.Stats,
		Subscribers: s.hub.Len(),
		Published:   st.Published,
	}
	if s.host != nil {
		if snap, ok := s.host.Last(); ok {
			resp.Host = &snap
		}
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHost(w http.ResponseWriter, r *http.Request) {
	if s.host == nil {
		s.writeError(w, r, errHostDisabled)
		return
	}
	snap, ok := s.host.Last()
	if !ok {
		s.writeError(w, r, errNotReady)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, snap)
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	st, ok := s.state(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toFilters(st))
}

// handleStream upgrades to a websocket and forwards every new row. Client
// frames are read and discarded; the stream is one-way.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.ComponentWarn(logging.ComponentAPI, "websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	sub := s.hub.Subscribe()
	defer s.hub.Unsubscribe(sub.ID)

	hello := StreamMessage{Type: MessageHello, Subscriber: sub.ID, LastSeq: s.hub.LastSeq()}
	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteJSON(hello); err != nil {
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case frame, ok := <-sub.Messages():
			if !ok {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"),
					time.Now().Add(time.Second))
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				s.logger.ComponentDebug(logging.ComponentAPI, "stream write failed",
					zap.String("id", sub.ID), zap.Error(err))
				return
			}
		case <-ticker.C:
			_ = conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(time.Second))
		case <-done:
			return
		case <-r.Context().Done():
			return
		}
	}
}
