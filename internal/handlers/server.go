package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/chiptally/chiptally/internal/monitor"
	"github.com/chiptally/chiptally/internal/session"
	"github.com/chiptally/chiptally/internal/table"
)

// Server bundles what the HTTP and websocket handlers need: the table engine,
// the connection registry, and optional metrics.
type Server struct {
	Engine   *table.Engine
	Sessions *session.Registry
	Monitor  *monitor.Monitor
	Logger   *logrus.Logger
}

// NewServer wires the registry into the engine's broadcast path.
func NewServer(engine *table.Engine, sessions *session.Registry, mon *monitor.Monitor, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.New()
	}
	engine.Broadcaster = sessions
	engine.Metrics = mon
	return &Server{
		Engine:   engine,
		Sessions: sessions,
		Monitor:  mon,
		Logger:   logger,
	}
}

// errorEvent maps an engine rejection to the typed error event delivered to
// the requesting connection only.
func errorEvent(err error) table.Event {
	var evType table.EventType
	switch {
	case errors.Is(err, table.ErrRoomNotFound):
		evType = table.EventErrRoomNotFound
	case errors.Is(err, table.ErrNotAuthorized):
		evType = table.EventErrNotAuthorized
	case errors.Is(err, table.ErrNotYourTurn):
		evType = table.EventErrNotYourTurn
	case errors.Is(err, table.ErrInvalidRaise):
		evType = table.EventErrInvalidRaise
	case errors.Is(err, table.ErrInsufficientFunds):
		evType = table.EventErrInsufficientFunds
	case errors.Is(err, table.ErrInvalidAward):
		evType = table.EventErrInvalidAward
	case errors.Is(err, table.ErrRoundOver):
		evType = table.EventErrRoundOver
	default:
		return table.Event{Type: table.EventErrServer, Message: "Error processing request."}
	}
	return table.Event{Type: evType, Message: err.Error()}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
