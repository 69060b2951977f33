// internal/handlers/ws.go
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/chiptally/chiptally/internal/models"
	"github.com/chiptally/chiptally/internal/table"
)

// ClientMessage is the envelope for every inbound websocket message. Fields
// are populated per message type; unknown fields are ignored.
type ClientMessage struct {
	Type string `json:"type"`

	RoomCode   string `json:"roomCode,omitempty"`
	PlayerID   string `json:"playerId,omitempty"`
	PlayerName string `json:"playerName,omitempty"`

	// Balance is the starting stack for player:add. Omitted means the house
	// default.
	Balance *int `json:"balance,omitempty"`

	Action string `json:"action,omitempty"`

	// Amount is kept as a json.Number so a fractional raise can be rejected
	// as invalid instead of being silently truncated.
	Amount json.Number `json:"amount,omitempty"`

	Mode      string   `json:"mode,omitempty"`
	WinnerIDs []string `json:"winnerIds,omitempty"`
}

// WSHandler upgrades the connection and runs the read loop. Every connection
// gets its own id in the session registry; the registry entry (player binding
// and room subscription included) is dropped when the read loop exits.
func WSHandler(logger *logrus.Logger, srv *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: []string{"*"}, // Adjust for production security.
		})
		if err != nil {
			logger.Warnf("WebSocket accept error from %s: %v", r.RemoteAddr, err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "Internal server error during handler exit.")

		connID := uuid.New()
		srv.Sessions.Register(connID, c)
		srv.Monitor.ConnOpened()
		logger.WithFields(logrus.Fields{"conn": connID, "remote": r.RemoteAddr}).Info("WebSocket connected")

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		readClientMessages(ctx, c, connID, srv, logger)

		srv.Sessions.Unregister(connID)
		srv.Monitor.ConnClosed()
		logger.WithFields(logrus.Fields{"conn": connID, "remote": r.RemoteAddr}).Info("WebSocket disconnected")
		c.Close(websocket.StatusNormalClosure, "")
	}
}

// readClientMessages reads, decodes and dispatches messages until the
// connection closes or the context is cancelled.
func readClientMessages(ctx context.Context, c *websocket.Conn, connID uuid.UUID, srv *Server, logger *logrus.Logger) {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
				logger.Infof("WebSocket closed normally for connection %s.", connID)
			} else if strings.Contains(err.Error(), "context canceled") {
				logger.Infof("WebSocket context canceled for connection %s.", connID)
			} else {
				logger.Warnf("Error reading from WebSocket for connection %s: %v (Status: %d)", connID, err, status)
			}
			return
		}
		if msgType != websocket.MessageText {
			logger.Warnf("Received non-text message type %d from connection %s. Ignoring.", msgType, connID)
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warnf("Invalid JSON received from connection %s: %v. Data: %s", connID, err, string(data))
			srv.Sessions.Send(connID, table.Event{Type: table.EventErrServer, Message: "Invalid JSON format."})
			continue
		}

		logger.Debugf("Received message '%s' from connection %s.", msg.Type, connID)
		dispatch(ctx, srv, connID, msg, logger)

		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// dispatch routes one decoded message. Engine rejections are turned into
// typed error events for the requesting connection only; successful mutations
// broadcast room:update from inside the engine.
func dispatch(ctx context.Context, srv *Server, connID uuid.UUID, msg ClientMessage, logger *logrus.Logger) {
	switch msg.Type {
	case "room:join":
		room, err := srv.Engine.GetRoom(ctx, msg.RoomCode)
		if err != nil {
			srv.sendError(connID, err)
			return
		}
		srv.Sessions.JoinRoom(connID, msg.RoomCode)
		// Re-link a reconnecting client to its seat if the id still resolves.
		if msg.PlayerID != "" {
			if playerID, err := uuid.Parse(msg.PlayerID); err == nil && room.PlayerByID(playerID) != nil {
				srv.Sessions.Bind(connID, playerID)
				logger.Infof("Re-linked connection %s to player %s in room %s", connID, playerID, room.Code)
			}
		}
		srv.Sessions.Send(connID, table.Event{Type: table.EventRoomUpdate, Room: room})

	case "player:add":
		if strings.TrimSpace(msg.PlayerName) == "" {
			srv.Sessions.Send(connID, table.Event{Type: table.EventErrServer, Message: "Player name is required."})
			return
		}
		balance := models.DefaultBalance
		if msg.Balance != nil && *msg.Balance >= 0 {
			balance = *msg.Balance
		}
		_, player, err := srv.Engine.AddPlayer(ctx, msg.RoomCode, strings.TrimSpace(msg.PlayerName), balance)
		if err != nil {
			srv.sendError(connID, err)
			return
		}
		srv.Sessions.JoinRoom(connID, msg.RoomCode)
		srv.Sessions.Bind(connID, player.ID)
		srv.Sessions.Send(connID, table.Event{Type: table.EventPlayerAssigned, Player: player})

	case "player:action":
		playerID, ok := srv.Sessions.Resolve(connID)
		if !ok {
			srv.sendError(connID, table.ErrNotAuthorized)
			return
		}
		action := table.Action(msg.Action)
		amount := 0
		if action == table.ActionRaise {
			v, err := msg.Amount.Int64()
			if err != nil {
				srv.sendError(connID, table.ErrInvalidRaise)
				return
			}
			amount = int(v)
		}
		if _, err := srv.Engine.HandleAction(ctx, msg.RoomCode, playerID, action, amount); err != nil {
			srv.sendError(connID, err)
		}

	case "player:leave":
		playerID, ok := srv.Sessions.Resolve(connID)
		if !ok {
			srv.sendError(connID, table.ErrNotAuthorized)
			return
		}
		if _, err := srv.Engine.Leave(ctx, msg.RoomCode, playerID, table.LeaveMode(msg.Mode)); err != nil {
			srv.sendError(connID, err)
		}

	case "player:rejoin":
		playerID, ok := srv.Sessions.Resolve(connID)
		if !ok {
			srv.sendError(connID, table.ErrNotAuthorized)
			return
		}
		if _, err := srv.Engine.Rejoin(ctx, msg.RoomCode, playerID); err != nil {
			srv.sendError(connID, err)
		}

	case "round:award":
		winnerIDs := make([]uuid.UUID, 0, len(msg.WinnerIDs))
		for _, raw := range msg.WinnerIDs {
			if id, err := uuid.Parse(raw); err == nil {
				winnerIDs = append(winnerIDs, id)
			}
		}
		if _, err := srv.Engine.AwardPot(ctx, msg.RoomCode, winnerIDs); err != nil {
			srv.sendError(connID, err)
		}

	case "round:reset":
		if _, err := srv.Engine.ResetRound(ctx, msg.RoomCode); err != nil {
			srv.sendError(connID, err)
		}

	case "ping":
		srv.Sessions.Send(connID, table.Event{Type: table.EventPong})

	default:
		srv.Sessions.Send(connID, table.Event{
			Type:    table.EventErrServer,
			Message: fmt.Sprintf("Unknown message type: %s", msg.Type),
		})
	}
}

// sendError delivers the typed error event to the requester and counts it.
func (srv *Server) sendError(connID uuid.UUID, err error) {
	ev := errorEvent(err)
	srv.Monitor.RequestError(strings.TrimPrefix(string(ev.Type), "error:"))
	srv.Sessions.Send(connID, ev)
}
