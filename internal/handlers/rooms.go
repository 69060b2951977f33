package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/chiptally/chiptally/internal/table"
)

// CreateRoomHandler handles POST /api/rooms {name} and returns the created
// room, including its generated join code.
func CreateRoomHandler(srv *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Name string `json:"name"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "Invalid JSON body."})
			return
		}
		if strings.TrimSpace(req.Name) == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "Room name is required."})
			return
		}

		room, err := srv.Engine.CreateRoom(r.Context(), strings.TrimSpace(req.Name))
		if err != nil {
			srv.Logger.Errorf("Failed to create room: %v", err)
			http.Error(w, "Server Error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusCreated, room)
	}
}

// GetRoomHandler handles GET /api/rooms/{code}. Lookup is case-insensitive.
func GetRoomHandler(srv *Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		code := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/rooms/"), "/")
		if code == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"msg": "Room code is required."})
			return
		}

		room, err := srv.Engine.GetRoom(r.Context(), code)
		if errors.Is(err, table.ErrRoomNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"msg": "Room not found."})
			return
		}
		if err != nil {
			srv.Logger.Errorf("Failed to load room %s: %v", code, err)
			http.Error(w, "Server Error", http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, room)
	}
}
