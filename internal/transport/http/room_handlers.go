package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/wirelobby/internal/core"
)

// RoomHandlers provides read-only HTTP handlers for the lobby listing.
type RoomHandlers struct {
	hub core.Hub
	log *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(hub core.Hub, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		hub: hub,
		log: logger,
	}
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// RoomResponse represents a room in API responses. Passwords and host
// identities are never exposed here.
type RoomResponse struct {
	Name       string `json:"name"`
	MaxPlayers int    `json:"maxPlayers"`
	Players    int    `json:"players"`
	Sealed     bool   `json:"sealed"`
	Joinable   bool   `json:"joinable"`
}

// RoomsResponse wraps the room listing.
type RoomsResponse struct {
	Rooms []RoomResponse `json:"rooms"`
}

// ListRooms returns every room.
// GET /api/rooms
func (h *RoomHandlers) ListRooms(c *gin.Context) {
	rooms, err := h.hub.Rooms(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list rooms")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "lobby unavailable"})
		return
	}

	resp := RoomsResponse{Rooms: make([]RoomResponse, 0, len(rooms))}
	for i := range rooms {
		resp.Rooms = append(resp.Rooms, roomResponse(&rooms[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// GetRoom returns a single room by name.
// GET /api/rooms/:name
func (h *RoomHandlers) GetRoom(c *gin.Context) {
	name := c.Param("name")

	room, ok, err := h.hub.Room(c.Request.Context(), name)
	if err != nil {
		h.log.Error().Err(err).Str("room", name).Msg("failed to get room")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "lobby unavailable"})
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "room not found"})
		return
	}
	c.JSON(http.StatusOK, roomResponse(&room))
}

func roomResponse(snap *core.RoomSnapshot) RoomResponse {
	players := len(snap.Players)
	return RoomResponse{
		Name:       snap.Name,
		MaxPlayers: snap.MaxPlayers,
		Players:    players,
		Sealed:     snap.Sealed,
		Joinable:   !snap.Sealed && players < snap.MaxPlayers,
	}
}
