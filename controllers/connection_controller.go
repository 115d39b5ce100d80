package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"am4m_server/services"

	"github.com/gorilla/mux"
)

// ConnectionController struct
type ConnectionController struct {
	ConnectionService *services.ConnectionService
}

// NewConnectionController initializes the controller
func NewConnectionController(service *services.ConnectionService) *ConnectionController {
	return &ConnectionController{ConnectionService: service}
}

// HandleRequestConnection - User sends a connection request
func (c *ConnectionController) HandleRequestConnection(w http.ResponseWriter, r *http.Request) {
	var request struct {
		RequesterID string `json:"requesterId"`
		ReceiverID  string `json:"receiverId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	log.Printf("🤝 %s requested a connection with %s", request.RequesterID, request.ReceiverID)

	conn, err := c.ConnectionService.RequestConnection(r.Context(), request.RequesterID, request.ReceiverID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, conn)
}

// HandleAcceptConnection - Receiver accepts a pending request
func (c *ConnectionController) HandleAcceptConnection(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ConnectionID string `json:"connectionId"`
		UserID       string `json:"userId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	log.Printf("✅ %s accepted connection %s", request.UserID, request.ConnectionID)

	conn, err := c.ConnectionService.AcceptConnection(r.Context(), request.ConnectionID, request.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, conn)
}

// HandleDeclineConnection - Receiver declines a pending request
func (c *ConnectionController) HandleDeclineConnection(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ConnectionID string `json:"connectionId"`
		UserID       string `json:"userId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	log.Printf("🚫 %s declined connection %s", request.UserID, request.ConnectionID)

	conn, err := c.ConnectionService.DeclineConnection(r.Context(), request.ConnectionID, request.UserID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, conn)
}

// HandleGetPendingConnections - Fetch pending requests addressed to a user
func (c *ConnectionController) HandleGetPendingConnections(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	if userID == "" {
		http.Error(w, `{"error": "Missing userId"}`, http.StatusBadRequest)
		return
	}

	pending, err := c.ConnectionService.ListPendingForReceiver(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pending)
}

// HandleGetAcceptedConnections - Fetch accepted connections for a user
func (c *ConnectionController) HandleGetAcceptedConnections(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	if userID == "" {
		http.Error(w, `{"error": "Missing userId"}`, http.StatusBadRequest)
		return
	}

	accepted, err := c.ConnectionService.ListAcceptedForUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, accepted)
}
