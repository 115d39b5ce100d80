package controllers

import (
	"net/http"
	"time"

	"am4m_server/services"

	"github.com/gorilla/mux"
)

// ConversationController struct
type ConversationController struct {
	ConversationService *services.ConversationService
	ConnectionService   *services.ConnectionService
	ProfileService      *services.ProfileService
}

// NewConversationController initializes the controller
func NewConversationController(conversations *services.ConversationService, connections *services.ConnectionService, profiles *services.ProfileService) *ConversationController {
	return &ConversationController{
		ConversationService: conversations,
		ConnectionService:   connections,
		ProfileService:      profiles,
	}
}

// HandleGetConversations - Fetch the user's conversation list, most recent first
func (c *ConversationController) HandleGetConversations(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	if userID == "" {
		http.Error(w, `{"error": "Missing userId"}`, http.StatusBadRequest)
		return
	}

	conversations, err := c.ConversationService.ListConversations(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, conversations)
}

// HandleGetDashboardCounts - Fetch the stat tiles for the user's dashboard
func (c *ConversationController) HandleGetDashboardCounts(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	if userID == "" {
		http.Error(w, `{"error": "Missing userId"}`, http.StatusBadRequest)
		return
	}

	pending, err := c.ConnectionService.CountPendingForReceiver(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	conversations, err := c.ConversationService.CountConversations(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	views, err := c.ProfileService.CountRecentViews(r.Context(), userID, 7*24*time.Hour)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{
		"pendingRequests": pending,
		"conversations":   conversations,
		"profileViews":    views,
	})
}
