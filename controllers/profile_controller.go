package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"am4m_server/models"
	"am4m_server/services"

	"github.com/gorilla/mux"
)

// ProfileController struct
type ProfileController struct {
	ProfileService *services.ProfileService
}

// NewProfileController initializes the controller
func NewProfileController(service *services.ProfileService) *ProfileController {
	return &ProfileController{ProfileService: service}
}

// HandleSaveProfile - Create or update a user profile
func (c *ProfileController) HandleSaveProfile(w http.ResponseWriter, r *http.Request) {
	var profile models.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&profile); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	log.Printf("📝 Saving profile for %s", profile.UserID)

	saved, err := c.ProfileService.SaveProfile(r.Context(), profile)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, saved)
}

// HandleGetOwnProfile - Fetch the caller's own profile, ungated
func (c *ProfileController) HandleGetOwnProfile(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	if userID == "" {
		http.Error(w, `{"error": "Missing userId"}`, http.StatusBadRequest)
		return
	}

	profile, err := c.ProfileService.GetProfile(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// HandleViewProfile - Fetch another member's profile through the
// opposite-gender gate and record the view
func (c *ProfileController) HandleViewProfile(w http.ResponseWriter, r *http.Request) {
	targetID := mux.Vars(r)["userId"]
	viewerID := r.URL.Query().Get("viewerId")
	if targetID == "" || viewerID == "" {
		http.Error(w, `{"error": "Missing userId or viewerId"}`, http.StatusBadRequest)
		return
	}

	profile, err := c.ProfileService.GetProfileForViewer(r.Context(), viewerID, targetID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, profile)
}

// HandleSearchProfiles - Search opposite-gender profiles with filters
func (c *ProfileController) HandleSearchProfiles(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ViewerID string                 `json:"viewerId"`
		Filters  services.SearchFilters `json:"filters"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	results, err := c.ProfileService.SearchProfiles(r.Context(), request.ViewerID, request.Filters)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, results)
}

// HandleDeleteProfile - Remove a profile
func (c *ProfileController) HandleDeleteProfile(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	if userID == "" {
		http.Error(w, `{"error": "Missing userId"}`, http.StatusBadRequest)
		return
	}

	log.Printf("🗑️ Deleting profile for %s", userID)

	if err := c.ProfileService.DeleteProfile(r.Context(), userID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
