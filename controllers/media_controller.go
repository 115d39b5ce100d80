package controllers

import (
	"encoding/json"
	"log"
	"net/http"

	"am4m_server/services"
)

// MediaController struct
type MediaController struct {
	MediaService *services.MediaService
}

// NewMediaController initializes the controller
func NewMediaController(service *services.MediaService) *MediaController {
	return &MediaController{MediaService: service}
}

// GenerateUploadURL - Issue a presigned PUT URL for a profile photo or video
func (c *MediaController) GenerateUploadURL(w http.ResponseWriter, r *http.Request) {
	var request struct {
		FileName string `json:"fileName"`
		FileType string `json:"fileType"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.FileName == "" {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	url, key, err := c.MediaService.GenerateUploadURL(request.FileName, request.FileType)
	if err != nil {
		log.Println("❌ Failed to presign upload URL:", err)
		http.Error(w, `{"error": "Failed to generate upload URL"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"uploadUrl": url, "key": key})
}

// GenerateReadURL - Issue a presigned GET URL for a stored media object
func (c *MediaController) GenerateReadURL(w http.ResponseWriter, r *http.Request) {
	var request struct {
		Key string `json:"key"`
	}

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil || request.Key == "" {
		http.Error(w, `{"error": "Invalid request body"}`, http.StatusBadRequest)
		return
	}

	url, err := c.MediaService.GenerateReadURL(request.Key)
	if err != nil {
		log.Println("❌ Failed to presign read URL:", err)
		http.Error(w, `{"error": "Failed to generate read URL"}`, http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"readUrl": url})
}
