package api

import (
	"net/http"

	"fitgenius/config"
	"fitgenius/models"
	"fitgenius/utils"

	"github.com/gin-gonic/gin"
)

// ClientChatRequest is the assistant message sent by the client.
type ClientChatRequest struct {
	Content string               `json:"content" binding:"required"`
	Mode    models.AssistantMode `json:"mode,omitempty"` // "edit" (default) or "suggest"
}

// ChatHandler sends one message to the plan assistant. The response holds
// the messages appended by this turn and whether a regeneration awaits
// confirmation.
// POST /api/profiles/:profileID/assistant/messages
func (h *APIHandler) ChatHandler(c *gin.Context) {
	profileID, ok := uintParam(c, "profileID")
	if !ok {
		return
	}
	var req ClientChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid request format.", err)
		return
	}
	if req.Mode != "" && req.Mode != models.AssistantModeEdit && req.Mode != models.AssistantModeSuggest {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid mode. Allowed values: edit, suggest.", nil)
		return
	}

	reply, err := h.assistantService.SendMessage(c.Request.Context(), profileID, req.Content, req.Mode)
	if err != nil {
		sendServiceError(c, "Failed to process message.", err)
		return
	}
	respondOK(c, "OK", reply)
}

// POST /api/profiles/:profileID/assistant/confirm
func (h *APIHandler) ConfirmRegenerationHandler(c *gin.Context) {
	profileID, ok := uintParam(c, "profileID")
	if !ok {
		return
	}
	reply, err := h.assistantService.ConfirmRegeneration(c.Request.Context(), profileID)
	if err != nil {
		sendServiceError(c, "Failed to regenerate plan.", err)
		return
	}
	respondOK(c, "OK", reply)
}

// POST /api/profiles/:profileID/assistant/cancel
func (h *APIHandler) CancelRegenerationHandler(c *gin.Context) {
	profileID, ok := uintParam(c, "profileID")
	if !ok {
		return
	}
	reply, err := h.assistantService.CancelRegeneration(profileID)
	if err != nil {
		sendServiceError(c, "Failed to cancel regeneration.", err)
		return
	}
	respondOK(c, "OK", reply)
}

// GET /api/profiles/:profileID/assistant/messages?limit=
func (h *APIHandler) TranscriptHandler(c *gin.Context) {
	profileID, ok := uintParam(c, "profileID")
	if !ok {
		return
	}
	limit := queryInt(c, "limit", config.AppConfig.Assistant.HistoryLimit)
	messages, err := h.assistantService.GetTranscript(profileID, limit)
	if err != nil {
		sendServiceError(c, "Failed to load transcript.", err)
		return
	}
	respondOK(c, "OK", messages)
}

// DELETE /api/profiles/:profileID/assistant/messages
func (h *APIHandler) ClearTranscriptHandler(c *gin.Context) {
	profileID, ok := uintParam(c, "profileID")
	if !ok {
		return
	}
	messages, err := h.assistantService.ClearTranscript(profileID)
	if err != nil {
		sendServiceError(c, "Failed to clear transcript.", err)
		return
	}
	respondOK(c, "Transcript cleared", messages)
}
