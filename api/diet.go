package api

import (
	"net/http"

	"fitgenius/services"
	"fitgenius/utils"

	"github.com/gin-gonic/gin"
)

// GetMealDayHandler returns the meal day for a date, creating it if needed.
// GET /api/profiles/:profileID/diet/days/:date (YYYY-MM-DD or "today")
func (h *APIHandler) GetMealDayHandler(c *gin.Context) {
	profileID, ok := uintParam(c, "profileID")
	if !ok {
		return
	}
	now := h.now()
	raw := c.Param("date")
	if raw == "today" {
		raw = ""
	}
	date, err := utils.ParseDate(raw, now.Location(), now)
	if err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid date. Please use YYYY-MM-DD.", err)
		return
	}
	day, err := h.dietService.GetOrCreateDay(profileID, date)
	if err != nil {
		sendServiceError(c, "Failed to load meal day.", err)
		return
	}
	respondOK(c, "OK", day)
}

// POST /api/diet/days/:dayID/entries
func (h *APIHandler) AddMealEntryHandler(c *gin.Context) {
	dayID, ok := uintParam(c, "dayID")
	if !ok {
		return
	}
	var input services.EntryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid request format.", err)
		return
	}
	entry, err := h.dietService.AddEntry(c.Request.Context(), dayID, input)
	if err != nil {
		sendServiceError(c, "Failed to add meal entry.", err)
		return
	}
	respondOK(c, "Entry added", entry)
}

// PUT /api/diet/entries/:entryID
func (h *APIHandler) UpdateMealEntryHandler(c *gin.Context) {
	entryID, ok := uintParam(c, "entryID")
	if !ok {
		return
	}
	var input services.EntryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid request format.", err)
		return
	}
	entry, err := h.dietService.UpdateEntry(entryID, input)
	if err != nil {
		sendServiceError(c, "Failed to update meal entry.", err)
		return
	}
	respondOK(c, "Entry updated", entry)
}

// DELETE /api/diet/entries/:entryID
func (h *APIHandler) DeleteMealEntryHandler(c *gin.Context) {
	entryID, ok := uintParam(c, "entryID")
	if !ok {
		return
	}
	if err := h.dietService.DeleteEntry(entryID); err != nil {
		sendServiceError(c, "Failed to delete meal entry.", err)
		return
	}
	respondOK(c, "Entry deleted", nil)
}

// SubmitMealDayHandler computes the day's nutrition summary. AI outages
// degrade to local sums and still succeed.
// POST /api/diet/days/:dayID/submit
func (h *APIHandler) SubmitMealDayHandler(c *gin.Context) {
	dayID, ok := uintParam(c, "dayID")
	if !ok {
		return
	}
	day, err := h.dietService.SubmitDay(c.Request.Context(), dayID)
	if err != nil {
		sendServiceError(c, "Failed to submit meal day.", err)
		return
	}
	respondOK(c, "Day submitted", day)
}

// GET /api/profiles/:profileID/diet/stats
func (h *APIHandler) DietStatsHandler(c *gin.Context) {
	profileID, ok := uintParam(c, "profileID")
	if !ok {
		return
	}
	report, err := h.dietService.Stats(profileID, h.now())
	if err != nil {
		sendServiceError(c, "Failed to build diet stats.", err)
		return
	}
	respondOK(c, "OK", report)
}

// POST /api/diet/chat
// Request body: { "message": "string" }
func (h *APIHandler) DietChatHandler(c *gin.Context) {
	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendJSONError(c, http.StatusBadRequest, "Invalid request: message is required.", err)
		return
	}
	reply, err := h.dietService.DietChat(c.Request.Context(), req.Message)
	if err != nil {
		sendServiceError(c, "The nutrition assistant is unavailable.", err)
		return
	}
	respondOK(c, "OK", gin.H{"reply": reply})
}
