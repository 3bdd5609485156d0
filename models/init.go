package models

// InitResponse defines the structure for the /api/init endpoint response.
type InitResponse struct {
	HasProfile   bool          `json:"has_profile"`
	Profile      *Profile      `json:"profile,omitempty"`
	Overview     *PlanOverview `json:"overview,omitempty"`
	AIConfigured bool          `json:"ai_configured"`
	Model        string        `json:"model"`
	SyncEnabled  bool          `json:"sync_enabled"`
}

// PlanOverview is the dashboard view of the active plan at a moment in time.
type PlanOverview struct {
	Plan          *Plan       `json:"plan"`
	CycleDays     int         `json:"cycle_days"`
	TodayPosition int         `json:"today_position"`
	CycleWeek     int         `json:"cycle_week"` // Cycle repetition count, not a calendar week
	Today         *Day        `json:"today,omitempty"`
	Schedule      []DayAnchor `json:"schedule"`
}

// DayAnchor pins a cycle day to its date in the current repetition.
type DayAnchor struct {
	DayNumber int    `json:"day_number"`
	Date      string `json:"date"` // YYYY-MM-DD
	IsToday   bool   `json:"is_today"`
}
