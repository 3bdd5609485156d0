package api

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts every handler under /api.
func RegisterRoutes(r *gin.Engine, handler *APIHandler) {
	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/init", handler.InitHandler)
		apiGroup.POST("/profiles", handler.CreateProfileHandler)
		apiGroup.POST("/sync/download", handler.SyncDownloadHandler)

		profileGroup := apiGroup.Group("/profiles/:profileID")
		{
			profileGroup.GET("", handler.GetProfileHandler)
			profileGroup.PUT("", handler.UpdateProfileHandler)
			profileGroup.DELETE("", handler.ResetProfileHandler)
			profileGroup.POST("/visit", handler.RecordVisitHandler)

			profileGroup.GET("/plan", handler.GetPlanOverviewHandler)
			profileGroup.POST("/plan/regenerate", handler.RegeneratePlanHandler)

			profileGroup.GET("/assistant/messages", handler.TranscriptHandler)
			profileGroup.POST("/assistant/messages", handler.ChatHandler)
			profileGroup.DELETE("/assistant/messages", handler.ClearTranscriptHandler)
			profileGroup.POST("/assistant/confirm", handler.ConfirmRegenerationHandler)
			profileGroup.POST("/assistant/cancel", handler.CancelRegenerationHandler)

			profileGroup.GET("/diet/days/:date", handler.GetMealDayHandler)
			profileGroup.GET("/diet/stats", handler.DietStatsHandler)
			profileGroup.GET("/stats/training", handler.TrainingStatsHandler)

			profileGroup.POST("/sync/upload", handler.SyncUploadHandler)

			profileGroup.GET("/reminders", handler.ListRemindersHandler)
			profileGroup.POST("/reminders", handler.ScheduleRemindersHandler)
			profileGroup.DELETE("/reminders", handler.CancelRemindersHandler)
		}

		planGroup := apiGroup.Group("/plans/:planID")
		{
			planGroup.POST("/days", handler.AddDayHandler)
			planGroup.DELETE("/days/:dayID", handler.DeleteDayHandler)
			planGroup.POST("/new-cycle", handler.StartNewCycleHandler)
		}

		apiGroup.GET("/days/:dayID", handler.GetDayHandler)
		apiGroup.POST("/days/:dayID/exercises", handler.CreateExerciseHandler)
		apiGroup.PUT("/exercises/:exerciseID", handler.UpdateExerciseHandler)
		apiGroup.DELETE("/exercises/:exerciseID", handler.DeleteExerciseHandler)
		apiGroup.POST("/exercises/:exerciseID/toggle", handler.ToggleExerciseHandler)

		dietGroup := apiGroup.Group("/diet")
		{
			dietGroup.POST("/days/:dayID/entries", handler.AddMealEntryHandler)
			dietGroup.POST("/days/:dayID/submit", handler.SubmitMealDayHandler)
			dietGroup.PUT("/entries/:entryID", handler.UpdateMealEntryHandler)
			dietGroup.DELETE("/entries/:entryID", handler.DeleteMealEntryHandler)
			dietGroup.POST("/chat", handler.DietChatHandler)
		}
	}
}
