package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/matchreel-dev/matchreel/internal/config"
	"github.com/matchreel-dev/matchreel/internal/handlers"
	"github.com/matchreel-dev/matchreel/internal/middleware"
)

func NewRouter(cfg *config.Config) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Uploaded avatars are served straight from the media root.
	r.Static("/media", cfg.MediaDir)

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register)
			auth.POST("/login", handlers.Login)
			auth.POST("/logout", handlers.Logout)
			auth.POST("/google", handlers.GoogleLogin)
			auth.POST("/password/reset", handlers.RequestPasswordReset)
			auth.POST("/password/reset/confirm", handlers.ConfirmPasswordReset)

			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
			auth.POST("/password/change", middleware.AuthMiddleware(), handlers.ChangePassword)
			auth.DELETE("/account", middleware.AuthMiddleware(), handlers.DeleteAccount)
		}

		profile := api.Group("/profile", middleware.AuthMiddleware())
		{
			profile.GET("", handlers.GetProfile)
			profile.PATCH("", handlers.UpdateProfile)
			profile.POST("/avatar", handlers.UploadAvatar)
		}

		highlights := api.Group("/highlights")
		{
			highlights.GET("", handlers.ListHighlights)
			highlights.GET("/:id", handlers.GetHighlight)
			highlights.GET("/:id/comments", handlers.ListComments)

			highlights.POST("/:id/comments", middleware.AuthMiddleware(), handlers.AddComment)
			highlights.POST("/:id/favorite", middleware.AuthMiddleware(), handlers.ToggleFavorite)
			highlights.GET("/:id/rating", middleware.AuthMiddleware(), handlers.GetRating)

			staff := highlights.Group("", middleware.AuthMiddleware(), middleware.RequireStaff())
			{
				staff.POST("", handlers.CreateHighlight)
				staff.PUT("/:id", handlers.UpdateHighlight)
				staff.DELETE("/:id", handlers.DeleteHighlight)
				staff.POST("/import", handlers.ImportHighlights)
				staff.POST("/bulk-delete", handlers.BulkDeleteHighlights)
			}
		}

		api.POST("/ratings", middleware.AuthMiddleware(), handlers.SubmitRating)
		api.DELETE("/comments/:id", middleware.AuthMiddleware(), handlers.DeleteComment)
		api.GET("/favorites", middleware.AuthMiddleware(), handlers.ListFavorites)
		api.GET("/top-rated", handlers.TopRated)

		standings := api.Group("/standings")
		{
			standings.GET("", handlers.ListStandings)
			standings.GET("/seasons", handlers.ListSeasons)

			staff := standings.Group("", middleware.AuthMiddleware(), middleware.RequireStaff())
			{
				staff.POST("", handlers.CreateStanding)
				staff.PUT("/:id", handlers.UpdateStanding)
				staff.DELETE("/:id", handlers.DeleteStanding)
				staff.POST("/upload", handlers.UploadStandings)
				staff.POST("/clear-season", handlers.ClearSeason)
			}
		}

		schedules := api.Group("/schedules")
		{
			schedules.GET("", handlers.ListSchedules)
			schedules.GET("/matches", handlers.MatchesByDate)
			schedules.GET("/export", handlers.ExportSchedules)
			schedules.GET("/:id", handlers.GetSchedule)
			schedules.GET("/:id/ics", handlers.ExportScheduleICS)

			staff := schedules.Group("", middleware.AuthMiddleware(), middleware.RequireStaff())
			{
				staff.POST("", handlers.CreateSchedule)
				staff.PUT("/:id", handlers.UpdateSchedule)
				staff.DELETE("/:id", handlers.DeleteSchedule)
				staff.POST("/import", handlers.ImportSchedules)
			}
		}
	}

	return r
}
