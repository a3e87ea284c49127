package routes

import (
	"time"

	"club18/handlers"
	"club18/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter() *gin.Engine {
	router := gin.Default()

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:8080", "http://127.0.0.1:8080", "http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Public routes, rate limited against credential hammering.
	authLimit := middleware.RateLimit(20, time.Minute)
	router.POST("/api/signup", authLimit, handlers.Signup)
	router.POST("/api/login", authLimit, handlers.Login)
	router.GET("/api/google/auth-url", handlers.GetGoogleAuthURL)
	router.GET("/api/google/callback", authLimit, handlers.GoogleOAuthCallback)
	router.GET("/api/vapid-public-key", handlers.GetVapidPublicKey)

	protected := router.Group("/api")
	protected.Use(middleware.JWTAuthMiddleware())

	// Profile and onboarding
	protected.GET("/me", handlers.GetMyProfile)
	protected.PUT("/me", handlers.UpdateMyProfile)
	protected.POST("/me/onboarding", handlers.CompleteOnboarding)
	protected.POST("/me/heartbeat", handlers.Heartbeat)
	protected.GET("/members/:id", handlers.GetMember)

	// Explore directory
	protected.GET("/explore", handlers.GetExplore)

	// Posts
	protected.POST("/posts", handlers.CreatePost)
	protected.GET("/feed", handlers.GetFeed)
	protected.GET("/members/:id/posts", handlers.GetMemberPosts)

	// Likes
	protected.POST("/likes", handlers.AddLike)
	protected.DELETE("/likes", handlers.RemoveLike)
	protected.GET("/likes", handlers.GetLikes)

	// Conversations and messages
	protected.POST("/conversations", handlers.OpenConversation)
	protected.GET("/conversations", handlers.GetInbox)
	protected.GET("/conversations/:id/messages", handlers.GetMessages)
	protected.POST("/conversations/:id/read", handlers.MarkRead)
	protected.POST("/messages", handlers.SendMessage)

	// Media upload
	protected.POST("/upload", handlers.UploadMedia)

	// Push subscriptions
	protected.POST("/subscribe", handlers.SubscribePush)

	router.NoRoute(func(c *gin.Context) {
		if len(c.Request.URL.Path) >= 4 && c.Request.URL.Path[:4] == "/api" {
			c.JSON(404, gin.H{
				"error": "Endpoint not found",
				"path":  c.Request.URL.Path,
			})
			return
		}
		c.Next()
	})

	return router
}
