package transport

import (
	"github.com/ds124wfegd/meetup-service/internal/transport/middleware"
	"github.com/gin-gonic/gin"
)

func InitRoutes(meetupHandler *MeetupHandler, subscriptionHandler *SubscriptionHandler) *gin.Engine {

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Timeout(30))

	// API routes
	api := router.Group("/api/v1")
	{
		// Meetup routes
		meetups := api.Group("/meetups")
		{
			meetups.GET("/:id", meetupHandler.GetMeetup)
			meetups.POST("/:id/subscribe", subscriptionHandler.Join)
			meetups.DELETE("/:id/subscribe", subscriptionHandler.Leave)
		}

		// Subscription routes
		api.GET("/subscriptions", subscriptionHandler.ListMySubscriptions)
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "ok",
			"timestamp": gin.H{"time": "server is running"},
		})
	})

	return router
}
