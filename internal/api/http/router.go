package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func SetupRouter(roomController *RoomController) *gin.Engine {
	router := gin.Default()

	config := cors.DefaultConfig()
	config.AllowAllOrigins = true
	config.AllowHeaders = []string{
		"Authorization",
		"Content-Type",
		"Origin",
		"Accept",
	}
	config.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	router.Use(cors.New(config))

	router.GET("/healthz", func(ctx *gin.Context) {
		ctx.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api")

	rooms := api.Group("/rooms")
	rooms.POST("/create", roomController.CreateRoom)
	rooms.GET("/:code", roomController.GetRoom)
	rooms.GET("/:code/members", roomController.ListMembers)
	rooms.GET("/:code/messages", roomController.ListMessages)
	rooms.GET("/:code/ws", roomController.JoinRoom)
	rooms.DELETE("/:code", roomController.RemoveRoom)

	return router
}
