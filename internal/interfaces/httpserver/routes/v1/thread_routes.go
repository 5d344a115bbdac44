package v1

import (
	"github.com/gin-gonic/gin"

	"github.com/Azamsaif47/Alfred-app/internal/interfaces/httpserver/handlers"
)

func registerThreadRoutes(router gin.IRoutes, threads *handlers.ThreadHandler, chat *handlers.ChatHandler) {
	router.GET("/threads", threads.List)
	router.POST("/threads", threads.Create)
	router.POST("/threads/run", chat.Run)
	router.GET("/threads/:thread_id/messages", chat.Messages)
	router.PATCH("/threads/:thread_id", threads.Rename)
	router.DELETE("/threads/:thread_id", threads.Delete)
	router.POST("/messages", chat.MessagesByBody)
}
