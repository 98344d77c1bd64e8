package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/suPer8Hu/debate-platform/internal/common"
	"github.com/suPer8Hu/debate-platform/internal/config"
	"github.com/suPer8Hu/debate-platform/internal/debate"
	"github.com/suPer8Hu/debate-platform/internal/httpapi/handlers"
	"github.com/suPer8Hu/debate-platform/internal/httpapi/middleware"
	"github.com/suPer8Hu/debate-platform/internal/store/rabbitmq"
)

func NewRouter(db *gorm.DB, cfg config.Config, svc *debate.Service, pub *rabbitmq.Publisher) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	h := handlers.NewHandler(db, cfg, svc, pub)

	r.GET("/ping", h.Ping)
	r.POST("/users", h.CreateUser)
	r.POST("/login", h.Login)

	authGroup := r.Group("/")
	authGroup.Use(middleware.AuthRequired(cfg.JWTSecret))
	authGroup.POST("/debates", h.StartDebate)
	authGroup.POST("/debates/:conversation_id/messages", h.SendMessage)
	authGroup.GET("/debates/:conversation_id/messages", h.ListMessages)
	authGroup.POST("/debates/:conversation_id/messages/async", h.SendMessageAsync)
	authGroup.GET("/jobs/:job_id", h.GetJob)
	return r
}
