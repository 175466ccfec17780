// Package routesはroutingを行います。
package routes

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"task-tracker/internal/config"
	"task-tracker/internal/handlers"
	"task-tracker/internal/repositories"
	"task-tracker/internal/revocation"
	"task-tracker/internal/services"
)

// SetupRouter はGinルーターをセットアップし、すべてのエンドポイントを登録します。
func SetupRouter(db *sql.DB, cfg *config.Config, denylist revocation.Denylist) *gin.Engine {
	r := gin.New()
	r.Use(RequestID())
	r.Use(gin.LoggerWithFormatter(logFormatter))
	r.Use(gin.Recovery())

	// CORS対策
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.Server.AllowOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", requestIDHeader}
	corsConfig.ExposeHeaders = []string{requestIDHeader}
	corsConfig.AllowCredentials = true
	r.Use(cors.New(corsConfig))

	// リポジトリ
	taskRepo := repositories.NewTaskRepository(db)
	userRepo := repositories.NewUserRepository(db)

	// サービス
	taskService := services.NewTaskService(taskRepo)
	userService := services.NewUserService(userRepo, cfg.Auth.BcryptCost)
	jwtService := services.NewJWTService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, denylist)

	// ハンドラー
	userHandler := handlers.NewUserHandler(userService, jwtService)
	taskHandler := handlers.NewTaskHandler(taskService)

	// ルーティング
	r.GET("/api/health", HealthHandler)
	r.GET("/api/dbcheck", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "message": "Database connection failed", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Database connection is healthy"})
	})
	r.POST("/api/register", userHandler.RegisterHandler)
	r.POST("/api/login", userHandler.LoginHandler)

	authorized := r.Group("/api")
	authorized.Use(AuthMiddleware(jwtService))
	{
		authorized.POST("/logout", userHandler.LogoutHandler)
		authorized.GET("/me", userHandler.MeHandler)

		authorized.GET("/tasks", taskHandler.GetTasksHandler)
		authorized.GET("/tasks/:id", taskHandler.GetTaskByIDHandler)
		authorized.POST("/tasks", taskHandler.CreateTaskHandler)
		authorized.PUT("/tasks/:id", taskHandler.UpdateTaskHandler)
		authorized.PATCH("/tasks/:id", taskHandler.UpdateTaskHandler)
		authorized.DELETE("/tasks/:id", taskHandler.DeleteTaskHandler)
	}

	return r
}

func HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func logFormatter(p gin.LogFormatterParams) string {
	return fmt.Sprintf("[GIN] %s | %s | %3d | %13v | %15s | %-7s %#v\n",
		p.TimeStamp.Format(time.RFC3339),
		p.Request.Header.Get(requestIDHeader),
		p.StatusCode,
		p.Latency,
		p.ClientIP,
		p.Method,
		p.Path,
	)
}
