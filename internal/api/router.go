package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/AssQ222/PDRPG/internal/config"
	"github.com/AssQ222/PDRPG/internal/engine"
	"github.com/AssQ222/PDRPG/internal/metrics"
)

type Option func(*handlers)

// WithClock overrides the clock used by the health endpoint.
func WithClock(now func() time.Time) Option {
	return func(h *handlers) {
		if now != nil {
			h.now = now
		}
	}
}

// NewRouter builds the loopback API. log and m may be nil.
func NewRouter(svc *engine.Service, cfg config.Config, log *zap.Logger, m *metrics.Metrics, opts ...Option) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	h := &handlers{svc: svc, log: log, now: time.Now}
	for _, opt := range opts {
		opt(h)
	}

	r := gin.New()
	r.Use(RequestID())
	r.Use(AccessLog(log, m))
	r.Use(Recovery(log))
	r.Use(cors.New(corsConfig(cfg.AllowedOrigins)))
	r.Use(RateLimit(cfg.RateLimitPerMinute))

	r.GET("/metrics", gin.WrapH(m.Handler()))

	api := r.Group("/api")
	{
		api.GET("/health", h.health)

		api.GET("/tasks", h.listTasks)
		api.POST("/tasks", h.createTask)
		api.POST("/tasks/:id/toggle", h.toggleTask)
		api.DELETE("/tasks/:id", h.deleteTask)

		api.GET("/habits", h.todayHabits)
		api.POST("/habits", h.createHabit)
		api.GET("/habits/:id/entries", h.habitEntries)
		api.POST("/habits/:id/entries", h.logHabitEntry)
		api.GET("/entries/:date", h.entriesForDate)

		api.GET("/character", h.character)

		api.GET("/quests", h.listQuests)
		api.GET("/quests/active", h.activeQuests)
		api.POST("/quests/generate", h.generateQuests)
		api.POST("/quests/refresh", h.refreshQuests)
		api.POST("/quests/:id/complete", h.completeQuest)

		api.GET("/achievements", h.listAchievements)
		api.GET("/achievements/stats", h.achievementStats)
		api.POST("/achievements/check", h.checkAchievements)
		api.POST("/achievements/:id/earn", h.earnAchievement)
	}

	r.NoRoute(func(c *gin.Context) {
		fail(c, http.StatusNotFound, "not found")
	})
	return r
}

// corsConfig matches origins exactly, which also admits non-http schemes
// such as tauri://localhost.
func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", requestIDHeader},
		ExposeHeaders: []string{"Content-Length", requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		cfg.AllowAllOrigins = true
		return cfg
	}
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[o] = struct{}{}
	}
	cfg.AllowOriginFunc = func(origin string) bool {
		_, ok := allowed[origin]
		return ok
	}
	return cfg
}
