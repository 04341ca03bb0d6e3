// Package api exposes the control plane over the planner (internal/planexec):
// submitting plans, checking progress, and browsing the plan-run audit log.
// No endpoint here ever carries a secret cell value or flag — only plan
// shape, sizes, and outcomes, matching the public-size principle. Built
// with the same CORS middleware, public/protected route grouping, and
// gin.Default setup used throughout this stack.
package api

import (
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/rawblock/oblivrel/internal/db"
	"github.com/rawblock/oblivrel/internal/planexec"
)

type APIHandler struct {
	dbStore *db.PostgresStore
	wsHub   *Hub
	runs    *RunRegistry
}

// SetupRouter builds the gin engine: CORS, public health/stream endpoints,
// and bearer-token-and-rate-limit-protected plan endpoints.
func SetupRouter(dbStore *db.PostgresStore, wsHub *Hub) *gin.Engine {
	r := gin.Default()

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if allowedOrigins == "" || allowedOrigins == "*" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		} else {
			for _, allowed := range strings.Split(allowedOrigins, ",") {
				if strings.TrimSpace(allowed) == origin {
					c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
					break
				}
			}
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	handler := &APIHandler{
		dbStore: dbStore,
		wsHub:   wsHub,
		runs:    NewRunRegistry(),
	}

	pub := r.Group("/api/v1")
	{
		pub.GET("/health", handler.handleHealth)
		pub.GET("/stream", wsHub.Subscribe)
	}

	auth := r.Group("/api/v1")
	auth.Use(AuthMiddleware())
	auth.Use(NewRateLimiter(30, 5).Middleware())
	{
		plans := auth.Group("/plans")
		{
			plans.POST("", handler.handleSubmitPlan)
			plans.GET("/:id", handler.handleGetPlanProgress)
			plans.GET("", handler.handleListPlanRuns)
		}
	}

	return r
}

func (h *APIHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":      "operational",
		"engine":      "oblivrel",
		"dbConnected": h.dbStore != nil,
		"capabilities": gin.H{
			"project":         true,
			"filter":          true,
			"pac_filter":      true,
			"count":           true,
			"equi_join":       true,
			"index_equi_join": true,
		},
	})
}

// RunRegistry tracks in-flight and completed plan runs by plan ID so the
// progress endpoint can poll a *planexec.Runner without the caller having
// to hold a reference to it.
type RunRegistry struct {
	mu      sync.Mutex
	runners map[string]*planexec.Runner
}

func NewRunRegistry() *RunRegistry {
	return &RunRegistry{runners: make(map[string]*planexec.Runner)}
}

func (reg *RunRegistry) Put(id string, r *planexec.Runner) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.runners[id] = r
}

func (reg *RunRegistry) Get(id string) (*planexec.Runner, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	r, ok := reg.runners[id]
	return r, ok
}
