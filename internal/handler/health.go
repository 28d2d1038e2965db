package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health pings the two stores this service cannot run without: Postgres
// (ledger, orders) and Redis (cache, alert queue). The payload names each
// check so an operator can tell which dependency is down.
//
// GET /health
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		checks := gin.H{"postgres": "up", "redis": "up"}
		healthy := true

		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			checks["postgres"] = "down"
			healthy = false
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			checks["redis"] = "down"
			healthy = false
		}

		code := http.StatusOK
		label := "healthy"
		if !healthy {
			code = http.StatusServiceUnavailable
			label = "degraded"
		}
		c.JSON(code, gin.H{"status": label, "checks": checks})
	}
}
