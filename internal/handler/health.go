package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/C3S4R18/ruag-app-web-sub000/internal/infra"
	"github.com/C3S4R18/ruag-app-web-sub000/internal/worker"
)

// Health returns a JSON health check response.
// Checks DB and Redis connectivity plus the SMTP circuit state; never exposes
// credentials or internals.
func Health(db *gorm.DB, rdb *redis.Client, smtpCB *infra.CircuitBreaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := "connected"
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			dbStatus = "error"
		}

		redisStatus := "connected"
		if rdb.Ping(ctx).Err() != nil {
			redisStatus = "error"
		}

		status := http.StatusOK
		if dbStatus != "connected" || redisStatus != "connected" {
			status = http.StatusServiceUnavailable
		}

		// A growing DLQ means emails are being discarded; surface it here.
		dlqEmails, _ := worker.DLQLength(ctx, rdb, worker.QueueEmail)

		c.JSON(status, gin.H{
			"ok":         status == http.StatusOK,
			"db":         dbStatus,
			"redis":      redisStatus,
			"smtp_cb":    smtpCB.State().String(),
			"dlq_emails": dlqEmails,
		})
	}
}
