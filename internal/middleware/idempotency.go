package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/SebastienDelgado/detachements-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Idempotency replays the cached response when a POST carries an
// Idempotency-Key already seen. The handler stores the response body and
// releases the lock once it finishes.
func Idempotency(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		idempKey := c.GetHeader("Idempotency-Key")

		if idempKey == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		// Submissions are anonymous, so the caller identity is the IP.
		caller := c.GetString("admin_id")
		if caller == "" {
			caller = c.ClientIP()
		}

		cacheKey := fmt.Sprintf("idemp:%s:%s:%s", c.FullPath(), caller, idempKey)
		lockKey := cacheKey + ":lock"

		val, err := rdb.Get(c.Request.Context(), cacheKey).Result()
		if err == nil {
			var cachedRes any
			json.Unmarshal([]byte(val), &cachedRes)
			c.AbortWithStatusJSON(http.StatusOK, response.ApiEnvelope{Ok: true, Data: cachedRes})
			return
		}

		// Short lock so a crashed worker cannot wedge the key.
		isNew, _ := rdb.SetNX(c.Request.Context(), lockKey, "locked", 30*time.Second).Result()

		if !isNew {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"code":    "PROCESSING",
				"message": "Une demande identique est déjà en cours de traitement, merci de patienter.",
			})
			return
		}

		c.Set("idempotency_cache_key", cacheKey)
		c.Set("idempotency_lock_key", lockKey)

		c.Next()
	}
}
