package utils

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

const healthCheckInterval = 60 * time.Second

// HealthStatus reports reachability of the service's external collaborators.
type HealthStatus struct {
	Mongo     bool            `json:"mongo"`
	Redis     map[string]bool `json:"redis"`
	CheckedAt time.Time       `json:"checkedAt"`
}

var (
	currentHealth HealthStatus
	healthMu      sync.RWMutex
)

// GetHealthStatus returns the latest stored health snapshot.
func GetHealthStatus() HealthStatus {
	healthMu.RLock()
	defer healthMu.RUnlock()
	return currentHealth
}

// StartHealthMonitor pings the named Redis clients and Mongo on an interval
// and keeps an in-memory snapshot for the health endpoint.
func StartHealthMonitor(redisClients map[string]*redis.Client, mongoClient *mongo.Client) {
	go func() {
		ticker := time.NewTicker(healthCheckInterval)
		defer ticker.Stop()

		ctx := context.Background()

		for range ticker.C {
			redisHealth := make(map[string]bool, len(redisClients))
			for name, client := range redisClients {
				redisHealth[name] = client.Ping(ctx).Err() == nil
			}

			healthMu.Lock()
			currentHealth = HealthStatus{
				Mongo:     mongoClient.Ping(ctx, nil) == nil,
				Redis:     redisHealth,
				CheckedAt: time.Now(),
			}
			healthMu.Unlock()
		}
	}()
}
