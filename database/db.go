// Package database owns the MongoDB connection used by the booking repository.
package database

import (
	"context"
	"time"

	"chairtime/config"
	"chairtime/utils"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoClient is the global MongoDB client instance.
var MongoClient *mongo.Client

// InitDB connects to MongoDB and verifies the connection. Booking records are
// secondary to the calendar, but the service won't start without them.
func InitDB() {
	logger := utils.GetLogger()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(config.AppConfig.DatabaseURL))
	if err != nil {
		logger.Sugar().Fatalf("failed to connect to MongoDB: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		logger.Sugar().Fatalf("failed to ping MongoDB: %v", err)
	}

	MongoClient = client
	logger.Info("Connected to MongoDB")
}
