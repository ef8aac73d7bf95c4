package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"smartexpense/internal/config"
)

// PartitionKeyPath is the document field every expense is routed by.
const PartitionKeyPath = "userId"

// codeNamespaceExists is returned when a collection is created concurrently.
const codeNamespaceExists = 48

type Service interface {
	Health() map[string]string
	Client() *mongo.Client
	Collection() *mongo.Collection
	EnsureReady(ctx context.Context) error
	Close() error
}

type service struct {
	db             *mongo.Client
	databaseName   string
	collectionName string
}

// New builds the shared store client. The driver connects lazily, so
// reachability and credentials are checked by EnsureReady.
func New(cfg *config.Config) (Service, error) {
	opts := options.Client().
		ApplyURI(cfg.StoreURI).
		SetAppName("smart-expense-api").
		SetServerSelectionTimeout(10 * time.Second)

	if cfg.StoreKey != "" {
		opts.SetAuth(options.Credential{
			Username: cfg.StoreAccount,
			Password: cfg.StoreKey,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to document store: %w", err)
	}

	return &service{
		db:             client,
		databaseName:   cfg.DatabaseName,
		collectionName: cfg.CollectionName,
	}, nil
}

// EnsureReady creates the database, the collection and the partition key
// index if they are missing. Safe to call any number of times.
func (s *service) EnsureReady(ctx context.Context) error {
	if err := s.db.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("failed to reach document store: %w", err)
	}

	db := s.db.Database(s.databaseName)
	names, err := db.ListCollectionNames(ctx, bson.M{"name": s.collectionName})
	if err != nil {
		return fmt.Errorf("failed to list collections: %w", err)
	}

	if len(names) == 0 {
		err := db.CreateCollection(ctx, s.collectionName)
		if err != nil && !isNamespaceExists(err) {
			return fmt.Errorf("failed to create collection %s: %w", s.collectionName, err)
		}
		log.Info().Str("database", s.databaseName).Str("collection", s.collectionName).Msg("Created expense collection")
	}

	index := mongo.IndexModel{
		Keys:    bson.D{{Key: PartitionKeyPath, Value: 1}},
		Options: options.Index().SetName("partition_" + PartitionKeyPath),
	}
	if _, err := s.Collection().Indexes().CreateOne(ctx, index); err != nil {
		return fmt.Errorf("failed to create partition key index: %w", err)
	}

	return nil
}

func isNamespaceExists(err error) bool {
	var cmdErr mongo.CommandError
	return errors.As(err, &cmdErr) && cmdErr.Code == codeNamespaceExists
}

func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	err := s.db.Ping(ctx, nil)
	if err != nil {
		log.Error().Err(err).Msg("Database health check failed")
		return map[string]string{
			"message": "db down",
			"error":   err.Error(),
		}
	}

	return map[string]string{
		"message": "It's healthy",
	}
}

func (s *service) Client() *mongo.Client {
	return s.db
}

func (s *service) Collection() *mongo.Collection {
	return s.db.Database(s.databaseName).Collection(s.collectionName)
}

func (s *service) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.db.Disconnect(ctx)
}
