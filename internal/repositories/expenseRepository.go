package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"smartexpense/internal/database"
	"smartexpense/internal/models"
)

var ErrNotFound = errors.New("expense not found")

type ExpenseRepository interface {
	Create(ctx context.Context, expense *models.Expense) (*models.Expense, error)
	FindByUser(ctx context.Context, userID string) ([]models.Expense, error)
	FindAll(ctx context.Context) ([]models.Expense, error)
	Update(ctx context.Context, expenseID, userID string, patch bson.M) error
	Delete(ctx context.Context, expenseID string) error
}

type expenseRepository struct {
	db database.Service
}

func NewExpenseRepository(db database.Service) ExpenseRepository {
	return &expenseRepository{db: db}
}

func (r *expenseRepository) Create(ctx context.Context, expense *models.Expense) (*models.Expense, error) {
	q := observeQuery("expense", "create")
	defer q.done()

	_, err := r.db.Collection().InsertOne(ctx, expense)
	if err != nil {
		q.fail()
		return nil, fmt.Errorf("failed to insert expense: %w", err)
	}
	return expense, nil
}

func (r *expenseRepository) FindByUser(ctx context.Context, userID string) ([]models.Expense, error) {
	q := observeQuery("expense", "findByUser")
	defer q.done()

	expenses, err := r.find(ctx, bson.M{database.PartitionKeyPath: userID})
	if err != nil {
		q.fail()
		return nil, err
	}
	return expenses, nil
}

func (r *expenseRepository) FindAll(ctx context.Context) ([]models.Expense, error) {
	q := observeQuery("expense", "findAll")
	defer q.done()

	expenses, err := r.find(ctx, bson.M{})
	if err != nil {
		q.fail()
		return nil, err
	}
	return expenses, nil
}

func (r *expenseRepository) find(ctx context.Context, filter bson.M) ([]models.Expense, error) {
	cursor, err := r.db.Collection().Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error fetching expenses: %w", err)
	}
	defer cursor.Close(ctx)

	expenses := []models.Expense{}
	if err := cursor.All(ctx, &expenses); err != nil {
		return nil, fmt.Errorf("error decoding expenses: %w", err)
	}
	if expenses == nil {
		expenses = []models.Expense{}
	}
	return expenses, nil
}

// Update shallow-merges patch over the stored document and writes it back.
// Concurrent updates to the same document race; the last replace wins.
func (r *expenseRepository) Update(ctx context.Context, expenseID, userID string, patch bson.M) error {
	q := observeQuery("expense", "update")
	defer q.done()

	collection := r.db.Collection()
	filter := bson.M{"_id": expenseID, database.PartitionKeyPath: userID}

	var existing bson.M
	if err := collection.FindOne(ctx, filter).Decode(&existing); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		q.fail()
		return fmt.Errorf("failed to read expense: %w", err)
	}

	for field, value := range patch {
		existing[field] = value
	}
	existing["_id"] = expenseID
	existing[database.PartitionKeyPath] = userID

	result, err := collection.ReplaceOne(ctx, filter, existing)
	if err != nil {
		q.fail()
		return fmt.Errorf("failed to replace expense: %w", err)
	}
	if result.MatchedCount == 0 {
		log.Warn().Str("expense_id", expenseID).Msg("Expense removed between read and replace")
		return ErrNotFound
	}
	return nil
}

// Delete resolves the partition key by id, then removes the document. The
// two steps are not atomic; a concurrent delete surfaces as ErrNotFound.
func (r *expenseRepository) Delete(ctx context.Context, expenseID string) error {
	q := observeQuery("expense", "delete")
	defer q.done()

	collection := r.db.Collection()

	var owner struct {
		UserID string `bson:"userId"`
	}
	opts := options.FindOne().SetProjection(bson.M{database.PartitionKeyPath: 1})
	if err := collection.FindOne(ctx, bson.M{"_id": expenseID}, opts).Decode(&owner); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		q.fail()
		return fmt.Errorf("failed to resolve expense partition key: %w", err)
	}

	result, err := collection.DeleteOne(ctx, bson.M{"_id": expenseID, database.PartitionKeyPath: owner.UserID})
	if err != nil {
		q.fail()
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
