package services

import (
	"context"
	"encoding/hex"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"

	"smartexpense/internal/metrics"
	"smartexpense/internal/models"
	"smartexpense/internal/repositories"
)

// ExpenseService defines the expense operations exposed over HTTP.
type ExpenseService interface {
	AddExpense(ctx context.Context, input models.ExpenseInput) (*models.Expense, error)
	GetExpensesByUser(ctx context.Context, userID string) ([]models.Expense, error)
	GetAllExpenses(ctx context.Context) ([]models.Expense, error)
	UpdateExpense(ctx context.Context, expenseID string, patch models.ExpensePatch) error
	DeleteExpense(ctx context.Context, expenseID string) error
}

type expenseServiceImpl struct {
	expenseRepo repositories.ExpenseRepository
	newID       func() string
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(expenseRepo repositories.ExpenseRepository) ExpenseService {
	return &expenseServiceImpl{expenseRepo: expenseRepo, newID: NewExpenseID}
}

// NewExpenseID returns a random 32 character hex token.
func NewExpenseID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

func (s *expenseServiceImpl) AddExpense(ctx context.Context, input models.ExpenseInput) (*models.Expense, error) {
	expense := input.Expense()
	if expense.ID == "" {
		expense.ID = s.newID()
	}
	log.Debug().Str("user_id", expense.UserID).Str("expense_id", expense.ID).Msg("Attempting to add expense")

	created, err := s.expenseRepo.Create(ctx, &expense)
	if err != nil {
		log.Error().Err(err).Str("user_id", expense.UserID).Str("expense_id", expense.ID).Msg("Failed to insert expense")
		return nil, err
	}

	metrics.ExpenseCreatedTotal.Inc()
	log.Info().Str("user_id", created.UserID).Str("expense_id", created.ID).Msg("Expense added successfully")
	return created, nil
}

func (s *expenseServiceImpl) GetExpensesByUser(ctx context.Context, userID string) ([]models.Expense, error) {
	log.Debug().Str("user_id", userID).Msg("Attempting to retrieve expenses")
	expenses, err := s.expenseRepo.FindByUser(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Error finding expenses")
		return nil, err
	}
	log.Debug().Str("user_id", userID).Int("count", len(expenses)).Msg("Successfully retrieved expenses")
	return expenses, nil
}

func (s *expenseServiceImpl) GetAllExpenses(ctx context.Context) ([]models.Expense, error) {
	expenses, err := s.expenseRepo.FindAll(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Error finding all expenses")
		return nil, err
	}
	log.Debug().Int("count", len(expenses)).Msg("Successfully retrieved all expenses")
	return expenses, nil
}

func buildExpensePatchFields(patch models.ExpensePatch) bson.M {
	fields := bson.M{}
	if patch.Amount != nil {
		fields["amount"] = float64(*patch.Amount)
	}
	if patch.Category != nil {
		fields["category"] = *patch.Category
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.Date != nil {
		fields["date"] = *patch.Date
	}
	return fields
}

func (s *expenseServiceImpl) UpdateExpense(ctx context.Context, expenseID string, patch models.ExpensePatch) error {
	fields := buildExpensePatchFields(patch)
	userID := patch.Owner()
	log.Debug().Str("user_id", userID).Str("expense_id", expenseID).Interface("fields", fields).Msg("Attempting to update expense")

	if err := s.expenseRepo.Update(ctx, expenseID, userID, fields); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			metrics.ExpenseNotFoundTotal.WithLabelValues("update").Inc()
			log.Warn().Str("user_id", userID).Str("expense_id", expenseID).Msg("Expense not found for update")
			return err
		}
		log.Error().Err(err).Str("user_id", userID).Str("expense_id", expenseID).Msg("Failed to update expense")
		return err
	}

	metrics.ExpenseUpdatedTotal.Inc()
	log.Info().Str("user_id", userID).Str("expense_id", expenseID).Msg("Expense updated successfully")
	return nil
}

func (s *expenseServiceImpl) DeleteExpense(ctx context.Context, expenseID string) error {
	log.Debug().Str("expense_id", expenseID).Msg("Attempting to delete expense")

	if err := s.expenseRepo.Delete(ctx, expenseID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			metrics.ExpenseNotFoundTotal.WithLabelValues("delete").Inc()
			log.Warn().Str("expense_id", expenseID).Msg("Expense not found for delete")
			return err
		}
		log.Error().Err(err).Str("expense_id", expenseID).Msg("Failed to delete expense")
		return err
	}

	metrics.ExpenseDeletedTotal.Inc()
	log.Info().Str("expense_id", expenseID).Msg("Expense deleted successfully")
	return nil
}
