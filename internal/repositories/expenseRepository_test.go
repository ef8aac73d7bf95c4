package repositories

import (
	"context"
	"flag"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"

	"smartexpense/internal/config"
	"smartexpense/internal/database"
	"smartexpense/internal/models"
)

var testCfg *config.Config

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()
	container, err := mongodb.Run(ctx, "mongo:7",
		mongodb.WithUsername("root"),
		mongodb.WithPassword("example"),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not start mongodb container")
	}

	host, err := container.Host(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Could not resolve mongodb host")
	}
	port, err := container.MappedPort(ctx, "27017/tcp")
	if err != nil {
		log.Fatal().Err(err).Msg("Could not resolve mongodb port")
	}

	testCfg = &config.Config{}
	testCfg.LoadDefaults()
	testCfg.StoreURI = "mongodb://" + host + ":" + port.Port()
	testCfg.StoreAccount = "root"
	testCfg.StoreKey = "example"

	code := m.Run()

	if err := container.Terminate(ctx); err != nil {
		log.Error().Err(err).Msg("Could not teardown mongodb container")
	}
	os.Exit(code)
}

// newTestRepository gives every test its own collection.
func newTestRepository(t *testing.T) ExpenseRepository {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping test in short mode.")
	}

	cfg := *testCfg
	cfg.CollectionName = "expenses_" + uuid.NewString()

	db, err := database.New(&cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.EnsureReady(context.Background()))

	return NewExpenseRepository(db)
}

func strPtr(s string) *string { return &s }

func newExpense(userID, category string, amount float64) *models.Expense {
	return &models.Expense{
		ID:       uuid.NewString(),
		UserID:   userID,
		Amount:   amount,
		Category: category,
		Date:     "2024-01-01",
	}
}

func TestExpenseRepository_CreateAndFindByUser(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	expense := newExpense("u1", "food", 12.5)
	expense.Description = strPtr("lunch")

	created, err := repo.Create(ctx, expense)
	require.NoError(t, err)
	assert.Equal(t, expense, created)

	found, err := repo.FindByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, *expense, found[0])
}

func TestExpenseRepository_CreateDuplicateID(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	expense := newExpense("u1", "food", 1)
	_, err := repo.Create(ctx, expense)
	require.NoError(t, err)

	_, err = repo.Create(ctx, expense)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestExpenseRepository_FindScopesByUser(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	for _, e := range []*models.Expense{
		newExpense("u1", "food", 1),
		newExpense("u1", "rent", 2),
		newExpense("u2", "fuel", 3),
	} {
		_, err := repo.Create(ctx, e)
		require.NoError(t, err)
	}

	u2, err := repo.FindByUser(ctx, "u2")
	require.NoError(t, err)
	require.Len(t, u2, 1)
	assert.Equal(t, "u2", u2[0].UserID)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	none, err := repo.FindByUser(ctx, "nobody")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestExpenseRepository_UpdateMerges(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	expense := newExpense("u1", "food", 12.5)
	expense.Description = strPtr("lunch")
	_, err := repo.Create(ctx, expense)
	require.NoError(t, err)

	require.NoError(t, repo.Update(ctx, expense.ID, "u1", bson.M{"category": "dining"}))

	found, err := repo.FindByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "dining", found[0].Category)
	assert.Equal(t, 12.5, found[0].Amount)
	assert.Equal(t, "2024-01-01", found[0].Date)
	require.NotNil(t, found[0].Description)
	assert.Equal(t, "lunch", *found[0].Description)
}

func TestExpenseRepository_UpdateNotFound(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	err := repo.Update(ctx, "missing", "u1", bson.M{"category": "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	expense := newExpense("u1", "food", 1)
	_, err = repo.Create(ctx, expense)
	require.NoError(t, err)

	err = repo.Update(ctx, expense.ID, "someone-else", bson.M{"category": "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExpenseRepository_Delete(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	expense := newExpense("u1", "food", 1)
	_, err := repo.Create(ctx, expense)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, expense.ID))
	assert.ErrorIs(t, repo.Delete(ctx, expense.ID), ErrNotFound)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestExpenseRepository_ConcurrentDelete(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	expense := newExpense("u1", "food", 1)
	_, err := repo.Create(ctx, expense)
	require.NoError(t, err)

	const workers = 8
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Delete(ctx, expense.ID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, ErrNotFound)
	}
	assert.Equal(t, 1, succeeded)
}
