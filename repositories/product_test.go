package repositories

import (
	"context"
	"shop-lab/domain"
	"shop-lab/errors"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions("").
		WithInMemory(true).
		WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func testProduct(name string, stock int) domain.Product {
	now := time.Now().UTC().Truncate(time.Second)
	return domain.Product{
		ID:          uuid.New(),
		Name:        name,
		Description: "a " + name,
		Price:       decimal.RequireFromString("19.99"),
		Stock:       stock,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestProductRepository_CreateAndGet(t *testing.T) {
	req := require.New(t)
	repo := NewProductRepository(newTestDB(t))
	ctx := context.Background()
	product := testProduct("widget", 5)

	req.NoError(repo.Create(ctx, product))

	found, err := repo.Get(ctx, product.ID)
	req.NoError(err)
	req.Equal(product.ID, found.ID)
	req.Equal("widget", found.Name)
	req.True(found.Price.Equal(product.Price))
	req.Equal(5, found.Stock)
}

func TestProductRepository_Create_DuplicateName(t *testing.T) {
	req := require.New(t)
	repo := NewProductRepository(newTestDB(t))
	ctx := context.Background()

	req.NoError(repo.Create(ctx, testProduct("widget", 5)))

	err := repo.Create(ctx, testProduct("widget", 3))
	req.ErrorIs(err, errors.ErrProductAlreadyExists)
}

func TestProductRepository_Get_Unknown(t *testing.T) {
	req := require.New(t)
	repo := NewProductRepository(newTestDB(t))
	unknownID := uuid.New()

	_, err := repo.Get(context.Background(), unknownID)

	req.ErrorIs(err, errors.ErrProductNotFound)
	var notFound *errors.ProductNotFoundError
	req.True(errors.As(err, &notFound))
	req.Equal(unknownID, notFound.ProductID)
}

func TestProductRepository_List_Pagination(t *testing.T) {
	req := require.New(t)
	repo := NewProductRepository(newTestDB(t))
	ctx := context.Background()

	for _, name := range []string{"alpha", "beta", "gamma", "delta", "epsilon"} {
		req.NoError(repo.Create(ctx, testProduct(name, 1)))
	}

	all, err := repo.List(ctx, 0, 0)
	req.NoError(err)
	req.Len(all, 5)

	page, err := repo.List(ctx, 2, 0)
	req.NoError(err)
	req.Len(page, 2)

	rest, err := repo.List(ctx, 0, 3)
	req.NoError(err)
	req.Len(rest, 2)
}

func TestProductRepository_Update(t *testing.T) {
	req := require.New(t)
	repo := NewProductRepository(newTestDB(t))
	ctx := context.Background()
	product := testProduct("widget", 7)
	req.NoError(repo.Create(ctx, product))

	t.Run("should rewrite catalog fields and preserve stock", func(t *testing.T) {
		changed := product
		changed.Name = "widget pro"
		changed.Price = decimal.RequireFromString("24.99")
		changed.Stock = 0 // must be ignored

		require.NoError(t, repo.Update(ctx, changed))

		found, err := repo.Get(ctx, product.ID)
		require.NoError(t, err)
		require.Equal(t, "widget pro", found.Name)
		require.True(t, found.Price.Equal(decimal.RequireFromString("24.99")))
		require.Equal(t, 7, found.Stock)
	})

	t.Run("should free the old name for reuse", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, testProduct("widget", 1)))
	})

	t.Run("should refuse renaming onto a taken name", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, testProduct("other", 1)))

		renamed := product
		renamed.Name = "other"
		err := repo.Update(ctx, renamed)
		require.ErrorIs(t, err, errors.ErrProductAlreadyExists)
	})
}

func TestProductRepository_Delete(t *testing.T) {
	req := require.New(t)
	repo := NewProductRepository(newTestDB(t))
	ctx := context.Background()
	product := testProduct("widget", 7)
	req.NoError(repo.Create(ctx, product))

	req.NoError(repo.Delete(ctx, product.ID))

	_, err := repo.Get(ctx, product.ID)
	req.ErrorIs(err, errors.ErrProductNotFound)

	// Name key is released together with the row
	req.NoError(repo.Create(ctx, testProduct("widget", 1)))

	err = repo.Delete(ctx, product.ID)
	req.ErrorIs(err, errors.ErrProductNotFound)
}

func TestProductRepository_TxnRoundTrip(t *testing.T) {
	req := require.New(t)
	db := newTestDB(t)
	repo := NewProductRepository(db)
	ctx := context.Background()
	product := testProduct("widget", 5)
	req.NoError(repo.Create(ctx, product))

	// Writes inside an uncommitted transaction stay invisible
	txn := db.NewTransaction(true)
	inside, err := repo.GetTxn(txn, product.ID)
	req.NoError(err)
	inside.Stock = 2
	req.NoError(repo.PutTxn(txn, inside))

	outside, err := repo.Get(ctx, product.ID)
	req.NoError(err)
	req.Equal(5, outside.Stock)

	req.NoError(txn.Commit())

	committed, err := repo.Get(ctx, product.ID)
	req.NoError(err)
	req.Equal(2, committed.Stock)
}
