package catalog

import (
	"context"
	"testing"

	"github.com/fabrictrade/backend/internal/domain/catalog"
	"github.com/fabrictrade/backend/internal/domain/shared"
	"github.com/fabrictrade/backend/tests/testutil"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newFabric(t *testing.T, sku string, stock string) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct(sku, catalog.ProductSpec{
		Name:          "Combed Cotton Poplin",
		Composition:   "100% cotton",
		WidthCM:       147,
		GSM:           120,
		Color:         "indigo",
		PricePerMeter: decimal.RequireFromString("185.50"),
	})
	require.NoError(t, err)
	p.StockMeters = decimal.RequireFromString(stock)
	return p
}

func TestProductService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("creates with initial stock", func(t *testing.T) {
		repo := new(testutil.MockProductRepository)
		svc := NewProductService(repo, zap.NewNop())
		stock := decimal.NewFromInt(500)

		repo.On("FindBySKU", ctx, "CTN-60").Return(nil, nil)
		repo.On("Create", ctx, mock.AnythingOfType("*catalog.Product")).Return(nil)

		resp, err := svc.Create(ctx, CreateProductRequest{
			SKU:           "ctn-60",
			Name:          "Cotton 60s",
			Composition:   "100% cotton",
			WidthCM:       112,
			GSM:           95,
			PricePerMeter: decimal.NewFromInt(140),
			InitialStock:  &stock,
		})
		require.NoError(t, err)
		assert.Equal(t, "CTN-60", resp.SKU)
		assert.True(t, resp.StockMeters.Equal(stock))
		assert.Equal(t, "active", resp.Status)
		repo.AssertExpectations(t)
	})

	t.Run("duplicate sku", func(t *testing.T) {
		repo := new(testutil.MockProductRepository)
		svc := NewProductService(repo, zap.NewNop())
		repo.On("FindBySKU", ctx, "CTN-60").Return(newFabric(t, "CTN-60", "0"), nil)

		_, err := svc.Create(ctx, CreateProductRequest{SKU: "CTN-60", Name: "x", PricePerMeter: decimal.NewFromInt(1)})
		assert.ErrorIs(t, err, shared.ErrAlreadyExists)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects zero price", func(t *testing.T) {
		repo := new(testutil.MockProductRepository)
		svc := NewProductService(repo, zap.NewNop())
		repo.On("FindBySKU", ctx, "LIN-40").Return(nil, nil)

		_, err := svc.Create(ctx, CreateProductRequest{SKU: "LIN-40", Name: "Linen"})
		assert.Equal(t, "INVALID_PRICE", shared.CodeOf(err))
	})
}

func TestProductService_AdjustStock(t *testing.T) {
	ctx := context.Background()

	t.Run("adds stock", func(t *testing.T) {
		repo := new(testutil.MockProductRepository)
		svc := NewProductService(repo, zap.NewNop())
		p := newFabric(t, "CTN-60", "100")
		repo.On("FindByID", ctx, p.ID).Return(p, nil)
		repo.On("SaveWithLock", ctx, p).Return(nil)

		resp, err := svc.AdjustStock(ctx, p.ID, AdjustStockRequest{DeltaMeters: decimal.RequireFromString("42.5"), Reason: "mill delivery"})
		require.NoError(t, err)
		assert.True(t, resp.StockMeters.Equal(decimal.RequireFromString("142.5")))
		assert.Equal(t, 2, resp.Version)
	})

	t.Run("cannot go negative", func(t *testing.T) {
		repo := new(testutil.MockProductRepository)
		svc := NewProductService(repo, zap.NewNop())
		p := newFabric(t, "CTN-60", "10")
		repo.On("FindByID", ctx, p.ID).Return(p, nil)

		_, err := svc.AdjustStock(ctx, p.ID, AdjustStockRequest{DeltaMeters: decimal.NewFromInt(-11)})
		assert.ErrorIs(t, err, shared.ErrInsufficientStock)
		repo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("zero delta", func(t *testing.T) {
		svc := NewProductService(new(testutil.MockProductRepository), zap.NewNop())
		_, err := svc.AdjustStock(ctx, uuid.New(), AdjustStockRequest{})
		assert.Equal(t, "INVALID_QUANTITY", shared.CodeOf(err))
	})

	t.Run("version conflict surfaces", func(t *testing.T) {
		repo := new(testutil.MockProductRepository)
		svc := NewProductService(repo, zap.NewNop())
		p := newFabric(t, "CTN-60", "10")
		repo.On("FindByID", ctx, p.ID).Return(p, nil)
		repo.On("SaveWithLock", ctx, p).Return(shared.ErrPersistenceConflict)

		_, err := svc.AdjustStock(ctx, p.ID, AdjustStockRequest{DeltaMeters: decimal.NewFromInt(1)})
		assert.ErrorIs(t, err, shared.ErrPersistenceConflict)
	})
}

func TestProductService_UpdateAndDeactivate(t *testing.T) {
	ctx := context.Background()
	repo := new(testutil.MockProductRepository)
	svc := NewProductService(repo, zap.NewNop())
	p := newFabric(t, "SLK-01", "20")
	repo.On("FindByID", ctx, p.ID).Return(p, nil)
	repo.On("SaveWithLock", ctx, p).Return(nil)

	inactive := false
	resp, err := svc.Update(ctx, p.ID, UpdateProductRequest{
		Name:          "Mulberry Silk",
		Composition:   "100% silk",
		PricePerMeter: decimal.NewFromInt(1200),
		Active:        &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, "Mulberry Silk", resp.Name)
	assert.Equal(t, "inactive", resp.Status)

	_, err = svc.Deactivate(ctx, p.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestProductService_GetAndList(t *testing.T) {
	ctx := context.Background()
	repo := new(testutil.MockProductRepository)
	svc := NewProductService(repo, zap.NewNop())

	missing := uuid.New()
	repo.On("FindByID", ctx, missing).Return(nil, nil)
	_, err := svc.GetByID(ctx, missing)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	products := []catalog.Product{*newFabric(t, "A-1", "1"), *newFabric(t, "A-2", "2")}
	repo.On("FindAll", ctx, mock.MatchedBy(func(f catalog.ProductFilter) bool {
		return f.Search == "poplin" && f.Status != nil && *f.Status == catalog.ProductStatusActive
	})).Return(products, nil)
	repo.On("Count", ctx, mock.Anything).Return(int64(2), nil)

	page, err := svc.List(ctx, ProductListQuery{Search: "poplin", Status: "active"})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, int64(2), page.Total)
}
