package catalog

import (
	"context"
	"strings"

	"github.com/fabrictrade/backend/internal/domain/catalog"
	"github.com/fabrictrade/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errProductNotFound = shared.NewDomainError("NOT_FOUND", "Product not found")

// ProductService handles fabric catalog operations
type ProductService struct {
	productRepo catalog.ProductRepository
	logger      *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(productRepo catalog.ProductRepository, logger *zap.Logger) *ProductService {
	return &ProductService{
		productRepo: productRepo,
		logger:      logger,
	}
}

// Create adds a fabric to the catalog
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	existing, err := s.productRepo.FindBySKU(ctx, strings.ToUpper(strings.TrimSpace(req.SKU)))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this SKU already exists")
	}

	product, err := catalog.NewProduct(req.SKU, catalog.ProductSpec{
		Name:          req.Name,
		Composition:   req.Composition,
		WidthCM:       req.WidthCM,
		GSM:           req.GSM,
		Color:         req.Color,
		PricePerMeter: req.PricePerMeter,
	})
	if err != nil {
		return nil, err
	}
	if req.InitialStock != nil && req.InitialStock.IsPositive() {
		product.StockMeters = *req.InitialStock
	} else if req.InitialStock != nil && req.InitialStock.IsNegative() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Initial stock cannot be negative")
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	s.logger.Info("Product created", zap.String("sku", product.SKU), zap.String("product_id", product.ID.String()))

	resp := ToProductResponse(product)
	return &resp, nil
}

// GetByID retrieves a product
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// List returns a page of products
func (s *ProductService) List(ctx context.Context, q ProductListQuery) (*shared.Paginated[ProductResponse], error) {
	filter := catalog.ProductFilter{
		Filter: shared.Filter{
			Page:     q.Page,
			PageSize: q.PageSize,
			OrderBy:  q.OrderBy,
			OrderDir: q.OrderDir,
			Search:   q.Search,
		}.Normalize(),
	}
	if q.Status != "" {
		status := catalog.ProductStatus(q.Status)
		filter.Status = &status
	}

	products, err := s.productRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.productRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]ProductResponse, len(products))
	for i := range products {
		items[i] = ToProductResponse(&products[i])
	}
	page := shared.NewPaginated(items, total, filter.Page, filter.PageSize)
	return &page, nil
}

// Update replaces a product's attributes and optionally toggles its status
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := product.Update(catalog.ProductSpec{
		Name:          req.Name,
		Composition:   req.Composition,
		WidthCM:       req.WidthCM,
		GSM:           req.GSM,
		Color:         req.Color,
		PricePerMeter: req.PricePerMeter,
	}); err != nil {
		return nil, err
	}
	if req.Active != nil && *req.Active != product.IsActive() {
		// one write, one version step
		if *req.Active {
			product.Status = catalog.ProductStatusActive
		} else {
			product.Status = catalog.ProductStatusInactive
		}
	}

	if err := s.productRepo.SaveWithLock(ctx, product); err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// Deactivate hides a product from ordering
func (s *ProductService) Deactivate(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive() {
		return nil, shared.NewDomainError("INVALID_STATE", "Product is already inactive")
	}
	product.Deactivate()
	if err := s.productRepo.SaveWithLock(ctx, product); err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// AdjustStock changes the meters on hand. Stock never goes negative.
func (s *ProductService) AdjustStock(ctx context.Context, id uuid.UUID, req AdjustStockRequest) (*ProductResponse, error) {
	if req.DeltaMeters.IsZero() {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Stock adjustment cannot be zero")
	}
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	before := product.StockMeters
	if err := product.AdjustStock(req.DeltaMeters); err != nil {
		return nil, err
	}
	if err := s.productRepo.SaveWithLock(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Stock adjusted",
		zap.String("sku", product.SKU),
		zap.String("before", before.String()),
		zap.String("after", product.StockMeters.String()),
		zap.String("reason", req.Reason),
	)
	resp := ToProductResponse(product)
	return &resp, nil
}

func (s *ProductService) find(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, errProductNotFound
	}
	return product, nil
}
