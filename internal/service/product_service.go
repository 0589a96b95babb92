package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"techmart/internal/cache"
	"techmart/internal/errors"
	"techmart/internal/model"
	"techmart/internal/repository"
)

const (
	productCacheTTL = 5 * time.Minute
	bestsellerLimit = 5
	// searchResultLimit caps name search results, mirroring the storefront's
	// suggestion dropdown size.
	searchResultLimit      = 2
	defaultTopSellingLimit = 3
)

const bestsellerCacheKey = "products:best"

// ProductInput carries the fields of a product create request.
type ProductInput struct {
	Name            string
	Slug            string
	CategoryID      uuid.UUID
	Description     string
	Price           decimal.Decimal
	DiscountedPrice decimal.NullDecimal
	StockCount      int
	Bestseller      bool
	FeaturedImage   string
	Gallery         []string
}

// ProductPatch carries the optional fields of a product update; nil fields are
// left untouched.
type ProductPatch struct {
	Name            *string
	Slug            *string
	Description     *string
	Price           *decimal.Decimal
	DiscountedPrice *decimal.NullDecimal
	StockCount      *int
	Bestseller      *bool
	FeaturedImage   *string
	Gallery         []string
}

func (p ProductPatch) empty() bool {
	return p.Name == nil && p.Slug == nil && p.Description == nil &&
		p.Price == nil && p.DiscountedPrice == nil && p.StockCount == nil &&
		p.Bestseller == nil && p.FeaturedImage == nil && p.Gallery == nil
}

// TopSellingProduct is a product annotated with its historical sales.
type TopSellingProduct struct {
	model.Product
	TotalSold    int64           `json:"total_sold"`
	TotalRevenue decimal.Decimal `json:"total_revenue"`
}

// ProductService handles product CRUD, search and sales aggregation.
type ProductService interface {
	Create(ctx context.Context, input ProductInput) (*model.Product, error)
	Update(ctx context.Context, id uuid.UUID, patch ProductPatch) (*model.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*model.Product, error)
	List(ctx context.Context) ([]model.Product, error)
	Search(ctx context.Context, query string) ([]model.Product, error)
	BestSellers(ctx context.Context) ([]model.Product, error)
	TopSelling(ctx context.Context, limit int) ([]TopSellingProduct, error)
}

type productService struct {
	productRepo repository.ProductRepository
	cache       *cache.Client
}

// NewProductService creates a new product service.
func NewProductService(productRepo repository.ProductRepository, cache *cache.Client) ProductService {
	return &productService{
		productRepo: productRepo,
		cache:       cache,
	}
}

func (s *productService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("product:%s", id)
}

func (s *productService) Create(ctx context.Context, input ProductInput) (*model.Product, error) {
	product := &model.Product{
		Name:            input.Name,
		Slug:            input.Slug,
		CategoryID:      input.CategoryID,
		Description:     input.Description,
		Price:           input.Price,
		DiscountedPrice: input.DiscountedPrice,
		StockCount:      input.StockCount,
		Bestseller:      input.Bestseller,
		FeaturedImage:   input.FeaturedImage,
		Gallery:         input.Gallery,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	_ = s.cache.Delete(ctx, bestsellerCacheKey)
	return product, nil
}

func (s *productService) Update(ctx context.Context, id uuid.UUID, patch ProductPatch) (*model.Product, error) {
	if patch.empty() {
		return nil, errors.ErrNothingToUpdate
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrProductNotFound
		}
		return nil, fmt.Errorf("load product: %w", err)
	}

	if patch.Name != nil {
		product.Name = *patch.Name
	}
	if patch.Slug != nil {
		product.Slug = *patch.Slug
	}
	if patch.Description != nil {
		product.Description = *patch.Description
	}
	if patch.Price != nil {
		product.Price = *patch.Price
	}
	if patch.DiscountedPrice != nil {
		product.DiscountedPrice = *patch.DiscountedPrice
	}
	if patch.StockCount != nil {
		product.StockCount = *patch.StockCount
	}
	if patch.Bestseller != nil {
		product.Bestseller = *patch.Bestseller
	}
	if patch.FeaturedImage != nil {
		product.FeaturedImage = *patch.FeaturedImage
	}
	if patch.Gallery != nil {
		product.Gallery = patch.Gallery
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	_ = s.cache.Delete(ctx, s.cacheKey(id))
	_ = s.cache.Delete(ctx, bestsellerCacheKey)
	return product, nil
}

func (s *productService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.productRepo.Delete(ctx, id); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrProductNotFound
		}
		return fmt.Errorf("delete product: %w", err)
	}

	_ = s.cache.Delete(ctx, s.cacheKey(id))
	_ = s.cache.Delete(ctx, bestsellerCacheKey)
	return nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var cached model.Product
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrProductNotFound
		}
		return nil, fmt.Errorf("load product: %w", err)
	}

	s.cache.SetJSON(ctx, s.cacheKey(id), product, productCacheTTL)
	return product, nil
}

func (s *productService) List(ctx context.Context) ([]model.Product, error) {
	return s.productRepo.List(ctx)
}

func (s *productService) Search(ctx context.Context, query string) ([]model.Product, error) {
	return s.productRepo.Search(ctx, query, searchResultLimit)
}

// BestSellers returns manually flagged products, cached briefly since the
// storefront home page hits this on every load.
func (s *productService) BestSellers(ctx context.Context) ([]model.Product, error) {
	var cached []model.Product
	if s.cache.GetJSON(ctx, bestsellerCacheKey, &cached) {
		return cached, nil
	}

	products, err := s.productRepo.ListBestsellers(ctx, bestsellerLimit)
	if err != nil {
		return nil, err
	}

	s.cache.SetJSON(ctx, bestsellerCacheKey, products, productCacheTTL)
	return products, nil
}

// TopSelling ranks products by historical ordered quantity, descending, with
// product id ascending as tie-break. Revenue is quantity times the effective
// price.
func (s *productService) TopSelling(ctx context.Context, limit int) ([]TopSellingProduct, error) {
	if limit <= 0 {
		limit = defaultTopSellingLimit
	}

	// Over-fetch so rows whose product has since been deleted can be skipped.
	rows, err := s.productRepo.TopSelling(ctx, limit*2)
	if err != nil {
		return nil, fmt.Errorf("aggregate sales: %w", err)
	}
	if len(rows) == 0 {
		return []TopSellingProduct{}, nil
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ProductID)
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}

	byID := make(map[uuid.UUID]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	result := make([]TopSellingProduct, 0, limit)
	for _, row := range rows {
		product, ok := byID[row.ProductID]
		if !ok {
			continue
		}
		revenue := product.EffectivePrice().Mul(decimal.NewFromInt(row.TotalSold))
		result = append(result, TopSellingProduct{
			Product:      product,
			TotalSold:    row.TotalSold,
			TotalRevenue: revenue,
		})
		if len(result) == limit {
			break
		}
	}
	return result, nil
}
