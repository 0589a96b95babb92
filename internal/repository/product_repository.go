package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"techmart/internal/errors"
	"techmart/internal/model"
)

// TopSellingRow is one aggregated sales line, summed over all order items.
type TopSellingRow struct {
	ProductID uuid.UUID `gorm:"column:product_id"`
	TotalSold int64     `gorm:"column:total_sold"`
}

// ProductRepository defines product persistence operations.
type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)
	List(ctx context.Context) ([]model.Product, error)
	Search(ctx context.Context, query string, limit int) ([]model.Product, error)
	ListBestsellers(ctx context.Context, limit int) ([]model.Product, error)
	TopSelling(ctx context.Context, limit int) ([]TopSellingRow, error)
	CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error)
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error
	IncrementStock(ctx context.Context, id uuid.UUID, quantity int) error
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository builds a GORM-backed repository.
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Create(product).Error
}

func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Product{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) List(ctx context.Context) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.WithContext(ctx).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Search matches product names case-insensitively by substring.
func (r *productRepository) Search(ctx context.Context, query string, limit int) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE LOWER(?)", "%"+query+"%").
		Limit(limit).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) ListBestsellers(ctx context.Context, limit int) ([]model.Product, error) {
	var products []model.Product
	if err := r.db.WithContext(ctx).Where("bestseller = ?", true).
		Limit(limit).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// TopSelling aggregates historical order item quantities per product, ordered
// by total sold descending with product id ascending as tie-break.
func (r *productRepository) TopSelling(ctx context.Context, limit int) ([]TopSellingRow, error) {
	var rows []TopSellingRow
	if err := r.db.WithContext(ctx).Model(&model.OrderItem{}).
		Select("product_id, SUM(quantity) AS total_sold").
		Group("product_id").
		Order("total_sold DESC, product_id ASC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *productRepository) CountByCategory(ctx context.Context, categoryID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("category_id = ?", categoryID).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DecrementStock conditionally decrements stock, failing with
// ErrInsufficientStock when the product is missing or stock is too low. The
// WHERE guard keeps stock from ever going negative under concurrent orders.
func (r *productRepository) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	res := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ? AND stock_count >= ?", id, quantity).
		UpdateColumn("stock_count", gorm.Expr("stock_count - ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errors.ErrInsufficientStock
	}
	return nil
}

// IncrementStock restores stock, used when cancelling orders.
func (r *productRepository) IncrementStock(ctx context.Context, id uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).
		Where("id = ?", id).
		UpdateColumn("stock_count", gorm.Expr("stock_count + ?", quantity)).Error
}
