package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"techmart/internal/errors"
	"techmart/internal/model"
	"techmart/internal/repository"
)

func TestProductService_Update(t *testing.T) {
	id := uuid.New()

	t.Run("empty patch is rejected", func(t *testing.T) {
		service := NewProductService(new(MockProductRepository), nil)
		_, err := service.Update(context.Background(), id, ProductPatch{})
		assert.Equal(t, errors.ErrNothingToUpdate, err)
	})

	t.Run("unknown product", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)

		name := "New Name"
		service := NewProductService(mockRepo, nil)
		_, err := service.Update(context.Background(), id, ProductPatch{Name: &name})
		assert.Equal(t, errors.ErrProductNotFound, err)
	})

	t.Run("patches only the provided fields", func(t *testing.T) {
		product := &model.Product{
			ID:         id,
			Name:       "Old Name",
			Slug:       "old-slug",
			Price:      decimal.NewFromInt(100),
			StockCount: 4,
		}
		mockRepo := new(MockProductRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(product, nil)
		mockRepo.On("Update", mock.Anything, product).Return(nil)

		stock := 9
		service := NewProductService(mockRepo, nil)
		updated, err := service.Update(context.Background(), id, ProductPatch{StockCount: &stock})

		assert.NoError(t, err)
		assert.Equal(t, 9, updated.StockCount)
		assert.Equal(t, "Old Name", updated.Name)
		assert.Equal(t, "old-slug", updated.Slug)
		mockRepo.AssertExpectations(t)
	})

	t.Run("discount can be cleared with a null value", func(t *testing.T) {
		product := &model.Product{
			ID:              id,
			Price:           decimal.NewFromInt(100),
			DiscountedPrice: decimal.NullDecimal{Decimal: decimal.NewFromInt(80), Valid: true},
		}
		mockRepo := new(MockProductRepository)
		mockRepo.On("FindByID", mock.Anything, id).Return(product, nil)
		mockRepo.On("Update", mock.Anything, product).Return(nil)

		cleared := decimal.NullDecimal{}
		service := NewProductService(mockRepo, nil)
		updated, err := service.Update(context.Background(), id, ProductPatch{DiscountedPrice: &cleared})

		assert.NoError(t, err)
		assert.False(t, updated.DiscountedPrice.Valid)
		assert.True(t, updated.EffectivePrice().Equal(decimal.NewFromInt(100)))
	})
}

func TestProductService_Search(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockRepo.On("Search", mock.Anything, "watch", searchResultLimit).Return([]model.Product{
		{Name: "Smart Watch"},
		{Name: "Watch Band"},
	}, nil)

	service := NewProductService(mockRepo, nil)
	products, err := service.Search(context.Background(), "watch")

	assert.NoError(t, err)
	assert.Len(t, products, 2)
	mockRepo.AssertExpectations(t)
}

func TestProductService_BestSellers(t *testing.T) {
	mockRepo := new(MockProductRepository)
	mockRepo.On("ListBestsellers", mock.Anything, bestsellerLimit).Return([]model.Product{
		{Name: "Smart Watch", Bestseller: true},
	}, nil)

	service := NewProductService(mockRepo, nil)
	products, err := service.BestSellers(context.Background())

	assert.NoError(t, err)
	assert.Len(t, products, 1)
	mockRepo.AssertExpectations(t)
}

func TestProductService_TopSelling(t *testing.T) {
	idA := uuid.New()
	idB := uuid.New()
	idC := uuid.New()

	products := []model.Product{
		{ID: idA, Name: "A", Price: decimal.NewFromInt(10)},
		{ID: idB, Name: "B", Price: decimal.NewFromInt(20), DiscountedPrice: decimal.NullDecimal{Decimal: decimal.NewFromInt(15), Valid: true}},
		{ID: idC, Name: "C", Price: decimal.NewFromInt(30)},
	}

	t.Run("ranks by quantity and computes revenue at effective price", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		mockRepo.On("TopSelling", mock.Anything, 4).Return([]repository.TopSellingRow{
			{ProductID: idB, TotalSold: 10},
			{ProductID: idA, TotalSold: 7},
			{ProductID: idC, TotalSold: 5},
		}, nil)
		mockRepo.On("FindByIDs", mock.Anything, []uuid.UUID{idB, idA, idC}).Return(products, nil)

		service := NewProductService(mockRepo, nil)
		result, err := service.TopSelling(context.Background(), 2)

		assert.NoError(t, err)
		assert.Len(t, result, 2)
		assert.Equal(t, "B", result[0].Name)
		assert.Equal(t, int64(10), result[0].TotalSold)
		assert.True(t, result[0].TotalRevenue.Equal(decimal.NewFromInt(150)))
		assert.Equal(t, "A", result[1].Name)
		assert.True(t, result[1].TotalRevenue.Equal(decimal.NewFromInt(70)))
	})

	t.Run("rows of deleted products are skipped", func(t *testing.T) {
		deleted := uuid.New()
		mockRepo := new(MockProductRepository)
		mockRepo.On("TopSelling", mock.Anything, 4).Return([]repository.TopSellingRow{
			{ProductID: deleted, TotalSold: 100},
			{ProductID: idA, TotalSold: 7},
			{ProductID: idC, TotalSold: 5},
		}, nil)
		mockRepo.On("FindByIDs", mock.Anything, []uuid.UUID{deleted, idA, idC}).Return(products, nil)

		service := NewProductService(mockRepo, nil)
		result, err := service.TopSelling(context.Background(), 2)

		assert.NoError(t, err)
		assert.Len(t, result, 2)
		assert.Equal(t, "A", result[0].Name)
		assert.Equal(t, "C", result[1].Name)
	})

	t.Run("no sales yet", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		mockRepo.On("TopSelling", mock.Anything, defaultTopSellingLimit*2).Return([]repository.TopSellingRow{}, nil)

		service := NewProductService(mockRepo, nil)
		result, err := service.TopSelling(context.Background(), 0)

		assert.NoError(t, err)
		assert.Empty(t, result)
	})
}

func TestProductService_Delete(t *testing.T) {
	id := uuid.New()

	t.Run("unknown product", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		mockRepo.On("Delete", mock.Anything, id).Return(gorm.ErrRecordNotFound)

		service := NewProductService(mockRepo, nil)
		err := service.Delete(context.Background(), id)
		assert.Equal(t, errors.ErrProductNotFound, err)
	})

	t.Run("deletes the product", func(t *testing.T) {
		mockRepo := new(MockProductRepository)
		mockRepo.On("Delete", mock.Anything, id).Return(nil)

		service := NewProductService(mockRepo, nil)
		assert.NoError(t, service.Delete(context.Background(), id))
	})
}
