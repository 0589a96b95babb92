package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"techmart/internal/errors"
	"techmart/internal/model"
)

func TestCategoryService_Delete(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name          string
		setupMock     func(*MockCategoryRepository, *MockProductRepository)
		expectedError error
	}{
		{
			name: "deletes an empty category",
			setupMock: func(categories *MockCategoryRepository, products *MockProductRepository) {
				categories.On("FindByID", mock.Anything, id).Return(&model.Category{ID: id}, nil)
				products.On("CountByCategory", mock.Anything, id).Return(int64(0), nil)
				categories.On("Delete", mock.Anything, id).Return(nil)
			},
		},
		{
			name: "category with products is protected",
			setupMock: func(categories *MockCategoryRepository, products *MockProductRepository) {
				categories.On("FindByID", mock.Anything, id).Return(&model.Category{ID: id}, nil)
				products.On("CountByCategory", mock.Anything, id).Return(int64(3), nil)
			},
			expectedError: errors.ErrCategoryHasProducts,
		},
		{
			name: "unknown category",
			setupMock: func(categories *MockCategoryRepository, products *MockProductRepository) {
				categories.On("FindByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: errors.ErrCategoryNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockCategories := new(MockCategoryRepository)
			mockProducts := new(MockProductRepository)
			tt.setupMock(mockCategories, mockProducts)

			service := NewCategoryService(mockCategories, mockProducts)
			err := service.Delete(context.Background(), id)

			if tt.expectedError != nil {
				assert.Equal(t, tt.expectedError, err)
			} else {
				assert.NoError(t, err)
			}

			mockCategories.AssertExpectations(t)
			mockProducts.AssertExpectations(t)
		})
	}
}

func TestCategoryService_Update(t *testing.T) {
	id := uuid.New()

	t.Run("renames the category", func(t *testing.T) {
		mockCategories := new(MockCategoryRepository)
		mockCategories.On("FindByID", mock.Anything, id).Return(&model.Category{ID: id, Name: "Old"}, nil)
		mockCategories.On("Update", mock.Anything, mock.AnythingOfType("*model.Category")).Return(nil)

		service := NewCategoryService(mockCategories, new(MockProductRepository))
		category, err := service.Update(context.Background(), id, "New")

		assert.NoError(t, err)
		assert.Equal(t, "New", category.Name)
		mockCategories.AssertExpectations(t)
	})

	t.Run("unknown category", func(t *testing.T) {
		mockCategories := new(MockCategoryRepository)
		mockCategories.On("FindByID", mock.Anything, id).Return(nil, gorm.ErrRecordNotFound)

		service := NewCategoryService(mockCategories, new(MockProductRepository))
		_, err := service.Update(context.Background(), id, "New")
		assert.Equal(t, errors.ErrCategoryNotFound, err)
	})

	t.Run("database failure is not reported as a missing category", func(t *testing.T) {
		dbErr := fmt.Errorf("dial tcp 127.0.0.1:3306: connect: connection refused")
		mockCategories := new(MockCategoryRepository)
		mockCategories.On("FindByID", mock.Anything, id).Return(nil, dbErr)

		service := NewCategoryService(mockCategories, new(MockProductRepository))
		_, err := service.Update(context.Background(), id, "New")

		assert.ErrorIs(t, err, dbErr)
		assert.NotErrorIs(t, err, errors.ErrCategoryNotFound)
	})
}

func TestCategoryService_Create(t *testing.T) {
	mockCategories := new(MockCategoryRepository)
	mockCategories.On("Create", mock.Anything, mock.AnythingOfType("*model.Category")).Return(nil)

	service := NewCategoryService(mockCategories, new(MockProductRepository))
	category, err := service.Create(context.Background(), "Headphones")

	assert.NoError(t, err)
	assert.Equal(t, "Headphones", category.Name)
	mockCategories.AssertExpectations(t)
}
