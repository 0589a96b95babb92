package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"techmart/internal/errors"
	"techmart/internal/model"
	"techmart/internal/repository"
)

// CartService handles the single active cart of each user.
type CartService interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*model.Cart, error)
	AddToCart(ctx context.Context, userID, productID uuid.UUID, quantity int) error
	UpdateItem(ctx context.Context, itemID uuid.UUID, quantity int) (*model.CartItem, error)
	RemoveItem(ctx context.Context, itemID uuid.UUID) error
	ClearCart(ctx context.Context, userID uuid.UUID) error
}

type cartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewCartService creates a new cart service.
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) CartService {
	return &cartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// GetCart returns the user's cart, or an empty cart shape when none exists yet.
func (s *cartService) GetCart(ctx context.Context, userID uuid.UUID) (*model.Cart, error) {
	cart, err := s.cartRepo.FindByUserIDWithItems(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return &model.Cart{UserID: userID, Items: []model.CartItem{}}, nil
		}
		return nil, fmt.Errorf("load cart: %w", err)
	}
	return cart, nil
}

// AddToCart adds quantity of a product, creating the cart lazily. An existing
// line is incremented instead of duplicated; the price is snapshotted from the
// product's effective price at add time. Stock is checked but not reserved.
func (s *cartService) AddToCart(ctx context.Context, userID, productID uuid.UUID, quantity int) error {
	if quantity <= 0 {
		return errors.ErrInvalidQuantity
	}

	product, err := s.productRepo.FindByID(ctx, productID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrProductNotFound
		}
		return fmt.Errorf("load product: %w", err)
	}
	if product.StockCount < quantity {
		return errors.ErrInsufficientStock
	}

	cart, err := s.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			return fmt.Errorf("load cart: %w", err)
		}
		cart = &model.Cart{UserID: userID}
		if err := s.cartRepo.CreateCart(ctx, cart); err != nil {
			return fmt.Errorf("create cart: %w", err)
		}
	}

	existing, err := s.cartRepo.FindItem(ctx, cart.ID, productID)
	if err == nil {
		return s.cartRepo.IncrementItemQuantity(ctx, existing.ID, quantity)
	}
	if err != gorm.ErrRecordNotFound {
		return fmt.Errorf("load cart item: %w", err)
	}

	item := &model.CartItem{
		CartID:    cart.ID,
		ProductID: productID,
		Quantity:  quantity,
		Price:     product.EffectivePrice(),
	}
	return s.cartRepo.CreateItem(ctx, item)
}

// UpdateItem sets a line's quantity; non-positive quantities are rejected.
func (s *cartService) UpdateItem(ctx context.Context, itemID uuid.UUID, quantity int) (*model.CartItem, error) {
	if quantity <= 0 {
		return nil, errors.ErrInvalidQuantity
	}

	if err := s.cartRepo.UpdateItemQuantity(ctx, itemID, quantity); err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrCartItemNotFound
		}
		return nil, fmt.Errorf("update cart item: %w", err)
	}

	item, err := s.cartRepo.FindItemByID(ctx, itemID)
	if err != nil {
		return nil, fmt.Errorf("load cart item: %w", err)
	}
	return item, nil
}

func (s *cartService) RemoveItem(ctx context.Context, itemID uuid.UUID) error {
	if err := s.cartRepo.DeleteItem(ctx, itemID); err != nil {
		if err == gorm.ErrRecordNotFound {
			return errors.ErrCartItemNotFound
		}
		return fmt.Errorf("remove cart item: %w", err)
	}
	return nil
}

// ClearCart empties the cart; a missing cart is a no-op success.
func (s *cartService) ClearCart(ctx context.Context, userID uuid.UUID) error {
	cart, err := s.cartRepo.FindByUserID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return fmt.Errorf("load cart: %w", err)
	}
	return s.cartRepo.DeleteItemsByCart(ctx, cart.ID)
}
