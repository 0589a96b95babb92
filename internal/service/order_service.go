package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"techmart/internal/errors"
	"techmart/internal/model"
	"techmart/internal/repository"
)

const revenueMonths = 6

// OrderLine is one requested product line of a new order.
type OrderLine struct {
	ProductID uuid.UUID
	Quantity  int
}

// ShippingInfo carries the shipping fields of a new order.
type ShippingInfo struct {
	FirstName  string
	LastName   string
	Address    string
	City       string
	PostalCode string
	Phone      string
}

// MonthRevenue is the delivered-order revenue of one calendar month.
type MonthRevenue struct {
	Name    string          `json:"name"`
	Revenue decimal.Decimal `json:"revenue"`
}

// OrderService handles order placement, status transitions and reporting.
type OrderService interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, lines []OrderLine, shipping ShippingInfo) (*model.Order, error)
	CancelOrder(ctx context.Context, id uuid.UUID) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error)
	GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error)
	ListOrders(ctx context.Context) ([]model.Order, error)
	RevenueStats(ctx context.Context) ([]MonthRevenue, error)
}

type orderService struct {
	orderRepo   repository.OrderRepository
	productRepo repository.ProductRepository
	now         func() time.Time
}

// NewOrderService creates a new order service.
func NewOrderService(orderRepo repository.OrderRepository, productRepo repository.ProductRepository) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		now:         time.Now,
	}
}

// CreateOrder places an order all-or-nothing with stock: the order row, its
// item snapshots and the per-product stock decrements commit in one
// transaction. The decrement is conditional on remaining stock, so a
// concurrent order racing for the same units rolls this one back instead of
// overselling.
func (s *orderService) CreateOrder(ctx context.Context, userID uuid.UUID, lines []OrderLine, shipping ShippingInfo) (*model.Order, error) {
	if len(lines) == 0 {
		return nil, errors.ErrEmptyOrder
	}
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, errors.ErrInvalidQuantity
		}
	}

	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}
	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	byID := make(map[uuid.UUID]model.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	total := decimal.Zero
	items := make([]model.OrderItem, 0, len(lines))
	for _, line := range lines {
		product, ok := byID[line.ProductID]
		if !ok {
			return nil, errors.ErrProductNotFound
		}
		if product.StockCount < line.Quantity {
			return nil, errors.ErrInsufficientStock
		}
		price := product.EffectivePrice()
		total = total.Add(price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		items = append(items, model.OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     price,
		})
	}

	order := &model.Order{
		UserID:     userID,
		Total:      total,
		Status:     model.OrderStatusPending,
		FirstName:  shipping.FirstName,
		LastName:   shipping.LastName,
		Address:    shipping.Address,
		City:       shipping.City,
		PostalCode: shipping.PostalCode,
		Phone:      shipping.Phone,
		Items:      items,
	}

	err = s.orderRepo.WithTransaction(ctx, func(ctx context.Context, orders repository.OrderRepository, products repository.ProductRepository) error {
		if err := orders.Create(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		for _, line := range lines {
			if err := products.DecrementStock(ctx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

// CancelOrder cancels a PENDING order and restores each line's stock exactly
// once. Non-pending orders are rejected, so a repeated cancel cannot
// double-restore.
func (s *orderService) CancelOrder(ctx context.Context, id uuid.UUID) error {
	return s.orderRepo.WithTransaction(ctx, func(ctx context.Context, orders repository.OrderRepository, products repository.ProductRepository) error {
		order, err := orders.FindByIDForUpdate(ctx, id)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return errors.ErrOrderNotFound
			}
			return fmt.Errorf("load order: %w", err)
		}

		if !order.Status.CanTransition(model.OrderStatusCancelled) {
			return errors.ErrInvalidStatusTransition
		}

		for _, item := range order.Items {
			if err := products.IncrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return fmt.Errorf("restore stock: %w", err)
			}
		}

		return orders.UpdateStatus(ctx, id, model.OrderStatusCancelled)
	})
}

// UpdateStatus applies an admin status change through the transition table.
// A transition to CANCELLED takes the cancel path so stock is restored.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) (*model.Order, error) {
	if !status.Valid() {
		return nil, errors.ErrInvalidStatusTransition
	}

	if status == model.OrderStatusCancelled {
		if err := s.CancelOrder(ctx, id); err != nil {
			return nil, err
		}
		return s.GetOrder(ctx, id)
	}

	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrOrderNotFound
		}
		return nil, fmt.Errorf("load order: %w", err)
	}
	if !order.Status.CanTransition(status) {
		return nil, errors.ErrInvalidStatusTransition
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	order.Status = status
	return order, nil
}

func (s *orderService) GetOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errors.ErrOrderNotFound
		}
		return nil, fmt.Errorf("load order: %w", err)
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context) ([]model.Order, error) {
	return s.orderRepo.List(ctx)
}

// RevenueStats buckets delivered-order totals of the trailing six months by
// calendar month-of-year, zero-filling months without sales.
func (s *orderService) RevenueStats(ctx context.Context) ([]MonthRevenue, error) {
	now := s.now()
	since := now.AddDate(0, -revenueMonths, 0)

	orders, err := s.orderRepo.ListDeliveredSince(ctx, since)
	if err != nil {
		return nil, fmt.Errorf("load delivered orders: %w", err)
	}

	byMonth := make(map[time.Month]decimal.Decimal)
	for _, order := range orders {
		month := order.CreatedAt.Month()
		byMonth[month] = byMonth[month].Add(order.Total)
	}

	stats := make([]MonthRevenue, 0, revenueMonths)
	current := int(now.Month()) // 1-based
	for i := revenueMonths - 1; i >= 0; i-- {
		month := time.Month((current-1-i+12)%12 + 1)
		revenue, ok := byMonth[month]
		if !ok {
			revenue = decimal.Zero
		}
		stats = append(stats, MonthRevenue{
			Name:    month.String()[:3],
			Revenue: revenue,
		})
	}
	return stats, nil
}
