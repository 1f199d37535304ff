package services

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Mvvfaa/Web-tech-Project/internal/models"
	"github.com/Mvvfaa/Web-tech-Project/internal/repositories"
	"github.com/Mvvfaa/Web-tech-Project/pkg/ordernumber"
)

const (
	defaultCountry = "Pakistan"
	maxNotesLength = 500
)

// defaultShippingCost applies when the client omits the shipping cost or
// sends a non-numeric or negative value.
var defaultShippingCost = decimal.NewFromInt(250)

// OrderEventPublisher publishes order lifecycle events. A nil publisher
// disables event publication without affecting placements.
type OrderEventPublisher interface {
	PublishOrderPlaced(event map[string]interface{}) error
}

// AddressPayload is the client-submitted shipping address.
type AddressPayload struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

// PlaceOrderRequest is the cart payload consumed by PlaceOrder. ShippingCost
// is raw JSON so non-numeric values fall back to the default instead of
// failing the body decode.
type PlaceOrderRequest struct {
	Items           []CartItem      `json:"items"`
	CustomerName    string          `json:"customerName"`
	CustomerEmail   string          `json:"customerEmail"`
	CustomerPhone   string          `json:"customerPhone"`
	ShippingAddress AddressPayload  `json:"shippingAddress"`
	PaymentMethod   string          `json:"paymentMethod"`
	Notes           string          `json:"notes"`
	ShippingCost    json.RawMessage `json:"shippingCost"`
}

// OrderService assembles and manages orders. Placement re-derives every
// monetary figure from catalog state, assigns a unique order number, and
// persists the aggregate all-or-nothing.
type OrderService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	numberGen   *ordernumber.Generator
	events      OrderEventPublisher
}

// NewOrderService creates a new OrderService. The order repository doubles as
// the atomic sequence source for order numbers.
func NewOrderService(orderRepo repositories.OrderRepository, productRepo repositories.ProductRepository, events OrderEventPublisher) *OrderService {
	return &OrderService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		numberGen:   ordernumber.New(orderRepo),
		events:      events,
	}
}

// GetAllOrders retrieves all active orders, newest first.
func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	return s.orderRepo.GetAll()
}

// GetOrderByID retrieves a single order by its ID.
func (s *OrderService) GetOrderByID(id string) (*models.Order, error) {
	return s.orderRepo.GetByID(id)
}

// PlaceOrder runs the placement pipeline for an authenticated user:
// field validation, catalog-backed pricing, shipping-cost defaulting, order
// number assignment, and a single atomic write. Any failure aborts the whole
// placement before anything is persisted.
func (s *OrderService) PlaceOrder(userID string, req PlaceOrderRequest) (*models.Order, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUnauthenticated
	}

	// Cheap field validation precedes any catalog I/O.
	if err := validateCustomerFields(req); err != nil {
		return nil, err
	}
	if len(req.Notes) > maxNotesLength {
		return nil, fmt.Errorf("%w: notes cannot exceed %d characters", ErrValidation, maxNotesLength)
	}

	paymentMethod := models.PaymentCashOnDelivery
	if m := strings.TrimSpace(req.PaymentMethod); m != "" {
		paymentMethod = models.PaymentMethod(m)
		if !models.ValidPaymentMethods[paymentMethod] {
			return nil, fmt.Errorf("%w: unknown payment method %q", ErrValidation, m)
		}
	}

	items, subtotal, err := s.priceCart(req.Items)
	if err != nil {
		return nil, err
	}

	shippingCost := shippingCostOrDefault(req.ShippingCost)
	total := subtotal.Add(shippingCost)

	country := strings.TrimSpace(req.ShippingAddress.Country)
	if country == "" {
		country = defaultCountry
	}

	// The order number is assigned last, so failed placements never consume
	// a visible identifier slot ahead of successful ones.
	orderNumber, err := s.numberGen.Next()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	now := time.Now()
	order := &models.Order{
		ID:            uuid.New().String(),
		OrderNumber:   orderNumber,
		UserID:        userID,
		Items:         items,
		Subtotal:      subtotal,
		ShippingCost:  shippingCost,
		Total:         total,
		CustomerName:  strings.TrimSpace(req.CustomerName),
		CustomerEmail: strings.TrimSpace(req.CustomerEmail),
		CustomerPhone: strings.TrimSpace(req.CustomerPhone),
		ShippingAddress: models.ShippingAddress{
			Street:     strings.TrimSpace(req.ShippingAddress.Street),
			City:       strings.TrimSpace(req.ShippingAddress.City),
			PostalCode: strings.TrimSpace(req.ShippingAddress.PostalCode),
			Country:    country,
		},
		PaymentMethod: paymentMethod,
		PaymentStatus: models.PaymentStatusPending,
		Status:        models.OrderStatusPending,
		Notes:         req.Notes,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.orderRepo.Create(order); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	s.publishOrderPlaced(order)

	return order, nil
}

// UpdateOrderStatus updates the status of an existing order.
func (s *OrderService) UpdateOrderStatus(id string, status models.OrderStatus) error {
	if !models.ValidOrderStatuses[status] {
		return fmt.Errorf("%w: invalid order status %q", ErrValidation, status)
	}
	if err := s.orderRepo.UpdateStatus(id, status); err != nil {
		return fmt.Errorf("failed to update status for order %s: %w", id, err)
	}
	return nil
}

// SoftDeleteOrder marks an order inactive. Orders are never physically
// deleted.
func (s *OrderService) SoftDeleteOrder(id string) error {
	if err := s.orderRepo.SoftDelete(id); err != nil {
		return fmt.Errorf("failed to delete order %s: %w", id, err)
	}
	return nil
}

// publishOrderPlaced emits an order.placed event. Publication failures are
// logged, never surfaced: the order is already committed.
func (s *OrderService) publishOrderPlaced(order *models.Order) {
	if s.events == nil {
		return
	}
	event := map[string]interface{}{
		"orderID":     order.ID,
		"orderNumber": order.OrderNumber,
		"userID":      order.UserID,
		"status":      order.Status,
		"total":       order.Total.String(),
	}
	if err := s.events.PublishOrderPlaced(event); err != nil {
		log.Printf("Warning: failed to publish order placed event for %s: %v", order.OrderNumber, err)
	}
}

// validateCustomerFields checks required contact and address fields in a
// fixed order and reports the first one missing.
func validateCustomerFields(req PlaceOrderRequest) error {
	checks := []struct {
		name  string
		value string
	}{
		{"customerName", req.CustomerName},
		{"customerEmail", req.CustomerEmail},
		{"customerPhone", req.CustomerPhone},
		{"shippingAddress.street", req.ShippingAddress.Street},
		{"shippingAddress.city", req.ShippingAddress.City},
		{"shippingAddress.postalCode", req.ShippingAddress.PostalCode},
	}
	for _, c := range checks {
		if strings.TrimSpace(c.value) == "" {
			return &MissingFieldError{Field: c.name}
		}
	}
	return nil
}

// shippingCostOrDefault accepts a client-supplied shipping cost only when it
// is a non-negative JSON number; anything else falls back to the default.
func shippingCostOrDefault(raw json.RawMessage) decimal.Decimal {
	if len(raw) == 0 {
		return defaultShippingCost
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil || n < 0 {
		return defaultShippingCost
	}
	return decimal.NewFromFloat(n)
}
