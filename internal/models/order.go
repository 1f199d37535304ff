package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusConfirmed OrderStatus = "Confirmed"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusDelivered OrderStatus = "Delivered"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// ValidOrderStatuses enumerates the accepted values for Order.Status.
var ValidOrderStatuses = map[OrderStatus]bool{
	OrderStatusPending:   true,
	OrderStatusConfirmed: true,
	OrderStatusShipped:   true,
	OrderStatusDelivered: true,
	OrderStatusCancelled: true,
}

// PaymentMethod is how the customer intends to pay.
type PaymentMethod string

const (
	PaymentCashOnDelivery PaymentMethod = "Cash on Delivery"
	PaymentCreditCard     PaymentMethod = "Credit Card"
	PaymentBankTransfer   PaymentMethod = "Bank Transfer"
)

// ValidPaymentMethods enumerates the accepted values for Order.PaymentMethod.
var ValidPaymentMethods = map[PaymentMethod]bool{
	PaymentCashOnDelivery: true,
	PaymentCreditCard:     true,
	PaymentBankTransfer:   true,
}

// PaymentStatus tracks settlement separately from fulfilment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "Pending"
	PaymentStatusCompleted PaymentStatus = "Completed"
	PaymentStatusFailed    PaymentStatus = "Failed"
)

// OrderItem is a single priced line within an order. Name and UnitPrice are
// always resolved from the catalog, never taken from the client payload.
type OrderItem struct {
	ID        uint            `json:"-" gorm:"primaryKey;autoIncrement"`
	OrderID   string          `json:"-" gorm:"index;type:varchar(36)"`
	ProductID string          `json:"product_id" gorm:"type:varchar(36)"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price" gorm:"type:numeric"`
	Quantity  int             `json:"quantity"`
	Size      string          `json:"size"`
	Theme     string          `json:"theme"`
	Subtotal  decimal.Decimal `json:"subtotal" gorm:"type:numeric"`
}

// ShippingAddress is embedded in Order.
type ShippingAddress struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// Order is a customer order. It is assembled once with its final order number
// and mutated afterwards only through status updates and soft deletion.
type Order struct {
	ID              string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderNumber     string          `json:"order_number" gorm:"uniqueIndex;type:varchar(64)"`
	UserID          string          `json:"user_id" gorm:"index;type:varchar(36)"`
	Items           []OrderItem     `json:"items" gorm:"foreignKey:OrderID"`
	Subtotal        decimal.Decimal `json:"subtotal" gorm:"type:numeric"`
	ShippingCost    decimal.Decimal `json:"shipping_cost" gorm:"type:numeric"`
	Total           decimal.Decimal `json:"total" gorm:"type:numeric"`
	CustomerName    string          `json:"customer_name"`
	CustomerEmail   string          `json:"customer_email"`
	CustomerPhone   string          `json:"customer_phone"`
	ShippingAddress ShippingAddress `json:"shipping_address" gorm:"embedded;embeddedPrefix:shipping_"`
	PaymentMethod   PaymentMethod   `json:"payment_method" gorm:"type:varchar(32)"`
	PaymentStatus   PaymentStatus   `json:"payment_status" gorm:"type:varchar(16)"`
	Status          OrderStatus     `json:"status" gorm:"type:varchar(16)"`
	Notes           string          `json:"notes" gorm:"type:varchar(500)"`
	IsActive        bool            `json:"is_active" gorm:"default:true"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}
