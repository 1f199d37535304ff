package repositories

import (
	"github.com/Mvvfaa/Web-tech-Project/internal/models"
)

// OrderRepository defines the interface for order data access. Orders are
// never physically deleted; SoftDelete flips the active flag.
//
// NextOrderSequence hands out the order-number sequence. Implementations
// must make the increment atomic so that concurrent placements can never
// observe the same value.
type OrderRepository interface {
	GetAll() ([]models.Order, error)
	GetByID(id string) (*models.Order, error)
	Create(order *models.Order) error
	UpdateStatus(id string, status models.OrderStatus) error
	SoftDelete(id string) error
	NextOrderSequence() (int64, error)
}
