package repositories

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Mvvfaa/Web-tech-Project/internal/models"
)

// OrderCounter is the single-row table backing order number sequencing. The
// row is bumped with an atomic read-modify-write so concurrent placements
// never mint the same sequence, unlike a count-then-insert scheme.
type OrderCounter struct {
	ID    uint `gorm:"primaryKey"`
	Value int64
}

const orderCounterID = 1

// GORMOrderRepository is a GORM implementation of OrderRepository.
type GORMOrderRepository struct {
	db *gorm.DB
}

// NewGORMOrderRepository creates a new instance of GORMOrderRepository.
func NewGORMOrderRepository(db *gorm.DB) *GORMOrderRepository {
	return &GORMOrderRepository{
		db: db,
	}
}

// GetAll retrieves all active orders with their items, newest first.
func (r *GORMOrderRepository) GetAll() ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items").
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get all orders: %w", err)
	}
	return orders, nil
}

// GetByID retrieves a single order with its items.
func (r *GORMOrderRepository) GetByID(id string) (*models.Order, error) {
	var order models.Order
	if err := r.db.Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("order %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get order by ID %s: %w", id, err)
	}
	return &order, nil
}

// Create persists an order together with its items in a single transaction.
func (r *GORMOrderRepository) Create(order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		return tx.Create(order).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

// UpdateStatus updates the status of an order.
func (r *GORMOrderRepository) UpdateStatus(id string, status models.OrderStatus) error {
	res := r.db.Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return fmt.Errorf("failed to update order status: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	return nil
}

// SoftDelete marks an order inactive without removing it.
func (r *GORMOrderRepository) SoftDelete(id string) error {
	res := r.db.Model(&models.Order{}).
		Where("id = ?", id).
		Update("is_active", false)
	if res.Error != nil {
		return fmt.Errorf("failed to soft delete order: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("order %s: %w", id, ErrNotFound)
	}
	return nil
}

// NextOrderSequence atomically increments and returns the counter row. The
// increment and the read happen in one transaction, so two concurrent
// placements always observe distinct values.
func (r *GORMOrderRepository) NextOrderSequence() (int64, error) {
	var seq int64
	err := r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&OrderCounter{}).
			Where("id = ?", orderCounterID).
			UpdateColumn("value", gorm.Expr("value + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if err := tx.Create(&OrderCounter{ID: orderCounterID, Value: 1}).Error; err != nil {
				return err
			}
			seq = 1
			return nil
		}
		var counter OrderCounter
		if err := tx.First(&counter, "id = ?", orderCounterID).Error; err != nil {
			return err
		}
		seq = counter.Value
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to advance order sequence: %w", err)
	}
	return seq, nil
}
