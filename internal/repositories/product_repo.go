package repositories

import (
	"github.com/Mvvfaa/Web-tech-Project/internal/models"
)

// ProductRepository defines the interface for product data access. It is the
// pipeline's catalog capability: GetByID is the authoritative price lookup.
type ProductRepository interface {
	GetAll() ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
}
