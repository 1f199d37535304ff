package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/Mvvfaa/Web-tech-Project/internal/models"
	"github.com/Mvvfaa/Web-tech-Project/internal/repositories"
)

// CartItem is one client-submitted cart line. It deliberately has no price
// field: the unit price is always resolved from the catalog, so a manipulated
// price in the request body is dropped at decode time.
//
// Quantity and Product are raw JSON because clients send them in several
// shapes (numbers, numeric strings, embedded product objects) and the
// pipeline coerces rather than rejects.
type CartItem struct {
	ProductID string          `json:"productId"`
	Product   json.RawMessage `json:"product"`
	Quantity  json.RawMessage `json:"quantity"`
	Size      string          `json:"size"`
	Theme     string          `json:"theme"`
}

// resolveProductRef extracts the product identifier from a cart line:
// explicit productId first, then a nested product value carrying one.
func resolveProductRef(item CartItem) (string, error) {
	if id := strings.TrimSpace(item.ProductID); id != "" {
		return id, nil
	}
	if len(item.Product) > 0 {
		var id string
		if err := json.Unmarshal(item.Product, &id); err == nil && strings.TrimSpace(id) != "" {
			return strings.TrimSpace(id), nil
		}
		var embedded struct {
			ID      string `json:"id"`
			MongoID string `json:"_id"`
		}
		if err := json.Unmarshal(item.Product, &embedded); err == nil {
			if embedded.ID != "" {
				return embedded.ID, nil
			}
			if embedded.MongoID != "" {
				return embedded.MongoID, nil
			}
		}
	}
	return "", ErrInvalidProductRef
}

// coerceQuantity parses a quantity leniently. Anything that does not parse
// to an integer of at least 1 is clamped to 1; bad quantities never reject
// an order.
func coerceQuantity(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 1
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		if q := int(n); q >= 1 {
			return q
		}
		return 1
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if q, convErr := strconv.Atoi(strings.TrimSpace(s)); convErr == nil && q >= 1 {
			return q
		}
	}
	return 1
}

// priceCart resolves every cart line against the catalog and returns priced
// line items in input order plus their exact subtotal. Lookups for distinct
// lines run concurrently; the first failure aborts the whole cart and no
// partial result escapes. The cart payload is never trusted for name or
// price.
func (s *OrderService) priceCart(items []CartItem) ([]models.OrderItem, decimal.Decimal, error) {
	if len(items) == 0 {
		return nil, decimal.Zero, ErrEmptyCart
	}

	priced := make([]models.OrderItem, len(items))
	var g errgroup.Group
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			ref, err := resolveProductRef(item)
			if err != nil {
				return err
			}

			product, err := s.productRepo.GetByID(ref)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return fmt.Errorf("%w: %s", ErrProductNotFound, ref)
				}
				return fmt.Errorf("catalog lookup for %s failed: %w", ref, err)
			}

			quantity := coerceQuantity(item.Quantity)

			size := strings.TrimSpace(item.Size)
			if size == "" && len(product.Sizes) > 0 {
				size = product.Sizes[0]
			}
			theme := strings.TrimSpace(item.Theme)
			if theme == "" {
				theme = product.Theme
			}

			priced[i] = models.OrderItem{
				ProductID: product.ID,
				Name:      product.Name,
				UnitPrice: product.Price,
				Quantity:  quantity,
				Size:      size,
				Theme:     theme,
				Subtotal:  product.Price.Mul(decimal.NewFromInt(int64(quantity))),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, decimal.Zero, err
	}

	subtotal := decimal.Zero
	for _, item := range priced {
		subtotal = subtotal.Add(item.Subtotal)
	}
	return priced, subtotal, nil
}
