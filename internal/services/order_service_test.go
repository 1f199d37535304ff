package services_test

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Mvvfaa/Web-tech-Project/internal/models"
	"github.com/Mvvfaa/Web-tech-Project/internal/repositories"
	"github.com/Mvvfaa/Web-tech-Project/internal/services"
)

// MockOrderRepository is a mock implementation of repositories.OrderRepository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) GetAll() ([]models.Order, error) {
	args := m.Called()
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockOrderRepository) GetByID(id string) (*models.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderRepository) Create(order *models.Order) error {
	args := m.Called(order)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateStatus(id string, status models.OrderStatus) error {
	args := m.Called(id, status)
	return args.Error(0)
}

func (m *MockOrderRepository) SoftDelete(id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockOrderRepository) NextOrderSequence() (int64, error) {
	args := m.Called()
	return args.Get(0).(int64), args.Error(1)
}

// catalogWith returns a mock product repository primed with one product.
func catalogWith(product *models.Product) *MockProductRepository {
	repo := new(MockProductRepository)
	repo.On("GetByID", product.ID).Return(product, nil)
	return repo
}

func candleProduct() *models.Product {
	return &models.Product{
		ID:    "prod-1",
		Name:  "Classic Pillar Candle",
		Price: decimal.NewFromInt(500),
		Theme: "Classic",
		Sizes: []string{"Small", "Medium", "Large"},
		Stock: 10,
	}
}

func validRequest(items []services.CartItem) services.PlaceOrderRequest {
	return services.PlaceOrderRequest{
		Items:         items,
		CustomerName:  "Ayesha Khan",
		CustomerEmail: "ayesha@example.com",
		CustomerPhone: "+92-300-1234567",
		ShippingAddress: services.AddressPayload{
			Street:     "12 Mall Road",
			City:       "Lahore",
			PostalCode: "54000",
		},
	}
}

func cartLine(productID string, quantity string) services.CartItem {
	item := services.CartItem{ProductID: productID}
	if quantity != "" {
		item.Quantity = json.RawMessage(quantity)
	}
	return item
}

func TestPlaceOrder_Unauthenticated(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	service := services.NewOrderService(orderRepo, productRepo, nil)

	order, err := service.PlaceOrder("", validRequest([]services.CartItem{cartLine("prod-1", "1")}))

	assert.ErrorIs(t, err, services.ErrUnauthenticated)
	assert.Nil(t, order)
	productRepo.AssertNotCalled(t, "GetByID")
	orderRepo.AssertNotCalled(t, "Create")
}

func TestPlaceOrder_MissingFieldsPrecedeCatalogLookups(t *testing.T) {
	cases := []struct {
		field  string
		mutate func(*services.PlaceOrderRequest)
	}{
		{"customerName", func(r *services.PlaceOrderRequest) { r.CustomerName = "" }},
		{"customerEmail", func(r *services.PlaceOrderRequest) { r.CustomerEmail = "  " }},
		{"customerPhone", func(r *services.PlaceOrderRequest) { r.CustomerPhone = "" }},
		{"shippingAddress.street", func(r *services.PlaceOrderRequest) { r.ShippingAddress.Street = "" }},
		{"shippingAddress.city", func(r *services.PlaceOrderRequest) { r.ShippingAddress.City = "" }},
		{"shippingAddress.postalCode", func(r *services.PlaceOrderRequest) { r.ShippingAddress.PostalCode = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.field, func(t *testing.T) {
			orderRepo := new(MockOrderRepository)
			productRepo := new(MockProductRepository)
			service := services.NewOrderService(orderRepo, productRepo, nil)

			req := validRequest([]services.CartItem{cartLine("prod-1", "1")})
			tc.mutate(&req)

			order, err := service.PlaceOrder("user-1", req)

			assert.Nil(t, order)
			var missing *services.MissingFieldError
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, tc.field, missing.Field)
			// Cheap validation must run before any catalog I/O
			productRepo.AssertNotCalled(t, "GetByID")
			orderRepo.AssertNotCalled(t, "Create")
		})
	}
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	service := services.NewOrderService(orderRepo, productRepo, nil)

	order, err := service.PlaceOrder("user-1", validRequest(nil))

	assert.ErrorIs(t, err, services.ErrEmptyCart)
	assert.Nil(t, order)
	orderRepo.AssertNotCalled(t, "Create")
	orderRepo.AssertNotCalled(t, "NextOrderSequence")
}

func TestPlaceOrder_ProductNotFoundAbortsEverything(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	productRepo.On("GetByID", "prod-1").Return(candleProduct(), nil).Maybe()
	productRepo.On("GetByID", "ghost").Return(nil, fmt.Errorf("product ghost: %w", repositories.ErrNotFound))
	service := services.NewOrderService(orderRepo, productRepo, nil)

	req := validRequest([]services.CartItem{
		cartLine("prod-1", "1"),
		cartLine("ghost", "1"),
	})
	order, err := service.PlaceOrder("user-1", req)

	assert.ErrorIs(t, err, services.ErrProductNotFound)
	assert.Contains(t, err.Error(), "ghost")
	assert.Nil(t, order)
	// All-or-nothing: nothing persisted, no order number minted
	orderRepo.AssertNotCalled(t, "Create")
	orderRepo.AssertNotCalled(t, "NextOrderSequence")
}

func TestPlaceOrder_InvalidProductRef(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	service := services.NewOrderService(orderRepo, productRepo, nil)

	req := validRequest([]services.CartItem{{Quantity: json.RawMessage("1")}})
	order, err := service.PlaceOrder("user-1", req)

	assert.ErrorIs(t, err, services.ErrInvalidProductRef)
	assert.Nil(t, order)
	orderRepo.AssertNotCalled(t, "Create")
}

func TestPlaceOrder_WorkedExample(t *testing.T) {
	// Cart [{P1 x2}] with catalog price 500 and no explicit shipping cost:
	// subtotal 1000, shipping 250 (default), total 1250.
	orderRepo := new(MockOrderRepository)
	orderRepo.On("NextOrderSequence").Return(int64(1), nil).Once()
	orderRepo.On("Create", mock.AnythingOfType("*models.Order")).Return(nil).Once()
	productRepo := catalogWith(candleProduct())
	service := services.NewOrderService(orderRepo, productRepo, nil)

	order, err := service.PlaceOrder("user-1", validRequest([]services.CartItem{cartLine("prod-1", "2")}))

	require.NoError(t, err)
	require.NotNil(t, order)
	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(1000)), "subtotal = %s", order.Subtotal)
	assert.True(t, order.ShippingCost.Equal(decimal.NewFromInt(250)), "shippingCost = %s", order.ShippingCost)
	assert.True(t, order.Total.Equal(decimal.NewFromInt(1250)), "total = %s", order.Total)
	assert.True(t, order.Total.Equal(order.Subtotal.Add(order.ShippingCost)))

	require.Len(t, order.Items, 1)
	item := order.Items[0]
	assert.Equal(t, "Classic Pillar Candle", item.Name)
	assert.True(t, item.UnitPrice.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, 2, item.Quantity)
	assert.True(t, item.Subtotal.Equal(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))))

	assert.Equal(t, "user-1", order.UserID)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.Equal(t, models.PaymentCashOnDelivery, order.PaymentMethod)
	assert.Equal(t, models.PaymentStatusPending, order.PaymentStatus)
	assert.Equal(t, "Pakistan", order.ShippingAddress.Country)
	assert.True(t, order.IsActive)
	assert.Regexp(t, regexp.MustCompile(`^ORD-\d+-1$`), order.OrderNumber)

	orderRepo.AssertExpectations(t)
}

func TestPlaceOrder_ClientPriceIsIgnored(t *testing.T) {
	// A manipulated price of 1 in the payload must not survive: the catalog
	// price of 1000 is the only source of monetary truth.
	payload := []byte(`{
		"items": [{"productId": "prod-1", "quantity": 1, "price": 1, "name": "hacked"}],
		"customerName": "Ayesha Khan",
		"customerEmail": "ayesha@example.com",
		"customerPhone": "+92-300-1234567",
		"shippingAddress": {"street": "12 Mall Road", "city": "Lahore", "postalCode": "54000"}
	}`)
	var req services.PlaceOrderRequest
	require.NoError(t, json.Unmarshal(payload, &req))

	product := candleProduct()
	product.Price = decimal.NewFromInt(1000)

	orderRepo := new(MockOrderRepository)
	orderRepo.On("NextOrderSequence").Return(int64(1), nil).Once()
	orderRepo.On("Create", mock.AnythingOfType("*models.Order")).Return(nil).Once()
	service := services.NewOrderService(orderRepo, catalogWith(product), nil)

	order, err := service.PlaceOrder("user-1", req)

	require.NoError(t, err)
	require.Len(t, order.Items, 1)
	assert.True(t, order.Items[0].UnitPrice.Equal(decimal.NewFromInt(1000)))
	assert.True(t, order.Items[0].Subtotal.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, "Classic Pillar Candle", order.Items[0].Name)
	assert.True(t, order.Subtotal.Equal(decimal.NewFromInt(1000)))
}

func TestPlaceOrder_QuantityLeniency(t *testing.T) {
	cases := []struct {
		name     string
		quantity string
		want     int
	}{
		{"zero", "0", 1},
		{"negative", "-3", 1},
		{"non-numeric string", `"lots"`, 1},
		{"numeric string", `"4"`, 4},
		{"missing", "", 1},
		{"fractional", "2.9", 2},
		{"normal", "3", 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			orderRepo := new(MockOrderRepository)
			orderRepo.On("NextOrderSequence").Return(int64(1), nil).Once()
			orderRepo.On("Create", mock.AnythingOfType("*models.Order")).Return(nil).Once()
			service := services.NewOrderService(orderRepo, catalogWith(candleProduct()), nil)

			order, err := service.PlaceOrder("user-1", validRequest([]services.CartItem{cartLine("prod-1", tc.quantity)}))

			require.NoError(t, err)
			require.Len(t, order.Items, 1)
			assert.Equal(t, tc.want, order.Items[0].Quantity)
		})
	}
}

func TestPlaceOrder_NestedProductReference(t *testing.T) {
	cases := []struct {
		name string
		item services.CartItem
	}{
		{"raw id string", services.CartItem{Product: json.RawMessage(`"prod-1"`)}},
		{"object with id", services.CartItem{Product: json.RawMessage(`{"id": "prod-1"}`)}},
		{"object with _id", services.CartItem{Product: json.RawMessage(`{"_id": "prod-1"}`)}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			orderRepo := new(MockOrderRepository)
			orderRepo.On("NextOrderSequence").Return(int64(1), nil).Once()
			orderRepo.On("Create", mock.AnythingOfType("*models.Order")).Return(nil).Once()
			service := services.NewOrderService(orderRepo, catalogWith(candleProduct()), nil)

			order, err := service.PlaceOrder("user-1", validRequest([]services.CartItem{tc.item}))

			require.NoError(t, err)
			require.Len(t, order.Items, 1)
			assert.Equal(t, "prod-1", order.Items[0].ProductID)
		})
	}
}

func TestPlaceOrder_SizeAndThemeFallbacks(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	orderRepo.On("NextOrderSequence").Return(int64(1), nil)
	orderRepo.On("Create", mock.AnythingOfType("*models.Order")).Return(nil)
	service := services.NewOrderService(orderRepo, catalogWith(candleProduct()), nil)

	// Client values win when present
	item := cartLine("prod-1", "1")
	item.Size = "Large"
	item.Theme = "Love"
	order, err := service.PlaceOrder("user-1", validRequest([]services.CartItem{item}))
	require.NoError(t, err)
	assert.Equal(t, "Large", order.Items[0].Size)
	assert.Equal(t, "Love", order.Items[0].Theme)

	// Catalog defaults fill the gaps: first size, product theme
	order, err = service.PlaceOrder("user-1", validRequest([]services.CartItem{cartLine("prod-1", "1")}))
	require.NoError(t, err)
	assert.Equal(t, "Small", order.Items[0].Size)
	assert.Equal(t, "Classic", order.Items[0].Theme)
}

func TestPlaceOrder_ShippingCostHandling(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want decimal.Decimal
	}{
		{"absent", "", decimal.NewFromInt(250)},
		{"numeric", "400", decimal.NewFromInt(400)},
		{"zero", "0", decimal.Zero},
		{"negative", "-50", decimal.NewFromInt(250)},
		{"string", `"400"`, decimal.NewFromInt(250)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			orderRepo := new(MockOrderRepository)
			orderRepo.On("NextOrderSequence").Return(int64(1), nil).Once()
			orderRepo.On("Create", mock.AnythingOfType("*models.Order")).Return(nil).Once()
			service := services.NewOrderService(orderRepo, catalogWith(candleProduct()), nil)

			req := validRequest([]services.CartItem{cartLine("prod-1", "1")})
			if tc.raw != "" {
				req.ShippingCost = json.RawMessage(tc.raw)
			}

			order, err := service.PlaceOrder("user-1", req)

			require.NoError(t, err)
			assert.True(t, order.ShippingCost.Equal(tc.want), "shippingCost = %s, want %s", order.ShippingCost, tc.want)
			assert.True(t, order.Total.Equal(order.Subtotal.Add(order.ShippingCost)))
		})
	}
}

func TestPlaceOrder_PaymentMethodValidation(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := catalogWith(candleProduct())
	service := services.NewOrderService(orderRepo, productRepo, nil)

	req := validRequest([]services.CartItem{cartLine("prod-1", "1")})
	req.PaymentMethod = "IOU"
	order, err := service.PlaceOrder("user-1", req)

	assert.ErrorIs(t, err, services.ErrValidation)
	assert.Nil(t, order)
	orderRepo.AssertNotCalled(t, "Create")

	orderRepo.On("NextOrderSequence").Return(int64(1), nil).Once()
	orderRepo.On("Create", mock.AnythingOfType("*models.Order")).Return(nil).Once()

	req.PaymentMethod = "Bank Transfer"
	order, err = service.PlaceOrder("user-1", req)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentBankTransfer, order.PaymentMethod)
}

func TestPlaceOrder_NotesTooLong(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	service := services.NewOrderService(orderRepo, productRepo, nil)

	req := validRequest([]services.CartItem{cartLine("prod-1", "1")})
	for len(req.Notes) <= 500 {
		req.Notes += "please gift wrap "
	}
	order, err := service.PlaceOrder("user-1", req)

	assert.ErrorIs(t, err, services.ErrValidation)
	assert.Nil(t, order)
	productRepo.AssertNotCalled(t, "GetByID")
}

func TestPlaceOrder_PersistenceFailure(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	orderRepo.On("NextOrderSequence").Return(int64(1), nil).Once()
	orderRepo.On("Create", mock.AnythingOfType("*models.Order")).Return(fmt.Errorf("write rejected")).Once()
	service := services.NewOrderService(orderRepo, catalogWith(candleProduct()), nil)

	order, err := service.PlaceOrder("user-1", validRequest([]services.CartItem{cartLine("prod-1", "1")}))

	assert.ErrorIs(t, err, services.ErrPersistence)
	assert.Nil(t, order)
	orderRepo.AssertExpectations(t)
}

func TestPlaceOrder_ConcurrentPlacementsMintDistinctOrderNumbers(t *testing.T) {
	// Regression for the count-then-insert race: N concurrent placements
	// against an initially empty store must yield N distinct order numbers.
	const n = 32

	orderRepo := repositories.NewMockOrderRepository()
	productRepo := repositories.NewMockProductRepository()
	product := candleProduct()
	require.NoError(t, productRepo.Create(product))

	service := services.NewOrderService(orderRepo, productRepo, nil)

	var wg sync.WaitGroup
	numbers := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			order, err := service.PlaceOrder("user-1", validRequest([]services.CartItem{cartLine(product.ID, "1")}))
			if err != nil {
				errs[i] = err
				return
			}
			numbers[i] = order.OrderNumber
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.False(t, seen[numbers[i]], "duplicate order number %s", numbers[i])
		seen[numbers[i]] = true
	}

	orders, err := orderRepo.GetAll()
	require.NoError(t, err)
	assert.Len(t, orders, n)
}

func TestUpdateOrderStatus(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	service := services.NewOrderService(orderRepo, productRepo, nil)

	err := service.UpdateOrderStatus("order-1", "Teleported")
	assert.ErrorIs(t, err, services.ErrValidation)
	orderRepo.AssertNotCalled(t, "UpdateStatus")

	orderRepo.On("UpdateStatus", "order-1", models.OrderStatusShipped).Return(nil).Once()
	err = service.UpdateOrderStatus("order-1", models.OrderStatusShipped)
	assert.NoError(t, err)
	orderRepo.AssertExpectations(t)
}

func TestSoftDeleteOrder(t *testing.T) {
	orderRepo := new(MockOrderRepository)
	productRepo := new(MockProductRepository)
	service := services.NewOrderService(orderRepo, productRepo, nil)

	orderRepo.On("SoftDelete", "order-1").Return(nil).Once()
	assert.NoError(t, service.SoftDeleteOrder("order-1"))
	orderRepo.AssertExpectations(t)
}
