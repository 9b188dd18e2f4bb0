package services

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"testing"

	"ecom_inventory/pkg/models"
	"ecom_inventory/pkg/testutil"
	"ecom_inventory/pkg/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func quantities(t *testing.T, db *gorm.DB, productID int) (product, inventory int) {
	t.Helper()
	var p models.Product
	require.NoError(t, db.First(&p, productID).Error)
	var inv models.Inventory
	require.NoError(t, db.Where("product_id = ?", productID).First(&inv).Error)
	return p.Quantity, inv.Quantity
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func TestPlaceOrderComputesTotalAndDecrements(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewOrderService(db, zap.NewNop(), false)

	customer := testutil.SeedCustomer(t, db, "Ada")
	shirt := testutil.SeedProduct(t, db, "Shirt", "19.99", 10)
	mug := testutil.SeedProduct(t, db, "Mug", "5.50", 4)

	order, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerID: customer.ID,
		Lines: []CartLine{
			{ProductID: shirt.ID, Quantity: 2},
			{ProductID: mug.ID, Quantity: 1},
		},
		Actor: "Ada",
	})
	require.NoError(t, err)

	assert.Equal(t, models.OrderStatusPending, order.Status)
	assert.True(t, decimal.RequireFromString("45.48").Equal(order.TotalAmount), order.TotalAmount.String())
	assert.Len(t, order.Items, 2)

	p, inv := quantities(t, db, shirt.ID)
	assert.Equal(t, 8, p)
	assert.Equal(t, 8, inv)
	p, inv = quantities(t, db, mug.ID)
	assert.Equal(t, 3, p)
	assert.Equal(t, 3, inv)

	assert.Zero(t, count(t, db, &models.StockAdjustment{}))
}

func TestPlaceOrderUsesCataloguePrice(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewOrderService(db, zap.NewNop(), false)

	customer := testutil.SeedCustomer(t, db, "Ada")
	shirt := testutil.SeedProduct(t, db, "Shirt", "19.99", 10)

	cheap := decimal.RequireFromString("0.01")
	order, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerID: customer.ID,
		Lines:      []CartLine{{ProductID: shirt.ID, Quantity: 1, Price: &cheap}},
	})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("19.99").Equal(order.TotalAmount))
	assert.True(t, decimal.RequireFromString("19.99").Equal(order.Items[0].UnitPrice))
}

func TestPlaceOrderInsufficientStockRollsBack(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewOrderService(db, zap.NewNop(), false)

	customer := testutil.SeedCustomer(t, db, "Ada")
	plenty := testutil.SeedProduct(t, db, "Plenty", "1.00", 50)
	scarce := testutil.SeedProduct(t, db, "Scarce", "2.00", 3)

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerID: customer.ID,
		Lines: []CartLine{
			{ProductID: plenty.ID, Quantity: 5},
			{ProductID: scarce.ID, Quantity: 5},
		},
	})

	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr), err)
	assert.Equal(t, scarce.ID, stockErr.ProductID)
	assert.Equal(t, "Scarce", stockErr.ProductName)
	assert.Equal(t, 3, stockErr.Available)
	assert.Equal(t, 5, stockErr.Requested)
	assert.Equal(t, "Insufficient stock for product: Scarce. Available: 3, Requested: 5", stockErr.Error())

	p, inv := quantities(t, db, scarce.ID)
	assert.Equal(t, 3, p)
	assert.Equal(t, 3, inv)
	p, _ = quantities(t, db, plenty.ID)
	assert.Equal(t, 50, p)

	assert.Zero(t, count(t, db, &models.Order{}))
	assert.Zero(t, count(t, db, &models.OrderItem{}))
}

func TestPlaceOrderConcurrentLastUnit(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewOrderService(db, zap.NewNop(), false)
	customer := testutil.SeedCustomer(t, db, "Ada")
	last := testutil.SeedProduct(t, db, "Last One", "9.00", 1)

	const buyers = 8
	errs := make([]error, buyers)
	var wg sync.WaitGroup
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.PlaceOrder(context.Background(), PlaceOrderInput{
				CustomerID: customer.ID,
				Lines:      []CartLine{{ProductID: last.ID, Quantity: 1}},
				Actor:      "Ada",
			})
		}(i)
	}
	wg.Wait()

	placed, short := 0, 0
	for _, err := range errs {
		var stockErr *InsufficientStockError
		switch {
		case err == nil:
			placed++
		case errors.As(err, &stockErr):
			short++
			assert.Equal(t, 0, stockErr.Available)
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, placed)
	assert.Equal(t, buyers-1, short)

	p, inv := quantities(t, db, last.ID)
	assert.Equal(t, 0, p)
	assert.Equal(t, 0, inv)
	assert.EqualValues(t, 1, count(t, db, &models.Order{}))
	assert.EqualValues(t, 1, count(t, db, &models.OrderItem{}))
}

func TestPlaceOrderCountsRepeatedLines(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewOrderService(db, zap.NewNop(), false)

	customer := testutil.SeedCustomer(t, db, "Ada")
	mug := testutil.SeedProduct(t, db, "Mug", "5.50", 4)

	_, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerID: customer.ID,
		Lines: []CartLine{
			{ProductID: mug.ID, Quantity: 3},
			{ProductID: mug.ID, Quantity: 2},
		},
	})

	var stockErr *InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 1, stockErr.Available)
	assert.Equal(t, 2, stockErr.Requested)

	p, _ := quantities(t, db, mug.ID)
	assert.Equal(t, 4, p)
}

func TestPlaceOrderRejects(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewOrderService(db, zap.NewNop(), false)

	customer := testutil.SeedCustomer(t, db, "Ada")
	mug := testutil.SeedProduct(t, db, "Mug", "5.50", 4)

	cases := []struct {
		name string
		in   PlaceOrderInput
		kind error
	}{
		{"empty cart", PlaceOrderInput{CustomerID: customer.ID}, ErrValidation},
		{"zero quantity", PlaceOrderInput{CustomerID: customer.ID, Lines: []CartLine{{ProductID: mug.ID}}}, ErrValidation},
		{"missing product id", PlaceOrderInput{CustomerID: customer.ID, Lines: []CartLine{{Quantity: 1}}}, ErrValidation},
		{"unknown product", PlaceOrderInput{CustomerID: customer.ID, Lines: []CartLine{{ProductID: mug.ID, Quantity: 1}, {ProductID: 999, Quantity: 1}}}, ErrNotFound},
		{"unknown customer", PlaceOrderInput{CustomerID: 999, Lines: []CartLine{{ProductID: mug.ID, Quantity: 1}}}, ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.PlaceOrder(context.Background(), tc.in)
			assert.ErrorIs(t, err, tc.kind)
		})
	}

	p, _ := quantities(t, db, mug.ID)
	assert.Equal(t, 4, p)
	assert.Zero(t, count(t, db, &models.Order{}))
}

func TestPlaceOrderAuditsWhenEnabled(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewOrderService(db, zap.NewNop(), true)

	customer := testutil.SeedCustomer(t, db, "Ada")
	mug := testutil.SeedProduct(t, db, "Mug", "5.50", 4)

	order, err := svc.PlaceOrder(context.Background(), PlaceOrderInput{
		CustomerID: customer.ID,
		Lines:      []CartLine{{ProductID: mug.ID, Quantity: 3}},
		Actor:      "Ada",
	})
	require.NoError(t, err)

	var adjustments []models.StockAdjustment
	require.NoError(t, db.Find(&adjustments).Error)
	require.Len(t, adjustments, 1)
	assert.Equal(t, 4, adjustments[0].OldQuantity)
	assert.Equal(t, 1, adjustments[0].NewQuantity)
	assert.Equal(t, "Ada", adjustments[0].AdjustedBy)
	require.NotNil(t, adjustments[0].Reason)
	assert.Contains(t, *adjustments[0].Reason, "Order #")
	assert.NotZero(t, order.ID)
}

func TestOrderListingAndStatus(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewOrderService(db, zap.NewNop(), false)
	ctx := context.Background()

	ada := testutil.SeedCustomer(t, db, "Ada Lovelace")
	alan := testutil.SeedCustomer(t, db, "Alan Turing")
	mug := testutil.SeedProduct(t, db, "Mug", "5.00", 100)
	shirt := testutil.SeedProduct(t, db, "Shirt", "20.00", 100)

	first, err := svc.PlaceOrder(ctx, PlaceOrderInput{CustomerID: ada.ID, Lines: []CartLine{{ProductID: mug.ID, Quantity: 1}}})
	require.NoError(t, err)
	second, err := svc.PlaceOrder(ctx, PlaceOrderInput{CustomerID: alan.ID, Lines: []CartLine{{ProductID: shirt.ID, Quantity: 2}, {ProductID: mug.ID, Quantity: 1}}})
	require.NoError(t, err)
	third, err := svc.PlaceOrder(ctx, PlaceOrderInput{CustomerID: ada.ID, Lines: []CartLine{{ProductID: shirt.ID, Quantity: 1}}})
	require.NoError(t, err)

	rows, total, err := svc.List(ctx, OrderFilter{Page: utils.Page{Number: 1, Size: 2}})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, rows, 2)
	assert.Equal(t, third.ID, rows[0].OrderID)
	assert.Equal(t, second.ID, rows[1].OrderID)

	rows, _, err = svc.List(ctx, OrderFilter{SortBy: "totalAmountDesc"})
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, second.ID, rows[0].OrderID)
	assert.Equal(t, first.ID, rows[2].OrderID)

	rows, total, err = svc.List(ctx, OrderFilter{Search: "lovelace"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	for _, r := range rows {
		assert.Equal(t, ada.ID, r.CustomerID)
	}

	rows, _, err = svc.List(ctx, OrderFilter{Search: strconv.Itoa(second.ID)})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, second.ID, rows[0].OrderID)

	detail, err := svc.UpdateStatus(ctx, first.ID, models.OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusShipped, detail.Status)
	require.Len(t, detail.Items, 1)
	assert.Equal(t, "Mug", *detail.Items[0].ProductName)

	rows, total, err = svc.List(ctx, OrderFilter{Status: string(models.OrderStatusShipped)})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, first.ID, rows[0].OrderID)

	_, err = svc.UpdateStatus(ctx, first.ID, "Lost")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = svc.UpdateStatus(ctx, 999, models.OrderStatusShipped)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = svc.Get(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	mine, err := svc.ListForCustomer(ctx, alan.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, 2, mine[0].NumberOfItems)
	assert.True(t, decimal.RequireFromString("45").Equal(mine[0].TotalAmount))

	owned, err := svc.OwnedBy(ctx, second.ID, alan.ID)
	require.NoError(t, err)
	assert.True(t, owned)
	owned, err = svc.OwnedBy(ctx, second.ID, ada.ID)
	require.NoError(t, err)
	assert.False(t, owned)
}
