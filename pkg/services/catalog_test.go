package services

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"ecom_inventory/pkg/models"
	"ecom_inventory/pkg/testutil"
	"ecom_inventory/pkg/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

type memoryImages struct {
	saved   []string
	deleted []string
	failOn  string
}

func (m *memoryImages) Save(_ context.Context, img *ImageUpload) (string, error) {
	if m.failOn != "" {
		return "", errors.New(m.failOn)
	}
	url := "/uploads/" + img.Name
	m.saved = append(m.saved, url)
	return url, nil
}

func (m *memoryImages) Delete(_ context.Context, url string) error {
	m.deleted = append(m.deleted, url)
	return nil
}

func pngUpload(t *testing.T) *ImageUpload {
	t.Helper()
	img, err := NewImageUpload(pngHeader)
	require.NoError(t, err)
	return img
}

func widget(qty int) ProductInput {
	return ProductInput{Name: "Widget", Price: decimal.RequireFromString("9.99"), Quantity: qty, Category: "Tools"}
}

func TestCreateProductInitialisesInventory(t *testing.T) {
	db := testutil.NewDB(t)
	images := &memoryImages{}
	svc := NewCatalogService(db, images, zap.NewNop())

	supplier := models.Supplier{Name: "Acme"}
	require.NoError(t, db.Create(&supplier).Error)

	in := widget(12)
	in.SupplierID = &supplier.ID
	view, err := svc.Create(context.Background(), in, pngUpload(t))
	require.NoError(t, err)

	assert.Equal(t, "Widget", view.Name)
	assert.True(t, decimal.RequireFromString("9.99").Equal(view.Price))
	require.NotNil(t, view.SupplierName)
	assert.Equal(t, "Acme", *view.SupplierName)
	require.NotNil(t, view.ImageURL)
	assert.True(t, strings.HasPrefix(*view.ImageURL, "/uploads/product-"))
	assert.True(t, strings.HasSuffix(*view.ImageURL, ".png"))

	p, inv := quantities(t, db, view.ID)
	assert.Equal(t, 12, p)
	assert.Equal(t, 12, inv)
}

func TestCreateProductValidation(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewCatalogService(db, &memoryImages{}, zap.NewNop())
	missing := 42

	cases := map[string]func(*ProductInput){
		"short name":       func(in *ProductInput) { in.Name = "ab" },
		"zero price":       func(in *ProductInput) { in.Price = decimal.Zero },
		"negative price":   func(in *ProductInput) { in.Price = decimal.NewFromInt(-1) },
		"negative stock":   func(in *ProductInput) { in.Quantity = -1 },
		"blank category":   func(in *ProductInput) { in.Category = "  " },
		"unknown supplier": func(in *ProductInput) { in.SupplierID = &missing },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := widget(1)
			mutate(&in)
			_, err := svc.Create(context.Background(), in, nil)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
	assert.Zero(t, count(t, db, &models.Product{}))
}

func TestUpdateProductAuditsQuantityChange(t *testing.T) {
	db := testutil.NewDB(t)
	images := &memoryImages{}
	svc := NewCatalogService(db, images, zap.NewNop())
	ctx := context.Background()

	created, err := svc.Create(ctx, widget(10), pngUpload(t))
	require.NoError(t, err)
	oldImage := *created.ImageURL

	in := widget(4)
	in.Name = "Widget Pro"
	updated, err := svc.Update(ctx, created.ID, in, pngUpload(t), "Grace")
	require.NoError(t, err)
	assert.Equal(t, "Widget Pro", updated.Name)
	assert.Equal(t, 4, updated.Quantity)
	assert.NotEqual(t, oldImage, *updated.ImageURL)
	assert.Equal(t, []string{oldImage}, images.deleted)

	var adjustments []models.StockAdjustment
	require.NoError(t, db.Find(&adjustments).Error)
	require.Len(t, adjustments, 1)
	assert.Equal(t, 10, adjustments[0].OldQuantity)
	assert.Equal(t, 4, adjustments[0].NewQuantity)
	assert.Equal(t, "Grace", adjustments[0].AdjustedBy)

	_, err = svc.Update(ctx, created.ID, in, nil, "Grace")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count(t, db, &models.StockAdjustment{}))

	_, err = svc.Update(ctx, 999, in, nil, "Grace")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteProductCascades(t *testing.T) {
	db := testutil.NewDB(t)
	images := &memoryImages{}
	svc := NewCatalogService(db, images, zap.NewNop())
	orders := NewOrderService(db, zap.NewNop(), true)
	ctx := context.Background()

	created, err := svc.Create(ctx, widget(10), pngUpload(t))
	require.NoError(t, err)
	customer := testutil.SeedCustomer(t, db, "Ada")
	_, err = orders.PlaceOrder(ctx, PlaceOrderInput{CustomerID: customer.ID, Lines: []CartLine{{ProductID: created.ID, Quantity: 2}}})
	require.NoError(t, err)
	require.EqualValues(t, 1, count(t, db, &models.StockAdjustment{}))

	require.NoError(t, svc.Delete(ctx, created.ID))

	_, err = svc.Get(ctx, created.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, count(t, db, &models.OrderItem{}))
	assert.Zero(t, count(t, db, &models.Inventory{}))
	assert.Zero(t, count(t, db, &models.StockAdjustment{}))
	assert.Equal(t, []string{*created.ImageURL}, images.deleted)

	assert.ErrorIs(t, svc.Delete(ctx, created.ID), ErrNotFound)
}

func TestListProductsAndCategories(t *testing.T) {
	db := testutil.NewDB(t)
	svc := NewCatalogService(db, &memoryImages{}, zap.NewNop())
	ctx := context.Background()

	for _, in := range []ProductInput{
		{Name: "Red Mug", Price: decimal.NewFromInt(5), Category: "Kitchen"},
		{Name: "Blue Mug", Price: decimal.NewFromInt(6), Category: "Kitchen"},
		{Name: "Hammer", Price: decimal.NewFromInt(20), Category: "Tools"},
	} {
		_, err := svc.Create(ctx, in, nil)
		require.NoError(t, err)
	}

	views, total, err := svc.List(ctx, ProductFilter{Search: "MUG"})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, views, 2)

	views, total, err = svc.List(ctx, ProductFilter{Category: "Tools"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Hammer", views[0].Name)

	views, total, err = svc.List(ctx, ProductFilter{Page: utils.Page{Number: 2, Size: 2}})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, views, 1)
	assert.Equal(t, "Hammer", views[0].Name)

	categories, err := svc.Categories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Kitchen", "Tools"}, categories)
}

func TestImageUploadValidation(t *testing.T) {
	img := pngUpload(t)
	assert.Equal(t, "image/png", img.ContentType)
	assert.True(t, strings.HasPrefix(img.Name, "product-"))

	gif, err := NewImageUpload([]byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(gif.Name, ".gif"))

	_, err = NewImageUpload([]byte("just some text"))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = NewImageUpload(make([]byte, MaxImageSize+1))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestLocalImageStore(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalImageStore(dir, "/uploads/")
	require.NoError(t, err)
	ctx := context.Background()

	img := pngUpload(t)
	url, err := store.Save(ctx, img)
	require.NoError(t, err)
	assert.Equal(t, "/uploads/"+img.Name, url)

	data, err := os.ReadFile(filepath.Join(dir, img.Name))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, data)

	require.NoError(t, store.Delete(ctx, url))
	_, err = os.Stat(filepath.Join(dir, img.Name))
	assert.True(t, os.IsNotExist(err))

	// already gone and foreign URLs are both no-ops
	assert.NoError(t, store.Delete(ctx, url))
	assert.NoError(t, store.Delete(ctx, "https://elsewhere.example/x.png"))
}
