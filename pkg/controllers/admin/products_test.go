package admin

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"ecom_inventory/pkg/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formContext(values url.Values) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	c.Request = req
	return c
}

func TestProductFormParsesFields(t *testing.T) {
	c := formContext(url.Values{
		"name": {"Widget"}, "price": {" 9.95 "}, "quantity": {"3"}, "category": {"Tools"}, "supplierId": {"7"},
	})

	in, err := productForm(c)
	require.NoError(t, err)
	assert.Equal(t, "Widget", in.Name)
	assert.Equal(t, "9.95", in.Price.String())
	assert.Equal(t, 3, in.Quantity)
	require.NotNil(t, in.SupplierID)
	assert.Equal(t, 7, *in.SupplierID)

	img, err := imageForm(c)
	assert.NoError(t, err)
	assert.Nil(t, img)
}

func TestProductFormSupplierPlaceholders(t *testing.T) {
	for _, raw := range []string{"", "null", "undefined"} {
		c := formContext(url.Values{"name": {"Widget"}, "price": {"1"}, "quantity": {"0"}, "category": {"Tools"}, "supplierId": {raw}})
		in, err := productForm(c)
		require.NoError(t, err, raw)
		assert.Nil(t, in.SupplierID, raw)
	}
}

func TestProductFormRejectsMalformedNumbers(t *testing.T) {
	cases := map[string]url.Values{
		"price":    {"name": {"Widget"}, "price": {"cheap"}, "quantity": {"1"}, "category": {"Tools"}},
		"quantity": {"name": {"Widget"}, "price": {"1"}, "quantity": {"1.5"}, "category": {"Tools"}},
		"supplier": {"name": {"Widget"}, "price": {"1"}, "quantity": {"1"}, "category": {"Tools"}, "supplierId": {"-3"}},
	}
	for name, values := range cases {
		_, err := productForm(formContext(values))
		assert.ErrorIs(t, err, services.ErrValidation, name)
	}
}
