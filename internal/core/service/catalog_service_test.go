package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastenworks/partstore/internal/core/domain"
)

func catalogFixture() *fakeProductStore {
	return newFakeProductStore(
		&domain.Product{ID: 1, Name: "hex bolt", Category: "bolts", Material: "steel", ThreadSize: "M8", Finish: "zinc"},
		&domain.Product{ID: 2, Name: "wing nut", Category: "nuts", Material: "steel", ThreadSize: "M8", Finish: "plain"},
		&domain.Product{ID: 3, Name: "brass bolt", Category: "bolts", Material: "brass", ThreadSize: "M6", Finish: "plain"},
	)
}

func TestListProducts_NoFilter(t *testing.T) {
	svc := NewCatalogService(catalogFixture(), testLog())

	products, err := svc.ListProducts(context.Background(), domain.CatalogFilter{})

	require.NoError(t, err)
	assert.Len(t, products, 3)
}

func TestListProducts_Filtered(t *testing.T) {
	svc := NewCatalogService(catalogFixture(), testLog())

	products, err := svc.ListProducts(context.Background(), domain.CatalogFilter{
		Category: "bolts",
		Material: "steel",
	})

	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "hex bolt", products[0].Name)
}

func TestGetProduct(t *testing.T) {
	svc := NewCatalogService(catalogFixture(), testLog())

	product, err := svc.GetProduct(context.Background(), 2)

	require.NoError(t, err)
	assert.Equal(t, "wing nut", product.Name)
}

func TestGetProduct_NotFound(t *testing.T) {
	svc := NewCatalogService(catalogFixture(), testLog())

	_, err := svc.GetProduct(context.Background(), 9999)

	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestCreateProduct(t *testing.T) {
	store := catalogFixture()
	svc := NewCatalogService(store, testLog())

	created, err := svc.CreateProduct(context.Background(), domain.NewProduct{
		Name:       "lock washer",
		Category:   "washers",
		Material:   "steel",
		ThreadSize: "M8",
		Finish:     "zinc",
		Quantity:   500,
		Price:      0.05,
		Inventory:  500,
	})

	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, 500, created.Inventory)
	assert.Equal(t, created.Name, store.products[created.ID].Name)
}

func TestCreateProduct_Invalid(t *testing.T) {
	svc := NewCatalogService(catalogFixture(), testLog())

	cases := []struct {
		name  string
		input domain.NewProduct
		want  error
	}{
		{"blank name", domain.NewProduct{Name: "  "}, domain.ErrInvalidProduct},
		{"negative inventory", domain.NewProduct{Name: "bolt", Inventory: -1}, domain.ErrNegativeInventory},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateProduct(context.Background(), tc.input)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}
