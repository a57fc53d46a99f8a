package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMenu(t *testing.T) {
	menu := Default()

	products := menu.List()
	require.Len(t, products, 6)

	kottu, err := menu.GetByID("kottu")
	require.NoError(t, err)
	assert.Equal(t, "Kottu Rotti", kottu.Name)
	assert.True(t, kottu.Price.Equal(decimal.RequireFromString("12.00")))

	cola, err := menu.GetByID("cola")
	require.NoError(t, err)
	assert.True(t, cola.Price.Equal(decimal.RequireFromString("3.50")))
}

func TestGetByID_Unknown(t *testing.T) {
	_, err := Default().GetByID("pizza")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNames(t *testing.T) {
	names := Default().Names()
	assert.Len(t, names, 6)
	assert.Contains(t, names, "Kottu Rotti")
	assert.Contains(t, names, "Veggie Kottu Rotti")
}

func TestNewPreservesOrder(t *testing.T) {
	menu := New([]Product{
		{ID: "b", Name: "B", Price: decimal.New(1, 0)},
		{ID: "a", Name: "A", Price: decimal.New(2, 0)},
	})

	products := menu.List()
	require.Len(t, products, 2)
	assert.Equal(t, "b", products[0].ID)
	assert.Equal(t, "a", products[1].ID)
}
