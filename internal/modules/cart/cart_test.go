package cart

import (
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmago/internal/types"
)

func item(name, pharmacy, price string) Item {
	return Item{
		MedicineName: name,
		Price:        decimal.RequireFromString(price),
		PharmacyID:   types.ID(pharmacy),
		PharmacyName: "Pharmacy " + pharmacy,
	}
}

func TestCartAdd(t *testing.T) {
	var c Cart
	require.NoError(t, c.Add(item("Paracetamol", "ph-1", "12.50")))
	require.NoError(t, c.Add(item("Amoxicillin", "ph-1", "30")))

	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, 1, items[0].Quantity)
	assert.Equal(t, types.ID("ph-1"), c.PharmacyID())
	assert.Equal(t, "Pharmacy ph-1", c.PharmacyName())
}

func TestCartAddDuplicateIsNoop(t *testing.T) {
	var c Cart
	require.NoError(t, c.Add(item("Paracetamol", "ph-1", "12.50")))
	require.NoError(t, c.UpdateQuantity("Paracetamol", 2))
	require.NoError(t, c.Add(item("Paracetamol", "ph-1", "12.50")))

	items := c.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Quantity)
}

func TestCartAddOtherPharmacyRejected(t *testing.T) {
	var c Cart
	require.NoError(t, c.Add(item("Paracetamol", "ph-1", "12.50")))

	err := c.Add(item("Ibuprofen", "ph-2", "8"))
	require.ErrorIs(t, err, ErrPharmacyConflict)
	assert.True(t, errors.Is(err, types.ErrValidation))
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, types.ID("ph-1"), c.PharmacyID())
}

func TestCartAddInvalidItem(t *testing.T) {
	tests := []struct {
		name string
		it   Item
	}{
		{"missing name", item("", "ph-1", "1")},
		{"missing pharmacy", item("Paracetamol", "", "1")},
		{"negative price", item("Paracetamol", "ph-1", "-1")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c Cart
			assert.ErrorIs(t, c.Add(tt.it), ErrInvalidItem)
			assert.True(t, c.IsEmpty())
		})
	}
}

func TestCartUpdateQuantityFloor(t *testing.T) {
	var c Cart
	require.NoError(t, c.Add(item("Paracetamol", "ph-1", "10")))

	tests := []struct {
		delta int
		want  int
	}{
		{+1, 2},
		{+3, 5},
		{-2, 3},
		{-10, 1},
		{-1, 1},
	}
	for _, tt := range tests {
		require.NoError(t, c.UpdateQuantity("Paracetamol", tt.delta))
		assert.Equal(t, tt.want, c.Items()[0].Quantity, "after delta %d", tt.delta)
	}
}

func TestCartUpdateQuantityCeiling(t *testing.T) {
	var c Cart
	require.NoError(t, c.Add(item("Paracetamol", "ph-1", "10")))
	require.NoError(t, c.UpdateQuantity("Paracetamol", 5))

	tests := []struct {
		delta int
		want  int
	}{
		{math.MaxInt, MaxQuantity},
		{+1, MaxQuantity},
		{-1, MaxQuantity - 1},
		{math.MinInt, 1},
		{MaxQuantity - 1, MaxQuantity},
		{math.MaxInt - 1, MaxQuantity},
	}
	for _, tt := range tests {
		require.NoError(t, c.UpdateQuantity("Paracetamol", tt.delta))
		assert.Equal(t, tt.want, c.Items()[0].Quantity, "after delta %d", tt.delta)
	}
}

func TestCartUnknownItem(t *testing.T) {
	var c Cart
	assert.ErrorIs(t, c.UpdateQuantity("nope", 1), types.ErrNotFound)
	assert.ErrorIs(t, c.Remove("nope"), types.ErrNotFound)
}

func TestCartRemove(t *testing.T) {
	var c Cart
	require.NoError(t, c.Add(item("A", "ph-1", "1")))
	require.NoError(t, c.Add(item("B", "ph-1", "1")))
	require.NoError(t, c.Add(item("C", "ph-1", "1")))

	require.NoError(t, c.Remove("B"))
	items := c.Items()
	require.Len(t, items, 2)
	assert.Equal(t, "A", items[0].MedicineName)
	assert.Equal(t, "C", items[1].MedicineName)

	require.NoError(t, c.Remove("A"))
	require.NoError(t, c.Remove("C"))
	assert.True(t, c.IsEmpty())
	assert.Equal(t, types.ID(""), c.PharmacyID())

	// an emptied cart accepts another pharmacy
	require.NoError(t, c.Add(item("D", "ph-2", "1")))
}

func TestCartItemsIsCopy(t *testing.T) {
	var c Cart
	require.NoError(t, c.Add(item("A", "ph-1", "1")))

	items := c.Items()
	items[0].Quantity = 99
	assert.Equal(t, 1, c.Items()[0].Quantity)
}

func TestCartSubtotal(t *testing.T) {
	var c Cart
	assert.True(t, c.Subtotal().IsZero())

	require.NoError(t, c.Add(item("A", "ph-1", "12.50")))
	require.NoError(t, c.Add(item("B", "ph-1", "30")))
	require.NoError(t, c.UpdateQuantity("A", 1))

	assert.True(t, decimal.RequireFromString("55").Equal(c.Subtotal()), c.Subtotal().String())
}
