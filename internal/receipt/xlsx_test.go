package receipt_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"LittleLemon/internal/menu"
	"LittleLemon/internal/order"
	"LittleLemon/internal/receipt"
)

func TestWriteXLSX(t *testing.T) {
	cart := []order.CartEntry{
		{MenuItem: menu.MenuItem{ID: 0, Name: "Bruschetta", Category: "appetizers", Price: "$10.00"}, Quantity: 2},
		{MenuItem: menu.MenuItem{ID: 3, Name: "Lemon Dessert", Category: "desserts", Price: "$5.50"}, Quantity: 1},
	}

	var buf bytes.Buffer
	require.NoError(t, receipt.WriteXLSX(&buf, cart))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(receipt.Sheet)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, []string{"Item", "Category", "Unit price", "Qty", "Line total"}, rows[0])
	assert.Equal(t, []string{"Bruschetta", "appetizers", "10", "2", "20"}, rows[1])
	assert.Equal(t, "Lemon Dessert", rows[2][0])
	assert.Equal(t, "Total", rows[3][0])
	assert.Equal(t, "3", rows[3][3])
	assert.Equal(t, "25.5", rows[3][4])
}

func TestWriteXLSX_EmptyCart(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, receipt.WriteXLSX(&buf, nil))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(receipt.Sheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Total", rows[1][0])
	assert.Equal(t, "0", rows[1][3])
}
