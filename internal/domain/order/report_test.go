package order

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testOrder(id string, total string, status Status, delivery bool, items ...CartLine) Order {
	o := Order{
		OrderID: id,
		Items:   items,
		Total:   money(total),
		Status:  status,
	}
	o.Delivery.Enabled = delivery
	return o
}

func TestComputeStats_SpecScenario(t *testing.T) {
	orders := []Order{
		testOrder("10001", "12", StatusPending, false),
		testOrder("10002", "25", StatusCompleted, true),
		testOrder("10003", "37", StatusCancelled, true),
	}

	stats := ComputeStats(orders, nil)

	assert.Equal(t, 3, stats.TotalOrders)
	assert.True(t, money("74").Equal(stats.Revenue), "got %s", stats.Revenue)
	assert.Equal(t, 1, stats.PendingOrders)
	assert.Equal(t, 1, stats.CompletedOrders)
	assert.Equal(t, 1, stats.CancelledOrders)
	assert.Equal(t, 2, stats.DeliveryOrders)
	assert.Equal(t, 1, stats.PickupOrders)
}

func TestComputeStats_ItemsAndBreakdown(t *testing.T) {
	orders := []Order{
		testOrder("10001", "32", StatusPending, false,
			CartLine{ProductID: "kottu", Name: "Kottu Rotti", UnitPrice: money("12.00"), Quantity: 2},
			CartLine{ProductID: "cola", Name: "Cola", UnitPrice: money("3.50"), Quantity: 3},
		),
		testOrder("10002", "12", StatusPending, false,
			CartLine{ProductID: "kottu", Name: "Kottu Rotti", UnitPrice: money("12.00"), Quantity: 1},
			// Historical record with a name no longer in the catalog.
			CartLine{ProductID: "samosa", Name: "Samosa", UnitPrice: money("4.00"), Quantity: 5},
		),
	}

	stats := ComputeStats(orders, []string{"Kottu Rotti", "Cola"})

	assert.Equal(t, 11, stats.ItemsSold)
	assert.Equal(t, map[string]int{"Kottu Rotti": 3, "Cola": 3}, stats.ItemBreakdown)
}

func TestComputeStats_Empty(t *testing.T) {
	stats := ComputeStats(nil, []string{"Kottu Rotti"})
	assert.Equal(t, 0, stats.TotalOrders)
	assert.True(t, stats.Revenue.IsZero())
	assert.Empty(t, stats.ItemBreakdown)
}

func TestGroupByPostalCode_Structured(t *testing.T) {
	a := testOrder("10001", "25", StatusPending, true)
	a.Delivery.Address = Address{Street: "Bahnhofstrasse", HouseNumber: "12", PostalCode: "8200", City: "Schaffhausen"}
	b := testOrder("10002", "37", StatusPending, true)
	b.Delivery.Address = Address{Street: "Rheinweg", HouseNumber: "3", PostalCode: "8200", City: "Schaffhausen"}
	c := testOrder("10003", "12", StatusPending, true)
	c.Delivery.Address = Address{Street: "Hauptgasse", HouseNumber: "1", PostalCode: "8400", City: "Winterthur"}
	pickup := testOrder("10004", "12", StatusPending, false)

	groups := GroupByPostalCode([]Order{a, b, c, pickup})

	assert.Len(t, groups, 2)
	assert.Len(t, groups["8200"], 2)
	assert.Len(t, groups["8400"], 1)
}

func TestGroupByPostalCode_LegacyExtraction(t *testing.T) {
	// Legacy record: address only exists as a flattened display string.
	legacy := testOrder("10001", "25", StatusPending, true)
	legacy.Delivery.Address = Address{City: "Musterweg 5, 8200 Schaffhausen"}

	noCode := testOrder("10002", "25", StatusPending, true)
	noCode.Delivery.Address = Address{City: "irgendwo"}

	groups := GroupByPostalCode([]Order{legacy, noCode})

	// Extractable token groups; unmatchable orders are silently omitted.
	assert.Len(t, groups, 1)
	assert.Len(t, groups["8200"], 1)
}

func TestExtractPostalCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Musterweg 5, 8200 Schaffhausen", "8200"},
		{"8400 Winterthur", "8400"},
		{"no digits here", ""},
		{"12345 too long", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractPostalCode(tt.in), "input %q", tt.in)
	}
}
