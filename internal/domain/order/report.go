package order

import (
	"github.com/shopspring/decimal"
)

// Stats aggregates the full order set for the staff dashboard. All fields
// are computed by a single pass over the orders; nothing is cached.
type Stats struct {
	TotalOrders     int
	Revenue         decimal.Decimal
	ItemsSold       int
	DeliveryOrders  int
	PickupOrders    int
	PendingOrders   int
	CompletedOrders int
	CancelledOrders int
	// ItemBreakdown maps product name to total quantity sold, restricted to
	// the tracked names. Unknown names are skipped, not errored.
	ItemBreakdown map[string]int
}

// ComputeStats folds the order set into dashboard stats. trackedNames is
// the closed set of product names eligible for the breakdown, typically the
// catalog's.
func ComputeStats(orders []Order, trackedNames []string) Stats {
	tracked := make(map[string]struct{}, len(trackedNames))
	for _, name := range trackedNames {
		tracked[name] = struct{}{}
	}

	stats := Stats{
		Revenue:       decimal.Zero,
		ItemBreakdown: make(map[string]int, len(trackedNames)),
	}
	for i := range orders {
		o := &orders[i]
		stats.TotalOrders++
		stats.Revenue = stats.Revenue.Add(o.Total)

		if o.Delivery.Enabled {
			stats.DeliveryOrders++
		} else {
			stats.PickupOrders++
		}

		switch o.Status {
		case StatusPending:
			stats.PendingOrders++
		case StatusCompleted:
			stats.CompletedOrders++
		case StatusCancelled:
			stats.CancelledOrders++
		}

		for _, line := range o.Items {
			stats.ItemsSold += line.Quantity
			if _, ok := tracked[line.Name]; ok {
				stats.ItemBreakdown[line.Name] += line.Quantity
			}
		}
	}
	return stats
}

// GroupByPostalCode buckets delivery orders by postal code. Orders with a
// structured postal code use it directly; older records fall back to mining
// a 4-digit token out of the flattened address. Pickup orders and delivery
// orders without an extractable code are omitted, which makes the fallback
// path lossy by design.
func GroupByPostalCode(orders []Order) map[string][]Order {
	groups := make(map[string][]Order)
	for _, o := range orders {
		if !o.Delivery.Enabled {
			continue
		}
		code := o.Delivery.Address.PostalCode
		if code == "" {
			code = ExtractPostalCode(o.Delivery.Address.Display())
		}
		if code == "" {
			continue
		}
		groups[code] = append(groups[code], o)
	}
	return groups
}
