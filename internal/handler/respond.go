package handler

import (
	"net/http"
	"sort"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/tamilyouth/preorder-api/internal/domain/catalog"
	"github.com/tamilyouth/preorder-api/internal/domain/order"
	"github.com/tamilyouth/preorder-api/internal/domain/pricing"
)

// writeJSON writes an encoded jx buffer with the given status.
func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError maps a domain error onto the HTTP taxonomy: validation and bad
// input become 400, unknown ids 404, everything else a logged 500 with a
// generic body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		status  int
		message string
	)

	var vErr *order.ValidationError
	switch {
	case errors.As(err, &vErr):
		status, message = http.StatusBadRequest, vErr.Error()
	case errors.Is(err, pricing.ErrInvalidCart):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, catalog.ErrNotFound):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, order.ErrNotFound):
		status, message = http.StatusNotFound, "order not found"
	default:
		zctx.From(r.Context()).Error("Request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		status, message = http.StatusInternalServerError, "internal error"
	}

	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("error")
	e.Str(message)
	e.ObjEnd()
	writeJSON(w, status, e)
}

func writeBadRequest(w http.ResponseWriter, message string) {
	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("error")
	e.Str(message)
	e.ObjEnd()
	writeJSON(w, http.StatusBadRequest, e)
}

// --- jx encoders for domain values ---

func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.ObjStart()
	e.FieldStart("orderId")
	e.Str(o.OrderID)

	e.FieldStart("items")
	e.ArrStart()
	for _, line := range o.Items {
		e.ObjStart()
		e.FieldStart("productId")
		e.Str(line.ProductID)
		e.FieldStart("name")
		e.Str(line.Name)
		e.FieldStart("unitPrice")
		e.Float64(line.UnitPrice.InexactFloat64())
		e.FieldStart("quantity")
		e.Int(line.Quantity)
		e.ObjEnd()
	}
	e.ArrEnd()

	e.FieldStart("delivery")
	e.ObjStart()
	e.FieldStart("enabled")
	e.Bool(o.Delivery.Enabled)
	if o.Delivery.Enabled {
		a := o.Delivery.Address
		e.FieldStart("address")
		e.ObjStart()
		e.FieldStart("street")
		e.Str(a.Street)
		e.FieldStart("houseNumber")
		e.Str(a.HouseNumber)
		e.FieldStart("postalCode")
		e.Str(a.PostalCode)
		e.FieldStart("city")
		e.Str(a.City)
		e.ObjEnd()
		e.FieldStart("display")
		e.Str(a.Display())
	}
	e.ObjEnd()

	e.FieldStart("customer")
	e.ObjStart()
	e.FieldStart("name")
	e.Str(o.Customer.Name)
	e.FieldStart("phone")
	e.Str(o.Customer.Phone)
	e.FieldStart("email")
	e.Str(o.Customer.Email)
	e.ObjEnd()

	e.FieldStart("subtotal")
	e.Float64(o.Subtotal.InexactFloat64())
	e.FieldStart("deliveryFee")
	e.Float64(o.DeliveryFee.InexactFloat64())
	e.FieldStart("total")
	e.Float64(o.Total.InexactFloat64())
	e.FieldStart("status")
	e.Str(string(o.Status))
	e.FieldStart("createdAt")
	e.Str(o.CreatedAt.Format(time.RFC3339))
	e.FieldStart("updatedAt")
	e.Str(o.UpdatedAt.Format(time.RFC3339))
	e.ObjEnd()
}

func encodeStats(e *jx.Encoder, s order.Stats) {
	e.ObjStart()
	e.FieldStart("totalOrders")
	e.Int(s.TotalOrders)
	e.FieldStart("revenue")
	e.Float64(s.Revenue.InexactFloat64())
	e.FieldStart("itemsSold")
	e.Int(s.ItemsSold)
	e.FieldStart("deliveryOrders")
	e.Int(s.DeliveryOrders)
	e.FieldStart("pickupOrders")
	e.Int(s.PickupOrders)
	e.FieldStart("pendingOrders")
	e.Int(s.PendingOrders)
	e.FieldStart("completedOrders")
	e.Int(s.CompletedOrders)
	e.FieldStart("cancelledOrders")
	e.Int(s.CancelledOrders)

	e.FieldStart("itemBreakdown")
	e.ObjStart()
	// Deterministic key order keeps responses diffable.
	for _, name := range sortedKeys(s.ItemBreakdown) {
		e.FieldStart(name)
		e.Int(s.ItemBreakdown[name])
	}
	e.ObjEnd()
	e.ObjEnd()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func encodeProduct(e *jx.Encoder, p catalog.Product) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(p.ID)
	e.FieldStart("name")
	e.Str(p.Name)
	e.FieldStart("price")
	e.Float64(p.Price.InexactFloat64())
	if p.Description != "" {
		e.FieldStart("description")
		e.Str(p.Description)
	}
	e.ObjEnd()
}
