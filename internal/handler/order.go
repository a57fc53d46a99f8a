package handler

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/go-faster/jx"

	"github.com/tamilyouth/preorder-api/internal/domain/order"
)

// --- request DTOs ---

type itemDTO struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

type addressDTO struct {
	Street      string `json:"street"`
	HouseNumber string `json:"houseNumber"`
	PostalCode  string `json:"postalCode"`
	City        string `json:"city"`
}

type deliveryDTO struct {
	Enabled bool       `json:"enabled"`
	Address addressDTO `json:"address"`
}

type customerDTO struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

type createOrderDTO struct {
	Items    []itemDTO   `json:"items"`
	Delivery deliveryDTO `json:"delivery"`
	Customer customerDTO `json:"customer"`
}

type updateOrderDTO struct {
	OrderID string `json:"orderId"`
	Updates struct {
		Status   *string      `json:"status"`
		Customer *customerDTO `json:"customer"`
		Delivery *deliveryDTO `json:"delivery"`
	} `json:"updates"`
}

func (d deliveryDTO) toDomain() order.Delivery {
	return order.Delivery{
		Enabled: d.Enabled,
		Address: order.Address{
			Street:      d.Address.Street,
			HouseNumber: d.Address.HouseNumber,
			PostalCode:  d.Address.PostalCode,
			City:        d.Address.City,
		},
	}
}

func (c customerDTO) toDomain() order.Customer {
	return order.Customer{Name: c.Name, Phone: c.Phone, Email: c.Email}
}

// CreateOrder prices and persists a submitted cart, responding with the
// order number and the computed totals.
func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	items := make([]order.ItemRequest, len(req.Items))
	for i, it := range req.Items {
		items[i] = order.ItemRequest{ProductID: it.ProductID, Quantity: it.Quantity}
	}

	o, err := h.orders.Create(r.Context(), order.CreateRequest{
		Items:    items,
		Delivery: req.Delivery.toDomain(),
		Customer: req.Customer.toDomain(),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	e := &jx.Encoder{}
	e.ObjStart()
	e.FieldStart("orderId")
	e.Str(o.OrderID)
	e.FieldStart("subtotal")
	e.Float64(o.Subtotal.InexactFloat64())
	e.FieldStart("deliveryFee")
	e.Float64(o.DeliveryFee.InexactFloat64())
	e.FieldStart("total")
	e.Float64(o.Total.InexactFloat64())
	e.ObjEnd()
	writeJSON(w, http.StatusOK, e)
}

// ListOrders returns the order set with dashboard stats. ?postalCode=
// narrows to one delivery group; &grouped=true returns the per-postal-code
// grouping instead of the flat list.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	stats := order.ComputeStats(orders, h.menu.Names())

	q := r.URL.Query()
	if code := q.Get("postalCode"); code != "" {
		orders = order.GroupByPostalCode(orders)[code]
	}

	e := &jx.Encoder{}
	e.ObjStart()
	if q.Get("grouped") == "true" {
		groups := order.GroupByPostalCode(orders)
		e.FieldStart("groups")
		e.ObjStart()
		for _, code := range sortedGroupKeys(groups) {
			e.FieldStart(code)
			encodeOrderList(e, groups[code])
		}
		e.ObjEnd()
	} else {
		e.FieldStart("orders")
		encodeOrderList(e, orders)
	}
	e.FieldStart("stats")
	encodeStats(e, stats)
	e.ObjEnd()
	writeJSON(w, http.StatusOK, e)
}

// UpdateOrder applies a partial update (status, customer, delivery) to an
// existing order.
func (h *Handler) UpdateOrder(w http.ResponseWriter, r *http.Request) {
	var req updateOrderDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if req.OrderID == "" {
		writeBadRequest(w, "orderId is required")
		return
	}

	var upd order.Update
	if req.Updates.Status != nil {
		status, err := order.ParseStatus(*req.Updates.Status)
		if err != nil {
			writeError(w, r, err)
			return
		}
		upd.Status = &status
	}
	if req.Updates.Customer != nil {
		c := req.Updates.Customer.toDomain()
		upd.Customer = &c
	}
	if req.Updates.Delivery != nil {
		d := req.Updates.Delivery.toDomain()
		upd.Delivery = &d
	}

	o, err := h.orders.Apply(r.Context(), req.OrderID, upd)
	if err != nil {
		writeError(w, r, err)
		return
	}

	e := &jx.Encoder{}
	encodeOrder(e, o)
	writeJSON(w, http.StatusOK, e)
}

// DeleteOrder removes an order permanently.
func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("orderId")
	if id == "" {
		writeBadRequest(w, "orderId is required")
		return
	}

	o, err := h.orders.Delete(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	e := &jx.Encoder{}
	encodeOrder(e, o)
	writeJSON(w, http.StatusOK, e)
}

// ListProducts returns the fixed catalog.
func (h *Handler) ListProducts(w http.ResponseWriter, _ *http.Request) {
	e := &jx.Encoder{}
	e.ArrStart()
	for _, p := range h.menu.List() {
		encodeProduct(e, p)
	}
	e.ArrEnd()
	writeJSON(w, http.StatusOK, e)
}

func encodeOrderList(e *jx.Encoder, orders []order.Order) {
	e.ArrStart()
	for i := range orders {
		encodeOrder(e, &orders[i])
	}
	e.ArrEnd()
}

func sortedGroupKeys(groups map[string][]order.Order) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
