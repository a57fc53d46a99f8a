// Package order owns the order aggregate: creation, status lifecycle,
// reporting folds, and the persistence/notification contracts.
package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors.
var (
	// ErrNotFound is returned when an operation references an unknown order id.
	ErrNotFound = errors.New("order not found")
	// ErrIDSpaceExhausted is returned when order-id generation keeps
	// colliding past its retry budget. Practically unreachable with a
	// 5-digit space at single-venue volume.
	ErrIDSpaceExhausted = errors.New("order id generation exhausted")
)

// ValidationError reports bad order input. It maps to a 400 at the HTTP
// boundary.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Status labels an order's processing state. The transition function is
// total: staff may set any status from any status (including reopening a
// cancelled order), so Status is a labeled field rather than a guarded
// automaton. See Service.UpdateStatus.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// ParseStatus validates a status label.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusCompleted, StatusCancelled:
		return Status(s), nil
	}
	return "", &ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", s)}
}

// CartLine is a priced order line. Name and UnitPrice are denormalized from
// the catalog when the order is created and never looked up again.
type CartLine struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Quantity  int             `json:"quantity"`
}

// Address is a structured delivery address. The flattened display form is
// derived on demand; storing the parts keeps the postal code extractable
// without string mining.
type Address struct {
	Street      string `json:"street"`
	HouseNumber string `json:"houseNumber"`
	PostalCode  string `json:"postalCode"`
	City        string `json:"city"`
}

// Display flattens the address for rendering and exports.
func (a Address) Display() string {
	left := strings.TrimSpace(a.Street + " " + a.HouseNumber)
	right := strings.TrimSpace(a.PostalCode + " " + a.City)
	switch {
	case left == "":
		return right
	case right == "":
		return left
	}
	return left + ", " + right
}

// Empty reports whether no address field is populated.
func (a Address) Empty() bool {
	return a.Street == "" && a.HouseNumber == "" && a.PostalCode == "" && a.City == ""
}

// Delivery is the customer's fulfilment choice: pickup (Enabled false, no
// address) or delivery to Address.
type Delivery struct {
	Enabled bool    `json:"enabled"`
	Address Address `json:"address"`
}

// Customer holds the contact details attached to an order.
type Customer struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// Order is the aggregate root. Subtotal, DeliveryFee, and Total are derived
// from Items and Delivery exactly once at creation; status updates never
// recompute them. Total == Subtotal + DeliveryFee always holds.
type Order struct {
	OrderID     string
	Items       []CartLine
	Delivery    Delivery
	Customer    Customer
	Subtotal    decimal.Decimal
	DeliveryFee decimal.Decimal
	Total       decimal.Decimal
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ItemCount returns the total quantity across all lines.
func (o *Order) ItemCount() int {
	n := 0
	for _, line := range o.Items {
		n += line.Quantity
	}
	return n
}

// Update carries the mutable fields of a partial order update. Nil fields
// are left untouched. Items and price fields are immutable after creation.
type Update struct {
	Status   *Status
	Customer *Customer
	Delivery *Delivery
}

// Repository is the persistence contract consumed by the Service. List
// returns orders in creation-time descending order. Update and Delete
// return ErrNotFound for unknown ids.
type Repository interface {
	Insert(ctx context.Context, o *Order) error
	List(ctx context.Context) ([]Order, error)
	GetByID(ctx context.Context, id string) (*Order, error)
	Update(ctx context.Context, id string, upd Update, updatedAt time.Time) (*Order, error)
	Delete(ctx context.Context, id string) (*Order, error)
}

// Notifier sends the order confirmation after a successful creation.
// Failures are logged by the caller and never fail the order.
type Notifier interface {
	SendConfirmation(ctx context.Context, o *Order) error
}
