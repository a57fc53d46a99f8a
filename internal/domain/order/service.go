package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/tamilyouth/preorder-api/internal/domain/catalog"
	"github.com/tamilyouth/preorder-api/internal/domain/pricing"
)

// ItemRequest is a single requested line: a catalog product id and how many.
// Prices and names come from the catalog, never from the client.
type ItemRequest struct {
	ProductID string
	Quantity  int
}

// CreateRequest holds the input for creating an order.
type CreateRequest struct {
	Items    []ItemRequest
	Delivery Delivery
	Customer Customer
}

// Service is the order lifecycle manager. It owns identity assignment and
// status transitions, prices carts through the pricing policy, and delegates
// storage and confirmation mail to its collaborators.
type Service struct {
	menu     *catalog.Catalog
	policy   pricing.Policy
	orders   Repository
	notifier Notifier
	ids      *IDGenerator
	now      func() time.Time
}

// NewService creates a Service with the required collaborators.
func NewService(menu *catalog.Catalog, policy pricing.Policy, orders Repository, notifier Notifier) *Service {
	return &Service{
		menu:     menu,
		policy:   policy,
		orders:   orders,
		notifier: notifier,
		ids:      NewIDGenerator(),
		now:      time.Now,
	}
}

// SeedIDs marks already-persisted order ids as taken in the generator's
// pre-filter. Called once at startup with the repository's current listing.
func (s *Service) SeedIDs(ids []string) {
	s.ids.Seed(ids)
}

// Create validates, prices, and persists a new order, then sends the
// confirmation email best-effort. Creation is atomic: a repository failure
// leaves no record behind and no mail is sent.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Order, error) {
	lines, err := s.resolveItems(req.Items)
	if err != nil {
		return nil, err
	}
	if err := validateCustomer(req.Customer); err != nil {
		return nil, err
	}
	if err := validateDelivery(req.Delivery); err != nil {
		return nil, err
	}
	if !req.Delivery.Enabled {
		// Pickup orders carry no address.
		req.Delivery.Address = Address{}
	}

	quote, err := s.policy.Quote(toPricingLines(lines), req.Delivery.Enabled)
	if err != nil {
		return nil, errors.Wrap(err, "price cart")
	}

	id, err := s.ids.Next(ctx, s.idTaken)
	if err != nil {
		return nil, err
	}

	now := s.now()
	o := &Order{
		OrderID:     id,
		Items:       lines,
		Delivery:    req.Delivery,
		Customer:    req.Customer,
		Subtotal:    quote.Subtotal,
		DeliveryFee: quote.DeliveryFee,
		Total:       quote.Total,
		Status:      StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.orders.Insert(ctx, o); err != nil {
		return nil, errors.Wrap(err, "insert order")
	}

	// Fire-and-log: a failed confirmation never fails the order.
	if err := s.notifier.SendConfirmation(ctx, o); err != nil {
		zctx.From(ctx).Warn("Order confirmation not sent",
			zap.String("order_id", o.OrderID),
			zap.Error(err),
		)
	}

	return o, nil
}

// UpdateStatus sets the order's status. The transition function is total:
// every target status is accepted from every current status, matching the
// storefront's staff tooling (including the undocumented cancelled to
// pending path). Tighten here if a guarded automaton is ever wanted.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (*Order, error) {
	if _, err := ParseStatus(string(status)); err != nil {
		return nil, err
	}
	return s.orders.Update(ctx, id, Update{Status: &status}, s.now())
}

// Apply performs a partial update of the order's mutable fields. Price
// fields and items are not updatable; UpdatedAt is stamped on every call.
func (s *Service) Apply(ctx context.Context, id string, upd Update) (*Order, error) {
	if upd.Status != nil {
		if _, err := ParseStatus(string(*upd.Status)); err != nil {
			return nil, err
		}
	}
	if upd.Customer != nil {
		if err := validateCustomer(*upd.Customer); err != nil {
			return nil, err
		}
	}
	if upd.Delivery != nil {
		if err := validateDelivery(*upd.Delivery); err != nil {
			return nil, err
		}
	}
	return s.orders.Update(ctx, id, upd, s.now())
}

// Get returns a single order by id.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	return s.orders.GetByID(ctx, id)
}

// List returns all orders, newest first.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	return s.orders.List(ctx)
}

// Delete removes an order permanently and returns the removed record.
func (s *Service) Delete(ctx context.Context, id string) (*Order, error) {
	return s.orders.Delete(ctx, id)
}

func (s *Service) idTaken(ctx context.Context, id string) (bool, error) {
	_, err := s.orders.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// resolveItems validates the requested lines and denormalizes name and unit
// price from the catalog.
func (s *Service) resolveItems(items []ItemRequest) ([]CartLine, error) {
	if len(items) == 0 {
		return nil, &ValidationError{Field: "items", Message: "cart is empty"}
	}

	lines := make([]CartLine, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if item.Quantity < 1 {
			return nil, &ValidationError{Field: "items", Message: "quantity must be at least 1 for product " + item.ProductID}
		}
		if _, dup := seen[item.ProductID]; dup {
			return nil, &ValidationError{Field: "items", Message: "duplicate product " + item.ProductID}
		}
		seen[item.ProductID] = struct{}{}

		p, err := s.menu.GetByID(item.ProductID)
		if err != nil {
			return nil, &ValidationError{Field: "items", Message: "unknown product " + item.ProductID}
		}
		lines = append(lines, CartLine{
			ProductID: p.ID,
			Name:      p.Name,
			UnitPrice: p.Price,
			Quantity:  item.Quantity,
		})
	}
	return lines, nil
}

func toPricingLines(lines []CartLine) []pricing.Line {
	out := make([]pricing.Line, len(lines))
	for i, l := range lines {
		out[i] = pricing.Line{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: l.UnitPrice,
			Quantity:  l.Quantity,
		}
	}
	return out
}
