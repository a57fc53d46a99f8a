package order

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tamilyouth/preorder-api/internal/domain/catalog"
	"github.com/tamilyouth/preorder-api/internal/domain/pricing"
)

// --- Mock implementations ---

type mockRepo struct {
	byID      map[string]*Order
	insertErr error
	inserted  []*Order
}

func newMockRepo() *mockRepo {
	return &mockRepo{byID: make(map[string]*Order)}
}

func (m *mockRepo) Insert(_ context.Context, o *Order) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	cp := *o
	m.byID[o.OrderID] = &cp
	m.inserted = append(m.inserted, &cp)
	return nil
}

func (m *mockRepo) List(_ context.Context) ([]Order, error) {
	out := make([]Order, 0, len(m.byID))
	for _, o := range m.byID {
		out = append(out, *o)
	}
	return out, nil
}

func (m *mockRepo) GetByID(_ context.Context, id string) (*Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, id string, upd Update, updatedAt time.Time) (*Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	if upd.Status != nil {
		o.Status = *upd.Status
	}
	if upd.Customer != nil {
		o.Customer = *upd.Customer
	}
	if upd.Delivery != nil {
		o.Delivery = *upd.Delivery
	}
	o.UpdatedAt = updatedAt
	cp := *o
	return &cp, nil
}

func (m *mockRepo) Delete(_ context.Context, id string) (*Order, error) {
	o, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(m.byID, id)
	return o, nil
}

type mockNotifier struct {
	sent []string
	err  error
}

func (m *mockNotifier) SendConfirmation(_ context.Context, o *Order) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, o.OrderID)
	return nil
}

// --- Helpers ---

func newTestService(repo *mockRepo, n *mockNotifier) *Service {
	return NewService(catalog.Default(), pricing.DefaultPolicy(), repo, n)
}

func validCustomer() Customer {
	return Customer{Name: "Anita Perera", Phone: "079 123 45 67", Email: "anita@example.ch"}
}

func validDelivery() Delivery {
	return Delivery{
		Enabled: true,
		Address: Address{Street: "Bahnhofstrasse", HouseNumber: "12", PostalCode: "8200", City: "Schaffhausen"},
	}
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

// --- Tests ---

func TestCreate_HappyPathPickup(t *testing.T) {
	repo := newMockRepo()
	notifier := &mockNotifier{}
	svc := newTestService(repo, notifier)

	o, err := svc.Create(context.Background(), CreateRequest{
		Items:    []ItemRequest{{ProductID: "kottu", Quantity: 1}},
		Customer: validCustomer(),
	})

	require.NoError(t, err)
	assert.Regexp(t, `^\d{5}$`, o.OrderID)
	assert.Equal(t, StatusPending, o.Status)
	assertMoney(t, "12.00", o.Subtotal)
	assertMoney(t, "0", o.DeliveryFee)
	assertMoney(t, "12.00", o.Total)
	assert.False(t, o.CreatedAt.IsZero())
	assert.Equal(t, o.CreatedAt, o.UpdatedAt)
	assert.Len(t, repo.inserted, 1)
	assert.Equal(t, []string{o.OrderID}, notifier.sent)
}

func TestCreate_DeliveryPricing(t *testing.T) {
	svc := newTestService(newMockRepo(), &mockNotifier{})

	o, err := svc.Create(context.Background(), CreateRequest{
		Items:    []ItemRequest{{ProductID: "kottu", Quantity: 2}},
		Delivery: validDelivery(),
		Customer: validCustomer(),
	})

	require.NoError(t, err)
	assertMoney(t, "20", o.Subtotal)
	assertMoney(t, "5", o.DeliveryFee)
	assertMoney(t, "25", o.Total)
}

func TestCreate_DenormalizesFromCatalog(t *testing.T) {
	svc := newTestService(newMockRepo(), &mockNotifier{})

	o, err := svc.Create(context.Background(), CreateRequest{
		Items:    []ItemRequest{{ProductID: "cola", Quantity: 2}},
		Customer: validCustomer(),
	})

	require.NoError(t, err)
	require.Len(t, o.Items, 1)
	assert.Equal(t, "Cola", o.Items[0].Name)
	assertMoney(t, "3.50", o.Items[0].UnitPrice)
}

func TestCreate_EmptyCart(t *testing.T) {
	svc := newTestService(newMockRepo(), &mockNotifier{})

	_, err := svc.Create(context.Background(), CreateRequest{Customer: validCustomer()})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "items", vErr.Field)
}

func TestCreate_UnknownProduct(t *testing.T) {
	svc := newTestService(newMockRepo(), &mockNotifier{})

	_, err := svc.Create(context.Background(), CreateRequest{
		Items:    []ItemRequest{{ProductID: "pizza", Quantity: 1}},
		Customer: validCustomer(),
	})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Message, "pizza")
}

func TestCreate_ZeroQuantity(t *testing.T) {
	svc := newTestService(newMockRepo(), &mockNotifier{})

	_, err := svc.Create(context.Background(), CreateRequest{
		Items:    []ItemRequest{{ProductID: "kottu", Quantity: 0}},
		Customer: validCustomer(),
	})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestCreate_DuplicateProduct(t *testing.T) {
	svc := newTestService(newMockRepo(), &mockNotifier{})

	_, err := svc.Create(context.Background(), CreateRequest{
		Items: []ItemRequest{
			{ProductID: "kottu", Quantity: 1},
			{ProductID: "kottu", Quantity: 2},
		},
		Customer: validCustomer(),
	})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Message, "duplicate")
}

func TestCreate_CustomerValidation(t *testing.T) {
	tests := []struct {
		name     string
		customer Customer
	}{
		{"missing name", Customer{Phone: "0791234567", Email: "a@b.ch"}},
		{"missing phone", Customer{Name: "A", Email: "a@b.ch"}},
		{"short phone", Customer{Name: "A", Phone: "123", Email: "a@b.ch"}},
		{"missing email", Customer{Name: "A", Phone: "0791234567"}},
		{"email without at", Customer{Name: "A", Phone: "0791234567", Email: "not-an-email"}},
		{"email without domain dot", Customer{Name: "A", Phone: "0791234567", Email: "a@host"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestService(newMockRepo(), &mockNotifier{})
			_, err := svc.Create(context.Background(), CreateRequest{
				Items:    []ItemRequest{{ProductID: "kottu", Quantity: 1}},
				Customer: tt.customer,
			})
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr, "customer %+v should be rejected", tt.customer)
		})
	}
}

func TestCreate_DeliveryNeedsFullAddress(t *testing.T) {
	svc := newTestService(newMockRepo(), &mockNotifier{})

	_, err := svc.Create(context.Background(), CreateRequest{
		Items:    []ItemRequest{{ProductID: "kottu", Quantity: 1}},
		Delivery: Delivery{Enabled: true, Address: Address{Street: "Bahnhofstrasse"}},
		Customer: validCustomer(),
	})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestCreate_PostalCodePolicy(t *testing.T) {
	svc := newTestService(newMockRepo(), &mockNotifier{})

	d := validDelivery()
	d.Address.PostalCode = "82000"
	_, err := svc.Create(context.Background(), CreateRequest{
		Items:    []ItemRequest{{ProductID: "kottu", Quantity: 1}},
		Delivery: d,
		Customer: validCustomer(),
	})

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Contains(t, vErr.Field, "postalCode")
}

func TestCreate_InsertFailureFailsCreation(t *testing.T) {
	repo := newMockRepo()
	repo.insertErr = errors.New("db down")
	notifier := &mockNotifier{}
	svc := newTestService(repo, notifier)

	_, err := svc.Create(context.Background(), CreateRequest{
		Items:    []ItemRequest{{ProductID: "kottu", Quantity: 1}},
		Customer: validCustomer(),
	})

	require.Error(t, err)
	// No partial order, and no confirmation for a non-persisted order.
	assert.Empty(t, repo.inserted)
	assert.Empty(t, notifier.sent)
}

func TestCreate_NotifyFailureDoesNotFailOrder(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockNotifier{err: errors.New("smtp unreachable")})

	o, err := svc.Create(context.Background(), CreateRequest{
		Items:    []ItemRequest{{ProductID: "kottu", Quantity: 1}},
		Customer: validCustomer(),
	})

	require.NoError(t, err)
	assert.NotNil(t, repo.byID[o.OrderID])
}

func TestUpdateStatus_AllTransitions(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockNotifier{})

	o, err := svc.Create(context.Background(), CreateRequest{
		Items:    []ItemRequest{{ProductID: "kottu", Quantity: 1}},
		Customer: validCustomer(),
	})
	require.NoError(t, err)

	// Any status is reachable from any other, cancelled to pending included.
	for _, target := range []Status{StatusCompleted, StatusPending, StatusCancelled, StatusPending} {
		updated, err := svc.UpdateStatus(context.Background(), o.OrderID, target)
		require.NoError(t, err)
		assert.Equal(t, target, updated.Status)
	}
}

func TestUpdateStatus_StampsUpdatedAtOnly(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockNotifier{})
	base := time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	o, err := svc.Create(context.Background(), CreateRequest{
		Items:    []ItemRequest{{ProductID: "kottu", Quantity: 2}},
		Customer: validCustomer(),
	})
	require.NoError(t, err)

	svc.now = func() time.Time { return base.Add(time.Hour) }
	updated, err := svc.UpdateStatus(context.Background(), o.OrderID, StatusCompleted)
	require.NoError(t, err)

	assert.Equal(t, base, updated.CreatedAt)
	assert.Equal(t, base.Add(time.Hour), updated.UpdatedAt)
	// Status edits never touch pricing fields.
	assertMoney(t, "20", updated.Subtotal)
	assertMoney(t, "0", updated.DeliveryFee)
	assertMoney(t, "20", updated.Total)
}

func TestUpdateStatus_UnknownID(t *testing.T) {
	svc := newTestService(newMockRepo(), &mockNotifier{})

	_, err := svc.UpdateStatus(context.Background(), "00000", StatusCompleted)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatus_InvalidStatus(t *testing.T) {
	svc := newTestService(newMockRepo(), &mockNotifier{})

	_, err := svc.UpdateStatus(context.Background(), "12345", Status("shipped"))
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
}

func TestApply_PartialUpdate(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockNotifier{})

	o, err := svc.Create(context.Background(), CreateRequest{
		Items:    []ItemRequest{{ProductID: "kottu", Quantity: 1}},
		Customer: validCustomer(),
	})
	require.NoError(t, err)

	c := Customer{Name: "Neuer Name", Phone: "078 555 66 77", Email: "neu@example.ch"}
	updated, err := svc.Apply(context.Background(), o.OrderID, Update{Customer: &c})
	require.NoError(t, err)
	assert.Equal(t, c, updated.Customer)
	assert.Equal(t, StatusPending, updated.Status)
}

func TestDelete(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &mockNotifier{})

	o, err := svc.Create(context.Background(), CreateRequest{
		Items:    []ItemRequest{{ProductID: "kottu", Quantity: 1}},
		Customer: validCustomer(),
	})
	require.NoError(t, err)

	removed, err := svc.Delete(context.Background(), o.OrderID)
	require.NoError(t, err)
	assert.Equal(t, o.OrderID, removed.OrderID)

	_, err = svc.Delete(context.Background(), o.OrderID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestIDGenerator_RetriesOnCollision(t *testing.T) {
	g := NewIDGenerator()
	calls := 0
	exists := func(_ context.Context, _ string) (bool, error) {
		calls++
		return calls == 1, nil // first candidate is taken
	}

	id, err := g.Next(context.Background(), exists)
	require.NoError(t, err)
	assert.Regexp(t, `^\d{5}$`, id)
	assert.Equal(t, 2, calls)
}

func TestIDGenerator_Exhaustion(t *testing.T) {
	g := NewIDGenerator()
	exists := func(_ context.Context, _ string) (bool, error) { return true, nil }

	_, err := g.Next(context.Background(), exists)
	require.ErrorIs(t, err, ErrIDSpaceExhausted)
}

func TestIDGenerator_SeedBlocksKnownIDs(t *testing.T) {
	g := NewIDGenerator()
	// Seed the full examined space minus nothing; the generator must not
	// hand out a seeded id without consulting the authoritative check.
	g.Seed([]string{"12345"})

	exists := func(_ context.Context, id string) (bool, error) {
		assert.NotEqual(t, "12345", id)
		return false, nil
	}
	_, err := g.Next(context.Background(), exists)
	require.NoError(t, err)
}
