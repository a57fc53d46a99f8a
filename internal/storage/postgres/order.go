package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tamilyouth/preorder-api/internal/domain/order"
)

const orderColumns = `order_id, items,
	delivery_enabled, delivery_street, delivery_house_number, delivery_postal_code, delivery_city,
	customer_name, customer_phone, customer_email,
	subtotal, delivery_fee, total, status, created_at, updated_at`

const (
	insertOrderSQL = `INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	listOrdersSQL = `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`

	getOrderSQL = `SELECT ` + orderColumns + ` FROM orders WHERE order_id = $1`

	deleteOrderSQL = `DELETE FROM orders WHERE order_id = $1 RETURNING ` + orderColumns
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL. Cart
// lines are serialized to a JSONB column; money columns are NUMERIC and
// scanned straight into decimals.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Insert persists a new order in a single statement.
func (r *OrderRepository) Insert(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return errors.Wrap(err, "marshal order items")
	}

	a := o.Delivery.Address
	_, err = r.pool.Exec(ctx, insertOrderSQL,
		o.OrderID, itemsJSON,
		o.Delivery.Enabled, a.Street, a.HouseNumber, a.PostalCode, a.City,
		o.Customer.Name, o.Customer.Phone, o.Customer.Email,
		o.Subtotal, o.DeliveryFee, o.Total, string(o.Status), o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "insert order %q", o.OrderID)
	}
	return nil
}

// List returns all orders, newest first.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return pgx.CollectRows(rows, scanOrder)
}

// GetByID returns a single order or order.ErrNotFound.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, getOrderSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "get order %q", id)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "get order %q", id)
	}
	return &o, nil
}

// Update applies a partial update and stamps updated_at. Price columns are
// never part of the SET list.
func (r *OrderRepository) Update(ctx context.Context, id string, upd order.Update, updatedAt time.Time) (*order.Order, error) {
	set := []string{"updated_at = $2"}
	args := []any{id, updatedAt}

	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if upd.Status != nil {
		add("status", string(*upd.Status))
	}
	if upd.Customer != nil {
		add("customer_name", upd.Customer.Name)
		add("customer_phone", upd.Customer.Phone)
		add("customer_email", upd.Customer.Email)
	}
	if upd.Delivery != nil {
		add("delivery_enabled", upd.Delivery.Enabled)
		add("delivery_street", upd.Delivery.Address.Street)
		add("delivery_house_number", upd.Delivery.Address.HouseNumber)
		add("delivery_postal_code", upd.Delivery.Address.PostalCode)
		add("delivery_city", upd.Delivery.Address.City)
	}

	sql := `UPDATE orders SET ` + strings.Join(set, ", ") +
		` WHERE order_id = $1 RETURNING ` + orderColumns

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "update order %q", id)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "update order %q", id)
	}
	return &o, nil
}

// Delete removes an order permanently, returning the removed record or
// order.ErrNotFound.
func (r *OrderRepository) Delete(ctx context.Context, id string) (*order.Order, error) {
	rows, err := r.pool.Query(ctx, deleteOrderSQL, id)
	if err != nil {
		return nil, errors.Wrapf(err, "delete order %q", id)
	}

	o, err := pgx.CollectExactlyOneRow(rows, scanOrder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrNotFound
		}
		return nil, errors.Wrapf(err, "delete order %q", id)
	}
	return &o, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var (
		o         order.Order
		itemsJSON []byte
		status    string
	)
	err := row.Scan(
		&o.OrderID, &itemsJSON,
		&o.Delivery.Enabled, &o.Delivery.Address.Street, &o.Delivery.Address.HouseNumber,
		&o.Delivery.Address.PostalCode, &o.Delivery.Address.City,
		&o.Customer.Name, &o.Customer.Phone, &o.Customer.Email,
		&o.Subtotal, &o.DeliveryFee, &o.Total, &status, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return order.Order{}, err
	}
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return order.Order{}, errors.Wrap(err, "unmarshal order items")
	}
	o.Status = order.Status(status)
	return o, nil
}
