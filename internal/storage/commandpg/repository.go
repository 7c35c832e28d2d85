// Package commandpg is the write-authoritative store for the order core,
// backed by Postgres via pgx. It is the only store command handlers and the
// checkout saga consult; correctness-sensitive decisions (transition
// legality, payment correlation) are made against these tables alone.
package commandpg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/OlegStrokan/free-ebay-sub000/internal/domain/order"
)

// Repository implements command.Store and the projection rebuild reader.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// InsertOrder persists the aggregate and its items in one transaction.
func (r *Repository) InsertOrder(ctx context.Context, o order.Order) error {
	items, ok := o.Items.Items()
	if !ok {
		return order.ErrItemsNotLoaded
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("commandpg: begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO order_command
			(id, customer_id, status, total_amount, version, delivery_address,
			 payment_method, tracking_number, delivery_date, feedback,
			 special_instructions, shipment_id, payment_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		o.ID, o.CustomerID, string(o.Status), o.TotalAmount, o.Version,
		o.DeliveryAddress, o.PaymentMethod, o.TrackingNumber, o.DeliveryDate,
		o.Feedback, o.SpecialInstructions, o.ShipmentID, o.PaymentID, o.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("commandpg: insert order %s: %w", o.ID, err)
	}

	if len(items) > 0 {
		batch := &pgx.Batch{}
		for _, it := range items {
			batch.Queue(`
				INSERT INTO order_item_command
					(id, order_id, product_id, quantity, unit_price, weight_kg, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
				it.ID, o.ID, it.ProductID, it.Quantity, it.UnitPrice,
				it.WeightKG, it.CreatedAt, it.UpdatedAt,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("commandpg: insert items for %s: %w", o.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commandpg: commit order %s: %w", o.ID, err)
	}
	tx = nil
	return nil
}

// UpdateOrder persists a mutated aggregate guarded by its version: the row
// is only written when the stored version matches, and the version is bumped
// in the same statement. A lost race yields order.ErrVersionConflict.
func (r *Repository) UpdateOrder(ctx context.Context, o order.Order) (order.Order, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE order_command
		SET status = $2, total_amount = $3, tracking_number = $4,
		    delivery_date = $5, feedback = $6, special_instructions = $7,
		    shipment_id = $8, payment_id = $9, version = version + 1
		WHERE id = $1 AND version = $10`,
		o.ID, string(o.Status), o.TotalAmount, o.TrackingNumber,
		o.DeliveryDate, o.Feedback, o.SpecialInstructions,
		o.ShipmentID, o.PaymentID, o.Version,
	)
	if err != nil {
		return order.Order{}, fmt.Errorf("commandpg: update order %s: %w", o.ID, err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM order_command WHERE id = $1)`, o.ID,
		).Scan(&exists); err != nil {
			return order.Order{}, fmt.Errorf("commandpg: check order %s: %w", o.ID, err)
		}
		if !exists {
			return order.Order{}, order.ErrOrderNotFound
		}
		return order.Order{}, order.ErrVersionConflict
	}
	o.Version++
	return o, nil
}

// FindOrderByID loads the aggregate with its items relation fetched.
func (r *Repository) FindOrderByID(ctx context.Context, id string) (order.Order, error) {
	var o order.Order
	var status string
	err := r.pool.QueryRow(ctx, `
		SELECT id, customer_id, status, total_amount, version, delivery_address,
		       payment_method, tracking_number, delivery_date, feedback,
		       special_instructions, shipment_id, payment_id, created_at
		FROM order_command WHERE id = $1`, id,
	).Scan(
		&o.ID, &o.CustomerID, &status, &o.TotalAmount, &o.Version,
		&o.DeliveryAddress, &o.PaymentMethod, &o.TrackingNumber, &o.DeliveryDate,
		&o.Feedback, &o.SpecialInstructions, &o.ShipmentID, &o.PaymentID, &o.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return order.Order{}, order.ErrOrderNotFound
	}
	if err != nil {
		return order.Order{}, fmt.Errorf("commandpg: find order %s: %w", id, err)
	}
	o.Status = order.Status(status)

	items, err := r.itemsByOrder(ctx, id)
	if err != nil {
		return order.Order{}, err
	}
	o.Items = order.LoadedItems(items)
	return o, nil
}

func (r *Repository) itemsByOrder(ctx context.Context, orderID string) ([]order.Item, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, product_id, quantity, unit_price, weight_kg, created_at, updated_at
		FROM order_item_command WHERE order_id = $1 ORDER BY created_at, id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("commandpg: items for %s: %w", orderID, err)
	}
	defer rows.Close()

	var items []order.Item
	for rows.Next() {
		var it order.Item
		if err := rows.Scan(&it.ID, &it.ProductID, &it.Quantity, &it.UnitPrice,
			&it.WeightKG, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("commandpg: scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// InsertParcels persists derived parcels in one batch.
func (r *Repository) InsertParcels(ctx context.Context, parcels []order.Parcel) error {
	if len(parcels) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, p := range parcels {
		batch.Queue(`
			INSERT INTO parcel_command
				(id, order_id, tracking_number, weight_kg, length_cm, width_cm,
				 height_cm, item_ids, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			p.ID, p.OrderID, p.TrackingNumber, p.WeightKG,
			p.Dimensions.LengthCM, p.Dimensions.WidthCM, p.Dimensions.HeightCM,
			itemIDs(p), p.CreatedAt,
		)
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("commandpg: insert parcels: %w", err)
	}
	return nil
}

func itemIDs(p order.Parcel) []string {
	items, ok := p.Items.Items()
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	return ids
}

// ListParcelsByOrder returns an order's parcels. The item relation is not
// fetched; callers see a NotLoaded relation, not an empty one.
func (r *Repository) ListParcelsByOrder(ctx context.Context, orderID string) ([]order.Parcel, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, tracking_number, weight_kg, length_cm, width_cm, height_cm, created_at
		FROM parcel_command WHERE order_id = $1 ORDER BY created_at, id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("commandpg: parcels for %s: %w", orderID, err)
	}
	defer rows.Close()

	var parcels []order.Parcel
	for rows.Next() {
		var p order.Parcel
		if err := rows.Scan(&p.ID, &p.OrderID, &p.TrackingNumber, &p.WeightKG,
			&p.Dimensions.LengthCM, &p.Dimensions.WidthCM, &p.Dimensions.HeightCM,
			&p.CreatedAt); err != nil {
			return nil, fmt.Errorf("commandpg: scan parcel: %w", err)
		}
		p.Items = order.NotLoadedItems()
		parcels = append(parcels, p)
	}
	return parcels, rows.Err()
}

// InsertShippingCost persists the derived shipping cost for an order.
func (r *Repository) InsertShippingCost(ctx context.Context, sc order.ShippingCost) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO shipping_cost_command
			(id, order_id, total_weight_kg, length_cm, width_cm, height_cm,
			 express, fragile, insurance, cost, parcel_ids, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		sc.ID, sc.OrderID, sc.TotalWeightKG,
		sc.Dimensions.LengthCM, sc.Dimensions.WidthCM, sc.Dimensions.HeightCM,
		sc.Options.Express, sc.Options.Fragile, sc.Options.Insurance,
		sc.Cost, sc.ParcelIDs, sc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("commandpg: insert shipping cost for %s: %w", sc.OrderID, err)
	}
	return nil
}

// InsertPayment persists a payment record.
func (r *Repository) InsertPayment(ctx context.Context, p order.Payment) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO payment_command
			(id, order_id, amount, currency, method, status, transaction_id,
			 client_secret, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.OrderID, p.Amount, p.Currency, p.Method, string(p.Status),
		p.TransactionID, p.ClientSecret, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("commandpg: insert payment for %s: %w", p.OrderID, err)
	}
	return nil
}

// UpdatePayment records the gateway outcome on an existing payment row.
func (r *Repository) UpdatePayment(ctx context.Context, p order.Payment) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE payment_command
		SET status = $2, transaction_id = $3, client_secret = $4, updated_at = $5
		WHERE id = $1`,
		p.ID, string(p.Status), p.TransactionID, p.ClientSecret, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("commandpg: update payment %s: %w", p.ID, err)
	}
	return nil
}

// ListOrders returns the most recent orders with items loaded, for the read
// model rebuild.
func (r *Repository) ListOrders(ctx context.Context, limit int) ([]order.Order, error) {
	if limit <= 0 {
		limit = 1000
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id FROM order_command ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("commandpg: list orders: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("commandpg: scan order id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	orders := make([]order.Order, 0, len(ids))
	for _, id := range ids {
		o, err := r.FindOrderByID(ctx, id)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}
