// Package querypg is the read-optimized store, backed by Postgres via pgx.
// Its tables are written only by projectors and read only by the query
// service; no foreign key or transaction ever crosses into the command
// schema, which keeps the eventual-consistency boundary honest.
package querypg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/OlegStrokan/free-ebay-sub000/internal/domain/order"
	"github.com/OlegStrokan/free-ebay-sub000/internal/readmodel"
)

// Repository implements readmodel.Store.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UpsertOrder writes the order row idempotently by id, replacing its items
// wholesale, and refreshes the denormalized order_projection document.
func (r *Repository) UpsertOrder(ctx context.Context, row readmodel.OrderRow) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("querypg: begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	_, err = tx.Exec(ctx, `
		INSERT INTO order_query
			(id, customer_id, status, total_amount, tracking_number, delivery_date,
			 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			customer_id = EXCLUDED.customer_id,
			status = EXCLUDED.status,
			total_amount = EXCLUDED.total_amount,
			tracking_number = EXCLUDED.tracking_number,
			delivery_date = EXCLUDED.delivery_date,
			updated_at = EXCLUDED.updated_at`,
		row.ID, row.CustomerID, row.Status, row.TotalAmount,
		row.TrackingNumber, row.DeliveryDate, row.CreatedAt, row.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("querypg: upsert order %s: %w", row.ID, err)
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM order_item_query WHERE order_id = $1`, row.ID); err != nil {
		return fmt.Errorf("querypg: clear items for %s: %w", row.ID, err)
	}
	if len(row.Items) > 0 {
		batch := &pgx.Batch{}
		for _, it := range row.Items {
			batch.Queue(`
				INSERT INTO order_item_query
					(id, order_id, product_id, quantity, unit_price, weight_kg)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				it.ID, row.ID, it.ProductID, it.Quantity, it.UnitPrice, it.WeightKG,
			)
		}
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return fmt.Errorf("querypg: insert items for %s: %w", row.ID, err)
		}
	}

	if err := upsertProjectionDoc(ctx, tx, row); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("querypg: commit upsert %s: %w", row.ID, err)
	}
	tx = nil
	return nil
}

// SaveOrder updates the order row (status and shipment fields) without
// touching its items, and refreshes the projection document.
func (r *Repository) SaveOrder(ctx context.Context, row readmodel.OrderRow) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("querypg: begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	tag, err := tx.Exec(ctx, `
		UPDATE order_query
		SET status = $2, tracking_number = $3, delivery_date = $4, updated_at = $5
		WHERE id = $1`,
		row.ID, row.Status, row.TrackingNumber, row.DeliveryDate, row.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("querypg: save order %s: %w", row.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrOrderNotFound
	}

	if err := upsertProjectionDoc(ctx, tx, row); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("querypg: commit save %s: %w", row.ID, err)
	}
	tx = nil
	return nil
}

func upsertProjectionDoc(ctx context.Context, tx pgx.Tx, row readmodel.OrderRow) error {
	doc, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("querypg: encode projection %s: %w", row.ID, err)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO order_projection (order_id, document, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (order_id) DO UPDATE SET
			document = EXCLUDED.document,
			updated_at = EXCLUDED.updated_at`,
		row.ID, doc, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("querypg: upsert projection %s: %w", row.ID, err)
	}
	return nil
}

// FindOrderByID loads a projected order with its items.
func (r *Repository) FindOrderByID(ctx context.Context, id string) (readmodel.OrderRow, error) {
	var row readmodel.OrderRow
	err := r.pool.QueryRow(ctx, `
		SELECT id, customer_id, status, total_amount, tracking_number,
		       delivery_date, created_at, updated_at
		FROM order_query WHERE id = $1`, id,
	).Scan(
		&row.ID, &row.CustomerID, &row.Status, &row.TotalAmount,
		&row.TrackingNumber, &row.DeliveryDate, &row.CreatedAt, &row.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return readmodel.OrderRow{}, order.ErrOrderNotFound
	}
	if err != nil {
		return readmodel.OrderRow{}, fmt.Errorf("querypg: find order %s: %w", id, err)
	}

	row.Items, err = r.itemsByOrder(ctx, id)
	if err != nil {
		return readmodel.OrderRow{}, err
	}
	return row, nil
}

// FindOrdersByCustomer lists a customer's projected orders, newest first.
func (r *Repository) FindOrdersByCustomer(ctx context.Context, customerID string) ([]readmodel.OrderRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, customer_id, status, total_amount, tracking_number,
		       delivery_date, created_at, updated_at
		FROM order_query WHERE customer_id = $1
		ORDER BY created_at DESC`, customerID)
	if err != nil {
		return nil, fmt.Errorf("querypg: orders for customer %s: %w", customerID, err)
	}
	defer rows.Close()

	var out []readmodel.OrderRow
	for rows.Next() {
		var row readmodel.OrderRow
		if err := rows.Scan(&row.ID, &row.CustomerID, &row.Status, &row.TotalAmount,
			&row.TrackingNumber, &row.DeliveryDate, &row.CreatedAt, &row.UpdatedAt); err != nil {
			return nil, fmt.Errorf("querypg: scan order: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		items, err := r.itemsByOrder(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Items = items
	}
	return out, nil
}

func (r *Repository) itemsByOrder(ctx context.Context, orderID string) ([]readmodel.ItemRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, order_id, product_id, quantity, unit_price, weight_kg
		FROM order_item_query WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("querypg: items for %s: %w", orderID, err)
	}
	defer rows.Close()

	var items []readmodel.ItemRow
	for rows.Next() {
		var it readmodel.ItemRow
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID,
			&it.Quantity, &it.UnitPrice, &it.WeightKG); err != nil {
			return nil, fmt.Errorf("querypg: scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// UpsertParcels writes projected parcels idempotently by id.
func (r *Repository) UpsertParcels(ctx context.Context, parcels []readmodel.ParcelRow) error {
	if len(parcels) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, p := range parcels {
		batch.Queue(`
			INSERT INTO parcel_query (id, order_id, tracking_number, weight_kg, created_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET
				tracking_number = EXCLUDED.tracking_number,
				weight_kg = EXCLUDED.weight_kg`,
			p.ID, p.OrderID, p.TrackingNumber, p.WeightKG, p.CreatedAt,
		)
	}
	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("querypg: upsert parcels: %w", err)
	}
	return nil
}

// UpsertShippingCost writes the projected shipping cost idempotently.
func (r *Repository) UpsertShippingCost(ctx context.Context, row readmodel.ShippingRow) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO shipping_cost_query (id, order_id, cost, total_weight_kg)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE SET
			cost = EXCLUDED.cost,
			total_weight_kg = EXCLUDED.total_weight_kg`,
		row.ID, row.OrderID, row.Cost, row.TotalWeightKG,
	)
	if err != nil {
		return fmt.Errorf("querypg: upsert shipping cost %s: %w", row.ID, err)
	}
	return nil
}
