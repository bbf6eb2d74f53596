// README: Order store backed by PostgreSQL; status changes use a versioned conditional update.
package order

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"pharmago/internal/types"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

const orderColumns = `
	id, patient_id, pharmacy_id, items,
	delivery_lat, delivery_lng, pickup_lat, pickup_lng,
	subtotal::text, delivery_fee, discount, currency, total::text,
	urgency, status, status_version, prescription_id, driver_id, proof,
	created_at, pharmacy_accepted_at, driver_accepted_at, delivered_at, cancelled_at`

func (s *Store) Create(ctx context.Context, o *Order) error {
	items, err := json.Marshal(o.Items)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO orders (
			id, patient_id, pharmacy_id, items,
			delivery_lat, delivery_lng, pickup_lat, pickup_lng,
			subtotal, delivery_fee, discount, currency, total,
			urgency, status, status_version, prescription_id, created_at
		) VALUES (
			$1, $2, $3, $4,
			$5, $6, $7, $8,
			$9::numeric, $10, $11, $12, $13::numeric,
			$14, $15, $16, $17, $18
		)`,
		string(o.ID), string(o.PatientID), string(o.PharmacyID), items,
		o.Delivery.Lat, o.Delivery.Lng, o.Pickup.Lat, o.Pickup.Lng,
		o.Subtotal.String(), o.DeliveryFee.Amount, o.Discount.Amount, o.DeliveryFee.Currency, o.Total.String(),
		string(o.Urgency), string(o.Status), o.StatusVersion, toStringPtr(o.PrescriptionID), o.CreatedAt,
	)
	return types.Remote("create order", err)
}

func (s *Store) Get(ctx context.Context, id types.ID) (*Order, error) {
	row := s.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, string(id))
	o, err := scanOrder(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

// UpdateStatus moves the order from -> to only if nobody changed it since
// version was read. It reports whether the row was updated.
func (s *Store) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, driverID *types.ID, proof *Proof) (bool, error) {
	var proofJSON []byte
	if proof != nil {
		b, err := json.Marshal(proof)
		if err != nil {
			return false, err
		}
		proofJSON = b
	}
	tag, err := s.db.Exec(ctx, `
		UPDATE orders
		SET status = $1,
			status_version = status_version + 1,
			driver_id = COALESCE($2, driver_id),
			proof = COALESCE($3::jsonb, proof),
			pharmacy_accepted_at = CASE WHEN $1 = 'pharmacy_accepted' THEN NOW() ELSE pharmacy_accepted_at END,
			driver_accepted_at = CASE WHEN $1 = 'driver_accepted' THEN NOW() ELSE driver_accepted_at END,
			delivered_at = CASE WHEN $1 = 'delivered' THEN NOW() ELSE delivered_at END,
			cancelled_at = CASE WHEN $1 = 'cancelled' THEN NOW() ELSE cancelled_at END
		WHERE id = $4 AND status = $5 AND status_version = $6`,
		string(to),
		toStringPtr(driverID),
		proofJSON,
		string(id),
		string(from),
		version,
	)
	if err != nil {
		return false, types.Remote("update order status", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (s *Store) AppendEvent(ctx context.Context, e *Event) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO order_state_events (
			order_id, from_status, to_status, actor_type, actor_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6)`,
		string(e.OrderID),
		string(e.FromStatus),
		string(e.ToStatus),
		string(e.ActorType),
		toStringPtr(e.ActorID),
		e.CreatedAt,
	)
	return types.Remote("append order event", err)
}

func (s *Store) ListEvents(ctx context.Context, orderID types.ID) ([]Event, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, order_id, from_status, to_status, actor_type, actor_id, created_at
		FROM order_state_events
		WHERE order_id = $1
		ORDER BY id`, string(orderID))
	if err != nil {
		return nil, types.Remote("list order events", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		var e Event
		var actorID *string
		if err := rows.Scan(&e.ID, &e.OrderID, &e.FromStatus, &e.ToStatus, &e.ActorType, &actorID, &e.CreatedAt); err != nil {
			return nil, types.Remote("scan order event", err)
		}
		if actorID != nil {
			id := types.ID(*actorID)
			e.ActorID = &id
		}
		events = append(events, e)
	}
	return events, types.Remote("list order events", rows.Err())
}

// Queue listings come back oldest first; the service applies urgency order.

func (s *Store) ListPendingForPharmacy(ctx context.Context, pharmacyID types.ID) ([]Order, error) {
	return s.list(ctx, `WHERE status = 'pending' AND pharmacy_id = $1 ORDER BY created_at`, string(pharmacyID))
}

func (s *Store) ListAwaitingDriver(ctx context.Context) ([]Order, error) {
	return s.list(ctx, `WHERE status = 'pharmacy_accepted' AND driver_id IS NULL ORDER BY created_at`)
}

func (s *Store) ListActiveForDriver(ctx context.Context, driverID types.ID) ([]Order, error) {
	return s.list(ctx, `WHERE status = 'driver_accepted' AND driver_id = $1 ORDER BY driver_accepted_at DESC`, string(driverID))
}

func (s *Store) ListForPatient(ctx context.Context, patientID types.ID) ([]Order, error) {
	return s.list(ctx, `WHERE patient_id = $1 ORDER BY created_at DESC`, string(patientID))
}

func (s *Store) list(ctx context.Context, where string, args ...any) ([]Order, error) {
	rows, err := s.db.Query(ctx, `SELECT `+orderColumns+` FROM orders `+where, args...)
	if err != nil {
		return nil, types.Remote("list orders", err)
	}
	defer rows.Close()

	orders := []Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
	}
	return orders, types.Remote("list orders", rows.Err())
}

func scanOrder(row pgx.Row) (*Order, error) {
	var o Order
	var items, proof []byte
	var subtotal, total, currency string
	var prescriptionID, driverID *string

	err := row.Scan(
		&o.ID, &o.PatientID, &o.PharmacyID, &items,
		&o.Delivery.Lat, &o.Delivery.Lng, &o.Pickup.Lat, &o.Pickup.Lng,
		&subtotal, &o.DeliveryFee.Amount, &o.Discount.Amount, &currency, &total,
		&o.Urgency, &o.Status, &o.StatusVersion, &prescriptionID, &driverID, &proof,
		&o.CreatedAt, &o.PharmacyAcceptedAt, &o.DriverAcceptedAt, &o.DeliveredAt, &o.CancelledAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, types.Remote("scan order", err)
	}

	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("order %s items: %w", o.ID, err)
	}
	if len(proof) > 0 {
		o.Proof = &Proof{}
		if err := json.Unmarshal(proof, o.Proof); err != nil {
			return nil, fmt.Errorf("order %s proof: %w", o.ID, err)
		}
	}
	if o.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
		return nil, fmt.Errorf("order %s subtotal: %w", o.ID, err)
	}
	if o.Total, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("order %s total: %w", o.ID, err)
	}
	o.DeliveryFee.Currency = currency
	o.Discount.Currency = currency
	o.PrescriptionID = toIDPtr(prescriptionID)
	o.DriverID = toIDPtr(driverID)
	o.CreatedAt = o.CreatedAt.UTC()
	return &o, nil
}

func toStringPtr(v *types.ID) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

func toIDPtr(v *string) *types.ID {
	if v == nil {
		return nil
	}
	id := types.ID(*v)
	return &id
}
