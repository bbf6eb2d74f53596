// README: Order aggregate, status flow and transition errors.
package order

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"pharmago/internal/types"
)

type Status string

const (
	StatusNone             Status = "none"
	StatusPending          Status = "pending"
	StatusPharmacyAccepted Status = "pharmacy_accepted"
	StatusDriverAccepted   Status = "driver_accepted"
	StatusDelivered        Status = "delivered"
	StatusCancelled        Status = "cancelled"
)

type Item struct {
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// Proof is what the driver records when handing the order over.
type Proof struct {
	RecipientName      string    `json:"recipient_name,omitempty"`
	DeliveredAt        time.Time `json:"delivered_at"`
	ConfirmationNumber string    `json:"confirmation_number,omitempty"`
	ReceiptURL         string    `json:"receipt_url,omitempty"`
}

type Order struct {
	ID             types.ID        `json:"id"`
	PatientID      types.ID        `json:"patient_id"`
	PharmacyID     types.ID        `json:"pharmacy_id"`
	Items          []Item          `json:"items"`
	Delivery       types.Point     `json:"delivery"`
	Pickup         types.Point     `json:"pickup"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	DeliveryFee    types.Money     `json:"delivery_fee"`
	Discount       types.Money     `json:"discount"`
	Total          decimal.Decimal `json:"total"`
	Urgency        types.Urgency   `json:"urgency"`
	Status         Status          `json:"status"`
	StatusVersion  int             `json:"status_version"`
	PrescriptionID *types.ID       `json:"prescription_id,omitempty"`
	DriverID       *types.ID       `json:"driver_id,omitempty"`
	Proof          *Proof          `json:"proof,omitempty"`

	CreatedAt          time.Time  `json:"created_at"`
	PharmacyAcceptedAt *time.Time `json:"pharmacy_accepted_at,omitempty"`
	DriverAcceptedAt   *time.Time `json:"driver_accepted_at,omitempty"`
	DeliveredAt        *time.Time `json:"delivered_at,omitempty"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
}

type Event struct {
	ID         int64      `json:"id"`
	OrderID    types.ID   `json:"order_id"`
	FromStatus Status     `json:"from_status"`
	ToStatus   Status     `json:"to_status"`
	ActorType  types.Role `json:"actor_type"`
	ActorID    *types.ID  `json:"actor_id,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// AllowedTransitions represents the order state flow as code. delivered and
// cancelled are terminal.
var AllowedTransitions = map[Status][]Status{
	StatusNone:             {StatusPending},
	StatusPending:          {StatusPharmacyAccepted, StatusCancelled},
	StatusPharmacyAccepted: {StatusDriverAccepted, StatusCancelled},
	StatusDriverAccepted:   {StatusDelivered},
}

// Terminal reports whether no further transition can leave s.
func (s Status) Terminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

func CanTransition(from, to Status) bool {
	next, ok := AllowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// TransitionError reports a transition that the order's current status does
// not allow. It matches types.ErrInvalidTransition.
type TransitionError struct {
	OrderID types.ID
	From    Status
	To      Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: order %s cannot move from %s to %s", types.ErrInvalidTransition, e.OrderID, e.From, e.To)
}

func (e *TransitionError) Unwrap() error {
	return types.ErrInvalidTransition
}
