// README: Order service enforces the status flow and owns checkout pricing.
package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"pharmago/internal/modules/cart"
	"pharmago/internal/modules/geo"
	"pharmago/internal/modules/pharmacy"
	"pharmago/internal/modules/pricing"
	"pharmago/internal/modules/prescription"
	"pharmago/internal/types"
)

var (
	ErrNotFound                   = fmt.Errorf("%w: order not found", types.ErrNotFound)
	ErrEmptyCart                  = types.Validation("cart is empty")
	ErrDeliveryLocationUnresolved = types.Validation("delivery location is missing or invalid")
	ErrPharmacyLocationUnresolved = fmt.Errorf("%w: pharmacy location could not be resolved", types.ErrNotFound)
	ErrInvalidUrgency             = types.Validation("urgency must be critical, urgent or standard")
	ErrNotOrderPharmacy           = types.Forbidden("order belongs to another pharmacy")
	ErrNotOrderDriver             = types.Forbidden("order is assigned to another driver")
	ErrNotParticipant             = types.Forbidden("caller is not part of this order")
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id types.ID) (*Order, error)
	UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, driverID *types.ID, proof *Proof) (bool, error)
	AppendEvent(ctx context.Context, e *Event) error
	ListEvents(ctx context.Context, orderID types.ID) ([]Event, error)
	ListPendingForPharmacy(ctx context.Context, pharmacyID types.ID) ([]Order, error)
	ListAwaitingDriver(ctx context.Context) ([]Order, error)
	ListActiveForDriver(ctx context.Context, driverID types.ID) ([]Order, error)
	ListForPatient(ctx context.Context, patientID types.ID) ([]Order, error)
}

type CartSource interface {
	Get(ctx context.Context, patientID types.ID) (*cart.Cart, error)
	Clear(ctx context.Context, patientID types.ID) error
}

type PharmacyLookup interface {
	Get(ctx context.Context, id types.ID) (*pharmacy.Pharmacy, error)
}

type PrescriptionLookup interface {
	LatestForPatient(ctx context.Context, patientID types.ID) (*prescription.Prescription, error)
}

type Pricer interface {
	ComputeFee(urgency types.Urgency, distanceKm float64, patientAge int) (pricing.Quote, error)
	Totals(subtotal decimal.Decimal, q pricing.Quote) pricing.Totals
}

// Notifier is told about every order that changed status. Delivery is best
// effort; it must not block the caller for long.
type Notifier interface {
	OrderChanged(ctx context.Context, o *Order)
}

type Deps struct {
	Repo          Repository
	Carts         CartSource
	Pharmacies    PharmacyLookup
	Prescriptions PrescriptionLookup
	Pricing       Pricer
	Notifier      Notifier
	// Transitions counts status changes by from/to label; optional.
	Transitions *prometheus.CounterVec
	Log         logrus.FieldLogger
}

type Service struct {
	repo          Repository
	carts         CartSource
	pharmacies    PharmacyLookup
	prescriptions PrescriptionLookup
	pricing       Pricer
	notifier      Notifier
	transitions   *prometheus.CounterVec
	log           logrus.FieldLogger
	now           func() time.Time
}

func NewService(d Deps) *Service {
	log := d.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		repo:          d.Repo,
		carts:         d.Carts,
		pharmacies:    d.Pharmacies,
		prescriptions: d.Prescriptions,
		pricing:       d.Pricing,
		notifier:      d.Notifier,
		transitions:   d.Transitions,
		log:           log.WithField("module", "order"),
		now:           time.Now,
	}
}

type CheckoutCommand struct {
	PatientID types.ID
	// PatientAge is zero when the profile has no age.
	PatientAge int
	Delivery   *types.Point
	Urgency    types.Urgency
}

type PharmacyDecisionCommand struct {
	OrderID    types.ID
	Pharmacist types.Actor
}

type DriverAcceptCommand struct {
	OrderID  types.ID
	DriverID types.ID
}

type DeliverCommand struct {
	OrderID  types.ID
	DriverID types.ID
	Proof    *Proof
}

// Quote is the checkout price preview.
type Quote struct {
	PharmacyID   types.ID        `json:"pharmacy_id"`
	PharmacyName string          `json:"pharmacy_name"`
	DistanceKm   float64         `json:"distance_km"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	DeliveryFee  types.Money     `json:"delivery_fee"`
	Discount     types.Money     `json:"discount"`
	Total        decimal.Decimal `json:"total"`
}

type checkoutPlan struct {
	cart     *cart.Cart
	pickup   types.Point
	quote    Quote
	totals   pricing.Totals
	delivery types.Point
}

func (s *Service) plan(ctx context.Context, cmd CheckoutCommand) (*checkoutPlan, error) {
	if cmd.Urgency != "" && !cmd.Urgency.Valid() {
		return nil, ErrInvalidUrgency
	}
	c, err := s.carts.Get(ctx, cmd.PatientID)
	if err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		return nil, ErrEmptyCart
	}
	if cmd.Delivery == nil || !geo.Valid(*cmd.Delivery) {
		return nil, ErrDeliveryLocationUnresolved
	}
	ph, err := s.pharmacies.Get(ctx, c.PharmacyID())
	if errors.Is(err, types.ErrNotFound) {
		return nil, ErrPharmacyLocationUnresolved
	}
	if err != nil {
		return nil, err
	}
	if ph.Location == nil || !geo.Valid(*ph.Location) {
		return nil, ErrPharmacyLocationUnresolved
	}

	dist := geo.DistanceKm(*ph.Location, *cmd.Delivery)
	q, err := s.pricing.ComputeFee(cmd.Urgency, dist, cmd.PatientAge)
	if err != nil {
		return nil, err
	}
	totals := s.pricing.Totals(c.Subtotal(), q)
	return &checkoutPlan{
		cart:     c,
		pickup:   *ph.Location,
		delivery: *cmd.Delivery,
		totals:   totals,
		quote: Quote{
			PharmacyID:   ph.ID,
			PharmacyName: ph.Name,
			DistanceKm:   dist,
			Subtotal:     totals.Subtotal,
			DeliveryFee:  totals.DeliveryFee,
			Discount:     totals.Discount,
			Total:        totals.Total,
		},
	}, nil
}

// Quote prices the patient's current cart without placing an order.
func (s *Service) Quote(ctx context.Context, cmd CheckoutCommand) (*Quote, error) {
	p, err := s.plan(ctx, cmd)
	if err != nil {
		return nil, err
	}
	return &p.quote, nil
}

// Checkout turns the patient's cart into a pending order with frozen totals.
func (s *Service) Checkout(ctx context.Context, cmd CheckoutCommand) (*Order, error) {
	p, err := s.plan(ctx, cmd)
	if err != nil {
		return nil, err
	}

	var rxID *types.ID
	if s.prescriptions != nil {
		rx, err := s.prescriptions.LatestForPatient(ctx, cmd.PatientID)
		switch {
		case errors.Is(err, types.ErrNotFound):
		case err != nil:
			return nil, err
		default:
			id := rx.ID
			rxID = &id
		}
	}

	items := make([]Item, 0, p.cart.Len())
	for _, it := range p.cart.Items() {
		items = append(items, Item{Name: it.MedicineName, Price: it.Price, Quantity: it.Quantity})
	}

	now := s.now().UTC()
	o := &Order{
		ID:             types.ID(uuid.NewString()),
		PatientID:      cmd.PatientID,
		PharmacyID:     p.cart.PharmacyID(),
		Items:          items,
		Delivery:       p.delivery,
		Pickup:         p.pickup,
		Subtotal:       p.totals.Subtotal,
		DeliveryFee:    p.totals.DeliveryFee,
		Discount:       p.totals.Discount,
		Total:          p.totals.Total,
		Urgency:        cmd.Urgency,
		Status:         StatusPending,
		PrescriptionID: rxID,
		CreatedAt:      now,
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	s.recordTransition(ctx, o.ID, StatusNone, StatusPending, types.RolePatient, &o.PatientID, now)

	if err := s.carts.Clear(ctx, cmd.PatientID); err != nil {
		s.log.WithError(err).WithField("order_id", o.ID).Warn("clearing cart after checkout")
	}
	s.notify(ctx, o)
	return o, nil
}

func (s *Service) PharmacyAccept(ctx context.Context, cmd PharmacyDecisionCommand) (*Order, error) {
	return s.transition(ctx, cmd.OrderID, StatusPharmacyAccepted, cmd.Pharmacist, nil, nil, ownedByPharmacy(cmd.Pharmacist))
}

// PharmacyDecline cancels a pending or accepted order on behalf of its pharmacy.
func (s *Service) PharmacyDecline(ctx context.Context, cmd PharmacyDecisionCommand) (*Order, error) {
	return s.transition(ctx, cmd.OrderID, StatusCancelled, cmd.Pharmacist, nil, nil, ownedByPharmacy(cmd.Pharmacist))
}

func (s *Service) DriverAccept(ctx context.Context, cmd DriverAcceptCommand) (*Order, error) {
	actor := types.Actor{ID: cmd.DriverID, Role: types.RoleDriver}
	return s.transition(ctx, cmd.OrderID, StatusDriverAccepted, actor, &cmd.DriverID, nil, func(o *Order) error {
		if o.DriverID != nil && *o.DriverID != cmd.DriverID {
			return ErrNotOrderDriver
		}
		return nil
	})
}

func (s *Service) Deliver(ctx context.Context, cmd DeliverCommand) (*Order, error) {
	actor := types.Actor{ID: cmd.DriverID, Role: types.RoleDriver}
	proof := cmd.Proof
	if proof != nil && proof.DeliveredAt.IsZero() {
		p := *proof
		p.DeliveredAt = s.now().UTC()
		proof = &p
	}
	return s.transition(ctx, cmd.OrderID, StatusDelivered, actor, nil, proof, func(o *Order) error {
		if o.DriverID == nil || *o.DriverID != cmd.DriverID {
			return ErrNotOrderDriver
		}
		return nil
	})
}

func ownedByPharmacy(actor types.Actor) func(*Order) error {
	return func(o *Order) error {
		if actor.Role != types.RolePharmacist || actor.PharmacyID == "" || actor.PharmacyID != o.PharmacyID {
			return ErrNotOrderPharmacy
		}
		return nil
	}
}

// transition applies one status change with the conditional update. A writer
// that loses the race re-reads the order and gets a TransitionError from the
// status it actually found.
func (s *Service) transition(ctx context.Context, id types.ID, to Status, actor types.Actor, driverID *types.ID, proof *Proof, authorize func(*Order) error) (*Order, error) {
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(o.Status, to) {
		return nil, &TransitionError{OrderID: o.ID, From: o.Status, To: to}
	}
	if err := authorize(o); err != nil {
		return nil, err
	}

	ok, err := s.repo.UpdateStatus(ctx, o.ID, o.Status, to, o.StatusVersion, driverID, proof)
	if err != nil {
		return nil, err
	}
	if !ok {
		current, err := s.repo.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, &TransitionError{OrderID: o.ID, From: current.Status, To: to}
	}

	s.recordTransition(ctx, o.ID, o.Status, to, actor.Role, &actor.ID, s.now().UTC())

	updated, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, updated)
	return updated, nil
}

func (s *Service) recordTransition(ctx context.Context, id types.ID, from, to Status, role types.Role, actorID *types.ID, at time.Time) {
	if err := s.repo.AppendEvent(ctx, &Event{
		OrderID:    id,
		FromStatus: from,
		ToStatus:   to,
		ActorType:  role,
		ActorID:    actorID,
		CreatedAt:  at,
	}); err != nil {
		s.log.WithError(err).WithField("order_id", id).Warn("appending order event")
	}
	if s.transitions != nil {
		s.transitions.WithLabelValues(string(from), string(to)).Inc()
	}
	s.log.WithFields(logrus.Fields{
		"order_id": id,
		"from":     from,
		"to":       to,
		"actor":    role,
	}).Info("order transition")
}

func (s *Service) notify(ctx context.Context, o *Order) {
	if s.notifier != nil {
		s.notifier.OrderChanged(ctx, o)
	}
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Order, error) {
	return s.repo.Get(ctx, id)
}

// GetFor returns the order if actor takes part in it: the ordering patient,
// a pharmacist of its pharmacy, or a driver who holds it or may still take it.
func (s *Service) GetFor(ctx context.Context, id types.ID, actor types.Actor) (*Order, error) {
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canView(o, actor) {
		return nil, ErrNotParticipant
	}
	return o, nil
}

func canView(o *Order, actor types.Actor) bool {
	switch actor.Role {
	case types.RolePatient:
		return o.PatientID == actor.ID
	case types.RolePharmacist:
		return actor.PharmacyID != "" && o.PharmacyID == actor.PharmacyID
	case types.RoleDriver:
		if o.DriverID != nil {
			return *o.DriverID == actor.ID
		}
		return o.Status == StatusPharmacyAccepted
	}
	return false
}

func (s *Service) Events(ctx context.Context, id types.ID, actor types.Actor) ([]Event, error) {
	if _, err := s.GetFor(ctx, id, actor); err != nil {
		return nil, err
	}
	return s.repo.ListEvents(ctx, id)
}

// PharmacyQueue lists the pharmacy's pending orders, most urgent first.
func (s *Service) PharmacyQueue(ctx context.Context, pharmacyID types.ID) ([]Order, error) {
	orders, err := s.repo.ListPendingForPharmacy(ctx, pharmacyID)
	if err != nil {
		return nil, err
	}
	return SortByUrgency(orders), nil
}

// DriverQueue lists pharmacy-accepted orders no driver has taken, most urgent first.
func (s *Service) DriverQueue(ctx context.Context) ([]Order, error) {
	orders, err := s.repo.ListAwaitingDriver(ctx)
	if err != nil {
		return nil, err
	}
	return SortByUrgency(orders), nil
}

// CurrentForDriver returns the delivery the driver is carrying, or ErrNotFound.
func (s *Service) CurrentForDriver(ctx context.Context, driverID types.ID) (*Order, error) {
	orders, err := s.repo.ListActiveForDriver(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, ErrNotFound
	}
	return &orders[0], nil
}

func (s *Service) ListForPatient(ctx context.Context, patientID types.ID) ([]Order, error) {
	return s.repo.ListForPatient(ctx, patientID)
}
