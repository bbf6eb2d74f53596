// README: Service contracts the handlers depend on.
package handlers

import (
	"context"

	"pharmago/internal/modules/cart"
	"pharmago/internal/modules/order"
	"pharmago/internal/modules/pharmacy"
	"pharmago/internal/modules/prescription"
	"pharmago/internal/modules/profile"
	"pharmago/internal/modules/tracking"
	"pharmago/internal/types"
)

type ProfileService interface {
	Register(ctx context.Context, cmd profile.RegisterCommand) (*profile.Profile, error)
	Get(ctx context.Context, id types.ID) (*profile.Profile, error)
	QRCode(ctx context.Context, patientID types.ID) ([]byte, error)
	LinkPatient(ctx context.Context, doctor types.Actor, payload string) (*profile.Profile, error)
	Patients(ctx context.Context, doctorID types.ID) ([]profile.Profile, error)
}

type PharmacyService interface {
	Nearest(ctx context.Context, origin types.Point) ([]pharmacy.Ranked, error)
	Get(ctx context.Context, id types.ID) (*pharmacy.Pharmacy, error)
	Medicines(ctx context.Context, pharmacyID types.ID) ([]pharmacy.Medicine, error)
	Medicine(ctx context.Context, id types.ID) (*pharmacy.Medicine, error)
	AddMedicine(ctx context.Context, cmd pharmacy.AddMedicineCommand) (*pharmacy.Medicine, error)
	SearchByMedicine(ctx context.Context, origin types.Point, query string) ([]pharmacy.Ranked, error)
}

type CartService interface {
	Get(ctx context.Context, patientID types.ID) (*cart.Cart, error)
	Add(ctx context.Context, patientID types.ID, it cart.Item) (*cart.Cart, error)
	UpdateQuantity(ctx context.Context, patientID types.ID, name string, delta int) (*cart.Cart, error)
	Remove(ctx context.Context, patientID types.ID, name string) (*cart.Cart, error)
	Clear(ctx context.Context, patientID types.ID) error
}

type OrderService interface {
	Quote(ctx context.Context, cmd order.CheckoutCommand) (*order.Quote, error)
	Checkout(ctx context.Context, cmd order.CheckoutCommand) (*order.Order, error)
	PharmacyAccept(ctx context.Context, cmd order.PharmacyDecisionCommand) (*order.Order, error)
	PharmacyDecline(ctx context.Context, cmd order.PharmacyDecisionCommand) (*order.Order, error)
	DriverAccept(ctx context.Context, cmd order.DriverAcceptCommand) (*order.Order, error)
	Deliver(ctx context.Context, cmd order.DeliverCommand) (*order.Order, error)
	GetFor(ctx context.Context, id types.ID, actor types.Actor) (*order.Order, error)
	Events(ctx context.Context, id types.ID, actor types.Actor) ([]order.Event, error)
	PharmacyQueue(ctx context.Context, pharmacyID types.ID) ([]order.Order, error)
	DriverQueue(ctx context.Context) ([]order.Order, error)
	CurrentForDriver(ctx context.Context, driverID types.ID) (*order.Order, error)
	ListForPatient(ctx context.Context, patientID types.ID) ([]order.Order, error)
}

type PrescriptionService interface {
	Issue(ctx context.Context, cmd prescription.IssueCommand) (*prescription.Prescription, error)
	Preview(ctx context.Context, cmd prescription.IssueCommand) ([]byte, error)
	Document(ctx context.Context, id types.ID) ([]byte, error)
	GetFor(ctx context.Context, id types.ID, actor types.Actor) (*prescription.Prescription, error)
	ListForPatient(ctx context.Context, patientID types.ID) ([]prescription.Prescription, error)
}

// RouteTracker is satisfied by *tracking.Tracker.
type RouteTracker interface {
	Route(ctx context.Context, from, to types.Point) (*tracking.Route, error)
	Watch(orderID types.ID, from, to types.Point)
	Forget(orderID types.ID)
	Result(orderID types.ID) (*tracking.Route, bool)
	Routes(ctx context.Context, legs []tracking.Leg) ([]*tracking.Route, error)
}

type PositionStore interface {
	UpdateDriverPosition(ctx context.Context, driverID types.ID, p types.Point) error
	DriverPosition(ctx context.Context, driverID types.ID) (types.Point, bool, error)
}
