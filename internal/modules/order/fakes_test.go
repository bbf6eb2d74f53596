package order

import (
	"context"
	"sort"
	"sync"
	"time"

	"pharmago/internal/modules/cart"
	"pharmago/internal/modules/pharmacy"
	"pharmago/internal/modules/prescription"
	"pharmago/internal/types"
)

// memoryRepo mirrors Store, including the versioned conditional update.
type memoryRepo struct {
	mu     sync.Mutex
	orders map[types.ID]Order
	events []Event
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{orders: map[types.ID]Order{}}
}

func (r *memoryRepo) Create(ctx context.Context, o *Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = *o
	return nil
}

func (r *memoryRepo) Get(ctx context.Context, id types.ID) (*Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &o, nil
}

func (r *memoryRepo) UpdateStatus(ctx context.Context, id types.ID, from, to Status, version int, driverID *types.ID, proof *Proof) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.Status != from || o.StatusVersion != version {
		return false, nil
	}
	now := time.Now().UTC()
	o.Status = to
	o.StatusVersion++
	if driverID != nil {
		d := *driverID
		o.DriverID = &d
	}
	if proof != nil {
		p := *proof
		o.Proof = &p
	}
	switch to {
	case StatusPharmacyAccepted:
		o.PharmacyAcceptedAt = &now
	case StatusDriverAccepted:
		o.DriverAcceptedAt = &now
	case StatusDelivered:
		o.DeliveredAt = &now
	case StatusCancelled:
		o.CancelledAt = &now
	}
	r.orders[id] = o
	return true, nil
}

func (r *memoryRepo) AppendEvent(ctx context.Context, e *Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	ev := *e
	ev.ID = int64(len(r.events) + 1)
	r.events = append(r.events, ev)
	return nil
}

func (r *memoryRepo) ListEvents(ctx context.Context, orderID types.ID) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Event{}
	for _, e := range r.events {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memoryRepo) filter(keep func(Order) bool) []Order {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []Order{}
	for _, o := range r.orders {
		if keep(o) {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r *memoryRepo) ListPendingForPharmacy(ctx context.Context, pharmacyID types.ID) ([]Order, error) {
	return r.filter(func(o Order) bool { return o.Status == StatusPending && o.PharmacyID == pharmacyID }), nil
}

func (r *memoryRepo) ListAwaitingDriver(ctx context.Context) ([]Order, error) {
	return r.filter(func(o Order) bool { return o.Status == StatusPharmacyAccepted && o.DriverID == nil }), nil
}

func (r *memoryRepo) ListActiveForDriver(ctx context.Context, driverID types.ID) ([]Order, error) {
	return r.filter(func(o Order) bool {
		return o.Status == StatusDriverAccepted && o.DriverID != nil && *o.DriverID == driverID
	}), nil
}

func (r *memoryRepo) ListForPatient(ctx context.Context, patientID types.ID) ([]Order, error) {
	return r.filter(func(o Order) bool { return o.PatientID == patientID }), nil
}

type fakeCarts struct {
	mu      sync.Mutex
	carts   map[types.ID]*cart.Cart
	cleared []types.ID
}

func (f *fakeCarts) Get(ctx context.Context, patientID types.ID) (*cart.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.carts[patientID]; ok {
		return c, nil
	}
	return &cart.Cart{}, nil
}

func (f *fakeCarts) Clear(ctx context.Context, patientID types.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.carts, patientID)
	f.cleared = append(f.cleared, patientID)
	return nil
}

type fakePharmacies map[types.ID]pharmacy.Pharmacy

func (f fakePharmacies) Get(ctx context.Context, id types.ID) (*pharmacy.Pharmacy, error) {
	p, ok := f[id]
	if !ok {
		return nil, pharmacy.ErrPharmacyNotFound
	}
	return &p, nil
}

type fakePrescriptions map[types.ID]types.ID

func (f fakePrescriptions) LatestForPatient(ctx context.Context, patientID types.ID) (*prescription.Prescription, error) {
	id, ok := f[patientID]
	if !ok {
		return nil, prescription.ErrNotFound
	}
	return &prescription.Prescription{ID: id, PatientID: patientID}, nil
}

type recordingNotifier struct {
	mu       sync.Mutex
	statuses []Status
}

func (n *recordingNotifier) OrderChanged(ctx context.Context, o *Order) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.statuses = append(n.statuses, o.Status)
}

func (n *recordingNotifier) seen() []Status {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Status(nil), n.statuses...)
}
