package handlers_test

import (
	"context"
	"sync"

	"pharmago/internal/infra"
	"pharmago/internal/modules/cart"
	"pharmago/internal/modules/order"
	"pharmago/internal/modules/pharmacy"
	"pharmago/internal/modules/prescription"
	"pharmago/internal/modules/profile"
	"pharmago/internal/modules/tracking"
	"pharmago/internal/types"
)

// stubTokenVerifier treats the bearer token itself as the uid.
type stubTokenVerifier struct{}

func (stubTokenVerifier) VerifyIDToken(_ context.Context, token string) (*infra.FirebaseToken, error) {
	return &infra.FirebaseToken{UID: token, Claims: map[string]interface{}{}}, nil
}

type fakeProfiles struct {
	byID       map[types.ID]*profile.Profile
	registered *profile.RegisterCommand
	linked     string
}

func (f *fakeProfiles) Register(_ context.Context, cmd profile.RegisterCommand) (*profile.Profile, error) {
	f.registered = &cmd
	if !cmd.Role.Valid() {
		return nil, profile.ErrInvalidRole
	}
	p := &profile.Profile{ID: cmd.ID, Role: cmd.Role, FullName: cmd.FullName, Age: cmd.Age, PharmacyID: cmd.PharmacyID}
	f.byID[cmd.ID] = p
	return p, nil
}

func (f *fakeProfiles) Get(_ context.Context, id types.ID) (*profile.Profile, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, profile.ErrNotFound
	}
	return p, nil
}

func (f *fakeProfiles) QRCode(_ context.Context, id types.ID) ([]byte, error) {
	return profile.EncodeQR(id)
}

func (f *fakeProfiles) LinkPatient(_ context.Context, doctor types.Actor, payload string) (*profile.Profile, error) {
	f.linked = payload
	p, ok := f.byID[types.ID(payload)]
	if !ok {
		return nil, profile.ErrPatientNotFound
	}
	return p, nil
}

func (f *fakeProfiles) Patients(_ context.Context, doctorID types.ID) ([]profile.Profile, error) {
	return nil, nil
}

type fakePharmacies struct {
	medicines map[types.ID]*pharmacy.Medicine
	pharmacy  *pharmacy.Pharmacy
}

func (f *fakePharmacies) Nearest(_ context.Context, origin types.Point) ([]pharmacy.Ranked, error) {
	return []pharmacy.Ranked{{Pharmacy: *f.pharmacy, DistanceKm: 1.2}}, nil
}

func (f *fakePharmacies) Get(_ context.Context, id types.ID) (*pharmacy.Pharmacy, error) {
	if id != f.pharmacy.ID {
		return nil, pharmacy.ErrPharmacyNotFound
	}
	return f.pharmacy, nil
}

func (f *fakePharmacies) Medicines(_ context.Context, id types.ID) ([]pharmacy.Medicine, error) {
	return nil, nil
}

func (f *fakePharmacies) Medicine(_ context.Context, id types.ID) (*pharmacy.Medicine, error) {
	m, ok := f.medicines[id]
	if !ok {
		return nil, pharmacy.ErrMedicineNotFound
	}
	return m, nil
}

func (f *fakePharmacies) AddMedicine(_ context.Context, cmd pharmacy.AddMedicineCommand) (*pharmacy.Medicine, error) {
	return &pharmacy.Medicine{ID: "m-new", PharmacyID: cmd.PharmacyID, Name: cmd.Name, Price: cmd.Price}, nil
}

func (f *fakePharmacies) SearchByMedicine(_ context.Context, origin types.Point, q string) ([]pharmacy.Ranked, error) {
	return []pharmacy.Ranked{}, nil
}

type fakeCarts struct {
	mu    sync.Mutex
	carts map[types.ID]*cart.Cart
}

func (f *fakeCarts) get(id types.ID) *cart.Cart {
	c, ok := f.carts[id]
	if !ok {
		c = &cart.Cart{}
		f.carts[id] = c
	}
	return c
}

func (f *fakeCarts) Get(_ context.Context, id types.ID) (*cart.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.get(id), nil
}

func (f *fakeCarts) Add(_ context.Context, id types.ID, it cart.Item) (*cart.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.get(id)
	return c, c.Add(it)
}

func (f *fakeCarts) UpdateQuantity(_ context.Context, id types.ID, name string, delta int) (*cart.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.get(id)
	return c, c.UpdateQuantity(name, delta)
}

func (f *fakeCarts) Remove(_ context.Context, id types.ID, name string) (*cart.Cart, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := f.get(id)
	return c, c.Remove(name)
}

func (f *fakeCarts) Clear(_ context.Context, id types.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.carts, id)
	return nil
}

// fakeOrders records the commands it receives and answers from a fixed order.
type fakeOrders struct {
	order     *order.Order
	err       error
	checkout  *order.CheckoutCommand
	decision  *order.PharmacyDecisionCommand
	delivered *order.DeliverCommand
}

func (f *fakeOrders) result() (*order.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.order, nil
}

func (f *fakeOrders) Quote(_ context.Context, cmd order.CheckoutCommand) (*order.Quote, error) {
	f.checkout = &cmd
	return &order.Quote{PharmacyID: f.order.PharmacyID, Total: f.order.Total}, f.err
}

func (f *fakeOrders) Checkout(_ context.Context, cmd order.CheckoutCommand) (*order.Order, error) {
	f.checkout = &cmd
	return f.result()
}

func (f *fakeOrders) PharmacyAccept(_ context.Context, cmd order.PharmacyDecisionCommand) (*order.Order, error) {
	f.decision = &cmd
	return f.result()
}

func (f *fakeOrders) PharmacyDecline(_ context.Context, cmd order.PharmacyDecisionCommand) (*order.Order, error) {
	f.decision = &cmd
	return f.result()
}

func (f *fakeOrders) DriverAccept(_ context.Context, cmd order.DriverAcceptCommand) (*order.Order, error) {
	return f.result()
}

func (f *fakeOrders) Deliver(_ context.Context, cmd order.DeliverCommand) (*order.Order, error) {
	f.delivered = &cmd
	return f.result()
}

func (f *fakeOrders) GetFor(_ context.Context, id types.ID, actor types.Actor) (*order.Order, error) {
	return f.result()
}

func (f *fakeOrders) Events(_ context.Context, id types.ID, actor types.Actor) ([]order.Event, error) {
	return nil, f.err
}

func (f *fakeOrders) PharmacyQueue(_ context.Context, id types.ID) ([]order.Order, error) {
	return []order.Order{*f.order}, f.err
}

func (f *fakeOrders) DriverQueue(_ context.Context) ([]order.Order, error) {
	return []order.Order{*f.order}, f.err
}

func (f *fakeOrders) CurrentForDriver(_ context.Context, id types.ID) (*order.Order, error) {
	return f.result()
}

func (f *fakeOrders) ListForPatient(_ context.Context, id types.ID) ([]order.Order, error) {
	return []order.Order{*f.order}, f.err
}

type fakePrescriptions struct {
	issued *prescription.IssueCommand
	err    error
}

func (f *fakePrescriptions) Issue(_ context.Context, cmd prescription.IssueCommand) (*prescription.Prescription, error) {
	f.issued = &cmd
	return &prescription.Prescription{ID: "rx-1", DoctorID: cmd.DoctorID, PatientID: cmd.PatientID, Lines: cmd.Lines}, f.err
}

func (f *fakePrescriptions) Preview(_ context.Context, cmd prescription.IssueCommand) ([]byte, error) {
	return []byte("<html>preview</html>"), nil
}

func (f *fakePrescriptions) Document(_ context.Context, id types.ID) ([]byte, error) {
	return []byte("<html>" + string(id) + "</html>"), nil
}

func (f *fakePrescriptions) GetFor(_ context.Context, id types.ID, actor types.Actor) (*prescription.Prescription, error) {
	return &prescription.Prescription{ID: id}, nil
}

func (f *fakePrescriptions) ListForPatient(_ context.Context, id types.ID) ([]prescription.Prescription, error) {
	return nil, nil
}

type fakeTracker struct {
	watched   []types.ID
	forgotten []types.ID
	results   map[types.ID]*tracking.Route
}

func (f *fakeTracker) Route(_ context.Context, from, to types.Point) (*tracking.Route, error) {
	return &tracking.Route{Path: []types.Point{from, to}, DistanceKm: 4.5, Provider: "fake"}, nil
}

func (f *fakeTracker) Watch(id types.ID, from, to types.Point) { f.watched = append(f.watched, id) }
func (f *fakeTracker) Forget(id types.ID)                      { f.forgotten = append(f.forgotten, id) }
func (f *fakeTracker) Result(id types.ID) (*tracking.Route, bool) {
	r, ok := f.results[id]
	return r, ok
}

func (f *fakeTracker) Routes(ctx context.Context, legs []tracking.Leg) ([]*tracking.Route, error) {
	out := make([]*tracking.Route, len(legs))
	for i, l := range legs {
		out[i], _ = f.Route(ctx, l.From, l.To)
	}
	return out, nil
}

type fakePositions struct {
	points map[types.ID]types.Point
}

func (f *fakePositions) UpdateDriverPosition(_ context.Context, id types.ID, p types.Point) error {
	f.points[id] = p
	return nil
}

func (f *fakePositions) DriverPosition(_ context.Context, id types.ID) (types.Point, bool, error) {
	p, ok := f.points[id]
	return p, ok, nil
}

type fakeAddresses struct{}

func (fakeAddresses) Address(_ context.Context, p types.Point) (string, error) {
	return "Ayala Ave, Makati", nil
}
