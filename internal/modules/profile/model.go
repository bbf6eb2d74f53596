// README: User profile, role landing surfaces and doctor-patient links.
package profile

import (
	"time"

	"pharmago/internal/types"
)

type Profile struct {
	ID       types.ID   `json:"id"`
	Role     types.Role `json:"role"`
	FullName string     `json:"full_name"`
	// Age is zero when unknown.
	Age int `json:"age,omitempty"`
	// PharmacyID is set for pharmacists only.
	PharmacyID types.ID  `json:"pharmacy_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Actor converts the profile into the caller identity services authorise against.
func (p *Profile) Actor() types.Actor {
	return types.Actor{ID: p.ID, Role: p.Role, PharmacyID: p.PharmacyID}
}

type RegisterCommand struct {
	ID         types.ID
	Role       types.Role
	FullName   string
	Age        int
	PharmacyID types.ID
}

// homes is the API surface each role lands on after signing in.
var homes = map[types.Role]string{
	types.RolePatient:    "/api/patient",
	types.RoleDoctor:     "/api/doctor",
	types.RolePharmacist: "/api/pharmacist",
	types.RoleDriver:     "/api/driver",
}

// HomeFor returns the landing surface for role, or false for an unknown role.
func HomeFor(role types.Role) (string, bool) {
	h, ok := homes[role]
	return h, ok
}
