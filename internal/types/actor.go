// README: Authenticated caller identity passed from HTTP handlers into services.
package types

type Role string

const (
	RolePatient    Role = "patient"
	RoleDoctor     Role = "doctor"
	RolePharmacist Role = "pharmacist"
	RoleDriver     Role = "driver"
)

func (r Role) Valid() bool {
	switch r {
	case RolePatient, RoleDoctor, RolePharmacist, RoleDriver:
		return true
	}
	return false
}

// Actor is the caller of a service operation. PharmacyID is only set for
// pharmacists.
type Actor struct {
	ID         ID
	Role       Role
	PharmacyID ID
}
