// README: Pharmacy and medicine catalogue types.
package pharmacy

import (
	"time"

	"github.com/shopspring/decimal"

	"pharmago/internal/types"
)

type Pharmacy struct {
	ID      types.ID     `json:"id"`
	Name    string       `json:"name"`
	Address string       `json:"address,omitempty"`
	LogoURL string       `json:"logo_url,omitempty"`
	// Location is nil when the pharmacy has no recorded coordinate.
	Location *types.Point `json:"location,omitempty"`
}

type Medicine struct {
	ID          types.ID        `json:"id"`
	PharmacyID  types.ID        `json:"pharmacy_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Ranked is a pharmacy with its distance from the ranking origin.
type Ranked struct {
	Pharmacy
	DistanceKm float64 `json:"distance_km"`
}

type AddMedicineCommand struct {
	// ActorPharmacyID is the pharmacy the calling pharmacist works at.
	ActorPharmacyID types.ID
	PharmacyID      types.ID
	Name            string
	Description     string
	Price           decimal.Decimal
}
