// README: Patient-selected delivery urgency tiers.
package types

type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyUrgent   Urgency = "urgent"
	UrgencyStandard Urgency = "standard"
)

// unrankedUrgency places unknown or missing tiers after every known one.
const unrankedUrgency = 3

// Rank orders tiers for queue presentation: critical=0, urgent=1, standard=2,
// anything else sorts last.
func (u Urgency) Rank() int {
	switch u {
	case UrgencyCritical:
		return 0
	case UrgencyUrgent:
		return 1
	case UrgencyStandard:
		return 2
	default:
		return unrankedUrgency
	}
}

func (u Urgency) Valid() bool {
	return u.Rank() != unrankedUrgency
}
