// README: Prescription aggregate issued by a doctor to a linked patient.
package prescription

import (
	"time"

	"pharmago/internal/types"
)

// Line is one prescribed medicine. EndDate is the last day of the course.
type Line struct {
	MedicineName string    `json:"medicine_name"`
	Dosage       string    `json:"dosage"`
	EndDate      time.Time `json:"end_date"`
	Instructions string    `json:"instructions,omitempty"`
}

type Prescription struct {
	ID          types.ID  `json:"id"`
	DoctorID    types.ID  `json:"doctor_id"`
	PatientID   types.ID  `json:"patient_id"`
	Lines       []Line    `json:"lines"`
	DocumentURL *string   `json:"document_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type IssueCommand struct {
	DoctorID  types.ID
	PatientID types.ID
	Lines     []Line
}
