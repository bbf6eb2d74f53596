// README: Doctor and patient prescription handlers.
package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"pharmago/internal/modules/prescription"
	"pharmago/internal/types"
)

type PrescriptionHandler struct {
	profiles      ProfileService
	prescriptions PrescriptionService
}

func NewPrescriptionHandler(profiles ProfileService, prescriptions PrescriptionService) *PrescriptionHandler {
	return &PrescriptionHandler{profiles: profiles, prescriptions: prescriptions}
}

func (h *PrescriptionHandler) Patients(c *gin.Context) {
	patients, err := h.profiles.Patients(c.Request.Context(), actor(c).ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"patients": patients})
}

type linkReq struct {
	Payload string `json:"payload"`
}

// Link attaches the patient named by a scanned QR payload to the doctor.
func (h *PrescriptionHandler) Link(c *gin.Context) {
	var req linkReq
	if !bindJSON(c, &req) {
		return
	}
	p, err := h.profiles.LinkPatient(c.Request.Context(), actor(c), req.Payload)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, p)
}

type lineReq struct {
	MedicineName string `json:"medicine_name"`
	Dosage       string `json:"dosage"`
	// EndDate is YYYY-MM-DD.
	EndDate      string `json:"end_date"`
	Instructions string `json:"instructions"`
}

type issueReq struct {
	Lines []lineReq `json:"lines"`
}

func (h *PrescriptionHandler) command(c *gin.Context) (prescription.IssueCommand, bool) {
	patientID, ok := pathID(c, "patientID")
	if !ok {
		return prescription.IssueCommand{}, false
	}
	var req issueReq
	if !bindJSON(c, &req) {
		return prescription.IssueCommand{}, false
	}
	lines := make([]prescription.Line, 0, len(req.Lines))
	for _, l := range req.Lines {
		var end time.Time
		if l.EndDate != "" {
			t, err := time.Parse(time.DateOnly, l.EndDate)
			if err != nil {
				writeError(c, http.StatusBadRequest, "end_date must be YYYY-MM-DD")
				return prescription.IssueCommand{}, false
			}
			end = t
		}
		lines = append(lines, prescription.Line{
			MedicineName: l.MedicineName,
			Dosage:       l.Dosage,
			EndDate:      end,
			Instructions: l.Instructions,
		})
	}
	return prescription.IssueCommand{DoctorID: actor(c).ID, PatientID: patientID, Lines: lines}, true
}

func (h *PrescriptionHandler) Preview(c *gin.Context) {
	cmd, ok := h.command(c)
	if !ok {
		return
	}
	doc, err := h.prescriptions.Preview(c.Request.Context(), cmd)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", doc)
}

// Issue stores the prescription. When only the document upload fails the
// prescription still exists and is returned with 202.
func (h *PrescriptionHandler) Issue(c *gin.Context) {
	cmd, ok := h.command(c)
	if !ok {
		return
	}
	p, err := h.prescriptions.Issue(c.Request.Context(), cmd)
	switch {
	case err != nil && p != nil && errors.Is(err, types.ErrRemote):
		_ = c.Error(err)
		writeJSON(c, http.StatusAccepted, gin.H{"prescription": p, "error": "prescription saved but document upload failed"})
	case err != nil:
		writeServiceError(c, err)
	default:
		writeJSON(c, http.StatusCreated, gin.H{"prescription": p})
	}
}

// Mine lists the calling patient's prescriptions.
func (h *PrescriptionHandler) Mine(c *gin.Context) {
	list, err := h.prescriptions.ListForPatient(c.Request.Context(), actor(c).ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"prescriptions": list})
}

// Document renders a prescription for its patient or issuing doctor.
func (h *PrescriptionHandler) Document(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.prescriptions.GetFor(ctx, id, actor(c)); err != nil {
		writeServiceError(c, err)
		return
	}
	doc, err := h.prescriptions.Document(ctx, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", doc)
}
