// README: Pharmacy discovery and pharmacist inventory handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"pharmago/internal/modules/pharmacy"
)

type PharmacyHandler struct {
	pharmacies PharmacyService
}

func NewPharmacyHandler(svc PharmacyService) *PharmacyHandler {
	return &PharmacyHandler{pharmacies: svc}
}

// Nearest ranks pharmacies around ?lat=&lng=, or those stocking ?q= when given.
func (h *PharmacyHandler) Nearest(c *gin.Context) {
	origin, ok := queryPoint(c)
	if !ok {
		return
	}
	var (
		ranked []pharmacy.Ranked
		err    error
	)
	if q := c.Query("q"); q != "" {
		ranked, err = h.pharmacies.SearchByMedicine(c.Request.Context(), origin, q)
	} else {
		ranked, err = h.pharmacies.Nearest(c.Request.Context(), origin)
	}
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"pharmacies": ranked})
}

func (h *PharmacyHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.pharmacies.Get(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, p)
}

func (h *PharmacyHandler) Medicines(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	meds, err := h.pharmacies.Medicines(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"medicines": meds})
}

// OwnMedicines lists the calling pharmacist's catalogue.
func (h *PharmacyHandler) OwnMedicines(c *gin.Context) {
	meds, err := h.pharmacies.Medicines(c.Request.Context(), actor(c).PharmacyID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"medicines": meds})
}

type addMedicineReq struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

func (h *PharmacyHandler) AddMedicine(c *gin.Context) {
	var req addMedicineReq
	if !bindJSON(c, &req) {
		return
	}
	a := actor(c)
	m, err := h.pharmacies.AddMedicine(c.Request.Context(), pharmacy.AddMedicineCommand{
		ActorPharmacyID: a.PharmacyID,
		PharmacyID:      a.PharmacyID,
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, m)
}
