// README: HTTP router registration.
package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"pharmago/internal/http/handlers"
	"pharmago/internal/http/middleware"
	"pharmago/internal/infra"
	"pharmago/internal/modules/tracking"
	"pharmago/internal/types"
)

type RouterDeps struct {
	Verifier      infra.TokenVerifier
	Profiles      handlers.ProfileService
	Pharmacies    handlers.PharmacyService
	Carts         handlers.CartService
	Orders        handlers.OrderService
	Prescriptions handlers.PrescriptionService
	// Tracker, Positions and Addresses are optional.
	Tracker   handlers.RouteTracker
	Positions handlers.PositionStore
	Addresses tracking.AddressResolver
	// Metrics is served on /metrics when set.
	Metrics http.Handler
	Log     logrus.FieldLogger
}

func NewRouter(d RouterDeps) *gin.Engine {
	log := d.Log
	if log == nil {
		log = logrus.StandardLogger()
	}
	r := gin.New()
	r.Use(middleware.Recovery(log), middleware.Logging(log))

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics))
	}

	profileHandler := handlers.NewProfileHandler(d.Profiles)
	pharmacyHandler := handlers.NewPharmacyHandler(d.Pharmacies)
	cartHandler := handlers.NewCartHandler(d.Carts, d.Pharmacies)
	orderHandler := handlers.NewOrderHandler(d.Orders, d.Tracker, d.Positions)
	pharmacistHandler := handlers.NewPharmacistHandler(d.Orders, d.Prescriptions)
	driverHandler := handlers.NewDriverHandler(d.Orders, d.Tracker, d.Addresses)
	prescriptionHandler := handlers.NewPrescriptionHandler(d.Profiles, d.Prescriptions)

	api := r.Group("/api", middleware.Auth(d.Verifier))
	api.POST("/register", profileHandler.Register)

	me := api.Group("", middleware.LoadProfile(d.Profiles))
	me.GET("/me", profileHandler.Me)
	me.GET("/home", profileHandler.Home)
	me.GET("/pharmacies", pharmacyHandler.Nearest)
	me.GET("/pharmacies/:id", pharmacyHandler.Get)
	me.GET("/pharmacies/:id/medicines", pharmacyHandler.Medicines)

	patient := me.Group("/patient", middleware.RequireRole(types.RolePatient))
	patient.GET("/qr", profileHandler.QRCode)
	patient.GET("/cart", cartHandler.Get)
	patient.POST("/cart/items", cartHandler.Add)
	patient.PATCH("/cart/items", cartHandler.UpdateQuantity)
	patient.DELETE("/cart/items/:name", cartHandler.Remove)
	patient.DELETE("/cart", cartHandler.Clear)
	patient.POST("/quote", orderHandler.Quote)
	patient.POST("/orders", orderHandler.Checkout)
	patient.GET("/orders", orderHandler.List)
	patient.GET("/orders/:id", orderHandler.Get)
	patient.GET("/orders/:id/events", orderHandler.Events)
	patient.GET("/orders/:id/track", orderHandler.Track)
	patient.GET("/prescriptions", prescriptionHandler.Mine)
	patient.GET("/prescriptions/:id/document", prescriptionHandler.Document)

	doctor := me.Group("/doctor", middleware.RequireRole(types.RoleDoctor))
	doctor.GET("/patients", prescriptionHandler.Patients)
	doctor.POST("/patients/link", prescriptionHandler.Link)
	doctor.POST("/patients/:patientID/prescriptions/preview", prescriptionHandler.Preview)
	doctor.POST("/patients/:patientID/prescriptions", prescriptionHandler.Issue)
	doctor.GET("/prescriptions/:id/document", prescriptionHandler.Document)

	pharmacist := me.Group("/pharmacist", middleware.RequireRole(types.RolePharmacist))
	pharmacist.GET("/orders", pharmacistHandler.Queue)
	pharmacist.GET("/orders/:id", orderHandler.Get)
	pharmacist.POST("/orders/:id/accept", pharmacistHandler.Accept)
	pharmacist.POST("/orders/:id/decline", pharmacistHandler.Decline)
	pharmacist.GET("/orders/:id/prescription", pharmacistHandler.Prescription)
	pharmacist.GET("/medicines", pharmacyHandler.OwnMedicines)
	pharmacist.POST("/medicines", pharmacyHandler.AddMedicine)

	driver := me.Group("/driver", middleware.RequireRole(types.RoleDriver))
	driver.GET("/orders", driverHandler.Queue)
	driver.GET("/orders/current", driverHandler.Current)
	driver.GET("/orders/:id", orderHandler.Get)
	driver.POST("/orders/:id/accept", driverHandler.Accept)
	driver.POST("/orders/:id/deliver", driverHandler.Deliver)
	if d.Positions != nil {
		locationHandler := handlers.NewLocationHandler(d.Positions)
		driver.PUT("/position", locationHandler.Update)
	}

	return r
}

// MetricsHandler exposes the default Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
