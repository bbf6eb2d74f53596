// README: Patient order handlers for quote, checkout, history and tracking.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pharmago/internal/http/middleware"
	"pharmago/internal/modules/order"
	"pharmago/internal/modules/tracking"
	"pharmago/internal/types"
)

type OrderHandler struct {
	orders    OrderService
	tracker   RouteTracker
	positions PositionStore
}

func NewOrderHandler(orders OrderService, tracker RouteTracker, positions PositionStore) *OrderHandler {
	return &OrderHandler{orders: orders, tracker: tracker, positions: positions}
}

type checkoutReq struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Urgency   string   `json:"urgency"`
}

func (h *OrderHandler) command(c *gin.Context, req checkoutReq) order.CheckoutCommand {
	cmd := order.CheckoutCommand{
		PatientID: actor(c).ID,
		Urgency:   types.Urgency(req.Urgency),
	}
	if p := middleware.CallerProfile(c); p != nil {
		cmd.PatientAge = p.Age
	}
	if req.Latitude != nil && req.Longitude != nil {
		cmd.Delivery = &types.Point{Lat: *req.Latitude, Lng: *req.Longitude}
	}
	return cmd
}

func (h *OrderHandler) Quote(c *gin.Context) {
	var req checkoutReq
	if !bindJSON(c, &req) {
		return
	}
	q, err := h.orders.Quote(c.Request.Context(), h.command(c, req))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, q)
}

func (h *OrderHandler) Checkout(c *gin.Context) {
	var req checkoutReq
	if !bindJSON(c, &req) {
		return
	}
	o, err := h.orders.Checkout(c.Request.Context(), h.command(c, req))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusCreated, o)
}

func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.orders.ListForPatient(c.Request.Context(), actor(c).ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"orders": orders})
}

func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	o, err := h.orders.GetFor(c.Request.Context(), id, actor(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, o)
}

func (h *OrderHandler) Events(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	events, err := h.orders.Events(c.Request.Context(), id, actor(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, gin.H{"events": events})
}

type trackView struct {
	Order          *order.Order    `json:"order"`
	Route          *tracking.Route `json:"route"`
	DriverPosition *types.Point    `json:"driver_position,omitempty"`
}

// Track returns the order with its pharmacy-to-door route and the driver's
// last position. A missing route or position never fails the request.
func (h *OrderHandler) Track(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	o, err := h.orders.GetFor(ctx, id, actor(c))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	view := trackView{Order: o, Route: routeFor(c, h.tracker, o)}
	if o.DriverID != nil && h.positions != nil {
		if p, found, err := h.positions.DriverPosition(ctx, *o.DriverID); err == nil && found {
			view.DriverPosition = &p
		}
	}
	writeJSON(c, http.StatusOK, view)
}

func routeFor(c *gin.Context, tracker RouteTracker, o *order.Order) *tracking.Route {
	if tracker == nil {
		return nil
	}
	if r, ok := tracker.Result(o.ID); ok {
		if o.Status.Terminal() {
			tracker.Forget(o.ID)
		}
		return r
	}
	r, err := tracker.Route(c.Request.Context(), o.Pickup, o.Delivery)
	if err != nil {
		_ = c.Error(err)
		return nil
	}
	return r
}
