// README: Driver handlers for the delivery queue, accept, current delivery and hand-over.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"pharmago/internal/modules/order"
	"pharmago/internal/modules/tracking"
)

const addressLookups = 4

type DriverHandler struct {
	orders    OrderService
	tracker   RouteTracker
	addresses tracking.AddressResolver
}

// NewDriverHandler builds the handler; tracker and addresses may be nil.
func NewDriverHandler(orders OrderService, tracker RouteTracker, addresses tracking.AddressResolver) *DriverHandler {
	return &DriverHandler{orders: orders, tracker: tracker, addresses: addresses}
}

type queueEntry struct {
	Order           order.Order `json:"order"`
	PickupAddress   string      `json:"pickup_address,omitempty"`
	DeliveryAddress string      `json:"delivery_address,omitempty"`
	RouteKm         *float64    `json:"route_km,omitempty"`
	RouteMinutes    *float64    `json:"route_minutes,omitempty"`
}

// Queue lists orders waiting for a driver with addresses and route estimates.
// Lookups that fail leave their fields empty.
func (h *DriverHandler) Queue(c *gin.Context) {
	ctx := c.Request.Context()
	orders, err := h.orders.DriverQueue(ctx)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	entries := make([]queueEntry, len(orders))
	for i, o := range orders {
		entries[i].Order = o
	}

	if h.tracker != nil {
		legs := make([]tracking.Leg, len(orders))
		for i, o := range orders {
			legs[i] = tracking.Leg{From: o.Pickup, To: o.Delivery}
		}
		routes, err := h.tracker.Routes(ctx, legs)
		if err == nil {
			for i, r := range routes {
				if r == nil {
					continue
				}
				km, mins := r.DistanceKm, r.Duration.Minutes()
				entries[i].RouteKm, entries[i].RouteMinutes = &km, &mins
			}
		}
	}

	if h.addresses != nil {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(addressLookups)
		for i := range entries {
			e := &entries[i]
			g.Go(func() error {
				e.PickupAddress, _ = h.addresses.Address(gctx, e.Order.Pickup)
				return nil
			})
			g.Go(func() error {
				e.DeliveryAddress, _ = h.addresses.Address(gctx, e.Order.Delivery)
				return nil
			})
		}
		_ = g.Wait()
	}

	writeJSON(c, http.StatusOK, gin.H{"orders": entries})
}

func (h *DriverHandler) Accept(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	o, err := h.orders.DriverAccept(c.Request.Context(), order.DriverAcceptCommand{OrderID: id, DriverID: actor(c).ID})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if h.tracker != nil {
		h.tracker.Watch(o.ID, o.Pickup, o.Delivery)
	}
	writeJSON(c, http.StatusOK, o)
}

// Current returns the delivery the driver is carrying with its route.
func (h *DriverHandler) Current(c *gin.Context) {
	o, err := h.orders.CurrentForDriver(c.Request.Context(), actor(c).ID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	writeJSON(c, http.StatusOK, trackView{Order: o, Route: routeFor(c, h.tracker, o)})
}

type deliverReq struct {
	RecipientName      string     `json:"recipient_name"`
	ConfirmationNumber string     `json:"confirmation_number"`
	ReceiptURL         string     `json:"receipt_url"`
	DeliveredAt        *time.Time `json:"delivered_at"`
}

func (h *DriverHandler) Deliver(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req deliverReq
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}
	proof := &order.Proof{
		RecipientName:      req.RecipientName,
		ConfirmationNumber: req.ConfirmationNumber,
		ReceiptURL:         req.ReceiptURL,
	}
	if req.DeliveredAt != nil {
		proof.DeliveredAt = req.DeliveredAt.UTC()
	}
	o, err := h.orders.Deliver(c.Request.Context(), order.DeliverCommand{OrderID: id, DriverID: actor(c).ID, Proof: proof})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if h.tracker != nil {
		h.tracker.Forget(o.ID)
	}
	writeJSON(c, http.StatusOK, o)
}
