// README: FCM topic notifications for order status changes.
package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/sirupsen/logrus"

	"pharmago/internal/modules/order"
	"pharmago/internal/types"
)

const (
	sendTimeout  = 5 * time.Second
	driversTopic = "drivers"
)

// Sender is the part of *messaging.Client the notifier uses.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCM publishes order changes to per-role topics. Sends run in the
// background; failures are logged and never reach the caller.
type FCM struct {
	client Sender
	log    logrus.FieldLogger
	wg     sync.WaitGroup
}

func NewFCM(client Sender, log logrus.FieldLogger) *FCM {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &FCM{client: client, log: log.WithField("module", "notify")}
}

func PharmacyTopic(id types.ID) string { return "pharmacy-" + string(id) }
func PatientTopic(id types.ID) string  { return "patient-" + string(id) }

func (n *FCM) OrderChanged(ctx context.Context, o *order.Order) {
	msgs := Messages(o)
	if len(msgs) == 0 {
		return
	}
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sendTimeout)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		defer cancel()
		for _, m := range msgs {
			id, err := n.client.Send(sendCtx, m)
			entry := n.log.WithFields(logrus.Fields{"order_id": o.ID, "topic": m.Topic, "status": o.Status})
			if err != nil {
				entry.WithError(err).Warn("fcm send failed")
				continue
			}
			entry.WithField("message_id", id).Debug("fcm sent")
		}
	}()
}

// Wait blocks until every queued send has finished.
func (n *FCM) Wait() {
	n.wg.Wait()
}

// Messages builds the notifications for the order's current status.
func Messages(o *order.Order) []*messaging.Message {
	data := map[string]string{
		"type":     "order_status",
		"order_id": string(o.ID),
		"status":   string(o.Status),
		"urgency":  string(o.Urgency),
	}
	patient := func(title, body string) *messaging.Message {
		return &messaging.Message{
			Topic:        PatientTopic(o.PatientID),
			Data:         data,
			Notification: &messaging.Notification{Title: title, Body: body},
		}
	}

	switch o.Status {
	case order.StatusPending:
		return []*messaging.Message{{
			Topic: PharmacyTopic(o.PharmacyID),
			Data:  data,
			Notification: &messaging.Notification{
				Title: "New order",
				Body:  fmt.Sprintf("%d item(s), total %s %s", len(o.Items), o.Total.StringFixed(2), o.DeliveryFee.Currency),
			},
			Android: &messaging.AndroidConfig{Priority: "high"},
		}}
	case order.StatusPharmacyAccepted:
		return []*messaging.Message{
			{
				Topic: driversTopic,
				Data:  data,
				Notification: &messaging.Notification{
					Title: "Delivery available",
					Body:  fmt.Sprintf("Delivery fee %d %s", o.DeliveryFee.Amount, o.DeliveryFee.Currency),
				},
				Android: &messaging.AndroidConfig{Priority: "high"},
			},
			patient("Order confirmed", "The pharmacy is preparing your order."),
		}
	case order.StatusDriverAccepted:
		return []*messaging.Message{patient("Driver on the way", "A driver picked up your delivery.")}
	case order.StatusDelivered:
		return []*messaging.Message{patient("Delivered", "Your order has been delivered.")}
	case order.StatusCancelled:
		return []*messaging.Message{patient("Order cancelled", "The pharmacy declined your order.")}
	}
	return nil
}
