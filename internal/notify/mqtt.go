package notify

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/car-rental/internal/models"
)

// Event describes a booking lifecycle change published to interested
// consumers (billing, fleet ops dashboards).
type Event struct {
	ID        string               `json:"id"`
	Type      string               `json:"type"` // e.g. "booking.created"
	BookingID string               `json:"booking_id"`
	UserID    string               `json:"user_id"`
	CarID     string               `json:"car_id"`
	Status    models.BookingStatus `json:"status"`
	Timestamp time.Time            `json:"timestamp"`
}

// Publisher delivers booking events. Implementations must not block request
// handling; delivery failures are logged, never surfaced.
type Publisher interface {
	PublishBookingEvent(event Event)
}

// MQTTPublisher publishes booking events over MQTT.
type MQTTPublisher struct {
	client      mqtt.Client
	topicPrefix string
}

// NewMQTTPublisher connects to the broker and returns a publisher. Topic is
// <prefix>/<event type>, e.g. rental/bookings/booking.paid.
func NewMQTTPublisher(brokerURL, clientID, topicPrefix string) (*MQTTPublisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectTimeout(5 * time.Second)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect: %w", token.Error())
	}

	log.WithField("broker", brokerURL).Info("Connected to MQTT broker")
	return &MQTTPublisher{client: client, topicPrefix: topicPrefix}, nil
}

// PublishBookingEvent publishes the event asynchronously with QoS 0.
func (p *MQTTPublisher) PublishBookingEvent(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		log.WithError(err).Error("Failed to marshal booking event")
		return
	}

	topic := p.topicPrefix + "/" + ev.Type
	token := p.client.Publish(topic, 0, false, data)
	go func() {
		if token.WaitTimeout(5*time.Second) && token.Error() != nil {
			log.WithError(token.Error()).WithField("topic", topic).Error("Failed to publish booking event")
		}
	}()
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
