package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/minyan/internal/prayers"
)

// BoardTopic carries the current prayer schedule to every display board.
const BoardTopic = "shul/board/prayer_times"

// MQTT message handler for anything the server itself subscribes to
var messagePubHandler mqtt.MessageHandler = func(client mqtt.Client, msg mqtt.Message) {
	log.Debug().Str("topic", msg.Topic()).Bytes("payload", msg.Payload()).Msg("received mqtt message")
}

// MQTT connection handler
var connectHandler mqtt.OnConnectHandler = func(client mqtt.Client) {
	log.Info().Msg("connected to MQTT broker")
}

// MQTT connection lost handler
var connectLostHandler mqtt.ConnectionLostHandler = func(client mqtt.Client, err error) {
	log.Warn().Err(err).Msg("MQTT connection lost")
}

// CreateMQTTClient connects to brokerURL. The client reconnects on its own.
func CreateMQTTClient(brokerURL, clientName string) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientName)
	opts.SetAutoReconnect(true)
	opts.SetDefaultPublishHandler(messagePubHandler)
	opts.OnConnect = connectHandler
	opts.OnConnectionLost = connectLostHandler

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	log.Info().Str("broker", brokerURL).Msg("MQTT client initialized successfully")
	return client, nil
}

type publishClient interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// BoardPublisher sends prayer schedules to display boards over MQTT.
type BoardPublisher struct {
	client publishClient
	topic  string
}

func NewBoardPublisher(client publishClient, topic string) *BoardPublisher {
	if topic == "" {
		topic = BoardTopic
	}
	return &BoardPublisher{client: client, topic: topic}
}

type boardMessage struct {
	Type   string        `json:"type"`
	SentAt time.Time     `json:"sent_at"`
	Board  prayers.Board `json:"board"`
}

// PublishPrayerTimes publishes board as a retained message so a screen
// that connects later still gets the latest schedule.
func (p *BoardPublisher) PublishPrayerTimes(ctx context.Context, board prayers.Board) error {
	payload, err := json.Marshal(boardMessage{Type: "prayer_times", SentAt: time.Now().UTC(), Board: board})
	if err != nil {
		return fmt.Errorf("encode board message: %w", err)
	}

	token := p.client.Publish(p.topic, 1, true, payload)
	select {
	case <-token.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	if token.Error() != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.topic, token.Error())
	}

	log.Info().Str("topic", p.topic).Str("date", board.Day.Date).Msg("prayer times sent to display boards")
	return nil
}
