// Package ingest receives activity records published by devices over MQTT
// and stores them the same way the HTTP endpoint does.
package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/pbaille/focusflow/internal/features"
	"github.com/pbaille/focusflow/internal/logging"
	"github.com/pbaille/focusflow/internal/metrics"
)

// Config holds the broker connection settings
type Config struct {
	Broker   string
	ClientID string
	Username string
	Password string
}

// Sink stores raw activity records for a user
type Sink interface {
	AddActivity(ctx context.Context, userID string, raws []features.RawLog) (int, error)
}

// ErrBadPayload is returned for messages that are neither a JSON object nor
// an array of objects
var ErrBadPayload = errors.New("payload must be a JSON object or array of objects")

const storeTimeout = 5 * time.Second

// Connect opens a broker connection that reconnects on its own
func Connect(cfg Config, log logging.Logger) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		log.Info("mqtt connected", "broker", cfg.Broker)
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warn("mqtt connection lost", "error", err)
	})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to mqtt broker: %w", token.Error())
	}
	return client, nil
}

// Subscriber feeds device messages into a Sink
type Subscriber struct {
	client  mqtt.Client
	sink    Sink
	metrics *metrics.Metrics
	log     logging.Logger
	topic   string
}

// NewSubscriber wires a connected client to sink. topic is a pattern with
// exactly one "+" level standing for the user ID, e.g. focusflow/+/activity.
// m may be nil.
func NewSubscriber(client mqtt.Client, topic string, sink Sink, m *metrics.Metrics, log logging.Logger) (*Subscriber, error) {
	if strings.Count(topic, "+") != 1 {
		return nil, fmt.Errorf("topic %q must contain exactly one + level for the user id", topic)
	}
	return &Subscriber{
		client:  client,
		sink:    sink,
		metrics: m,
		log:     log.With("component", "ingest"),
		topic:   topic,
	}, nil
}

// Start subscribes to the activity topic
func (s *Subscriber) Start() error {
	token := s.client.Subscribe(s.topic, 1, s.handle)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", s.topic, token.Error())
	}
	s.log.Info("subscribed", "topic", s.topic)
	return nil
}

// Close unsubscribes and disconnects
func (s *Subscriber) Close() {
	if token := s.client.Unsubscribe(s.topic); token.Wait() && token.Error() != nil {
		s.log.Warn("unsubscribe failed", "error", token.Error())
	}
	s.client.Disconnect(250)
}

func (s *Subscriber) handle(_ mqtt.Client, msg mqtt.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
	defer cancel()

	n, err := s.Ingest(ctx, msg.Topic(), msg.Payload())
	if err != nil {
		s.log.Warn("dropped message", "topic", msg.Topic(), "error", err)
		return
	}
	s.log.Debug("stored activity", "topic", msg.Topic(), "records", n)
}

// Ingest decodes one message and stores its records for the user named in
// the topic
func (s *Subscriber) Ingest(ctx context.Context, topic string, payload []byte) (int, error) {
	userID, ok := UserFromTopic(s.topic, topic)
	if !ok {
		return 0, fmt.Errorf("no user id in topic %q", topic)
	}
	raws, err := DecodePayload(payload)
	if err != nil {
		return 0, err
	}
	n, err := s.sink.AddActivity(ctx, userID, raws)
	if err != nil {
		return 0, fmt.Errorf("store activity for %s: %w", userID, err)
	}
	if s.metrics != nil {
		s.metrics.RecordsIngested(metrics.SourceMQTT, n)
	}
	return n, nil
}

// DecodePayload accepts a single JSON object or an array of objects
func DecodePayload(payload []byte) ([]features.RawLog, error) {
	trimmed := strings.TrimSpace(string(payload))
	if trimmed == "" {
		return nil, ErrBadPayload
	}

	switch trimmed[0] {
	case '{':
		var raw features.RawLog
		if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
		}
		return []features.RawLog{raw}, nil
	case '[':
		var raws []features.RawLog
		if err := json.Unmarshal([]byte(trimmed), &raws); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadPayload, err)
		}
		for i, raw := range raws {
			if raw == nil {
				return nil, fmt.Errorf("%w: element %d is null", ErrBadPayload, i)
			}
		}
		return raws, nil
	default:
		return nil, ErrBadPayload
	}
}

// UserFromTopic returns the topic level matched by the "+" of pattern
func UserFromTopic(pattern, topic string) (string, bool) {
	want := strings.Split(pattern, "/")
	got := strings.Split(topic, "/")
	if len(want) != len(got) {
		return "", false
	}
	user := ""
	for i, level := range want {
		switch {
		case level == "+":
			user = got[i]
		case level != got[i]:
			return "", false
		}
	}
	return user, user != ""
}
