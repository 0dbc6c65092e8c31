// Package stream replays a finished simulation run over MQTT, one telemetry
// record per message, paced by the recorded timestamps.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/route-dynamics/internal/models"
)

// Config holds the broker connection and replay pacing settings.
type Config struct {
	BrokerURL      string
	ClientID       string
	Topic          string
	QOS            byte
	TimeScale      float64 // 2.0 replays twice as fast as recorded
	ConnectTimeout time.Duration
}

// FromEnv reads the publisher configuration from the environment, falling
// back to local-broker defaults.
func FromEnv() Config {
	cfg := Config{
		BrokerURL:      "tcp://localhost:1883",
		ClientID:       "route-dynamics-sim",
		Topic:          "route-dynamics/telemetry",
		QOS:            1,
		TimeScale:      1.0,
		ConnectTimeout: 10 * time.Second,
	}
	if v := os.Getenv("MQTT_BROKER_URL"); v != "" {
		cfg.BrokerURL = v
	}
	if v := os.Getenv("MQTT_CLIENT_ID"); v != "" {
		cfg.ClientID = v
	}
	if v := os.Getenv("MQTT_TOPIC"); v != "" {
		cfg.Topic = v
	}
	if v := os.Getenv("MQTT_QOS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n <= 2 {
			cfg.QOS = byte(n)
		}
	}
	if v := os.Getenv("SIM_TIME_SCALE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			cfg.TimeScale = f
		}
	}
	return cfg
}

// Publisher owns one broker connection for the lifetime of a replay.
type Publisher struct {
	cfg    Config
	client mqtt.Client
}

// NewPublisher connects to the broker and returns a ready publisher.
func NewPublisher(cfg Config) (*Publisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(cfg.ClientID).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.ConnectTimeout) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", cfg.BrokerURL)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", cfg.BrokerURL, err)
	}

	log.WithFields(log.Fields{
		"broker": cfg.BrokerURL,
		"topic":  cfg.Topic,
	}).Info("Connected to MQTT broker")

	return &Publisher{cfg: cfg, client: client}, nil
}

// Replay publishes every record of the run in order. Gaps between recorded
// timestamps are reproduced in wall time, divided by TimeScale. Cancelling the
// context stops the replay between records.
func (p *Publisher) Replay(ctx context.Context, result *models.RunResult) error {
	prevTime := 0.0
	if len(result.EnhancedResult) > 0 {
		prevTime = result.EnhancedResult[0].TimeSec
	}

	for i, rec := range result.EnhancedResult {
		wait := time.Duration((rec.TimeSec - prevTime) / p.cfg.TimeScale * float64(time.Second))
		prevTime = rec.TimeSec
		if wait > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}

		payload, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encoding record %d: %w", i+1, err)
		}
		token := p.client.Publish(p.cfg.Topic, p.cfg.QOS, false, payload)
		token.Wait()
		if err := token.Error(); err != nil {
			return fmt.Errorf("publishing record %d: %w", i+1, err)
		}
	}

	log.WithFields(log.Fields{
		"records": len(result.EnhancedResult),
		"topic":   p.cfg.Topic,
	}).Info("Replay finished")
	return nil
}

// Close drains in-flight messages and disconnects.
func (p *Publisher) Close() {
	p.client.Disconnect(250)
}
