// Package telemetry publishes roster snapshots of the simulation to an MQTT broker.
package telemetry

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"
	"github.com/woozymasta/a2sim/internal/a2s"
	"github.com/woozymasta/a2sim/internal/config"
	"github.com/woozymasta/a2sim/internal/vars"
)

const (
	connectTimeout  = 10 * time.Second
	disconnectQuiet = 250 // ms
)

// ErrDisabled is returned when no broker is configured.
var ErrDisabled = errors.New("mqtt broker is not configured")

// Publisher pushes the roster to a single topic after every simulation tick.
type Publisher struct {
	client   mqtt.Client
	topic    string
	server   string
	maxSlots uint8
}

// Message is the JSON document published on every tick.
type Message struct {
	Timestamp  string       `json:"timestamp"`
	Server     string       `json:"server"`
	Version    string       `json:"app_version"`
	Players    []a2s.Player `json:"players"`
	Count      int          `json:"count"`
	MaxPlayers uint8        `json:"max_players"`
}

// New prepares a client for the configured broker without connecting.
// server and maxSlots are carried in every message for consumers that watch several responders.
func New(cfg config.MQTT, server string, maxSlots uint8) (*Publisher, error) {
	if cfg.Broker == "" {
		return nil, ErrDisabled
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetCleanSession(true)

	opts.SetOnConnectHandler(func(mqtt.Client) {
		log.Info().Str("broker", cfg.Broker).Msg("MQTT connected")
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Msg("MQTT connection lost")
	})

	return &Publisher{
		client:   mqtt.NewClient(opts),
		topic:    cfg.Topic,
		server:   server,
		maxSlots: maxSlots,
	}, nil
}

// Connect dials the broker and waits for the session.
func (p *Publisher) Connect() error {
	token := p.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("MQTT connect timed out after %s", connectTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("MQTT connect failed: %w", err)
	}

	return nil
}

// Publish sends one roster snapshot. It never blocks the caller on the broker,
// so it can be used directly as a simulator subscriber.
func (p *Publisher) Publish(players []a2s.Player) {
	if !p.client.IsConnected() {
		return
	}

	data, err := json.Marshal(p.message(players, time.Now()))
	if err != nil {
		log.Warn().Err(err).Str("topic", p.topic).Msg("Failed to marshal MQTT message")
		return
	}

	token := p.client.Publish(p.topic, 0, false, data)
	go func() {
		token.Wait()
		if token.Error() != nil {
			log.Warn().Err(token.Error()).Str("topic", p.topic).Msg("MQTT publish failed")
		}
	}()
}

// Close disconnects from the broker.
func (p *Publisher) Close() {
	if p.client.IsConnected() {
		p.client.Disconnect(disconnectQuiet)
		log.Info().Msg("MQTT disconnected")
	}
}

func (p *Publisher) message(players []a2s.Player, now time.Time) Message {
	if players == nil {
		players = []a2s.Player{}
	}

	return Message{
		Timestamp:  now.UTC().Format(time.RFC3339),
		Server:     p.server,
		Version:    vars.Version,
		Players:    players,
		Count:      len(players),
		MaxPlayers: p.maxSlots,
	}
}
