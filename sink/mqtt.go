//go:build !tinygo

package sink

import (
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"groundstation-go/debuglog"
	"groundstation-go/errcode"
	"groundstation-go/logging"
)

var _ debuglog.Remote = (*MQTT)(nil)

// MQTTOptions configures DialMQTT.
type MQTTOptions struct {
	Broker         string // e.g. tcp://localhost:1883
	ClientID       string
	PublishTimeout time.Duration
	ConnectTimeout time.Duration
	QoS            byte
}

// MQTT publishes debug lines to a broker. It reports itself unavailable
// while the connection is down; paho keeps reconnecting in the background.
type MQTT struct {
	client  mqtt.Client
	timeout time.Duration
	qos     byte

	mu     sync.Mutex
	prefix string
	router *Router
}

// DialMQTT starts connecting and returns without failing when the broker is
// unreachable; lines are dropped until the connection comes up.
func DialMQTT(o MQTTOptions, log logging.Logger) *MQTT {
	log = logging.OrNop(log)
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = 2 * time.Second
	}

	m := NewMQTT(nil, o.PublishTimeout, o.QoS)
	opts := mqtt.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID(o.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(func(mqtt.Client) {
			log.Info("mqtt connected", "broker", o.Broker)
			if err := m.subscribe(); err != nil {
				log.Warn("mqtt command subscribe failed", "err", err)
			}
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Warn("mqtt connection lost", "broker", o.Broker, "err", err)
		})

	m.client = mqtt.NewClient(opts)
	if tok := m.client.Connect(); !tok.WaitTimeout(o.ConnectTimeout) {
		log.Warn("mqtt not connected yet; remote debug lines dropped until it is", "broker", o.Broker)
	} else if err := tok.Error(); err != nil {
		log.Warn("mqtt connect failed", "broker", o.Broker, "err", err)
	}
	return m
}

// NewMQTT wraps an existing client.
func NewMQTT(c mqtt.Client, publishTimeout time.Duration, qos byte) *MQTT {
	if publishTimeout <= 0 {
		publishTimeout = 2 * time.Second
	}
	return &MQTT{client: c, timeout: publishTimeout, qos: qos}
}

func (m *MQTT) Available() bool { return m.client.IsConnectionOpen() }

// Publish waits at most the publish timeout for the broker to accept.
func (m *MQTT) Publish(topic, payload string) error {
	tok := m.client.Publish(topic, m.qos, false, payload)
	if !tok.WaitTimeout(m.timeout) {
		return errcode.New(errcode.Timeout, "sink.MQTT", topic)
	}
	if err := tok.Error(); err != nil {
		return errcode.Wrap(errcode.SinkUnavailable, "sink.MQTT", err)
	}
	return nil
}

// Forward subscribes to <prefix>/<path> for every path r accepts and
// routes what arrives. Subscriptions are renewed on every (re)connect, so
// calling Forward before the broker is reachable is fine.
func (m *MQTT) Forward(prefix string, r *Router) error {
	m.mu.Lock()
	m.prefix = "/" + strings.Trim(prefix, "/")
	m.router = r
	m.mu.Unlock()

	if !m.client.IsConnectionOpen() {
		return nil
	}
	return m.subscribe()
}

func (m *MQTT) subscribe() error {
	const op = "sink.MQTT.Forward"

	m.mu.Lock()
	prefix, r := m.prefix, m.router
	m.mu.Unlock()
	if r == nil {
		return nil
	}

	filters := make(map[string]byte)
	for _, p := range r.Paths() {
		filters[prefix+"/"+p] = m.qos
	}
	tok := m.client.SubscribeMultiple(filters, func(_ mqtt.Client, msg mqtt.Message) {
		r.Route(strings.TrimPrefix(msg.Topic(), prefix), msg.Payload())
	})
	if !tok.WaitTimeout(m.timeout) {
		return errcode.New(errcode.Timeout, op, prefix)
	}
	if err := tok.Error(); err != nil {
		return errcode.Wrap(errcode.SinkUnavailable, op, err)
	}
	return nil
}

// Close disconnects, allowing in-flight work 250ms.
func (m *MQTT) Close() error {
	m.client.Disconnect(250)
	return nil
}
