package sink

import (
	"groundstation-go/bus"
	"groundstation-go/debuglog"
	"groundstation-go/errcode"
	"groundstation-go/variant"
)

var (
	_ debuglog.Remote = Unsupported{}
	_ debuglog.Remote = (*Bus)(nil)
)

// Unsupported stands in for boards without a network stack.
type Unsupported struct{}

func (Unsupported) Available() bool              { return false }
func (Unsupported) Publish(string, string) error { return errcode.SinkUnavailable }

// ForProfile returns r when the board can reach a broker, Unsupported
// otherwise (including r == nil).
func ForProfile(p variant.Profile, r debuglog.Remote) debuglog.Remote {
	if !p.RemoteSink || r == nil {
		return Unsupported{}
	}
	return r
}

// Bus publishes debug lines on the in-process bus; the slash-separated topic
// becomes bus tokens.
type Bus struct {
	conn *bus.Connection
}

func NewBus(conn *bus.Connection) *Bus { return &Bus{conn: conn} }

func (b *Bus) Available() bool { return b != nil && b.conn != nil }

func (b *Bus) Publish(topic, payload string) error {
	t := bus.ParseTopic(topic)
	if len(t) == 0 {
		return errcode.New(errcode.InvalidTopic, "sink.Bus", topic)
	}
	b.conn.Publish(b.conn.NewMessage(t, payload, false))
	return nil
}
