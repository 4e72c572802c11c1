package heartbeat

import (
	"context"
	"time"

	"groundstation-go/bus"
	"groundstation-go/config"
	"groundstation-go/debuglog"
	"groundstation-go/x/mathx"
	"groundstation-go/x/payload"
)

// TopicConfig carries interval updates.
var TopicConfig = bus.T("config", "heartbeat")

// Accepted interval range in seconds.
const (
	minIntervalS = 0.01
	maxIntervalS = 3600
)

// Config is the config/heartbeat payload. A missing interval leaves the
// ticker as it is; 0 or less stops it.
type Config struct {
	Interval *float64 `json:"interval,omitempty"`
}

// Service writes a liveness line through the debug facade on every tick.
type Service struct {
	reg      *config.Registry
	dbg      *debuglog.Logger
	interval time.Duration
}

// New returns a heartbeat with the given interval; 0 keeps it idle until an
// interval arrives on config/heartbeat.
func New(reg *config.Registry, dbg *debuglog.Logger, interval time.Duration) *Service {
	return &Service{reg: reg, dbg: dbg, interval: interval}
}

// intervalFor maps seconds to a tick period; ok is false when the
// heartbeat should stop.
func intervalFor(secs float64) (d time.Duration, ok bool) {
	if secs <= 0 {
		return 0, false
	}
	secs = mathx.Clamp(secs, minIntervalS, maxIntervalS)
	return time.Duration(secs * float64(time.Second)), true
}

func (s *Service) beat() {
	s.dbg.Logf("heartbeat %.2f MHz", s.reg.CarrierFrequencyMHz())
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection, cfgSub *bus.Subscription) {
	defer conn.Unsubscribe(cfgSub)

	tick := time.NewTicker(time.Hour)
	defer tick.Stop()
	if s.interval > 0 {
		tick.Reset(s.interval)
	} else {
		tick.Stop()
	}

	// loop until context is cancelled, respond to tick and config changes
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			s.beat()
		case msg, ok := <-cfgSub.Channel():
			if !ok {
				return
			}
			cfg, err := payload.Decode[Config](msg.Payload)
			if err != nil || cfg.Interval == nil {
				continue
			}
			if d, ok := intervalFor(*cfg.Interval); ok {
				tick.Reset(d)
			} else {
				tick.Stop()
			}
		}
	}
}

// Start the heartbeat service. The config subscription is in place on return.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	cfgSub := conn.Subscribe(TopicConfig)
	go s.serviceLoop(ctx, conn, cfgSub)
	return nil
}
