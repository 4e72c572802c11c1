//go:build !tinygo

package main

import (
	"context"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"groundstation-go/bus"
	"groundstation-go/config"
	"groundstation-go/debuglog"
	"groundstation-go/logging"
	"groundstation-go/radio"
	"groundstation-go/services/heartbeat"
	"groundstation-go/services/settings"
	"groundstation-go/sink"
	"groundstation-go/variant"
)

func main() {
	cfgPath := flag.String("config", "", "path to YAML configuration (optional)")
	debug := flag.Bool("debug", false, "operational log at debug level, overriding log.level")
	flag.Parse()

	f, err := config.LoadFile(*cfgPath)
	if err != nil {
		logging.L.Fatal("load config", "err", err)
	}

	closer, err := logging.Setup(logging.Options{
		Level:      f.Log.Level,
		File:       f.Log.File,
		MaxSizeMB:  f.Log.MaxSizeMB,
		MaxBackups: f.Log.MaxBackups,
	})
	if err != nil {
		logging.L.Fatal("logger setup", "err", err)
	}
	defer closer.Close()
	if *debug {
		logging.SetDebug(true)
	}
	log := logging.L

	reg, err := config.Initialize(f.Selection(variant.Compiled())...)
	if err != nil {
		if config.IsConfigurationError(err) {
			log.Fatal("hardware variant", "err", err, "compiled", variant.Compiled(), "file", f.Variant)
		}
		log.Fatal("registry", "err", err)
	}
	f.Apply(reg)

	p := reg.Profile()
	log.Info("ground station",
		"variant", p.Variant, "board", p.Board, "module", p.Module,
		"freq_mhz", reg.CarrierFrequencyMHz(), "signature", reg.TransmissionSignature())
	for _, note := range reg.ReviewNotes() {
		log.Warn(note)
	}

	var console debuglog.Console
	if f.Console.Port != "" {
		w, err := sink.OpenSerial(f.Console.Port, f.Console.Baud)
		if err != nil {
			log.Fatal("open console", "port", f.Console.Port, "err", err)
		}
		defer w.Close()
		console = w
	} else {
		console = sink.NewWriter(os.Stdout)
	}

	b := bus.NewBus(8)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		remote debuglog.Remote
		mq     *sink.MQTT
	)
	if f.MQTT.Broker != "" {
		m := sink.DialMQTT(sink.MQTTOptions{
			Broker:         f.MQTT.Broker,
			ClientID:       f.MQTT.ClientID,
			PublishTimeout: time.Duration(f.MQTT.PublishTimeoutMs) * time.Millisecond,
		}, log)
		defer m.Close()
		remote, mq = m, m
	} else {
		remote = sink.NewBus(b.NewConnection("remote"))
	}
	remote = sink.ForProfile(p, remote)

	opts := []debuglog.Option{debuglog.WithOpLog(log)}
	if f.MQTT.Topic != "" {
		opts = append(opts, debuglog.WithTopic(f.MQTT.Topic))
	}
	dbg := debuglog.New(reg, console, remote, opts...)

	if err := settings.New(reg, dbg).Start(ctx, b.NewConnection("settings")); err != nil {
		log.Fatal("settings service", "err", err)
	}
	hb := heartbeat.New(reg, dbg, time.Duration(f.Heartbeat.Interval)*time.Second)
	if err := hb.Start(ctx, b.NewConnection("heartbeat")); err != nil {
		log.Fatal("heartbeat service", "err", err)
	}

	// Services are subscribed; open the command inputs.
	cmds := sink.NewRouter(b.NewConnection("commands"), log,
		settings.TopicDebug, settings.TopicTune, settings.TopicRestore, heartbeat.TopicConfig)
	if mq != nil && p.RemoteSink {
		if err := mq.Forward(f.MQTT.CommandPrefix, cmds); err != nil {
			log.Warn("mqtt commands not subscribed yet", "prefix", f.MQTT.CommandPrefix, "err", err)
		}
	}
	if f.Console.Port == "" {
		// "<topic> <json>" lines typed on stdin.
		go func() {
			if err := cmds.ReadLines(ctx, sink.ReaderReceiver{R: os.Stdin}); err != nil && err != io.EOF {
				log.Warn("stdin commands", "err", err)
			}
		}()
	}

	for _, connected := range []bool{false, true} {
		lc, err := radio.LoRaConfig(reg.Snapshot(), connected)
		if err != nil {
			log.Error("radio config", "connected", connected, "err", err)
			continue
		}
		log.Debug("radio config", "connected", connected,
			"freq_hz", lc.Freq, "bw", lc.Bw, "sf", lc.Sf, "cr", lc.Cr, "ldr", lc.Ldr, "dbm", lc.LoraTxPowerDBm)
	}

	dbg.Logf("ground station up, %s on %.2f MHz", p.Board, reg.CarrierFrequencyMHz())

	<-ctx.Done()
	st := dbg.Stats()
	log.Info("shutdown",
		"console_lines", st.ConsoleLines, "console_drops", st.ConsoleDrops,
		"remote_publishes", st.RemotePublishes, "remote_drops", st.RemoteDrops)
}
