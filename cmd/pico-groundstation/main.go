//go:build rp2040

package main

import (
	"context"
	"machine"
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

const (
	radioReset   = machine.GP9
	beatInterval = 10 * time.Second
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)
	log := logging.L
	log.Info("boot")

	reg, err := config.Initialize(variant.Compiled()...)
	if err != nil {
		// Nothing sensible to run without a board profile.
		for {
			log.Error("hardware variant", "err", err)
			time.Sleep(5 * time.Second)
		}
	}
	p := reg.Profile()
	for _, note := range reg.ReviewNotes() {
		log.Warn(note)
	}

	console, rx := sink.OpenUART(sink.UARTConfig{ID: "uart0", Baud: 115200, TX: 0, RX: 1})

	b := bus.NewBus(4)
	remote := sink.ForProfile(p, sink.NewBus(b.NewConnection("remote")))
	dbg := debuglog.New(reg, console, remote, debuglog.WithOpLog(log))

	ctx := context.Background()
	if err := settings.New(reg, dbg).Start(ctx, b.NewConnection("settings")); err != nil {
		log.Error("settings service", "err", err)
	}
	if err := heartbeat.New(reg, dbg, beatInterval).Start(ctx, b.NewConnection("heartbeat")); err != nil {
		log.Error("heartbeat service", "err", err)
	}

	// Commands arrive as "<topic> <json>" lines on the console UART.
	cmds := sink.NewRouter(b.NewConnection("console"), log,
		settings.TopicDebug, settings.TopicTune, settings.TopicRestore, heartbeat.TopicConfig)
	go func() {
		if err := cmds.ReadLines(ctx, rx); err != nil {
			log.Error("console commands", "err", err)
		}
	}()

	lc, err := radio.LoRaConfig(reg.Snapshot(), false)
	if err != nil {
		log.Error("radio config", "err", err)
	} else if _, err := radio.BringUp(p, radioReset, lc); err != nil {
		log.Error("radio bring-up", "module", string(p.Module), "err", err)
	} else {
		dbg.Logf("%s ready on %.2f MHz", p.Module, reg.CarrierFrequencyMHz())
	}

	select {}
}
