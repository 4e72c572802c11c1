package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v2"

	"groundstation-go/errcode"
	"groundstation-go/variant"
)

// File is the host-side configuration file. Absent keys keep their defaults.
type File struct {
	Variant         string          `yaml:"variant"`
	AutomaticTuning bool            `yaml:"automatic_tuning"`
	Debug           DebugConfig     `yaml:"debug"`
	Heartbeat       HeartbeatConfig `yaml:"heartbeat"`
	Console         ConsoleConfig   `yaml:"console"`
	MQTT            MQTTConfig      `yaml:"mqtt"`
	Log             LogConfig       `yaml:"log"`
}

// DebugConfig seeds the two debug sink toggles.
type DebugConfig struct {
	Serial bool `yaml:"serial"`
	Remote bool `yaml:"remote"`
}

// HeartbeatConfig holds the liveness line interval in seconds; 0 disables it.
type HeartbeatConfig struct {
	Interval int `yaml:"interval"`
}

// ConsoleConfig selects the console sink: stdout when Port is empty,
// otherwise a serial device.
type ConsoleConfig struct {
	Port string `yaml:"port"`
	Baud int    `yaml:"baud"`
}

// MQTTConfig describes the remote debug channel. An empty Broker means no
// remote sink is wired.
type MQTTConfig struct {
	Broker           string `yaml:"broker"`
	ClientID         string `yaml:"client_id"`
	Topic            string `yaml:"topic"`
	CommandPrefix    string `yaml:"command_prefix"`
	PublishTimeoutMs int    `yaml:"publish_timeout_ms"`
}

// LogConfig drives the operational logger.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
}

// DefaultFile returns the configuration used when no file is given.
func DefaultFile() *File {
	return &File{
		AutomaticTuning: true,
		Debug:           DebugConfig{Serial: true, Remote: false},
		Heartbeat:       HeartbeatConfig{Interval: 10},
		Console:         ConsoleConfig{Baud: 115200},
		MQTT: MQTTConfig{
			ClientID:         "fossasat-gnd",
			Topic:            RemoteLogTopic,
			CommandPrefix:    RemoteCommandPrefix,
			PublishTimeoutMs: 2000,
		},
		Log: LogConfig{Level: "info", MaxSizeMB: 10, MaxBackups: 3},
	}
}

// LoadFile reads path (optional), applies GND_* environment overrides and
// validates the result.
func LoadFile(path string) (*File, error) {
	const op = "config.LoadFile"
	f := DefaultFile()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errcode.Wrap(errcode.InvalidConfig, op, err)
		}
		if err := yaml.Unmarshal(data, f); err != nil {
			return nil, errcode.Wrap(errcode.InvalidConfig, op, fmt.Errorf("parse %s: %w", path, err))
		}
	}

	if err := applyEnvOverrides(f); err != nil {
		return nil, errcode.Wrap(errcode.InvalidConfig, op, err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func applyEnvOverrides(f *File) error {
	if v, ok := os.LookupEnv("GND_VARIANT"); ok {
		f.Variant = v
	}
	for _, b := range []struct {
		key string
		dst *bool
	}{
		{"GND_DEBUG_SERIAL", &f.Debug.Serial},
		{"GND_DEBUG_REMOTE", &f.Debug.Remote},
		{"GND_AUTOMATIC_TUNING", &f.AutomaticTuning},
	} {
		v, ok := os.LookupEnv(b.key)
		if !ok {
			continue
		}
		on, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", b.key, err)
		}
		*b.dst = on
	}
	if v, ok := os.LookupEnv("GND_MQTT_BROKER"); ok {
		f.MQTT.Broker = v
	}
	if v, ok := os.LookupEnv("GND_MQTT_COMMAND_PREFIX"); ok {
		f.MQTT.CommandPrefix = v
	}
	if v, ok := os.LookupEnv("GND_CONSOLE_PORT"); ok {
		f.Console.Port = v
	}
	if v, ok := os.LookupEnv("GND_LOG_LEVEL"); ok {
		f.Log.Level = v
	}
	if v, ok := os.LookupEnv("GND_LOG_FILE"); ok {
		f.Log.File = v
	}
	return nil
}

// Validate checks values that would otherwise fail later at wiring time.
func (f *File) Validate() error {
	const op = "config.Validate"
	bad := func(msg string) error { return errcode.New(errcode.InvalidConfig, op, msg) }

	if f.Variant != "" {
		if _, err := variant.Parse(f.Variant); err != nil {
			return err
		}
	}
	switch strings.ToLower(f.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return bad("log.level must be debug, info, warn or error, got " + strconv.Quote(f.Log.Level))
	}
	if f.Heartbeat.Interval < 0 {
		return bad("heartbeat.interval must be >= 0")
	}
	if f.Console.Port != "" && f.Console.Baud <= 0 {
		return bad("console.baud must be > 0 when console.port is set")
	}
	if f.MQTT.PublishTimeoutMs < 0 {
		return bad("mqtt.publish_timeout_ms must be >= 0")
	}
	if f.MQTT.Broker != "" && f.MQTT.Topic == "" {
		return bad("mqtt.topic must be set when mqtt.broker is set")
	}
	if f.MQTT.Broker != "" && strings.Trim(f.MQTT.CommandPrefix, "/") == "" {
		return bad("mqtt.command_prefix must be set when mqtt.broker is set")
	}
	return nil
}

// Selection merges the build-tag variants with the file's variant. Build
// tags win; a file variant that disagrees with them is passed along so that
// Initialize reports the ambiguity.
func (f *File) Selection(compiled []variant.Variant) []variant.Variant {
	var fromFile []variant.Variant
	if f.Variant != "" {
		if v, err := variant.Parse(f.Variant); err == nil {
			fromFile = append(fromFile, v)
		}
	}
	if len(compiled) == 0 {
		return fromFile
	}
	out := append([]variant.Variant(nil), compiled...)
	for _, v := range fromFile {
		found := false
		for _, c := range compiled {
			if c == v {
				found = true
			}
		}
		if !found {
			out = append(out, v)
		}
	}
	return out
}

// Apply seeds the registry's runtime switches from the file.
func (f *File) Apply(r *Registry) {
	r.SetDebugToSerial(f.Debug.Serial)
	r.SetDebugToRemoteChannel(f.Debug.Remote)
	r.SetAutomaticTuning(f.AutomaticTuning)
}
