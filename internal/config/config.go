// Package config loads the YAML configuration shared by the supervisor and
// processor binaries.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ErrNoConfig means no candidate file exists; callers fall back to Default.
var ErrNoConfig = errors.New("no config file")

// SearchPaths lists candidate config files, most specific first:
// $WILDLIFE_CONFIG, ./config.yaml, the user config dir, /etc/wildlife.
func SearchPaths() []string {
	var paths []string
	if env := os.Getenv("WILDLIFE_CONFIG"); env != "" {
		paths = append(paths, env)
	}
	paths = append(paths, "config.yaml")
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "wildlife", "config.yaml"))
	}
	return append(paths, "/etc/wildlife/config.yaml")
}

// FindConfig returns explicit when set (it must exist), otherwise the first
// of SearchPaths present on disk, or ErrNoConfig.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config %s: %w", explicit, err)
		}
		return explicit, nil
	}
	candidates := SearchPaths()
	for _, p := range candidates {
		if st, err := os.Stat(p); err == nil && !st.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w (tried %s)", ErrNoConfig, strings.Join(candidates, ", "))
}

// Config holds the whole system configuration.
type Config struct {
	Network   NetworkConfig   `yaml:"network"`
	Broker    BrokerConfig    `yaml:"broker"`
	Timing    TimingConfig    `yaml:"timing"`
	Pins      PinsConfig      `yaml:"pins"`
	Sensors   SensorsConfig   `yaml:"sensors"`
	Status    StatusConfig    `yaml:"status"`
	Processor ProcessorConfig `yaml:"processor"`
	LogLevel  string          `yaml:"log_level"`
	LogFormat string          `yaml:"log_format"` // "text" or "json"
}

// NetworkConfig holds the Wi-Fi credentials used for association.
type NetworkConfig struct {
	Interface string `yaml:"interface"`
	SSID      string `yaml:"ssid"`
	Password  string `yaml:"password"`
}

// BrokerConfig is the MQTT endpoint used by both binaries.
type BrokerConfig struct {
	Host              string `yaml:"host"`
	Port              int    `yaml:"port"`
	Username          string `yaml:"username"`
	Password          string `yaml:"password"`
	ClientID          string `yaml:"client_id"`
	ConnectTimeoutMS  int    `yaml:"connect_timeout_ms"`
	PublishTimeoutMS  int    `yaml:"publish_timeout_ms"`
	ProcessorClientID string `yaml:"processor_client_id"`
}

// URL returns the tcp:// broker address.
func (b BrokerConfig) URL() string {
	return fmt.Sprintf("tcp://%s:%d", b.Host, b.Port)
}

// TimingConfig holds the loop cadences, all in milliseconds.
type TimingConfig struct {
	LoopIntervalMS      int `yaml:"loop_interval_ms"`
	AssociationDelayMS  int `yaml:"association_delay_ms"`
	AssociationAttempts int `yaml:"association_attempts"`
	SlowBlinkMS         int `yaml:"slow_blink_ms"`
}

func (t TimingConfig) LoopInterval() time.Duration {
	return time.Duration(t.LoopIntervalMS) * time.Millisecond
}

func (t TimingConfig) AssociationDelay() time.Duration {
	return time.Duration(t.AssociationDelayMS) * time.Millisecond
}

func (t TimingConfig) SlowBlink() time.Duration {
	return time.Duration(t.SlowBlinkMS) * time.Millisecond
}

// PinsConfig maps the digital lines on a GPIO character device.
type PinsConfig struct {
	Chip           string `yaml:"chip"`
	Motion         int    `yaml:"motion"`
	Light          int    `yaml:"light"`
	MotionLED      int    `yaml:"motion_led"`
	StatusLED      int    `yaml:"status_led"`
	LightActiveLow bool   `yaml:"light_active_low"`
}

// SensorsConfig describes the environmental probes.
type SensorsConfig struct {
	Climate ClimateConfig `yaml:"climate"`
	Battery BatteryConfig `yaml:"battery"`
}

// ClimateConfig is a Modbus-RTU temperature/humidity probe.
type ClimateConfig struct {
	Port      string `yaml:"port"`
	BaudRate  int    `yaml:"baud_rate"`
	SlaveID   int    `yaml:"slave_id"`
	TimeoutMS int    `yaml:"timeout_ms"`
}

// BatteryConfig points at an IIO raw ADC channel.
type BatteryConfig struct {
	Path string `yaml:"path"`
}

// StatusConfig controls the supervisor's status listeners. Empty disables.
type StatusConfig struct {
	HTTPAddr string `yaml:"http_addr"`
	GRPCAddr string `yaml:"grpc_addr"`
}

// ProcessorConfig configures the trigger processor.
type ProcessorConfig struct {
	HTTPAddr     string       `yaml:"http_addr"`
	CaptureDir   string       `yaml:"capture_dir"`
	DatabasePath string       `yaml:"database_path"`
	CooldownSec  int          `yaml:"cooldown_sec"`
	RecordSec    int          `yaml:"record_sec"`
	Classifier   []string     `yaml:"classifier"` // argv; frame path is appended
	Ntfy         NtfyConfig   `yaml:"ntfy"`
	Influx       InfluxConfig `yaml:"influx"`
}

// NtfyConfig is the push-notification target. Empty Topic disables.
type NtfyConfig struct {
	Server string `yaml:"server"`
	Topic  string `yaml:"topic"`
}

// InfluxConfig is the optional telemetry sink. Empty URL disables.
type InfluxConfig struct {
	URL    string `yaml:"url"`
	Token  string `yaml:"token"`
	Org    string `yaml:"org"`
	Bucket string `yaml:"bucket"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Network: NetworkConfig{Interface: "wlan0"},
		Broker: BrokerConfig{
			Host:              "localhost",
			Port:              1883,
			ClientID:          "wildlife_sensor",
			ConnectTimeoutMS:  2000,
			PublishTimeoutMS:  2000,
			ProcessorClientID: "rpi_processor",
		},
		Timing: TimingConfig{
			LoopIntervalMS:      100,
			AssociationDelayMS:  100,
			AssociationAttempts: 20,
			SlowBlinkMS:         750,
		},
		Pins: PinsConfig{
			Chip:      "gpiochip0",
			Motion:    17,
			Light:     27,
			MotionLED: 22,
			StatusLED: 23,
		},
		Sensors: SensorsConfig{
			Climate: ClimateConfig{Port: "/dev/ttyUSB0", BaudRate: 9600, SlaveID: 1, TimeoutMS: 500},
			Battery: BatteryConfig{Path: "/sys/bus/iio/devices/iio:device0/in_voltage0_raw"},
		},
		Status: StatusConfig{HTTPAddr: ":9102"},
		Processor: ProcessorConfig{
			HTTPAddr:     ":5000",
			CaptureDir:   "captures",
			DatabasePath: "captures/wildlife.db",
			CooldownSec:  10,
			RecordSec:    10,
			Ntfy:         NtfyConfig{Server: "https://ntfy.sh"},
		},
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// Load reads path over Default, expands ${ENV} references, applies the
// environment overrides and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.ApplyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides secrets and endpoints from the environment.
func (c *Config) ApplyEnv() {
	c.Network.SSID = getenv("WILDLIFE_WIFI_SSID", c.Network.SSID)
	c.Network.Password = getenv("WILDLIFE_WIFI_PASSWORD", c.Network.Password)
	c.Broker.Host = getenv("WILDLIFE_MQTT_HOST", c.Broker.Host)
	c.Broker.Port = getenvInt("WILDLIFE_MQTT_PORT", c.Broker.Port)
	c.Broker.Username = getenv("WILDLIFE_MQTT_USERNAME", c.Broker.Username)
	c.Broker.Password = getenv("WILDLIFE_MQTT_PASSWORD", c.Broker.Password)
	c.Processor.Influx.Token = getenv("WILDLIFE_INFLUX_TOKEN", c.Processor.Influx.Token)
	c.LogLevel = getenv("WILDLIFE_LOG_LEVEL", c.LogLevel)
}

// Validate rejects configurations the supervisor cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Broker.Host == "" {
		errs = append(errs, errors.New("broker.host is required"))
	}
	if c.Broker.Port < 1 || c.Broker.Port > 65535 {
		errs = append(errs, fmt.Errorf("broker.port %d out of range", c.Broker.Port))
	}
	if c.Broker.ClientID == "" {
		errs = append(errs, errors.New("broker.client_id is required"))
	}
	if c.Timing.LoopIntervalMS <= 0 {
		errs = append(errs, errors.New("timing.loop_interval_ms must be positive"))
	}
	if c.Timing.AssociationDelayMS <= 0 {
		errs = append(errs, errors.New("timing.association_delay_ms must be positive"))
	}
	if c.Timing.AssociationAttempts < 1 {
		errs = append(errs, errors.New("timing.association_attempts must be at least 1"))
	}
	if c.Timing.SlowBlinkMS <= 0 {
		errs = append(errs, errors.New("timing.slow_blink_ms must be positive"))
	}
	seen := map[int]string{}
	for name, off := range map[string]int{
		"motion": c.Pins.Motion, "light": c.Pins.Light,
		"motion_led": c.Pins.MotionLED, "status_led": c.Pins.StatusLED,
	} {
		if off < 0 {
			errs = append(errs, fmt.Errorf("pins.%s: negative offset %d", name, off))
			continue
		}
		if other, dup := seen[off]; dup {
			errs = append(errs, fmt.Errorf("pins.%s and pins.%s share offset %d", name, other, off))
		}
		seen[off] = name
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getenvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}
