package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	platformMQTT          = "mqtt"
	platformHomeAssistant = "homeassistant"

	defaultMinTemp    = 15.0
	defaultMaxTemp    = 30.0
	defaultTargetTemp = 22.0
	defaultTempStep   = 0.5
)

type Config struct {
	Name            string              `yaml:"name"`
	Platform        string              `yaml:"platform"`
	Sensor          string              `yaml:"sensor"`
	Fan             string              `yaml:"fan"`
	CoolingSwitches []string            `yaml:"cooling_switches"`
	HeatingSwitches []string            `yaml:"heating_switches"`
	MinTemp         float64             `yaml:"min_temp"`
	MaxTemp         float64             `yaml:"max_temp"`
	TargetTemp      float64             `yaml:"target_temp"`
	TempStep        float64             `yaml:"temp_step"`
	Thresholds      Thresholds          `yaml:"thresholds"`
	CommandTimeout  time.Duration       `yaml:"command_timeout"`
	StateFile       string              `yaml:"state_file"`
	MQTT            MQTTConfig          `yaml:"mqtt"`
	HomeAssistant   HomeAssistantConfig `yaml:"homeassistant"`
	Relay           RelayConfig         `yaml:"relay"`
	Log             LogConfig           `yaml:"log"`
}

type MQTTConfig struct {
	URL      string `yaml:"url"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	// Prefix is the topic root for this thermostat's own state and
	// command topics.
	Prefix string `yaml:"prefix"`
}

type HomeAssistantConfig struct {
	URL          string        `yaml:"url"`
	Token        string        `yaml:"token"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// RelayConfig attaches switches to a serial relay board instead of the
// platform. Channels maps switch ids to relay channel numbers.
type RelayConfig struct {
	Device   string           `yaml:"device"`
	Baud     int              `yaml:"baud"`
	Address  uint8            `yaml:"address"`
	Channels map[string]uint8 `yaml:"channels"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return parseConfig(data)
}

func parseConfig(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Name == "" {
		c.Name = "fancoil"
	}
	if c.Platform == "" {
		c.Platform = platformMQTT
	}
	if c.MinTemp == 0 && c.MaxTemp == 0 {
		c.MinTemp = defaultMinTemp
		c.MaxTemp = defaultMaxTemp
	}
	if c.TargetTemp == 0 {
		c.TargetTemp = defaultTargetTemp
	}
	if c.TempStep == 0 {
		c.TempStep = defaultTempStep
	}
	if c.Thresholds == (Thresholds{}) {
		c.Thresholds = DefaultThresholds
	}
	if c.CommandTimeout == 0 {
		c.CommandTimeout = defaultCommandTimeout
	}
	if c.MQTT.Prefix == "" {
		c.MQTT.Prefix = "fancoil/" + c.Name
	}
	if c.HomeAssistant.PollInterval == 0 {
		c.HomeAssistant.PollInterval = time.Second * 5
	}
	if c.Relay.Baud == 0 {
		c.Relay.Baud = 9600
	}
	if c.Relay.Address == 0 {
		c.Relay.Address = 1
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

func (c *Config) validate() error {
	var errs []error

	if c.Sensor == "" {
		errs = append(errs, errors.New("sensor is required"))
	}
	if c.Fan == "" {
		errs = append(errs, errors.New("fan is required"))
	}
	if c.MinTemp >= c.MaxTemp {
		errs = append(errs, fmt.Errorf("min_temp %.1f must be below max_temp %.1f", c.MinTemp, c.MaxTemp))
	}
	if c.TempStep <= 0 {
		errs = append(errs, fmt.Errorf("temp_step must be positive"))
	}
	if err := c.Thresholds.validate(); err != nil {
		errs = append(errs, err)
	}

	switch c.Platform {
	case platformMQTT:
		if c.MQTT.URL == "" {
			errs = append(errs, errors.New("mqtt.url is required for the mqtt platform"))
		}
	case platformHomeAssistant:
		if c.HomeAssistant.URL == "" {
			errs = append(errs, errors.New("homeassistant.url is required for the homeassistant platform"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown platform %q", c.Platform))
	}

	if c.Relay.Device != "" {
		for _, id := range append(append([]string{}, c.CoolingSwitches...), c.HeatingSwitches...) {
			ch, ok := c.Relay.Channels[id]
			if !ok {
				errs = append(errs, fmt.Errorf("relay has no channel for switch %q", id))
			} else if ch >= relayChannels {
				errs = append(errs, fmt.Errorf("relay channel %d for switch %q out of range", ch, id))
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}

	if c.TargetTemp < c.MinTemp || c.TargetTemp > c.MaxTemp {
		log.Warnf("target_temp %.1f outside [%.1f, %.1f], clamping", c.TargetTemp, c.MinTemp, c.MaxTemp)
		c.TargetTemp = clamp(c.TargetTemp, c.MinTemp, c.MaxTemp)
	}
	return nil
}

func (c *Config) settings() Settings {
	return Settings{
		MinTemp:    c.MinTemp,
		MaxTemp:    c.MaxTemp,
		TempStep:   c.TempStep,
		Thresholds: c.Thresholds,
		Modes:      availableModes(c.CoolingSwitches, c.HeatingSwitches),
		Equipment: Equipment{
			Cooling: len(c.CoolingSwitches) > 0,
			Heating: len(c.HeatingSwitches) > 0,
		},
	}
}

func configureLogging(lc LogConfig, debug bool) error {
	level, err := log.ParseLevel(lc.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	if debug {
		level = log.DebugLevel
	}
	log.SetLevel(level)

	switch lc.Format {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	case "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("invalid log format %q", lc.Format)
	}
	return nil
}
