package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap/zapcore"
)

type Config struct {
	LogLevel      zapcore.Level
	ETA           ETAConfig      `mapstructure:"eta"`
	MQTT          MQTTConfig     `mapstructure:"mqtt"`
	MonitorConfig MonitorConfig  `mapstructure:"monitor"`
	Sensors       []SensorConfig `mapstructure:"sensors"`
	Port          uint           `mapstructure:"port"`
	HttpLog       bool           `mapstructure:"http_log"`
}

type ETAConfig struct {
	Host                 string
	Port                 uint
	RequestTimeoutMillis uint32 `mapstructure:"request_timeout_millis"`
	ResolveParentNames   bool   `mapstructure:"resolve_parent_names"`
}

type MonitorConfig struct {
	PollIntervalMillis uint32 `mapstructure:"poll_interval_millis"`
}

// SensorConfig overrides one entry of the built-in data point catalog.
type SensorConfig struct {
	URI         string  `mapstructure:"uri"`
	Name        string  `mapstructure:"name"`
	NameSuffix  string  `mapstructure:"name_suffix"`
	Unit        string  `mapstructure:"unit"`
	DeviceClass string  `mapstructure:"device_class"`
	StateClass  string  `mapstructure:"state_class"`
	Factor      float64 `mapstructure:"factor"`
	Decimals    *uint   `mapstructure:"decimals"`
}

type MQTTConfig struct {
	Host                   string
	Port                   int
	Username               string
	Password               string
	BaseTopic              string `mapstructure:"base_topic"`
	HADiscoveryEnable      bool   `mapstructure:"ha_discovery_enable"`
	HADiscoveryTopic       string `mapstructure:"ha_discovery_topic"`
	HADiscoveryRefreshCron string `mapstructure:"ha_discovery_refresh_cron"`
}

func CheckMQTTTopic(baseTopic string) (string, error) {
	// check and fix base topic
	lowerBaseTopic := strings.ToLower(baseTopic)
	baseTopicRegexp := regexp.MustCompile("^[a-z0-9_]+$")
	matches := baseTopicRegexp.FindAllStringSubmatch(lowerBaseTopic, 1)
	if len(matches) <= 0 {
		return "", errors.New("invalid topic. can only contain letters, numbers and underscores")
	}
	return lowerBaseTopic, nil
}

func ParseLogLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "trace", "debug":
		return zapcore.DebugLevel
	case "info":
		return zapcore.InfoLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

// Validate checks bounds and normalizes topics in place.
func Validate(cfg *Config) error {
	if strings.TrimSpace(cfg.ETA.Host) == "" {
		return errors.New("config param eta.host is required")
	}
	if cfg.ETA.Port == 0 || cfg.ETA.Port > 65535 {
		return errors.New("config param eta.port must be a positive port number")
	}

	// check and fix base topic
	baseTopic, err := CheckMQTTTopic(cfg.MQTT.BaseTopic)
	if err != nil {
		return errors.New("invalid base topic. can only contain letters, numbers and underscores")
	}
	cfg.MQTT.BaseTopic = baseTopic

	// check and fix homeassistant discovery topic
	hadBaseTopic, err := CheckMQTTTopic(cfg.MQTT.HADiscoveryTopic)
	if err != nil {
		return errors.New("invalid homeassistant discovery topic. can only contain letters, numbers and underscores")
	}
	cfg.MQTT.HADiscoveryTopic = hadBaseTopic

	if cfg.MonitorConfig.PollIntervalMillis < 1000 {
		return errors.New("config param monitor.poll_interval_millis should be >= 1000")
	}
	if cfg.ETA.RequestTimeoutMillis == 0 {
		return errors.New("config param eta.request_timeout_millis should be > 0")
	}

	for i, s := range cfg.Sensors {
		if !strings.HasPrefix(s.URI, "/") {
			return fmt.Errorf("config param sensors[%d].uri must start with '/'", i)
		}
		if s.Factor < 0 {
			return fmt.Errorf("config param sensors[%d].factor must be >= 0", i)
		}
	}
	return nil
}
