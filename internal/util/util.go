package util

import (
	"github.com/berfenger/eta2mqtt/internal/config"

	"go.uber.org/zap"
)

func LoadTestConfig() config.Config {
	return config.Config{
		LogLevel: zap.DebugLevel,
		ETA: config.ETAConfig{
			Host:                 "-.-.-.-",
			Port:                 8080,
			RequestTimeoutMillis: 2000,
		},
		MQTT: config.MQTTConfig{
			Host:              "localhost",
			Port:              1883,
			BaseTopic:         "eta2mqtt",
			HADiscoveryEnable: true,
			HADiscoveryTopic:  "homeassistant",
		},
		MonitorConfig: config.MonitorConfig{
			PollIntervalMillis: 1000,
		},
		Port: 8080,
	}
}
