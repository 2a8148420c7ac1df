// Package config loads the demo program's settings from TOML.
package config

import (
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/toolkits/pkg/logger"
)

type Config struct {
	Log     LogConfig
	Memory  MemoryConfig
	Journal JournalConfig
	Kafka   KafkaConfig
	GRPC    GRPCConfig
}

type LogConfig struct {
	Type  string // stderr/file/syslog
	Level string // DEBUG/INFO/WARNING/ERROR
	File  string
}

type MemoryConfig struct {
	RetireRingSize uint64
}

type JournalConfig struct {
	Dir      string
	InMemory bool
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
	// Client selects the producer library: "sarama" or "kafka-go".
	Client     string
	Interval   string
	MaxRetries uint32
}

type GRPCConfig struct {
	Targets []string
}

// Load reads path and fills unset fields with defaults. An empty path
// yields the defaults alone.
func Load(path string) (Config, error) {
	var c Config
	if path != "" {
		if _, err := toml.DecodeFile(path, &c); err != nil {
			return Config{}, errors.Wrapf(err, "load config %s", path)
		}
	}
	c.applyDefaults()
	if n := c.Memory.RetireRingSize; n&(n-1) != 0 {
		return Config{}, errors.Errorf("memory retire ring size %d is not a power of two", n)
	}
	if _, err := c.Kafka.BroadcastInterval(); err != nil {
		return Config{}, err
	}
	switch c.Kafka.Client {
	case "sarama", "kafka-go":
	default:
		return Config{}, errors.Errorf("unknown kafka client %q", c.Kafka.Client)
	}
	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Log.Type == "" {
		c.Log.Type = "stderr"
	}
	if c.Log.Level == "" {
		c.Log.Level = "INFO"
	}
	if c.Memory.RetireRingSize == 0 {
		c.Memory.RetireRingSize = 1 << 10
	}
	if c.Journal.Dir == "" {
		c.Journal.Dir = "./journal"
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "releases"
	}
	if c.Kafka.Client == "" {
		c.Kafka.Client = "sarama"
	}
	if c.Kafka.Interval == "" {
		c.Kafka.Interval = "250ms"
	}
	if c.Kafka.MaxRetries == 0 {
		c.Kafka.MaxRetries = 5
	}
}

func (k KafkaConfig) BroadcastInterval() (time.Duration, error) {
	d, err := time.ParseDuration(k.Interval)
	if err != nil {
		return 0, errors.Wrapf(err, "kafka interval %q", k.Interval)
	}
	return d, nil
}

// Logger converts the log section for logger.Init.
func (l LogConfig) Logger() logger.LogConfig {
	return logger.LogConfig{
		Type:            l.Type,
		Level:           l.Level,
		FileName:        l.File,
		FileRotateCount: 5,
		FileRotateSize:  64 << 20,
	}
}
