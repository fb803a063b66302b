package config

import (
	"fmt"
	"time"
)

const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

// Config is the API process configuration (cmd/api).
type Config struct {
	Broker
	Logging

	Port              string
	StorageDriver     string // mongo | memory
	MongoURI          string
	MongoDB           string
	EventsEnabled     bool
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	RequestTimeout    time.Duration
}

func Load() *Config {
	return &Config{
		Broker:            loadBroker(),
		Logging:           loadLogging(),
		Port:              getenvAny("8080", "PORT", "API_PORT"),
		StorageDriver:     getenv("STORAGE_DRIVER", StorageMongo),
		MongoURI:          getenvAny("mongodb://localhost:27017", "MONGO_URI"),
		MongoDB:           getenv("MONGO_DB", "empresasdb"),
		EventsEnabled:     parseBool("EVENTS_ENABLED", true),
		ReadHeaderTimeout: parseDuration("READ_HEADER_TIMEOUT", 5*time.Second),
		ShutdownTimeout:   parseDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		RequestTimeout:    parseDuration("REQUEST_TIMEOUT", 5*time.Second),
	}
}

func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageMongo, StorageMemory:
		return nil
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StorageMongo, StorageMemory, c.StorageDriver)
	}
}
