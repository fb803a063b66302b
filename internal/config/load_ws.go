package config

import (
	"errors"
	"time"
)

// WSConfig configures the websocket relay (cmd/ws). It reads the same broker
// and logging variables as the API.
type WSConfig struct {
	Broker
	Logging

	Addr              string // :8090
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
	ConsumerPrefetch  int // QoS do consumidor
	ClientBuffer      int // mensagens pendentes por socket antes de derrubar o cliente
}

func LoadWSConfig() *WSConfig {
	return &WSConfig{
		Broker:            loadBroker(),
		Logging:           loadLogging(),
		Addr:              getenv("WS_ADDR", ":8090"),
		ReadHeaderTimeout: parseDuration("WS_READ_HEADER_TIMEOUT", 5*time.Second),
		ShutdownTimeout:   parseDuration("WS_SHUTDOWN_TIMEOUT", 10*time.Second),
		ConsumerPrefetch:  parseInt("WS_PREFETCH", 50),
		ClientBuffer:      parseInt("WS_CLIENT_BUFFER", 256),
	}
}

// Validate requires a bounded prefetch (0 would mean unlimited in AMQP) and a
// client buffer of at least one message.
func (c *WSConfig) Validate() error {
	var errs []error
	if c.ConsumerPrefetch < 1 {
		errs = append(errs, errors.New("WS_PREFETCH must be >= 1"))
	}
	if c.ClientBuffer < 1 {
		errs = append(errs, errors.New("WS_CLIENT_BUFFER must be >= 1"))
	}
	return errors.Join(errs...)
}
