package config

import "time"

// HTTP configures the catalog API server.
type HTTP struct {
	Port     uint32 `env:"HTTP_PORT" envDefault:"8000"`
	Swagger  bool   `env:"HTTP_SWAGGER" envDefault:"true"`
	Timeouts ServerTimeouts
}

// ServerTimeouts applies to every HTTP server of a process.
type ServerTimeouts struct {
	Read     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"10s"`
	Write    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"10s"`
	Idle     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"120s"`
	Shutdown time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"5s"`
}

// OrDefault fills durations left at zero, e.g. when the struct was built by hand.
func (t ServerTimeouts) OrDefault() ServerTimeouts {
	if t.Read <= 0 {
		t.Read = 10 * time.Second
	}
	if t.Write <= 0 {
		t.Write = 10 * time.Second
	}
	if t.Idle <= 0 {
		t.Idle = 120 * time.Second
	}
	if t.Shutdown <= 0 {
		t.Shutdown = 5 * time.Second
	}
	return t
}
