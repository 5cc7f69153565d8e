package config

import "time"

// Store configures the document store. URI is deliberately optional: a missing or
// invalid value surfaces as a connection error on first use, not at startup.
type Store struct {
	URI            string        `env:"STORE_URI"`
	Database       string        `env:"STORE_DATABASE" envDefault:"catalog"`
	ConnectTimeout time.Duration `env:"STORE_CONNECT_TIMEOUT" envDefault:"10s"`
	MaxPoolSize    uint32        `env:"STORE_MAX_POOL_SIZE" envDefault:"20"`
}
