package config

type Auth struct {
	// StaticUsers holds "email:password" pairs accepted by the static credential verifier.
	StaticUsers []string `env:"AUTH_STATIC_USERS" envSeparator:"," envDefault:"john.doe@example.com:password123"`
}
