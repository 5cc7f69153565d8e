package config

// Kafka is optional. With no addresses, change events are neither published nor consumed.
type Kafka struct {
	Addresses []string `env:"KAFKA_ADDRESSES" envSeparator:","`
	Group     string   `env:"KAFKA_GROUP" envDefault:"catalog-admin"`
	Topic     string   `env:"KAFKA_TOPIC" envDefault:"product.changed"`
}

func (k Kafka) Enabled() bool {
	return len(k.Addresses) > 0
}
