package config

import "time"

type Kafka struct {
	Addresses []string `env:"KAFKA_ADDRESSES,required" envSeparator:","`
	Group     string   `env:"KAFKA_GROUP" envDefault:"lfs"`
	ClientID  string   `env:"KAFKA_CLIENT_ID" envDefault:"lfs"`
	// ProduceTimeout bounds a single produce including broker retries.
	ProduceTimeout time.Duration `env:"KAFKA_PRODUCE_TIMEOUT" envDefault:"10s"`
}
