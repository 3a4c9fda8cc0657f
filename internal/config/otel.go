package config

import "errors"

// Otel configures tracing. Without a collector URL only context propagation
// is installed.
type Otel struct {
	ServiceName   string  `env:"OTEL_SERVICE_NAME" envDefault:"lfs"`
	CollectorURL  string  `env:"OTEL_COLLECTOR_URL"`
	CollectorAuth string  `env:"OTEL_COLLECTOR_AUTH"`
	Insecure      bool    `env:"OTEL_INSECURE"`
	TraceIDRatio  float64 `env:"OTEL_TRACE_ID_RATIO" envDefault:"0.1"`

	K8sPodName   string `env:"K8S_POD_NAME"`
	K8sNamespace string `env:"K8S_NAMESPACE"`
}

func (c Otel) Exporting() bool {
	return c.CollectorURL != ""
}

func (c Otel) Validate() error {
	if c.TraceIDRatio < 0 || c.TraceIDRatio > 1 {
		return errors.New("OTEL_TRACE_ID_RATIO must be between 0 and 1")
	}
	return nil
}
