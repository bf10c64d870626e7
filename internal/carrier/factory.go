package carrier

import (
	"fmt"

	"smsrelay/internal/config"
	"smsrelay/internal/logger"
)

// New builds the configured carrier, wrapped in a circuit breaker when one
// is enabled.
func New(cfg config.CarrierConfig, cbCfg config.CircuitBreakerConfig, log logger.Logger) (Carrier, error) {
	var c Carrier

	switch cfg.Type {
	case "http":
		if cfg.URL == "" {
			return nil, fmt.Errorf("carrier url is required for http carrier")
		}
		c = newHTTPCarrier(cfg, log)
	case "noop", "":
		c = &noopCarrier{logger: log}
	default:
		return nil, fmt.Errorf("unsupported carrier type: %s", cfg.Type)
	}

	if cbCfg.Enabled {
		c = withBreaker(c, cbCfg)
	}

	return c, nil
}
