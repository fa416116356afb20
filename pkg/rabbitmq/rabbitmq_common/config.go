package rabbitmq_common

import (
	"fmt"
	"strings"
)

// Config is the part shared by publishers and consumers.
type Config struct {
	URL string
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.URL) == "" {
		return fmt.Errorf("rabbitmq: URL is required")
	}
	if !strings.HasPrefix(c.URL, "amqp://") && !strings.HasPrefix(c.URL, "amqps://") {
		return fmt.Errorf("rabbitmq: URL must use the amqp or amqps scheme")
	}
	return nil
}
