package config

import (
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Collector is the Graphite plaintext endpoint metrics are delivered to.
type Collector struct {
	Host      string `mapstructure:"host" validate:"required,collectorHost"`
	Port      int    `mapstructure:"port" validate:"min=1,max=65535"`
	IOTimeout int    `mapstructure:"io_timeout" validate:"gt=0"`
}

func (c Collector) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c Collector) GetIOTimeout() time.Duration {
	return time.Duration(c.IOTimeout) * time.Second
}

func validateCollectorHost(fl validator.FieldLevel) bool {
	host := fl.Field().String()
	if strings.ContainsAny(host, " /:") && net.ParseIP(host) == nil {
		return false
	}
	return host != ""
}
