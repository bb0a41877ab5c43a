package domain

import (
	"strings"
	"time"
)

// CheckTarget is one configured endpoint. Values are fixed once the
// registry is built.
type CheckTarget struct {
	Host     string
	Path     string
	Interval time.Duration
	Timeout  time.Duration
}

// URL joins host and path. A host without a scheme is probed over plain HTTP.
func (t CheckTarget) URL() string {
	host := strings.TrimRight(t.Host, "/")
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	return host + t.Path
}

func (t CheckTarget) Name() string {
	return t.Host + t.Path
}
