package httpx

import (
	"net"
	"net/http"
	"time"
)

const DefaultTimeout = 10 * time.Second

var defaultClient = New(DefaultTimeout)

// New returns a client whose every request is capped at timeout.
func New(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			MaxIdleConns:        100,
			MaxConnsPerHost:     100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

func Client() *http.Client { return defaultClient }
