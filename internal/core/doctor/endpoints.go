package doctor

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
)

const dialTimeout = 3 * time.Second

// dialFunc opens a TCP connection to addr. Package-level variable to allow
// test overrides.
var dialFunc = func(ctx context.Context, addr string) (net.Conn, error) {
	d := net.Dialer{Timeout: dialTimeout}
	return d.DialContext(ctx, "tcp", addr)
}

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
	"nats":  "4222",
	"tls":   "4222",
	"redis": "6379",
}

// Endpoint is a configured remote service.
type Endpoint struct {
	Label string
	URL   string
	// Unset explains what happens when URL is empty. Optional endpoints
	// pass when unset, required ones warn.
	Unset    string
	Optional bool
}

// EndpointsCheck verifies that configured services accept TCP connections.
type EndpointsCheck struct {
	endpoints []Endpoint
}

// NewEndpointsCheck creates a new endpoints check.
func NewEndpointsCheck(endpoints ...Endpoint) *EndpointsCheck {
	return &EndpointsCheck{endpoints: endpoints}
}

func (c *EndpointsCheck) Name() string {
	return "Services"
}

func (c *EndpointsCheck) Run(ctx context.Context) Result {
	result := Result{Name: c.Name()}

	for _, ep := range c.endpoints {
		if ep.URL == "" {
			status := StatusWarn
			if ep.Optional {
				status = StatusPass
			}
			result.Items = append(result.Items, CheckItem{Label: ep.Label, Status: status, Detail: ep.Unset})
			continue
		}

		addr, err := dialAddr(ep.URL)
		if err != nil {
			result.Items = append(result.Items, CheckItem{Label: ep.Label, Status: StatusFail, Detail: err.Error()})
			continue
		}

		conn, err := dialFunc(ctx, addr)
		if err != nil {
			result.Items = append(result.Items, CheckItem{
				Label:  ep.Label,
				Status: StatusFail,
				Detail: fmt.Sprintf("%s unreachable: %v", addr, err),
			})
			continue
		}
		_ = conn.Close()

		result.Items = append(result.Items, CheckItem{Label: ep.Label, Status: StatusPass, Detail: addr})
	}

	return result
}

// dialAddr returns host:port for the first server in rawURL, filling the
// scheme's default port.
func dialAddr(rawURL string) (string, error) {
	first, _, _ := strings.Cut(rawURL, ",")
	u, err := url.Parse(strings.TrimSpace(first))
	if err != nil {
		return "", fmt.Errorf("invalid url: %w", err)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("invalid url %q: missing host", rawURL)
	}

	port := u.Port()
	if port == "" {
		var ok bool
		if port, ok = defaultPorts[u.Scheme]; !ok {
			return "", fmt.Errorf("invalid url %q: no port for scheme %q", rawURL, u.Scheme)
		}
	}
	return net.JoinHostPort(u.Hostname(), port), nil
}
