package feed

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"time"
)

const DefaultProbeTimeout = 3 * time.Second

// Prober checks that the endpoint is reachable at all before a load.
type Prober interface {
	Probe(ctx context.Context, endpoint string) error
}

// ProberFunc adapts a plain function to Prober.
type ProberFunc func(ctx context.Context, endpoint string) error

func (f ProberFunc) Probe(ctx context.Context, endpoint string) error { return f(ctx, endpoint) }

// HostResolver is the part of *net.Resolver the prober needs.
type HostResolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// DNSProber treats a failed lookup of the endpoint host as being offline.
type DNSProber struct {
	resolver HostResolver
	timeout  time.Duration
}

// NewDNSProber returns a prober using the system resolver.
func NewDNSProber(timeout time.Duration) *DNSProber {
	return NewDNSProberWithResolver(net.DefaultResolver, timeout)
}

func NewDNSProberWithResolver(resolver HostResolver, timeout time.Duration) *DNSProber {
	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}
	return &DNSProber{resolver: resolver, timeout: timeout}
}

// Probe returns ErrOffline when the host cannot be resolved. Unparseable
// endpoints pass so the fetcher can report them as invalid.
func (p *DNSProber) Probe(ctx context.Context, endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil || u.Hostname() == "" {
		return nil
	}
	host := u.Hostname()
	if net.ParseIP(host) != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if _, err := p.resolver.LookupHost(ctx, host); err != nil {
		return fmt.Errorf("%w: resolve %s: %v", ErrOffline, host, err)
	}
	return nil
}
