package dnsadapter

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// Resolver looks up A records, then AAAA, against one nameserver. Without a
// nameserver it uses the system resolver, which honors /etc/hosts and search
// domains.
type Resolver struct {
	nameserver string
	client     *dns.Client
	timeout    time.Duration
}

// New returns a resolver for server ("host" or "host:port"). An empty server
// returns System.
func New(server string, timeout time.Duration) *Resolver {
	if server == "" {
		return System(timeout)
	}
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ns := server
	if _, _, err := net.SplitHostPort(ns); err != nil {
		ns = net.JoinHostPort(ns, "53")
	}
	return &Resolver{
		nameserver: ns,
		timeout:    timeout,
		client:     &dns.Client{Net: "udp", Timeout: timeout},
	}
}

// System returns a resolver backed only by net.DefaultResolver.
func System(timeout time.Duration) *Resolver {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Resolver{timeout: timeout}
}

// Resolve returns one address for host. Literal IPs resolve to themselves.
func (r *Resolver) Resolve(ctx context.Context, host string) (string, error) {
	host = strings.TrimSuffix(strings.TrimSpace(host), ".")
	if host == "" {
		return "", fmt.Errorf("resolve: empty host")
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.String(), nil
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if r.nameserver == "" {
		return r.system(ctx, host)
	}
	var lastErr error
	for _, qt := range []uint16{dns.TypeA, dns.TypeAAAA} {
		ip, err := r.exchange(ctx, host, qt)
		if err != nil {
			lastErr = err
			continue
		}
		if ip != "" {
			return ip, nil
		}
	}
	if lastErr != nil {
		return "", lastErr
	}
	return "", fmt.Errorf("resolve %s: no address records", host)
}

func (r *Resolver) exchange(ctx context.Context, host string, qt uint16) (string, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(host), qt)
	msg.RecursionDesired = true
	resp, _, err := r.client.ExchangeContext(ctx, msg, r.nameserver)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", host, err)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return "", fmt.Errorf("resolve %s: %s", host, dns.RcodeToString[resp.Rcode])
	}
	for _, ans := range resp.Answer {
		switch rr := ans.(type) {
		case *dns.A:
			return rr.A.String(), nil
		case *dns.AAAA:
			return rr.AAAA.String(), nil
		}
	}
	return "", nil
}

func (r *Resolver) system(ctx context.Context, host string) (string, error) {
	for _, network := range []string{"ip4", "ip"} {
		addrs, err := net.DefaultResolver.LookupIP(ctx, network, host)
		if err == nil && len(addrs) > 0 {
			return addrs[0].String(), nil
		}
		if ctx.Err() != nil {
			return "", fmt.Errorf("resolve %s: %w", host, ctx.Err())
		}
	}
	return "", fmt.Errorf("resolve %s: no address records", host)
}
