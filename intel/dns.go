package intel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/miekg/dns"
)

// DNSResolver answers existence questions with direct queries against a
// recursive nameserver, falling back to the next server on transport errors.
type DNSResolver struct {
	Servers []string
	Client  *dns.Client
}

func NewDNSResolver(timeout time.Duration, servers ...string) *DNSResolver {
	if len(servers) == 0 {
		servers = []string{"8.8.8.8:53", "1.1.1.1:53"}
	}
	return &DNSResolver{
		Servers: servers,
		Client:  &dns.Client{Timeout: timeout},
	}
}

func (r *DNSResolver) exchange(ctx context.Context, name string, qtype uint16) (*dns.Msg, error) {
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), qtype)
	msg.RecursionDesired = true

	var errs []error
	for _, server := range r.Servers {
		resp, _, err := r.Client.ExchangeContext(ctx, msg, server)
		if err == nil {
			return resp, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", server, err))
		if ctx.Err() != nil {
			break
		}
	}
	return nil, serviceErr("dns", 0, errors.Join(errs...))
}

// HasARecords reports whether domain resolves to at least one IPv4 address.
// NXDOMAIN and empty answers are a definitive false.
func (r *DNSResolver) HasARecords(ctx context.Context, domain string) (bool, error) {
	resp, err := r.exchange(ctx, domain, dns.TypeA)
	if err != nil {
		return false, err
	}
	switch resp.Rcode {
	case dns.RcodeSuccess:
	case dns.RcodeNameError:
		return false, nil
	default:
		return false, serviceErr("dns", 0, fmt.Errorf("rcode %s", dns.RcodeToString[resp.Rcode]))
	}
	for _, ans := range resp.Answer {
		if _, ok := ans.(*dns.A); ok {
			return true, nil
		}
	}
	return false, nil
}

// DNSExistence is a registration source that only confirms a domain is
// delegated. It never knows a creation date.
type DNSExistence struct {
	Resolver *DNSResolver
}

func (d *DNSExistence) Name() string { return "dns" }

func (d *DNSExistence) Lookup(ctx context.Context, domain string) (Registration, error) {
	resp, err := d.Resolver.exchange(ctx, domain, dns.TypeNS)
	if err != nil {
		return Registration{}, err
	}
	switch resp.Rcode {
	case dns.RcodeNameError:
		return Registration{}, ErrNotFound
	case dns.RcodeSuccess:
		// Delegated zones answer NS directly; some resolvers put it in authority.
		if len(resp.Answer) > 0 || len(resp.Ns) > 0 {
			return Registration{Found: true}, nil
		}
		return Registration{}, serviceErr("dns", 0, errors.New("empty NS answer"))
	default:
		return Registration{}, serviceErr("dns", 0, fmt.Errorf("rcode %s", dns.RcodeToString[resp.Rcode]))
	}
}
