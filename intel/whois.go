package intel

import (
	"context"
	"errors"
	"strings"
	"time"

	whois "github.com/likexian/whois"
	parser "github.com/likexian/whois-parser"
	"golang.org/x/net/publicsuffix"
)

// Whois is a registration source backed by raw WHOIS over port 43.
type Whois struct {
	query func(domain string) (string, error)
}

func NewWhois(timeout time.Duration) *Whois {
	c := whois.NewClient().SetTimeout(timeout)
	return &Whois{
		query: func(domain string) (string, error) { return c.Whois(domain) },
	}
}

func (w *Whois) Name() string { return "whois" }

// Lookup queries WHOIS for domain, retrying the parent domain when the record
// cannot be parsed for a subdomain. Retries stop at the registrable domain and
// never reach a public suffix.
func (w *Whois) Lookup(ctx context.Context, domain string) (Registration, error) {
	type reply struct {
		raw string
		err error
	}
	ch := make(chan reply, 1)
	go func() {
		raw, err := w.query(domain)
		ch <- reply{raw, err}
	}()

	var r reply
	select {
	case <-ctx.Done():
		return Registration{}, serviceErr("whois", 0, ctx.Err())
	case r = <-ch:
	}
	if r.err != nil {
		return Registration{}, serviceErr("whois", 0, r.err)
	}

	info, err := parser.Parse(r.raw)
	if errors.Is(err, parser.ErrNotFoundDomain) {
		return Registration{}, ErrNotFound
	}
	if err != nil || info.Domain == nil {
		if parent, ok := parentDomain(domain); ok {
			return w.Lookup(ctx, parent)
		}
		if err == nil {
			err = errors.New("no domain section in response")
		}
		return Registration{}, serviceErr("whois", 0, err)
	}

	reg := Registration{Found: true}
	if created, ok := parseDate(strings.TrimSpace(info.Domain.CreatedDate)); ok {
		reg.Created = created
	}
	return reg, nil
}

// parentDomain strips the leftmost label while the result is still at or below
// the registrable domain.
func parentDomain(domain string) (string, bool) {
	registrable, err := publicsuffix.EffectiveTLDPlusOne(domain)
	if err != nil || registrable == domain {
		return "", false
	}
	_, parent, ok := strings.Cut(domain, ".")
	return parent, ok
}
