package intel

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// Registration is what a registry-style source knows about a domain.
type Registration struct {
	Domain  string    `json:"domain"`
	Found   bool      `json:"found"`
	Created time.Time `json:"created,omitempty"`
	Source  string    `json:"source"`
}

// Source is one registration backend. Lookup returns ErrNotFound when the
// source is certain the domain does not exist.
type Source interface {
	Name() string
	Lookup(ctx context.Context, domain string) (Registration, error)
}

// RegistrationChain asks each source in order until one gives a usable answer.
type RegistrationChain struct {
	Sources []Source
	Logger  *zap.Logger
}

// Registration returns the first answer carrying a creation date. A source that
// confirms existence without a date is remembered and returned if nothing
// better turns up. A "not registered" answer ends the walk with Found=false,
// unless an earlier source already confirmed existence; then it is ignored.
// An error is returned only when every source failed.
func (c *RegistrationChain) Registration(ctx context.Context, domain string) (Registration, error) {
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		undated *Registration
		errs    []error
	)
	for _, src := range c.Sources {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}

		reg, err := src.Lookup(ctx, domain)
		switch {
		case errors.Is(err, ErrNotFound):
			if undated != nil {
				logger.Debug("ignoring not-found after confirmed existence",
					zap.String("domain", domain), zap.String("source", src.Name()), zap.String("confirmed_by", undated.Source))
				continue
			}
			logger.Debug("domain not registered", zap.String("domain", domain), zap.String("source", src.Name()))
			return Registration{Domain: domain, Found: false, Source: src.Name()}, nil
		case err != nil:
			logger.Debug("registration source failed", zap.String("domain", domain), zap.String("source", src.Name()), zap.Error(err))
			errs = append(errs, err)
			continue
		}

		reg.Domain = domain
		reg.Source = src.Name()
		if !reg.Found {
			if undated != nil {
				continue
			}
			return reg, nil
		}
		if !reg.Created.IsZero() {
			return reg, nil
		}
		if undated == nil {
			undated = &reg
		}
	}

	if undated != nil {
		return *undated, nil
	}
	if len(errs) == 0 {
		return Registration{}, errors.New("no registration sources configured")
	}
	return Registration{}, errors.Join(errs...)
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-Jan-2006",
	"2006.01.02",
}

// parseDate tries the layouts registries commonly use.
func parseDate(s string) (time.Time, bool) {
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
