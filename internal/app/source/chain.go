package source

import (
	"context"

	zlog "github.com/rs/zerolog/log"
)

// Chain selects a provider for an identifier.
// When several providers can handle an identifier the last one registered wins.
type Chain struct {
	providers []Provider
}

// NewChain creates a new provider chain.
func NewChain(providers ...Provider) *Chain {
	return &Chain{
		providers: providers,
	}
}

// Select returns the provider responsible for the identifier.
func (c *Chain) Select(identifier string) (Provider, error) {
	var selected Provider
	for i, p := range c.providers {
		if p.CanHandle(identifier) {
			zlog.Debug().Msgf("provider can handle identifier: index=%d name=%s identifier=%s", i+1, p.Name(), identifier)
			selected = p
		}
	}

	if selected == nil {
		return nil, unknownSource("no demo source can handle %q", identifier)
	}
	return selected, nil
}

// Fetch selects a provider and fetches the identifier from it.
func (c *Chain) Fetch(ctx context.Context, identifier string) (Result, error) {
	p, err := c.Select(identifier)
	if err != nil {
		return Result{}, err
	}

	result, err := p.Fetch(ctx, identifier)
	if err != nil {
		return Result{}, err
	}

	zlog.Info().Msgf("fetched demo source: provider=%s identifier=%s kind=%s", p.Name(), identifier, result.Kind)
	return result, nil
}

// Providers returns the registered providers in order.
func (c *Chain) Providers() []Provider {
	return c.providers
}
