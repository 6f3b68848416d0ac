package source

import (
	"context"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/demobox/internal/infra/config"
)

// NewChainFromConfig creates a provider chain from configuration.
func NewChainFromConfig(ctx context.Context, cfg *config.Config) (*Chain, error) {
	if len(cfg.Sources) == 0 {
		return nil, errors.New("no demo sources configured")
	}

	var providers []Provider

	for i, scfg := range cfg.Sources {
		var provider Provider
		var err error
		zlog.Debug().Msgf("creating source provider: index=%d type=%s", i+1, scfg.Type)
		switch scfg.Type {
		case config.SourceTypeGitHub:
			provider, err = NewGitHubProvider(ctx, scfg.Settings)

		case config.SourceTypeLocal:
			provider, err = NewLocalProvider(scfg.Settings)

		default:
			return nil, errors.Newf("unsupported source type: %s (source index %d)", scfg.Type, i)
		}

		if err != nil {
			return nil, errors.Wrapf(err, "failed to create source (index %d, type %s)", i, scfg.Type)
		}

		providers = append(providers, provider)
		zlog.Info().Msgf("registered source provider: index=%d type=%s", i+1, scfg.Type)
	}

	return NewChain(providers...), nil
}
