package environ

import (
	"fmt"
	"os"

	"logtarget/internal/config"
)

// FromConfig builds a Provider from the environment section of config.
// Returns Nop if nothing is configured.
func FromConfig(cfg config.EnvironmentConfig) (Provider, error) {
	var providers []Provider

	if cfg.User != "" || len(cfg.Vars) > 0 {
		providers = append(providers, NewStaticProvider(cfg.User, cfg.Vars))
	}

	if cfg.OSEnv || cfg.UserEnv != "" {
		providers = append(providers, &OSEnvProvider{UserVar: cfg.UserEnv})
	}

	if cfg.Docker {
		id := cfg.Container
		if id == "" {
			id, _ = os.Hostname()
		}
		dp, err := NewDockerProvider(id)
		if err != nil {
			return nil, fmt.Errorf("environ: docker: %w", err)
		}
		providers = append(providers, dp)
	}

	if len(providers) == 0 {
		return Nop{}, nil
	}

	var p Provider
	if len(providers) == 1 {
		p = providers[0]
	} else {
		p = NewChain(providers...)
	}

	if cfg.Cache.TTL <= 0 {
		return p, nil
	}
	return NewCachingProvider(p, cfg.Cache.TTL, cfg.Cache.MaxSize), nil
}
