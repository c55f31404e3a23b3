package environ

import (
	"context"
	"errors"
)

// ChainProvider asks each provider in order and returns the first hit.
type ChainProvider struct {
	providers []Provider
}

func NewChain(providers ...Provider) *ChainProvider {
	return &ChainProvider{providers: providers}
}

func (c *ChainProvider) UserID(ctx context.Context) (string, bool) {
	for _, p := range c.providers {
		if id, ok := p.UserID(ctx); ok {
			return id, true
		}
	}
	return "", false
}

func (c *ChainProvider) Var(ctx context.Context, name string) (any, bool) {
	for _, p := range c.providers {
		if v, ok := p.Var(ctx, name); ok {
			return v, true
		}
	}
	return nil, false
}

// Close closes every provider in the chain that holds resources.
func (c *ChainProvider) Close() error {
	var errs []error
	for _, p := range c.providers {
		if err := Close(p); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
