// Package environ supplies late-bound reads of ambient host state: the
// current user identity and named variables.
package environ

import (
	"context"
	"io"
)

// Provider exposes host environment state to the context enricher.
type Provider interface {
	UserID(ctx context.Context) (string, bool)
	Var(ctx context.Context, name string) (any, bool)
}

// Nop knows nothing. It is the default when no provider is configured.
type Nop struct{}

func (Nop) UserID(context.Context) (string, bool) { return "", false }
func (Nop) Var(context.Context, string) (any, bool) { return nil, false }

// Close releases p if it holds resources, such as a Docker client.
func Close(p Provider) error {
	if c, ok := p.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
