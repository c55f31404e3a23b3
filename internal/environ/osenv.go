package environ

import (
	"context"
	"os"
)

// OSEnvProvider reads variables from the process environment. The user
// identity comes from the variable named by UserVar, if any.
type OSEnvProvider struct {
	UserVar string
}

func (p *OSEnvProvider) UserID(context.Context) (string, bool) {
	if p.UserVar == "" {
		return "", false
	}
	v := os.Getenv(p.UserVar)
	return v, v != ""
}

func (p *OSEnvProvider) Var(_ context.Context, name string) (any, bool) {
	return os.LookupEnv(name)
}
