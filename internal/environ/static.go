package environ

import "context"

// StaticProvider serves a fixed user identity and variable snapshot taken
// from config.
type StaticProvider struct {
	user string
	vars map[string]any
}

func NewStaticProvider(user string, vars map[string]any) *StaticProvider {
	cp := make(map[string]any, len(vars))
	for k, v := range vars {
		cp[k] = v
	}
	return &StaticProvider{user: user, vars: cp}
}

func (p *StaticProvider) UserID(context.Context) (string, bool) {
	return p.user, p.user != ""
}

func (p *StaticProvider) Var(_ context.Context, name string) (any, bool) {
	v, ok := p.vars[name]
	return v, ok
}
