package extract

import "fmt"

// DefaultModelName is the table name given to operations invoked on a bare
// this/self receiver when no better name is available.
const DefaultModelName = "model"

// ModelContext describes where a this/self-receiver operation was found.
type ModelContext struct {
	File  string
	Class string
}

// ModelResolver names the table behind an ORM model's own receiver.
type ModelResolver interface {
	ResolveModel(ctx ModelContext) string
}

// PlaceholderResolver resolves every model receiver to a fixed name.
type PlaceholderResolver struct {
	Name string
}

func (r PlaceholderResolver) ResolveModel(ModelContext) string {
	if r.Name == "" {
		return DefaultModelName
	}
	return r.Name
}

// ClassResolver resolves a model receiver to its enclosing class name, deferring
// to Fallback outside of a class.
type ClassResolver struct {
	Fallback ModelResolver
}

func (r ClassResolver) ResolveModel(ctx ModelContext) string {
	if ctx.Class != "" {
		return ctx.Class
	}
	if r.Fallback == nil {
		return DefaultModelName
	}
	return r.Fallback.ResolveModel(ctx)
}

// Model resolver names accepted by ResolverByName.
const (
	ResolverPlaceholder = "placeholder"
	ResolverClass       = "class"
)

// ResolverByName returns the resolver registered under name. placeholder is the
// fixed name used by the placeholder resolver and as the class resolver's fallback.
func ResolverByName(name, placeholder string) (ModelResolver, error) {
	base := PlaceholderResolver{Name: placeholder}
	switch name {
	case "", ResolverPlaceholder:
		return base, nil
	case ResolverClass:
		return ClassResolver{Fallback: base}, nil
	default:
		return nil, fmt.Errorf("unknown model resolver %q", name)
	}
}
