package globals

import (
	"context"

	"plugin-harvester/internal/components/chrono"
	"plugin-harvester/internal/components/telemetry"
	"plugin-harvester/internal/config"
)

type key struct{}

type Value struct {
	Config config.Config
	Tel    telemetry.API
	Time   chrono.API
	Otel   telemetry.Otel
}

func Set(ctx context.Context, value *Value) context.Context {
	return context.WithValue(ctx, key{}, value)
}

func Get(ctx context.Context) *Value {
	return ctx.Value(key{}).(*Value)
}

// Lookup is Get for contexts that may not have been set up.
func Lookup(ctx context.Context) (*Value, bool) {
	if ctx == nil {
		return nil, false
	}
	value, ok := ctx.Value(key{}).(*Value)
	return value, ok && value != nil
}
