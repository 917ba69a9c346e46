package sink

import (
	"context"

	"plugin-harvester/internal/fieldmap"
)

// Sink is an output for flattened records. Each Write replaces whatever the sink
// held before.
type Sink interface {
	Name() string
	Write(ctx context.Context, columns []string, rows []fieldmap.FlatRecord) error
}
