package commands

import (
	"context"
	"errors"
	"testing"

	"plugin-harvester/cmd/harvest/globals"
	"plugin-harvester/internal/components/telemetry"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type shutdownRecorder struct {
	ended    int
	shutdown bool
}

func (p *shutdownRecorder) OnStart(context.Context, sdktrace.ReadWriteSpan) {}
func (p *shutdownRecorder) OnEnd(sdktrace.ReadOnlySpan)                   { p.ended++ }
func (p *shutdownRecorder) ForceFlush(context.Context) error              { return nil }
func (p *shutdownRecorder) Shutdown(context.Context) error {
	p.shutdown = true
	return nil
}

func TestShutdownAfterFailedCommand(t *testing.T) {
	processor := &shutdownRecorder{}
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(processor))

	root := &cobra.Command{
		Use:           "test",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(globals.Set(cmd.Context(), &globals.Value{
				Tel:  telemetry.NewRecorder(),
				Otel: telemetry.Otel{TracerProvider: provider},
			}))
			return nil
		},
	}
	root.AddCommand(&cobra.Command{
		Use: "fail",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, span := provider.Tracer("test").Start(cmd.Context(), "crawl")
			span.End()
			return errors.New("crawl failed")
		},
	})
	root.SetArgs([]string{"fail"})

	cmd, err := root.ExecuteContextC(context.Background())
	require.Error(t, err)

	err = shutdown(cmd, err)
	require.EqualError(t, err, "crawl failed")
	require.True(t, processor.shutdown)
	require.Equal(t, 1, processor.ended)
}

func TestShutdownWithoutSetup(t *testing.T) {
	require.NoError(t, shutdown(nil, nil))
	require.NoError(t, shutdown(&cobra.Command{}, nil))

	failure := errors.New("unknown flag")
	require.Equal(t, failure, shutdown(&cobra.Command{}, failure))
}
