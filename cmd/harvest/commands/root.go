package commands

import (
	"context"
	"errors"
	"fmt"

	"plugin-harvester/cmd/harvest/globals"
	"plugin-harvester/internal/components/chrono"
	"plugin-harvester/internal/components/telemetry"
	"plugin-harvester/internal/config"
	"plugin-harvester/lib/util/serviceutil"

	"github.com/spf13/cobra"
)

var configPath *string
var verbose *bool

func init() {
	configPath = rootCmd.PersistentFlags().String("config", config.DefaultPath, "The json5 configuration file, a <name>.local.json5 next to it overrides it.")
	verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log debug output, including every HTTP request.")
}

var rootCmd = &cobra.Command{
	Use:               "harvest",
	Short:             "harvest crawls the JetBrains plugin marketplace and flattens the listings into tables.",
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func setup(cmd *cobra.Command, args []string) error {
	telemetry.InitSlog(*verbose)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	tel := telemetry.SlogAPI{}
	otel, err := telemetry.SetupOtel(cmd.Context(), "harvest", cfg.Otlp)
	if err != nil {
		return fmt.Errorf("setup otel: %w", err)
	}
	if otel.MeterProvider != nil {
		telemetry.InstrumentPerfStats(cmd.Context(), tel)
	}

	clock, err := chrono.NewStandardImpl(cfg.Transform.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}

	cmd.SetContext(globals.Set(cmd.Context(), &globals.Value{
		Config: cfg,
		Tel:    tel,
		Time:   clock,
		Otel:   otel,
	}))
	return nil
}

func ExecuteContext(ctx context.Context) {
	cmd, err := rootCmd.ExecuteContextC(ctx)
	err = shutdown(cmd, err)
	if err != nil {
		serviceutil.Fatal("harvest failed", err)
	}
}

// shutdown flushes telemetry set up for cmd, it runs whether or not the command failed.
func shutdown(cmd *cobra.Command, err error) error {
	if cmd == nil {
		return err
	}
	g, ok := globals.Lookup(cmd.Context())
	if !ok {
		return err
	}
	return errors.Join(err, g.Otel.Shutdown(context.Background()))
}
