package config

import (
	"fmt"

	"plugin-harvester/internal/components/telemetry"
	"plugin-harvester/internal/fieldmap"
	"plugin-harvester/internal/marketplace"
	"plugin-harvester/internal/sink"
	"plugin-harvester/lib/configutil"
)

const DefaultPath = "harvest.json5"

type CrawlConfig struct {
	MaxPages int    `json:"max_pages"`
	PageSize int    `json:"page_size"`
	Dir      string `json:"dir"`
}

type TransformConfig struct {
	CSV   string `json:"csv"`
	DB    string `json:"db"`
	Table string `json:"table"`
	// Timezone is the IANA zone dates are rendered in, empty means UTC.
	Timezone string                  `json:"timezone"`
	Fields   []fieldmap.ColumnConfig `json:"fields"`
}

type Config struct {
	Marketplace marketplace.Config   `json:"marketplace"`
	Crawl       CrawlConfig          `json:"crawl"`
	Transform   TransformConfig      `json:"transform"`
	Otlp        telemetry.OtlpConfig `json:"otlp"`
}

func Default() Config {
	return Config{
		Marketplace: marketplace.DefaultConfig(),
		Crawl: CrawlConfig{
			MaxPages: 100,
			PageSize: 100,
			Dir:      "plugins",
		},
		Transform: TransformConfig{
			CSV:    "plugins.csv",
			DB:     "plugins.db",
			Table:  sink.DefaultTable,
			Fields: fieldmap.Default().Config(),
		},
	}
}

// Load reads the configuration at path along with its local override, anything the
// files leave out falls back to Default. No file at all means Default.
func Load(path string) (Config, error) {
	cfg, err := configutil.ReadConfigWithDefaults(path, Default())
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return cfg, nil
}

// FieldMap builds the field map described by the configuration.
func (c Config) FieldMap() (fieldmap.FieldMap, error) {
	return fieldmap.FromConfig(c.Transform.Fields)
}
