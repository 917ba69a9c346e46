package commands

import (
	"context"
	"log/slog"
	"time"

	"plugin-harvester/cmd/harvest/globals"
	"plugin-harvester/internal/crawler"
	"plugin-harvester/internal/marketplace"
	"plugin-harvester/internal/sink"
	"plugin-harvester/internal/snapshot"
	"plugin-harvester/internal/transformer"
)

func newStore(g *globals.Value) snapshot.Store {
	return snapshot.NewStore(g.Config.Crawl.Dir, g.Tel)
}

func crawl(ctx context.Context, g *globals.Value) (crawler.Result, error) {
	client, err := marketplace.NewClient(g.Config.Marketplace, g.Tel)
	if err != nil {
		return crawler.Result{}, err
	}
	store := newStore(g)
	err = store.Prepare()
	if err != nil {
		return crawler.Result{}, err
	}

	c := crawler.New(client, store, g.Time, g.Tel)
	result, err := c.CrawlDetailed(ctx, g.Config.Crawl.MaxPages, g.Config.Crawl.PageSize)
	slog.Info(
		"crawl finished",
		"run_id", result.RunID,
		"pages", result.Pages,
		"total", result.Total,
		"reason", result.Reason,
		"dir", store.Dir(),
		"seconds", result.Finished.Sub(result.Started).Seconds(),
	)
	return result, err
}

func newSinks(g *globals.Value) []sink.Sink {
	var sinks []sink.Sink
	if g.Config.Transform.CSV != "" {
		sinks = append(sinks, sink.NewCSV(g.Config.Transform.CSV))
	}
	if g.Config.Transform.DB != "" {
		sinks = append(sinks, sink.NewRelational(g.Config.Transform.DB, g.Config.Transform.Table))
	}
	return sinks
}

func newTransformer(g *globals.Value, sinks []sink.Sink) (transformer.Transformer, error) {
	fields, err := g.Config.FieldMap()
	if err != nil {
		return transformer.Transformer{}, err
	}
	return transformer.New(newStore(g), fields, sinks, g.Time, g.Tel), nil
}

func transform(ctx context.Context, g *globals.Value) (transformer.Result, error) {
	t, err := newTransformer(g, newSinks(g))
	if err != nil {
		return transformer.Result{}, err
	}

	start := time.Now()
	result, err := t.TransformDetailed(ctx)
	if err != nil {
		return result, err
	}
	slog.Info(
		"transform finished",
		"rows", result.Rows,
		"sinks", len(result.Sinks),
		"failed", result.Failed(),
		"seconds", time.Since(start).Seconds(),
	)
	return result, nil
}
