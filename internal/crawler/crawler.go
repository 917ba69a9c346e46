package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"plugin-harvester/internal/assert"
	"plugin-harvester/internal/components/chrono"
	"plugin-harvester/internal/components/telemetry"
	"plugin-harvester/internal/marketplace"
	"plugin-harvester/internal/snapshot"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("harvest/crawler")
var meter = otel.Meter("harvest/crawler")
var pagesCounter, _ = meter.Int64Counter("harvest.pages")
var recordsCounter, _ = meter.Int64Counter("harvest.records")

const (
	report_crawler_fetch = "crawler.fetch"
	report_crawler_write = "crawler.write"
	report_crawler_total = "crawler.total"
)

type Fetcher interface {
	FetchPage(ctx context.Context, offset, max int) ([]marketplace.Record, error)
}

type PageWriter interface {
	WritePage(page snapshot.Page) (string, error)
}

// StopReason describes why a crawl ended.
type StopReason string

const (
	StopMaxPages       StopReason = "max_pages"
	StopEmptyPage      StopReason = "empty_page"
	StopTransportError StopReason = "transport_error"
	StopDecodeError    StopReason = "decode_error"
	StopWriteError     StopReason = "write_error"
	StopCancelled      StopReason = "cancelled"
)

type Result struct {
	RunID string
	// Pages is the number of snapshots written.
	Pages int
	// Total is the number of records across every snapshot written.
	Total    int
	Reason   StopReason
	Started  time.Time
	Finished time.Time
}

type Crawler struct {
	fetcher Fetcher
	writer  PageWriter
	time    chrono.API
	tel     telemetry.API
}

func New(fetcher Fetcher, writer PageWriter, time chrono.API, tel telemetry.API) Crawler {
	assert.NotNil(fetcher)
	assert.NotNil(writer)
	assert.NotNil(time)
	assert.NotNil(tel)

	return Crawler{
		fetcher: fetcher,
		writer:  writer,
		time:    time,
		tel:     telemetry.NewScopedAPI("crawler", tel),
	}
}

// Crawl fetches up to maxPages pages of pageSize records and writes each non-empty one
// as a snapshot, returning the number of records written.
//
// The crawl stops early at the first empty page or the first page that fails to be
// fetched or decoded, these are normal ends of a crawl and are not returned as errors.
// A snapshot that cannot be written or a cancelled ctx ends the crawl with an error.
func (c Crawler) Crawl(ctx context.Context, maxPages, pageSize int) (int, error) {
	result, err := c.CrawlDetailed(ctx, maxPages, pageSize)
	return result.Total, err
}

// CrawlDetailed is Crawl, but it also reports how the crawl went.
func (c Crawler) CrawlDetailed(ctx context.Context, maxPages, pageSize int) (Result, error) {
	result := Result{
		RunID:   uuid.NewString(),
		Started: c.time.Now(),
		Reason:  StopMaxPages,
	}
	if pageSize <= 0 {
		return result, fmt.Errorf("page size must be positive, got %d", pageSize)
	}

	ctx, span := tracer.Start(ctx, "crawl")
	defer span.End()
	span.SetAttributes(
		attribute.String("run_id", result.RunID),
		attribute.Int("max_pages", maxPages),
		attribute.Int("page_size", pageSize),
	)

	var err error
	for p := 0; p < maxPages; p++ {
		var stop bool
		stop, err = c.crawlPage(ctx, p, pageSize, &result)
		if stop {
			break
		}
	}

	result.Finished = c.time.Now()
	span.SetAttributes(
		attribute.Int("pages", result.Pages),
		attribute.Int("total", result.Total),
		attribute.String("reason", string(result.Reason)),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	c.tel.ReportCount(report_crawler_total, int64(result.Total))
	c.tel.ReportInfo(
		fmt.Sprintf("crawling completed, total plugins: %d", result.Total),
		result.RunID,
		string(result.Reason),
	)
	return result, err
}

// crawlPage handles page p (0-based), it returns true when the crawl should stop.
func (c Crawler) crawlPage(ctx context.Context, p, pageSize int, result *Result) (bool, error) {
	if err := ctx.Err(); err != nil {
		result.Reason = StopCancelled
		return true, err
	}

	index := p + 1
	offset := p * pageSize

	ctx, span := tracer.Start(ctx, "crawler.page")
	defer span.End()
	span.SetAttributes(
		attribute.Int("page", index),
		attribute.Int("offset", offset),
	)

	records, err := c.fetcher.FetchPage(ctx, offset, pageSize)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			result.Reason = StopCancelled
			return true, ctxErr
		}

		result.Reason = StopTransportError
		if errors.Is(err, marketplace.ErrDecode) {
			result.Reason = StopDecodeError
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch failed")
		c.tel.ReportWarning(report_crawler_fetch, err, index, offset)
		return true, nil
	}

	if len(records) == 0 {
		result.Reason = StopEmptyPage
		c.tel.ReportInfo(fmt.Sprintf("no more plugins found at page %d", index))
		return true, nil
	}

	_, err = c.writer.WritePage(snapshot.Page{Index: index, Records: records})
	if err != nil {
		result.Reason = StopWriteError
		span.RecordError(err)
		span.SetStatus(codes.Error, "write failed")
		c.tel.ReportBroken(report_crawler_write, err, index)
		return true, fmt.Errorf("write page %d: %w", index, err)
	}

	result.Pages++
	result.Total += len(records)
	pagesCounter.Add(ctx, 1)
	recordsCounter.Add(ctx, int64(len(records)))
	span.SetAttributes(attribute.Int("records", len(records)))

	c.tel.ReportInfo(fmt.Sprintf(
		"crawled page %d: found %d plugins (total: %d)",
		index, len(records), result.Total,
	))
	return false, nil
}
