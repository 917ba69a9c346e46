package crawler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"plugin-harvester/internal/components/chrono"
	"plugin-harvester/internal/components/telemetry"
	"plugin-harvester/internal/marketplace"
	"plugin-harvester/internal/snapshot"

	"github.com/stretchr/testify/require"
)

type response struct {
	count int
	err   error
}

type fakeFetcher struct {
	responses []response
	offsets   []int
	sizes     []int
}

func (f *fakeFetcher) FetchPage(ctx context.Context, offset, max int) ([]marketplace.Record, error) {
	f.offsets = append(f.offsets, offset)
	f.sizes = append(f.sizes, max)

	call := len(f.offsets) - 1
	if call >= len(f.responses) {
		return nil, nil
	}
	res := f.responses[call]
	if res.err != nil {
		return nil, res.err
	}
	out := make([]marketplace.Record, res.count)
	for i := range out {
		out[i] = marketplace.Record(fmt.Sprintf(`{"id": %d}`, offset+i))
	}
	return out, nil
}

type fakeWriter struct {
	pages []snapshot.Page
	err   error
}

func (w *fakeWriter) WritePage(page snapshot.Page) (string, error) {
	if w.err != nil {
		return "", w.err
	}
	w.pages = append(w.pages, page)
	return fmt.Sprintf("page_%d.json", page.Index), nil
}

func (w *fakeWriter) indices() []int {
	out := make([]int, len(w.pages))
	for i, p := range w.pages {
		out[i] = p.Index
	}
	return out
}

var clock = chrono.FixedImpl{Time: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)}

func TestCrawlTermination(t *testing.T) {
	testCases := []struct {
		name      string
		responses []response
		maxPages  int
		pages     []int
		total     int
		reason    StopReason
	}{
		{
			name:      "runs to max pages",
			responses: []response{{count: 3}, {count: 3}, {count: 3}, {count: 3}},
			maxPages:  3,
			pages:     []int{1, 2, 3},
			total:     9,
			reason:    StopMaxPages,
		},
		{
			name:      "stops at empty page",
			responses: []response{{count: 3}, {count: 2}, {count: 0}, {count: 3}},
			maxPages:  10,
			pages:     []int{1, 2},
			total:     5,
			reason:    StopEmptyPage,
		},
		{
			name:      "stops at transport failure",
			responses: []response{{count: 3}, {err: fmt.Errorf("%w: 500", marketplace.ErrTransport)}, {count: 3}},
			maxPages:  10,
			pages:     []int{1},
			total:     3,
			reason:    StopTransportError,
		},
		{
			name:      "stops at decode failure",
			responses: []response{{err: fmt.Errorf("%w: truncated", marketplace.ErrDecode)}},
			maxPages:  10,
			total:     0,
			reason:    StopDecodeError,
		},
		{
			name:     "zero pages requested",
			maxPages: 0,
			total:    0,
			reason:   StopMaxPages,
		},
	}

	for _, test := range testCases {
		t.Run(test.name, func(t *testing.T) {
			fetcher := &fakeFetcher{responses: test.responses}
			writer := &fakeWriter{}
			c := New(fetcher, writer, clock, telemetry.NewRecorder())

			result, err := c.CrawlDetailed(context.Background(), test.maxPages, 3)
			require.NoError(t, err)
			require.Equal(t, test.total, result.Total)
			require.Equal(t, test.reason, result.Reason)
			require.Equal(t, len(test.pages), result.Pages)
			if len(test.pages) == 0 {
				require.Empty(t, writer.pages)
			} else {
				require.Equal(t, test.pages, writer.indices())
			}

			// no request is made past the page that ended the crawl
			expectedRequests := len(test.pages)
			if test.reason != StopMaxPages {
				expectedRequests++
			}
			require.Len(t, fetcher.offsets, expectedRequests)
		})
	}
}

func TestCrawlOffsets(t *testing.T) {
	fetcher := &fakeFetcher{responses: []response{{count: 25}, {count: 25}, {count: 25}, {count: 25}}}
	c := New(fetcher, &fakeWriter{}, clock, telemetry.NewRecorder())

	total, err := c.Crawl(context.Background(), 4, 25)
	require.NoError(t, err)
	require.Equal(t, 100, total)
	require.Equal(t, []int{0, 25, 50, 75}, fetcher.offsets)
	require.Equal(t, []int{25, 25, 25, 25}, fetcher.sizes)
}

func TestCrawlWriteFailure(t *testing.T) {
	fetcher := &fakeFetcher{responses: []response{{count: 1}, {count: 1}}}
	rec := telemetry.NewRecorder()
	c := New(fetcher, &fakeWriter{err: errors.New("disk full")}, clock, rec)

	result, err := c.CrawlDetailed(context.Background(), 5, 1)
	require.Error(t, err)
	require.Equal(t, StopWriteError, result.Reason)
	require.Equal(t, 0, result.Total)
	require.Len(t, fetcher.offsets, 1)
	require.Equal(t, []string{"crawler: " + report_crawler_write}, rec.IDs(telemetry.LevelBroken))
}

func TestCrawlCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := &fakeFetcher{responses: []response{{count: 1}}}
	c := New(fetcher, &fakeWriter{}, clock, telemetry.NewRecorder())

	result, err := c.CrawlDetailed(ctx, 5, 1)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, StopCancelled, result.Reason)
	require.Empty(t, fetcher.offsets)
}

func TestCrawlInvalidPageSize(t *testing.T) {
	c := New(&fakeFetcher{}, &fakeWriter{}, clock, telemetry.NewRecorder())
	_, err := c.Crawl(context.Background(), 5, 0)
	require.Error(t, err)
}

func TestCrawlProgressReports(t *testing.T) {
	fetcher := &fakeFetcher{responses: []response{{count: 2}, {count: 1}}}
	rec := telemetry.NewRecorder()
	c := New(fetcher, &fakeWriter{}, clock, rec)

	_, err := c.Crawl(context.Background(), 3, 2)
	require.NoError(t, err)
	require.Equal(t, []string{
		"crawler: crawled page 1: found 2 plugins (total: 2)",
		"crawler: crawled page 2: found 1 plugins (total: 3)",
		"crawler: no more plugins found at page 3",
		"crawler: crawling completed, total plugins: 3",
	}, rec.IDs(telemetry.LevelInfo))
}

// crawls a fake marketplace end to end with the real client and snapshot store
func TestCrawlMarketplace(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		switch offset {
		case 0:
			w.Write([]byte(`{"plugins": [{"id": 1}, {"id": 2}]}`))
		case 2:
			w.Write([]byte(`[{"id": 3}, {"id": 4}]`))
		case 4:
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.Write([]byte(`[{"id": 99}, {"id": 100}]`))
		}
	}))
	defer server.Close()

	config := marketplace.DefaultConfig()
	config.BaseURL = server.URL
	rec := telemetry.NewRecorder()
	client, err := marketplace.NewClient(config, rec)
	require.NoError(t, err)

	dir := t.TempDir()
	store := snapshot.NewStore(dir, rec)
	require.NoError(t, store.Prepare())

	total, err := New(client, store, clock, rec).Crawl(context.Background(), 10, 2)
	require.NoError(t, err)
	require.Equal(t, 4, total)

	loaded, err := store.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, loaded, 4)

	files, err := store.ListFiles()
	require.NoError(t, err)
	require.Len(t, files, 2)
}
