package marketplace

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"time"

	"plugin-harvester/internal/components/telemetry"
	"plugin-harvester/lib/restyutil"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/publicsuffix"
)

const (
	report_client_fetch_page = "client.fetch-page"
	report_client_dump       = "client.dump"
)

// Client fetches listing pages from the marketplace, one request at a time.
type Client struct {
	config Config
	http   *resty.Client
	tel    telemetry.API
}

func NewClient(config Config, tel telemetry.API) (*Client, error) {
	tel = telemetry.NewScopedAPI("marketplace", tel)

	httpClient := resty.New()
	timeout := time.Duration(config.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	httpClient.SetTimeout(timeout)

	jar, err := cookiejar.New(&cookiejar.Options{
		PublicSuffixList: publicsuffix.List,
	})
	if err != nil {
		return nil, err
	}
	httpClient.SetCookieJar(jar)
	if config.CloudflareBypass {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}
	httpClient.SetHeaders(config.Headers)

	telemetry.InstrumentResty(httpClient, tel, "harvest/marketplace/http")
	if config.DumpDir != "" {
		output, err := restyutil.NewFilesystemOutput(config.DumpDir)
		if err != nil {
			return nil, fmt.Errorf("prepare dump dir: %w", err)
		}
		restyutil.DumpExchanges(httpClient, output, func(err error) {
			tel.ReportWarning(report_client_dump, err)
		})
	}

	return &Client{
		config: config,
		http:   httpClient,
		tel:    tel,
	}, nil
}

// FetchPage requests `max` records starting at `offset`. Errors wrap either
// ErrTransport or ErrDecode. An empty or absent listing returns (nil, nil).
func (c *Client) FetchPage(ctx context.Context, offset, max int) ([]Record, error) {
	url := c.config.BuildURL(offset, max)
	c.tel.ReportDebug("fetching listing", url)

	res, err := c.http.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		c.tel.ReportWarning(report_client_fetch_page, err, url)
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	if !res.IsSuccess() {
		err = fmt.Errorf("%w: unexpected status %s", ErrTransport, res.Status())
		c.tel.ReportWarning(report_client_fetch_page, err, url)
		return nil, err
	}

	records, err := DecodeListing(res.Body())
	if err != nil {
		c.tel.ReportWarning(report_client_fetch_page, err, url)
		return nil, err
	}
	return records, nil
}
