package ffn

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/net/html/charset"

	"github.com/tbourn/swim-records/internal/domain"
	"github.com/tbourn/swim-records/internal/observability"
)

// ErrUpstreamStatus wraps non-2xx answers from the results site.
var ErrUpstreamStatus = errors.New("unexpected upstream status")

// maxPageBytes caps a single results page.
const maxPageBytes = 8 << 20

// Page is the raw results page of one swimmer for one pool length.
type Page struct {
	PoolLength int
	HTML       string
}

// Fetcher downloads swimmer result pages from the federation site.
type Fetcher struct {
	client    *http.Client
	baseURL   string
	userAgent string
}

// NewFetcher builds a Fetcher rooted at baseURL (e.g.
// "https://ffn.extranat.fr/webffn"). Outbound requests are traced.
func NewFetcher(baseURL, userAgent string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		baseURL:   strings.TrimRight(baseURL, "/"),
		userAgent: userAgent,
	}
}

// SearchURL returns the results URL for iuf in the given pool length.
func (f *Fetcher) SearchURL(iuf string, pool int) string {
	q := url.Values{}
	q.Set("idrch_id", iuf)
	q.Set("idopt", "prf")
	q.Set("idbas", strconv.Itoa(pool))
	return f.baseURL + "/nat_recherche.php?" + q.Encode()
}

// FetchPool performs one GET for iuf/pool and returns the decoded body.
func (f *Fetcher) FetchPool(ctx context.Context, iuf string, pool int) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.SearchURL(iuf, pool), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return "", fmt.Errorf("%w: %d", ErrUpstreamStatus, resp.StatusCode)
	}

	// The site still serves some pages as ISO-8859-1.
	body, err := charset.NewReader(io.LimitReader(resp.Body, maxPageBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		return "", err
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// FetchSwimmer fetches every pool length for iuf. A failing pool length is
// logged and skipped; only a cancelled context is returned as an error.
func (f *Fetcher) FetchSwimmer(ctx context.Context, iuf string) ([]Page, error) {
	pages := make([]Page, 0, len(domain.PoolLengths))
	for _, pool := range domain.PoolLengths {
		doc, err := f.FetchPool(ctx, iuf, pool)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			observability.FetchFailed(pool)
			log.Warn().Err(err).Str("iuf", iuf).Int("pool_length", pool).Msg("fetch results page")
			continue
		}
		pages = append(pages, Page{PoolLength: pool, HTML: doc})
	}
	return pages, nil
}

// ParsePages parses each page with its own pool length as the default
// section and concatenates the rows.
func ParsePages(iuf string, pages []Page) []domain.Performance {
	var out []domain.Performance
	for _, pg := range pages {
		out = append(out, ParseHTML(iuf, pg.HTML, pg.PoolLength)...)
	}
	return out
}
