package collector

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"StockScreener/internal/model"
)

// DefaultSymbolDirectoryURL hosts nasdaqlisted.txt and otherlisted.txt.
const DefaultSymbolDirectoryURL = "https://www.nasdaqtrader.com/dynamic/SymDir"

// DefaultSampleSize is how many tickers a discovery run picks.
const DefaultSampleSize = 50

// ParseNasdaqListed parses nasdaqlisted.txt. Test issues, abnormal financial
// status, ETFs and NextShares funds are skipped.
func ParseNasdaqListed(r io.Reader) ([]model.Listing, error) {
	return parseSymbolDirectory(r, 8, func(f []string) (model.Listing, bool) {
		testIssue, status, etf, nextShares := f[3], f[4], f[6], f[7]
		if testIssue != "N" || status != "N" || etf != "N" || nextShares != "N" {
			return model.Listing{}, false
		}
		return model.Listing{Symbol: f[0], Name: f[1], Exchange: "NASDAQ"}, true
	})
}

// ParseOtherListed parses otherlisted.txt keeping NYSE common listings only.
func ParseOtherListed(r io.Reader) ([]model.Listing, error) {
	return parseSymbolDirectory(r, 7, func(f []string) (model.Listing, bool) {
		exchange, etf, testIssue := f[2], f[4], f[6]
		if exchange != "N" || testIssue != "N" || etf != "N" {
			return model.Listing{}, false
		}
		return model.Listing{Symbol: f[0], Name: f[1], Exchange: "NYSE"}, true
	})
}

// parseSymbolDirectory drops the header and the trailing "File Creation Time"
// line, and rows with fewer than minFields non-empty leading fields.
func parseSymbolDirectory(r io.Reader, minFields int, keep func([]string) (model.Listing, bool)) ([]model.Listing, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lines = append(lines, strings.TrimSpace(sc.Text()))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read symbol directory: %w", err)
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) < 2 {
		return nil, nil
	}

	var out []model.Listing
	for _, line := range lines[1 : len(lines)-1] {
		fields := strings.Split(line, "|")
		if len(fields) < minFields || hasEmpty(fields[:minFields]) {
			continue
		}
		if l, ok := keep(fields); ok {
			out = append(out, l)
		}
	}
	return out, nil
}

func hasEmpty(fields []string) bool {
	for _, f := range fields {
		if f == "" {
			return true
		}
	}
	return false
}

// SelectTickers intersects listed symbols with the supported set and returns
// up to n of them in random order.
func SelectTickers(listed []model.Listing, supported []string, n int, rng *rand.Rand) []string {
	ok := make(map[string]bool, len(supported))
	for _, s := range supported {
		ok[s] = true
	}
	seen := make(map[string]bool)
	var candidates []string
	for _, l := range listed {
		if ok[l.Symbol] && !seen[l.Symbol] {
			seen[l.Symbol] = true
			candidates = append(candidates, l.Symbol)
		}
	}
	sort.Strings(candidates)
	rng.Shuffle(len(candidates), func(i, j int) { candidates[i], candidates[j] = candidates[j], candidates[i] })
	if n > 0 && len(candidates) > n {
		candidates = candidates[:n]
	}
	return candidates
}

// ListingFetcher downloads the exchange symbol directories.
type ListingFetcher struct {
	http *resty.Client
}

// NewListingFetcher creates a fetcher against baseURL, typically
// DefaultSymbolDirectoryURL.
func NewListingFetcher(baseURL string) *ListingFetcher {
	return &ListingFetcher{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(30 * time.Second).
			SetRetryCount(2),
	}
}

// Listings returns NASDAQ and NYSE listings combined.
func (f *ListingFetcher) Listings(ctx context.Context) ([]model.Listing, error) {
	nasdaq, err := f.fetch(ctx, "/nasdaqlisted.txt", ParseNasdaqListed)
	if err != nil {
		return nil, err
	}
	nyse, err := f.fetch(ctx, "/otherlisted.txt", ParseOtherListed)
	if err != nil {
		return nil, err
	}
	return append(nasdaq, nyse...), nil
}

func (f *ListingFetcher) fetch(ctx context.Context, path string, parse func(io.Reader) ([]model.Listing, error)) ([]model.Listing, error) {
	resp, err := f.http.R().SetContext(ctx).Get(path)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	if resp.IsError() {
		return nil, &APIError{Endpoint: path, StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	return parse(strings.NewReader(resp.String()))
}

// Discover picks up to n random listed tickers the source has data for.
func Discover(ctx context.Context, listings *ListingFetcher, source DataSource, n int, rng *rand.Rand) ([]string, error) {
	listed, err := listings.Listings(ctx)
	if err != nil {
		return nil, err
	}
	supported, err := source.AvailableTickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch available tickers: %w", err)
	}
	return SelectTickers(listed, supported, n, rng), nil
}
