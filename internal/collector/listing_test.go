package collector

import (
	"context"
	"io"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockScreener/internal/model"
)

const nasdaqListed = "Symbol|Security Name|Market Category|Test Issue|Financial Status|Round Lot Size|ETF|NextShares\r\n" +
	"AAPL|Apple Inc. - Common Stock|Q|N|N|100|N|N\r\n" +
	"ZXZZT|NASDAQ TEST STOCK|G|Y|N|100|N|N\r\n" +
	"QQQ|Invesco QQQ Trust|G|N|N|100|Y|N\r\n" +
	"BADF|Bad Financials Inc.|S|N|D|100|N|N\r\n" +
	"MSFT|Microsoft Corporation - Common Stock|Q|N|N|100|N|N\r\n" +
	"|Missing Symbol|Q|N|N|100|N|N\r\n" +
	"File Creation Time: 0101202500:00|||||||\r\n"

const otherListed = "ACT Symbol|Security Name|Exchange|CQS Symbol|ETF|Round Lot Size|Test Issue|NASDAQ Symbol\n" +
	"IBM|International Business Machines|N|IBM|N|100|N|IBM\n" +
	"SPY|SPDR S&P 500|P|SPY|Y|100|N|SPY\n" +
	"GLD|SPDR Gold|N|GLD|Y|100|N|GLD\n" +
	"TSTN|Test Stock|N|TSTN|N|100|Y|TSTN\n" +
	"File Creation Time: 0101202500:00|||||||\n"

func TestParseNasdaqListed(t *testing.T) {
	got, err := ParseNasdaqListed(strings.NewReader(nasdaqListed))
	require.NoError(t, err)
	assert.Equal(t, []model.Listing{
		{Symbol: "AAPL", Name: "Apple Inc. - Common Stock", Exchange: "NASDAQ"},
		{Symbol: "MSFT", Name: "Microsoft Corporation - Common Stock", Exchange: "NASDAQ"},
	}, got)
}

func TestParseOtherListed(t *testing.T) {
	got, err := ParseOtherListed(strings.NewReader(otherListed))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "IBM", got[0].Symbol)
	assert.Equal(t, "NYSE", got[0].Exchange)
}

func TestParseEmpty(t *testing.T) {
	got, err := ParseNasdaqListed(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSelectTickers(t *testing.T) {
	listed := []model.Listing{{Symbol: "AAPL"}, {Symbol: "MSFT"}, {Symbol: "IBM"}, {Symbol: "AAPL"}, {Symbol: "XYZ"}}
	supported := []string{"AAPL", "MSFT", "IBM", "NVDA"}

	all := SelectTickers(listed, supported, 50, rand.New(rand.NewSource(1)))
	assert.ElementsMatch(t, []string{"AAPL", "MSFT", "IBM"}, all)

	two := SelectTickers(listed, supported, 2, rand.New(rand.NewSource(1)))
	assert.Len(t, two, 2)
	assert.Subset(t, []string{"AAPL", "MSFT", "IBM"}, two)

	again := SelectTickers(listed, supported, 2, rand.New(rand.NewSource(1)))
	assert.Equal(t, two, again)
}

func TestDiscover(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/nasdaqlisted.txt":
			io.WriteString(w, nasdaqListed)
		case "/otherlisted.txt":
			io.WriteString(w, otherListed)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	src := &MockSource{Tickers: []string{"MSFT", "IBM", "TSLA"}}
	got, err := Discover(context.Background(), NewListingFetcher(srv.URL), src, DefaultSampleSize, rand.New(rand.NewSource(7)))
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"MSFT", "IBM"}, got)
}
