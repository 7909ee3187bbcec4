package indexer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinnymaker/stockapp/internal/models"
)

const niftyPayload = `{
	"latestData": [
		{"indexName": "NIFTY 50", "open": "23,950.10", "high": "24,100.00", "low": "23,900.00", "ltp": "24,010.60", "ch": "60.50"}
	],
	"data": [
		{"symbol": "RELIANCE", "open": "2,890.00", "high": "2,930.00", "low": "2,880.00", "ltP": "2,910.45", "ptsC": "20.45", "trdVol": "152.31"},
		{"symbol": "TCS", "open": "4,080.00", "high": "4,120.00", "low": "4,060.00", "ltP": "4,100.00", "ptsC": "-12.00", "trdVol": "88.10"}
	],
	"trdVolumesum": "4,560.75"
}`

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestNSEIndexer_Fetch(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/niftyStockWatch.json", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(niftyPayload))
	})

	ix := NewNSEIndexer(1, server.URL+"/")
	batch := ix.Fetch(context.Background(), "NIFTY 50")
	require.Len(t, batch, 3)

	// The index quote comes first, its volume from the outer total.
	index := batch[0]
	assert.Equal(t, "NIFTY 50", index.Symbol)
	assert.Equal(t, models.QuoteTypeIndex, index.Type)
	assert.InDelta(t, 24010.60, index.LastTradedPrice, 1e-9)
	assert.InDelta(t, 23950.10, index.Open, 1e-9)
	assert.InDelta(t, 4560.75, index.Volume, 1e-9)
	assert.InDelta(t, 24010.60-60.50, index.PreviousClose, 1e-9)
	assert.EqualValues(t, 1, index.ExchangeID)
	assert.False(t, index.LastUpdatedAt.IsZero())

	reliance := batch[1]
	assert.Equal(t, "RELIANCE", reliance.Symbol)
	assert.Equal(t, models.QuoteTypeStock, reliance.Type)
	assert.InDelta(t, 2910.45, reliance.LastTradedPrice, 1e-9)
	assert.InDelta(t, 2910.45-20.45, reliance.PreviousClose, 1e-9)
	assert.InDelta(t, 152.31, reliance.Volume, 1e-9)

	// Negative changes yield a previous close above the last price.
	tcs := batch[2]
	assert.InDelta(t, 4112.00, tcs.PreviousClose, 1e-9)
}

func TestNSEIndexer_FetchUnknownIndex(t *testing.T) {
	ix := NewNSEIndexer(1, "http://localhost:1/")
	assert.Nil(t, ix.Fetch(context.Background(), "NIFTY BANK"))
}

func TestNSEIndexer_FetchNon200(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	ix := NewNSEIndexer(1, server.URL+"/")
	assert.Nil(t, ix.Fetch(context.Background(), "NIFTY 50"))
}

func TestNSEIndexer_FetchBadPayload(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"latestData": [], "data": []}`))
	})

	ix := NewNSEIndexer(1, server.URL+"/")
	assert.Nil(t, ix.Fetch(context.Background(), "NIFTY 50"))
}

func TestNSEIndexer_FetchMalformedRecordDropsBatch(t *testing.T) {
	// One bad stock record poisons the whole batch, nothing partial is
	// handed to the sync engine.
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{
			"latestData": [{"indexName": "NIFTY 50", "open": "100", "high": "101", "low": "99", "ltp": "100.5", "ch": "0.5"}],
			"data": [{"symbol": "RELIANCE", "open": "not-a-number", "high": "1", "low": "1", "ltP": "1", "ptsC": "0", "trdVol": "1"}],
			"trdVolumesum": "10"
		}`))
	})

	ix := NewNSEIndexer(1, server.URL+"/")
	assert.Nil(t, ix.Fetch(context.Background(), "NIFTY 50"))
}

func TestNSEIndexer_FetchConnectionRefused(t *testing.T) {
	ix := NewNSEIndexer(1, "http://127.0.0.1:1/")
	assert.Nil(t, ix.Fetch(context.Background(), "NIFTY 50"))
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in      interface{}
		want    float64
		wantErr bool
	}{
		{"24,010.60", 24010.60, false},
		{"1,23,456.78", 123456.78, false}, // Indian digit grouping
		{"42", 42, false},
		{float64(7.5), 7.5, false},
		{nil, 0, true},
		{"abc", 0, true},
		{true, 0, true},
	}
	for _, tc := range cases {
		got, err := parseNumber(tc.in)
		if tc.wantErr {
			assert.Error(t, err, "input %v", tc.in)
			continue
		}
		require.NoError(t, err, "input %v", tc.in)
		assert.InDelta(t, tc.want, got, 1e-9, "input %v", tc.in)
	}
}

func TestNSEIndexer_Identity(t *testing.T) {
	ix := NewNSEIndexer(1, "")
	assert.Equal(t, "NSE", ix.ExchangeCode())
	assert.Equal(t, []string{"NIFTY 50", "NIFTY NEXT 50", "NIFTY MIDCAP 50"}, ix.Indexes())
	assert.Equal(t, NSELiveWatchBaseURL, ix.baseURL)
}
