package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vinnymaker/stockapp/internal/models"
	"github.com/vinnymaker/stockapp/pkg/utils/zaplogger"
)

// NSEIndexer maintains the data for NSE. It relies on the live watch pages
// published by NSE.
const nseExchangeCode = "NSE"

// NSELiveWatchBaseURL is the default base of the NSE live watch JSON pages
const NSELiveWatchBaseURL = "https://www.nseindia.com/live_market/dynaContent/live_watch/stock_watch/"

// Index names covered by this indexer. These match the names stored in
// stock_indexes as well as the names reported by the data source.
const (
	indexNifty50     = "NIFTY 50"
	indexNiftyNext50 = "NIFTY NEXT 50"
	indexNiftyMidcap = "NIFTY MIDCAP 50"
)

var nseIndexSuffixMap = map[string]string{
	indexNifty50:     "niftyStockWatch.json",
	indexNiftyNext50: "juniorNiftyStockWatch.json",
	indexNiftyMidcap: "niftyMidcap50StockWatch.json",
}

// JSON keys of the live watch payload. Index and stock records use different
// keys for the same quantity.
const (
	dataKey      = "data"
	latestKey    = "latestData"
	symbolKey    = "symbol"
	indexNameKey = "indexName"
	openKey      = "open"
	highKey      = "high"
	lowKey       = "low"
	indexLtpKey  = "ltp"
	stockLtpKey  = "ltP"
	indexChgKey  = "ch"
	stockChgKey  = "ptsC"
	indexVolKey  = "trdVolumesum"
	stockVolKey  = "trdVol"
)

// NSEIndexer implements ExchangeDataIndexer for the National Stock Exchange
type NSEIndexer struct {
	client     *http.Client
	baseURL    string
	exchangeID uint
}

// NewNSEIndexer creates an NSE indexer for the given exchange row. An empty
// baseURL selects the live NSE endpoint.
func NewNSEIndexer(exchangeID uint, baseURL string) *NSEIndexer {
	if baseURL == "" {
		baseURL = NSELiveWatchBaseURL
	}
	return &NSEIndexer{
		client:     &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		exchangeID: exchangeID,
	}
}

// ExchangeCode returns the code of the exchange indexed by this indexer
func (x *NSEIndexer) ExchangeCode() string {
	return nseExchangeCode
}

// Indexes returns the names of the indexes maintained by this indexer
func (x *NSEIndexer) Indexes() []string {
	return []string{indexNifty50, indexNiftyNext50, indexNiftyMidcap}
}

// Fetch retrieves up to date quotes for the stocks of the given index
func (x *NSEIndexer) Fetch(ctx context.Context, index string) []models.Quote {
	suffix, ok := nseIndexSuffixMap[index]
	if !ok {
		zaplogger.Error("unknown NSE index", zaplogger.Fields{"index": index})
		return nil
	}

	url := x.baseURL + suffix
	now := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		zaplogger.Error("failed to create live watch request", zaplogger.Fields{
			"index": index,
			"error": err.Error(),
		})
		return nil
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Referer", "https://www.nseindia.com/")

	resp, err := x.client.Do(req)
	if err != nil {
		zaplogger.Error("error retrieving items from data source", zaplogger.Fields{
			"index": index,
			"error": err.Error(),
		})
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		zaplogger.Error("data source returned non-200 status", zaplogger.Fields{
			"index":  index,
			"status": resp.StatusCode,
		})
		return nil
	}

	var page struct {
		LatestData   []map[string]interface{} `json:"latestData"`
		Data         []map[string]interface{} `json:"data"`
		TrdVolumeSum interface{}              `json:"trdVolumesum"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		zaplogger.Error("failed to parse live watch payload", zaplogger.Fields{
			"index": index,
			"error": err.Error(),
		})
		return nil
	}
	if len(page.LatestData) == 0 {
		zaplogger.Error("live watch payload has no index record", zaplogger.Fields{"index": index})
		return nil
	}

	// The index record itself comes first. Its traded volume lives on the
	// outer object, not on the record.
	latest := page.LatestData[0]
	latest[indexVolKey] = page.TrdVolumeSum

	items := make([]models.Quote, 0, len(page.Data)+1)
	indexQuote, err := x.quoteFromRecord(latest, now, true)
	if err != nil {
		zaplogger.Error("failed to parse index record", zaplogger.Fields{
			"index": index,
			"error": err.Error(),
		})
		return nil
	}
	items = append(items, indexQuote)

	for _, record := range page.Data {
		quote, err := x.quoteFromRecord(record, now, false)
		if err != nil {
			zaplogger.Error("failed to parse stock record", zaplogger.Fields{
				"index": index,
				"error": err.Error(),
			})
			return nil
		}
		items = append(items, quote)
	}

	return items
}

// quoteFromRecord builds a Quote from one live watch record. Index records
// and stock records use different keys for symbol, ltp, change and volume.
func (x *NSEIndexer) quoteFromRecord(record map[string]interface{}, now time.Time, isIndex bool) (models.Quote, error) {
	symKey, ltpKey, chgKey, volKey := symbolKey, stockLtpKey, stockChgKey, stockVolKey
	quoteType := models.QuoteTypeStock
	if isIndex {
		symKey, ltpKey, chgKey, volKey = indexNameKey, indexLtpKey, indexChgKey, indexVolKey
		quoteType = models.QuoteTypeIndex
	}

	symbol, ok := record[symKey].(string)
	if !ok || symbol == "" {
		return models.Quote{}, fmt.Errorf("record has no %s key", symKey)
	}

	open, err := parseNumber(record[openKey])
	if err != nil {
		return models.Quote{}, fmt.Errorf("%s: bad open: %v", symbol, err)
	}
	ltp, err := parseNumber(record[ltpKey])
	if err != nil {
		return models.Quote{}, fmt.Errorf("%s: bad ltp: %v", symbol, err)
	}
	change, err := parseNumber(record[chgKey])
	if err != nil {
		return models.Quote{}, fmt.Errorf("%s: bad change: %v", symbol, err)
	}
	volume, err := parseNumber(record[volKey])
	if err != nil {
		return models.Quote{}, fmt.Errorf("%s: bad volume: %v", symbol, err)
	}
	high, err := parseNumber(record[highKey])
	if err != nil {
		return models.Quote{}, fmt.Errorf("%s: bad high: %v", symbol, err)
	}
	low, err := parseNumber(record[lowKey])
	if err != nil {
		return models.Quote{}, fmt.Errorf("%s: bad low: %v", symbol, err)
	}

	return models.Quote{
		Symbol:          symbol,
		Type:            quoteType,
		Open:            open,
		Volume:          volume,
		LastTradedPrice: ltp,
		PreviousClose:   ltp - change,
		High:            high,
		Low:             low,
		LastUpdatedAt:   now,
		ExchangeID:      x.exchangeID,
	}, nil
}

// parseNumber converts a live watch value to a float. Source strings may
// carry thousands separators.
func parseNumber(value interface{}) (float64, error) {
	switch v := value.(type) {
	case string:
		return strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
	case float64:
		return v, nil
	case nil:
		return 0, fmt.Errorf("missing value")
	default:
		return 0, fmt.Errorf("unexpected value type %T", value)
	}
}
