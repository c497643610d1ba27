package eastmoney

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/newthinker/tradando/internal/core"
)

const (
	historyURL = "https://push2his.eastmoney.com/api/qt/stock/kline/get"
)

// cnSymbol matches A-share symbols like 600519.SH and 000001.SZ
var cnSymbol = regexp.MustCompile(`^\d{6}\.(SH|SZ)$`)

// klineLine matches date,open,close,high,low,volume
var klineLine = regexp.MustCompile(`^(\d{4}-\d{2}-\d{2}),([^,]+),([^,]+),([^,]+),([^,]+),([^,]+)`)

// shanghai is the exchange timezone; daily bars are stamped at local midnight
var shanghai = time.FixedZone("CST", 8*3600)

// Eastmoney implements the Eastmoney kline collector for A-shares
type Eastmoney struct {
	client  *http.Client
	baseURL string
}

// New creates a new Eastmoney collector
func New() *Eastmoney {
	return &Eastmoney{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: historyURL,
	}
}

// NewWithBaseURL creates an Eastmoney collector with custom URL (for testing)
func NewWithBaseURL(url string) *Eastmoney {
	e := New()
	e.baseURL = url
	return e
}

func (e *Eastmoney) Name() string {
	return "eastmoney"
}

func (e *Eastmoney) Supports(symbol string) bool {
	return cnSymbol.MatchString(strings.ToUpper(symbol))
}

// parseSymbol converts 600519.SH to (600519, 1) for Eastmoney API
// Shanghai = 1, Shenzhen = 0
func (e *Eastmoney) parseSymbol(symbol string) (code, market string) {
	parts := strings.Split(strings.ToUpper(symbol), ".")
	if len(parts) != 2 {
		return symbol, "1"
	}

	code = parts[0]
	switch parts[1] {
	case "SH":
		market = "1"
	case "SZ":
		market = "0"
	default:
		market = "1"
	}
	return
}

// FetchHistory fetches forward-adjusted OHLCV data
func (e *Eastmoney) FetchHistory(ctx context.Context, symbol string, start, end time.Time, interval string) ([]core.OHLCV, error) {
	if !e.Supports(symbol) {
		return nil, fmt.Errorf("invalid symbol format: %s", symbol)
	}
	code, market := e.parseSymbol(symbol)
	secid := fmt.Sprintf("%s.%s", market, code)
	klt := e.toKlineType(interval)

	url := fmt.Sprintf("%s?secid=%s&klt=%s&fqt=1&beg=%s&end=%s&fields1=f1,f2,f3,f4,f5,f6&fields2=f51,f52,f53,f54,f55,f56",
		e.baseURL, secid, klt,
		start.Format("20060102"),
		end.Format("20060102"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching history: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var result historyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if result.Data == nil || len(result.Data.Klines) == 0 {
		return nil, nil
	}

	data := make([]core.OHLCV, 0, len(result.Data.Klines))
	for _, line := range result.Data.Klines {
		matches := klineLine.FindStringSubmatch(line)
		if len(matches) < 7 {
			continue
		}

		t, err := time.ParseInLocation("2006-01-02", matches[1], shanghai)
		if err != nil {
			continue
		}
		open, _ := strconv.ParseFloat(matches[2], 64)
		closePrice, _ := strconv.ParseFloat(matches[3], 64)
		high, _ := strconv.ParseFloat(matches[4], 64)
		low, _ := strconv.ParseFloat(matches[5], 64)
		volume, _ := strconv.ParseInt(matches[6], 10, 64)

		data = append(data, core.OHLCV{
			Symbol:   symbol,
			Interval: interval,
			Open:     open,
			High:     high,
			Low:      low,
			Close:    closePrice,
			Volume:   volume,
			Time:     t,
		})
	}

	return data, nil
}

func (e *Eastmoney) toKlineType(interval string) string {
	switch interval {
	case "1m":
		return "1"
	case "5m":
		return "5"
	case "15m":
		return "15"
	case "30m":
		return "30"
	case "1h":
		return "60"
	case "1d":
		return "101"
	case "1w":
		return "102"
	default:
		return "101"
	}
}

type historyResponse struct {
	Data *historyData `json:"data"`
}

type historyData struct {
	Code   string   `json:"code"`
	Name   string   `json:"name"`
	Klines []string `json:"klines"`
}
