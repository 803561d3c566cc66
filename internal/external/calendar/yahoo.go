package calendar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/kcpatrick93/earning-scalp-bot/internal/contracts"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/config"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/httputil"
	"github.com/kcpatrick93/earning-scalp-bot/pkg/logger"
)

// YahooScraper reads the Yahoo Finance earnings calendar page
// ⭐ SSOT: Yahoo 실적 캘린더 HTML 파싱은 여기서만
type YahooScraper struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string
	userAgent  string
}

// NewYahooScraper creates a new scraper
func NewYahooScraper(httpClient *httputil.Client, log *logger.Logger, cfg config.CalendarConfig) *YahooScraper {
	return &YahooScraper{
		httpClient: httpClient,
		logger:     log,
		baseURL:    cfg.YahooURL,
		userAgent:  cfg.UserAgent,
	}
}

// Name implements contracts.CalendarSource
func (y *YahooScraper) Name() string {
	return "yahoo"
}

// Fetch implements contracts.CalendarSource
func (y *YahooScraper) Fetch(ctx context.Context, day time.Time) ([]contracts.EarningsEvent, error) {
	fullURL := fmt.Sprintf("%s?%s", y.baseURL, url.Values{"day": {day.Format("2006-01-02")}}.Encode())

	resp, err := y.httpClient.GetWithHeaders(ctx, fullURL, map[string]string{
		"User-Agent": y.userAgent,
		"Accept":     "text/html",
	})
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	events, err := y.parseCalendarHTML(resp.Body, day)
	if err != nil {
		return nil, fmt.Errorf("parse calendar failed: %w", err)
	}

	y.logger.WithFields(map[string]interface{}{
		"day":   day.Format("2006-01-02"),
		"count": len(events),
	}).Debug("Scraped earnings calendar")
	return events, nil
}

// parseCalendarHTML maps table columns by header text, so column order may change
func (y *YahooScraper) parseCalendarHTML(r io.Reader, day time.Time) ([]contracts.EarningsEvent, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	var events []contracts.EarningsEvent
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		cols := map[string]int{}
		table.Find("thead th").Each(func(i int, th *goquery.Selection) {
			cols[strings.ToLower(strings.TrimSpace(th.Text()))] = i
		})
		symbolCol, ok := cols["symbol"]
		if !ok {
			return
		}

		cell := func(cells *goquery.Selection, name string) string {
			i, ok := cols[name]
			if !ok || i >= cells.Length() {
				return ""
			}
			return strings.TrimSpace(cells.Eq(i).Text())
		}

		table.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
			cells := row.Find("td")
			if symbolCol >= cells.Length() {
				return
			}

			symbol := strings.ToUpper(strings.TrimSpace(cells.Eq(symbolCol).Text()))
			if symbol == "" {
				return
			}

			events = append(events, contracts.EarningsEvent{
				Symbol:      symbol,
				CompanyName: cell(cells, "company"),
				Date:        day,
				Hour:        callTimeToHour(firstNonEmpty(cell(cells, "earnings call time"), cell(cells, "event start time"))),
				EPSEstimate: parseEPS(cell(cells, "eps estimate")),
				EPSActual:   parseEPS(cell(cells, "reported eps")),
				Source:      y.Name(),
			})
		})
	})

	return events, nil
}

// callTimeToHour maps Yahoo's call time text to bmo / amc
func callTimeToHour(s string) string {
	switch strings.ToLower(s) {
	case "before market open", "bmo":
		return "bmo"
	case "after market close", "amc":
		return "amc"
	default:
		return ""
	}
}

// parseEPS returns nil for "-" and other placeholders
func parseEPS(s string) *float64 {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" || s == "-" || s == "--" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
