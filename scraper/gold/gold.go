package gold

import (
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"cpi-scraper/models"
	"cpi-scraper/utils"
)

const (
	baseURL   = "https://qatar-goldprice.com/"
	userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// targetKarats are the purities tracked in the gold sheet.
var targetKarats = []int{14, 18, 21, 22, 24}

// Scraper fetches per-gram gold prices from the Qatar gold price page. The
// page is static HTML, so a plain HTTP fetch is enough; no browser involved.
type Scraper struct {
	client *http.Client
	logger *utils.Logger
	url    string
}

// New creates a gold Scraper against the default price page.
func New(logger *utils.Logger) *Scraper {
	return &Scraper{
		client: &http.Client{Timeout: 10 * time.Second},
		logger: logger,
		url:    baseURL,
	}
}

// Scrape fetches the page and extracts a quote per target karat. Karats
// missing from the page are simply absent from the result; only a fetch
// or parse fault is an error.
func (s *Scraper) Scrape() (*models.GoldResult, error) {
	s.logger.Info("[gold] Fetching %s", s.url)

	req, err := http.NewRequest(http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch gold page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch gold page: unexpected status %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse gold page: %w", err)
	}

	result := &models.GoldResult{
		Timestamp: time.Now(),
		Source:    s.url,
	}

	result.Quotes = extractFromTables(doc)
	if len(result.Quotes) == 0 {
		s.logger.Warn("[gold] No table rows matched, falling back to text scan")
		result.Quotes = extractFromText(doc.Text())
	}

	s.logger.Info("[gold] Extracted %d karat quotes", len(result.Quotes))
	return result, nil
}

// extractFromTables scans every table row for a karat label and reads the
// numeric cells after it. The page lists QAR first, then USD.
func extractFromTables(doc *goquery.Document) []models.GoldQuote {
	var quotes []models.GoldQuote
	seen := make(map[int]bool)

	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td, th")
		if cells.Length() < 3 {
			return
		}

		var texts []string
		cells.Each(func(_ int, cell *goquery.Selection) {
			texts = append(texts, strings.TrimSpace(cell.Text()))
		})
		rowText := strings.Join(texts, " ")

		karat, ok := matchKarat(rowText)
		if !ok || seen[karat] {
			return
		}

		var numbers []float64
		for _, text := range texts[1:] {
			if v, err := parsePrice(text); err == nil {
				numbers = append(numbers, v)
			}
		}
		if len(numbers) == 0 {
			return
		}

		quote := models.GoldQuote{Karat: karat, PriceQAR: numbers[0], Unit: "gram"}
		if len(numbers) >= 2 {
			quote.PriceUSD = numbers[1]
		}
		quotes = append(quotes, quote)
		seen[karat] = true
	})

	return quotes
}

// karatTextPattern matches "عيار N" followed by two decimal numbers, for the
// fallback scan over flattened page text.
var karatTextPattern = regexp.MustCompile(`عيار\s*(\d+)[\s\S]*?(\d+[.,]\d+)[\s\S]*?(\d+[.,]\d+)`)

// extractFromText is the fallback used when the tables carry no matches.
func extractFromText(text string) []models.GoldQuote {
	var quotes []models.GoldQuote
	seen := make(map[int]bool)

	for _, m := range karatTextPattern.FindAllStringSubmatch(text, -1) {
		karat, err := strconv.Atoi(m[1])
		if err != nil || !isTargetKarat(karat) || seen[karat] {
			continue
		}
		qar, err := parsePrice(m[2])
		if err != nil {
			continue
		}
		quote := models.GoldQuote{Karat: karat, PriceQAR: qar, Unit: "gram"}
		if usd, err := parsePrice(m[3]); err == nil {
			quote.PriceUSD = usd
		}
		quotes = append(quotes, quote)
		seen[karat] = true
	}

	return quotes
}

// matchKarat finds a target karat label in a row's text. The long Arabic
// forms are tried before the bare number to avoid matching stray digits.
func matchKarat(rowText string) (int, bool) {
	for _, karat := range targetKarats {
		patterns := []string{
			fmt.Sprintf("عيار %d", karat),
			fmt.Sprintf("جرام الذهب عيار %d", karat),
			strconv.Itoa(karat),
		}
		for _, pattern := range patterns {
			if strings.Contains(rowText, pattern) {
				return karat, true
			}
		}
	}
	return 0, false
}

func isTargetKarat(karat int) bool {
	for _, k := range targetKarats {
		if k == karat {
			return true
		}
	}
	return false
}

func parsePrice(text string) (float64, error) {
	clean := strings.ReplaceAll(strings.ReplaceAll(text, ",", ""), " ", "")
	if clean == "" {
		return 0, fmt.Errorf("empty cell")
	}
	return strconv.ParseFloat(clean, 64)
}
