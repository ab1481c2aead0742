package services

import (
	"fmt"
	"sort"
	"strings"

	"cpi-scraper/models"
)

// RouteSummary holds per-route aggregates for the end-of-run report.
type RouteSummary struct {
	Route        models.Route
	Observations int
	MinPrice     int
	MaxPrice     int
	AveragePrice int
	Sources      []string
}

// Summarize computes per-route aggregates over a run result.
func Summarize(result *models.RunResult) []RouteSummary {
	summaries := make([]RouteSummary, 0, len(result.Routes))
	for _, rr := range result.Routes {
		s := RouteSummary{Route: rr.Route, Observations: len(rr.Prices)}
		seen := map[string]bool{}
		total := 0
		for i, obs := range rr.Prices {
			total += obs.Price
			if i == 0 || obs.Price < s.MinPrice {
				s.MinPrice = obs.Price
			}
			if obs.Price > s.MaxPrice {
				s.MaxPrice = obs.Price
			}
			if !seen[obs.Source] {
				seen[obs.Source] = true
				s.Sources = append(s.Sources, obs.Source)
			}
		}
		if len(rr.Prices) > 0 {
			s.AveragePrice = int(float64(total)/float64(len(rr.Prices)) + 0.5)
		}
		sort.Strings(s.Sources)
		summaries = append(summaries, s)
	}
	return summaries
}

// PrintSummary prints the end-of-run report to stdout.
func PrintSummary(result *models.RunResult) {
	sep := strings.Repeat("═", 60)
	thin := strings.Repeat("─", 60)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  FLIGHT PRICE RUN — %s\033[0m\n", result.Timestamp.Format("2006-01-02 15:04"))
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	for _, s := range Summarize(result) {
		fmt.Printf("\033[1;33m  [%s] %s → %s\033[0m\n", s.Route.Code, s.Route.Origin, s.Route.Destination)
		fmt.Printf("  %s\n", thin)
		if s.Observations == 0 {
			fmt.Printf("  No prices found\n\n")
			continue
		}
		fmt.Printf("  Observations : \033[1m%d\033[0m (%s)\n", s.Observations, strings.Join(s.Sources, ", "))
		fmt.Printf("  Lowest fare  : \033[1;32m%d %s\033[0m\n", s.MinPrice, ReferenceCurrency)
		fmt.Printf("  Highest fare : \033[1;31m%d %s\033[0m\n", s.MaxPrice, ReferenceCurrency)
		fmt.Printf("  Average fare : \033[1m%d %s\033[0m\n\n", s.AveragePrice, ReferenceCurrency)
	}

	fmt.Printf("\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("  Total observations: %d\n\n", result.TotalObservations())
}
