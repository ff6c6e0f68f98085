package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"StockScreener/internal/model"
)

const (
	minCompare = 2
	maxCompare = 5
)

// ErrCompareCount is returned when a comparison names too few or too many
// tickers.
var ErrCompareCount = fmt.Errorf("must select between %d and %d stocks", minCompare, maxCompare)

// SystemPrompt instructs the model how to compare analysis bundles.
const SystemPrompt = `You are a friendly but professional financial analyst.

You are given the following information about multiple stocks (all in JSON format):
- Technical analysis
- Fundamental analysis
- Sentiment analysis
- Valuation analysis

Analyze the information and provide a detailed summary of each stock. Compare the stocks and provide a detailed summary of the differences.

Respond in Markdown format. Include the ticker and the name of the company (if you know it) in the summary.`

// ParseCompareTickers splits a ';'-separated list, upper-cases and
// de-duplicates it, and requires 2 to 5 tickers.
func ParseCompareTickers(s string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	for _, part := range strings.Split(s, ";") {
		t := strings.ToUpper(strings.TrimSpace(part))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	if len(out) < minCompare || len(out) > maxCompare {
		return nil, ErrCompareCount
	}
	return out, nil
}

// BuildComparePrompt renders one Markdown section per bundle with each
// analysis as JSON. A failed analysis is rendered as its error.
func BuildComparePrompt(bundles []*model.Bundle) (string, error) {
	if len(bundles) == 0 {
		return "", errors.New("no analyses to compare")
	}
	sections := make([]string, 0, len(bundles))
	for _, b := range bundles {
		var sb strings.Builder
		sb.WriteString("# " + b.Ticker + "\n")
		parts := []struct {
			title    string
			analyzer string
			value    any
		}{
			{"Technical analysis", model.AnalyzerTechnical, b.Technicals},
			{"Fundamental analysis", model.AnalyzerFundamental, b.Fundamentals},
			{"Sentiment analysis", model.AnalyzerSentiment, b.Sentiment},
			{"Valuation analysis", model.AnalyzerValuation, b.Valuation},
		}
		for i, p := range parts {
			if i > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString("## " + p.title + "\n")
			data, err := analysisJSON(p.value, b.Errors[p.analyzer])
			if err != nil {
				return "", fmt.Errorf("encode %s for %s: %w", p.analyzer, b.Ticker, err)
			}
			sb.Write(data)
			sb.WriteString("\n")
		}
		sections = append(sections, sb.String())
	}
	return strings.Join(sections, "\n\n"), nil
}

func analysisJSON(v any, errMsg string) ([]byte, error) {
	switch r := v.(type) {
	case *model.TechnicalResult:
		if r != nil {
			return json.Marshal(r)
		}
	case *model.AnalysisResult:
		if r != nil {
			return json.Marshal(r)
		}
	case *model.ValuationResult:
		if r != nil {
			return json.Marshal(r)
		}
	}
	return json.Marshal(map[string]string{"error": errMsg})
}
