// Package news extracts structured disclosure events from raw venue headlines.
package news

import (
	"regexp"
	"strconv"
	"strings"

	"simbot-go/internal/signal"
)

// Event is the structured form of an actionable headline: which tracked
// symbol it concerns, the disclosed point estimate, and how far into the
// session the disclosure applies.
type Event struct {
	Symbol  string
	Value   float64
	Elapsed int
}

var (
	elapsedPattern = regexp.MustCompile(`After (\d+) seconds`)
	numericPrefix  = regexp.MustCompile(`^\d+(?:\.\d+)?`)
)

// Parse inspects one headline against the tracked symbol set and returns the
// extracted event. ok is false unless all three fields are present; a
// malformed item is reported as not actionable rather than as an error, so
// one bad headline never aborts a batch. Pure function, no side effects.
//
// Symbol matching is containment against the headline text, first match wins
// in the order symbols are configured. A headline naming two tracked symbols
// is therefore attributed to whichever is listed first.
func Parse(h signal.Headline, symbols []string) (Event, bool) {
	symbol := ""
	for _, candidate := range symbols {
		if candidate != "" && strings.Contains(h.Headline, candidate) {
			symbol = candidate
			break
		}
	}
	if symbol == "" {
		return Event{}, false
	}

	value, ok := extractValue(h.Body)
	if !ok {
		return Event{}, false
	}
	elapsed, ok := extractElapsed(h.Body)
	if !ok {
		return Event{}, false
	}
	return Event{Symbol: symbol, Value: value, Elapsed: elapsed}, true
}

// extractValue reads the numeric token following the first '$' in the body.
func extractValue(body string) (float64, bool) {
	_, rest, found := strings.Cut(body, "$")
	if !found {
		return 0, false
	}
	token := numericPrefix.FindString(rest)
	if token == "" {
		return 0, false
	}
	value, err := strconv.ParseFloat(token, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func extractElapsed(body string) (int, bool) {
	match := elapsedPattern.FindStringSubmatch(body)
	if match == nil {
		return 0, false
	}
	elapsed, err := strconv.Atoi(match[1])
	if err != nil {
		return 0, false
	}
	return elapsed, true
}
