package decision

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ovtrader/ov-trader/internal/agent"
	"github.com/ovtrader/ov-trader/internal/domain"
)

// BuildPrompt deterministically renders the synthesis prompt from ranked
// scores, the focus symbol's feature snapshot, and the qualitative news
// summary, followed by a fixed JSON-output instruction block.
func (a *Agent) BuildPrompt(ctx *agent.Context) string {
	scores := ctx.Alpha()
	marketData := ctx.MarketData()

	focusSymbol := selectFocusSymbol(scores, marketData)
	alphaSection := a.formatAlphaSection(scores)
	marketSection := formatMarketSection(focusSymbol, marketData)

	newsSection := newsSummary(ctx)
	if newsSection == "" {
		newsSection = "No news sentiment summary available."
	}

	if alphaSection == "" {
		alphaSection = "No alpha data available."
	}

	timestamp := ctx.Timestamp
	if timestamp == "" {
		timestamp = "unknown"
	}
	focusLabel := focusSymbol
	if focusLabel == "" {
		focusLabel = "not enough data"
	}
	snapshotLabel := focusSymbol
	if snapshotLabel == "" {
		snapshotLabel = "N/A"
	}

	instructions := "Follow this deliberate decision process:\n" +
		"1. Quantitative review: interpret the alpha signals, highlighting magnitude and sign.\n" +
		"2. Market structure: analyse the recent price and technical snapshot to infer trend, momentum, and volatility.\n" +
		"3. News context: examine the qualitative summary for catalysts and risks.\n" +
		"4. Synthesis: integrate the evidence to choose a single action (buy, sell, hold) with a recommended position size."

	var b strings.Builder
	b.WriteString("You are an advanced trading strategist embedded in a portfolio research simulator. ")
	b.WriteString("Use the provided market intelligence to recommend an action that aims to beat the broad market in simulation.\n")
	fmt.Fprintf(&b, "Timestamp: %s\n", timestamp)
	fmt.Fprintf(&b, "Focus symbol: %s\n\n", focusLabel)
	fmt.Fprintf(&b, "### Alpha signals (top %d)\n%s\n\n", a.topN, alphaSection)
	fmt.Fprintf(&b, "### Market feature snapshot for %s\n%s\n\n", snapshotLabel, marketSection)
	fmt.Fprintf(&b, "### News and sentiment overview\n%s\n\n", newsSection)
	b.WriteString(instructions)
	b.WriteString("\n\n")
	b.WriteString("When reasoning, explicitly reference numbers from the datasets above. ")
	b.WriteString("Respond with a JSON object containing the following keys:\n")
	b.WriteString("- \"symbol\": ticker analysed.\n")
	b.WriteString("- \"action\": one of \"buy\", \"sell\", or \"hold\".\n")
	b.WriteString("- \"confidence\": integer between 0 and 100.\n")
	b.WriteString("- \"target_weight\": recommended portfolio weight between -1.0 and 1.0.\n")
	b.WriteString("- \"thesis\": concise synthesis (~3 sentences) combining alpha, market data, and news.\n")
	b.WriteString("- \"risk_notes\": explicit downside risks or invalidation points.\n")
	b.WriteString("- \"analysis\": bullet-style breakdown of how each data source influenced the decision.\n")
	b.WriteString("Return *only* the JSON object with no additional commentary.")

	return b.String()
}

// formatAlphaSection renders the top-N and bottom-N ranked scores by signed
// value. When the universe has at most topN members the bottom section is
// omitted. Returns "" for empty scores.
func (a *Agent) formatAlphaSection(scores map[string]float64) string {
	if len(scores) == 0 {
		return ""
	}

	ordered := make([]string, 0, len(scores))
	for symbol := range scores {
		ordered = append(ordered, symbol)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if scores[ordered[i]] != scores[ordered[j]] {
			return scores[ordered[i]] > scores[ordered[j]]
		}
		return ordered[i] < ordered[j]
	})

	top := ordered
	if len(top) > a.topN {
		top = top[:a.topN]
	}

	lines := []string{"Top ranked signals:"}
	for _, symbol := range top {
		lines = append(lines, fmt.Sprintf("- %s: %+.4f", symbol, scores[symbol]))
	}

	if len(ordered) > a.topN {
		bottom := ordered[len(ordered)-a.topN:]
		lines = append(lines, "Lowest ranked signals:")
		for _, symbol := range bottom {
			lines = append(lines, fmt.Sprintf("- %s: %+.4f", symbol, scores[symbol]))
		}
	}

	return strings.Join(lines, "\n")
}

// formatMarketSection renders the focus symbol's snapshot to 4 decimal
// places with an "As of" line when present.
func formatMarketSection(symbol string, marketData map[string]domain.Snapshot) string {
	snapshot, ok := marketData[symbol]
	if symbol == "" || !ok {
		return "No detailed market snapshot available."
	}

	var lines []string
	if snapshot.AsOf != "" {
		lines = append(lines, "As of: "+snapshot.AsOf)
	}

	keys := make([]string, 0, len(snapshot.Features))
	for key := range snapshot.Features {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		lines = append(lines, fmt.Sprintf("%s: %.4f", key, snapshot.Features[key]))
	}

	if len(lines) == 0 {
		return "No detailed market snapshot available."
	}
	return strings.Join(lines, "\n")
}
