package news

import (
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ovtrader/ov-trader/internal/agent"
	"github.com/ovtrader/ov-trader/internal/llm"
)

// AgentName is the shared-memory key this agent writes under
const AgentName = "news_sentiment"

// Agent collects news headlines and summarises them with a model. The
// generic model-backed execution path handles invocation and failure
// capture; this type only supplies the prompt.
type Agent struct {
	*agent.ModelBacked
	sources []string
}

// New creates the news sentiment agent. A nil client leaves the agent in
// not-configured mode.
func New(client llm.Client, opts llm.Options, sources []string, log zerolog.Logger) *Agent {
	if len(sources) == 0 {
		sources = []string{"https://newsapi.org/", "https://cryptopanic.com/"}
	}

	a := &Agent{sources: sources}
	a.ModelBacked = agent.NewModelBacked(AgentName, client, a, opts, log)
	return a
}

// FetchHeadlines returns the latest headlines. Most aggregation services
// require API keys, so this returns placeholder items; wire a real feed by
// replacing this method's data source.
func (a *Agent) FetchHeadlines() []string {
	now := time.Now().UTC().Format("2006-01-02 15:04")
	return []string{
		fmt.Sprintf("[%s] Placeholder headline about macro environment", now),
		fmt.Sprintf("[%s] Placeholder crypto regulation update", now),
	}
}

// BuildPrompt renders the macro-strategist prompt over current headlines
func (a *Agent) BuildPrompt(_ *agent.Context) string {
	headlines := a.FetchHeadlines()
	lines := make([]string, len(headlines))
	for i, headline := range headlines {
		lines[i] = "- " + headline
	}

	return "You are a global macro strategist. Analyse the following headlines and produce:\n" +
		"1. A sentiment score between -1 (bearish) and +1 (bullish).\n" +
		"2. Key catalysts relevant to equities and crypto.\n" +
		"3. A list of tickers that could be impacted.\n" +
		"\nHeadlines:\n" + strings.Join(lines, "\n") + "\n"
}
