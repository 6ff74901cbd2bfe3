package persona

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/dgraph-io/ristretto"
	"go.uber.org/zap"

	"github.com/simplcli/dobby/internal/agent"
	"github.com/simplcli/dobby/internal/llm"
	"github.com/simplcli/dobby/internal/scrape"
)

const walletSystemPrompt = `You are an expert crypto portfolio analyst. Your tone is sharp, insightful, and professional.
You are given a wallet address, its chain, and whatever public explorer data could be gathered.
Produce a concise Markdown report with these sections:
# Executive Summary
# Asset Allocation & Diversification
# Risk Profile
# Brief Recommendations
Be explicit about what the data does and does not show. Never invent balances.`

// addressPatterns, most specific first. The base58 pattern is last
// because it also matches parts of the other formats.
var addressPatterns = []struct {
	re    *regexp.Regexp
	chain string
}{
	{regexp.MustCompile(`\b0x[a-fA-F0-9]{40}\b`), "ethereum"},
	{regexp.MustCompile(`\bbc1[a-zA-Z0-9]{25,39}\b`), "bitcoin"},
	{regexp.MustCompile(`\b[13][a-km-zA-HJ-NP-Z1-9]{25,34}\b`), "bitcoin"},
	{regexp.MustCompile(`\b[1-9A-HJ-NP-Za-km-z]{32,44}\b`), "solana"},
}

// explorerURL builds the public explorer page for an address.
func explorerURL(chain, address string) string {
	switch chain {
	case "ethereum":
		return "https://etherscan.io/address/" + address
	case "bitcoin":
		return "https://www.blockchain.com/explorer/addresses/btc/" + address
	case "solana":
		return "https://solscan.io/account/" + address
	}
	return ""
}

// Wallet analyzes cryptocurrency addresses found in the message.
// Finished reports are cached per address so asking about the same
// wallet twice in a session does not redo the work.
type Wallet struct {
	completer llm.Completer
	fetcher   *scrape.Fetcher
	reports   *ristretto.Cache
	log       *zap.Logger
}

const walletReportTTL = 15 * time.Minute

// NewWallet builds the address-analysis persona.
func NewWallet(completer llm.Completer, fetcher *scrape.Fetcher, log *zap.Logger) (*Wallet, error) {
	reports, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1 << 10,
		MaxCost:     8 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create report cache: %w", err)
	}
	return &Wallet{
		completer: completer,
		fetcher:   fetcher,
		reports:   reports,
		log:       log.Named("wallet"),
	}, nil
}

// DetectAddress returns the first crypto address in text and its
// chain, or empty strings when none matches.
func DetectAddress(text string) (address, chain string) {
	for _, p := range addressPatterns {
		if m := p.re.FindString(text); m != "" {
			return m, p.chain
		}
	}
	return "", ""
}

func (w *Wallet) Handle(ctx context.Context, req Request) (*agent.Response, error) {
	address, chain := DetectAddress(req.Text)
	if address == "" {
		return &agent.Response{
			Text: "I could not find a wallet address in that message. Paste an EVM, Bitcoin, or Solana address and I'll analyze it.",
		}, nil
	}

	if cached, ok := w.reports.Get(address); ok {
		if report, ok := cached.(string); ok {
			w.log.Debug("report cache hit", zap.String("address", address))
			return &agent.Response{Text: report}, nil
		}
	}

	// Explorer data is best effort; the report degrades to an
	// address-format analysis when the page cannot be read.
	var explorerText string
	if url := explorerURL(chain, address); url != "" {
		if page, err := w.fetcher.Fetch(ctx, url); err == nil {
			explorerText = truncate(page.Text, maxPageChars)
		} else {
			w.log.Warn("explorer fetch failed",
				zap.String("address", address), zap.Error(err))
		}
	}

	prompt := fmt.Sprintf("Address: %s\nChain: %s\n", address, chain)
	if explorerText != "" {
		prompt += fmt.Sprintf("\nEXPLORER PAGE TEXT:\n---\n%s\n---\n", explorerText)
	} else {
		prompt += "\nNo explorer data could be fetched. Analyze what the address format itself tells us and say the balances are unavailable.\n"
	}

	report, err := w.completer.Complete(ctx, llm.Request{
		System:      walletSystemPrompt,
		Prompt:      prompt,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, err
	}

	w.reports.SetWithTTL(address, report, int64(len(report)), walletReportTTL)
	return &agent.Response{Text: report}, nil
}
