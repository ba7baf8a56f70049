// Package ai holds the provider pricing registry used to cost bot usage
// reports.
//
// Bots run outside this service and talk to their AI vendor directly;
// Overseer only receives token counts and prices them server-side so a
// misbehaving bot cannot self-report its own cost.
package ai

import (
	"fmt"

	"github.com/wanderspace/overseer/internal/domain"
)

// Rate is the price of a model in cents per million tokens. Cents per
// million tokens is the same number as micro-cents per token, so all
// arithmetic stays in integers.
type Rate struct {
	InputCentsPerMTok  int64
	OutputCentsPerMTok int64
}

// Cost computes the cost in whole cents for a token count. Micro-cents
// are summed across both directions before the single truncating divide.
func (r Rate) Cost(inputTokens, outputTokens int64) int64 {
	microcents := inputTokens*r.InputCentsPerMTok + outputTokens*r.OutputCentsPerMTok
	return microcents / 1_000_000
}

// rates maps provider and model to pricing. Prices mirror the vendors'
// published per-million-token rates.
var rates = map[domain.AIProvider]map[string]Rate{
	domain.AIProviderAnthropic: {
		"claude-3-5-sonnet-20241022": {InputCentsPerMTok: 300, OutputCentsPerMTok: 1500},
		"claude-3-5-haiku-20241022":  {InputCentsPerMTok: 80, OutputCentsPerMTok: 400},
		"claude-3-opus-20240229":     {InputCentsPerMTok: 1500, OutputCentsPerMTok: 7500},
		"claude-3-haiku-20240307":    {InputCentsPerMTok: 25, OutputCentsPerMTok: 125},
	},
	domain.AIProviderOpenAI: {
		"gpt-4o":        {InputCentsPerMTok: 250, OutputCentsPerMTok: 1000},
		"gpt-4o-mini":   {InputCentsPerMTok: 15, OutputCentsPerMTok: 60},
		"gpt-4.1":       {InputCentsPerMTok: 200, OutputCentsPerMTok: 800},
		"gpt-4.1-mini":  {InputCentsPerMTok: 40, OutputCentsPerMTok: 160},
		"gpt-3.5-turbo": {InputCentsPerMTok: 50, OutputCentsPerMTok: 150},
	},
}

// defaultRates is the fallback pricing applied when a model is not in the
// table. Set to each provider's flagship rate so unknown models are never
// undercharged.
var defaultRates = map[domain.AIProvider]Rate{
	domain.AIProviderAnthropic: {InputCentsPerMTok: 300, OutputCentsPerMTok: 1500},
	domain.AIProviderOpenAI:    {InputCentsPerMTok: 250, OutputCentsPerMTok: 1000},
}

// Lookup returns the rate for a provider and model. The second return
// reports whether the model was found in the pricing table; when false
// the provider's default rate is returned and the caller should flag the
// usage record.
func Lookup(provider domain.AIProvider, model string) (Rate, bool) {
	if models, ok := rates[provider]; ok {
		if rate, ok := models[model]; ok {
			return rate, true
		}
	}
	return defaultRates[provider], false
}

// Price computes the cost in cents for a usage report.
//
// Unknown models price at the provider's default rate; the second return
// is false in that case so the caller can record the fallback. An unknown
// provider is an error.
func Price(provider domain.AIProvider, model string, inputTokens, outputTokens int64) (int64, bool, error) {
	if !provider.IsValid() {
		return 0, false, fmt.Errorf("unknown ai provider %q", provider)
	}
	rate, exact := Lookup(provider, model)
	return rate.Cost(inputTokens, outputTokens), exact, nil
}
