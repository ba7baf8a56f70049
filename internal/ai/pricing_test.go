package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wanderspace/overseer/internal/domain"
)

func TestPrice_KnownModels(t *testing.T) {
	tests := []struct {
		name         string
		provider     domain.AIProvider
		model        string
		inputTokens  int64
		outputTokens int64
		wantCents    int64
	}{
		{
			name:         "sonnet one million each direction",
			provider:     domain.AIProviderAnthropic,
			model:        "claude-3-5-sonnet-20241022",
			inputTokens:  1_000_000,
			outputTokens: 1_000_000,
			wantCents:    1800, // 300 + 1500
		},
		{
			name:         "haiku small report",
			provider:     domain.AIProviderAnthropic,
			model:        "claude-3-5-haiku-20241022",
			inputTokens:  50_000,
			outputTokens: 10_000,
			wantCents:    8, // 4_000_000 + 4_000_000 microcents
		},
		{
			name:         "gpt-4o-mini",
			provider:     domain.AIProviderOpenAI,
			model:        "gpt-4o-mini",
			inputTokens:  2_000_000,
			outputTokens: 500_000,
			wantCents:    60, // 30 + 30
		},
		{
			name:         "zero tokens cost nothing",
			provider:     domain.AIProviderOpenAI,
			model:        "gpt-4o",
			inputTokens:  0,
			outputTokens: 0,
			wantCents:    0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cents, exact, err := Price(tt.provider, tt.model, tt.inputTokens, tt.outputTokens)
			require.NoError(t, err)
			assert.True(t, exact, "model should be in the pricing table")
			assert.Equal(t, tt.wantCents, cents)
		})
	}
}

func TestPrice_UnknownModelUsesDefaultRate(t *testing.T) {
	cents, exact, err := Price(domain.AIProviderAnthropic, "claude-9-experimental", 1_000_000, 1_000_000)
	require.NoError(t, err)

	assert.False(t, exact, "unknown model should not report an exact price")
	assert.Equal(t, int64(1800), cents, "default rate should match the flagship model")
}

func TestPrice_UnknownProvider(t *testing.T) {
	_, _, err := Price(domain.AIProvider("mistral"), "mistral-large", 100, 100)
	require.Error(t, err)
}

func TestRate_CostSumsBeforeDividing(t *testing.T) {
	// 900k input microcents plus 150k output microcents is 1.05 cents.
	// Dividing per direction would truncate both to zero.
	rate := Rate{InputCentsPerMTok: 300, OutputCentsPerMTok: 1500}
	assert.Equal(t, int64(1), rate.Cost(3_000, 100))
}

func TestLookup_DefaultRateCoversEveryProvider(t *testing.T) {
	for _, provider := range []domain.AIProvider{domain.AIProviderAnthropic, domain.AIProviderOpenAI} {
		rate, exact := Lookup(provider, "does-not-exist")
		assert.False(t, exact)
		assert.Positive(t, rate.InputCentsPerMTok, "provider %s needs a default rate", provider)
		assert.Positive(t, rate.OutputCentsPerMTok, "provider %s needs a default rate", provider)
	}
}
