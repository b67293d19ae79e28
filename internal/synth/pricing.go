package synth

import "github.com/book-expert/audiobook-service/internal/core"

// Billing rates. Synthesis cost is a pure linear function of character
// count per provider, so per-chunk costs always sum to the cost of the
// full text.
const (
	// openAIRatePerMillionChars is the OpenAI speech price in USD per
	// 1,000,000 input characters.
	openAIRatePerMillionChars = 15.0
	// elevenLabsRatePerThousandChars is the ElevenLabs price in USD per
	// 1,000 input characters.
	elevenLabsRatePerThousandChars = 0.30

	charsPerMillion  = 1_000_000
	charsPerThousand = 1_000
)

// perCharRate maps each provider to its USD cost per character. The local
// engine is self-hosted and free.
var perCharRate = map[core.Provider]float64{
	core.ProviderLocal:      0,
	core.ProviderOpenAI:     openAIRatePerMillionChars / charsPerMillion,
	core.ProviderElevenLabs: elevenLabsRatePerThousandChars / charsPerThousand,
}

// Cost returns the billed USD cost of synthesizing chars characters with
// the given provider. Unknown providers cost nothing; the registry rejects
// them before any call is made.
func Cost(provider core.Provider, chars int) float64 {
	return float64(chars) * perCharRate[provider]
}
