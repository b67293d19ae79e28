package synth

import "github.com/book-expert/audiobook-service/internal/core"

// Voice is one entry in a provider's voice catalog. Catalogs are static
// reference data, loaded once at process start and never mutated.
type Voice struct {
	ID          string
	DisplayName string
	Gender      string
	Language    string
}

var localVoices = []Voice{
	{ID: "default", DisplayName: "Default", Gender: "neutral", Language: "en"},
	{ID: "male1", DisplayName: "Male 1", Gender: "male", Language: "en"},
	{ID: "female1", DisplayName: "Female 1", Gender: "female", Language: "en"},
}

var openAIVoices = []Voice{
	{ID: "alloy", DisplayName: "Alloy", Gender: "neutral", Language: "en"},
	{ID: "echo", DisplayName: "Echo", Gender: "male", Language: "en"},
	{ID: "fable", DisplayName: "Fable", Gender: "male", Language: "en"},
	{ID: "onyx", DisplayName: "Onyx", Gender: "male", Language: "en"},
	{ID: "nova", DisplayName: "Nova", Gender: "female", Language: "en"},
	{ID: "shimmer", DisplayName: "Shimmer", Gender: "female", Language: "en"},
}

var elevenLabsVoices = []Voice{
	{ID: "21m00Tcm4TlvDq8ikWAM", DisplayName: "Rachel", Gender: "female", Language: "en"},
	{ID: "AZnzlk1XvdvUeBnXmlld", DisplayName: "Domi", Gender: "female", Language: "en"},
	{ID: "ErXwobaYiN019PkySvjV", DisplayName: "Antoni", Gender: "male", Language: "en"},
	{ID: "pNInz6obpgDQGcFmaJgB", DisplayName: "Adam", Gender: "male", Language: "en"},
}

var catalogs = map[core.Provider][]Voice{
	core.ProviderLocal:      localVoices,
	core.ProviderOpenAI:     openAIVoices,
	core.ProviderElevenLabs: elevenLabsVoices,
}

// Catalog returns the voice catalog for a provider. The returned slice
// must not be modified.
func Catalog(provider core.Provider) []Voice {
	return catalogs[provider]
}

// DefaultVoice returns the fixed fallback voice for a provider. Every
// supported provider's catalog has its default at index zero; an unknown
// provider yields the zero Voice.
func DefaultVoice(provider core.Provider) Voice {
	voices := catalogs[provider]
	if len(voices) == 0 {
		return Voice{ID: "", DisplayName: "", Gender: "", Language: ""}
	}

	return voices[0]
}

// ResolveVoice validates a requested voice ID against the provider's
// catalog, falling back to the provider default when the ID is unset or
// unknown.
func ResolveVoice(provider core.Provider, voiceID string) Voice {
	for _, voice := range Catalog(provider) {
		if voice.ID == voiceID {
			return voice
		}
	}

	return DefaultVoice(provider)
}
