// Package audio provides audio-format reference tables and chunk assembly
// for the synthesis pipeline.
package audio

import (
	"fmt"

	"github.com/book-expert/audiobook-service/internal/core"
)

// contentTypes maps each output format to its MIME content type.
var contentTypes = map[core.Format]string{
	core.FormatMP3:  "audio/mpeg",
	core.FormatWAV:  "audio/wav",
	core.FormatAAC:  "audio/aac",
	core.FormatFLAC: "audio/flac",
}

// extensions maps each output format to its file extension, without the dot.
var extensions = map[core.Format]string{
	core.FormatMP3:  "mp3",
	core.FormatWAV:  "wav",
	core.FormatAAC:  "aac",
	core.FormatFLAC: "flac",
}

// Formats returns all supported output formats.
func Formats() []core.Format {
	return []core.Format{core.FormatMP3, core.FormatWAV, core.FormatAAC, core.FormatFLAC}
}

// ContentType returns the MIME content type for a format.
func ContentType(format core.Format) (string, error) {
	contentType, ok := contentTypes[format]
	if !ok {
		return "", fmt.Errorf("%w: %q", core.ErrUnknownFormat, format)
	}

	return contentType, nil
}

// Extension returns the file extension for a format, without the dot.
func Extension(format core.Format) (string, error) {
	ext, ok := extensions[format]
	if !ok {
		return "", fmt.Errorf("%w: %q", core.ErrUnknownFormat, format)
	}

	return ext, nil
}

// ParseFormat validates a raw format string from configuration or a job
// submission and returns the matching format.
func ParseFormat(raw string) (core.Format, error) {
	format := core.Format(raw)
	if _, ok := contentTypes[format]; !ok {
		return "", fmt.Errorf("%w: %q", core.ErrUnknownFormat, raw)
	}

	return format, nil
}
