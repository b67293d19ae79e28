// Package textchunk splits raw text into bounded, order-preserving segments
// sized for per-call synthesis limits.
package textchunk

import (
	"strings"

	"github.com/book-expert/audiobook-service/internal/core"
)

// DefaultChunkChars is the per-chunk character budget used when the
// configuration does not override it.
const DefaultChunkChars = 2000

// sentenceTerminators end a sentence when they close a word.
const sentenceTerminators = ".!?"

// closingMarks may trail a sentence terminator without breaking it.
const closingMarks = `"')]”’`

// Split divides text into chunks of at most limit characters (runes).
//
// The chunks are an exact partition of the input: concatenating them in
// index order reproduces the original text byte for byte. Cuts fall only
// inside whitespace runs, never inside a word; a single word longer than
// the limit is placed alone in its own oversized chunk. When a full chunk
// contains a sentence boundary in its latter half, the cut is moved back
// to that boundary so chunks tend to end on complete sentences.
//
// Split is deterministic: the same text and limit always produce the same
// chunk sequence. A non-positive limit yields the whole text as one chunk.
func Split(text string, limit int) []core.Chunk {
	if text == "" {
		return nil
	}

	if limit <= 0 {
		return []core.Chunk{{Index: 0, Text: text}}
	}

	splitter := &splitter{
		limit:       limit,
		chunks:      nil,
		current:     nil,
		sentenceCut: 0,
	}

	for _, seg := range segment(text) {
		if seg.space {
			splitter.addSpace(seg.runes)
		} else {
			splitter.addWord(seg.runes)
		}
	}

	splitter.flush()

	return splitter.chunks
}

// segmentRun is a maximal run of either whitespace or non-whitespace runes.
type segmentRun struct {
	runes []rune
	space bool
}

// segment tokenizes text into alternating word and whitespace runs.
func segment(text string) []segmentRun {
	var (
		runs    []segmentRun
		current []rune
		inSpace bool
	)

	for i, r := range []rune(text) {
		isSpace := isWhitespace(r)
		if i > 0 && isSpace != inSpace {
			runs = append(runs, segmentRun{runes: current, space: inSpace})
			current = nil
		}

		current = append(current, r)
		inSpace = isSpace
	}

	if len(current) > 0 {
		runs = append(runs, segmentRun{runes: current, space: inSpace})
	}

	return runs
}

func isWhitespace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\v' || r == '\f'
}

type splitter struct {
	limit  int
	chunks []core.Chunk
	// current accumulates runes for the chunk being built.
	current []rune
	// sentenceCut is the rune offset in current just after the most recent
	// sentence boundary, or 0 when none has been seen in this chunk.
	sentenceCut int
}

// addSpace appends a whitespace run, splitting it across chunks when it
// overflows the budget. Whitespace may be cut anywhere.
func (s *splitter) addSpace(runes []rune) {
	endedSentence := s.endsSentence()

	for len(runes) > 0 {
		room := s.limit - len(s.current)
		if room == 0 {
			s.flush()

			continue
		}

		take := min(room, len(runes))
		s.current = append(s.current, runes[:take]...)
		runes = runes[take:]
	}

	if endedSentence {
		s.sentenceCut = len(s.current)
	}
}

// addWord appends a word run. Words are never split: an over-limit word is
// emitted alone in its own chunk, and a word that does not fit the current
// chunk forces a cut first.
func (s *splitter) addWord(runes []rune) {
	if len(runes) > s.limit {
		s.flush()
		s.emit(string(runes))

		return
	}

	if len(s.current)+len(runes) > s.limit {
		s.cutAtSentence()
	}

	if len(s.current)+len(runes) > s.limit {
		s.flush()
	}

	s.current = append(s.current, runes...)
}

// cutAtSentence flushes the current chunk, preferring the last sentence
// boundary when it falls in the latter half of the budget. The remainder
// after the boundary carries into the next chunk.
func (s *splitter) cutAtSentence() {
	if s.sentenceCut < (s.limit+1)/2 || s.sentenceCut >= len(s.current) {
		s.flush()

		return
	}

	cut := s.sentenceCut
	s.emit(string(s.current[:cut]))

	s.current = append([]rune(nil), s.current[cut:]...)
}

// endsSentence reports whether the accumulated text currently ends a
// sentence, ignoring one trailing closing quote or bracket.
func (s *splitter) endsSentence() bool {
	runes := s.current
	if len(runes) > 0 && strings.ContainsRune(closingMarks, runes[len(runes)-1]) {
		runes = runes[:len(runes)-1]
	}

	if len(runes) == 0 {
		return false
	}

	return strings.ContainsRune(sentenceTerminators, runes[len(runes)-1])
}

func (s *splitter) flush() {
	if len(s.current) == 0 {
		return
	}

	s.emit(string(s.current))
	s.current = s.current[:0]
}

func (s *splitter) emit(text string) {
	s.chunks = append(s.chunks, core.Chunk{Index: len(s.chunks), Text: text})
	s.sentenceCut = 0
}
