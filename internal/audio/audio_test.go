// Package audio_test tests chunk assembly and the format tables.
package audio_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/book-expert/audiobook-service/internal/audio"
	"github.com/book-expert/audiobook-service/internal/core"
)

func TestAssemble_PreservesOrder(t *testing.T) {
	t.Parallel()

	assembled := audio.Assemble([][]byte{
		[]byte("first-"),
		[]byte("second-"),
		[]byte("third"),
	})

	assert.Equal(t, []byte("first-second-third"), assembled)
}

func TestAssemble_SizeIsSumOfChunks(t *testing.T) {
	t.Parallel()

	chunks := [][]byte{
		make([]byte, 10),
		make([]byte, 20),
		make([]byte, 30),
	}

	assert.Len(t, audio.Assemble(chunks), 60)
}

func TestAssemble_Empty(t *testing.T) {
	t.Parallel()

	assert.Empty(t, audio.Assemble(nil))
	assert.Empty(t, audio.Assemble([][]byte{{}, {}}))
}

func TestFormatTables_Exhaustive(t *testing.T) {
	t.Parallel()

	for _, format := range audio.Formats() {
		contentType, err := audio.ContentType(format)
		require.NoError(t, err)
		assert.NotEmpty(t, contentType)

		ext, err := audio.Extension(format)
		require.NoError(t, err)
		assert.NotEmpty(t, ext)

		parsed, err := audio.ParseFormat(string(format))
		require.NoError(t, err)
		assert.Equal(t, format, parsed)
	}
}

func TestFormatTables_KnownValues(t *testing.T) {
	t.Parallel()

	contentType, err := audio.ContentType(core.FormatMP3)
	require.NoError(t, err)
	assert.Equal(t, "audio/mpeg", contentType)

	ext, err := audio.Extension(core.FormatFLAC)
	require.NoError(t, err)
	assert.Equal(t, "flac", ext)
}

func TestFormatTables_Unknown(t *testing.T) {
	t.Parallel()

	_, err := audio.ParseFormat("ogg-vorbis")
	require.ErrorIs(t, err, core.ErrUnknownFormat)

	_, err = audio.ContentType(core.Format("midi"))
	require.ErrorIs(t, err, core.ErrUnknownFormat)

	_, err = audio.Extension(core.Format("midi"))
	require.ErrorIs(t, err, core.ErrUnknownFormat)
}
