package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/lyricmind/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHeader = "Artist,Title,Album,Year,Date,Lyric\n"

func TestGenerate(t *testing.T) {
	input := testHeader +
		"Adele,Hello,25,2015,2015-10-23,\"Hello, it's me\"\n" +
		"Queen,We Will Rock You,News of the World,1977,1977-10-07,stomp stomp clap\n" +
		"Daft Punk,Around the World,Homework,1997,1997-03-17,techno loop\n"

	result, err := NewGenerator().Generate(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result.Requests, 3)
	assert.Empty(t, result.Failures)
	assert.Empty(t, result.Warnings)

	assert.Equal(t, "Hello", result.Requests[0].Title)
	assert.Equal(t, "Hello, it's me", result.Requests[0].Lyrics)
	assert.Equal(t, GenreRock, result.Requests[1].Genre)
	assert.Equal(t, GenreElectronic, result.Requests[2].Genre)
	assert.Equal(t, 1997, result.Requests[2].ReleaseYear)
}

func TestGenerate_EmptySource(t *testing.T) {
	_, err := NewGenerator().Generate(context.Background(), strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptySource)
}

func TestGenerate_HeaderOnly(t *testing.T) {
	result, err := NewGenerator().Generate(context.Background(), strings.NewReader(testHeader))
	require.NoError(t, err)
	assert.Empty(t, result.Requests)
	assert.Empty(t, result.Failures)
}

func TestGenerate_MissingColumn(t *testing.T) {
	input := "Artist,Title,Album,Year,Lyric\n" +
		"Adele,Hello,25,2015,words\n"

	result, err := NewGenerator().Generate(context.Background(), strings.NewReader(input))
	require.Error(t, err)
	assert.Nil(t, result)

	var missing *MissingColumnError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, ColumnDate, missing.Column)
}

func TestGenerate_MalformedYearKeepsRow(t *testing.T) {
	input := testHeader + "Adele,Hello,25,abc,2015-10-23,words\n"

	result, err := NewGenerator().Generate(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result.Requests, 1)
	assert.Equal(t, core.DefaultReleaseYear, result.Requests[0].ReleaseYear)
	assert.Empty(t, result.Failures)

	require.Len(t, result.Warnings, 1)
	assert.Equal(t, 2, result.Warnings[0].Line)
	assert.ErrorIs(t, result.Warnings[0], ErrInvalidYear)
}

func TestGenerate_IntegerYearsKept(t *testing.T) {
	input := testHeader +
		"A,Zero,X,0,d,l\n" +
		"B,Future,X,12000,d,l\n" +
		"C,Before,X,-5,d,l\n" +
		"D,Signed,X,+2001,d,l\n"

	result, err := NewGenerator().Generate(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result.Requests, 4)

	years := make([]int, len(result.Requests))
	for i, request := range result.Requests {
		years[i] = request.ReleaseYear
	}
	assert.Equal(t, []int{0, 12000, -5, 2001}, years)
	assert.Empty(t, result.Warnings)
}

func TestGenerate_ShortRowSkippedOrderPreserved(t *testing.T) {
	input := testHeader +
		"First,One,Album,2001,2001-01-01,a\n" +
		"Short,Row\n" +
		"\n" +
		"Third,Three,Album,2003,2003-01-01,c\n"

	result, err := NewGenerator().Generate(context.Background(), strings.NewReader(input))
	require.NoError(t, err)

	require.Len(t, result.Requests, 2)
	assert.Equal(t, "One", result.Requests[0].Title)
	assert.Equal(t, "Three", result.Requests[1].Title)

	require.Len(t, result.Failures, 2)
	assert.Equal(t, 3, result.Failures[0].Line)
	assert.Equal(t, 4, result.Failures[1].Line)
	for _, failure := range result.Failures {
		assert.ErrorIs(t, failure, ErrShortRow)
	}
}

func TestGenerate_NoDedup(t *testing.T) {
	row := "Adele,Hello,25,2015,2015-10-23,words\n"
	result, err := NewGenerator().Generate(context.Background(), strings.NewReader(testHeader+row+row))
	require.NoError(t, err)
	assert.Len(t, result.Requests, 2)
}

func TestGenerate_CRLFAndBOM(t *testing.T) {
	input := "\uFEFFArtist,Title,Album,Year,Date,Lyric\r\n" +
		"Adele,Hello,25,2015,2015-10-23,words\r\n" +
		"Adele,Skyfall,Skyfall,2012,2012-10-05,no trailing newline"

	result, err := NewGenerator().Generate(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result.Requests, 2)
	assert.Equal(t, "words", result.Requests[0].Lyrics)
	assert.Equal(t, "no trailing newline", result.Requests[1].Lyrics)
}

func TestGenerate_LongLine(t *testing.T) {
	lyrics := strings.Repeat("la ", 100_000)
	input := testHeader + "Artist,Title,Album,2001,2001-01-01," + lyrics + "\n"

	result, err := NewGenerator().Generate(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, result.Requests, 1)
	assert.Equal(t, strings.TrimSpace(lyrics), result.Requests[0].Lyrics)
}

func TestGenerate_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewGenerator().Generate(ctx, strings.NewReader(testHeader+"a,b,c,2001,d,e\n"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGenerateFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "songs.csv")
	input := testHeader +
		"Adele,Hello,25,2015,2015-10-23,words\n" +
		"bad\n"
	require.NoError(t, os.WriteFile(path, []byte(input), 0644))

	result, err := NewGenerator().GenerateFromFile(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, result.Requests, 1)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, path, result.Failures[0].Source)
	assert.Contains(t, result.Failures[0].Error(), path+":3")
}

func TestGenerateFromFile_NotFound(t *testing.T) {
	_, err := NewGenerator().GenerateFromFile(context.Background(), filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
