package main

import (
	"bufio"
	"context"
	"fmt"
	"iter"
	"os"
	"strings"

	"github.com/poiesic/lyricmind/core"
	"github.com/urfave/cli/v2"
)

const seedArtist = "Seed Ensemble"

var verses = []string{
	"The porch light hums a tune it never learned",
	"Your coat still hangs where summer left it",
	"I count the trains that do not stop here",
	"And every one of them is going home",
	"We wrote our names in wet cement on Main",
	"The town paved over it the spring you left",
	"But I can feel the letters underfoot",
	"Whenever I walk down to buy the paper",
	"Thunder rolling over the county line",
	"Dogs are barking at a sky gone green",
	"Mama pulls the washing off the wire",
	"Daddy says the creek will rise by nine",
	"Neon on the wet street spelling open",
	"Half the letters burned out years ago",
	"The jukebox only plays the sad ones now",
	"And the bartender knows them all by heart",
	"Lay your burden down beside the river",
	"Let the water carry what you cannot",
	"There is a morning waiting past the hill",
	"And a table set with room for you",
	"Static on the radio at midnight",
	"Some preacher selling heaven by the pound",
	"I turn the dial to find your station",
	"But all I get is ocean sound",
	"She dances like the floor owes her money",
	"Spins until the fiddler drops his bow",
	"Nobody in this hall can keep up with her",
	"And nobody here would ever want to try",
	"Snow on the windshield and the heater dying",
	"Ninety miles of highway left to go",
	"I sing the chorus louder than the engine",
	"To keep the sleep from pulling on my eyes",
	"Take the long way round the old cathedral",
	"Where the pigeons hold their morning court",
	"I lit a candle there for someone's mother",
	"And forgot to ask the saint for anything",
	"Drums in the basement shaking the foundation",
	"Neighbors calling cops on Saturday",
	"We were young and loud and never sorry",
	"And the amplifiers never let us down",
}

// linesFromFile returns an iterator over the non-blank lines in a file.
func linesFromFile(filename string) (iter.Seq[string], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			if !yield(line) {
				return
			}
		}
	}, nil
}

// linesFromSlice returns an iterator over a slice of strings.
func linesFromSlice(lines []string) iter.Seq[string] {
	return func(yield func(string) bool) {
		for _, line := range lines {
			if !yield(line) {
				return
			}
		}
	}
}

// songsFromLines groups every linesPerSong lines into one song request. The
// first line of a group becomes the title; a short final group still yields
// a song.
func songsFromLines(source iter.Seq[string], linesPerSong int) iter.Seq[core.SongRequest] {
	return func(yield func(core.SongRequest) bool) {
		group := make([]string, 0, linesPerSong)
		number := 0
		flush := func() bool {
			number++
			req := core.SongRequest{
				Title:  group[0],
				Artist: seedArtist,
				Album:  fmt.Sprintf("Seed Sessions Vol. %d", (number-1)/10+1),
				Genre:  "Folk",
				Lyrics: strings.Join(group, "\n"),
			}.WithDefaults()
			group = group[:0]
			return yield(req)
		}

		for line := range source {
			group = append(group, line)
			if len(group) == linesPerSong && !flush() {
				return
			}
		}
		if len(group) > 0 {
			flush()
		}
	}
}

type songEmbedder interface {
	EmbedSongs(ctx context.Context, requests []core.SongRequest) (int, error)
}

// embedBatched reads songs from a source iterator and embeds them in batches.
func embedBatched(ctx context.Context, embedder songEmbedder, source iter.Seq[core.SongRequest], batchSize int) (int, error) {
	batch := make([]core.SongRequest, 0, batchSize)
	total := 0

	for req := range source {
		batch = append(batch, req)
		if len(batch) == batchSize {
			n, err := embedder.EmbedSongs(ctx, batch)
			if err != nil {
				return total, err
			}
			total += n
			batch = batch[:0]
		}
	}

	// Process any remaining songs
	if len(batch) > 0 {
		n, err := embedder.EmbedSongs(ctx, batch)
		if err != nil {
			return total, err
		}
		total += n
	}

	return total, nil
}

func seedCommand(c *cli.Context) error {
	linesPerSong := c.Int("lines-per-song")
	batchSize := c.Int("batch-size")
	if linesPerSong <= 0 {
		return fmt.Errorf("lines-per-song must be greater than 0")
	}
	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}

	// Determine source of seed data
	var source iter.Seq[string]
	if src := c.String("src"); src != "" {
		var err error
		source, err = linesFromFile(src)
		if err != nil {
			return err
		}
	} else {
		source = linesFromSlice(verses)
	}

	db, err := openDatabase(appConfig(c))
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		return err
	}

	total, err := embedBatched(c.Context, pipeline, songsFromLines(source, linesPerSong), batchSize)
	if err != nil {
		return fmt.Errorf("seeding failed after %d songs: %w", total, err)
	}

	fmt.Fprintf(c.App.Writer, "Seeded %d songs\n", total)
	return nil
}
