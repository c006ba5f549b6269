package search

import (
	"github.com/poiesic/lyricmind/core"
	"github.com/tmc/langchaingo/schema"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterSimilaritySearch(docs []schema.Document)
	AfterSongRetrieval(songs []*core.Song)
	VerbatimHit(song *core.Song)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                            {}
func (n *noopMonitor) AfterSimilaritySearch(_ []schema.Document) {}
func (n *noopMonitor) AfterSongRetrieval(_ []*core.Song)         {}
func (n *noopMonitor) VerbatimHit(_ *core.Song)                  {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)             {}
