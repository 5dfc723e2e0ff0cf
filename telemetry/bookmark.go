package telemetry

import (
	"fmt"
	"log/slog"
)

// BookmarkType identifies the type of bookmark.
type BookmarkType string

const (
	BookmarkBreakthrough BookmarkType = "fitness_breakthrough"
	BookmarkStagnation   BookmarkType = "stagnation"
	BookmarkCollapse     BookmarkType = "collapse"
)

// Bookmark marks an epoch worth a closer look.
type Bookmark struct {
	Type        BookmarkType `csv:"type"`
	Epoch       int          `csv:"epoch"`
	Species     string       `csv:"species"`
	Description string       `csv:"description"`
}

// LogBookmark logs the bookmark using slog.
func (b Bookmark) LogBookmark() {
	slog.Info("bookmark",
		"type", string(b.Type),
		"epoch", b.Epoch,
		"species", b.Species,
		"description", b.Description,
	)
}

// speciesHistory tracks one species across epochs.
type speciesHistory struct {
	bestMax       float64
	seen          bool
	sinceImproved int
	lastMean      float64
}

// BookmarkDetector flags breakthroughs, stagnation and collapses per species.
type BookmarkDetector struct {
	stagnantEpochs int
	species        map[string]*speciesHistory
}

// NewBookmarkDetector creates a detector that reports stagnation after
// stagnantEpochs epochs without a new best.
func NewBookmarkDetector(stagnantEpochs int) *BookmarkDetector {
	if stagnantEpochs < 2 {
		stagnantEpochs = 2
	}
	return &BookmarkDetector{
		stagnantEpochs: stagnantEpochs,
		species:        make(map[string]*speciesHistory),
	}
}

// Check analyzes the latest stats and returns any triggered bookmarks.
func (bd *BookmarkDetector) Check(stats EpochStats) []Bookmark {
	h, ok := bd.species[stats.Species]
	if !ok {
		h = &speciesHistory{}
		bd.species[stats.Species] = h
	}

	var bookmarks []Bookmark
	if !h.seen {
		h.seen = true
		h.bestMax = stats.FitnessMax
		h.lastMean = stats.FitnessMean
		return nil
	}

	// Breakthrough: best fitness beats the previous record by at least 25%
	if stats.FitnessMax > h.bestMax {
		if h.bestMax > 0 && stats.FitnessMax >= h.bestMax*1.25 {
			bookmarks = append(bookmarks, Bookmark{
				Type:        BookmarkBreakthrough,
				Epoch:       stats.Epoch,
				Species:     stats.Species,
				Description: fmt.Sprintf("Best fitness %.2f is %.1fx the previous record %.2f", stats.FitnessMax, stats.FitnessMax/h.bestMax, h.bestMax),
			})
		}
		h.bestMax = stats.FitnessMax
		h.sinceImproved = 0
	} else {
		h.sinceImproved++
		if h.sinceImproved == bd.stagnantEpochs { // trigger once per plateau
			bookmarks = append(bookmarks, Bookmark{
				Type:        BookmarkStagnation,
				Epoch:       stats.Epoch,
				Species:     stats.Species,
				Description: fmt.Sprintf("No new best fitness for %d epochs (record %.2f)", h.sinceImproved, h.bestMax),
			})
		}
	}

	// Collapse: mean fitness dropped by more than half
	if h.lastMean > 0 && stats.FitnessMean < h.lastMean*0.5 {
		bookmarks = append(bookmarks, Bookmark{
			Type:        BookmarkCollapse,
			Epoch:       stats.Epoch,
			Species:     stats.Species,
			Description: fmt.Sprintf("Mean fitness fell from %.2f to %.2f", h.lastMean, stats.FitnessMean),
		})
	}
	h.lastMean = stats.FitnessMean

	return bookmarks
}
