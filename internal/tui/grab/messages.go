package grab

import (
	"github.com/elsanchez/linkgrab/internal/domain"
	"github.com/elsanchez/linkgrab/internal/downloader"
)

// Message types for async operations. Every result carries the generation
// it was started under so late arrivals from a discarded lookup are dropped.

type resolvedMsg struct {
	gen  uint64
	info *domain.VideoInfo
	err  error
}

type progressMsg struct {
	gen        uint64
	transferID string
	event      downloader.Event
}

type transferDoneMsg struct {
	gen        uint64
	transferID string
	outcome    domain.DownloadOutcome
}

type autoResetMsg struct {
	gen uint64
}

type pasteMsg struct {
	text string
	ok   bool
}

type historyLoadedMsg struct {
	items []*domain.HistoryItem
	err   error
}

type historySavedMsg struct {
	err error
}

type historyClearedMsg struct {
	err error
}
