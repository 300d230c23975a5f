package grab

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/elsanchez/linkgrab/internal/domain"
	"github.com/elsanchez/linkgrab/internal/downloader"
	"github.com/elsanchez/linkgrab/internal/repository"
)

// Async commands that return tea.Msg

const historyLimit = 20

func resolveURL(r Resolver, gen uint64, url string) tea.Cmd {
	return func() tea.Msg {
		info, err := r.Resolve(context.Background(), url)
		return resolvedMsg{gen: gen, info: info, err: err}
	}
}

// waitForEvent blocks for the next progress event. Once the channel is
// closed it reports the final outcome instead.
func waitForEvent(t *downloader.Transfer, gen uint64) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-t.Events()
		if !ok {
			return transferDoneMsg{gen: gen, transferID: t.ID, outcome: t.Wait()}
		}
		return progressMsg{gen: gen, transferID: t.ID, event: ev}
	}
}

func scheduleReset(gen uint64, after time.Duration) tea.Cmd {
	return tea.Tick(after, func(time.Time) tea.Msg {
		return autoResetMsg{gen: gen}
	})
}

func readClipboard(cb ClipboardReader) tea.Cmd {
	return func() tea.Msg {
		text, ok := cb.ReadOnce()
		return pasteMsg{text: text, ok: ok}
	}
}

func loadHistory(repo repository.HistoryRepository) tea.Cmd {
	return func() tea.Msg {
		items, err := repo.GetRecent(context.Background(), historyLimit)
		return historyLoadedMsg{items: items, err: err}
	}
}

func saveHistory(repo repository.HistoryRepository, item *domain.HistoryItem) tea.Cmd {
	return func() tea.Msg {
		_, err := repo.Create(context.Background(), item)
		return historySavedMsg{err: err}
	}
}

func clearHistory(repo repository.HistoryRepository) tea.Cmd {
	return func() tea.Msg {
		err := repo.Clear(context.Background())
		return historyClearedMsg{err: err}
	}
}
