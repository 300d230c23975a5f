package grab

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/elsanchez/linkgrab/internal/domain"
	"github.com/elsanchez/linkgrab/internal/downloader"
	"github.com/elsanchez/linkgrab/internal/resolver"
)

const emptyURLMessage = "Please paste a valid video link first."

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Clear previous messages on keypress
		m.errorMessage = ""
		if !m.downloading() {
			m.statusMessage = ""
		}

		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case resolvedMsg:
		return m.handleResolved(msg)

	case progressMsg:
		if !m.isCurrentTransfer(msg.gen, msg.transferID) {
			return m, nil
		}
		if msg.event.Percent > m.percent {
			m.percent = msg.event.Percent
		}
		m.phase = msg.event.Phase
		return m, waitForEvent(m.transfer, msg.gen)

	case transferDoneMsg:
		return m.handleTransferDone(msg)

	case autoResetMsg:
		if !m.engine.Session().ResetIf(msg.gen) {
			return m, nil
		}
		status := m.statusMessage
		m.gen = m.engine.Session().Generation()
		m = m.clearLookup()
		m.statusMessage = status
		return m, nil

	case pasteMsg:
		if msg.ok {
			m.urlInput.SetValue(msg.text)
			m.urlInput.CursorEnd()
		}
		return m, nil

	case historyLoadedMsg:
		if msg.err != nil {
			m.errorMessage = msg.err.Error()
			return m, nil
		}
		m.historyItems = msg.items
		return m, nil

	case historySavedMsg:
		if msg.err != nil {
			m.logger.WithError(msg.err).Warn("Failed to record history")
		}
		return m, nil

	case historyClearedMsg:
		if msg.err != nil {
			m.errorMessage = msg.err.Error()
			return m, nil
		}
		m.historyItems = nil
		m.statusMessage = "✓ History cleared"
		return m, nil

	case spinner.TickMsg:
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	// Update focused input
	if m.currentView == viewInput {
		m.urlInput, cmd = m.urlInput.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleResolved(msg resolvedMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.gen || m.currentView != viewResolving {
		m.logger.WithField("gen", msg.gen).Debug("Dropping stale lookup result")
		return m, nil
	}

	if msg.err != nil {
		m.currentView = viewInput
		m.urlInput.Focus()
		if errors.Is(msg.err, resolver.ErrEmptyURL) {
			m.errorMessage = emptyURLMessage
		} else {
			m.errorMessage = "Could not analyze this link. Try another one."
		}
		return m, nil
	}

	m.info = msg.info
	m.options = mediaOptions(msg.info)
	m.cursor = 0

	if len(m.options) == 0 {
		m.currentView = viewNoMedia
		return m, nil
	}

	m.currentView = viewResult
	return m, nil
}

func (m Model) handleTransferDone(msg transferDoneMsg) (tea.Model, tea.Cmd) {
	if !m.isCurrentTransfer(msg.gen, msg.transferID) {
		return m, nil
	}

	outcome := msg.outcome
	m.transfer = nil
	m.cancel = nil

	log := m.logger.WithFields(logrus.Fields{
		"status": outcome.Status,
		"path":   outcome.Path,
	})

	switch outcome.Status {
	case domain.OutcomeCompleted:
		m.percent = 100
		m.phase = domain.PhaseCompleted
		m.statusMessage = "✓ Saved to " + outcome.Path
	case domain.OutcomeOpenedExternally:
		m.percent = 100
		m.phase = domain.PhaseFailedFallback
		m.statusMessage = "✓ Opened in your browser. Save the file from there."
	case domain.OutcomeBlocked:
		m.percent = 0
		m.phase = domain.PhaseFailedFallback
		m.notice = outcome.Notice
		log.Warn("Download blocked")
		return m, nil
	default:
		m.percent = 0
		m.phase = domain.PhaseIdle
		return m, nil
	}

	log.Info("Download finished")

	var cmds []tea.Cmd
	if outcome.ResetAfter > 0 {
		cmds = append(cmds, scheduleReset(msg.gen, outcome.ResetAfter))
	}
	if m.history != nil && m.info != nil {
		media, _ := m.selected()
		cmds = append(cmds, saveHistory(m.history, &domain.HistoryItem{
			Title:     m.info.Title,
			URL:       m.info.OriginalURL,
			Platform:  m.info.Platform,
			Quality:   media.Quality,
			Thumbnail: m.info.Thumbnail,
			Timestamp: time.Now(),
		}))
	}

	return m, tea.Batch(cmds...)
}

func (m Model) isCurrentTransfer(gen uint64, transferID string) bool {
	return gen == m.gen && m.transfer != nil && m.transfer.ID == transferID
}

// handleKeyPress handles keyboard input
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, key.NewBinding(key.WithKeys("ctrl+c"))) {
		return m.quit()
	}

	switch m.currentView {
	case viewInput:
		return m.handleInputKeys(msg)
	case viewResolving:
		return m.handleResolvingKeys(msg)
	case viewResult:
		return m.handleResultKeys(msg)
	case viewNoMedia:
		return m.handleNoMediaKeys(msg)
	case viewHistory:
		return m.handleHistoryKeys(msg)
	case viewHelp:
		return m.handleDialogKeys(msg)
	}
	return m, nil
}

// handleInputKeys handles keys in the URL input view
func (m Model) handleInputKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, key.NewBinding(key.WithKeys("esc"))):
		return m.quit()

	case key.Matches(msg, key.NewBinding(key.WithKeys("enter"))):
		url := strings.TrimSpace(m.urlInput.Value())
		if url == "" {
			m.errorMessage = emptyURLMessage
			return m, nil
		}
		m = m.resetLookup()
		m.urlInput.SetValue(url)
		m.urlInput.Blur()
		m.currentView = viewResolving
		return m, tea.Batch(resolveURL(m.resolver, m.gen, url), m.spinner.Tick)

	case key.Matches(msg, key.NewBinding(key.WithKeys("ctrl+p"))):
		return m, readClipboard(m.clipboard)

	case key.Matches(msg, key.NewBinding(key.WithKeys("ctrl+u"))):
		m.urlInput.SetValue("")
		return m, nil

	case key.Matches(msg, key.NewBinding(key.WithKeys("ctrl+o"))):
		if m.history == nil {
			return m, nil
		}
		m.previous = m.currentView
		m.currentView = viewHistory
		return m, loadHistory(m.history)
	}

	var cmd tea.Cmd
	m.urlInput, cmd = m.urlInput.Update(msg)
	return m, cmd
}

// handleResolvingKeys lets the user abandon a slow lookup
func (m Model) handleResolvingKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, key.NewBinding(key.WithKeys("esc"))) {
		url := m.urlInput.Value()
		m = m.resetLookup()
		m.urlInput.SetValue(url)
	}
	return m, nil
}

// handleResultKeys handles keys in the quality picker
func (m Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, key.NewBinding(key.WithKeys("q"))):
		return m.quit()

	case key.Matches(msg, key.NewBinding(key.WithKeys("esc"))):
		// abandon: any transfer still running is cancelled and its result dropped
		m = m.resetLookup()
		return m, nil

	case key.Matches(msg, key.NewBinding(key.WithKeys("up", "k"))):
		if m.cursor > 0 && !m.downloading() {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, key.NewBinding(key.WithKeys("down", "j"))):
		if m.cursor < len(m.options)-1 && !m.downloading() {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, key.NewBinding(key.WithKeys("enter", "d"))):
		return m.startDownload()

	case key.Matches(msg, key.NewBinding(key.WithKeys("?"))):
		m.previous = m.currentView
		m.currentView = viewHelp
		return m, nil
	}

	return m, nil
}

func (m Model) startDownload() (tea.Model, tea.Cmd) {
	media, ok := m.selected()
	if !ok || m.info == nil {
		return m, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	t, err := m.engine.Download(ctx, media, m.info.Title)
	if err != nil {
		cancel()
		if errors.Is(err, downloader.ErrTransferInFlight) {
			m.statusMessage = "A download is already in progress"
			return m, nil
		}
		m.errorMessage = err.Error()
		return m, nil
	}

	m.transfer = t
	m.cancel = cancel
	m.percent = 0
	m.phase = domain.PhaseStreaming
	m.notice = ""
	m.statusMessage = "Downloading " + media.Quality + "..."

	return m, waitForEvent(t, m.gen)
}

// handleNoMediaKeys returns to the input so the user can try another link
func (m Model) handleNoMediaKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, key.NewBinding(key.WithKeys("q"))):
		return m.quit()
	case key.Matches(msg, key.NewBinding(key.WithKeys("enter", "esc"))):
		m = m.resetLookup()
	}
	return m, nil
}

// handleHistoryKeys handles keys in the history view
func (m Model) handleHistoryKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, key.NewBinding(key.WithKeys("c"))) {
		return m, clearHistory(m.history)
	}
	m.currentView = m.previous
	m.urlInput.Focus()
	return m, nil
}

// handleDialogKeys handles keys in dialog views (help)
func (m Model) handleDialogKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Any key returns to the previous view
	m.currentView = m.previous
	return m, nil
}

// resetLookup discards the current result and starts a new generation
func (m Model) resetLookup() Model {
	if m.cancel != nil {
		m.cancel()
	}
	m.gen = m.engine.Session().Reset()
	return m.clearLookup()
}

func (m Model) clearLookup() Model {
	m.info = nil
	m.options = nil
	m.cursor = 0
	m.transfer = nil
	m.cancel = nil
	m.percent = 0
	m.phase = domain.PhaseIdle
	m.notice = ""
	m.statusMessage = ""

	m.currentView = viewInput
	m.urlInput.SetValue("")
	m.urlInput.Focus()
	return m
}

func (m Model) quit() (tea.Model, tea.Cmd) {
	if m.cancel != nil {
		m.cancel()
	}
	m.quitting = true
	return m, tea.Quit
}
