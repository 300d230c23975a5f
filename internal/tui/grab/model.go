package grab

import (
	"context"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/elsanchez/linkgrab/internal/domain"
	"github.com/elsanchez/linkgrab/internal/downloader"
	"github.com/elsanchez/linkgrab/internal/repository"
)

// view represents different screens in the TUI
type view int

const (
	viewInput view = iota
	viewResolving
	viewResult
	viewNoMedia
	viewHistory
	viewHelp
)

const (
	maxVideoOptions = 3
	maxAudioOptions = 1
)

// Resolver turns a pasted link into a VideoInfo
type Resolver interface {
	Resolve(ctx context.Context, url string) (*domain.VideoInfo, error)
}

// Downloader starts transfers bound to a single session
type Downloader interface {
	Download(ctx context.Context, media domain.MediaDescriptor, title string) (*downloader.Transfer, error)
	Session() *downloader.Session
}

// ClipboardReader reads the system clipboard once
type ClipboardReader interface {
	ReadOnce() (string, bool)
}

// Model is the Bubbletea model for the link grabber
type Model struct {
	// Navigation
	currentView view
	previous    view
	width       int
	height      int
	quitting    bool

	// Dependencies
	resolver  Resolver
	engine    Downloader
	clipboard ClipboardReader
	history   repository.HistoryRepository
	logger    *logrus.Logger

	// Lookup state
	gen     uint64
	info    *domain.VideoInfo
	options []domain.MediaDescriptor
	cursor  int

	// Transfer state
	transfer *downloader.Transfer
	cancel   context.CancelFunc
	percent  int
	phase    domain.DownloadPhase

	historyItems []*domain.HistoryItem

	// Components
	urlInput textinput.Model
	spinner  spinner.Model
	bar      progress.Model

	// UI state
	statusMessage string
	errorMessage  string
	notice        string
}

// NewModel creates a new link grabber TUI model
func NewModel(r Resolver, engine Downloader, cb ClipboardReader, history repository.HistoryRepository, logger *logrus.Logger) Model {
	urlInput := textinput.New()
	urlInput.Placeholder = "Paste a TikTok, Instagram, YouTube... link"
	urlInput.Focus()
	urlInput.CharLimit = 2048
	urlInput.Width = 70

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = spinnerStyle

	return Model{
		currentView: viewInput,
		resolver:    r,
		engine:      engine,
		clipboard:   cb,
		history:     history,
		logger:      logger,
		gen:         engine.Session().Generation(),
		phase:       domain.PhaseIdle,
		urlInput:    urlInput,
		spinner:     s,
		bar:         progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
	)
}

// mediaOptions picks the entries shown in the quality picker: the best
// videos followed by one audio track
func mediaOptions(info *domain.VideoInfo) []domain.MediaDescriptor {
	opts := info.Videos(maxVideoOptions)
	return append(opts, info.Audios(maxAudioOptions)...)
}

func (m Model) downloading() bool {
	return m.transfer != nil && m.phase == domain.PhaseStreaming
}

func (m Model) selected() (domain.MediaDescriptor, bool) {
	if m.cursor < 0 || m.cursor >= len(m.options) {
		return domain.MediaDescriptor{}, false
	}
	return m.options[m.cursor], true
}
