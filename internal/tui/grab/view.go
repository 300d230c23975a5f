package grab

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/elsanchez/linkgrab/internal/domain"
)

// Styles with adaptive colors for light/dark backgrounds
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "63", Dark: "205"}).
			MarginLeft(2)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "240", Dark: "250"})

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "160", Dark: "9"}).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "34", Dark: "10"}).
			Bold(true)

	spinnerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "63", Dark: "205"})

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.AdaptiveColor{Light: "63", Dark: "63"}).
			Padding(1, 2)

	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "255", Dark: "255"}).
			Background(lipgloss.AdaptiveColor{Light: "63", Dark: "63"}).
			Padding(0, 1)

	noticeStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.AdaptiveColor{Light: "208", Dark: "214"}).
			Foreground(lipgloss.AdaptiveColor{Light: "208", Dark: "214"}).
			Padding(0, 1)
)

// View renders the current view
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	var content string

	switch m.currentView {
	case viewInput:
		content = m.viewInput()
	case viewResolving:
		content = m.viewResolving()
	case viewResult:
		content = m.viewResult()
	case viewNoMedia:
		content = m.viewNoMedia()
	case viewHistory:
		content = m.viewHistory()
	case viewHelp:
		content = m.viewHelp()
	default:
		content = m.viewInput()
	}

	// Add status/error messages
	if m.errorMessage != "" {
		content += "\n" + errorStyle.Render("Error: "+m.errorMessage)
	} else if m.statusMessage != "" {
		content += "\n" + successStyle.Render(m.statusMessage)
	}

	return content
}

// viewInput renders the link input screen
func (m Model) viewInput() string {
	var b strings.Builder

	title := titleStyle.Render("🔗 Link Grab")
	b.WriteString(title + "\n\n")
	b.WriteString("  Paste a social media link to find its downloadable media\n\n")
	b.WriteString("  " + m.urlInput.View() + "\n")

	help := "\n" + helpStyle.Render(
		"  Enter analyze • Ctrl+P paste • Ctrl+U clear • Ctrl+O history • Esc quit",
	)

	return boxStyle.Render(b.String()) + help
}

// viewResolving renders the lookup spinner
func (m Model) viewResolving() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Analyzing link") + "\n\n")
	b.WriteString(fmt.Sprintf("  %s Looking for media in %s\n", m.spinner.View(), m.urlInput.Value()))

	return boxStyle.Render(b.String()) + "\n" + helpStyle.Render("  Esc cancel")
}

// viewResult renders the media preview and the quality picker
func (m Model) viewResult() string {
	if m.info == nil {
		return m.viewInput()
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render(m.info.Title) + "\n\n")
	b.WriteString("  " + badgeStyle.Render(m.info.Platform))
	b.WriteString("  " + helpStyle.Render("⏱ "+m.info.Duration))
	if m.info.Source == domain.SourceFallback {
		b.WriteString("  " + helpStyle.Render("(AI preview)"))
	}
	b.WriteString("\n")
	if m.info.Thumbnail != "" {
		b.WriteString("  " + helpStyle.Render(m.info.Thumbnail) + "\n")
	}
	b.WriteString("\n")

	estimated := false
	for i, media := range m.options {
		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		icon := "🎬"
		if media.Kind == domain.KindAudio {
			icon = "🎵"
		}

		label := media.Quality
		if media.Estimated {
			label += " ~"
			estimated = true
		}

		line := fmt.Sprintf("%s%s %s", cursor, icon, label)
		if i == m.cursor {
			line = successStyle.Render(line)
		}
		b.WriteString("  " + line + "\n")
	}

	if estimated {
		b.WriteString("\n  " + helpStyle.Render("~ estimated quality"))
		b.WriteString("\n")
	}

	if m.transfer != nil || m.phase != domain.PhaseIdle {
		b.WriteString("\n  " + m.viewProgress() + "\n")
	}

	if m.notice != "" {
		b.WriteString("\n" + noticeStyle.Render(m.notice) + "\n")
	}

	help := "\n" + helpStyle.Render("  ↑/↓ select • Enter download • Esc new link • ? help • q quit")

	return boxStyle.Render(b.String()) + help
}

// viewProgress renders the transfer progress bar with its caption
func (m Model) viewProgress() string {
	bar := m.bar.ViewAs(float64(m.percent) / 100)

	switch m.phase {
	case domain.PhaseStreaming:
		return bar + " " + helpStyle.Render("Downloading")
	case domain.PhaseCompleted:
		return bar + " " + successStyle.Render("Done")
	case domain.PhaseFailedFallback:
		return bar + " " + helpStyle.Render("Opened in browser")
	}
	return bar
}

// viewNoMedia renders the empty result screen
func (m Model) viewNoMedia() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("No media found") + "\n\n")
	if m.info != nil {
		b.WriteString("  " + badgeStyle.Render(m.info.Platform) + "  " + m.info.Title + "\n\n")
	}
	b.WriteString("  We couldn't find a downloadable file for this link.\n")
	b.WriteString("  It may be private or protected. Try another link.\n")

	return boxStyle.Render(b.String()) + "\n" + helpStyle.Render("  Enter try another link • q quit")
}

// viewHistory renders the session history
func (m Model) viewHistory() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("History") + "\n\n")

	if len(m.historyItems) == 0 {
		b.WriteString("  Nothing downloaded yet in this session.\n")
	} else {
		now := time.Now()
		for _, item := range m.historyItems {
			b.WriteString(fmt.Sprintf("  %s  %s\n",
				badgeStyle.Render(item.Platform),
				item.Title,
			))
			b.WriteString(fmt.Sprintf("     %s\n",
				helpStyle.Render(item.Quality+" • "+domain.FormatAge(item.Timestamp, now)),
			))
		}
	}

	help := "\n" + helpStyle.Render("  c clear • any key back")
	return boxStyle.Render(b.String()) + help
}

// viewHelp renders the help screen
func (m Model) viewHelp() string {
	title := titleStyle.Render("Help")

	help := `
  Input:
    Enter         Analyze link
    Ctrl+P        Paste from clipboard
    Ctrl+U        Clear input
    Ctrl+O        Session history
    Esc           Quit

  Result:
    ↑/k, ↓/j      Move selection
    Enter, d      Download selected quality
    Esc           Start over with a new link
    q             Quit

  Entries marked with ~ have an estimated quality.
  When a direct download is refused the link opens in your browser.
`

	return title + "\n" + help + "\n" + helpStyle.Render("  Press any key to return")
}
