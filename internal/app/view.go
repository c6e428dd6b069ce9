package app

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jwulff/groqscribe/internal/ui"
)

// View renders the full TUI.
func (m Model) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	var sections []string
	sections = append(sections, m.renderHeader())
	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))

	if m.phase == PhaseUnauthenticated {
		sections = append(sections, m.renderCredentialEntry())
	} else {
		sections = append(sections, m.renderSession())
	}

	sections = append(sections, ui.DividerStyle.Render(strings.Repeat("─", m.width)))
	if m.errorMessage != "" {
		sections = append(sections, m.renderErrorBar())
	}
	if m.notice != "" {
		sections = append(sections, ui.NoticeStyle.Render(m.notice))
	}
	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

func (m Model) renderHeader() string {
	title := ui.TitleStyle.Render("GROQSCRIBE")

	var dot string
	switch {
	case m.phase.Busy() || m.verifying != nil:
		dot = ui.BusyDotStyle.Render("● " + m.statusLabel())
	case m.phase == PhaseUnauthenticated:
		dot = ui.IdleDotStyle.Render("○ " + m.statusLabel())
	default:
		dot = ui.ReadyDotStyle.Render("● " + m.statusLabel())
	}

	model := ui.DimStyle.Render("model " + m.settings.Model)
	return title + "  " + dot + "  " + model
}

func (m Model) statusLabel() string {
	if m.verifying != nil {
		return "VERIFYING"
	}
	switch m.phase {
	case PhaseUnauthenticated:
		return "SIGNED OUT"
	case PhaseAwaitingFile:
		return "NO FILE"
	case PhaseFileSelected:
		return "READY"
	case PhaseTranscribing:
		return "TRANSCRIBING"
	case PhaseTranscribed:
		return "TRANSCRIBED"
	case PhaseAnalyzing:
		return "ANALYZING"
	case PhaseAnalyzed:
		return "ANALYZED"
	}
	return ""
}

func (m Model) renderCredentialEntry() string {
	lines := []string{
		"",
		ui.SectionTitleStyle.Render("Enter your Groq API key to continue."),
		ui.DimStyle.Render("The key is verified with the server before it is saved."),
		"",
		"  " + m.keyInput.View(),
	}
	if m.verifying != nil {
		lines = append(lines, "", "  "+m.spinner.View()+" Verifying key...")
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderSession() string {
	textWidth := max(20, m.width-4)
	var lines []string

	// File
	lines = append(lines, ui.SectionTitleStyle.Render("FILE"))
	if m.selection == nil {
		lines = append(lines, ui.DimStyle.Render("  No file selected. Press o to open an audio file."))
	} else {
		sel := m.selection
		lines = append(lines, fmt.Sprintf("  %s %s",
			ui.SelectedStyle.Render(sel.Name),
			ui.DimStyle.Render(fmt.Sprintf("(%s, %s)", sel.MediaType, humanize.Bytes(uint64(sel.Size)))),
		))
		lines = append(lines, ui.DimStyle.Render("  "+sel.PlaybackURL))
	}
	if m.mode == inputPath {
		lines = append(lines, "  "+m.pathInput.View())
	}

	if m.settings.Visible {
		lines = append(lines, "", m.renderSettings(textWidth))
	}

	// Transcription
	lines = append(lines, "", ui.SectionTitleStyle.Render("TRANSCRIPTION"))
	switch {
	case m.phase == PhaseTranscribing:
		lines = append(lines, "  "+m.spinner.View()+" Transcribing...")
	case m.transcription != "":
		for _, wl := range wrapText(m.transcription, textWidth) {
			lines = append(lines, "  "+wl)
		}
	case m.phase == PhaseTranscribed || m.phase == PhaseAnalyzed:
		lines = append(lines, ui.DimStyle.Render("  (empty transcription)"))
	default:
		lines = append(lines, ui.DimStyle.Render("  Press t to transcribe the selected file."))
	}

	// Analysis
	if m.phase == PhaseAnalyzing || m.analysis != nil {
		lines = append(lines, "", ui.SectionTitleStyle.Render("ANALYSIS"))
	}
	if m.phase == PhaseAnalyzing {
		lines = append(lines, "  "+m.spinner.View()+" Analyzing with "+m.settings.Model+"...")
	} else if m.analysis != nil {
		lines = append(lines, m.renderAnalysis(textWidth)...)
	}

	return strings.Join(lines, "\n")
}

func (m Model) renderSettings(width int) string {
	var lines []string
	lines = append(lines, ui.SectionTitleStyle.Render("SETTINGS"))

	if len(m.catalog) == 0 {
		lines = append(lines, ui.LabelStyle.Render("Model: ")+m.settings.Model)
	} else {
		lines = append(lines, ui.LabelStyle.Render("Models:"))
		for _, name := range m.catalog {
			if name == m.settings.Model {
				lines = append(lines, ui.SelectedStyle.Render("> "+name))
			} else {
				lines = append(lines, "  "+name)
			}
		}
	}

	lines = append(lines, ui.LabelStyle.Render("Instruction:"))
	if m.mode == inputPrompt {
		lines = append(lines, m.promptInput.View())
	} else {
		lines = append(lines, wrapText(m.settings.Instruction, max(10, width-4))...)
	}

	return ui.SettingsPanelStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) renderAnalysis(width int) []string {
	a := m.analysis
	var lines []string

	field := func(label, text string) {
		lines = append(lines, "  "+ui.LabelStyle.Render(label))
		for _, wl := range wrapText(text, max(10, width-2)) {
			lines = append(lines, "    "+wl)
		}
	}

	field("Meaning", a.Meaning)
	field("Sentiment", a.Sentiment)

	lines = append(lines, "  "+ui.LabelStyle.Render("Themes"))
	if len(a.Themes) == 0 {
		lines = append(lines, ui.DimStyle.Render("    none"))
	}
	for _, theme := range a.Themes {
		lines = append(lines, "    "+ui.ThemeBulletStyle.Render("•")+" "+theme)
	}

	if a.HasInsights() {
		field("Additional insights", a.AdditionalInsights)
	}
	return lines
}

func (m Model) renderErrorBar() string {
	return ui.ErrorStyle.Render("Error: ") + ui.ErrorTextStyle.Render(m.errorMessage)
}

func (m Model) renderFooter() string {
	key := func(k, desc string) string {
		return ui.FooterKeyStyle.Render(k) + ui.FooterDescStyle.Render(" "+desc)
	}

	var parts []string
	switch {
	case m.mode != inputNone && m.phase == PhaseUnauthenticated:
		parts = append(parts, key("Enter", "Verify"), key("Ctrl+C", "Quit"))
		return strings.Join(parts, "  ")
	case m.mode != inputNone:
		parts = append(parts, key("Enter", "Confirm"), key("Esc", "Cancel"))
		return strings.Join(parts, "  ")
	}

	parts = append(parts, key("o", "Open"))
	if m.selection != nil && !m.phase.Busy() {
		parts = append(parts, key("t", "Transcribe"))
	}
	if m.phase == PhaseTranscribed || m.phase == PhaseAnalyzed {
		parts = append(parts, key("a", "Analyze"))
	}
	parts = append(parts, key("s", "Settings"))
	if len(m.catalog) > 0 {
		parts = append(parts, key("m/M", "Model"))
	}
	parts = append(parts, key("p", "Prompt"), key("x", "Change key"), key("q", "Quit"))

	return strings.Join(parts, "  ")
}

// Helpers

func wrapText(text string, width int) []string {
	if width <= 0 {
		return []string{text}
	}

	var lines []string
	for _, paragraph := range strings.Split(text, "\n") {
		var current string
		for _, word := range strings.Fields(paragraph) {
			if current == "" {
				current = word
			} else if len(current)+1+len(word) <= width {
				current += " " + word
			} else {
				lines = append(lines, current)
				current = word
			}
		}
		lines = append(lines, current)
	}
	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
