package suggestfield

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/ansi"
	"github.com/muesli/reflow/truncate"

	"github.com/robottwo/suggester/pkg/suggester"
)

type Styles struct {
	Ghost    lipgloss.Style
	Item     lipgloss.Style
	Selected lipgloss.Style
	Implied  lipgloss.Style
	Icon     lipgloss.Style

	// IconWidth is the width of the icon column in cells. Zero hides it.
	IconWidth int
	// ImageGlyph stands in for icons that refer to image files, which a
	// terminal cannot draw.
	ImageGlyph string
	// MaxWidth truncates labels wider than it. Zero disables truncation.
	MaxWidth int
}

func DefaultStyles() Styles {
	return Styles{
		Ghost:      lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Item:       lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		Selected:   lipgloss.NewStyle().Foreground(lipgloss.Color("0")).Background(lipgloss.Color("12")),
		Implied:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		Icon:       lipgloss.NewStyle().Foreground(lipgloss.Color("244")),
		IconWidth:  2,
		ImageGlyph: "▪",
		MaxWidth:   40,
	}
}

func (m Model) listView() string {
	view := m.engine.View()
	if !view.ListVisible {
		return ""
	}
	return renderList(view.Slots, m.Styles)
}

// renderList renders the visible slots, one per row. Rows are padded to a
// common width so the selection highlight forms a block.
func renderList(slots []suggester.Slot, styles Styles) string {
	var rows []string
	var kinds []suggester.Slot
	width := 0

	for _, slot := range slots {
		if !slot.Visible {
			continue
		}
		row := " " + iconCell(slot.Icon, styles) + label(slot.Label, styles.MaxWidth) + " "
		width = max(width, ansi.PrintableRuneWidth(row))
		rows = append(rows, row)
		kinds = append(kinds, slot)
	}

	for i, row := range rows {
		row += strings.Repeat(" ", width-ansi.PrintableRuneWidth(row))
		switch {
		case kinds[i].Selected:
			rows[i] = styles.Selected.Render(row)
		case kinds[i].Implied:
			rows[i] = styles.Implied.Render(row)
		default:
			rows[i] = styles.Item.Render(row)
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func iconCell(icon string, styles Styles) string {
	if styles.IconWidth <= 0 {
		return ""
	}
	if filepath.Ext(icon) != "" {
		icon = styles.ImageGlyph
	}
	cell := runewidth.FillRight(runewidth.Truncate(icon, styles.IconWidth, ""), styles.IconWidth)
	return styles.Icon.Render(cell) + " "
}

func label(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return s
	}
	return truncate.StringWithTail(s, uint(maxWidth), "…")
}
