package suggester

// Slot is the render state of one suggestion list row.
type Slot struct {
	Visible  bool
	Label    string
	Icon     string
	Selected bool
	// Implied marks the row matching the ghost completion. It is purely
	// presentational and independent of the keyboard selection.
	Implied bool
}

// View holds the render instructions for the completion overlay and the
// suggestion list.
type View struct {
	// Prefix is the typed text, rendered invisibly to align the suffix.
	Prefix string
	// Suffix is the ghost completion.
	Suffix string
	// Slots always has one entry per MaxSuggestions.
	Slots       []Slot
	ListVisible bool

	// FieldValue is the literal value the field should hold. The view only
	// writes it into the field when OverwriteField is set.
	FieldValue     string
	OverwriteField bool
}

// View returns the instructions of the most recent render.
func (e *Engine) View() View {
	v := e.view
	v.Slots = append([]Slot(nil), e.view.Slots...)
	return v
}

func (e *Engine) render() {
	slots := make([]Slot, e.options.MaxSuggestions)
	for i := range slots {
		if i >= len(e.suggestions) {
			continue
		}
		s := e.suggestions[i]
		slots[i] = Slot{
			Visible:  true,
			Label:    s.Label,
			Icon:     s.Icon,
			Selected: i == e.selectedIndex,
			Implied:  i == 0 && e.impliedMatch,
		}
	}

	e.view = View{
		Prefix:         e.currentText,
		Suffix:         e.suffix,
		Slots:          slots,
		ListVisible:    e.listVisible,
		FieldValue:     e.currentText,
		OverwriteField: e.overwriteField,
	}
	e.overwriteField = false

	if e.options.OnRender != nil {
		e.options.OnRender(e.View())
	}
}
