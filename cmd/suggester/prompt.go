package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/robottwo/suggester/internal/history"
	"github.com/robottwo/suggester/internal/styles"
	"github.com/robottwo/suggester/pkg/suggester"
	"github.com/robottwo/suggester/pkg/suggestfield"
)

// promptModel hosts the suggestion field and records every submission.
type promptModel struct {
	ctx     context.Context
	field   suggestfield.Model
	help    help.Model
	history *history.Manager
	logger  *zap.Logger

	// fullscreen keeps submissions on screen instead of printing them above
	// the program, since the alternate screen discards printed lines.
	fullscreen bool
	submitted  []string
	initCmd    tea.Cmd
}

func newPromptModel(ctx context.Context, a *app, fullscreen bool) (promptModel, error) {
	field, err := suggestfield.New(a.source, a.engineOptions())
	if err != nil {
		return promptModel{}, err
	}
	field.Input().Prompt = "> "
	if fullscreen {
		// one header line sits above the field
		field.ListOffset = 1
	}

	m := promptModel{
		ctx:        ctx,
		field:      field,
		help:       help.New(),
		history:    a.history,
		logger:     a.logger,
		fullscreen: fullscreen,
	}
	m.initCmd = m.field.Focus()
	return m, nil
}

func (m promptModel) Init() tea.Cmd {
	return tea.Batch(m.field.Init(), m.initCmd)
}

func (m promptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case suggestfield.SubmittedMsg:
		return m.submit(msg.Value)
	}

	var cmd tea.Cmd
	m.field, cmd = m.field.Update(msg)
	return m, cmd
}

func (m promptModel) submit(value string) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{m.field.Reset()}
	if strings.TrimSpace(value) == "" {
		return m, tea.Batch(cmds...)
	}

	if m.history != nil {
		if _, err := m.history.Record(m.ctx, value); err != nil {
			m.logger.Warn("failed to record submission", zap.Error(err))
		}
	}
	m.logger.Debug("value submitted", zap.String("value", value))

	if m.fullscreen {
		m.submitted = append(m.submitted, value)
	} else {
		cmds = append(cmds, tea.Println(styles.VALUE(value)))
	}
	return m, tea.Batch(cmds...)
}

func (m promptModel) View() string {
	var b strings.Builder
	if m.fullscreen {
		header := "type to get suggestions"
		if n := len(m.submitted); n > 0 {
			header = "last: " + styles.VALUE(m.submitted[n-1])
		}
		b.WriteString(styles.HINT(header) + "\n")
	}
	b.WriteString(m.field.View())
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.field.KeyMap))
	return b.String()
}

// completeLines answers each input line with the completed value followed by
// the suggestion labels, tab separated. It serves piped, non-interactive use.
func completeLines(ctx context.Context, source suggester.Source, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		text := scanner.Text()
		suggestions, err := source.Fetch(ctx, text)
		if err != nil {
			suggestions = nil
		}

		fields := []string{text}
		if len(suggestions) > 0 {
			if suffix, ok := suggester.Complete(text, suggestions[0].Label); ok {
				fields[0] = text + suffix
			}
		}
		for _, s := range suggestions {
			fields = append(fields, s.Label)
		}
		if _, err := fmt.Fprintln(w, strings.Join(fields, "\t")); err != nil {
			return err
		}
	}
	return scanner.Err()
}
