package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robottwo/suggester/pkg/suggester"
	"github.com/robottwo/suggester/pkg/suggestfield"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// testApp builds an app from a config in a temporary home with a static
// list, a dictionary and history.
func testApp(t *testing.T) *app {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", "")

	writeFile(t, filepath.Join(home, "fruits.yaml"), "- Apple\n- label: Apricot\n  icon: apricot.png\n")
	writeFile(t, filepath.Join(home, "words.tsv"), "apple\t10\navocado\t5\nbanana\t3\n")

	configPath := filepath.Join(home, "config.yaml")
	writeFile(t, configPath, `
engine:
  fetch_delay_ms: 0
sources:
  static:
    path: ~/fruits.yaml
  dictionary:
    path: ~/words.tsv
  history:
    enabled: true
    path: ~/history.db
log:
  level: debug
  file: ~/logs/suggester.log
`)

	a, err := newApp(context.Background(), configPath)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, a.close())
	})
	return a
}

func TestNewApp_MergesSources(t *testing.T) {
	a := testApp(t)

	got, err := a.source.Fetch(context.Background(), "a")
	require.NoError(t, err)

	var labels []string
	for _, s := range got {
		labels = append(labels, s.Label)
	}
	assert.Equal(t, []string{"Apple", "Apricot", "apple", "avocado"}, labels)
	assert.NotNil(t, a.history)
	assert.FileExists(t, filepath.Join(os.Getenv("HOME"), "logs", "suggester.log"))
}

func TestNewApp_BadConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(home, "config.yaml")
	writeFile(t, path, "sources:\n  dictionary:\n    path: ~/missing.tsv\nlog:\n  file: ''\n")

	_, err := newApp(context.Background(), path)
	assert.Error(t, err)
}

func TestCompleteLines(t *testing.T) {
	source := suggester.SourceFunc(func(_ context.Context, text string) ([]suggester.Suggestion, error) {
		if strings.HasPrefix("apple", strings.ToLower(text)) {
			return []suggester.Suggestion{{Label: "Apple"}, {Label: "Applesauce"}}, nil
		}
		return nil, nil
	})

	var out bytes.Buffer
	require.NoError(t, completeLines(context.Background(), source, strings.NewReader("ap\nkiwi\n"), &out))
	assert.Equal(t, "apple\tApple\tApplesauce\nkiwi\n", out.String())
}

func TestPromptModel_SubmitRecordsHistory(t *testing.T) {
	a := testApp(t)
	ctx := context.Background()

	model, err := newPromptModel(ctx, a, true)
	require.NoError(t, err)

	updated, _ := model.Update(suggestfield.SubmittedMsg{Value: "Apricot"})
	model = updated.(promptModel)
	updated, _ = model.Update(suggestfield.SubmittedMsg{Value: "  "})
	model = updated.(promptModel)

	assert.Equal(t, []string{"Apricot"}, model.submitted)
	assert.Contains(t, model.View(), "Apricot")

	matches, err := a.history.Search(ctx, "apr", 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Apricot", matches[0].Value)
}

func TestPromptModel_CtrlCQuits(t *testing.T) {
	a := testApp(t)
	model, err := newPromptModel(context.Background(), a, false)
	require.NoError(t, err)

	_, cmd := model.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestConfigInit(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(home, "conf", "config.yaml")

	root := newRootCommand()
	root.SetArgs([]string{"--config", path, "config", "init"})
	require.NoError(t, root.Execute())
	assert.FileExists(t, path)

	root = newRootCommand()
	root.SetArgs([]string{"--config", path, "config", "init"})
	assert.Error(t, root.Execute(), "an existing file is not overwritten")

	root = newRootCommand()
	root.SetArgs([]string{"--config", path, "config", "init", "--force"})
	assert.NoError(t, root.Execute())
}
