// Package static serves suggestions from a YAML list, optionally reloading
// it when the file changes.
package static

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/robottwo/suggester/pkg/suggester"
)

const reloadDebounce = 75 * time.Millisecond

// item accepts either a bare label or a {label, icon} mapping.
type item suggester.Suggestion

func (i *item) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		i.Label = node.Value
		i.Icon = ""
		return nil
	}
	var s suggester.Suggestion
	if err := node.Decode(&s); err != nil {
		return err
	}
	*i = item(s)
	return nil
}

// Parse decodes a YAML sequence of suggestions. Entries without a label are
// dropped.
func Parse(data []byte) ([]suggester.Suggestion, error) {
	var items []item
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, errors.Wrap(err, "failed to parse suggestion list")
	}

	suggestions := make([]suggester.Suggestion, 0, len(items))
	for _, it := range items {
		if it.Label == "" {
			continue
		}
		suggestions = append(suggestions, suggester.Suggestion(it))
	}
	return suggestions, nil
}

// List holds the suggestions in file order and matches them by prefix,
// ignoring case.
type List struct {
	path   string
	limit  int
	logger *zap.Logger

	mu    sync.RWMutex
	items []suggester.Suggestion
}

func New(items []suggester.Suggestion, limit int) *List {
	if limit <= 0 {
		limit = suggester.DefaultMaxSuggestions
	}
	return &List{
		limit:  limit,
		logger: zap.NewNop(),
		items:  items,
	}
}

// Load reads the list at path.
func Load(path string, limit int, logger *zap.Logger) (*List, error) {
	l := New(nil, limit)
	l.path = path
	if logger != nil {
		l.logger = logger
	}
	if err := l.Reload(); err != nil {
		return nil, err
	}
	return l, nil
}

// Reload rereads the file. On error the previous items stay in place.
func (l *List) Reload() error {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return errors.Wrapf(err, "failed to read %s", l.path)
	}
	items, err := Parse(data)
	if err != nil {
		return errors.Wrapf(err, "in %s", l.path)
	}

	l.mu.Lock()
	l.items = items
	l.mu.Unlock()

	l.logger.Debug("suggestion list loaded", zap.String("path", l.path), zap.Int("count", len(items)))
	return nil
}

// Items returns a snapshot of the list.
func (l *List) Items() []suggester.Suggestion {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]suggester.Suggestion(nil), l.items...)
}

func (l *List) Fetch(_ context.Context, text string) ([]suggester.Suggestion, error) {
	if text == "" {
		return nil, nil
	}
	needle := strings.ToLower(text)

	l.mu.RLock()
	defer l.mu.RUnlock()

	var matches []suggester.Suggestion
	for _, s := range l.items {
		if strings.HasPrefix(strings.ToLower(s.Label), needle) {
			matches = append(matches, s)
			if len(matches) == l.limit {
				break
			}
		}
	}
	return matches, nil
}

// Watch reloads the list whenever its file is written or replaced, until ctx
// is done. The parent directory is watched so editors that save by rename
// are picked up.
func (l *List) Watch(ctx context.Context) error {
	if l.path == "" {
		return errors.New("static list has no file to watch")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create watcher")
	}
	defer func() {
		_ = w.Close()
	}()

	if err := w.Add(filepath.Dir(l.path)); err != nil {
		return errors.Wrapf(err, "failed to watch %s", l.path)
	}

	target := filepath.Clean(l.path)
	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			debounce = time.After(reloadDebounce)
		case <-debounce:
			debounce = nil
			if err := l.Reload(); err != nil {
				l.logger.Warn("failed to reload suggestion list", zap.Error(err))
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			l.logger.Warn("suggestion list watcher error", zap.Error(err))
		}
	}
}
