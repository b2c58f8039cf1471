// Package history persists submitted values in SQLite and serves them back
// as suggestions, most used first.
package history

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/robottwo/suggester/pkg/suggester"
)

type Manager struct {
	db        *gorm.DB
	sessionID string
}

type Entry struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time

	Value     string `gorm:"index"`
	SessionID string `gorm:"index"`
}

// Match is one distinct value found by Search.
type Match struct {
	Value  string
	Uses   int64
	LastID uint
}

func NewManager(dbFilePath string) (*Manager, error) {
	if err := os.MkdirAll(filepath.Dir(dbFilePath), 0755); err != nil {
		return nil, errors.Wrap(err, "failed to create history directory")
	}

	// - busy_timeout(5000): wait for a concurrent writer instead of failing
	// - synchronous(1): NORMAL
	// - temp_store(2): MEMORY
	connectionString := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=synchronous(1)&_pragma=cache_size(-20000)&_pragma=temp_store(2)", dbFilePath)

	db, err := gorm.Open(sqlite.Open(connectionString), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open history database %s", dbFilePath)
	}

	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, errors.Wrap(err, "failed to migrate history database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// SQLite serializes writes anyway, so multiple connections add overhead
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &Manager{
		db:        db,
		sessionID: uuid.New().String(),
	}, nil
}

// Close closes the database connection. Tests must call it before their
// temporary directory is removed.
func (m *Manager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// SessionID identifies the values recorded through this manager.
func (m *Manager) SessionID() string {
	return m.sessionID
}

// Record stores a submitted value. Blank values are ignored.
func (m *Manager) Record(ctx context.Context, value string) (*Entry, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	entry := Entry{
		Value:     value,
		SessionID: m.sessionID,
	}
	if err := m.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, errors.Wrap(err, "failed to record history entry")
	}
	return &entry, nil
}

// Recent returns up to limit entries, newest first.
func (m *Manager) Recent(ctx context.Context, limit int) ([]Entry, error) {
	var entries []Entry
	result := m.db.WithContext(ctx).
		Order("id desc").
		Limit(limit).
		Find(&entries)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to list history")
	}
	return entries, nil
}

// Search returns distinct values starting with prefix, ignoring ASCII case,
// ranked by how often they were recorded and then by recency.
func (m *Manager) Search(ctx context.Context, prefix string, limit int) ([]Match, error) {
	var matches []Match
	result := m.db.WithContext(ctx).
		Model(&Entry{}).
		Select("value, COUNT(*) AS uses, MAX(id) AS last_id").
		Where(`value LIKE ? ESCAPE '\'`, escapeLike(prefix)+"%").
		Group("value").
		Order("uses desc, last_id desc").
		Limit(limit).
		Scan(&matches)
	if result.Error != nil {
		return nil, errors.Wrapf(result.Error, "failed to search history for %q", prefix)
	}
	return matches, nil
}

// Usage is a distinct value with its use count and the time of its last use.
type Usage struct {
	Value    string
	Uses     int64
	LastUsed time.Time
}

// Usage returns up to limit distinct values, most used first.
func (m *Manager) Usage(ctx context.Context, limit int) ([]Usage, error) {
	matches, err := m.Search(ctx, "", limit)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, nil
	}

	var latest []Entry
	ids := lo.Map(matches, func(match Match, _ int) uint { return match.LastID })
	if err := m.db.WithContext(ctx).Find(&latest, ids).Error; err != nil {
		return nil, errors.Wrap(err, "failed to load history entries")
	}
	byID := lo.KeyBy(latest, func(entry Entry) uint { return entry.ID })

	return lo.Map(matches, func(match Match, _ int) Usage {
		return Usage{
			Value:    match.Value,
			Uses:     match.Uses,
			LastUsed: byID[match.LastID].CreatedAt,
		}
	}), nil
}

// Clear deletes every entry.
func (m *Manager) Clear(ctx context.Context) error {
	result := m.db.WithContext(ctx).Exec("DELETE FROM entries")
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to clear history")
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// Source serves history matches to a suggestion engine.
type Source struct {
	Manager *Manager
	Limit   int
}

func (s Source) Fetch(ctx context.Context, text string) ([]suggester.Suggestion, error) {
	if text == "" {
		return nil, nil
	}

	limit := s.Limit
	if limit <= 0 {
		limit = suggester.DefaultMaxSuggestions
	}

	matches, err := s.Manager.Search(ctx, text, limit)
	if err != nil {
		return nil, err
	}
	return lo.Map(matches, func(match Match, _ int) suggester.Suggestion {
		return suggester.Suggestion{Label: match.Value}
	}), nil
}
