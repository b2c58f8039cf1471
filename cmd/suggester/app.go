package main

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/robottwo/suggester/internal/config"
	"github.com/robottwo/suggester/internal/history"
	"github.com/robottwo/suggester/internal/logging"
	"github.com/robottwo/suggester/internal/source"
	"github.com/robottwo/suggester/internal/source/dictionary"
	"github.com/robottwo/suggester/internal/source/fuzzy"
	"github.com/robottwo/suggester/internal/source/remote"
	"github.com/robottwo/suggester/internal/source/static"
	"github.com/robottwo/suggester/internal/source/wordserve"
	"github.com/robottwo/suggester/pkg/suggester"
)

// app holds everything the subcommands share.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	history *history.Manager
	source  *source.Merged

	closeLog func()
	stop     context.CancelFunc
}

func newApp(ctx context.Context, configPath string) (*app, error) {
	cfg, loadedFrom, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	logger, closeLog, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	logger.Info("-------- new suggester session --------",
		zap.String("config", loadedFrom),
		zap.String("version", BUILD_VERSION))

	ctx, stop := context.WithCancel(ctx)
	a := &app{cfg: cfg, logger: logger, closeLog: closeLog, stop: stop}

	if err := a.buildSources(ctx); err != nil {
		_ = a.close()
		return nil, err
	}
	return a, nil
}

// buildSources wires every configured source, most personal first.
func (a *app) buildSources(ctx context.Context) error {
	cfg := a.cfg
	limit := cfg.Engine.MaxSuggestions
	var sources []source.Named

	if cfg.Sources.History.Enabled {
		manager, err := history.NewManager(cfg.Sources.History.Path)
		if err != nil {
			return err
		}
		a.history = manager
		sources = append(sources, source.Named{Name: "history", Source: history.Source{Manager: manager, Limit: limit}})
	}

	if path := cfg.Sources.Static.Path; path != "" {
		list, err := static.Load(path, limit, a.logger.Named("static"))
		if err != nil {
			return err
		}
		if cfg.Sources.Static.Watch {
			go func() {
				if err := list.Watch(ctx); err != nil {
					a.logger.Warn("not watching suggestion list", zap.Error(err))
				}
			}()
		}

		var src suggester.Source = list
		if cfg.Sources.Fuzzy.Enabled {
			src = fuzzy.New(list.Items, limit)
		}
		sources = append(sources, source.Named{Name: "static", Source: src})
	}

	if path := cfg.Sources.Dictionary.Path; path != "" {
		dict, err := dictionary.Load(path, limit)
		if err != nil {
			return err
		}
		a.logger.Debug("dictionary loaded", zap.String("path", path), zap.Int("words", dict.Len()))
		sources = append(sources, source.Named{Name: "dictionary", Source: dict})
	}

	if command := cfg.Sources.Wordserve.Command; len(command) > 0 {
		client, err := wordserve.Start(ctx, command, limit, a.logger.Named("wordserve"))
		if err != nil {
			return err
		}
		sources = append(sources, source.Named{Name: "wordserve", Source: client})
	}

	if url := cfg.Sources.Remote.URL; url != "" {
		timeout := time.Duration(cfg.Sources.Remote.TimeoutMs) * time.Millisecond
		client, err := remote.New(url, timeout, limit)
		if err != nil {
			return err
		}
		sources = append(sources, source.Named{Name: "remote", Source: client})
	}

	if len(sources) == 0 {
		a.logger.Warn("no suggestion sources configured")
	}
	a.source = source.NewMerged(limit, a.logger.Named("source"), sources...)
	return nil
}

// engineOptions returns the configured engine options logging to the app
// logger.
func (a *app) engineOptions() suggester.Options {
	options := a.cfg.EngineOptions()
	options.Logger = a.logger.Named("engine")
	return options
}

func (a *app) requireHistory() error {
	if a.history == nil {
		return errors.New("history is disabled (sources.history.enabled)")
	}
	return nil
}

func (a *app) close() error {
	var result *multierror.Error
	if a.source != nil {
		result = multierror.Append(result, a.source.Close())
	}
	if a.history != nil {
		result = multierror.Append(result, a.history.Close())
	}
	a.stop()
	a.closeLog()
	return result.ErrorOrNil()
}
