package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sadopc/taskgenius/internal/automation"
	"github.com/sadopc/taskgenius/internal/config"
	"github.com/sadopc/taskgenius/internal/profile"
	"github.com/sadopc/taskgenius/internal/store"
	"github.com/sadopc/taskgenius/internal/tasks"
)

// env is everything a command needs, opened from one config.
type env struct {
	cfg       *config.Config
	db        *store.Store
	tasks     *tasks.Store
	rules     *automation.RuleStore
	profile   *profile.Store
	evaluator *automation.Evaluator
}

// loadConfig applies the --db override and resolves the default
// database location.
func loadConfig(cfgPath, dbOverride string) (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if dbOverride != "" {
		cfg.DBPath = dbOverride
	}
	if cfg.DBPath == "" {
		if cfg.DBPath, err = store.DefaultDBPath(); err != nil {
			return nil, fmt.Errorf("locate database: %w", err)
		}
	}
	return cfg, nil
}

// openEnv opens the stores. Rule notifications go to n; logger receives
// evaluator warnings.
func openEnv(cfg *config.Config, n automation.Notifier, logger *log.Logger) (*env, error) {
	db, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	ts, err := tasks.New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	rs, err := automation.NewRuleStore(db, time.Now)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &env{
		cfg:     cfg,
		db:      db,
		tasks:   ts,
		rules:   rs,
		profile: profile.New(db, time.Now),
		evaluator: automation.NewEvaluator(ts, rs, n,
			automation.WithInterval(cfg.TickInterval),
			automation.WithCompletionWindow(cfg.CompletionWindow),
			automation.WithLogger(logger),
		),
	}, nil
}

func (e *env) Close() error {
	e.evaluator.Detach()
	return e.db.Close()
}

// stderrNotifier logs notifications for headless commands.
func stderrNotifier(enabled bool) *automation.LogNotifier {
	return &automation.LogNotifier{
		Logger:  log.New(os.Stderr, "", log.Ltime),
		Enabled: enabled,
	}
}
