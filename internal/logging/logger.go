// Package logging provides config-driven categorized file logging for
// tribunal. Logs are written to .tribunal/logs/ with one file per category,
// backed by zap cores. Logging is controlled by the logging section of
// .tribunal/config.yaml - when debug_mode is false, no logs are written.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Category represents a log category/subsystem.
type Category string

const (
	CategoryBoot      Category = "boot"      // Startup and initialization
	CategorySession   Category = "session"   // Assistant loop
	CategoryTrial     Category = "trial"     // Debate scheduler
	CategoryTools     Category = "tools"     // Tool execution
	CategoryLedger    Category = "ledger"    // Ledger service calls
	CategoryLLM       Category = "llm"       // Completion service calls
	CategoryStore     Category = "store"     // Transcript store
	CategoryReconcile Category = "reconcile" // Case cache reconciliation
	CategoryChat      Category = "chat"      // TUI front-end
)

// loggingConfig mirrors the logging section of config.Config to avoid a
// circular import with internal/config.
type loggingConfig struct {
	DebugMode  bool            `yaml:"debug_mode"`
	Level      string          `yaml:"level"`
	Categories map[string]bool `yaml:"categories"`
}

type configFile struct {
	Logging loggingConfig `yaml:"logging"`
}

// Logger wraps a category-scoped zap logger. All methods are printf-style.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
}

var (
	mu        sync.RWMutex
	loggers   = make(map[Category]*Logger)
	logsDir   string
	workspace string
	cfg       loggingConfig
	level     zapcore.Level = zapcore.InfoLevel
)

// Initialize sets up the logging directory and loads config. Should be
// called once at startup with the workspace path. When debug mode is off
// this is a silent no-op and all loggers discard.
func Initialize(ws string) error {
	if ws == "" {
		return fmt.Errorf("workspace path required")
	}

	mu.Lock()
	workspace = ws
	logsDir = filepath.Join(workspace, ".tribunal", "logs")
	loadConfig()
	enabled := cfg.DebugMode
	mu.Unlock()

	if !enabled {
		return nil
	}

	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	boot := Get(CategoryBoot)
	boot.Info("=== tribunal logging initialized ===")
	boot.Info("workspace: %s", workspace)
	boot.Info("level: %s", level)
	return nil
}

// loadConfig reads the logging section of .tribunal/config.yaml.
// Missing file means production mode (no logging). Caller holds mu.
func loadConfig() {
	cfg = loggingConfig{}
	data, err := os.ReadFile(filepath.Join(workspace, ".tribunal", "config.yaml"))
	if err != nil {
		return
	}
	var cf configFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		fmt.Fprintf(os.Stderr, "[logging] warning: could not parse config: %v\n", err)
		return
	}
	cfg = cf.Logging
	switch cfg.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn", "warning":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}
}

// Get returns the logger for a category, creating it on first use.
func Get(cat Category) *Logger {
	mu.RLock()
	if l, ok := loggers[cat]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[cat]; ok {
		return l
	}
	l := &Logger{category: cat, sugar: buildSugar(cat)}
	loggers[cat] = l
	return l
}

// buildSugar constructs the zap core for a category. Returns a nop logger
// when logging is disabled or the category is filtered out. Caller holds mu.
func buildSugar(cat Category) *zap.SugaredLogger {
	if !cfg.DebugMode {
		return zap.NewNop().Sugar()
	}
	if len(cfg.Categories) > 0 {
		if enabled, ok := cfg.Categories[string(cat)]; ok && !enabled {
			return zap.NewNop().Sugar()
		}
	}

	path := filepath.Join(logsDir, string(cat)+".log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] warning: could not open %s: %v\n", path, err)
		return zap.NewNop().Sugar()
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(f),
		level,
	)
	return zap.New(core).Named(string(cat)).Sugar()
}

// Reset tears down all loggers. Intended for tests.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	for _, l := range loggers {
		_ = l.sugar.Sync()
	}
	loggers = make(map[Category]*Logger)
	cfg = loggingConfig{}
	workspace = ""
	logsDir = ""
	level = zapcore.InfoLevel
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) {
	l.sugar.Debugf(format, args...)
}

// Info logs an info message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// Warn logs a warning.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.sugar.Warnf(format, args...)
}

// Error logs an error.
func (l *Logger) Error(format string, args ...interface{}) {
	l.sugar.Errorf(format, args...)
}
