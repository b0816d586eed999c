package rules

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"

	"leasing_hub/internal/domain"
	"leasing_hub/internal/lib/logger/sl"

	"github.com/samber/lo"
)

var ErrNoRules = errors.New("decision rules are not loaded")

// Provider хранит текущий снимок правил и умеет перечитывать его из файла.
type Provider struct {
	log     *slog.Logger
	path    string
	static  bool
	current atomic.Pointer[domain.DecisionRuleConfig]
}

// NewProvider загружает правила из path. Пустой путь или отсутствующий файл
// означают встроенные правила по умолчанию.
func NewProvider(log *slog.Logger, path string) (*Provider, error) {
	p := &Provider{log: log, path: path}
	if err := p.Reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// NewStaticProvider — провайдер с фиксированным набором правил.
func NewStaticProvider(cfg domain.DecisionRuleConfig) *Provider {
	p := &Provider{log: slog.New(slog.DiscardHandler), static: true}
	p.current.Store(&cfg)
	return p
}

// Rules возвращает текущий снимок правил.
func (p *Provider) Rules() (domain.DecisionRuleConfig, error) {
	cfg := p.current.Load()
	if cfg == nil {
		return domain.DecisionRuleConfig{}, ErrNoRules
	}
	return *cfg, nil
}

// Reload перечитывает файл правил. При ошибке разбора прежний снимок сохраняется.
// Для статического провайдера ничего не делает.
func (p *Provider) Reload() error {
	const op = "rules.Provider.Reload"

	if p.static {
		return nil
	}

	log := p.log.With(slog.String("op", op), slog.String("path", p.path))

	if p.path == "" {
		cfg := domain.DefaultDecisionRules()
		p.current.Store(&cfg)
		log.Info("using built-in decision rules")
		return nil
	}

	cfg, err := LoadFile(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && p.current.Load() == nil {
			def := domain.DefaultDecisionRules()
			p.current.Store(&def)
			log.Warn("rules file not found, using built-in decision rules")
			return nil
		}
		log.Error("failed to reload decision rules", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	p.current.Store(&cfg)

	enabled := lo.Map(cfg.EnabledCategories(), func(c domain.RuleCategory, _ int) string {
		return c.Name
	})
	log.Info("decision rules loaded",
		slog.Int("categories", len(cfg.Categories)),
		slog.Any("enabled", enabled),
	)
	return nil
}
