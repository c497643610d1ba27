package app

import (
	"context"
	"fmt"
	"sort"

	"github.com/newthinker/tradando/internal/config"
	"github.com/newthinker/tradando/internal/core"
	"github.com/newthinker/tradando/internal/notifier"
	"github.com/newthinker/tradando/internal/notifier/telegram"
	"github.com/newthinker/tradando/internal/notifier/webhook"
	"go.uber.org/zap"
)

func buildNotifiers(cfg map[string]config.NotifierConfig, logger *zap.Logger) (*notifier.Registry, error) {
	registry := notifier.NewRegistry()

	names := make([]string, 0, len(cfg))
	for name := range cfg {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		nc := cfg[name]
		if !nc.Enabled {
			continue
		}

		var n notifier.Notifier
		switch name {
		case "telegram":
			n = telegram.New("", "")
		case "webhook":
			n = webhook.New("", nil)
		default:
			return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown notifier: %s", name))
		}

		if err := n.Init(notifier.Config{Params: nc.Params}); err != nil {
			return nil, core.WrapError(core.ErrConfigInvalid, err)
		}
		if err := registry.Register(n); err != nil {
			return nil, err
		}
		logger.Debug("notifier enabled", zap.String("notifier", name))
	}

	return registry, nil
}

// RegisterNotifier adds a summary channel
func (a *App) RegisterNotifier(n notifier.Notifier) error {
	return a.notifiers.Register(n)
}

// Notify publishes summary to every enabled notifier. Failures are logged
// and returned per notifier name.
func (a *App) Notify(ctx context.Context, summary notifier.Summary) map[string]error {
	if a.notifiers.Len() == 0 {
		a.logger.Debug("no notifiers enabled")
		return nil
	}

	errs := a.notifiers.NotifyAll(ctx, summary)
	for name, err := range errs {
		a.logger.Warn("notify failed", zap.String("notifier", name), zap.Error(err))
	}
	return errs
}
