// Package settings keeps the user's interface preferences, language and
// theme, hydrated from and persisted to the key-value store.
package settings

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/vitrine-shop/vitrine/internal/i18n"
	"github.com/vitrine-shop/vitrine/internal/storage/kv"
)

// Themes.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Store is the slice of the kv store the service needs.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Publisher receives preference change notifications.
type Publisher interface {
	Publish(e any)
}

// LanguageChangedEvent is published when the interface language changes.
type LanguageChangedEvent struct {
	Language string
}

// ThemeChangedEvent is published when the theme changes.
type ThemeChangedEvent struct {
	Theme string
}

// Service holds the current preferences.
type Service struct {
	store Store
	bus   Publisher
	lg    *zap.Logger

	mu       sync.Mutex
	language string
	theme    string
}

// NewService creates a Service with default preferences. Call Hydrate to
// restore persisted ones.
func NewService(store Store, bus Publisher, lg *zap.Logger) *Service {
	return &Service{
		store:    store,
		bus:      bus,
		lg:       lg,
		language: i18n.DefaultLanguage,
		theme:    ThemeLight,
	}
}

// Hydrate restores persisted preferences. Missing or unrecognized values keep
// the defaults; a store failure is logged and the defaults stand.
func (s *Service) Hydrate(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok, err := s.store.Get(ctx, kv.KeyLanguage); err != nil {
		s.lg.Warn("restore language failed", zap.Error(err))
	} else if ok {
		s.language = i18n.Match(v)
	}

	if v, ok, err := s.store.Get(ctx, kv.KeyTheme); err != nil {
		s.lg.Warn("restore theme failed", zap.Error(err))
	} else if ok && (v == ThemeLight || v == ThemeDark) {
		s.theme = v
	}
}

// Language returns the active interface language code.
func (s *Service) Language() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

// Theme returns the active theme.
func (s *Service) Theme() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

// SetLanguage switches the interface language. Unrecognized codes resolve to
// the default language. Setting the already active language is a no-op.
func (s *Service) SetLanguage(ctx context.Context, code string) {
	lang := i18n.Match(code)

	s.mu.Lock()
	if s.language == lang {
		s.mu.Unlock()
		return
	}
	s.language = lang
	s.persist(ctx, kv.KeyLanguage, lang)
	s.mu.Unlock()

	s.bus.Publish(LanguageChangedEvent{Language: lang})
}

// ToggleLanguage flips between English and French.
func (s *Service) ToggleLanguage(ctx context.Context) {
	next := i18n.French
	if s.Language() == i18n.French {
		next = i18n.English
	}
	s.SetLanguage(ctx, next)
}

// SetTheme switches the theme. Unrecognized themes are ignored; setting the
// already active theme is a no-op.
func (s *Service) SetTheme(ctx context.Context, theme string) {
	if theme != ThemeLight && theme != ThemeDark {
		return
	}

	s.mu.Lock()
	if s.theme == theme {
		s.mu.Unlock()
		return
	}
	s.theme = theme
	s.persist(ctx, kv.KeyTheme, theme)
	s.mu.Unlock()

	s.bus.Publish(ThemeChangedEvent{Theme: theme})
}

// ToggleTheme flips between light and dark.
func (s *Service) ToggleTheme(ctx context.Context) {
	s.mu.Lock()
	if s.theme == ThemeLight {
		s.theme = ThemeDark
	} else {
		s.theme = ThemeLight
	}
	theme := s.theme
	s.persist(ctx, kv.KeyTheme, theme)
	s.mu.Unlock()

	s.bus.Publish(ThemeChangedEvent{Theme: theme})
}

// persist writes the preference, logging on failure. Preferences are not
// critical data; a failed write leaves the in-memory value authoritative.
func (s *Service) persist(ctx context.Context, key, value string) {
	if err := s.store.Set(ctx, key, value); err != nil {
		s.lg.Warn("persist preference failed", zap.String("key", key), zap.Error(err))
	}
}
