package prefs

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/folio/internal/apperr"
)

// Theme values.
const (
	ThemeLight   = "light"
	ThemeDark    = "dark"
	DefaultTheme = ThemeLight
)

// Theme stores the colour theme under KeyTheme.
type Theme struct {
	kv KV
}

// NewTheme returns a Theme over kv.
func NewTheme(kv KV) *Theme {
	return &Theme{kv: kv}
}

// ValidateTheme reports whether v is a known theme.
func ValidateTheme(v string) error {
	return validation.Validate(v,
		validation.Required,
		validation.In(ThemeLight, ThemeDark),
	)
}

// Get returns the stored theme, or DefaultTheme when unset or unknown.
func (t *Theme) Get(ctx context.Context) (string, error) {
	v, ok, err := t.kv.Get(ctx, KeyTheme)
	if err != nil {
		return "", err
	}
	if !ok || ValidateTheme(v) != nil {
		return DefaultTheme, nil
	}
	return v, nil
}

// Set stores v after validating it.
func (t *Theme) Set(ctx context.Context, v string) error {
	if err := ValidateTheme(v); err != nil {
		return fmt.Errorf("prefs: theme %q: %v: %w", v, err, apperr.ErrInvalidInput)
	}
	return t.kv.Set(ctx, KeyTheme, v)
}

// Toggle flips between light and dark and returns the new theme.
func (t *Theme) Toggle(ctx context.Context) (string, error) {
	cur, err := t.Get(ctx)
	if err != nil {
		return "", err
	}
	next := ThemeDark
	if cur == ThemeDark {
		next = ThemeLight
	}
	return next, t.Set(ctx, next)
}
