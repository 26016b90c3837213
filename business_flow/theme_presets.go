package businessflow

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/amirphl/masuk10/models"
	"gopkg.in/yaml.v3"
)

//go:embed theme_presets.yaml
var themePresetsYAML []byte

// DefaultThemeName is activated by the seed when no theme is active.
const DefaultThemeName = "cyber_neon"

type ThemeColors struct {
	Primary         string `yaml:"primary" json:"primary"`
	PrimaryLight    string `yaml:"primary_light" json:"primaryLight"`
	PrimaryDark     string `yaml:"primary_dark" json:"primaryDark"`
	Secondary       string `yaml:"secondary" json:"secondary"`
	SecondaryLight  string `yaml:"secondary_light" json:"secondaryLight"`
	SecondaryDark   string `yaml:"secondary_dark" json:"secondaryDark"`
	Accent          string `yaml:"accent" json:"accent"`
	AccentGlow      string `yaml:"accent_glow" json:"accentGlow"`
	BgPrimary       string `yaml:"bg_primary" json:"bgPrimary"`
	BgSecondary     string `yaml:"bg_secondary" json:"bgSecondary"`
	BgGradientStart string `yaml:"bg_gradient_start" json:"bgGradientStart"`
	BgGradientEnd   string `yaml:"bg_gradient_end" json:"bgGradientEnd"`
	TextPrimary     string `yaml:"text_primary" json:"textPrimary"`
	TextSecondary   string `yaml:"text_secondary" json:"textSecondary"`
	TextMuted       string `yaml:"text_muted" json:"textMuted"`
	Border          string `yaml:"border" json:"border"`
	Card            string `yaml:"card" json:"card"`
	CardHover       string `yaml:"card_hover" json:"cardHover"`
}

type ThemeTypography struct {
	FontFamily struct {
		Heading string `yaml:"heading" json:"heading"`
		Body    string `yaml:"body" json:"body"`
	} `yaml:"font_family" json:"fontFamily"`
	FontSize   map[string]string `yaml:"font_size" json:"fontSize"`
	FontWeight map[string]int    `yaml:"font_weight" json:"fontWeight"`
}

type ThemeAnimations struct {
	Duration struct {
		Fast   string `yaml:"fast" json:"fast"`
		Normal string `yaml:"normal" json:"normal"`
		Slow   string `yaml:"slow" json:"slow"`
	} `yaml:"duration" json:"duration"`
	Easing struct {
		Default string `yaml:"default" json:"default"`
		InOut   string `yaml:"in_out" json:"inOut"`
		Spring  string `yaml:"spring" json:"spring"`
	} `yaml:"easing" json:"easing"`
	Effects map[string]bool `yaml:"effects" json:"effects"`
}

type ThemeEffects struct {
	Blur struct {
		Card  string `yaml:"card" json:"card"`
		Modal string `yaml:"modal" json:"modal"`
	} `yaml:"blur" json:"blur"`
	Shadow struct {
		Sm   string `yaml:"sm" json:"sm"`
		Md   string `yaml:"md" json:"md"`
		Lg   string `yaml:"lg" json:"lg"`
		Glow string `yaml:"glow" json:"glow"`
	} `yaml:"shadow" json:"shadow"`
	BorderRadius struct {
		Sm string `yaml:"sm" json:"sm"`
		Md string `yaml:"md" json:"md"`
		Lg string `yaml:"lg" json:"lg"`
		Xl string `yaml:"xl" json:"xl"`
	} `yaml:"border_radius" json:"borderRadius"`
}

// ThemePreset is a built-in theme definition.
type ThemePreset struct {
	Name        string          `yaml:"name"`
	DisplayName string          `yaml:"display_name"`
	Description string          `yaml:"description"`
	PreviewURL  string          `yaml:"preview_url"`
	Colors      ThemeColors     `yaml:"colors"`
	Typography  ThemeTypography `yaml:"typography"`
	Animations  ThemeAnimations `yaml:"animations"`
	Effects     ThemeEffects    `yaml:"effects"`
}

var (
	presetsOnce sync.Once
	presets     []ThemePreset
	presetsErr  error
)

// ThemePresets returns the embedded presets in file order.
func ThemePresets() ([]ThemePreset, error) {
	presetsOnce.Do(func() {
		var doc struct {
			Themes []ThemePreset `yaml:"themes"`
		}
		if err := yaml.Unmarshal(themePresetsYAML, &doc); err != nil {
			presetsErr = fmt.Errorf("failed to parse theme presets: %w", err)
			return
		}
		presets = doc.Themes
	})
	return presets, presetsErr
}

// ThemePresetByName returns nil when no preset has that name.
func ThemePresetByName(name string) (*ThemePreset, error) {
	all, err := ThemePresets()
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].Name == name {
			p := all[i]
			return &p, nil
		}
	}
	return nil, nil
}

// ThemeToCSSVars flattens a preset into the CSS custom properties the landing page reads.
func ThemeToCSSVars(p ThemePreset) map[string]string {
	c := p.Colors
	return map[string]string{
		"--color-primary":           c.Primary,
		"--color-primary-light":     c.PrimaryLight,
		"--color-primary-dark":      c.PrimaryDark,
		"--color-secondary":         c.Secondary,
		"--color-secondary-light":   c.SecondaryLight,
		"--color-secondary-dark":    c.SecondaryDark,
		"--color-accent":            c.Accent,
		"--color-accent-glow":       c.AccentGlow,
		"--color-bg-primary":        c.BgPrimary,
		"--color-bg-secondary":      c.BgSecondary,
		"--color-bg-gradient-start": c.BgGradientStart,
		"--color-bg-gradient-end":   c.BgGradientEnd,
		"--color-text-primary":      c.TextPrimary,
		"--color-text-secondary":    c.TextSecondary,
		"--color-text-muted":        c.TextMuted,
		"--color-border":            c.Border,
		"--color-card":              c.Card,
		"--color-card-hover":        c.CardHover,

		"--font-heading": p.Typography.FontFamily.Heading,
		"--font-body":    p.Typography.FontFamily.Body,

		"--duration-fast":   p.Animations.Duration.Fast,
		"--duration-normal": p.Animations.Duration.Normal,
		"--duration-slow":   p.Animations.Duration.Slow,

		"--blur-card":   p.Effects.Blur.Card,
		"--blur-modal":  p.Effects.Blur.Modal,
		"--shadow-glow": p.Effects.Shadow.Glow,
		"--radius-lg":   p.Effects.BorderRadius.Lg,
		"--radius-xl":   p.Effects.BorderRadius.Xl,
	}
}

// ToTheme builds the row persisted for a preset.
func (p ThemePreset) ToTheme(active bool) (*models.Theme, error) {
	cssVars := make(models.JSONMap)
	for k, v := range ThemeToCSSVars(p) {
		cssVars[k] = v
	}
	animations, err := toJSONMap(p.Animations)
	if err != nil {
		return nil, err
	}
	typography, err := toJSONMap(p.Typography)
	if err != nil {
		return nil, err
	}

	theme := &models.Theme{
		Name:        p.Name,
		DisplayName: p.DisplayName,
		Description: trimmedPtr(&p.Description),
		PreviewURL:  trimmedPtr(&p.PreviewURL),
		CSSVars:     cssVars,
		Animations:  animations,
		Typography:  typography,
		IsActive:    &active,
	}
	return theme, nil
}

func toJSONMap(v any) (models.JSONMap, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode theme section: %w", err)
	}
	out := make(models.JSONMap)
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode theme section: %w", err)
	}
	return out, nil
}
