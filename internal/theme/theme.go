// Package theme holds the dashboard appearance settings. Settings live
// in a long-lived cookie on the browser, not in the remote API: they
// are per-device preferences, and losing them costs two clicks.
package theme

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
)

// CookieName is the appearance-settings cookie.
const CookieName = "bo_theme"

// CookieMaxAge keeps the preference for a year.
const CookieMaxAge = 365 * 24 * time.Hour

// Settings is the closed set of appearance knobs.
type Settings struct {
	Color         string `json:"color" validate:"oneof=blue green purple orange red"`
	Density       string `json:"density" validate:"oneof=comfortable compact"`
	Radius        string `json:"radius" validate:"oneof=none small medium large"`
	NavDrawerSide string `json:"navDrawerSide" validate:"oneof=left right"`
}

// Default is what a fresh browser gets.
func Default() Settings {
	return Settings{
		Color:         "blue",
		Density:       "comfortable",
		Radius:        "medium",
		NavDrawerSide: "left",
	}
}

var validate = validator.New()

// Validate rejects values outside the closed enums.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid theme settings: %w", err)
	}
	return nil
}

// FromRequest reads the settings cookie, falling back to defaults on
// absence or corruption. A broken cookie is a reset, never an error.
func FromRequest(r *http.Request) Settings {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return Default()
	}
	raw, err := base64.RawURLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return Default()
	}
	var s Settings
	if err := json.Unmarshal(raw, &s); err != nil {
		return Default()
	}
	if err := s.Validate(); err != nil {
		return Default()
	}
	return s
}

// Write persists the settings cookie.
func Write(w http.ResponseWriter, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		MaxAge:   int(CookieMaxAge.Seconds()),
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}
