package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/GreatAuk/webupdate/internal/i18n"
	"github.com/GreatAuk/webupdate/internal/notice"
)

// Config drives the watch daemon.
//
// All durations are Go duration strings (e.g. "30s", "10m").
type Config struct {
	// URLBase is the prefix the deployed site (and its version artifact)
	// is served under.
	URLBase string `json:"url_base" validate:"required,url"`

	// BuiltVersion is the version the currently served page was built
	// with. BuiltVersionFile reads it from a local artifact instead
	// (the stamp output inside the deployed directory).
	BuiltVersion     string `json:"built_version,omitempty"`
	BuiltVersionFile string `json:"built_version_file,omitempty"`

	// CheckInterval defaults to "10m". CheckSchedule, when set, replaces
	// the interval with a cron expression.
	CheckInterval string `json:"check_interval,omitempty"`
	CheckSchedule string `json:"check_schedule,omitempty"`

	HiddenDefaultNotification bool          `json:"hidden_default_notification,omitempty"`
	HiddenDismissButton       bool          `json:"hidden_dismiss_button,omitempty"`
	NotificationProps         *notice.Props `json:"notification_props,omitempty"`
	CustomNotificationHTML    string        `json:"custom_notification_html,omitempty"`

	Locale     string     `json:"locale,omitempty"`
	LocaleData i18n.Table `json:"locale_data,omitempty"`

	// AnchorFile is where the notification fragment is materialized for
	// the site's server-side include.
	AnchorFile string `json:"anchor_file,omitempty"`

	Storage *StorageConfig `json:"storage,omitempty"`
	Logging LoggingConfig  `json:"logging"`
	Notify  *NotifyConfig  `json:"notify,omitempty"`
}

// StorageConfig controls the dismissal store.
//
// Example:
//
//	"storage": { "driver": "file", "path": "./webupdate_store" }
type StorageConfig struct {
	Driver      string `json:"driver"`
	Path        string `json:"path"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string (sqlite)
}

type LoggingConfig struct {
	Level   string            `json:"level,omitempty"`
	Console bool              `json:"console"`
	File    LoggingFileConfig `json:"file,omitempty"`
}

type LoggingFileConfig struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path,omitempty"`
}

// NotifyConfig controls the operator notification channel: a stdout line
// and/or a Telegram message per newly detected version.
type NotifyConfig struct {
	Stdout     bool                  `json:"stdout,omitempty"`
	Telegram   *TelegramNotifyConfig `json:"telegram,omitempty"`
	RatePerSec int                   `json:"rate_per_sec,omitempty"`
}

type TelegramNotifyConfig struct {
	Token  string `json:"token" validate:"required"`
	ChatID int64  `json:"chat_id" validate:"required"`
}

var validate = validator.New()

// Validate checks field constraints and the cross-field rules the tags
// cannot express.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if strings.TrimSpace(c.BuiltVersion) == "" && strings.TrimSpace(c.BuiltVersionFile) == "" {
		return errors.New("config: one of built_version or built_version_file is required")
	}
	if _, err := ParseDurationOrDefault("check_interval", c.CheckInterval, 0); err != nil {
		return err
	}
	if c.Storage != nil {
		if _, err := ParseDurationField("storage.busy_timeout", c.Storage.BusyTimeout); err != nil {
			return err
		}
	}
	return nil
}
