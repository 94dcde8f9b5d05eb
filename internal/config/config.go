package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Defaults compiled into the binary. Every one of them can be overridden
// from the config file, the environment or a command-line flag.
const (
	DefaultLabel           = "VA Coaching with Big Sis"
	DefaultTimeZone        = "Asia/Manila"
	DefaultEventDuration   = time.Hour
	DefaultSummaryPrefix   = "Coaching: "
	DefaultCalendarID      = "primary"
	DefaultCredentialsFile = "credentials.json"
	DefaultTokenFile       = "token.json"
	DefaultWatchInterval   = 15 * time.Minute
	DefaultMetricsAddr     = ":9090"

	// EnvPrefix is the prefix of environment variables read by Load.
	EnvPrefix = "COACHCAL_"
)

// DefaultDateLayouts are the time layouts tried by the heuristic tier, in order.
// Layouts with a year come first. A space before am/pm is removed before
// matching, so "10 PM" is read by the "3PM" layouts.
var DefaultDateLayouts = []string{
	"Mon Jan 2, 2006 3PM",
	"Mon Jan 2, 2006 3:04PM",
	"Jan 2, 2006 3PM",
	"Jan 2, 2006 3:04PM",
	"January 2, 2006 3PM",
	"January 2, 2006 3:04PM",
	"2006-01-02 15:04",
	"Mon Jan 2 3PM",
	"Mon Jan 2 3:04PM",
	"Jan 2 3PM",
	"Jan 2 3:04PM",
	"January 2 3PM",
	"January 2 3:04PM",
}

// Application is the full runtime configuration.
type Application struct {
	Mail     Mail     `koanf:"mail"`
	Calendar Calendar `koanf:"calendar"`
	Extract  Extract  `koanf:"extract"`
	Auth     Auth     `koanf:"auth"`
	Log      Log      `koanf:"log"`
	Watch    Watch    `koanf:"watch"`
}

// Mail selects which messages are scanned.
type Mail struct {
	Label string `koanf:"label"`
}

// Calendar selects where events are written.
type Calendar struct {
	ID       string `koanf:"id"`
	TimeZone string `koanf:"timezone"`
}

// Extract tunes date extraction.
type Extract struct {
	Layouts       []string      `koanf:"layouts"`
	Duration      time.Duration `koanf:"duration"`
	SummaryPrefix string        `koanf:"summaryprefix"`
}

// Auth locates the OAuth client secret and the persisted token.
type Auth struct {
	CredentialsFile string `koanf:"credentials"`
	TokenFile       string `koanf:"token"`
}

// Log configures the slog handler.
type Log struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Watch configures the polling mode.
type Watch struct {
	Interval    time.Duration `koanf:"interval"`
	MetricsAddr string        `koanf:"metricsaddr"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Application {
	return Application{
		Mail: Mail{Label: DefaultLabel},
		Calendar: Calendar{
			ID:       DefaultCalendarID,
			TimeZone: DefaultTimeZone,
		},
		Extract: Extract{
			Layouts:       append([]string(nil), DefaultDateLayouts...),
			Duration:      DefaultEventDuration,
			SummaryPrefix: DefaultSummaryPrefix,
		},
		Auth: Auth{
			CredentialsFile: DefaultCredentialsFile,
			TokenFile:       DefaultTokenFile,
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
		Watch: Watch{
			Interval:    DefaultWatchInterval,
			MetricsAddr: DefaultMetricsAddr,
		},
	}
}

// Load layers the defaults, the YAML file at path (if it exists) and
// COACHCAL_* environment variables. An empty path skips the file.
func Load(path string) (Application, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return Application{}, fmt.Errorf("failed to load default config: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return Application{}, fmt.Errorf("failed to load config file %s: %w", path, err)
			}
		}
	}

	err := k.Load(env.Provider(".", env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, EnvPrefix)), "_", ".")
			if k == "extract.layouts" {
				return k, splitLayouts(v)
			}
			return k, v
		},
	}), nil)
	if err != nil {
		return Application{}, fmt.Errorf("failed to load config from environment: %w", err)
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, fmt.Errorf("failed to decode config: %w", err)
	}

	return app, nil
}

// splitLayouts splits a ";"-separated layout list. Layouts contain commas
// and spaces, so neither can be used as the separator.
func splitLayouts(v string) []string {
	var layouts []string
	for _, l := range strings.Split(v, ";") {
		if l = strings.TrimSpace(l); l != "" {
			layouts = append(layouts, l)
		}
	}
	return layouts
}

// Validate checks if the configuration is usable.
func (a *Application) Validate() error {
	if strings.TrimSpace(a.Mail.Label) == "" {
		return fmt.Errorf("mail label must not be empty")
	}
	if a.Calendar.ID == "" {
		return fmt.Errorf("calendar id must not be empty")
	}
	if _, err := time.LoadLocation(a.Calendar.TimeZone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", a.Calendar.TimeZone, err)
	}
	if len(a.Extract.Layouts) == 0 {
		return fmt.Errorf("at least one date layout is required")
	}
	if a.Extract.Duration <= 0 {
		return fmt.Errorf("event duration must be positive, got %s", a.Extract.Duration)
	}
	if a.Auth.CredentialsFile == "" || a.Auth.TokenFile == "" {
		return fmt.Errorf("credentials and token file paths are required")
	}
	if a.Watch.Interval <= 0 {
		return fmt.Errorf("watch interval must be positive, got %s", a.Watch.Interval)
	}
	return nil
}

// Location returns the configured calendar timezone.
func (a *Application) Location() (*time.Location, error) {
	return time.LoadLocation(a.Calendar.TimeZone)
}

// Query returns the mail search query for unread messages under the label.
func (a *Application) Query() string {
	return fmt.Sprintf("label:%q is:unread", a.Mail.Label)
}
