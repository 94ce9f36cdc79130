package domain

// DefaultServer is the Remote Settings endpoint used when SERVER is unset.
const DefaultServer = "http://localhost:8888/v1"

// Settings is the process configuration read from the environment.
// Command-specific variables are parsed by each command from the same
// environment and are not listed here.
type Settings struct {
	Server      string `env:"SERVER" envDefault:"http://localhost:8888/v1"`
	SentryDSN   string `env:"SENTRY_DSN"`
	SentryEnv   string `env:"SENTRY_ENV" envDefault:"local"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat   string `env:"LOG_FORMAT" envDefault:"text"`
	JournalPath string `env:"JOURNAL_PATH"`
	NoColor     string `env:"NO_COLOR"`
	DisplayDate string `env:"DISPLAY_DATE" envDefault:"yyyy-mm-dd"`
	DisplayTime string `env:"DISPLAY_TIME" envDefault:"24h"`
}

// ReportingEnabled reports whether an error-reporting DSN is configured.
func (s Settings) ReportingEnabled() bool {
	return s.SentryDSN != ""
}

// ColorDisabled follows the NO_COLOR convention: any non-empty value disables styling.
func (s Settings) ColorDisabled() bool {
	return s.NoColor != ""
}
