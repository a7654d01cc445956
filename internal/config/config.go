// Package config loads run configuration from the environment and handles the
// XDG configuration directory used for Google OAuth credentials.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// AppName is the application directory name.
	AppName = "dayplan"

	// OAuthClientFile is the OAuth client credentials filename.
	OAuthClientFile = "oauth_client.json"

	// TokenFile is the stored OAuth token filename.
	TokenFile = "token.json"

	// DefaultEnvFile is loaded when no --env flag is given.
	DefaultEnvFile = ".env"

	// MaxPageSize is the largest page the Notion query endpoint returns.
	MaxPageSize = 100
)

// Task sources.
const (
	SourceNotion = "notion"
	SourceGoogle = "google"
)

// Mail transports.
const (
	TransportSMTP  = "smtp"
	TransportGmail = "gmail"
)

// ErrMissing is wrapped by Validate when required values are absent.
var ErrMissing = errors.New("missing required configuration")

// Config holds configuration paths and settings for a single run.
// It is built once at startup and passed to every component.
type Config struct {
	// Dir is the configuration directory path.
	Dir string

	// Debug enables debug logging.
	Debug bool

	// Quiet suppresses informational output.
	Quiet bool

	// LogLevel is the zerolog level name used when Debug is off.
	LogLevel string

	TaskSource string

	// Notion
	NotionToken      string
	NotionBaseURL    string
	NotionVersion    string
	DatabaseID       string
	TitleProperty    string
	DescProperty     string
	StatusProperty   string
	DeadlineProperty string

	// Google Tasks
	GoogleTaskList string

	PageSize int
	MaxPages int

	// Plan generation
	ChatAPIKey  string
	ChatBaseURL string
	Model       string

	// Prompt
	Location       *time.Location
	WeeklyDay      time.Weekday
	PromptTemplate string // path; empty selects the built-in template

	// Push notifications
	PushbulletKey     string
	PushbulletBaseURL string

	// Email
	MailTransport string
	MailFrom      string
	MailTo        string
	SMTPHost      string
	SMTPPort      int
	SMTPPassword  string
	HTMLOut       string

	RequestTimeout time.Duration
}

// New creates a new Config with the default or specified config directory.
// If configDir is empty, uses XDG_CONFIG_HOME/dayplan or $HOME/.config/dayplan.
// Environment-derived fields are left empty; see Load.
func New(configDir string) (*Config, error) {
	dir := configDir
	if dir == "" {
		dir = DefaultConfigDir()
	}
	return &Config{Dir: dir}, nil
}

// Load reads envFile (if it exists) into the process environment without
// overriding variables that are already set, then fills every
// environment-derived field of c.
func (c *Config) Load(envFile string) error {
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("config: load %s: %w", envFile, err)
	}

	c.LogLevel = getEnv("LOG_LEVEL", "info")
	c.TaskSource = strings.ToLower(getEnv("DAYPLAN_TASK_SOURCE", SourceNotion))

	c.NotionToken = os.Getenv("NOTION_TOKEN")
	c.NotionBaseURL = getEnv("NOTION_BASE_URL", "https://api.notion.com")
	c.NotionVersion = getEnv("NOTION_VERSION", "2022-06-28")
	c.DatabaseID = os.Getenv("DATABASE_ID")
	c.TitleProperty = getEnv("NOTION_TITLE_PROPERTY", "🐈 Sistema")
	c.DescProperty = getEnv("NOTION_DESCRIPTION_PROPERTY", "🍀 Descrição")
	c.StatusProperty = getEnv("NOTION_STATUS_PROPERTY", "✅ Status")
	c.DeadlineProperty = getEnv("NOTION_DEADLINE_PROPERTY", "📅 Deadline")

	c.GoogleTaskList = getEnv("GOOGLE_TASKLIST", "@default")

	c.PageSize = min(getEnvInt("DAYPLAN_PAGE_SIZE", MaxPageSize), MaxPageSize)
	c.MaxPages = getEnvInt("DAYPLAN_MAX_PAGES", 50)

	c.ChatAPIKey = os.Getenv("CHAT_API_KEY")
	c.ChatBaseURL = getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1")
	c.Model = getEnv("DAYPLAN_MODEL", "gpt-4o-mini")

	loc, err := time.LoadLocation(getEnv("DAYPLAN_TIMEZONE", "UTC"))
	if err != nil {
		return fmt.Errorf("config: DAYPLAN_TIMEZONE: %w", err)
	}
	c.Location = loc

	day, err := ParseWeekday(getEnv("DAYPLAN_WEEKLY_DAY", "sunday"))
	if err != nil {
		return fmt.Errorf("config: DAYPLAN_WEEKLY_DAY: %w", err)
	}
	c.WeeklyDay = day
	c.PromptTemplate = os.Getenv("DAYPLAN_PROMPT_TEMPLATE")

	c.PushbulletKey = os.Getenv("PUSH_BULLET_API_KEY")
	c.PushbulletBaseURL = getEnv("PUSHBULLET_BASE_URL", "https://api.pushbullet.com")

	c.MailTransport = strings.ToLower(getEnv("MAIL_TRANSPORT", TransportSMTP))
	c.MailFrom = os.Getenv("MAIL_FROM")
	c.MailTo = getEnv("MAIL_TO", c.MailFrom)
	c.SMTPHost = getEnv("SMTP_HOST", "smtp.gmail.com")
	c.SMTPPort = getEnvInt("SMTP_PORT", 587)
	c.SMTPPassword = os.Getenv("PASSWORD_GMAIL")
	c.HTMLOut = os.Getenv("DAYPLAN_HTML_OUT")

	c.RequestTimeout = time.Duration(getEnvInt("DAYPLAN_REQUEST_TIMEOUT_SECONDS", 30)) * time.Second
	return nil
}

// Channels selects which parts of the pipeline a command uses; only enabled
// parts contribute required values.
type Channels struct {
	Generate bool
	Push     bool
	Email    bool
}

// Missing returns the names of every required value that is empty, in a
// stable order.
//
// Expectations:
//   - Requires CHAT_API_KEY only when a plan is generated
//   - Requires NOTION_TOKEN and DATABASE_ID for the notion source only
//   - Requires PUSH_BULLET_API_KEY only when push is enabled
//   - Requires MAIL_FROM, and PASSWORD_GMAIL for the smtp transport, only when email is enabled
func (c *Config) Missing(ch Channels) []string {
	type req struct {
		name  string
		value string
	}
	var reqs []req
	if c.TaskSource == SourceNotion {
		reqs = append(reqs, req{"NOTION_TOKEN", c.NotionToken}, req{"DATABASE_ID", c.DatabaseID})
	}
	if ch.Generate {
		reqs = append(reqs, req{"CHAT_API_KEY", c.ChatAPIKey})
	}
	if ch.Push {
		reqs = append(reqs, req{"PUSH_BULLET_API_KEY", c.PushbulletKey})
	}
	if ch.Email {
		reqs = append(reqs, req{"MAIL_FROM", c.MailFrom})
		if c.MailTransport == TransportSMTP {
			reqs = append(reqs, req{"PASSWORD_GMAIL", c.SMTPPassword})
		}
	}

	var missing []string
	for _, r := range reqs {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.name)
		}
	}
	return missing
}

// Validate returns an error wrapping ErrMissing that lists every missing
// required value, comma separated, or an error for an unknown source or
// transport. Returns nil when the run can proceed.
func (c *Config) Validate(ch Channels) error {
	switch c.TaskSource {
	case SourceNotion, SourceGoogle:
	default:
		return fmt.Errorf("config: unknown task source: %s", c.TaskSource)
	}
	if ch.Email {
		switch c.MailTransport {
		case TransportSMTP, TransportGmail:
		default:
			return fmt.Errorf("config: unknown mail transport: %s", c.MailTransport)
		}
	}
	if missing := c.Missing(ch); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissing, strings.Join(missing, ", "))
	}
	return nil
}

// ParseWeekday parses an English weekday name, case-insensitively.
func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.ToLower(d.String()) == name {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("invalid weekday: %s", s)
}

// DefaultConfigDir returns the default configuration directory.
// Uses XDG_CONFIG_HOME if set, otherwise $HOME/.config.
func DefaultConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home can't be determined
		return AppName
	}
	return filepath.Join(home, ".config", AppName)
}

// OAuthClientPath returns the path to the OAuth client credentials file.
func (c *Config) OAuthClientPath() string {
	return filepath.Join(c.Dir, OAuthClientFile)
}

// TokenPath returns the path to the stored OAuth token file.
func (c *Config) TokenPath() string {
	return filepath.Join(c.Dir, TokenFile)
}

// EnsureDir creates the config directory if it doesn't exist.
// Directory is created with mode 0700.
func (c *Config) EnsureDir() error {
	return os.MkdirAll(c.Dir, 0700)
}

// HasOAuthClient checks if the OAuth client credentials file exists.
func (c *Config) HasOAuthClient() bool {
	_, err := os.Stat(c.OAuthClientPath())
	return err == nil
}

// HasToken checks if the token file exists.
func (c *Config) HasToken() bool {
	_, err := os.Stat(c.TokenPath())
	return err == nil
}

// RemoveToken deletes the token file.
func (c *Config) RemoveToken() error {
	return os.Remove(c.TokenPath())
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
