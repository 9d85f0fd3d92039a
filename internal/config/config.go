package config

import "time"

const (
	defaultConfigPath = "./config/config.yaml"
	configPathEnv     = "RTW_CONFIG"
)

type Config struct {
	Backend Backend `yaml:"backend"`
	Session Session `yaml:"session"`
	Stub    Stub    `yaml:"stub"`
}

// Backend points the client at the account service.
type Backend struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

type Session struct {
	CookieName    string        `yaml:"cookie_name"`
	WatchInterval time.Duration `yaml:"watch_interval"`
}

// Stub configures the local stand-in backend.
type Stub struct {
	Port     int           `yaml:"port"`
	DataPath string        `yaml:"data_path"`
	Lifetime time.Duration `yaml:"lifetime"`
}

func Default() *Config {
	return &Config{
		Backend: Backend{
			URL:     "http://localhost:3030",
			Timeout: 10 * time.Second,
		},
		Session: Session{
			CookieName:    "EXAUTH",
			WatchInterval: time.Second,
		},
		Stub: Stub{
			Port:     3030,
			Lifetime: 24 * time.Hour,
		},
	}
}

// New returns the defaults overlaid with the yaml config file, if one exists.
func New() (*Config, error) {
	return Load(configPath())
}
