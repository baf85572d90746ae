package config

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	EnvAggregatorAPIKey = "FEEDME_LIFI_API_KEY"
	EnvLogLevel         = "FEEDME_LOG_LEVEL"
	EnvListen           = "FEEDME_LISTEN"

	DefaultAggregatorURL = "https://li.quest/v1"
	DefaultIntegrator    = "feedme"
	DefaultSubgraphURL   = "https://api.thegraph.com/subgraphs/name/ensdomains/ens"
	DefaultListen        = "127.0.0.1:8080"
	DefaultDebounce      = 500 * time.Millisecond
)

type LogSettings struct {
	Level string `yaml:"level" validate:"omitempty,oneof=trace debug info warn warning error fatal panic"`
	JSON  bool   `yaml:"json"`
}

type AggregatorSettings struct {
	BaseURL    string `yaml:"baseUrl" validate:"required,url"`
	APIKey     string `yaml:"apiKey"`
	Integrator string `yaml:"integrator" validate:"required"`
}

// HistorySettings replaces a network's default transfer history provider.
type HistorySettings struct {
	Kind      string `yaml:"kind" validate:"oneof=blockscout etherscan"`
	URL       string `yaml:"url" validate:"required,url"`
	APIKeyVar string `yaml:"apiKeyVar"`
}

type ServerSettings struct {
	Listen string `yaml:"listen" validate:"required,hostname_port"`
}

type Settings struct {
	Log         LogSettings        `yaml:"log"`
	Aggregator  AggregatorSettings `yaml:"aggregator"`
	SubgraphURL string             `yaml:"subgraphUrl" validate:"required,url"`
	Debounce    time.Duration      `yaml:"debounce" validate:"gte=0"`
	CachePath   string             `yaml:"cachePath"`
	Server      ServerSettings     `yaml:"server"`

	// Nodes adds or replaces node urls of a network, keyed by network name
	// then node name.
	Nodes   map[string]map[string]string `yaml:"nodes" validate:"dive,keys,required,endkeys,dive,url"`
	History map[string]HistorySettings   `yaml:"history" validate:"dive"`
}

func Defaults() Settings {
	return Settings{
		Log: LogSettings{Level: "info"},
		Aggregator: AggregatorSettings{
			BaseURL:    DefaultAggregatorURL,
			Integrator: DefaultIntegrator,
		},
		SubgraphURL: DefaultSubgraphURL,
		Debounce:    DefaultDebounce,
		Server:      ServerSettings{Listen: DefaultListen},
	}
}

func feedmeDir() string {
	usr, err := user.Current()
	if err != nil {
		return filepath.Join(os.TempDir(), "feedme")
	}
	return filepath.Join(usr.HomeDir, ".feedme")
}

// DefaultPath is ~/.feedme/config.yaml.
func DefaultPath() string {
	return filepath.Join(feedmeDir(), "config.yaml")
}

// Load reads the settings file at path on top of the defaults, then applies
// env overrides and validates the result. With an empty path the default file
// is read if it exists.
func Load(path string) (Settings, error) {
	s := Defaults()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &s); err != nil {
			return Settings{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return Settings{}, fmt.Errorf("reading settings: %w", err)
	}
	s.applyEnv()
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

func (s *Settings) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvAggregatorAPIKey)); v != "" {
		s.Aggregator.APIKey = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		s.Log.Level = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvListen)); v != "" {
		s.Server.Listen = v
	}
}

var validate = validator.New()

func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

// NodesFor returns the node overrides of a network, looked up by any of its
// names.
func (s Settings) NodesFor(names ...string) map[string]string {
	res := map[string]string{}
	for _, name := range names {
		for node, url := range s.Nodes[strings.ToLower(name)] {
			res[node] = url
		}
	}
	return res
}

func (s Settings) HistoryFor(names ...string) (HistorySettings, bool) {
	for _, name := range names {
		if h, found := s.History[strings.ToLower(name)]; found {
			return h, true
		}
	}
	return HistorySettings{}, false
}
