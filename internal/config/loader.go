package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/zjrosen/flowdraft/internal/log"
)

// EnvPrefix is the prefix of every environment override (FLOWDRAFT_REQUEST_TIMEOUT, ...).
const EnvPrefix = "FLOWDRAFT"

// Loader reads Config from defaults, an optional YAML file, the environment and
// any flags bound to its viper instance, in increasing order of precedence.
type Loader struct {
	v        *viper.Viper
	explicit bool
}

// NewLoader creates a loader for path. An empty path means the default config
// location, which is allowed to be absent.
func NewLoader(path string) *Loader {
	v := viper.New()
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath()
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	setDefaults(v, Defaults())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("backendBaseUrl", EnvPrefix+"_BACKEND_BASE_URL")

	return &Loader{v: v, explicit: explicit}
}

// Viper exposes the underlying instance so commands can bind flags.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

// Load reads the config file (if any) and returns the validated configuration.
func (l *Loader) Load() (Config, error) {
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		missing := errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
		if l.explicit || !missing {
			return Config{}, fmt.Errorf("reading config %s: %w", l.v.ConfigFileUsed(), err)
		}
		log.Debug(log.CatConfig, "No config file, using defaults", "path", l.v.ConfigFileUsed())
	} else {
		log.Info(log.CatConfig, "Loaded config file", "path", l.v.ConfigFileUsed())
	}
	return l.decode()
}

// Watch re-decodes the config whenever the file changes and passes valid
// results to onChange. Invalid edits are logged and ignored.
func (l *Loader) Watch(onChange func(Config)) {
	l.v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := l.decode()
		if err != nil {
			log.ErrorErr(log.CatConfig, "Ignoring invalid config change", err, "file", e.Name)
			return
		}
		log.Info(log.CatConfig, "Config reloaded", "file", e.Name, "op", e.Op.String())
		onChange(cfg)
	})
	l.v.WatchConfig()
}

func (l *Loader) decode() (Config, error) {
	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("backendBaseUrl", d.BackendBaseURL)
	v.SetDefault("request_timeout", d.RequestTimeout)
	v.SetDefault("log.path", d.Log.Path)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("telemetry.enabled", d.Telemetry.Enabled)
	v.SetDefault("telemetry.traces_path", d.Telemetry.TracesPath)
	v.SetDefault("telemetry.otlp_endpoint", d.Telemetry.OTLPEndpoint)
	v.SetDefault("metrics.addr", d.Metrics.Addr)
	v.SetDefault("health.interval", d.Health.Interval)
	v.SetDefault("health.cache_ttl", d.Health.CacheTTL)
	v.SetDefault("ui.chat_open", d.UI.ChatOpen)
	v.SetDefault("ui.render_markdown", d.UI.RenderMarkdown)
	v.SetDefault("ui.show_status_bar", d.UI.ShowStatusBar)
}
