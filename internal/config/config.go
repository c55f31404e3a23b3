package config

import (
	"time"

	"logtarget/internal/record"
)

type Config struct {
	Target      TargetConfig            `yaml:"target"`
	Backend     BackendConfig           `yaml:"backend"`
	Emergency   EmergencyConfig         `yaml:"emergency"`
	Environment EnvironmentConfig       `yaml:"environment"`
	Sources     map[string]SourceConfig `yaml:"sources"`
	Host        HostConfig              `yaml:"host"`
	Metrics     MetricsConfig           `yaml:"metrics"`
	Log         LogConfig               `yaml:"log"`
}

type TargetConfig struct {
	ExportInterval int      `yaml:"export_interval"`
	Levels         []string `yaml:"levels"`
	Categories     []string `yaml:"categories"`
	Except         []string `yaml:"except"`
	LogUser        bool     `yaml:"log_user"`
	LogVars        []string `yaml:"log_vars"`
	Context        Fields   `yaml:"context"`
	BasePath       string   `yaml:"base_path"`
	Prefix         string   `yaml:"prefix"`
}

type BackendConfig struct {
	Type     string        `yaml:"type"`
	Endpoint string        `yaml:"endpoint"`
	Index    string        `yaml:"index"`
	DocType  string        `yaml:"doc_type"`
	Timeout  time.Duration `yaml:"timeout"`
	Compress bool          `yaml:"compress"`
	Username string        `yaml:"username,omitempty"`
	Password string        `yaml:"password,omitempty"`
	APIKey   string        `yaml:"api_key,omitempty"`
	Pretty   bool          `yaml:"pretty"`
}

type EmergencyConfig struct {
	File    string            `yaml:"file"`
	Aliases map[string]string `yaml:"aliases"`
}

type EnvironmentConfig struct {
	User      string         `yaml:"user"`
	UserEnv   string         `yaml:"user_env"`
	Vars      map[string]any `yaml:"vars"`
	OSEnv     bool           `yaml:"os_env"`
	Docker    bool           `yaml:"docker"`
	Container string         `yaml:"container,omitempty"`
	Cache     CacheConfig    `yaml:"cache"`
}

type CacheConfig struct {
	TTL     time.Duration `yaml:"ttl"`
	MaxSize int           `yaml:"max_size"`
}

type SourceConfig struct {
	Type        string `yaml:"type"`
	Path        string `yaml:"path,omitempty"`
	ContainerID string `yaml:"container_id,omitempty"`
	Category    string `yaml:"category"`
	Level       string `yaml:"level,omitempty"`
}

type HostConfig struct {
	FlushInterval time.Duration `yaml:"flush_interval"`
	FlushRecords  int           `yaml:"flush_records"`
}

type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Default returns the configuration used for every option the file leaves
// out.
func Default() *Config {
	return &Config{
		Target: TargetConfig{
			ExportInterval: 1000,
		},
		Backend: BackendConfig{
			Type:     BackendElasticsearch,
			Endpoint: "http://localhost:9200",
			Index:    "yii",
			DocType:  "log",
			Timeout:  5 * time.Second,
		},
		Emergency: EmergencyConfig{
			File:    "@runtime/logs/logService.log",
			Aliases: map[string]string{"@runtime": "runtime"},
		},
		Environment: EnvironmentConfig{
			OSEnv: true,
			Cache: CacheConfig{TTL: 30 * time.Second, MaxSize: 256},
		},
		Host: HostConfig{
			FlushInterval: time.Second,
			FlushRecords:  1000,
		},
		Log: LogConfig{Level: "info"},
	}
}

const (
	BackendElasticsearch = "elasticsearch"
	BackendStdout        = "stdout"

	SourceFile   = "file"
	SourceStdin  = "stdin"
	SourceDocker = "docker"
)

// LevelMask converts the configured level names into a mask. No names means
// every level.
func (t TargetConfig) LevelMask() (record.Mask, error) {
	var levels []record.Level
	for _, name := range t.Levels {
		l, ok := record.ParseLevel(name)
		if !ok {
			return 0, &UnknownLevelError{Name: name}
		}
		levels = append(levels, l)
	}
	return record.MaskOf(levels...), nil
}

type UnknownLevelError struct {
	Name string
}

func (e *UnknownLevelError) Error() string {
	return "unknown level '" + e.Name + "'"
}
