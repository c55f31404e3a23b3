package config

import (
	"errors"
	"fmt"

	"logtarget/internal/record"
)

var ErrNoBackend = errors.New("backend type is required")

func (c *Config) Validate() error {
	if c.Target.ExportInterval < 0 {
		return fmt.Errorf("target: export_interval must be >= 0, got %d", c.Target.ExportInterval)
	}
	if _, err := c.Target.LevelMask(); err != nil {
		return fmt.Errorf("target: %w", err)
	}

	switch c.Backend.Type {
	case "":
		return ErrNoBackend
	case BackendElasticsearch:
		if c.Backend.Endpoint == "" {
			return fmt.Errorf("backend: endpoint is required")
		}
		if c.Backend.Index == "" || c.Backend.DocType == "" {
			return fmt.Errorf("backend: index and doc_type are required")
		}
	case BackendStdout:
	default:
		return fmt.Errorf("backend: unknown type '%s'", c.Backend.Type)
	}

	if c.Emergency.File == "" {
		return fmt.Errorf("emergency: file is required")
	}

	if len(c.Sources) == 0 {
		return fmt.Errorf("at least one source is required")
	}

	for name, s := range c.Sources {
		switch s.Type {
		case SourceFile:
			if s.Path == "" {
				return fmt.Errorf("source [%s]: path is required", name)
			}
		case SourceDocker:
			if s.ContainerID == "" {
				return fmt.Errorf("source [%s]: container_id is required", name)
			}
		case SourceStdin:
		default:
			return fmt.Errorf("source [%s]: unknown type '%s'", name, s.Type)
		}
		if s.Level != "" {
			if _, ok := record.ParseLevel(s.Level); !ok {
				return fmt.Errorf("source [%s]: unknown level '%s'", name, s.Level)
			}
		}
	}

	if c.Host.FlushInterval <= 0 {
		return fmt.Errorf("host: flush_interval must be positive")
	}
	if c.Host.FlushRecords < 0 {
		return fmt.Errorf("host: flush_records must be >= 0")
	}

	return nil
}
