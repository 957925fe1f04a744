package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"memorymatch/core"
)

var (
	validAdapters = []string{"memory", "redis", "sql", "file"}
	validLevels   = []string{"debug", "info", "warn", "error"}
	validFormats  = []string{"json", "text"}
	validOutputs  = []string{"stdout", "stderr"}
)

// Validate validates server configuration
func (s *ServerConfig) Validate() error {
	var errs []string

	if s.Address == "" {
		errs = append(errs, "address cannot be empty")
	}

	for name, d := range map[string]time.Duration{
		"read_timeout":        s.ReadTimeout,
		"write_timeout":       s.WriteTimeout,
		"idle_timeout":        s.IdleTimeout,
		"read_header_timeout": s.ReadHeaderTimeout,
		"shutdown_timeout":    s.ShutdownTimeout,
	} {
		if d <= 0 {
			errs = append(errs, name+" must be positive")
		}
	}

	if len(errs) > 0 {
		slices.Sort(errs)
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// Validate validates storage configuration
func (s *StorageConfig) Validate() error {
	var errs []string

	if !slices.Contains(validAdapters, s.Adapter) {
		errs = append(errs, fmt.Sprintf("adapter must be one of: %s", strings.Join(validAdapters, ", ")))
	}

	switch s.Adapter {
	case "file":
		if err := s.File.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("file config: %v", err))
		}
	case "redis":
		if s.Redis.Addr == "" {
			errs = append(errs, "redis config: addr cannot be empty")
		}
	case "sql":
		if err := s.SQL.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("sql config: %v", err))
		}
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// Validate validates file storage configuration
func (f *FileConfig) Validate() error {
	if f.Path == "" {
		return errors.New("path cannot be empty")
	}
	return nil
}

// Validate validates logging configuration
func (l *LoggingConfig) Validate() error {
	var errs []string

	if !slices.Contains(validLevels, l.Level) {
		errs = append(errs, fmt.Sprintf("level must be one of: %s", strings.Join(validLevels, ", ")))
	}
	if !slices.Contains(validFormats, l.Format) {
		errs = append(errs, fmt.Sprintf("format must be one of: %s", strings.Join(validFormats, ", ")))
	}
	if !slices.Contains(validOutputs, l.Output) {
		errs = append(errs, fmt.Sprintf("output must be one of: %s", strings.Join(validOutputs, ", ")))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// Validate checks webhook URLs and the NATS subject.
func (i *IntegrationsConfig) Validate() error {
	var errs []string
	for n, raw := range i.Webhooks {
		if err := checkHTTPURL(raw); err != nil {
			errs = append(errs, fmt.Sprintf("webhooks[%d]: %v", n, err))
		}
	}
	if i.NATS.URL != "" && strings.TrimSpace(i.NATS.Subject) == "" {
		errs = append(errs, "nats.subject cannot be empty when nats.url is set")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Validate checks the client API URL and default difficulty. An empty URL
// means offline play.
func (c *ClientConfig) Validate() error {
	var errs []string
	if c.APIURL != "" {
		if err := checkHTTPURL(c.APIURL); err != nil {
			errs = append(errs, fmt.Sprintf("api_url: %v", err))
		}
	}
	if c.Difficulty != "" {
		if _, err := core.ParseDifficulty(c.Difficulty); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if c.Timeout < 0 {
		errs = append(errs, "timeout cannot be negative")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func checkHTTPURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%q must be an http(s) URL", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%q has no host", raw)
	}
	return nil
}
