package config

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/asaskevich/govalidator"
	"gopkg.in/yaml.v3"

	"github.com/akam1o/tna-routegen/pkg/errors"
	"github.com/akam1o/tna-routegen/pkg/routeid"
)

// Load reads the configuration file at path on top of Default().
// An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(
			err,
			errors.ErrCodeConfigPermission,
			fmt.Sprintf("Failed to read configuration: %s", path),
			"Permission denied or file is not readable",
			"Check file permissions with 'ls -l' and ensure the file is readable",
		)
	}

	// Parse YAML with strict mode to detect unknown fields (typo detection)
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.ConfigParseError(path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the struct tags and the rules that span fields.
func (c *Config) Validate() error {
	if _, err := govalidator.ValidateStruct(c); err != nil {
		return errors.Wrap(
			err,
			errors.ErrCodeConfigValidation,
			"Configuration validation failed",
			err.Error(),
			"Review the error details and fix the configuration file",
		)
	}

	if _, err := routeid.ParseMode(c.Allocator.Mode); err != nil {
		return validationError(err.Error(), "Set allocator.mode to recompute or once")
	}

	switch c.Store.Backend {
	case "etcd":
		if c.Store.Etcd == nil || len(c.Store.Etcd.Endpoints) == 0 {
			return validationError("store.etcd.endpoints is empty", "List at least one etcd endpoint, e.g. localhost:2379")
		}
		for _, ep := range c.Store.Etcd.Endpoints {
			if !govalidator.IsDialString(ep) && !govalidator.IsURL(ep) {
				return validationError(fmt.Sprintf("store.etcd.endpoints: %q is not host:port or a URL", ep), "Fix the endpoint address")
			}
		}
		if e := c.Store.Etcd; (e.CertFile != "" || e.KeyFile != "" || e.CAFile != "") &&
			(e.CertFile == "" || e.KeyFile == "" || e.CAFile == "") {
			return validationError("store.etcd TLS needs certFile, keyFile and caFile together", "Set all three TLS files or none")
		}
	case "sqlite":
		if c.Store.SQLitePath == "" {
			return validationError("store.sqlitePath is empty", "Set store.sqlitePath or use the file backend")
		}
	case "file":
		if c.Store.Root == "" {
			return validationError("store.root is empty", "Set store.root, e.g. requests")
		}
	}

	return nil
}

func validationError(cause, action string) error {
	return errors.New(errors.ErrCodeConfigValidation, "Configuration validation failed", cause, action)
}
