// Package config loads the tna-routegen configuration file.
//
// Every setting has a default, so the file is optional. Values given on the
// command line override the file.
package config

import (
	"time"

	"github.com/davecgh/go-spew/spew"

	"github.com/akam1o/tna-routegen/pkg/datastore"
	"github.com/akam1o/tna-routegen/pkg/logger"
)

// Config is the complete tool configuration
type Config struct {
	Store     *Store     `yaml:"store"     valid:"required"`
	Templates *Templates `yaml:"templates" valid:"required"`
	Allocator *Allocator `yaml:"allocator" valid:"required"`
	Logger    *Logger    `yaml:"logger"    valid:"required"`
	Metrics   *Metrics   `yaml:"metrics"   valid:"optional"`
	Prompt    *Prompt    `yaml:"prompt"    valid:"optional"`
}

// Store selects and configures the datastore backend
type Store struct {
	Backend    string `yaml:"backend"    valid:"required,in(file|sqlite|etcd)"`
	Root       string `yaml:"root"       valid:"optional"`
	SQLitePath string `yaml:"sqlitePath" valid:"optional"`
	Etcd       *Etcd  `yaml:"etcd"       valid:"optional"`
}

// Etcd configures the etcd backend
type Etcd struct {
	Endpoints    []string      `yaml:"endpoints"    valid:"optional"`
	Prefix       string        `yaml:"prefix"       valid:"optional"`
	Timeout      time.Duration `yaml:"timeout"      valid:"optional"`
	Username     string        `yaml:"username"     valid:"optional"`
	Password     string        `yaml:"password"     valid:"optional"`
	PasswordFile string        `yaml:"passwordFile" valid:"optional"` // must not be readable by group or others
	CertFile     string        `yaml:"certFile"     valid:"optional"`
	KeyFile      string        `yaml:"keyFile"      valid:"optional"`
	CAFile       string        `yaml:"caFile"       valid:"optional"`
}

// Templates points at an optional directory of template overrides
type Templates struct {
	Dir string `yaml:"dir" valid:"optional"`
}

// Allocator configures next-hop id allocation
type Allocator struct {
	Mode string `yaml:"mode" valid:"required,in(recompute|once)"`
}

// Logger configures logging
type Logger struct {
	Level        string `yaml:"level"        valid:"required,in(trace|debug|info|warn|warning|error|fatal|panic)"`
	ReportCaller bool   `yaml:"reportCaller" valid:"optional"`
}

// Metrics configures the node-exporter textfile
type Metrics struct {
	Textfile string `yaml:"textfile" valid:"optional"`
}

// Prompt configures the interactive prompt
type Prompt struct {
	HistoryFile string `yaml:"historyFile" valid:"optional"`
}

// Default returns the configuration used when no file is given. It keeps the
// requests/ layout of earlier versions of the tool.
func Default() *Config {
	return &Config{
		Store: &Store{
			Backend:    string(datastore.BackendFile),
			Root:       datastore.DefaultFileRoot,
			SQLitePath: datastore.DefaultSQLitePath,
			Etcd: &Etcd{
				Prefix:  datastore.DefaultEtcdPrefix,
				Timeout: 5 * time.Second,
			},
		},
		Templates: &Templates{Dir: "requests/model"},
		Allocator: &Allocator{Mode: "recompute"},
		Logger:    &Logger{Level: "info"},
		Metrics:   &Metrics{},
		Prompt:    &Prompt{},
	}
}

// DatastoreConfig converts the store section for datastore.NewDatastore.
func (c *Config) DatastoreConfig() *datastore.Config {
	cfg := &datastore.Config{
		Backend:    datastore.BackendType(c.Store.Backend),
		FileRoot:   c.Store.Root,
		SQLitePath: c.Store.SQLitePath,
	}

	if e := c.Store.Etcd; e != nil {
		cfg.EtcdEndpoints = e.Endpoints
		cfg.EtcdPrefix = e.Prefix
		cfg.EtcdTimeout = e.Timeout
		cfg.EtcdUsername = e.Username
		cfg.EtcdPassword = e.Password
		if e.CertFile != "" || e.KeyFile != "" || e.CAFile != "" {
			cfg.EtcdTLS = &datastore.TLSConfig{CertFile: e.CertFile, KeyFile: e.KeyFile, CAFile: e.CAFile}
		}
	}

	return cfg
}

// Print dumps the effective configuration at debug level.
func (c *Config) Print(log *logger.Logger) {
	cfg := spew.ConfigState{Indent: "\t", DisablePointerAddresses: true}
	log.Debugf("==================================================")
	log.Debugf("%s", cfg.Sdump(c.redacted()))
	log.Debugf("==================================================")
}

// redacted returns a copy safe to print
func (c *Config) redacted() *Config {
	cp := *c
	if c.Store != nil && c.Store.Etcd != nil && c.Store.Etcd.Password != "" {
		store := *c.Store
		etcd := *c.Store.Etcd
		etcd.Password = "********"
		store.Etcd = &etcd
		cp.Store = &store
	}
	return &cp
}
