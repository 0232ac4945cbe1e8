// Package datastore persists everything tna-routegen keeps between runs:
// the one-time gNB link record, the rendered descriptor artifacts and an
// audit trail of generated routes.
//
// The datastore supports multiple backend implementations:
//   - file: a directory tree in the requests/ layout operators already use
//   - SQLite: a single database file for single-node deployments
//   - etcd: shared storage when several operators generate routes for one switch
package datastore

import (
	"context"
	"time"
)

// Datastore is the main interface for persisted state.
//
// All operations accept context.Context for timeout/cancellation support.
type Datastore interface {
	// gNB link configuration record
	GetLinkConfig(ctx context.Context) (*LinkRecord, error)
	PutLinkConfig(ctx context.Context, rec *LinkRecord) error
	DeleteLinkConfig(ctx context.Context) error

	// Rendered descriptor artifacts
	PutArtifact(ctx context.Context, name string, content string) (*WriteResult, error)
	GetArtifact(ctx context.Context, name string) (*Artifact, error)
	ListArtifacts(ctx context.Context, pattern string) ([]string, error)

	// Audit logging
	LogAuditEvent(ctx context.Context, event *AuditEvent) error
	ListAuditEvents(ctx context.Context, limit int) ([]*AuditEvent, error)

	// Close the datastore
	Close() error
}

// LinkRecord is the persisted form of the gNB link configuration.
// Field names match the gnb.json file written by earlier versions of the tool.
type LinkRecord struct {
	Port      int    `json:"port"`
	GnbMAC    string `json:"gnb_mac"`
	SwitchMAC string `json:"switch_mac"`
	GnbIP     string `json:"gnb_ip"`
}

// Artifact is one rendered descriptor document.
type Artifact struct {
	Name      string    // e.g. "filtering-uplink-office.json"
	Content   string    // Rendered template body
	UpdatedAt time.Time // Last write time
}

// WriteResult describes the effect of PutArtifact.
type WriteResult struct {
	Replaced        bool   // An artifact with the same name already existed
	PreviousContent string // Content before the write (empty if not replaced)
}

// AuditEvent represents a logged event for audit trail.
type AuditEvent struct {
	ID        int64     `json:"id,omitempty"`  // Auto-increment ID for SQLite (0 elsewhere)
	Key       string    `json:"key,omitempty"` // ULID key for etcd and file backends
	Timestamp time.Time `json:"timestamp"`
	SessionID string    `json:"session_id,omitempty"`
	Action    string    `json:"action"`
	Result    string    `json:"result"`
	ErrorCode string    `json:"error_code,omitempty"`
	Details   string    `json:"details,omitempty"` // JSON document
}

// BackendType represents the type of datastore backend.
type BackendType string

const (
	// BackendFile stores records as files under a root directory.
	BackendFile BackendType = "file"

	// BackendSQLite is a file-based SQLite backend (single-node).
	BackendSQLite BackendType = "sqlite"

	// BackendEtcd is a distributed etcd backend.
	BackendEtcd BackendType = "etcd"
)

// Config contains configuration for datastore initialization.
type Config struct {
	// Backend type (file, sqlite or etcd)
	Backend BackendType

	// file-specific configuration
	FileRoot string // Root directory (default: ./requests)

	// SQLite-specific configuration
	SQLitePath string // Path to SQLite database file (default: ./requests/routegen.db)

	// etcd-specific configuration
	EtcdEndpoints []string      // etcd cluster endpoints (e.g., ["localhost:2379"])
	EtcdPrefix    string        // Key prefix (default: /tna-routegen/)
	EtcdTimeout   time.Duration // Connection timeout (default: 5s)
	EtcdUsername  string        // Optional username for authentication
	EtcdPassword  string        // Optional password for authentication
	EtcdTLS       *TLSConfig    // Optional TLS configuration
}

// TLSConfig contains TLS configuration for etcd connections.
type TLSConfig struct {
	CertFile string // Path to client certificate file
	KeyFile  string // Path to client key file
	CAFile   string // Path to CA certificate file
}

// Defaults used when Config leaves a location empty.
const (
	DefaultFileRoot   = "requests"
	DefaultSQLitePath = "requests/routegen.db"
	DefaultEtcdPrefix = "/tna-routegen/"
)
