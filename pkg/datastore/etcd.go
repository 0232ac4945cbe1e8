package datastore

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/akam1o/tna-routegen/pkg/errors"
)

// etcdDatastore implements the Datastore interface using etcd.
//
// Keys:
//
//	<prefix>gnb                 link configuration (JSON)
//	<prefix>artifacts/<name>    rendered artifacts
//	<prefix>audit/<ulid>        audit events (JSON)
type etcdDatastore struct {
	client    *clientv3.Client
	prefix    string
	timeout   time.Duration
	closeOnce sync.Once
}

// NewEtcdDatastore creates a new etcd-backed datastore.
func NewEtcdDatastore(cfg *Config) (Datastore, error) {
	if cfg.Backend != BackendEtcd {
		return nil, fmt.Errorf("invalid backend type: %s (expected %s)", cfg.Backend, BackendEtcd)
	}

	if len(cfg.EtcdEndpoints) == 0 {
		return nil, fmt.Errorf("etcd endpoints cannot be empty")
	}

	prefix := cfg.EtcdPrefix
	if prefix == "" {
		prefix = DefaultEtcdPrefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	timeout := cfg.EtcdTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	etcdCfg := clientv3.Config{
		Endpoints:   cfg.EtcdEndpoints,
		DialTimeout: timeout,
		Username:    cfg.EtcdUsername,
		Password:    cfg.EtcdPassword,
	}

	if cfg.EtcdTLS != nil {
		tlsConfig, err := buildTLSConfig(cfg.EtcdTLS)
		if err != nil {
			return nil, fmt.Errorf("failed to build TLS config: %w", err)
		}
		etcdCfg.TLS = tlsConfig
	}

	client, err := clientv3.New(etcdCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create etcd client: %w", err)
	}

	// Test connection with a simple Get (with timeout)
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if _, err := client.Get(ctx, prefix, clientv3.WithPrefix(), clientv3.WithLimit(1)); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to etcd: %w", err)
	}

	return &etcdDatastore{client: client, prefix: prefix, timeout: timeout}, nil
}

// buildTLSConfig creates a TLS configuration from the provided TLSConfig.
func buildTLSConfig(cfg *TLSConfig) (*tls.Config, error) {
	cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load client cert/key: %w", err)
	}

	caCert, err := os.ReadFile(cfg.CAFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA cert: %w", err)
	}

	caCertPool := x509.NewCertPool()
	if !caCertPool.AppendCertsFromPEM(caCert) {
		return nil, fmt.Errorf("failed to parse CA cert")
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		RootCAs:      caCertPool,
		MinVersion:   tls.VersionTLS12,
	}, nil
}

// Close closes the etcd client connection.
// This method is idempotent and safe to call multiple times.
func (ds *etcdDatastore) Close() error {
	var closeErr error
	ds.closeOnce.Do(func() {
		if ds.client != nil {
			closeErr = ds.client.Close()
		}
	})
	return closeErr
}

func (ds *etcdDatastore) GetLinkConfig(ctx context.Context) (*LinkRecord, error) {
	ctx, cancel := ds.withTimeout(ctx)
	defer cancel()

	resp, err := ds.client.Get(ctx, ds.key("gnb"))
	if err != nil {
		return nil, errors.StoreError("get link configuration", err)
	}
	if len(resp.Kvs) == 0 {
		return nil, errors.NotFound("gNB link configuration")
	}

	var rec LinkRecord
	if err := json.Unmarshal(resp.Kvs[0].Value, &rec); err != nil {
		return nil, errors.StoreError("decode link configuration", err)
	}
	return &rec, nil
}

func (ds *etcdDatastore) PutLinkConfig(ctx context.Context, rec *LinkRecord) error {
	ctx, cancel := ds.withTimeout(ctx)
	defer cancel()

	raw, err := json.Marshal(rec)
	if err != nil {
		return errors.StoreError("marshal link configuration", err)
	}
	if _, err := ds.client.Put(ctx, ds.key("gnb"), string(raw)); err != nil {
		return errors.StoreError("put link configuration", err)
	}
	return nil
}

func (ds *etcdDatastore) DeleteLinkConfig(ctx context.Context) error {
	ctx, cancel := ds.withTimeout(ctx)
	defer cancel()

	resp, err := ds.client.Delete(ctx, ds.key("gnb"))
	if err != nil {
		return errors.StoreError("delete link configuration", err)
	}
	if resp.Deleted == 0 {
		return errors.NotFound("gNB link configuration")
	}
	return nil
}

func (ds *etcdDatastore) PutArtifact(ctx context.Context, name string, content string) (*WriteResult, error) {
	if err := validateArtifactName(name); err != nil {
		return nil, err
	}

	ctx, cancel := ds.withTimeout(ctx)
	defer cancel()

	resp, err := ds.client.Put(ctx, ds.key("artifacts", name), content, clientv3.WithPrevKV())
	if err != nil {
		return nil, errors.StoreError("write artifact "+name, err)
	}

	result := &WriteResult{}
	if resp.PrevKv != nil {
		result.Replaced = true
		result.PreviousContent = string(resp.PrevKv.Value)
	}
	return result, nil
}

func (ds *etcdDatastore) GetArtifact(ctx context.Context, name string) (*Artifact, error) {
	ctx, cancel := ds.withTimeout(ctx)
	defer cancel()

	resp, err := ds.client.Get(ctx, ds.key("artifacts", name))
	if err != nil {
		return nil, errors.StoreError("read artifact "+name, err)
	}
	if len(resp.Kvs) == 0 {
		return nil, errors.NotFound("Artifact " + name)
	}

	// etcd keeps revisions, not wall-clock times
	return &Artifact{Name: name, Content: string(resp.Kvs[0].Value)}, nil
}

func (ds *etcdDatastore) ListArtifacts(ctx context.Context, pattern string) ([]string, error) {
	ctx, cancel := ds.withTimeout(ctx)
	defer cancel()

	prefix := ds.key("artifacts", "")
	resp, err := ds.client.Get(ctx, prefix, clientv3.WithPrefix(), clientv3.WithKeysOnly())
	if err != nil {
		return nil, errors.StoreError("list artifacts", err)
	}

	names := make([]string, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		names = append(names, strings.TrimPrefix(string(kv.Key), prefix))
	}
	return filterNames(names, pattern)
}

// LogAuditEvent logs an audit event to etcd.
// Events are stored with ULID keys, so key order is time order.
func (ds *etcdDatastore) LogAuditEvent(ctx context.Context, event *AuditEvent) error {
	ctx, cancel := ds.withTimeout(ctx)
	defer cancel()

	event.Key = generateULID()
	event.ID = 0
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	eventJSON, err := json.Marshal(event)
	if err != nil {
		return errors.StoreError("marshal audit event", err)
	}

	if _, err := ds.client.Put(ctx, ds.key("audit", event.Key), string(eventJSON)); err != nil {
		return errors.StoreError("log audit event", err)
	}
	return nil
}

// ListAuditEvents returns the newest events first.
func (ds *etcdDatastore) ListAuditEvents(ctx context.Context, limit int) ([]*AuditEvent, error) {
	ctx, cancel := ds.withTimeout(ctx)
	defer cancel()

	opts := []clientv3.OpOption{
		clientv3.WithPrefix(),
		clientv3.WithSort(clientv3.SortByKey, clientv3.SortDescend),
	}
	if limit > 0 {
		opts = append(opts, clientv3.WithLimit(int64(limit)))
	}

	resp, err := ds.client.Get(ctx, ds.key("audit", ""), opts...)
	if err != nil {
		return nil, errors.StoreError("list audit events", err)
	}

	events := make([]*AuditEvent, 0, len(resp.Kvs))
	for _, kv := range resp.Kvs {
		var ev AuditEvent
		if err := json.Unmarshal(kv.Value, &ev); err != nil {
			// Skip malformed entries
			continue
		}
		events = append(events, &ev)
	}
	return events, nil
}

// key constructs a full etcd key with the configured prefix.
func (ds *etcdDatastore) key(parts ...string) string {
	return ds.prefix + strings.Join(parts, "/")
}

// withTimeout creates a context with the default timeout if no deadline is set.
func (ds *etcdDatastore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, ds.timeout)
}

var (
	ulidMu      sync.Mutex
	ulidEntropy = ulid.Monotonic(rand.Reader, 0)
)

// generateULID generates a ULID (Universally Unique Lexicographically Sortable Identifier).
// Example: 01ARYZ6S41TSV4RRFFQ69G5FAV
func generateULID() string {
	ulidMu.Lock()
	defer ulidMu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), ulidEntropy).String()
}
