package datastore

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/akam1o/tna-routegen/pkg/errors"
)

const (
	linkConfigFile = "gnb.json"
	artifactDir    = "saved"
	auditLogFile   = "audit.log"

	fileDirMode  = 0755
	fileDataMode = 0644
)

// fileDatastore implements the Datastore interface on a plain directory:
//
//	<root>/gnb.json          link configuration
//	<root>/saved/<name>      rendered artifacts
//	<root>/audit.log         one JSON audit event per line
type fileDatastore struct {
	root string
	mu   sync.Mutex
}

// NewFileDatastore creates a directory-backed datastore.
func NewFileDatastore(cfg *Config) (Datastore, error) {
	if cfg.Backend != BackendFile && cfg.Backend != "" {
		return nil, fmt.Errorf("invalid backend type: %s (expected %s)", cfg.Backend, BackendFile)
	}

	root := cfg.FileRoot
	if root == "" {
		root = DefaultFileRoot
	}

	if err := os.MkdirAll(filepath.Join(root, artifactDir), fileDirMode); err != nil {
		return nil, errors.StoreError("create "+root, err)
	}

	return &fileDatastore{root: root}, nil
}

func (ds *fileDatastore) Close() error {
	return nil
}

func (ds *fileDatastore) GetLinkConfig(ctx context.Context) (*LinkRecord, error) {
	path := filepath.Join(ds.root, linkConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("gNB link configuration")
		}
		return nil, errors.StoreError("read "+path, err)
	}

	var rec LinkRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.ConfigParseError(path, err)
	}
	return &rec, nil
}

func (ds *fileDatastore) PutLinkConfig(ctx context.Context, rec *LinkRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errors.StoreError("marshal link configuration", err)
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()
	return writeFileAtomic(filepath.Join(ds.root, linkConfigFile), data)
}

func (ds *fileDatastore) DeleteLinkConfig(ctx context.Context) error {
	path := filepath.Join(ds.root, linkConfigFile)
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return errors.NotFound("gNB link configuration")
		}
		return errors.StoreError("remove "+path, err)
	}
	return nil
}

func (ds *fileDatastore) PutArtifact(ctx context.Context, name string, content string) (*WriteResult, error) {
	if err := validateArtifactName(name); err != nil {
		return nil, err
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()

	path := ds.artifactPath(name)
	result := &WriteResult{}
	prev, err := os.ReadFile(path)
	switch {
	case err == nil:
		result.Replaced = true
		result.PreviousContent = string(prev)
	case !os.IsNotExist(err):
		return nil, errors.StoreError("read "+path, err)
	}

	if err := writeFileAtomic(path, []byte(content)); err != nil {
		return nil, err
	}
	return result, nil
}

func (ds *fileDatastore) GetArtifact(ctx context.Context, name string) (*Artifact, error) {
	if err := validateArtifactName(name); err != nil {
		return nil, err
	}

	path := ds.artifactPath(name)
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("Artifact " + name)
		}
		return nil, errors.StoreError("stat "+path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.StoreError("read "+path, err)
	}

	return &Artifact{Name: name, Content: string(data), UpdatedAt: info.ModTime()}, nil
}

func (ds *fileDatastore) ListArtifacts(ctx context.Context, pattern string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(ds.root, artifactDir))
	if err != nil {
		if os.IsNotExist(err) {
			return filterNames(nil, pattern)
		}
		return nil, errors.StoreError("list artifacts", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Type().IsRegular() {
			names = append(names, e.Name())
		}
	}
	return filterNames(names, pattern)
}

func (ds *fileDatastore) LogAuditEvent(ctx context.Context, event *AuditEvent) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.ID = 0
	event.Key = generateULID()

	line, err := json.Marshal(event)
	if err != nil {
		return errors.StoreError("marshal audit event", err)
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()

	path := filepath.Join(ds.root, auditLogFile)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, fileDataMode)
	if err != nil {
		return errors.StoreError("open "+path, err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return errors.StoreError("append "+path, err)
	}
	return nil
}

// ListAuditEvents returns the newest events first. Malformed lines are skipped.
func (ds *fileDatastore) ListAuditEvents(ctx context.Context, limit int) ([]*AuditEvent, error) {
	path := filepath.Join(ds.root, auditLogFile)
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.StoreError("open "+path, err)
	}
	defer f.Close()

	var events []*AuditEvent
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var ev AuditEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil {
			continue
		}
		events = append(events, &ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.StoreError("read "+path, err)
	}

	return newestFirst(events, limit), nil
}

func (ds *fileDatastore) artifactPath(name string) string {
	return filepath.Join(ds.root, artifactDir, name)
}

// newestFirst reverses append-ordered events and truncates to limit (<= 0 means all).
func newestFirst(events []*AuditEvent, limit int) []*AuditEvent {
	out := make([]*AuditEvent, 0, len(events))
	for i := len(events) - 1; i >= 0; i-- {
		out = append(out, events[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// writeFileAtomic writes data to a temp file in the target directory,
// fsyncs it, renames it over path and fsyncs the directory.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, fileDirMode); err != nil {
		return errors.StoreError("create "+dir, err)
	}

	tempFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.StoreError("create temp file in "+dir, err)
	}
	tempPath := tempFile.Name()

	cleanupTemp := func() {
		_ = tempFile.Close()
		if err := os.Remove(tempPath); err != nil && !os.IsNotExist(err) {
			_ = err
		}
	}

	if err := tempFile.Chmod(fileDataMode); err != nil {
		cleanupTemp()
		return errors.StoreError("chmod "+tempPath, err)
	}

	if _, err := tempFile.Write(data); err != nil {
		cleanupTemp()
		return errors.StoreError("write "+tempPath, err)
	}

	if err := tempFile.Sync(); err != nil {
		cleanupTemp()
		return errors.StoreError("fsync "+tempPath, err)
	}

	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tempPath)
		return errors.StoreError("close "+tempPath, err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return errors.StoreError("rename "+tempPath, err)
	}

	dirFile, err := os.Open(dir)
	if err != nil {
		return errors.StoreError("open "+dir, err)
	}
	defer dirFile.Close()

	if err := dirFile.Sync(); err != nil {
		return errors.StoreError("fsync "+dir, err)
	}
	return nil
}
