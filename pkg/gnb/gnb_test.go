package gnb

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akam1o/tna-routegen/pkg/datastore"
	"github.com/akam1o/tna-routegen/pkg/errors"
	"github.com/akam1o/tna-routegen/pkg/prompt"
)

type memStore struct {
	rec  *datastore.LinkRecord
	puts int
}

func (m *memStore) GetLinkConfig(ctx context.Context) (*datastore.LinkRecord, error) {
	if m.rec == nil {
		return nil, errors.NotFound("gNB link configuration")
	}
	cp := *m.rec
	return &cp, nil
}

func (m *memStore) PutLinkConfig(ctx context.Context, rec *datastore.LinkRecord) error {
	cp := *rec
	m.rec = &cp
	m.puts++
	return nil
}

func (m *memStore) DeleteLinkConfig(ctx context.Context) error {
	if m.rec == nil {
		return errors.NotFound("gNB link configuration")
	}
	m.rec = nil
	return nil
}

type recorder struct {
	created []*datastore.LinkRecord
	resets  int
}

func (r *recorder) LinkConfigCreated(ctx context.Context, rec *datastore.LinkRecord) error {
	r.created = append(r.created, rec)
	return nil
}

func (r *recorder) LinkConfigReset(ctx context.Context) error {
	r.resets++
	return nil
}

func script(lines ...string) (*prompt.LinePrompter, *bytes.Buffer) {
	out := &bytes.Buffer{}
	return prompt.NewLinePrompter(strings.NewReader(strings.Join(lines, "\n")+"\n"), out), out
}

func TestResolveCollectsAndPersists(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	rec := &recorder{}
	var rejected []string

	p, out := script(
		"34",                // rejected: channel 4
		"23",                // port 2, channel 3
		"AA:BB:CC:DD:EE:FF", // gNB MAC
		"0:1:2:3:4:5",       // switch MAC
		"10.0.0.1/32",       // gNB IP
	)
	r := NewResolver(store, p, nil,
		WithRecorder(rec),
		WithRetryHook(func(field string, err error) { rejected = append(rejected, field) }))

	cfg, err := r.Resolve(ctx)
	require.NoError(t, err)

	assert.Equal(t, 23, cfg.Port.ID)
	assert.Equal(t, "2:3", cfg.Port.Human())
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", cfg.GnbMAC.String())
	assert.Equal(t, "00:01:02:03:04:05", cfg.SwitchMAC.String())
	assert.Equal(t, "10.0.0.1/32", cfg.GnbIP.String())

	assert.Equal(t, 1, store.puts)
	assert.Equal(t, &datastore.LinkRecord{Port: 23, GnbMAC: "aa:bb:cc:dd:ee:ff", SwitchMAC: "00:01:02:03:04:05", GnbIP: "10.0.0.1/32"}, store.rec)
	assert.Len(t, rec.created, 1)
	assert.Equal(t, []string{"port"}, rejected)

	assert.Contains(t, out.String(), "No config file was found for the gnb")
	assert.Contains(t, out.String(), "Please enter a valid port number:")
}

func TestResolveReadsStoredRecordWithoutPrompting(t *testing.T) {
	ctx := context.Background()
	store := &memStore{rec: &datastore.LinkRecord{Port: 10, GnbMAC: "aa:aa:aa:aa:aa:aa", SwitchMAC: "bb:bb:bb:bb:bb:bb", GnbIP: "192.168.1.2/32"}}
	p, out := script()

	cfg, err := NewResolver(store, p, nil).Resolve(ctx)
	require.NoError(t, err)
	assert.Equal(t, "1:0", cfg.Port.Human())
	assert.Equal(t, 0, store.puts)
	assert.Empty(t, out.String())
}

func TestResolveAbortPersistsNothing(t *testing.T) {
	ctx := context.Background()
	store := &memStore{}
	p, _ := script("23", "aa:bb:cc:dd:ee:ff", "")

	_, err := NewResolver(store, p, nil).Resolve(ctx)
	assert.ErrorIs(t, err, prompt.ErrAbort)
	assert.Nil(t, store.rec)
	assert.Equal(t, 0, store.puts)
}

func TestResolveRejectsInvalidStoredRecord(t *testing.T) {
	ctx := context.Background()
	store := &memStore{rec: &datastore.LinkRecord{Port: 34, GnbMAC: "aa:aa:aa:aa:aa:aa", SwitchMAC: "bb:bb:bb:bb:bb:bb", GnbIP: "10.0.0.1/32"}}

	_, err := NewResolver(store, nil, nil).Resolve(ctx)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeConfigValidation))
}

func TestResolveWithoutPrompterReportsNotFound(t *testing.T) {
	_, err := NewResolver(&memStore{}, nil, nil).Resolve(context.Background())
	assert.True(t, datastore.IsNotFound(err))
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	store := &memStore{rec: &datastore.LinkRecord{Port: 10, GnbMAC: "aa:aa:aa:aa:aa:aa", SwitchMAC: "bb:bb:bb:bb:bb:bb", GnbIP: "192.168.1.2/32"}}
	rec := &recorder{}
	r := NewResolver(store, nil, nil, WithRecorder(rec))

	require.NoError(t, r.Reset(ctx))
	assert.Nil(t, store.rec)
	assert.Equal(t, 1, rec.resets)

	assert.True(t, datastore.IsNotFound(r.Reset(ctx)))
	assert.Equal(t, 1, rec.resets)
}

func TestSummary(t *testing.T) {
	cfg, err := FromRecord(&datastore.LinkRecord{Port: 23, GnbMAC: "aa:bb:cc:dd:ee:ff", SwitchMAC: "00:11:22:33:44:55", GnbIP: "10.0.0.1/32"})
	require.NoError(t, err)

	s := cfg.Summary()
	assert.Contains(t, s, "GNB connected to port 2:3.")
	assert.Contains(t, s, "gnb:aa:bb:cc:dd:ee:ff switch:00:11:22:33:44:55")
	assert.Contains(t, s, "IP address used by the gnb: 10.0.0.1/32")
}
