package audit

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/akam1o/tna-routegen/pkg/datastore"
	"github.com/akam1o/tna-routegen/pkg/routegen"
)

// mockStore records audit events in memory
type mockStore struct {
	events []*datastore.AuditEvent
	err    error
}

func (m *mockStore) LogAuditEvent(ctx context.Context, event *datastore.AuditEvent) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

func TestNewLogger(t *testing.T) {
	store := &mockStore{}
	logger := NewLogger(store, nil)

	if logger == nil {
		t.Fatal("NewLogger returned nil")
	}
	if logger.store != store {
		t.Error("Store not set correctly")
	}
	if len(logger.SessionID()) != 36 {
		t.Errorf("Expected a UUID session id, got %q", logger.SessionID())
	}
	if NewLogger(store, nil).SessionID() == logger.SessionID() {
		t.Error("Session ids should differ between loggers")
	}
}

func TestRouteGeneratedStandard(t *testing.T) {
	store := &mockStore{}
	logger := NewLogger(store, nil)

	set := &routegen.DescriptorSet{
		Topology:   routegen.TopologyStandard,
		Route:      "office",
		UplinkID:   4,
		DownlinkID: 5,
		Documents: []routegen.Document{
			{Name: "filtering-uplink-office.json"},
			{Name: "next-downlink-office.json"},
		},
	}

	if err := logger.RouteGenerated(context.Background(), set); err != nil {
		t.Fatalf("RouteGenerated failed: %v", err)
	}

	if len(store.events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(store.events))
	}

	event := store.events[0]
	if event.Action != string(EventRouteGenerated) {
		t.Errorf("Expected action '%s', got '%s'", EventRouteGenerated, event.Action)
	}
	if event.Result != string(ResultSuccess) {
		t.Errorf("Expected result '%s', got '%s'", ResultSuccess, event.Result)
	}
	if event.SessionID != logger.SessionID() {
		t.Errorf("Expected session ID '%s', got '%s'", logger.SessionID(), event.SessionID)
	}
	if event.Timestamp.IsZero() {
		t.Error("Timestamp should be set")
	}

	var details map[string]interface{}
	if err := json.Unmarshal([]byte(event.Details), &details); err != nil {
		t.Fatalf("Details are not JSON: %v", err)
	}
	if details["route"] != "office" {
		t.Errorf("Expected route 'office', got %v", details["route"])
	}
	if details["uplink_id"] != float64(4) || details["downlink_id"] != float64(5) {
		t.Errorf("Unexpected next hop ids: %v / %v", details["uplink_id"], details["downlink_id"])
	}
	if !strings.Contains(event.Details, "next-downlink-office.json") {
		t.Error("Details should list artifact names")
	}
}

func TestRouteGeneratedINTHasNoDownlink(t *testing.T) {
	store := &mockStore{}
	logger := NewLogger(store, nil)

	set := &routegen.DescriptorSet{Topology: routegen.TopologyINT, Route: "int", UplinkID: 1}
	if err := logger.RouteGenerated(context.Background(), set); err != nil {
		t.Fatalf("RouteGenerated failed: %v", err)
	}

	if strings.Contains(store.events[0].Details, "downlink_id") {
		t.Error("INT routes should not report a downlink id")
	}
}

func TestRouteFailed(t *testing.T) {
	store := &mockStore{}
	logger := NewLogger(store, nil)

	err := logger.RouteFailed(context.Background(), "office", "TEMPLATE_ERROR", errors.New("placeholder $4 has no argument"))
	if err != nil {
		t.Fatalf("RouteFailed failed: %v", err)
	}

	event := store.events[0]
	if event.Result != string(ResultFailure) {
		t.Errorf("Expected result '%s', got '%s'", ResultFailure, event.Result)
	}
	if event.ErrorCode != "TEMPLATE_ERROR" {
		t.Errorf("Expected error code 'TEMPLATE_ERROR', got '%s'", event.ErrorCode)
	}
	if !strings.Contains(event.Details, "placeholder $4") {
		t.Error("Details should contain the error message")
	}
}

func TestLinkConfigEvents(t *testing.T) {
	store := &mockStore{}
	logger := NewLogger(store, nil)
	ctx := context.Background()

	rec := &datastore.LinkRecord{Port: 23, GnbMAC: "aa:bb:cc:dd:ee:ff", SwitchMAC: "00:11:22:33:44:55", GnbIP: "10.0.0.1/32"}
	if err := logger.LinkConfigCreated(ctx, rec); err != nil {
		t.Fatalf("LinkConfigCreated failed: %v", err)
	}
	if err := logger.LinkConfigReset(ctx); err != nil {
		t.Fatalf("LinkConfigReset failed: %v", err)
	}

	if len(store.events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(store.events))
	}
	if store.events[0].Action != string(EventLinkConfigCreated) {
		t.Errorf("Expected action '%s', got '%s'", EventLinkConfigCreated, store.events[0].Action)
	}
	if !strings.Contains(store.events[0].Details, "10.0.0.1/32") {
		t.Error("Details should contain the gNB IP")
	}
	if store.events[1].Action != string(EventLinkConfigReset) {
		t.Errorf("Expected action '%s', got '%s'", EventLinkConfigReset, store.events[1].Action)
	}
}

func TestArtifactOverwritten(t *testing.T) {
	store := &mockStore{}
	logger := NewLogger(store, nil)

	diff := datastore.CompareArtifacts("a\nb\n", "a\nc\n")
	if err := logger.ArtifactOverwritten(context.Background(), "forward-uplink-office.json", diff); err != nil {
		t.Fatalf("ArtifactOverwritten failed: %v", err)
	}
	if !strings.Contains(store.events[0].Details, `"lines_added":1`) {
		t.Errorf("Unexpected details: %s", store.events[0].Details)
	}
}

func TestLogPropagatesStoreError(t *testing.T) {
	boom := errors.New("disk full")
	logger := NewLogger(&mockStore{err: boom}, nil)

	err := logger.SessionCreated(context.Background(), "file")
	if !errors.Is(err, boom) {
		t.Errorf("Expected wrapped store error, got %v", err)
	}
}

func TestAuditWithFileDatastore(t *testing.T) {
	ds, err := datastore.NewDatastore(&datastore.Config{Backend: datastore.BackendFile, FileRoot: t.TempDir()})
	if err != nil {
		t.Fatalf("NewDatastore failed: %v", err)
	}
	defer ds.Close()

	logger := NewLogger(ds, nil)
	ctx := context.Background()
	if err := logger.SessionCreated(ctx, "file"); err != nil {
		t.Fatalf("SessionCreated failed: %v", err)
	}
	if err := logger.SessionTerminated(ctx, 2, "operator exit"); err != nil {
		t.Fatalf("SessionTerminated failed: %v", err)
	}

	events, err := ds.ListAuditEvents(ctx, 0)
	if err != nil {
		t.Fatalf("ListAuditEvents failed: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("Expected 2 events, got %d", len(events))
	}
	if events[0].Action != string(EventSessionTerminated) {
		t.Errorf("Expected newest event '%s', got '%s'", EventSessionTerminated, events[0].Action)
	}
	if events[0].Key == "" {
		t.Error("File backend should assign ULID keys")
	}
}
