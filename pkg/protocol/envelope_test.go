package protocol

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foxmcp/foxmcp/pkg/errors"
)

func TestNewRequest(t *testing.T) {
	t.Parallel()

	env, err := NewRequest(ActionTabsList, nil)
	require.NoError(t, err)

	assert.NotEmpty(t, env.ID)
	assert.Equal(t, TypeRequest, env.Type)
	assert.Equal(t, "tabs.list", env.Action)
	assert.NotNil(t, env.Data)

	ts, err := time.Parse(time.RFC3339, env.Timestamp)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), ts, 5*time.Second)
}

func TestNewRequestMintsUniqueIDs(t *testing.T) {
	t.Parallel()

	seen := make(map[string]struct{})
	for range 100 {
		env, err := NewRequest(ActionPing, nil)
		require.NoError(t, err)
		_, dup := seen[env.ID]
		require.False(t, dup, "duplicate request id %s", env.ID)
		seen[env.ID] = struct{}{}
	}
}

func TestNewRequestRejectsUnknownAction(t *testing.T) {
	t.Parallel()

	_, err := NewRequest("tabs.destroy_all", nil)
	require.Error(t, err)
	assert.True(t, errors.IsProtocol(err))
}

func TestEnvelopeRoundTrip(t *testing.T) {
	t.Parallel()

	original := &Envelope{
		ID:     "req-1",
		Type:   TypeRequest,
		Action: ActionHistoryQuery,
		Data: map[string]any{
			"query":      "golang",
			"maxResults": float64(50),
		},
		Timestamp: "2026-08-24T10:00:00Z",
	}

	raw, err := original.Marshal()
	require.NoError(t, err)

	parsed, err := ParseEnvelope(raw)
	require.NoError(t, err)
	assert.Equal(t, original, parsed)
}

func TestParseEnvelopeRejections(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
	}{
		{"invalid json", `{"id": "x",`},
		{"missing id", `{"type":"response","action":"tabs.list","data":{}}`},
		{"empty id", `{"id":"","type":"response","action":"tabs.list","data":{}}`},
		{"unknown type", `{"id":"1","type":"notification","action":"tabs.list","data":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseEnvelope([]byte(tt.raw))
			require.Error(t, err)
			assert.True(t, errors.IsProtocol(err))
		})
	}
}

func TestParseEnvelopeDefaultsData(t *testing.T) {
	t.Parallel()

	env, err := ParseEnvelope([]byte(`{"id":"1","type":"response","action":"ping"}`))
	require.NoError(t, err)
	assert.NotNil(t, env.Data)
	assert.Empty(t, env.Data)
}

func TestErrorData(t *testing.T) {
	t.Parallel()

	env, err := ParseEnvelope([]byte(`{
		"id": "42",
		"type": "error",
		"action": "",
		"data": {"code": "TAB_NOT_FOUND", "message": "no tab with id 9", "details": "window 1"}
	}`))
	require.NoError(t, err)

	ed := env.ErrorData()
	assert.Equal(t, "TAB_NOT_FOUND", ed.Code)
	assert.Equal(t, "no tab with id 9", ed.Message)
	assert.Equal(t, "window 1", ed.Details)

	// Partially populated payloads decode without failing.
	env.Data = map[string]any{"message": "boom"}
	ed = env.ErrorData()
	assert.Empty(t, ed.Code)
	assert.Equal(t, "boom", ed.Message)
}

func TestCatalogMembership(t *testing.T) {
	t.Parallel()

	for _, action := range []string{
		ActionHistoryQuery, ActionHistoryRecent, ActionHistoryDeleteItem,
		ActionTabsList, ActionTabsActive, ActionTabsCreate, ActionTabsClose,
		ActionTabsUpdate, ActionTabsSwitch, ActionTabsCaptureScreenshot,
		ActionContentGetText, ActionContentGetHTML, ActionContentExecuteScript,
		ActionNavigationGoToURL, ActionNavigationBack, ActionNavigationForward,
		ActionNavigationReload,
		ActionBookmarksList, ActionBookmarksSearch, ActionBookmarksCreate,
		ActionBookmarksCreateFolder, ActionBookmarksUpdate, ActionBookmarksDelete,
		ActionWindowsList, ActionWindowsGet, ActionWindowsGetCurrent,
		ActionWindowsGetLastFocused, ActionWindowsCreate, ActionWindowsClose,
		ActionWindowsFocus, ActionWindowsUpdate,
		ActionRequestsStartMonitoring, ActionRequestsStopMonitoring,
		ActionRequestsListCaptured, ActionRequestsGetContent,
		ActionPing,
	} {
		assert.True(t, Known(action), "catalog should contain %s", action)
	}

	assert.False(t, Known("tabs.explode"))
	assert.False(t, Known(""))

	// The capture notification is extension-to-server only; the bridge must
	// never be able to send it.
	assert.False(t, Known(ActionRequestsCaptured))
	assert.True(t, IsMonitorNotification(ActionRequestsCaptured))
	assert.False(t, IsMonitorNotification(ActionRequestsListCaptured))
}

func TestMarshalProducesStableKeys(t *testing.T) {
	t.Parallel()

	env, err := NewRequest(ActionPing, map[string]any{})
	require.NoError(t, err)

	raw, err := env.Marshal()
	require.NoError(t, err)

	var keys map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &keys))
	for _, key := range []string{"id", "type", "action", "data", "timestamp"} {
		assert.Contains(t, keys, key)
	}
}
