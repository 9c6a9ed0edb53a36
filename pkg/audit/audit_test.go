package audit

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/GbFerrera/FINANCIAL-LS-sub003/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_WritesJSONLine(t *testing.T) {
	var buf bytes.Buffer
	a := NewWithWriter(&buf)

	a.Record(ActionTaskMoved, "user-1", map[string]interface{}{"task_id": "t-1", "to_index": 2})

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, ActionTaskMoved, line["action"])
	assert.Equal(t, "user-1", line["actor"])
	assert.Equal(t, "t-1", line["task_id"])
	assert.EqualValues(t, 2, line["to_index"])
}

func TestNew_RotatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "audit.log")
	a, err := New(config.AuditConfig{File: path, MaxSizeMB: 1, MaxBackups: 1, MaxAgeDays: 1})
	require.NoError(t, err)

	a.Record(ActionCommissionProfileUpserted, "admin", nil)
	require.NoError(t, a.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), ActionCommissionProfileUpserted)
}

func TestNilLoggerIsSafe(t *testing.T) {
	var a *Logger
	a.Record(ActionTaskDeleted, "", nil)
	assert.NoError(t, a.Close())
}
