package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "easyauth-db-test")
	if err != nil {
		panic(err)
	}
	SetPath(filepath.Join(dir, "test.db"))
	code := m.Run()
	CloseDB()
	os.RemoveAll(dir)
	os.Exit(code)
}

func TestGateEnabledDefaultsTrue(t *testing.T) {
	assert.True(t, GateEnabled(555))
}

func TestSetGateEnabled(t *testing.T) {
	require.NoError(t, SetGateEnabled(100, false))
	assert.False(t, GateEnabled(100))
	assert.True(t, GateEnabled(101))

	require.NoError(t, SetGateEnabled(100, true))
	assert.True(t, GateEnabled(100))
}

func TestRecordOutcomeCounts(t *testing.T) {
	const chat = int64(200)

	require.NoError(t, RecordOutcome(chat, 42, "inst-1", "pass"))
	require.NoError(t, RecordOutcome(chat, 43, "inst-2", "kick"))
	require.NoError(t, RecordOutcome(chat, 44, "inst-3", "kick"))
	require.NoError(t, RecordOutcome(chat, 45, "inst-4", "admin_pass"))
	require.NoError(t, RecordOutcome(chat, 46, "inst-5", "admin_kick"))
	require.NoError(t, RecordOutcome(chat, 47, "inst-6", "timeout"))

	stats, err := GetGateStats(chat)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Passed)
	assert.Equal(t, int64(2), stats.Kicked)
	assert.Equal(t, int64(1), stats.AdminPassed)
	assert.Equal(t, int64(1), stats.AdminKicked)
	assert.Equal(t, int64(1), stats.TimedOut)
}

func TestGetGateStatsUnknownChat(t *testing.T) {
	stats, err := GetGateStats(999)
	require.NoError(t, err)
	assert.Equal(t, &GateStats{}, stats)
}
