package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/almasmith/mercer-library/internal/database"
	auditrepo "github.com/almasmith/mercer-library/internal/database/audit"
	"github.com/almasmith/mercer-library/internal/entities"
	"github.com/almasmith/mercer-library/internal/etag"
)

func tempDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "cli.db")
}

func TestMigrateCommand(t *testing.T) {
	path := tempDBPath(t)
	var out bytes.Buffer

	cmd := NewMigrateCommand()
	cmd.out = &out
	require.NoError(t, cmd.ParseFlags([]string{"-db", path}))
	require.NoError(t, cmd.Run())
	assert.Contains(t, out.String(), "sqlite")

	db, err := database.NewDatabase(path)
	require.NoError(t, err)
	defer db.Close()
	assert.True(t, db.DB.Migrator().HasTable(&entities.Book{}))
	assert.True(t, db.DB.Migrator().HasTable(&entities.StatsVersion{}))
}

func TestStatsVersionCommand(t *testing.T) {
	path := tempDBPath(t)

	run := func(args ...string) string {
		t.Helper()
		var out bytes.Buffer
		cmd := NewStatsVersionCommand()
		cmd.out = &out
		require.NoError(t, cmd.ParseFlags(append([]string{"-db", path}, args...)))
		require.NoError(t, cmd.Run())
		return out.String()
	}

	assert.Equal(t, "user=5 version=0 etag="+etag.EncodeVersion(0)+"\n", run("-user", "5"))
	assert.Equal(t, "user=5 version=1 etag="+etag.EncodeVersion(1)+"\n", run("-user", "5", "-bump"))
	assert.Equal(t, "user=5 version=1 etag="+etag.EncodeVersion(1)+"\n", run("-user", "5"))
	assert.Contains(t, run("-user", "6"), "version=0")
}

func TestStatsVersionCommand_RequiresUser(t *testing.T) {
	cmd := NewStatsVersionCommand()
	assert.Error(t, cmd.ParseFlags([]string{"-db", tempDBPath(t)}))
}

func TestAuditLogCommand(t *testing.T) {
	path := tempDBPath(t)

	db, err := database.NewDatabase(path)
	require.NoError(t, err)
	repo := auditrepo.NewRepository(db.DB)
	ctx := context.Background()
	require.NoError(t, repo.LogEvent(ctx, &entities.AuditEvent{UserID: 1, EventType: entities.AuditEventAuth, Action: "login_success", Status: entities.AuditStatusSuccess}))
	require.NoError(t, repo.LogEvent(ctx, &entities.AuditEvent{UserID: 2, EventType: entities.AuditEventBook, Action: "book_delete", Description: "Deleted book: Dune", Status: entities.AuditStatusSuccess}))
	require.NoError(t, db.Close())

	t.Run("all users", func(t *testing.T) {
		var out bytes.Buffer
		cmd := NewAuditLogCommand()
		cmd.out = &out
		require.NoError(t, cmd.ParseFlags([]string{"-db", path}))
		require.NoError(t, cmd.Run())

		assert.Contains(t, out.String(), "login_success")
		assert.Contains(t, out.String(), "Deleted book: Dune")
		assert.Contains(t, out.String(), "2 of 2 events")
	})

	t.Run("one user", func(t *testing.T) {
		var out bytes.Buffer
		cmd := NewAuditLogCommand()
		cmd.out = &out
		require.NoError(t, cmd.ParseFlags([]string{"-db", path, "-user", "2", "-limit", "5"}))
		require.NoError(t, cmd.Run())

		assert.NotContains(t, out.String(), "login_success")
		assert.Contains(t, out.String(), "1 of 1 events")
	})

	t.Run("rejects non-positive limit", func(t *testing.T) {
		assert.Error(t, NewAuditLogCommand().ParseFlags([]string{"-limit", "0"}))
	})
}
