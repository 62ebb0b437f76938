package repo_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/teamboardhq/teamboard/internal/model"
	appErr "github.com/teamboardhq/teamboard/internal/pkg/errors"
	"github.com/teamboardhq/teamboard/internal/repo"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := repo.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, repo.ApplyMigrations(db))
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func newVersion(attachmentID int64, number int) *model.FileVersion {
	return &model.FileVersion{
		AttachmentID:  attachmentID,
		VersionNumber: number,
		FileKey:       "blob",
		FileSize:      10,
		EditedBy:      1,
		ChangeSummary: "test",
		Ctime:         1700000000,
	}
}

func TestVersionRepoNumbering(t *testing.T) {
	db := openTestDB(t)
	versions := repo.NewVersionRepo(db)
	ctx := context.Background()

	last, err := versions.LastVersionNumber(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 0, last)

	for i := 1; i <= 3; i++ {
		require.NoError(t, versions.Create(ctx, newVersion(1, i)))
	}
	last, err = versions.LastVersionNumber(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, 3, last)

	// Other attachments do not interfere.
	last, err = versions.LastVersionNumber(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, 0, last)

	// Duplicate numbers are rejected by the ledger itself.
	require.Error(t, versions.Create(ctx, newVersion(1, 3)))
}

func TestVersionRepoListDescending(t *testing.T) {
	db := openTestDB(t)
	versions := repo.NewVersionRepo(db)
	ctx := context.Background()

	for i := 1; i <= 4; i++ {
		require.NoError(t, versions.Create(ctx, newVersion(7, i)))
	}
	list, err := versions.ListByAttachment(ctx, 7)
	require.NoError(t, err)
	require.Len(t, list, 4)
	for i, v := range list {
		require.Equal(t, 4-i, v.VersionNumber)
	}
}

func TestVersionRepoGetDelete(t *testing.T) {
	db := openTestDB(t)
	versions := repo.NewVersionRepo(db)
	ctx := context.Background()

	v := newVersion(3, 1)
	require.NoError(t, versions.Create(ctx, v))
	require.NotZero(t, v.ID)

	got, err := versions.GetByID(ctx, v.ID)
	require.NoError(t, err)
	require.Equal(t, v.AttachmentID, got.AttachmentID)
	require.Equal(t, v.VersionNumber, got.VersionNumber)

	_, err = versions.GetByID(ctx, 9999)
	require.ErrorIs(t, err, appErr.ErrNotFound)

	require.NoError(t, versions.DeleteByAttachment(ctx, 3))
	_, err = versions.GetByID(ctx, v.ID)
	require.ErrorIs(t, err, appErr.ErrNotFound)
}

func TestVersionRepoListBeyond(t *testing.T) {
	db := openTestDB(t)
	versions := repo.NewVersionRepo(db)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, versions.Create(ctx, newVersion(9, i)))
	}
	stale, err := versions.ListBeyond(ctx, 9, 2)
	require.NoError(t, err)
	require.Len(t, stale, 3)
	// Newest two (5, 4) retained; 3, 2, 1 beyond the keep window.
	require.Equal(t, 3, stale[0].VersionNumber)
	require.Equal(t, 1, stale[2].VersionNumber)

	stale, err = versions.ListBeyond(ctx, 9, 10)
	require.NoError(t, err)
	require.Empty(t, stale)
}
