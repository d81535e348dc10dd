package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/filebox/internal/db"
	"github.com/templui/filebox/internal/model"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// newPostgres starts a throwaway PostgreSQL container. Set TEST_INTEGRATION
// to run it; Docker is required.
func newPostgres(t *testing.T) *sqlx.DB {
	t.Helper()

	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("set TEST_INTEGRATION to run PostgreSQL tests")
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"docker.io/postgres:17-alpine",
		postgres.WithDatabase("filebox_test"),
		postgres.WithUsername("filebox"),
		postgres.WithPassword("test-password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to stop postgres container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	conn, err := db.Init(db.DriverPostgres, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(conn) })

	require.NoError(t, db.RunMigrations(conn.DB, db.DriverPostgres))
	return conn
}

func TestPostgresRepositories(t *testing.T) {
	conn := newPostgres(t)
	ctx := t.Context()

	folders := NewFolderRepository(conn)
	files := NewFileRepository(conn)
	payments := NewPaymentRepository(conn)
	tx := db.NewTxManager(conn)

	secret := newFolder(t, folders, "Secrets", nil, ptr("1234"))
	open := newFolder(t, folders, "Docs", nil, nil)
	newInlineFile(t, files, "open.txt", &open.ID, time.Now().UTC())
	newInlineFile(t, files, "secret.txt", &secret.ID, time.Now().UTC())

	listed, err := files.ListUnprotected(ctx)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "open.txt", listed[0].Name)

	t.Run("foreign keys", func(t *testing.T) {
		err := folders.Create(ctx, &model.Folder{ID: uuid.New().String(), Name: "x", ParentID: ptr(uuid.New().String()), CreatedAt: time.Now()})
		assert.ErrorIs(t, err, ErrFolderNotFound)
	})

	t.Run("duplicate payment", func(t *testing.T) {
		p := &model.Payment{
			ID:           uuid.New().String(),
			Provider:     model.ProviderPolar,
			ProviderTxID: ptr("ord_pg"),
			Status:       model.PaymentStatusPaid,
			CreatedAt:    time.Now().UTC(),
		}
		require.NoError(t, payments.Create(ctx, p))
		p.ID = uuid.New().String()
		assert.ErrorIs(t, payments.Create(ctx, p), ErrDuplicatePayment)
	})

	t.Run("rollback", func(t *testing.T) {
		id := uuid.New().String()
		err := tx.ExecTx(ctx, func(ctx context.Context) error {
			if err := folders.Create(ctx, &model.Folder{ID: id, Name: "tmp", CreatedAt: time.Now().UTC()}); err != nil {
				return err
			}
			return assert.AnError
		})
		require.ErrorIs(t, err, assert.AnError)

		_, err = folders.ByID(ctx, id)
		assert.ErrorIs(t, err, ErrFolderNotFound)
	})
}
