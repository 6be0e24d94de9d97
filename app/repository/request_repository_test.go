package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// newDryRunDB renders MySQL statements without a server so the generated
// SQL can be inspected.
func newDryRunDB(t *testing.T) (*gorm.DB, *[]string) {
	t.Helper()
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:                       "seodash:seodash@tcp(127.0.0.1:3306)/seodash?parseTime=True",
		SkipInitializeWithVersion: true,
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)

	var statements []string
	require.NoError(t, db.Callback().Query().After("gorm:query").Register("test:capture_sql", func(tx *gorm.DB) {
		statements = append(statements, tx.Statement.SQL.String())
	}))
	return db, &statements
}

func TestRequestReadsForUpdateLockTheRow(t *testing.T) {
	db, statements := newDryRunDB(t)
	repo := NewRequestRepository(db)

	_, _ = repo.GetBySeoworksTaskIDForUpdate("task-p-1")
	_, _ = repo.GetByIDForUpdate("req-1")
	_, _ = repo.GetByID("req-1")

	require.Len(t, *statements, 3)
	assert.Contains(t, (*statements)[0], "seoworks_task_id = ?")
	assert.Contains(t, (*statements)[0], "FOR UPDATE")
	assert.Contains(t, (*statements)[1], "id = ?")
	assert.Contains(t, (*statements)[1], "FOR UPDATE")
	assert.NotContains(t, (*statements)[2], "FOR UPDATE")
}

func TestDealershipReadForUpdateLocksTheRow(t *testing.T) {
	db, statements := newDryRunDB(t)

	_, _ = NewDealershipRepository(db).GetByIDForUpdate("dealer-1")

	require.Len(t, *statements, 1)
	assert.Contains(t, (*statements)[0], "FOR UPDATE")
}
