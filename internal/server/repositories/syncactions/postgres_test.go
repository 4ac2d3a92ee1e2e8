package syncactions

import (
	"context"
	"database/sql/driver"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const insertQ = `(?s)INSERT\s+INTO\s+sync_actions\s*\(user_id,\s*action_id\).*ON\s+CONFLICT\s*\(user_id,\s*action_id\)\s+DO\s+NOTHING`

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestRecord(t *testing.T) {
	tests := []struct {
		name    string
		result  driver.Result
		err     error
		want    bool
		wantErr bool
	}{
		{name: "first time", result: sqlmock.NewResult(0, 1), want: true},
		{name: "replayed", result: sqlmock.NewResult(0, 0), want: false},
		{name: "db error", err: errors.New("conn reset"), wantErr: true},
		{name: "rows affected error", result: sqlmock.NewErrorResult(errors.New("driver")), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)
			exp := mock.ExpectExec(insertQ).WithArgs("u1", "act-1")
			if tt.err != nil {
				exp.WillReturnError(tt.err)
			} else {
				exp.WillReturnResult(tt.result)
			}

			got, err := repo.Record(context.Background(), "u1", "act-1")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
