package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/suteetoe/storefront/internal/model"
)

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "username", "email", "full_name", "role", "status", "phone", "department", "last_login_at", "created_at", "updated_at"})
}

func TestGetUserByUsername(t *testing.T) {
	s, mock := setupStorage(t)

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE username = \$1`).
		WillReturnRows(userRows().AddRow(4, "maria", "m@example.com", "Maria", "sales", "active", "", "Sales", nil, fixedNow, fixedNow))

	u := s.GetUserByUsername(context.Background(), "maria")

	require.NotNil(t, u)
	assert.Equal(t, int64(4), u.ID)
	assert.Equal(t, "sales", u.Role)
}

func TestGetAllUsers_Ordered(t *testing.T) {
	s, mock := setupStorage(t)

	mock.ExpectQuery(`SELECT \* FROM "users" ORDER BY created_at DESC`).
		WillReturnRows(userRows().
			AddRow(2, "b", "", "", "", "", "", "", nil, fixedNow, fixedNow).
			AddRow(1, "a", "", "", "", "", "", "", nil, fixedNow.Add(-time.Hour), fixedNow))

	users := s.GetAllUsers(context.Background())

	require.Len(t, users, 2)
	assert.Equal(t, "b", users[0].Username)
}

func TestGetUserByID_ErrorIsNil(t *testing.T) {
	s, mock := setupStorage(t)

	mock.ExpectQuery(`SELECT \* FROM "users"`).WillReturnError(errors.New("canceling statement"))

	assert.Nil(t, s.GetUserByID(context.Background(), 1))
}

func TestUpdateUser_Sparse(t *testing.T) {
	s, mock := setupStorage(t)
	login := fixedNow.Add(-time.Minute)

	mock.ExpectQuery(`UPDATE "users" SET "last_login_at"=\$1,"role"=\$2,"updated_at"=\$3 WHERE id = \$4 RETURNING \*`).
		WillReturnRows(userRows().AddRow(4, "maria", "", "", "manager", "active", "", "", login, fixedNow, fixedNow))

	u, err := s.UpdateUser(context.Background(), 4, model.UserPatch{Role: strPtr("manager"), LastLoginAt: &login})

	require.NoError(t, err)
	assert.Equal(t, "manager", u.Role)
	require.NoError(t, mock.ExpectationsWereMet())
}
