package db

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"storerating/internal/model"
)

func TestSqliteDSN(t *testing.T) {
	assert.Equal(t, ":memory:?_pragma=foreign_keys(1)", sqliteDSN(":memory:"))
	assert.Equal(t, "app.db?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", sqliteDSN("app.db?_pragma=busy_timeout(5000)"))
	assert.Equal(t, "app.db?_pragma=foreign_keys(0)", sqliteDSN("app.db?_pragma=foreign_keys(0)"))
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := Open("oracle", "")
	assert.Error(t, err)
}

func TestMigrate_EnforcesConstraints(t *testing.T) {
	gdb, err := Open("sqlite", ":memory:")
	require.NoError(t, err)
	require.NoError(t, Migrate(gdb))

	u := model.User{Name: "A Regular Rating User", Email: "a@example.com", PasswordHash: "x", Role: model.RoleUser}
	require.NoError(t, gdb.Create(&u).Error)

	dup := model.User{Name: "Another Regular User", Email: "a@example.com", PasswordHash: "x", Role: model.RoleUser}
	assert.True(t, IsDuplicateKey(gdb.Create(&dup).Error))

	s := model.Store{Name: "Corner Grocery Store Downtown", Email: "store@example.com"}
	require.NoError(t, gdb.Create(&s).Error)

	require.NoError(t, gdb.Create(&model.Rating{UserID: u.ID, StoreID: s.ID, Rating: 3}).Error)
	err = gdb.Create(&model.Rating{UserID: u.ID, StoreID: s.ID, Rating: 4}).Error
	assert.True(t, IsDuplicateKey(err))

	// deleting the store cascades to its ratings
	require.NoError(t, gdb.Delete(&model.Store{}, s.ID).Error)
	var count int64
	require.NoError(t, gdb.Model(&model.Rating{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestIsDuplicateKey(t *testing.T) {
	assert.False(t, IsDuplicateKey(nil))
	assert.True(t, IsDuplicateKey(gorm.ErrDuplicatedKey))
	assert.True(t, IsDuplicateKey(errors.New("Error 1062 (23000): Duplicate entry 'a@b.c' for key 'users.idx_users_email'")))
	assert.False(t, IsDuplicateKey(gorm.ErrRecordNotFound))
}
