package migrate

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/inventory/internal/db"
	"github.com/Skotchmaster/inventory/internal/hash"
	"github.com/Skotchmaster/inventory/internal/logging"
	"github.com/Skotchmaster/inventory/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.Open(context.Background(), db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	return gdb
}

func TestRun_CreatesTablesAndSeedsAdmin(t *testing.T) {
	gdb := openTestDB(t)
	opts := Options{AdminUsername: "admin", AdminPassword: "password"}

	require.NoError(t, Run(context.Background(), gdb, opts))

	assert.True(t, gdb.Migrator().HasTable(&models.Product{}))
	assert.True(t, gdb.Migrator().HasTable(&models.User{}))

	var users []models.User
	require.NoError(t, gdb.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, "admin", users[0].Username)
	assert.True(t, hash.CheckPassword(users[0].Password, "password"))
}

func TestRun_Idempotent(t *testing.T) {
	gdb := openTestDB(t)
	opts := Options{AdminUsername: "admin", AdminPassword: "password"}

	require.NoError(t, Run(context.Background(), gdb, opts))
	require.NoError(t, gdb.Create(&models.Product{Name: "kept", Category: "General", Stock: 1, Price: 1}).Error)
	require.NoError(t, Run(context.Background(), gdb, opts))

	var users int64
	require.NoError(t, gdb.Model(&models.User{}).Count(&users).Error)
	assert.EqualValues(t, 1, users)

	var products int64
	require.NoError(t, gdb.Model(&models.Product{}).Count(&products).Error)
	assert.EqualValues(t, 1, products)
}

func TestRun_DoesNotOverwriteExistingAdmin(t *testing.T) {
	gdb := openTestDB(t)
	require.NoError(t, gdb.AutoMigrate(&models.Product{}, &models.User{}))

	other, err := hash.HashPassword("changed")
	require.NoError(t, err)
	require.NoError(t, gdb.Create(&models.User{Username: "admin", Password: other}).Error)

	require.NoError(t, Run(context.Background(), gdb, Options{AdminUsername: "admin", AdminPassword: "password"}))

	var u models.User
	require.NoError(t, gdb.Where("username = ?", "admin").First(&u).Error)
	assert.True(t, hash.CheckPassword(u.Password, "changed"))
	assert.False(t, hash.CheckPassword(u.Password, "password"))
}

func TestSteps_Order(t *testing.T) {
	steps := Steps(Options{})
	require.Len(t, steps, 2)
	assert.Equal(t, "create_tables", steps[0].Name)
	assert.Equal(t, "seed_default_admin", steps[1].Name)
}

func TestRun_WarnsOnPlaintextAdmin(t *testing.T) {
	gdb := openTestDB(t)
	require.NoError(t, gdb.AutoMigrate(&models.Product{}, &models.User{}))
	require.NoError(t, gdb.Create(&models.User{Username: "admin", Password: "password"}).Error)

	var logs bytes.Buffer
	ctx := logging.IntoContext(context.Background(), logging.NewWithWriter(&logs, "info"))
	require.NoError(t, Run(ctx, gdb, Options{AdminUsername: "admin", AdminPassword: "password"}))

	assert.Contains(t, logs.String(), `"msg":"seed_admin_unusable"`)

	var u models.User
	require.NoError(t, gdb.Where("username = ?", "admin").First(&u).Error)
	assert.Equal(t, "password", u.Password)
}

func TestRun_NoWarningForHashedAdmin(t *testing.T) {
	gdb := openTestDB(t)

	var logs bytes.Buffer
	ctx := logging.IntoContext(context.Background(), logging.NewWithWriter(&logs, "info"))
	require.NoError(t, Run(ctx, gdb, Options{AdminUsername: "admin", AdminPassword: "password"}))
	require.NoError(t, Run(ctx, gdb, Options{AdminUsername: "admin", AdminPassword: "password"}))

	assert.NotContains(t, logs.String(), "seed_admin_unusable")
}
