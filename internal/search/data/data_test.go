package data

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupForumDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "forum.db")), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(Models()...))
	return db
}

func seedForum(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Create(&[]CategoryPO{
		{CID: 1, Name: "General Discussion"},
		{CID: 2, Name: "Announcements"},
	}).Error)
	require.NoError(t, db.Create(&[]UserPO{
		{UID: 1, Username: "alice"},
		{UID: 2, Username: "bob"},
	}).Error)
	require.NoError(t, db.Create(&[]TopicPO{
		{TID: 10, CID: 1, UID: 1, Title: "Learning Golang", Tags: "go,beginner"},
		{TID: 20, CID: 2, UID: 2, Title: "Release notes", Tags: "release"},
		{TID: 30, CID: 1, UID: 2, Title: "Removed topic", Deleted: true},
	}).Error)
	require.NoError(t, db.Create(&[]PostPO{
		{PID: 100, TID: 10, UID: 1, Content: "<p>Where do I start with Go?</p>", Timestamp: 1000},
		{PID: 101, TID: 10, UID: 2, Content: "Read the tour of golang", Timestamp: 2000},
		{PID: 200, TID: 20, UID: 2, Content: "Version 2 is out", Timestamp: 3000},
		{PID: 201, TID: 20, UID: 1, Content: "golang support added", Timestamp: 4000, Deleted: true},
		{PID: 300, TID: 30, UID: 2, Content: "golang in a removed topic", Timestamp: 5000},
	}).Error)
	require.NoError(t, db.Create(&[]BookmarkPO{
		{UID: 1, PID: 200, Timestamp: 3500},
	}).Error)
}
