package handlers

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	appdb "github.com/wudworks/fitquote/internal/db"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbi, err := gorm.Open(sqlite.Open("file:h_"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := appdb.AutoMigrate(dbi); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return dbi
}
