package database

import (
	"regexp"
	"sort"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1)
	return db
}

func TestAutoMigrate(t *testing.T) {
	db := setupTestDB(t)
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("AutoMigrate failed: %v", err)
	}
	for _, model := range Models() {
		if !db.Migrator().HasTable(model) {
			t.Errorf("table for %T not created", model)
		}
	}
}

var (
	createTableRe = regexp.MustCompile(`(?s)CREATE TABLE (\w+) \((.*?)\n\);`)
	columnRe      = regexp.MustCompile(`^\s+([a-z_]+)\s+[A-Z]`)
)

func migrationColumns(t *testing.T) map[string][]string {
	t.Helper()
	raw, err := embedMigrations.ReadFile("migrations/00001_init.sql")
	if err != nil {
		t.Fatalf("failed to read migration: %v", err)
	}
	tables := make(map[string][]string)
	for _, m := range createTableRe.FindAllStringSubmatch(string(raw), -1) {
		var cols []string
		for _, line := range strings.Split(m[2], "\n") {
			if c := columnRe.FindStringSubmatch(line); c != nil {
				cols = append(cols, c[1])
			}
		}
		sort.Strings(cols)
		tables[m[1]] = cols
	}
	return tables
}

// The goose migration and the gorm models must describe the same columns,
// otherwise postgres deployments fail on the first query touching the gap.
func TestMigrationMatchesModels(t *testing.T) {
	db := setupTestDB(t)
	tables := migrationColumns(t)

	for _, model := range Models() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			t.Fatalf("failed to parse %T: %v", model, err)
		}
		table := stmt.Schema.Table
		sqlCols, ok := tables[table]
		if !ok {
			t.Errorf("table %s missing from migration", table)
			continue
		}
		modelCols := append([]string(nil), stmt.Schema.DBNames...)
		sort.Strings(modelCols)

		if strings.Join(modelCols, ",") != strings.Join(sqlCols, ",") {
			t.Errorf("table %s columns differ\nmodel:     %v\nmigration: %v", table, modelCols, sqlCols)
		}
	}
}
