package warehouse

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var testTable = TableSpec{
	Name: "clean_things",
	Columns: []Column{
		{Name: "thing_id", Type: TypeText, NotNull: true},
		{Name: "made_on", Type: TypeDate},
		{Name: "qty", Type: TypeInteger},
		{Name: "price", Type: TypeDecimal},
		{Name: "ratio", Type: TypeFloat},
		{Name: "active", Type: TypeBool, NotNull: true},
	},
	Indexes: []string{"thing_id", "made_on"},
}

func TestTableSpec_ColumnNames(t *testing.T) {
	assert.Equal(t, []string{"thing_id", "made_on", "qty", "price", "ratio", "active"}, testTable.ColumnNames())
}

func TestCreateTable_PerDialect(t *testing.T) {
	assert.Equal(t,
		"CREATE TABLE \"clean_things\" (\n\t\"thing_id\" TEXT NOT NULL,\n\t\"made_on\" TEXT,\n\t\"qty\" INTEGER,\n\t\"price\" TEXT,\n\t\"ratio\" REAL,\n\t\"active\" INTEGER NOT NULL\n)",
		sqliteDialect.createTable(testTable.Name, testTable.Columns))

	assert.Equal(t,
		"CREATE TABLE \"clean_things\" (\n\t\"thing_id\" TEXT NOT NULL,\n\t\"made_on\" DATE,\n\t\"qty\" BIGINT,\n\t\"price\" NUMERIC,\n\t\"ratio\" DOUBLE PRECISION,\n\t\"active\" BOOLEAN NOT NULL\n)",
		postgresDialect.createTable(testTable.Name, testTable.Columns))
}

func TestCreateStaging_AllText(t *testing.T) {
	got := createStaging(StagingSpec{Table: "staging_things", Columns: []string{"a", "b"}})
	assert.Equal(t, "CREATE TABLE IF NOT EXISTS \"staging_things\" (\n\t\"a\" TEXT,\n\t\"b\" TEXT\n)", got)
}

func TestInsert_Placeholders(t *testing.T) {
	cols := []string{"a", "b", "c"}
	assert.Equal(t, `INSERT INTO "t" ("a", "b", "c") VALUES (?, ?, ?)`, sqliteDialect.insert("t", cols))
	assert.Equal(t, `INSERT INTO "t" ("a", "b", "c") VALUES ($1, $2, $3)`, postgresDialect.insert("t", cols))
}

func TestCreateIndexes(t *testing.T) {
	assert.Equal(t, []string{
		`CREATE INDEX IF NOT EXISTS "idx_clean_things_thing_id" ON "clean_things" ("thing_id")`,
		`CREATE INDEX IF NOT EXISTS "idx_clean_things_made_on" ON "clean_things" ("made_on")`,
	}, createIndexes(testTable))
}

func TestRenameTable_SchemaQualified(t *testing.T) {
	assert.Equal(t, `ALTER TABLE "mart"."clean_x__next" RENAME TO "clean_x"`,
		renameTable(shadowName("mart.clean_x"), "mart.clean_x"))
	assert.Equal(t, `ALTER TABLE "clean_x__next" RENAME TO "clean_x"`,
		renameTable(shadowName("clean_x"), "clean_x"))
}

func TestSelectStaging_FoldsNulls(t *testing.T) {
	got := selectStaging(StagingSpec{Table: "staging_things", Columns: []string{"a", "b"}})
	assert.Equal(t, `SELECT COALESCE("a", ''), COALESCE("b", '') FROM "staging_things"`, got)
}

func TestProfileSQL(t *testing.T) {
	spec := ProfileSpec{Table: "clean_things", Key: "thing_id", DateColumn: "made_on", NullColumns: []string{"qty"}}

	assert.Equal(t,
		`SELECT COUNT(*), COUNT(DISTINCT "thing_id"), COALESCE(SUM(CASE WHEN "qty" IS NULL THEN 1 ELSE 0 END), 0), MIN("made_on"), MAX("made_on") FROM "clean_things"`,
		sqliteDialect.profileSQL(spec))
	assert.Equal(t,
		`SELECT COUNT(*), COUNT(DISTINCT "thing_id"), COALESCE(SUM(CASE WHEN "qty" IS NULL THEN 1 ELSE 0 END), 0), to_char(MIN("made_on"), 'YYYY-MM-DD'), to_char(MAX("made_on"), 'YYYY-MM-DD') FROM "clean_things"`,
		postgresDialect.profileSQL(spec))

	noDate := ProfileSpec{Table: "t", Key: "k"}
	assert.Equal(t, `SELECT COUNT(*), COUNT(DISTINCT "k") FROM "t"`, sqliteDialect.profileSQL(noDate))
}

func TestStagingRow(t *testing.T) {
	got := stagingRow([]string{"a", "", " "}, 4)
	assert.Equal(t, []any{"a", nil, " ", nil}, got)
}

func TestRunLimit(t *testing.T) {
	assert.Equal(t, defaultRunLimit, runLimit(0))
	assert.Equal(t, defaultRunLimit, runLimit(-3))
	assert.Equal(t, 7, runLimit(7))
}
