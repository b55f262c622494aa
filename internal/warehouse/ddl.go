package warehouse

import (
	"fmt"
	"strings"

	"github.com/sells-group/marketing-cli/internal/db"
)

// dialect holds the SQL differences between backends.
type dialect struct {
	types       map[ColumnType]string
	placeholder func(n int) string
	// dateText renders a date expression as YYYY-MM-DD text.
	dateText func(expr string) string
}

var sqliteDialect = dialect{
	types: map[ColumnType]string{
		TypeText:    "TEXT",
		TypeInteger: "INTEGER",
		TypeDecimal: "TEXT",
		TypeFloat:   "REAL",
		TypeDate:    "TEXT",
		TypeBool:    "INTEGER",
	},
	placeholder: func(int) string { return "?" },
	dateText:    func(expr string) string { return expr },
}

var postgresDialect = dialect{
	types: map[ColumnType]string{
		TypeText:    "TEXT",
		TypeInteger: "BIGINT",
		TypeDecimal: "NUMERIC",
		TypeFloat:   "DOUBLE PRECISION",
		TypeDate:    "DATE",
		TypeBool:    "BOOLEAN",
	},
	placeholder: func(n int) string { return fmt.Sprintf("$%d", n) },
	dateText:    func(expr string) string { return fmt.Sprintf("to_char(%s, 'YYYY-MM-DD')", expr) },
}

const shadowSuffix = "__next"

func shadowName(table string) string { return table + shadowSuffix }

// unqualified strips a schema prefix; RENAME TO takes a bare name.
func unqualified(table string) string {
	if i := strings.LastIndex(table, "."); i >= 0 {
		return table[i+1:]
	}
	return table
}

func quote(col string) string { return db.QuoteAndJoin([]string{col}) }

func (d dialect) createTable(name string, cols []Column) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		def := quote(c.Name) + " " + d.types[c.Type]
		if c.NotNull {
			def += " NOT NULL"
		}
		defs[i] = def
	}
	return fmt.Sprintf("CREATE TABLE %s (\n\t%s\n)", db.SanitizeTable(name), strings.Join(defs, ",\n\t"))
}

func createStaging(spec StagingSpec) string {
	defs := make([]string, len(spec.Columns))
	for i, c := range spec.Columns {
		defs[i] = quote(c) + " TEXT"
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", db.SanitizeTable(spec.Table), strings.Join(defs, ",\n\t"))
}

func (d dialect) insert(table string, cols []string) string {
	ph := make([]string, len(cols))
	for i := range cols {
		ph[i] = d.placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		db.SanitizeTable(table), db.QuoteAndJoin(cols), strings.Join(ph, ", "))
}

func indexName(table, col string) string {
	return "idx_" + strings.ReplaceAll(unqualified(table), ".", "_") + "_" + col
}

func createIndexes(spec TableSpec) []string {
	stmts := make([]string, 0, len(spec.Indexes))
	for _, col := range spec.Indexes {
		stmts = append(stmts, fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (%s)",
			quote(indexName(spec.Name, col)), db.SanitizeTable(spec.Name), quote(col)))
	}
	return stmts
}

func dropTable(name string) string {
	return "DROP TABLE IF EXISTS " + db.SanitizeTable(name)
}

func renameTable(from, to string) string {
	return fmt.Sprintf("ALTER TABLE %s RENAME TO %s", db.SanitizeTable(from), quote(unqualified(to)))
}

// selectStaging reads every staging column with NULL folded to ''.
func selectStaging(spec StagingSpec) string {
	cols := make([]string, len(spec.Columns))
	for i, c := range spec.Columns {
		cols[i] = fmt.Sprintf("COALESCE(%s, '')", quote(c))
	}
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(cols, ", "), db.SanitizeTable(spec.Table))
}

// profileSQL returns one query yielding: row count, distinct keys, one null
// count per NullColumns entry, then min and max date text when DateColumn
// is set.
func (d dialect) profileSQL(spec ProfileSpec) string {
	parts := []string{"COUNT(*)", fmt.Sprintf("COUNT(DISTINCT %s)", quote(spec.Key))}
	for _, c := range spec.NullColumns {
		parts = append(parts, fmt.Sprintf("COALESCE(SUM(CASE WHEN %s IS NULL THEN 1 ELSE 0 END), 0)", quote(c)))
	}
	if spec.DateColumn != "" {
		parts = append(parts,
			d.dateText(fmt.Sprintf("MIN(%s)", quote(spec.DateColumn))),
			d.dateText(fmt.Sprintf("MAX(%s)", quote(spec.DateColumn))),
		)
	}
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(parts, ", "), db.SanitizeTable(spec.Table))
}

func stagingRow(row []string, width int) []any {
	out := make([]any, width)
	for i := 0; i < width; i++ {
		if i >= len(row) || row[i] == "" {
			continue
		}
		out[i] = row[i]
	}
	return out
}
