package sqlite

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/myrjola/repcoach/internal/errors"
)

// migrateTo brings the live schema in line with schemaDefinition declaratively.
//
// The target schema is created in an attached in-memory database and compared entity by entity with the live one.
// Tables that only exist live are dropped, new tables are created and changed tables are rebuilt with the
// generalized ALTER TABLE procedure https://www.sqlite.org/lang_altertable.html#otheralter. Indexes and triggers are
// then dropped, created or recreated to match.
//
// Inspired by https://david.rothlis.net/declarative-schema-migration-for-sqlite/
func (db *Database) migrateTo(ctx context.Context, schemaDefinition string) (err error) {
	start := time.Now()

	detach, err := db.attachTarget(ctx, schemaDefinition)
	if err != nil {
		return errors.Wrap(err, "attach target schema")
	}
	defer detach()

	// Foreign keys can only be toggled outside a transaction.
	if _, err = db.ReadWrite.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return errors.Wrap(err, "disable foreign keys")
	}
	defer func() {
		if _, fkErr := db.ReadWrite.ExecContext(context.WithoutCancel(ctx), "PRAGMA foreign_keys = ON"); fkErr != nil {
			err = errors.Join(err, errors.Wrap(fkErr, "enable foreign keys"))
		}
	}()

	if err = db.WithTx(ctx, func(tx *sql.Tx) error {
		if txErr := db.migrateTables(ctx, tx); txErr != nil {
			return errors.Wrap(txErr, "migrate tables")
		}
		for _, typ := range []string{"index", "trigger"} {
			if txErr := db.migrateEntities(ctx, tx, typ); txErr != nil {
				return errors.Wrap(txErr, "migrate entities", slog.String("type", typ))
			}
		}
		return foreignKeyCheck(ctx, tx)
	}); err != nil {
		return err
	}

	db.logger.LogAttrs(ctx, slog.LevelInfo, "migrated database", slog.Duration("duration", time.Since(start)))
	return nil
}

// attachTarget creates the target schema in a fresh in-memory database, attaches it as schemaTarget and returns the
// function that detaches it.
func (db *Database) attachTarget(ctx context.Context, schemaDefinition string) (func(), error) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", rand.Text())
	target, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open target database")
	}
	defer func() {
		if closeErr := target.Close(); closeErr != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to close target database",
				errors.SlogError(errors.Wrap(closeErr, "close")))
		}
	}()
	if _, err = target.ExecContext(ctx, schemaDefinition); err != nil {
		return nil, errors.Wrap(err, "create target schema")
	}
	if _, err = db.ReadWrite.ExecContext(ctx, "ATTACH DATABASE ? AS schemaTarget", dsn); err != nil {
		return nil, errors.Wrap(err, "attach")
	}
	return func() {
		if _, detachErr := db.ReadWrite.ExecContext(context.WithoutCancel(ctx), "DETACH DATABASE schemaTarget"); detachErr != nil {
			db.logger.LogAttrs(ctx, slog.LevelError, "failed to detach target database",
				errors.SlogError(errors.Wrap(detachErr, "detach")))
		}
	}, nil
}

// schemaEntity is an entry of sqlite_schema. An empty liveSQL means the entity is new and an empty targetSQL means
// it was removed.
type schemaEntity struct {
	name      string
	liveSQL   string
	targetSQL string
}

func (e schemaEntity) changed() bool {
	// Renamed tables get their name quoted in sqlite_schema.
	return e.liveSQL != "" && e.targetSQL != "" &&
		strings.ReplaceAll(e.liveSQL, `"`, "") != strings.ReplaceAll(e.targetSQL, `"`, "")
}

func diffSchema(ctx context.Context, tx *sql.Tx, typ string) ([]schemaEntity, error) {
	rows, err := tx.QueryContext(ctx, `SELECT COALESCE(live.name, target.name),
       COALESCE(live.sql, ''),
       COALESCE(target.sql, '')
FROM sqlite_schema AS live
         FULL OUTER JOIN schemaTarget.sqlite_schema AS target ON live.name = target.name AND live.type = target.type
WHERE COALESCE(live.type, target.type) = :type
  AND COALESCE(live.name, target.name) NOT LIKE 'sqlite_%'
ORDER BY 1`, sql.Named("type", typ))
	if err != nil {
		return nil, errors.Wrap(err, "query schema diff")
	}
	defer rows.Close()

	var entities []schemaEntity
	for rows.Next() {
		var e schemaEntity
		if err = rows.Scan(&e.name, &e.liveSQL, &e.targetSQL); err != nil {
			return nil, errors.Wrap(err, "scan schema diff")
		}
		entities = append(entities, e)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate schema diff")
	}
	return entities, nil
}

func (db *Database) migrateTables(ctx context.Context, tx *sql.Tx) error {
	tables, err := diffSchema(ctx, tx, "table")
	if err != nil {
		return err
	}
	for _, table := range tables {
		switch {
		case table.targetSQL == "":
			db.logger.LogAttrs(ctx, slog.LevelInfo, "dropping table", slog.String("table", table.name))
			if _, err = tx.ExecContext(ctx, "DROP TABLE "+table.name); err != nil {
				return errors.Wrap(err, "drop table", slog.String("table", table.name))
			}
		case table.liveSQL == "":
			db.logger.LogAttrs(ctx, slog.LevelInfo, "creating table", slog.String("query", table.targetSQL))
			if _, err = tx.ExecContext(ctx, table.targetSQL); err != nil {
				return errors.Wrap(err, "create table", slog.String("table", table.name))
			}
		case table.changed():
			if err = db.rebuildTable(ctx, tx, table); err != nil {
				return errors.Wrap(err, "rebuild table", slog.String("table", table.name))
			}
		}
	}
	return nil
}

// rebuildTable creates the table under a temporary name, copies the shared columns, drops the old table and renames
// the new one into place.
func (db *Database) rebuildTable(ctx context.Context, tx *sql.Tx, table schemaEntity) error {
	db.logger.LogAttrs(ctx, slog.LevelInfo, "rebuilding table",
		slog.String("table", table.name),
		slog.String("live_sql", table.liveSQL),
		slog.String("new_sql", table.targetSQL))

	tempName := table.name + "_migration_temp"
	columns, err := commonColumns(ctx, tx, table.name)
	if err != nil {
		return err
	}
	shared := strings.Join(columns, ", ")
	statements := []string{
		strings.Replace(table.targetSQL, table.name, tempName, 1),
		fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM %s", tempName, shared, shared, table.name), //nolint:gosec // names come from sqlite_schema.
		"DROP TABLE " + table.name,
		fmt.Sprintf("ALTER TABLE %s RENAME TO %s", tempName, table.name),
	}
	for _, stmt := range statements {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return errors.Wrap(err, "exec", slog.String("query", stmt))
		}
	}
	return nil
}

func commonColumns(ctx context.Context, tx *sql.Tx, table string) ([]string, error) {
	// Quoted in case a column name is a keyword.
	rows, err := tx.QueryContext(ctx, `SELECT '"' || target.name || '"'
FROM PRAGMA_TABLE_INFO(:table) AS live
         JOIN PRAGMA_TABLE_INFO(:table, 'schemaTarget') AS target ON target.name = live.name`,
		sql.Named("table", table))
	if err != nil {
		return nil, errors.Wrap(err, "query common columns")
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var column string
		if err = rows.Scan(&column); err != nil {
			return nil, errors.Wrap(err, "scan column")
		}
		columns = append(columns, column)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate columns")
	}
	return columns, nil
}

// migrateEntities synchronises indexes or triggers. It runs after migrateTables, so entities that belonged to
// dropped or rebuilt tables are already gone from the live schema.
func (db *Database) migrateEntities(ctx context.Context, tx *sql.Tx, typ string) error {
	entities, err := diffSchema(ctx, tx, typ)
	if err != nil {
		return err
	}
	drop := fmt.Sprintf("DROP %s ", strings.ToUpper(typ))
	for _, e := range entities {
		var statements []string
		switch {
		case e.targetSQL == "":
			statements = []string{drop + e.name}
		case e.liveSQL == "":
			statements = []string{e.targetSQL}
		case e.liveSQL != e.targetSQL:
			statements = []string{drop + e.name, e.targetSQL}
		}
		for _, stmt := range statements {
			db.logger.LogAttrs(ctx, slog.LevelInfo, "migrating "+typ,
				slog.String("name", e.name), slog.String("query", stmt))
			if _, err = tx.ExecContext(ctx, stmt); err != nil {
				return errors.Wrap(err, "exec", slog.String("query", stmt))
			}
		}
	}
	return nil
}

func foreignKeyCheck(ctx context.Context, tx *sql.Tx) error {
	rows, err := tx.QueryContext(ctx, "PRAGMA foreign_key_check")
	if err != nil {
		return errors.Wrap(err, "foreign key check")
	}
	defer rows.Close()
	if rows.Next() {
		return errors.Wrap(ErrForeignKeyViolation, "foreign key check")
	}
	return errors.Wrap(rows.Err(), "iterate foreign key check")
}

var ErrForeignKeyViolation = errors.NewSentinel("foreign key violation after migration")
