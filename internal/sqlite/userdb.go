package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/myrjola/repcoach/internal/errors"
)

const usersTableName = "users"

var ErrNoUsersTable = errors.NewSentinel("users table does not exist")

// ExportUser copies the rows of userID into a new SQLite database file in dir and returns its path. The export holds
// the users table and every table with a foreign key to users(id). Password hashes are blanked.
//
// This gives users all their data to comply with GDPR.
func (db *Database) ExportUser(ctx context.Context, userID string, dir string) (_ string, err error) {
	exportPath := filepath.Join(dir, fmt.Sprintf("repcoach-export-%s.sqlite3", filepath.Base(userID)))
	exportDSN := fmt.Sprintf("file:%s?mode=rwc", exportPath)

	conn, err := db.ReadWrite.Conn(ctx)
	if err != nil {
		return "", errors.Wrap(err, "get db connection")
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			err = errors.Join(err, errors.Wrap(closeErr, "close db connection"))
		}
	}()

	// Foreign keys can only be toggled outside a transaction.
	if _, err = conn.ExecContext(ctx, "PRAGMA foreign_keys = OFF"); err != nil {
		return "", errors.Wrap(err, "disable foreign keys")
	}
	defer func() {
		if _, fkErr := conn.ExecContext(context.WithoutCancel(ctx), "PRAGMA foreign_keys = ON"); fkErr != nil {
			err = errors.Join(err, errors.Wrap(fkErr, "enable foreign keys"))
		}
	}()

	if _, err = conn.ExecContext(ctx, "ATTACH DATABASE ? AS export", exportDSN); err != nil {
		return "", errors.Wrap(err, "attach export database")
	}
	defer func() {
		if _, detachErr := conn.ExecContext(context.WithoutCancel(ctx), "DETACH DATABASE export"); detachErr != nil {
			err = errors.Join(err, errors.Wrap(detachErr, "detach export database"))
		}
	}()

	if err = db.copyUser(ctx, conn, userID); err != nil {
		return "", err
	}
	db.logger.LogAttrs(ctx, slog.LevelInfo, "exported user database", slog.String("path", exportPath))
	return exportPath, nil
}

func (db *Database) copyUser(ctx context.Context, conn *sql.Conn, userID string) error {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer db.rollback(ctx, tx)

	if err = validateUsersTable(ctx, tx); err != nil {
		return err
	}
	tables, err := userTables(ctx, tx)
	if err != nil {
		return errors.Wrap(err, "find user tables")
	}
	for _, table := range tables {
		if err = copyTableSchema(ctx, tx, table.name); err != nil {
			return errors.Wrap(err, "copy table schema", slog.String("table", table.name))
		}
		query := fmt.Sprintf(`INSERT INTO export."%s" SELECT * FROM main."%s" WHERE "%s" = ?`,
			table.name, table.name, table.userColumn)
		if _, err = tx.ExecContext(ctx, query, userID); err != nil {
			return errors.Wrap(err, "copy table data", slog.String("table", table.name))
		}
	}
	if _, err = tx.ExecContext(ctx, `UPDATE export.users SET password_hash = ''`); err != nil {
		return errors.Wrap(err, "blank password hash")
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit export database")
	}
	return nil
}

func validateUsersTable(ctx context.Context, tx *sql.Tx) error {
	var count int
	query := `SELECT COUNT(*) FROM main.sqlite_schema WHERE type = 'table' AND name = ?`
	if err := tx.QueryRowContext(ctx, query, usersTableName).Scan(&count); err != nil {
		return errors.Wrap(err, "check users table existence")
	}
	if count == 0 {
		return ErrNoUsersTable
	}
	return nil
}

// userTable is a table and the column that holds users.id.
type userTable struct {
	name       string
	userColumn string
}

// userTables lists users first and then every table with a foreign key to users(id).
func userTables(ctx context.Context, tx *sql.Tx) ([]userTable, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT s.name, fk."from"
		FROM main.sqlite_schema s, pragma_foreign_key_list(s.name) fk
		WHERE s.type = 'table' AND s.name != ? AND fk."table" = ? AND fk."to" = 'id'
		ORDER BY s.name`, usersTableName, usersTableName)
	if err != nil {
		return nil, errors.Wrap(err, "query foreign keys")
	}
	defer rows.Close()

	tables := []userTable{{name: usersTableName, userColumn: "id"}}
	for rows.Next() {
		var t userTable
		if err = rows.Scan(&t.name, &t.userColumn); err != nil {
			return nil, errors.Wrap(err, "scan foreign key")
		}
		tables = append(tables, t)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate foreign keys")
	}
	return tables, nil
}

// copyTableSchema creates table in the export database with the definition it has in main.
func copyTableSchema(ctx context.Context, tx *sql.Tx, table string) error {
	var createSQL string
	query := `SELECT sql FROM main.sqlite_schema WHERE type = 'table' AND name = ?`
	if err := tx.QueryRowContext(ctx, query, table).Scan(&createSQL); err != nil {
		return errors.Wrap(err, "get table definition")
	}
	columns := strings.Index(createSQL, "(")
	if columns < 0 {
		return errors.Wrap(errors.New("table definition without columns"), "parse table definition",
			slog.String("sql", createSQL))
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`CREATE TABLE export."%s" %s`, table, createSQL[columns:])); err != nil {
		return errors.Wrap(err, "create table in export database")
	}
	return nil
}
