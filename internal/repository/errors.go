// Package repository implements plain-SQL data access for every entity.
// This file defines helpers shared across repositories. Sentinel values
// let handlers distinguish failure scenarios: the per-repository Conflict
// sentinels map to HTTP 409 and sql.ErrNoRows to 404. Unique index
// violations are detected here rather than by a prior existence check,
// because two concurrent writers can both pass such a check.
package repository

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// mysqlDuplicateEntry is the server error number for a unique index
// violation (ER_DUP_ENTRY).
const mysqlDuplicateEntry = 1062

// isDuplicate reports whether err is a MySQL duplicate-key error, and if
// so returns the raw server message so callers can inspect which unique
// index was violated.
func isDuplicate(err error) (string, bool) {
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		return me.Message, true
	}
	return "", false
}
