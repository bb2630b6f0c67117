package db

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

const (
	errDupEntry        = 1062
	errBadField        = 1054
	errNoSuchTable     = 1146
	errTruncatedWrong  = 1292
	errWarnDataTrunc   = 1265
	errIncorrectValue  = 1366
	errTableAccessDeny = 1142
)

func mysqlNumber(err error) uint16 {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number
	}
	return 0
}

// IsUnknownColumn: the statement referenced a column the table does not have.
func IsUnknownColumn(err error) bool {
	return mysqlNumber(err) == errBadField
}

// IsShapeMismatch: a column exists but rejects the value's type or format.
func IsShapeMismatch(err error) bool {
	switch mysqlNumber(err) {
	case errIncorrectValue, errTruncatedWrong, errWarnDataTrunc:
		return true
	}
	return false
}

func IsMissingTable(err error) bool {
	switch mysqlNumber(err) {
	case errNoSuchTable, errTableAccessDeny:
		return true
	}
	return false
}

func IsDuplicate(err error) bool {
	return mysqlNumber(err) == errDupEntry
}
