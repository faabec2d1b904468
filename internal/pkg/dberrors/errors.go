package dberrors

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.mongodb.org/mongo-driver/mongo"
)

const pgUniqueViolation = "23505"

// IsDuplicateConstraintError checks if the error is a PostgreSQL unique violation error
// for a specific constraint.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == constraintName
}

// PgDuplicateConstraint returns the violated constraint name when err is a
// PostgreSQL unique violation.
func PgDuplicateConstraint(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return pgErr.ConstraintName, true
	}
	return "", false
}

// IsPgNoRows reports whether err is pgx's no-rows error
func IsPgNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// MongoDuplicateIndex returns the name of the unique index that rejected a write,
// when err is a MongoDB duplicate key error (code 11000).
func MongoDuplicateIndex(err error) (string, bool) {
	if !mongo.IsDuplicateKeyError(err) {
		return "", false
	}

	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return indexFromMessage(e.Message), true
			}
		}
	}

	var ce mongo.CommandError
	if errors.As(err, &ce) {
		return indexFromMessage(ce.Message), true
	}

	return indexFromMessage(err.Error()), true
}

// IsMongoNoDocuments reports whether err is the driver's not-found error
func IsMongoNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// indexFromMessage extracts the index name from a server message such as
// "E11000 duplicate key error collection: db.students index: registration_number_1 dup key: ...".
func indexFromMessage(msg string) string {
	const marker = "index: "
	i := strings.Index(msg, marker)
	if i < 0 {
		return ""
	}
	rest := msg[i+len(marker):]
	if j := strings.IndexByte(rest, ' '); j >= 0 {
		rest = rest[:j]
	}
	return rest
}
