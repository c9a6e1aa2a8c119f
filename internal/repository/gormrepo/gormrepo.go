// Package gormrepo implements the repository interfaces on top of gorm. The
// same code serves the mysql, postgres and sqlite dialects.
package gormrepo

import (
	"errors"
	"strings"

	"market-service/internal/repository"

	"gorm.io/gorm"
)

func notFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// translate maps dialect errors onto repository sentinels. The connection
// must be opened with TranslateError enabled.
func translate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return repository.ErrDuplicate
	}
	return err
}

// likeEscape is the LIKE escape character. A backslash would need
// dialect-specific quoting in mysql.
const likeEscape = "!"

var likeEscaper = strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")

// likePattern matches s as a literal substring when bound to a likeAny clause.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}

// likeAny ORs a case-insensitive LIKE over columns, one placeholder each.
func likeAny(columns ...string) string {
	clauses := make([]string, len(columns))
	for i, c := range columns {
		clauses[i] = "LOWER(" + c + ") LIKE ? ESCAPE '" + likeEscape + "'"
	}
	return "(" + strings.Join(clauses, " OR ") + ")"
}

func paginate(offset, limit int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(offset).Limit(limit)
	}
}
