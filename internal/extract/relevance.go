package extract

import (
	"regexp"
	"strings"

	"github.com/imyousuf/schemascan/internal/sqltext"
)

var (
	relevantPathRe = regexp.MustCompile(`(?i)(^|[/\\._-])(models?|schemas?|migrations?|seeds?|seeders?|database|db|sql|repository|repositories|dao)([/\\._-]|$)`)

	libraryContentRe = regexp.MustCompile(`(?i)\b(knex|sequelize|prisma|typeorm|mongoose|drizzle|objection|bookshelf|mikro-orm|sqlalchemy|django\.db|peewee|psycopg2?|pymysql|sqlite3|pg|mysql2?)\b`)
)

// IsRelevant decides whether a file is worth scanning: its path names a
// database-related directory or file, or its content holds an SQL keyword or a known
// database library. extraTokens are further library names, matched
// case-insensitively as substrings.
func IsRelevant(path string, content []byte, extraTokens []string) bool {
	if IsScript(path) || relevantPathRe.MatchString(path) {
		return true
	}
	if len(content) == 0 {
		return false
	}
	if sqltext.HasKeyword(content) || libraryContentRe.Match(content) {
		return true
	}
	if len(extraTokens) == 0 {
		return false
	}
	lower := strings.ToLower(string(content))
	for _, tok := range extraTokens {
		if tok != "" && strings.Contains(lower, strings.ToLower(tok)) {
			return true
		}
	}
	return false
}
