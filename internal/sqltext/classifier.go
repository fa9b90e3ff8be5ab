// Package sqltext holds the heuristics that decide whether a string is SQL and
// which statement kind and table it names.
package sqltext

import (
	"regexp"
	"strings"
)

// Kind is the statement kind of a database operation.
type Kind string

const (
	Select Kind = "SELECT"
	Insert Kind = "INSERT"
	Update Kind = "UPDATE"
	Delete Kind = "DELETE"
	Upsert Kind = "UPSERT"
	Create Kind = "CREATE"
	Alter  Kind = "ALTER"
	Drop   Kind = "DROP"
)

// UnknownTable is the table name used when extraction fails.
const UnknownTable = "unknown"

// Statement is the result of classifying a piece of SQL text.
type Statement struct {
	Kind  Kind
	Table string
}

// IsFallback reports whether the statement is the default SELECT with no table,
// the result produced for text that matched no statement prefix.
func (s Statement) IsFallback() bool {
	return s.Kind == Select && s.Table == UnknownTable
}

// sqlKeywords are tested as substrings, not tokens.
var sqlKeywords = []string{
	"SELECT", "INSERT", "UPDATE", "DELETE", "CREATE", "ALTER", "DROP", "FROM", "WHERE", "JOIN",
}

// keywordWordRe matches any of sqlKeywords as a whole word, in any case.
var keywordWordRe = regexp.MustCompile(`(?i)\b(?:` + strings.Join(sqlKeywords, "|") + `)\b`)

// prefixOrder is the priority in which statement prefixes are tested.
var prefixOrder = []Kind{Select, Insert, Update, Delete, Create, Alter, Drop}

var (
	fromRe   = regexp.MustCompile(`(?i)FROM\s+(\w+)`)
	intoRe   = regexp.MustCompile(`(?i)INTO\s+(\w+)`)
	updateRe = regexp.MustCompile(`(?i)^UPDATE\s+(\w+)`)
	createRe = regexp.MustCompile(`(?i)CREATE\s+(?:TABLE|VIEW)\s+(\w+)`)
	alterRe  = regexp.MustCompile(`(?i)ALTER\s+(?:TABLE|VIEW)\s+(\w+)`)
	dropRe   = regexp.MustCompile(`(?i)DROP\s+(?:TABLE|VIEW)\s+(\w+)`)
	viewRe   = regexp.MustCompile(`(?i)CREATE\s+VIEW\s+(\w+)`)
)

// LooksLikeSQL reports whether text contains any SQL keyword, case-insensitively.
// Identifiers that merely contain a keyword (lastUpdated, fromDate) also match.
func LooksLikeSQL(text string) bool {
	upper := strings.ToUpper(text)
	for _, kw := range sqlKeywords {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}

// HasKeyword reports whether content contains an SQL keyword as a whole word,
// case-insensitively. Unlike LooksLikeSQL, identifiers such as fromDate do not
// count.
func HasKeyword(content []byte) bool {
	return keywordWordRe.Match(content)
}

// Classify picks the statement kind from the leading keyword of text and
// extracts the table it names. Text with no recognised prefix is a SELECT on
// the unknown table.
func Classify(text string) Statement {
	trimmed := strings.TrimSpace(text)
	upper := strings.ToUpper(trimmed)

	for _, kind := range prefixOrder {
		if strings.HasPrefix(upper, string(kind)) {
			return Statement{Kind: kind, Table: TableFor(kind, trimmed)}
		}
	}
	return Statement{Kind: Select, Table: UnknownTable}
}

// TableFor runs the table extraction rule of the given kind against text.
func TableFor(kind Kind, text string) string {
	switch kind {
	case Select, Delete:
		return FromTable(text)
	case Insert:
		return IntoTable(text)
	case Update:
		return UpdateTable(text)
	case Create:
		return CreateTable(text)
	case Alter:
		return AlterTable(text)
	case Drop:
		return DropTable(text)
	default:
		return UnknownTable
	}
}

// FromTable extracts the identifier following FROM.
func FromTable(text string) string { return firstGroup(fromRe, text) }

// IntoTable extracts the identifier following INTO.
func IntoTable(text string) string { return firstGroup(intoRe, text) }

// UpdateTable extracts the identifier following a leading UPDATE.
func UpdateTable(text string) string { return firstGroup(updateRe, strings.TrimSpace(text)) }

// CreateTable extracts the name in CREATE TABLE or CREATE VIEW.
func CreateTable(text string) string { return firstGroup(createRe, text) }

// AlterTable extracts the name in ALTER TABLE or ALTER VIEW.
func AlterTable(text string) string { return firstGroup(alterRe, text) }

// DropTable extracts the name in DROP TABLE or DROP VIEW.
func DropTable(text string) string { return firstGroup(dropRe, text) }

// CreatedView returns the view name defined by a CREATE VIEW statement in text.
func CreatedView(text string) (string, bool) {
	m := viewRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// SplitStatements splits content on statement terminators, dropping empty
// segments. Semicolons inside string literals are not special-cased.
func SplitStatements(content string) []string {
	parts := strings.Split(content, ";")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

func firstGroup(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return UnknownTable
	}
	return m[1]
}
