package manifest

import "strings"

var nodeLibraries = map[string]bool{
	"knex":            true,
	"sequelize":       true,
	"prisma":          true,
	"@prisma/client":  true,
	"typeorm":         true,
	"mongoose":        true,
	"drizzle-orm":     true,
	"objection":       true,
	"bookshelf":       true,
	"@mikro-orm/core": true,
	"kysely":          true,
	"slonik":          true,
	"pg":              true,
	"pg-promise":      true,
	"mysql":           true,
	"mysql2":          true,
	"sqlite3":         true,
	"better-sqlite3":  true,
	"mssql":           true,
	"oracledb":        true,
}

var pythonLibraries = map[string]bool{
	"sqlalchemy":      true,
	"sqlmodel":        true,
	"django":          true,
	"peewee":          true,
	"pony":            true,
	"tortoise-orm":    true,
	"psycopg":         true,
	"psycopg2":        true,
	"psycopg2-binary": true,
	"asyncpg":         true,
	"pymysql":         true,
	"mysqlclient":     true,
	"aiosqlite":       true,
	"records":         true,
	"databases":       true,
}

// goLibraries are module path prefixes; major-version suffixes are ignored.
var goLibraries = []string{
	"gorm.io/gorm",
	"gorm.io/driver/",
	"entgo.io/ent",
	"github.com/jmoiron/sqlx",
	"github.com/lib/pq",
	"github.com/jackc/pgx",
	"github.com/go-sql-driver/mysql",
	"github.com/mattn/go-sqlite3",
	"modernc.org/sqlite",
	"github.com/uptrace/bun",
	"github.com/Masterminds/squirrel",
	"github.com/doug-martin/goqu",
}

// IsDatabaseLibrary reports whether name is a known database driver, ORM or
// query builder in ecosystem.
func IsDatabaseLibrary(ecosystem, name string) bool {
	switch ecosystem {
	case EcosystemNode:
		return nodeLibraries[name]
	case EcosystemPython:
		return pythonLibraries[strings.ToLower(name)]
	case EcosystemGo:
		for _, prefix := range goLibraries {
			if strings.HasPrefix(name, prefix) {
				return true
			}
		}
	}
	return false
}
