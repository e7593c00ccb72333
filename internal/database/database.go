package database

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	gormsqlite "gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite"

	"hotelbooking/internal/domain"
)

const (
	DialectPostgres = "postgres"
	DialectMySQL    = "mysql"
	DialectSQLite   = "sqlite"
)

type Options struct {
	LogLevel logger.LogLevel
	Logger   *slog.Logger
}

// Connect picks the dialector from the DSN: postgres:// and postgresql:// go to
// PostgreSQL, mysql:// to MySQL, anything else is treated as a SQLite path.
func Connect(dsn string, opts ...Options) (*gorm.DB, error) {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.LogLevel == 0 {
		o.LogLevel = logger.Warn
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	cfg := &gorm.Config{
		Logger: logger.New(slog.NewLogLogger(o.Logger.Handler(), slog.LevelWarn), logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  o.LogLevel,
			IgnoreRecordNotFoundError: true,
		}),
		NowFunc: func() time.Time { return domain.NormalizeTime(time.Now()) },
	}

	switch DialectOf(dsn) {
	case DialectPostgres:
		o.Logger.Info("connecting to PostgreSQL")
		return gorm.Open(postgres.Open(dsn), cfg)
	case DialectMySQL:
		mysqlDSN, err := mysqlDSNFromURL(dsn)
		if err != nil {
			return nil, err
		}
		o.Logger.Info("connecting to MySQL")
		return gorm.Open(mysql.Open(mysqlDSN), cfg)
	default:
		o.Logger.Info("using SQLite", "dsn", dsn)
		return gorm.Open(
			gormsqlite.New(gormsqlite.Config{
				DriverName: "sqlite",
				DSN:        dsn,
			}),
			cfg,
		)
	}
}

func DialectOf(dsn string) string {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return DialectPostgres
	case strings.HasPrefix(dsn, "mysql://"):
		return DialectMySQL
	default:
		return DialectSQLite
	}
}

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	if q.Get("loc") == "" {
		q.Set("loc", "UTC")
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode()), nil
}
