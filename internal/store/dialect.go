package store

import (
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v4/stdlib"
	_ "modernc.org/sqlite"
)

// dialect captures what differs between the supported databases:
// the database/sql driver name, the DSN shape and the bind-parameter syntax.
type dialect struct {
	driver      string
	defaultPort int
	dsn         func(Config) string
	placeholder func(n int) string
}

var dialects = map[string]dialect{
	"mysql": {
		driver:      "mysql",
		defaultPort: 3306,
		dsn:         mysqlDSN,
		placeholder: func(int) string { return "?" },
	},
	"postgres": {
		driver:      "pgx",
		defaultPort: 5432,
		dsn:         postgresDSN,
		placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	},
	"sqlite": {
		driver:      "sqlite",
		dsn:         sqliteDSN,
		placeholder: func(int) string { return "?" },
	},
}

// DefaultPort returns the conventional port for driver, or 3306 for
// unknown drivers and drivers that have no network port.
func DefaultPort(driver string) int {
	if d, ok := dialects[driver]; ok && d.defaultPort != 0 {
		return d.defaultPort
	}
	return 3306
}

func mysqlDSN(cfg Config) string {
	c := mysql.NewConfig()
	c.User = cfg.User
	c.Passwd = cfg.Password
	c.Net = "tcp"
	c.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	c.DBName = cfg.Name
	c.Timeout = 5 * time.Second
	return c.FormatDSN()
}

func postgresDSN(cfg Config) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:     "/" + cfg.Name,
		RawQuery: "sslmode=disable&connect_timeout=5",
	}
	return u.String()
}

// sqliteDSN treats Name as a file path. Each pooled connection to
// ":memory:" would see its own empty database, so use a file.
func sqliteDSN(cfg Config) string {
	return "file:" + cfg.Name + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}
