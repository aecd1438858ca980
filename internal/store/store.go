package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// ErrNotFound is returned by GetEmployee when no row has the requested id.
var ErrNotFound = errors.New("employee not found")

// Employee is one row of the employee table.
type Employee struct {
	ID           string `json:"emp_id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	PrimarySkill string `json:"primary_skill"`
	Location     string `json:"location"`
}

// DisplayName returns "First Last".
func (this Employee) DisplayName() string {
	return this.FirstName + " " + this.LastName
}

// Config describes the database connection and pool bounds.
type Config struct {
	Driver          string        `yaml:"driver"            validate:"oneof=mysql postgres sqlite"`
	Host            string        `yaml:"host"              validate:"required_unless=Driver sqlite"`
	Port            int           `yaml:"-"                 validate:"gte=0,lte=65535"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Name            string        `yaml:"name"              validate:"required"`
	MaxOpenConns    int           `yaml:"max_open_conns"    validate:"min=1"`
	MaxIdleConns    int           `yaml:"max_idle_conns"    validate:"min=0,ltefield=MaxOpenConns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	CreateSchema    bool          `yaml:"create_schema"`
}

// Store is the only component that talks SQL. It wraps a bounded,
// concurrency-safe connection pool; connections that fail are dropped by
// the pool and replaced on the next checkout.
type Store struct {
	cfg       Config
	db        *sql.DB
	insertSQL string
	selectSQL string
}

// Open creates the pool for cfg.Driver and verifies it with a ping.
// With cfg.CreateSchema set, the employee table is created if missing.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	d, ok := dialects[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := sql.Open(d.driver, d.dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to %s database %q: %w", cfg.Driver, cfg.Name, err)
	}

	this := &Store{
		cfg: cfg,
		db:  db,
		insertSQL: fmt.Sprintf(
			"INSERT INTO employee (emp_id, first_name, last_name, primary_skill, location) VALUES (%s, %s, %s, %s, %s)",
			d.placeholder(1), d.placeholder(2), d.placeholder(3), d.placeholder(4), d.placeholder(5)),
		selectSQL: fmt.Sprintf(
			"SELECT emp_id, first_name, last_name, primary_skill, location FROM employee WHERE emp_id = %s",
			d.placeholder(1)),
	}

	if cfg.CreateSchema {
		if err := this.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}
	return this, nil
}

// EnsureSchema creates the employee table if it does not exist.
func (this *Store) EnsureSchema(ctx context.Context) error {
	const ddl = `CREATE TABLE IF NOT EXISTS employee (
	emp_id        VARCHAR(20) NOT NULL,
	first_name    VARCHAR(20),
	last_name     VARCHAR(20),
	primary_skill VARCHAR(20),
	location      VARCHAR(20),
	PRIMARY KEY (emp_id)
)`
	if _, err := this.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create employee table: %w", err)
	}
	return nil
}

// AddEmployee inserts e and returns its display name. The statement runs
// in autocommit mode, so the row is committed when this returns nil.
func (this *Store) AddEmployee(ctx context.Context, e Employee) (string, error) {
	_, err := this.db.ExecContext(ctx, this.insertSQL,
		e.ID, e.FirstName, e.LastName, e.PrimarySkill, e.Location)
	if err != nil {
		return "", fmt.Errorf("insert employee %q: %w", e.ID, err)
	}
	return e.DisplayName(), nil
}

// GetEmployee looks up one employee by id. It returns ErrNotFound when
// there is no such row.
func (this *Store) GetEmployee(ctx context.Context, id string) (Employee, error) {
	var e Employee
	var first, last, skill, location sql.NullString
	err := this.db.QueryRowContext(ctx, this.selectSQL, id).
		Scan(&e.ID, &first, &last, &skill, &location)
	if errors.Is(err, sql.ErrNoRows) {
		return Employee{}, fmt.Errorf("employee %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return Employee{}, fmt.Errorf("select employee %q: %w", id, err)
	}
	e.FirstName = first.String
	e.LastName = last.String
	e.PrimarySkill = skill.String
	e.Location = location.String
	return e, nil
}

// Ping checks out a connection and verifies it is alive.
func (this *Store) Ping(ctx context.Context) error {
	return this.db.PingContext(ctx)
}

// StatsCollector exposes the pool statistics as Prometheus metrics.
func (this *Store) StatsCollector() prometheus.Collector {
	return collectors.NewDBStatsCollector(this.db, this.cfg.Name)
}

// Close closes the pool.
func (this *Store) Close() error {
	return this.db.Close()
}
