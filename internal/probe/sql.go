package probe

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"

	"github.com/systmms/credrotate/internal/config"
	"github.com/systmms/credrotate/internal/credential"
)

// DefaultTimeout bounds a single connection attempt
const DefaultTimeout = 10 * time.Second

// SQLPinger is the part of *sql.DB the probe needs.
type SQLPinger interface {
	PingContext(ctx context.Context) error
	Close() error
}

// OpenFunc opens a database handle for a driver and DSN.
type OpenFunc func(driver, dsn string) (SQLPinger, error)

func openSQL(driver, dsn string) (SQLPinger, error) {
	return sql.Open(driver, dsn)
}

// SQLOption configures an SQL prober
type SQLOption func(*SQL)

// WithOpener replaces sql.Open, mainly for tests.
func WithOpener(open OpenFunc) SQLOption {
	return func(s *SQL) {
		s.open = open
	}
}

// WithTimeout overrides DefaultTimeout
func WithTimeout(d time.Duration) SQLOption {
	return func(s *SQL) {
		s.timeout = d
	}
}

// SQL logs in to a PostgreSQL or MySQL database with the pending credential.
type SQL struct {
	cfg     config.ValidationConfig
	open    OpenFunc
	timeout time.Duration
}

// NewSQL creates an SQL prober
func NewSQL(cfg config.ValidationConfig, opts ...SQLOption) *SQL {
	s := &SQL{
		cfg:     cfg,
		open:    openSQL,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name implements Prober
func (s *SQL) Name() string { return s.cfg.Engine }

// Probe opens a connection as rec and pings it.
func (s *SQL) Probe(ctx context.Context, rec credential.Record) error {
	driver, dsn, err := s.dsn(rec)
	if err != nil {
		return err
	}

	db, err := s.open(driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to open %s connection to %s: %w", s.cfg.Engine, s.address(), err)
	}
	defer func() { _ = db.Close() }()

	pingCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("pending credential for user %s rejected by %s at %s: %w",
			rec.Username, s.cfg.Engine, s.address(), err)
	}
	return nil
}

func (s *SQL) address() string {
	return net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
}

// dsn builds the driver name and connection string for rec.
func (s *SQL) dsn(rec credential.Record) (string, string, error) {
	switch s.cfg.Engine {
	case "postgres", "postgresql":
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(rec.Username, rec.PasswordString()),
			Host:   s.address(),
			Path:   "/" + s.cfg.Database,
		}
		q := url.Values{}
		sslMode := s.cfg.SSLMode
		if sslMode == "" {
			sslMode = "require"
		}
		q.Set("sslmode", sslMode)
		q.Set("connect_timeout", strconv.Itoa(int(s.timeout.Seconds())))
		u.RawQuery = q.Encode()
		return "postgres", u.String(), nil

	case "mysql", "mariadb":
		mc := mysql.NewConfig()
		mc.User = rec.Username
		mc.Passwd = rec.PasswordString()
		mc.Net = "tcp"
		mc.Addr = s.address()
		mc.DBName = s.cfg.Database
		mc.Timeout = s.timeout
		if s.cfg.SSLMode != "" && s.cfg.SSLMode != "disable" {
			mc.TLSConfig = "true"
		}
		return "mysql", mc.FormatDSN(), nil

	default:
		return "", "", fmt.Errorf("unsupported probe engine %q", s.cfg.Engine)
	}
}
