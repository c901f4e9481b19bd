package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/robfig/cron/v3"
)

const defaultPostgresPort = 5432

// PostgresURL renders the DB_* settings as a postgres:// connection string.
func (d DatabaseConfig) PostgresURL() string {
	host := d.Host
	if host == "" {
		host = "localhost"
	}
	port := d.Port
	if port == 0 {
		port = defaultPostgresPort
	}
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   "/" + d.Name,
	}
	switch {
	case d.User != "" && d.Password != "":
		u.User = url.UserPassword(d.User, d.Password)
	case d.User != "":
		u.User = url.User(d.User)
	}
	return u.String()
}

// PostgresConfig parses the connection settings without dialing.
func (d DatabaseConfig) PostgresConfig() (*pgx.ConnConfig, error) {
	if d.Type != DBPostgreSQL {
		return nil, fmt.Errorf("db type is %q, not %q", d.Type, DBPostgreSQL)
	}
	cc, err := pgx.ParseConfig(d.PostgresURL())
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	return cc, nil
}

// BackupSchedule returns the backup cadence, or false when backups are off.
func (d DatabaseConfig) BackupSchedule() (cron.Schedule, bool) {
	if !d.EnablePersistence || !d.EnableBackups || d.BackupIntervalHours <= 0 {
		return nil, false
	}
	return cron.Every(time.Duration(d.BackupIntervalHours) * time.Hour), true
}
