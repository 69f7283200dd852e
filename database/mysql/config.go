package mysql

import (
	"fmt"
	"time"
)

// Config represent root of mysql config
type Config struct {
	Master   connection   `yaml:"master"`
	Slaves   []connection `yaml:"slaves"`
	ConnCfg  connCfg      `yaml:"conn_cfg"`
	LogLevel int          `yaml:"log_level"`
	// AutoMigrate creates the hub tables on start.
	AutoMigrate bool `yaml:"auto_migrate"`
}

type connection struct {
	Host     string `yaml:"host"`
	Port     uint   `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	DBName   string `yaml:"db_name"`
}

type connCfg struct {
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
}

func (c connCfg) maxLifetime() time.Duration {
	if c.ConnMaxLifetime == 0 {
		return 24 * time.Hour
	}
	return c.ConnMaxLifetime
}

func (c connCfg) maxIdleTime() time.Duration {
	if c.ConnMaxIdleTime == 0 {
		return time.Hour
	}
	return c.ConnMaxIdleTime
}

func (c connection) dsn() string {
	return fmt.Sprintf(dsnTemplate, c.Username, c.Password, c.Host, c.Port, c.DBName)
}
