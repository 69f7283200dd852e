package mysql

import (
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"

	"github.com/varunguleriaCodes/DeWebStatus/database/orm"
)

// clientFoundRows makes RowsAffected count matched rows, which the guarded
// updates in the ledger depend on. READ COMMITTED keeps gap locks off the
// ticks table.
const dsnTemplate = "%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC" +
	"&clientFoundRows=true&transaction_isolation=%%27READ-COMMITTED%%27"

// NewMySQLDB create the mysql master/slaves cluster
func NewMySQLDB(cfg Config) (*gorm.DB, error) {
	masterDSN := cfg.Master.dsn()
	var slaveDSNs []gorm.Dialector
	for _, slave := range cfg.Slaves {
		slaveDSNs = append(slaveDSNs, mysql.Open(slave.dsn()))
	}

	db, err := gorm.Open(mysql.Open(masterDSN), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.LogLevel(cfg.LogLevel)),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, errors.Wrap(err, "open master mysql")
	}

	dbResolverCfg := dbresolver.Config{
		Sources:  []gorm.Dialector{mysql.Open(masterDSN)},
		Replicas: slaveDSNs,
		Policy:   dbresolver.RandomPolicy{}}
	if err := db.Use(dbresolver.Register(dbResolverCfg).
		SetConnMaxIdleTime(cfg.ConnCfg.maxIdleTime()).
		SetConnMaxLifetime(cfg.ConnCfg.maxLifetime()).
		SetMaxIdleConns(cfg.ConnCfg.MaxIdleConns).
		SetMaxOpenConns(cfg.ConnCfg.MaxOpenConns),
	); err != nil {
		return nil, errors.Wrap(err, "register db resolver")
	}

	if cfg.AutoMigrate {
		if err := orm.AutoMigrate(db); err != nil {
			return nil, errors.Wrap(err, "migrate tables")
		}
	}

	return db, nil
}
