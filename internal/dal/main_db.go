package dal

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"donation-settle-api/internal/config"
	mainmodel "donation-settle-api/internal/model/main"
	ordermodel "donation-settle-api/internal/model/order"
)

var MainDB *gorm.DB

func InitMainDB() {
	c := config.C.Mysql
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=True&loc=UTC",
		c.Username, c.Password, c.Host, c.Port, c.Database, c.Charset)
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormLogLevel(c.LogLevel),
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         newLogger,
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("connect main db failed: %v", err)
	}
	sqlDB, _ := db.DB()
	sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(2 * time.Hour)

	if c.AutoMigrate {
		if err := Migrate(db); err != nil {
			log.Fatalf("migrate main db failed: %v", err)
		}
	}
	MainDB = db
}

// Migrate 创建或更新服务使用的所有表
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&mainmodel.Organization{},
		&mainmodel.Connection{},
		&mainmodel.SplitProposal{},
		&mainmodel.DistributionConfig{},
		&mainmodel.DistributionEntry{},
		&mainmodel.SysConfig{},
		&ordermodel.Donation{},
		&ordermodel.Transfer{},
		&ordermodel.SettlementEvent{},
	)
}

func gormLogLevel(s string) logger.LogLevel {
	switch strings.ToLower(s) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	}
	return logger.Warn
}
