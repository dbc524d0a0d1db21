package database

import (
	"fmt"
	"log"

	"studytest_backend/internal/config"
	"studytest_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")
	return db, nil
}

// Migrate 建表。答题记录内嵌整套试卷，两张表之间没有外键。
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Test{},
		&model.TestAttempt{},
	); err != nil {
		return err
	}

	log.Println("Database migration completed")
	return nil
}
