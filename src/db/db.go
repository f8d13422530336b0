package db

import (
	"log/slog"
	"ticketeira/src/config"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

func GetDb() *gorm.DB {
	if db != nil {
		return db
	}
	_db, err := gorm.Open(postgres.Open(config.GetDSN()), &gorm.Config{
		TranslateError: true,
	})
	if err != nil {
		slog.Error("Error connecting to database", "error", err.Error())
		panic(err)
	}
	sqlDB, err := _db.DB()
	if err != nil {
		slog.Error("Error establishing connection to database", "error", err.Error())
		panic(err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	db = _db
	return _db
}

func NewDB(newdb *gorm.DB) {
	db = newdb
}
