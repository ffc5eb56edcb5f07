package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/yyspencer/Fire2Scripts/internal/config"
	logging "github.com/yyspencer/Fire2Scripts/internal/logging"
	"github.com/yyspencer/Fire2Scripts/internal/models"
)

var DB *gorm.DB

func Init(log *zap.Logger) {
	var err error
	dbConf := config.Conf.Database
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		dbConf.Host, dbConf.User, dbConf.Password, dbConf.DBName, dbConf.Port, dbConf.SSLMode)

	gormLogger := logging.NewGormZapLogger(log)
	gormLogger.LogLevel = gormlogger.Warn

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})

	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}

	log.Info("Database connection established successfully.")
	runMigrations(log)
}

func runMigrations(log *zap.Logger) {
	// GORM's AutoMigrate will create tables and columns. It will NOT
	// create custom indexes, so we handle those separately.
	err := DB.AutoMigrate(
		&models.MetricRecord{},
		&models.CrisisRecord{},
	)
	if err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}
	log.Info("Database migrations completed successfully.")

	indexes := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_metric_lookup ON metric_records (participant_id, metric, segment);`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_crisis_participant ON crisis_records (participant_id);`,
	}
	for _, idx := range indexes {
		if err := DB.Exec(idx).Error; err != nil {
			log.Fatal("Failed to create custom index", zap.Error(err))
		}
	}
	log.Info("Custom indexes ensured successfully.")
}
