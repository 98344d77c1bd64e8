package db

import (
	"github.com/rs/zerolog/log"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/suPer8Hu/debate-platform/internal/debate"
	"github.com/suPer8Hu/debate-platform/internal/models"
)

// Connect opens the MySQL connection and migrates the schema. The message
// table's (conversation_id, created_at) index backs the newest-first
// retrieval the repo relies on.
func Connect(dsn string) *gorm.DB {
	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal().Err(err).Msg("db connect failed")
	}
	if err := gdb.AutoMigrate(
		&models.User{},
		&debate.Conversation{},
		&debate.Message{},
		&debate.Job{},
	); err != nil {
		log.Fatal().Err(err).Msg("db migrate failed")
	}
	return gdb
}
