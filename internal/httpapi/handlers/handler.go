package handlers

import (
	"gorm.io/gorm"

	"github.com/suPer8Hu/debate-platform/internal/config"
	"github.com/suPer8Hu/debate-platform/internal/debate"
	"github.com/suPer8Hu/debate-platform/internal/store/rabbitmq"
)

// Handler glues HTTP to the debate service. The provider chain is built
// once in main and injected through the service; handlers never pick
// providers themselves.
type Handler struct {
	DB        *gorm.DB
	Cfg       config.Config
	DebateSvc *debate.Service
	Publisher *rabbitmq.Publisher
}

func NewHandler(db *gorm.DB, cfg config.Config, svc *debate.Service, pub *rabbitmq.Publisher) *Handler {
	return &Handler{DB: db, Cfg: cfg, DebateSvc: svc, Publisher: pub}
}
