package store

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"moul.io/zapgorm2"

	"github.com/wows-tools/wows-clan-sync/model"
)

// DB is the embedded clan store, backed by sqlite. It satisfies the same
// contract as the clan-store service: create reports whether a record was
// genuinely new, delete tolerates a missing record.
type DB struct {
	db     *gorm.DB
	logger *zap.SugaredLogger
}

func NewDB(path string, logger *zap.Logger) (*DB, error) {
	gormLogger := zapgorm2.New(logger)
	gormLogger.SetAsDefault()
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&model.Clan{}); err != nil {
		return nil, err
	}
	return &DB{
		db:     db,
		logger: logger.Sugar(),
	}, nil
}

func (s *DB) LookupTag(ctx context.Context, tag string) (model.Lookup, error) {
	var clan model.Clan
	err := s.db.WithContext(ctx).First(&clan, "tag = ?", tag).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Absent(), nil
	}
	if err != nil {
		return model.Lookup{}, err
	}
	return model.Present(clan), nil
}

func (s *DB) Create(ctx context.Context, clan model.Clan) (bool, error) {
	// On conflict do nothing: concurrent adds for the same clan resolve in
	// the database, and the loser sees zero affected rows.
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&clan)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *DB) Delete(ctx context.Context, clan model.Clan) error {
	return s.db.WithContext(ctx).Delete(&model.Clan{}, "id = ?", clan.ID).Error
}
