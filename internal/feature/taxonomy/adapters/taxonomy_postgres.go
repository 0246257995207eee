// Package adapters はtaxonomyフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"plantsight_backend/internal/feature/taxonomy/domain/entity"
	"plantsight_backend/internal/feature/taxonomy/usecase"
)

// entryPostgres はEntryRepositoryインターフェースのGORM実装です。
type entryPostgres struct {
	db *gorm.DB
}

// entryPostgresがEntryRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.EntryRepository = (*entryPostgres)(nil)

// NewEntryRepository は指定されたgorm.DB接続でentryPostgresの新しいインスタンスを生成します。
func NewEntryRepository(db *gorm.DB) *entryPostgres {
	return &entryPostgres{db: db}
}

// EntryModel はtaxonomy_entriesテーブルの行を表します。
type EntryModel struct {
	ID      uint   `gorm:"primaryKey"`
	Label   string `gorm:"size:128;not null;uniqueIndex"`
	Crop    string `gorm:"size:64;not null;index"`
	Disease string `gorm:"size:128;not null"`

	RemedyCultural   string `gorm:"type:text;not null"`
	RemedyBiological string `gorm:"type:text;not null"`
	RemedyChemical   string `gorm:"type:text;not null"`
}

func (EntryModel) TableName() string {
	return "taxonomy_entries"
}

func toModel(e entity.Entry) EntryModel {
	return EntryModel{
		Label:            e.Label,
		Crop:             e.Crop,
		Disease:          e.Disease,
		RemedyCultural:   e.Remedy.Cultural,
		RemedyBiological: e.Remedy.Biological,
		RemedyChemical:   e.Remedy.Chemical,
	}
}

func toEntity(m EntryModel) entity.Entry {
	return entity.Entry{
		Label:   m.Label,
		Crop:    m.Crop,
		Disease: m.Disease,
		Remedy: entity.Remedy{
			Cultural:   m.RemedyCultural,
			Biological: m.RemedyBiological,
			Chemical:   m.RemedyChemical,
		},
	}
}

// FindAll は登録済みの全エントリをラベル順で取得します。
func (r *entryPostgres) FindAll(ctx context.Context) ([]entity.Entry, error) {
	var rows []EntryModel
	if err := r.db.WithContext(ctx).Order("label ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Entry, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}

// UpsertBatch はラベルをキーにエントリを挿入または更新します。
func (r *entryPostgres) UpsertBatch(ctx context.Context, entries []entity.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	ms := make([]EntryModel, 0, len(entries))
	for _, e := range entries {
		ms = append(ms, toModel(e))
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "label"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"crop", "disease", "remedy_cultural", "remedy_biological", "remedy_chemical",
		}),
	}).Create(&ms).Error
}
