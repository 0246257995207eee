// Package adapters はscansフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	detectionentity "plantsight_backend/internal/feature/detection/domain/entity"
	"plantsight_backend/internal/feature/scans/domain/entity"
	"plantsight_backend/internal/feature/scans/usecase"
)

// scanPostgres はScanRepositoryインターフェースのGORM実装です。
type scanPostgres struct {
	db *gorm.DB
}

// scanPostgresがScanRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.ScanRepository = (*scanPostgres)(nil)

// NewScanRepository は指定されたgorm.DB接続でscanPostgresの新しいインスタンスを生成します。
func NewScanRepository(db *gorm.DB) *scanPostgres {
	return &scanPostgres{db: db}
}

// ScanModel はscansテーブルの行を表します。
// FindingsはJSONとしてシリアライズされます。
type ScanModel struct {
	ID              string `gorm:"primaryKey;size:36"`
	UserID          uint   `gorm:"not null;index"`
	Accepted        bool   `gorm:"not null"`
	TopLabel        string `gorm:"size:128"`
	TopConfidence   float32
	RejectionReason string    `gorm:"size:255"`
	Findings        string    `gorm:"type:text"`
	CreatedAt       time.Time `gorm:"not null;index"`
}

func (ScanModel) TableName() string {
	return "scans"
}

func toModel(s *entity.Scan) (ScanModel, error) {
	findings, err := json.Marshal(s.Findings)
	if err != nil {
		return ScanModel{}, fmt.Errorf("marshal findings: %w", err)
	}
	return ScanModel{
		ID:              s.ID,
		UserID:          s.UserID,
		Accepted:        s.Accepted,
		TopLabel:        s.TopLabel,
		TopConfidence:   s.TopConfidence,
		RejectionReason: s.RejectionReason,
		Findings:        string(findings),
		CreatedAt:       s.CreatedAt,
	}, nil
}

func toEntity(m ScanModel) (entity.Scan, error) {
	var findings []detectionentity.Finding
	if m.Findings != "" {
		if err := json.Unmarshal([]byte(m.Findings), &findings); err != nil {
			return entity.Scan{}, fmt.Errorf("unmarshal findings: %w", err)
		}
	}
	return entity.Scan{
		ID:              m.ID,
		UserID:          m.UserID,
		Accepted:        m.Accepted,
		TopLabel:        m.TopLabel,
		TopConfidence:   m.TopConfidence,
		RejectionReason: m.RejectionReason,
		Findings:        findings,
		CreatedAt:       m.CreatedAt,
	}, nil
}

// Create はスキャン記録をデータベースに追加します。
func (r *scanPostgres) Create(ctx context.Context, scan *entity.Scan) error {
	m, err := toModel(scan)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(&m).Error
}

// FindByUser はユーザーのスキャン記録を新しい順で取得します。
func (r *scanPostgres) FindByUser(ctx context.Context, userID uint, limit int) ([]entity.Scan, error) {
	var rows []ScanModel
	q := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Scan, 0, len(rows))
	for _, m := range rows {
		s, err := toEntity(m)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// FindByID はIDとユーザーIDの両方に一致するスキャン記録を取得します。
func (r *scanPostgres) FindByID(ctx context.Context, userID uint, id string) (*entity.Scan, error) {
	var m ScanModel
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrScanNotFound
		}
		return nil, err
	}
	s, err := toEntity(m)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
