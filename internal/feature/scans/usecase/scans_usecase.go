// Package usecase はscansフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	detectionentity "plantsight_backend/internal/feature/detection/domain/entity"
	"plantsight_backend/internal/feature/scans/domain/entity"
)

const (
	// DefaultListLimit は履歴一覧のデフォルト取得件数です。
	DefaultListLimit = 20
	// MaxListLimit は履歴一覧の最大取得件数です。
	MaxListLimit = 100
)

// ScanRepository はスキャン記録の永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type ScanRepository interface {
	// Create は新しいスキャン記録を永続化します。
	Create(ctx context.Context, scan *entity.Scan) error

	// FindByUser はユーザーのスキャン記録を新しい順で取得します。
	FindByUser(ctx context.Context, userID uint, limit int) ([]entity.Scan, error)

	// FindByID はIDとユーザーIDの両方に一致するスキャン記録を取得します。
	// 一致しない場合、ErrScanNotFoundを返します。
	FindByID(ctx context.Context, userID uint, id string) (*entity.Scan, error)
}

// scansUsecase はスキャン履歴のビジネスロジックを提供します。
type scansUsecase struct {
	scans ScanRepository
}

// NewScansUsecase はscansUsecaseの新しいインスタンスを生成します。
func NewScansUsecase(scans ScanRepository) *scansUsecase {
	return &scansUsecase{scans: scans}
}

// Record は判定結果をユーザーのスキャン履歴として記録します。
func (u *scansUsecase) Record(ctx context.Context, userID uint, verdict *detectionentity.Verdict) (*entity.Scan, error) {
	scan := &entity.Scan{
		ID:              uuid.NewString(),
		UserID:          userID,
		Accepted:        verdict.Accepted,
		RejectionReason: verdict.RejectionReason,
		Findings:        verdict.Findings,
		CreatedAt:       time.Now().UTC(),
	}
	if len(verdict.Findings) > 0 {
		scan.TopLabel = verdict.Findings[0].Detection.Label
		scan.TopConfidence = verdict.Findings[0].Detection.Confidence
	}
	if err := u.scans.Create(ctx, scan); err != nil {
		return nil, fmt.Errorf("failed to record scan: %w", err)
	}
	return scan, nil
}

// List はユーザーのスキャン履歴を新しい順で返します。
func (u *scansUsecase) List(ctx context.Context, userID uint, limit int) ([]entity.Scan, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return u.scans.FindByUser(ctx, userID, limit)
}

// Summary はスキャン1件のダウンロード用テキストサマリーを生成します。
func (u *scansUsecase) Summary(ctx context.Context, userID uint, id string) (string, error) {
	scan, err := u.scans.FindByID(ctx, userID, id)
	if err != nil {
		return "", err
	}
	return renderSummary(scan), nil
}

// renderSummary はスキャン記録をプレーンテキストに整形します。
func renderSummary(scan *entity.Scan) string {
	var b strings.Builder
	b.WriteString("Plant Sight result\n")
	fmt.Fprintf(&b, "Scanned: %s\n", scan.CreatedAt.Format(time.RFC3339))

	if !scan.Accepted {
		fmt.Fprintf(&b, "Verdict: rejected\nReason: %s\n", scan.RejectionReason)
		return b.String()
	}

	b.WriteString("Verdict: accepted\n")
	for i, f := range scan.Findings {
		fmt.Fprintf(&b, "%d. %s on %s (%s) confidence %.2f\n",
			i+1, f.Disease, f.Crop, f.Detection.Label, f.Detection.Confidence)
	}

	top := scan.Findings[0]
	b.WriteString("Recommended action:\n")
	fmt.Fprintf(&b, "  Cultural: %s\n", top.Remedy.Cultural)
	fmt.Fprintf(&b, "  Biological: %s\n", top.Remedy.Biological)
	fmt.Fprintf(&b, "  Chemical: %s\n", top.Remedy.Chemical)
	b.WriteString("Remedies are guidance only. Consult local extension for chemicals and dosages.\n")
	return b.String()
}
