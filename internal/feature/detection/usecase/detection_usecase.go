// Package usecase はdetectionフィーチャーのビジネスロジックを実装します。
// 外部検出モデルの結果を信頼度とタクソノミーでゲーティングし、
// 受理された検出に対処法を紐付けます。
package usecase

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sort"
	"strconv"

	"plantsight_backend/internal/feature/detection/domain/entity"
	taxonomyentity "plantsight_backend/internal/feature/taxonomy/domain/entity"
)

const (
	// MaxImageSize は画像アップロードの最大サイズ（10MB）です。
	MaxImageSize = 10 * 1024 * 1024

	// DefaultConfidenceThreshold は検出を受理する信頼度の既定の下限値です。
	// DETECT_CONF_THRESHOLD 環境変数で上書きできます。
	DefaultConfidenceThreshold = 0.70

	// RejectionMessage はタクソノミー外の画像に対する固定の拒否メッセージです。
	RejectionMessage = "This app is only designed for crop disease detection."
)

// supportedContentTypes はアップロードとして受け付ける画像形式です。
var supportedContentTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

// Detector は画像から物体を検出するリポジトリインターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type Detector interface {
	// Detect は画像バイト列から検出結果を返します。検出順は保持されます。
	Detect(ctx context.Context, imageData []byte) ([]entity.Detection, error)
}

// TaxonomyIndex はサポート対象タクソノミーの読み取り専用ルックアップです。
type TaxonomyIndex interface {
	Lookup(label string) (taxonomyentity.Entry, bool)
}

// RejectArchiver は拒否された画像をレビュー用に保存します。
// 保存はベストエフォートで、失敗しても判定処理は継続します。
type RejectArchiver interface {
	Archive(imageData []byte, reason string)
}

// detectionUsecase は推論ゲートと対処法解決のビジネスロジックを提供します。
type detectionUsecase struct {
	detector  Detector
	taxonomy  TaxonomyIndex
	archiver  RejectArchiver
	threshold float32
}

// NewDetectionUsecase はdetectionUsecaseの新しいインスタンスを生成します。
// archiverはnil可（拒否画像の保存を行わない）。
func NewDetectionUsecase(d Detector, idx TaxonomyIndex, archiver RejectArchiver, threshold float32) *detectionUsecase {
	if threshold <= 0 || threshold > 1 {
		threshold = DefaultConfidenceThreshold
	}
	return &detectionUsecase{detector: d, taxonomy: idx, archiver: archiver, threshold: threshold}
}

// ThresholdFromEnv はDETECT_CONF_THRESHOLDを読み取り、未設定・不正値なら既定値を返します。
func ThresholdFromEnv() float32 {
	raw := os.Getenv("DETECT_CONF_THRESHOLD")
	if raw == "" {
		return DefaultConfidenceThreshold
	}
	f, err := strconv.ParseFloat(raw, 32)
	if err != nil || f <= 0 || f > 1 {
		return DefaultConfidenceThreshold
	}
	return float32(f)
}

// Detect は画像1枚に対する判定を行います。
//
//  1. 入力をバリデーション（空・サイズ超過・非対応形式は推論前に拒否）
//  2. 外部検出モデルを呼び出す
//  3. 信頼度が閾値未満、またはラベルがタクソノミー外の検出を除外
//  4. 残らなければ固定メッセージ付きの拒否Verdictを返す（エラーではない）
//  5. 残った検出を信頼度の降順（同値は検出順）で並べ、対処法を紐付ける
func (u *detectionUsecase) Detect(ctx context.Context, imageData []byte) (*entity.Verdict, error) {
	if err := u.validate(imageData); err != nil {
		return nil, err
	}

	detections, err := u.detector.Detect(ctx, imageData)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInferenceFailed, err)
	}

	findings := u.resolve(detections)
	if len(findings) == 0 {
		if u.archiver != nil {
			u.archiver.Archive(imageData, "not_crop_or_low_conf")
		}
		return &entity.Verdict{Accepted: false, RejectionReason: RejectionMessage}, nil
	}

	return &entity.Verdict{Accepted: true, Findings: findings}, nil
}

// validate は推論前の入力チェックを行います。
func (u *detectionUsecase) validate(imageData []byte) error {
	if len(imageData) == 0 {
		return ErrEmptyImage
	}
	if len(imageData) > MaxImageSize {
		return fmt.Errorf("%w of %d bytes", ErrImageTooLarge, MaxImageSize)
	}
	ct := http.DetectContentType(imageData)
	if _, ok := supportedContentTypes[ct]; !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, ct)
	}
	return nil
}

// resolve は検出結果を閾値とタクソノミーでフィルタし、対処法を紐付けます。
// 検出モデルの内部に依存しない純粋なフィルタ処理です。
func (u *detectionUsecase) resolve(detections []entity.Detection) []entity.Finding {
	findings := make([]entity.Finding, 0, len(detections))
	for _, d := range detections {
		if d.Confidence < u.threshold {
			continue
		}
		entry, ok := u.taxonomy.Lookup(d.Label)
		if !ok {
			// タクソノミー外のラベルは拒否扱い（エラーではない）
			continue
		}
		findings = append(findings, entity.Finding{
			Detection: d,
			Crop:      entry.Crop,
			Disease:   entry.Disease,
			Remedy:    entry.Remedy,
		})
	}

	// 信頼度の降順。安定ソートのため同値は元の検出順を維持する。
	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Detection.Confidence > findings[j].Detection.Confidence
	})
	return findings
}
