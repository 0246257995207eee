// Package entity はscansフィーチャーのドメインモデルを定義します。
package entity

import (
	"time"

	detection "plantsight_backend/internal/feature/detection/domain/entity"
)

// Scan はユーザーのアップロード1件に対する判定の記録です。
// 受理・拒否を問わず全ての判定が記録されます。
type Scan struct {
	ID              string // UUID
	UserID          uint
	Accepted        bool
	TopLabel        string  // 最上位検出のラベル（拒否時は空）
	TopConfidence   float32 // 最上位検出の信頼度（拒否時は0）
	RejectionReason string
	Findings        []detection.Finding
	CreatedAt       time.Time
}
