// Package api はHTTPトランスポート層のリクエスト/レスポンスDTOを定義します。
package api

import "time"

// ErrorResponse はエラーレスポンスの共通フォーマットです。
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse は単純な成功メッセージのレスポンスです。
type MessageResponse struct {
	Message string `json:"message"`
}

// SignupRequest は /signup エンドポイントのリクエストボディです。
// Ginのbindingタグでバリデーションを行います。
type SignupRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest は /login エンドポイントのリクエストボディです。
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest は /refresh エンドポイントのリクエストボディです。
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenPairResponse はアクセストークンとリフレッシュトークンのペアです。
type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// RemedyResponse は病害ひとつに対する対処法です。
type RemedyResponse struct {
	Cultural   string `json:"cultural"`
	Biological string `json:"biological"`
	Chemical   string `json:"chemical"`
}

// TaxonomyEntryResponse はサポート対象の（作物, 病害）ペアひとつを表します。
type TaxonomyEntryResponse struct {
	Label   string         `json:"label"`
	Crop    string         `json:"crop"`
	Disease string         `json:"disease"`
	Remedy  RemedyResponse `json:"remedy"`
}

// FindingResponse は受理された検出ひとつと対応する対処法です。
type FindingResponse struct {
	Label      string         `json:"label"`
	Crop       string         `json:"crop"`
	Disease    string         `json:"disease"`
	Confidence float32        `json:"confidence"`
	Box        [4]float64     `json:"box"`
	Remedy     RemedyResponse `json:"remedy"`
}

// VerdictResponse は画像1枚に対する判定結果です。
type VerdictResponse struct {
	ScanID          string            `json:"scan_id,omitempty"`
	Accepted        bool              `json:"accepted"`
	RejectionReason string            `json:"rejection_reason,omitempty"`
	Findings        []FindingResponse `json:"findings,omitempty"`
}

// AdviseRequest は /v1/detect/advise エンドポイントのリクエストボディです。
type AdviseRequest struct {
	Label string `json:"label" binding:"required"`
}

// AdvisoryResponse はAI生成の詳細な防除ガイダンスです。
type AdvisoryResponse struct {
	Label   string `json:"label"`
	Crop    string `json:"crop"`
	Disease string `json:"disease"`
	Advice  string `json:"advice"`
}

// ScanResponse はスキャン履歴1件のサマリーです。
type ScanResponse struct {
	ID              string    `json:"id"`
	Accepted        bool      `json:"accepted"`
	TopLabel        string    `json:"top_label,omitempty"`
	TopConfidence   float32   `json:"top_confidence,omitempty"`
	RejectionReason string    `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
