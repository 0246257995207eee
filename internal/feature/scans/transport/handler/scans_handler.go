// Package handler はscansフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"plantsight_backend/internal/api"
	"plantsight_backend/internal/feature/scans/domain/entity"
	"plantsight_backend/internal/feature/scans/usecase"
	jwtmw "plantsight_backend/internal/platform/jwt"
)

// ScansUsecase はスキャン履歴のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type ScansUsecase interface {
	List(ctx context.Context, userID uint, limit int) ([]entity.Scan, error)
	Summary(ctx context.Context, userID uint, id string) (string, error)
}

// ScansHandler はスキャン履歴のHTTPリクエストを処理します。
type ScansHandler struct {
	uc ScansUsecase
}

// NewScansHandler はScansHandlerの新しいインスタンスを生成します。
func NewScansHandler(uc ScansUsecase) *ScansHandler {
	return &ScansHandler{uc: uc}
}

// userID はJWTミドルウェアが設定した認証済みユーザーIDを取り出します。
func userID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(jwtmw.ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// List は認証済みユーザーのスキャン履歴を新しい順で返します。
//
// エンドポイント: GET /v1/scans?limit=20
func (h *ScansHandler) List(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	var query struct {
		Limit int `form:"limit"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid query"})
		return
	}

	scans, err := h.uc.List(c.Request.Context(), uid, query.Limit)
	if err != nil {
		slog.Error("failed to list scans", "error", err, "user_id", uid)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to list scans"})
		return
	}

	out := make([]api.ScanResponse, 0, len(scans))
	for _, s := range scans {
		out = append(out, api.ScanResponse{
			ID:              s.ID,
			Accepted:        s.Accepted,
			TopLabel:        s.TopLabel,
			TopConfidence:   s.TopConfidence,
			RejectionReason: s.RejectionReason,
			CreatedAt:       s.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

// Summary はスキャン1件のテキストサマリーをダウンロードとして返します。
//
// エンドポイント: GET /v1/scans/:id/summary
func (h *ScansHandler) Summary(c *gin.Context) {
	uid, ok := userID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, api.ErrorResponse{Error: "unauthorized"})
		return
	}

	summary, err := h.uc.Summary(c.Request.Context(), uid, c.Param("id"))
	if err != nil {
		if errors.Is(err, usecase.ErrScanNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "scan not found"})
			return
		}
		slog.Error("failed to render scan summary", "error", err, "user_id", uid)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to render summary"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="plantsight_result.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(summary))
}
