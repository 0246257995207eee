// Package handler はdetectionフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"plantsight_backend/internal/api"
	"plantsight_backend/internal/feature/detection/domain/entity"
	"plantsight_backend/internal/feature/detection/usecase"
	scanentity "plantsight_backend/internal/feature/scans/domain/entity"
	taxonomyusecase "plantsight_backend/internal/feature/taxonomy/usecase"
	jwtmw "plantsight_backend/internal/platform/jwt"
)

// DetectionUsecase は画像判定のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type DetectionUsecase interface {
	Detect(ctx context.Context, imageData []byte) (*entity.Verdict, error)
}

// AdvisoryUsecase は詳細ガイダンス生成のユースケースインターフェースを定義します。
type AdvisoryUsecase interface {
	Advise(ctx context.Context, label string) (*usecase.Advisory, error)
}

// ScanRecorder は判定結果をユーザーの履歴に記録します。
type ScanRecorder interface {
	Record(ctx context.Context, userID uint, verdict *entity.Verdict) (*scanentity.Scan, error)
}

// DetectionHandler は画像判定・詳細ガイダンスのHTTPリクエストを処理します。
type DetectionHandler struct {
	detect   DetectionUsecase
	advisory AdvisoryUsecase
	recorder ScanRecorder
}

// NewDetectionHandler はDetectionHandlerの新しいインスタンスを生成します。
func NewDetectionHandler(detect DetectionUsecase, advisory AdvisoryUsecase, recorder ScanRecorder) *DetectionHandler {
	return &DetectionHandler{detect: detect, advisory: advisory, recorder: recorder}
}

// Detect は画像をアップロードして作物病害の判定を行います。
//
// エンドポイント: POST /v1/detect
// Content-Type: multipart/form-data
// フィールド: image（画像ファイル、最大10MB）
func (h *DetectionHandler) Detect(c *gin.Context) {
	file, err := c.FormFile("image")
	if err != nil {
		slog.Warn("image file missing from request", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "image file is required"})
		return
	}

	f, err := file.Open()
	if err != nil {
		slog.Error("failed to open uploaded image", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to read image"})
		return
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("failed to close uploaded image", "error", err)
		}
	}()

	imageData, err := io.ReadAll(f)
	if err != nil {
		slog.Error("failed to read uploaded image", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "failed to read image"})
		return
	}

	verdict, err := h.detect.Detect(c.Request.Context(), imageData)
	if err != nil {
		h.writeDetectError(c, err)
		return
	}

	resp := toVerdictResponse(verdict)

	// 履歴の記録はベストエフォート。失敗しても判定結果は返す。
	if userID, ok := c.Get(jwtmw.ContextUserID); ok {
		if uid, ok := userID.(uint); ok {
			if scan, err := h.recorder.Record(c.Request.Context(), uid, verdict); err != nil {
				slog.Warn("failed to record scan", "error", err, "user_id", uid)
			} else {
				resp.ScanID = scan.ID
			}
		}
	}

	c.JSON(http.StatusOK, resp)
}

// Advise はタクソノミー内の病害に対するAI生成の詳細ガイダンスを返します。
//
// エンドポイント: POST /v1/detect/advise
// Content-Type: application/json
func (h *DetectionHandler) Advise(c *gin.Context) {
	var req api.AdviseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.Warn("advise request validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "label is required"})
		return
	}

	advisory, err := h.advisory.Advise(c.Request.Context(), req.Label)
	if err != nil {
		switch {
		case errors.Is(err, taxonomyusecase.ErrLabelNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "unknown label"})
		case errors.Is(err, usecase.ErrAdvisorUnavailable):
			c.JSON(http.StatusServiceUnavailable, api.ErrorResponse{Error: "advisory is not available"})
		default:
			slog.Error("advisory generation failed", "error", err, "label", req.Label)
			c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "advisory generation failed"})
		}
		return
	}

	c.JSON(http.StatusOK, api.AdvisoryResponse{
		Label:   advisory.Label,
		Crop:    advisory.Crop,
		Disease: advisory.Disease,
		Advice:  advisory.Advice,
	})
}

// writeDetectError は判定エラーをHTTPステータスとユーザー向けメッセージに変換します。
func (h *DetectionHandler) writeDetectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrEmptyImage),
		errors.Is(err, usecase.ErrImageTooLarge),
		errors.Is(err, usecase.ErrUnsupportedFormat):
		slog.Warn("rejected invalid upload", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
	case errors.Is(err, usecase.ErrInferenceFailed):
		// モデルの実行時エラーはリクエスト単位で回復する
		slog.Error("inference failed", "error", err)
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "could not process image"})
	default:
		slog.Error("detection failed", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "could not process image"})
	}
}

func toVerdictResponse(v *entity.Verdict) api.VerdictResponse {
	resp := api.VerdictResponse{
		Accepted:        v.Accepted,
		RejectionReason: v.RejectionReason,
	}
	if len(v.Findings) > 0 {
		resp.Findings = make([]api.FindingResponse, 0, len(v.Findings))
		for _, f := range v.Findings {
			resp.Findings = append(resp.Findings, api.FindingResponse{
				Label:      f.Detection.Label,
				Crop:       f.Crop,
				Disease:    f.Disease,
				Confidence: f.Detection.Confidence,
				Box:        f.Detection.Box,
				Remedy: api.RemedyResponse{
					Cultural:   f.Remedy.Cultural,
					Biological: f.Remedy.Biological,
					Chemical:   f.Remedy.Chemical,
				},
			})
		}
	}
	return resp
}
