package yolo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"plantsight_backend/internal/feature/detection/domain/entity"
	"plantsight_backend/internal/feature/detection/usecase"
	"plantsight_backend/internal/shared/ratelimiter"
)

// YOLODetector は外部推論サービス（YOLOモデルをホストするHTTPサービス）を
// 呼び出すDetector実装です。画像をmultipartでPOSTし、検出結果のJSONを受け取ります。
type YOLODetector struct {
	cfg     Config
	client  *http.Client
	limiter ratelimiter.RateLimiterInterface
}

// YOLODetectorがDetectorを実装していることをコンパイル時に検証します。
var _ usecase.Detector = (*YOLODetector)(nil)

// NewYOLODetector は指定された設定とHTTPクライアントでYOLODetectorの新しいインスタンスを生成します。
// limiterはnil可（推論サービスへの呼び出しを制限しない）。
func NewYOLODetector(cfg Config, client *http.Client, limiter ratelimiter.RateLimiterInterface) *YOLODetector {
	return &YOLODetector{cfg: cfg, client: client, limiter: limiter}
}

// detectionDTO は推論サービスのレスポンス中の検出1件です。
type detectionDTO struct {
	Label      string     `json:"label"`
	Confidence float32    `json:"confidence"`
	Box        [4]float64 `json:"box"`
}

// predictResponse は推論サービスのレスポンスボディです。
type predictResponse struct {
	Detections []detectionDTO `json:"detections"`
	Error      string         `json:"error"`
}

// Detect は画像バイト列を推論サービスに送信し、検出結果を返します。
// サービスが返した検出順は保持されます。
func (y *YOLODetector) Detect(ctx context.Context, imageData []byte) ([]entity.Detection, error) {
	if y.limiter != nil {
		y.limiter.WaitIfNeeded()
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("image", "upload.jpg")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, bytes.NewReader(imageData)); err != nil {
		return nil, fmt.Errorf("copy image data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	u := fmt.Sprintf("%s/predict", y.cfg.BaseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	res, err := y.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("inference service http %d", res.StatusCode)
	}

	var out predictResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode inference response: %w", err)
	}
	if out.Error != "" {
		return nil, fmt.Errorf("inference service: %s", out.Error)
	}

	detections := make([]entity.Detection, 0, len(out.Detections))
	for _, d := range out.Detections {
		detections = append(detections, entity.Detection{
			Label:      d.Label,
			Confidence: d.Confidence,
			Box:        d.Box,
		})
	}
	return detections, nil
}

// CheckHealth は推論サービスの疎通を確認します。
func (y *YOLODetector) CheckHealth(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, y.cfg.BaseURL+"/health", nil)
	if err != nil {
		return err
	}
	res, err := y.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("inference service unhealthy: %d", res.StatusCode)
	}
	return nil
}
