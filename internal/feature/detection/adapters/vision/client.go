// Package vision はGoogle Cloud Vision APIを使用した物体検出クライアントを提供します。
package vision

import (
	"context"
	"fmt"
	"strings"

	gvision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"plantsight_backend/internal/feature/detection/domain/entity"
	"plantsight_backend/internal/feature/detection/usecase"
)

// VisionDetector はGoogle Cloud Vision APIの物体ローカライズで検出を行います。
// セルフホストの推論サービスの代替としてDETECTOR=visionで選択されます。
type VisionDetector struct {
	client *gvision.ImageAnnotatorClient
}

// VisionDetectorがDetectorを実装していることをコンパイル時に検証します。
var _ usecase.Detector = (*VisionDetector)(nil)

// NewVisionDetector はADCを使用してVisionDetectorの新しいインスタンスを生成します。
func NewVisionDetector(ctx context.Context) (*VisionDetector, error) {
	client, err := gvision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create vision client: %w", err)
	}
	return &VisionDetector{client: client}, nil
}

// Close はVision APIクライアントを解放します。
func (v *VisionDetector) Close() error {
	return v.client.Close()
}

// Detect は画像バイト列から物体を検出します。
// Vision APIの返却順（スコア降順）を保持します。
func (v *VisionDetector) Detect(ctx context.Context, imageData []byte) ([]entity.Detection, error) {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: imageData},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_OBJECT_LOCALIZATION},
				},
			},
		},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("vision API request failed: %w", err)
	}

	if len(resp.Responses) == 0 {
		return nil, nil
	}
	if resp.Responses[0].Error != nil {
		return nil, fmt.Errorf("vision API error: %s", resp.Responses[0].Error.Message)
	}

	annotations := resp.Responses[0].LocalizedObjectAnnotations
	detections := make([]entity.Detection, 0, len(annotations))
	for _, a := range annotations {
		detections = append(detections, entity.Detection{
			Label:      normalizeLabel(a.Name),
			Confidence: a.Score,
			Box:        boundingBox(a.BoundingPoly),
		})
	}
	return detections, nil
}

// normalizeLabel はVisionの物体名をタクソノミーのラベル形式（小文字スネークケース）に揃えます。
func normalizeLabel(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "_")
}

// boundingBox は正規化頂点ポリゴンを(xmin, ymin, xmax, ymax)に変換します。
func boundingBox(poly *visionpb.BoundingPoly) [4]float64 {
	var box [4]float64
	if poly == nil || len(poly.NormalizedVertices) == 0 {
		return box
	}
	first := poly.NormalizedVertices[0]
	xmin, ymin := float64(first.X), float64(first.Y)
	xmax, ymax := xmin, ymin
	for _, v := range poly.NormalizedVertices[1:] {
		x, y := float64(v.X), float64(v.Y)
		if x < xmin {
			xmin = x
		}
		if y < ymin {
			ymin = y
		}
		if x > xmax {
			xmax = x
		}
		if y > ymax {
			ymax = y
		}
	}
	return [4]float64{xmin, ymin, xmax, ymax}
}
