package usecase_test

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"plantsight_backend/internal/feature/detection/domain/entity"
	"plantsight_backend/internal/feature/detection/usecase"
	taxonomyentity "plantsight_backend/internal/feature/taxonomy/domain/entity"
)

// ErrModel はモックと期待値の間で共有されるセンチネルエラーです。
var ErrModel = errors.New("model error")

// pngImage は有効なPNGシグネチャを持つテスト用画像データです。
var pngImage = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...)

// mockDetector はDetectorインターフェースのモック実装です。
type mockDetector struct {
	DetectFunc  func(ctx context.Context, imageData []byte) ([]entity.Detection, error)
	DetectCalls int
}

func (m *mockDetector) Detect(ctx context.Context, imageData []byte) ([]entity.Detection, error) {
	m.DetectCalls++
	if m.DetectFunc != nil {
		return m.DetectFunc(ctx, imageData)
	}
	return nil, errors.New("DetectFunc is not implemented")
}

// mockTaxonomy はTaxonomyIndexインターフェースのモック実装です。
type mockTaxonomy struct {
	entries map[string]taxonomyentity.Entry
}

func (m *mockTaxonomy) Lookup(label string) (taxonomyentity.Entry, bool) {
	e, ok := m.entries[label]
	return e, ok
}

// mockArchiver はRejectArchiverインターフェースのモック実装です。
type mockArchiver struct {
	ArchiveCalls int
	LastReason   string
}

func (m *mockArchiver) Archive(imageData []byte, reason string) {
	m.ArchiveCalls++
	m.LastReason = reason
}

func testTaxonomy() *mockTaxonomy {
	return &mockTaxonomy{entries: map[string]taxonomyentity.Entry{
		"cotton_bacterial_blight": {
			Label:   "cotton_bacterial_blight",
			Crop:    "cotton",
			Disease: "bacterial blight",
			Remedy: taxonomyentity.Remedy{
				Cultural:   "rotate crops",
				Biological: "pseudomonas seed treatment",
				Chemical:   "copper oxychloride",
			},
		},
		"wheat_leaf_rust": {
			Label:   "wheat_leaf_rust",
			Crop:    "wheat",
			Disease: "leaf rust",
			Remedy:  taxonomyentity.Remedy{Chemical: "propiconazole"},
		},
	}}
}

func TestDetectionUsecase_Detect_Accepted(t *testing.T) {
	ctx := context.Background()

	detections := []entity.Detection{
		{Label: "wheat_leaf_rust", Confidence: 0.75, Box: [4]float64{0, 0, 0.5, 0.5}},
		{Label: "cotton_bacterial_blight", Confidence: 0.82, Box: [4]float64{0.1, 0.1, 0.9, 0.9}},
	}
	detector := &mockDetector{DetectFunc: func(ctx context.Context, imageData []byte) ([]entity.Detection, error) {
		return detections, nil
	}}
	uc := usecase.NewDetectionUsecase(detector, testTaxonomy(), nil, 0.5)

	verdict, err := uc.Detect(ctx, pngImage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !verdict.Accepted {
		t.Fatalf("expected accepted verdict, got rejection: %q", verdict.RejectionReason)
	}
	if len(verdict.Findings) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(verdict.Findings))
	}

	// 信頼度の降順で並ぶこと
	if verdict.Findings[0].Detection.Label != "cotton_bacterial_blight" {
		t.Errorf("expected highest-confidence finding first, got %q", verdict.Findings[0].Detection.Label)
	}
	if verdict.Findings[0].Detection.Confidence < verdict.Findings[1].Detection.Confidence {
		t.Errorf("findings are not ordered by descending confidence")
	}

	// 対処法が紐付くこと
	if verdict.Findings[0].Remedy.Chemical != "copper oxychloride" {
		t.Errorf("remedy not attached: %+v", verdict.Findings[0].Remedy)
	}
	if verdict.Findings[0].Crop != "cotton" || verdict.Findings[0].Disease != "bacterial blight" {
		t.Errorf("taxonomy fields not attached: %+v", verdict.Findings[0])
	}
}

func TestDetectionUsecase_Detect_TieBreakKeepsDetectorOrder(t *testing.T) {
	ctx := context.Background()

	detector := &mockDetector{DetectFunc: func(ctx context.Context, imageData []byte) ([]entity.Detection, error) {
		return []entity.Detection{
			{Label: "wheat_leaf_rust", Confidence: 0.8},
			{Label: "cotton_bacterial_blight", Confidence: 0.8},
		}, nil
	}}
	uc := usecase.NewDetectionUsecase(detector, testTaxonomy(), nil, 0.5)

	verdict, err := uc.Detect(ctx, pngImage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := []string{verdict.Findings[0].Detection.Label, verdict.Findings[1].Detection.Label}
	want := []string{"wheat_leaf_rust", "cotton_bacterial_blight"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tie-break order mismatch: got %v, want %v", got, want)
	}
}

func TestDetectionUsecase_Detect_Rejection(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name       string
		detections []entity.Detection
	}{
		{
			name:       "zero detections",
			detections: nil,
		},
		{
			name: "below threshold even when label matches",
			detections: []entity.Detection{
				{Label: "cotton_bacterial_blight", Confidence: 0.3},
			},
		},
		{
			name: "unknown label treated as rejection, not error",
			detections: []entity.Detection{
				{Label: "cat", Confidence: 0.99},
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			detector := &mockDetector{DetectFunc: func(ctx context.Context, imageData []byte) ([]entity.Detection, error) {
				return tc.detections, nil
			}}
			archiver := &mockArchiver{}
			uc := usecase.NewDetectionUsecase(detector, testTaxonomy(), archiver, 0.5)

			verdict, err := uc.Detect(ctx, pngImage)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if verdict.Accepted {
				t.Fatal("expected rejected verdict")
			}
			if verdict.RejectionReason != usecase.RejectionMessage {
				t.Errorf("rejection reason mismatch: got %q, want %q", verdict.RejectionReason, usecase.RejectionMessage)
			}
			if len(verdict.Findings) != 0 {
				t.Errorf("rejected verdict must not carry findings, got %d", len(verdict.Findings))
			}
			if archiver.ArchiveCalls != 1 {
				t.Errorf("expected rejected image to be archived once, got %d calls", archiver.ArchiveCalls)
			}
		})
	}
}

func TestDetectionUsecase_Detect_ThresholdBoundary(t *testing.T) {
	ctx := context.Background()

	// 閾値ちょうどの信頼度は受理される
	detector := &mockDetector{DetectFunc: func(ctx context.Context, imageData []byte) ([]entity.Detection, error) {
		return []entity.Detection{{Label: "cotton_bacterial_blight", Confidence: 0.5}}, nil
	}}
	uc := usecase.NewDetectionUsecase(detector, testTaxonomy(), nil, 0.5)

	verdict, err := uc.Detect(ctx, pngImage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !verdict.Accepted {
		t.Error("detection at exactly the threshold must be accepted")
	}
}

func TestDetectionUsecase_Detect_InputValidation(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name        string
		imageData   []byte
		expectedErr error
	}{
		{
			name:        "empty image",
			imageData:   []byte{},
			expectedErr: usecase.ErrEmptyImage,
		},
		{
			name:        "image too large",
			imageData:   append(append([]byte{}, pngImage...), make([]byte, usecase.MaxImageSize)...),
			expectedErr: usecase.ErrImageTooLarge,
		},
		{
			name:        "not an image",
			imageData:   []byte("%PDF-1.7 definitely not a leaf"),
			expectedErr: usecase.ErrUnsupportedFormat,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			detector := &mockDetector{}
			uc := usecase.NewDetectionUsecase(detector, testTaxonomy(), nil, 0.5)

			_, err := uc.Detect(ctx, tc.imageData)
			if !errors.Is(err, tc.expectedErr) {
				t.Fatalf("expected %v, got %v", tc.expectedErr, err)
			}
			// 不正な入力は推論前に拒否されること
			if detector.DetectCalls != 0 {
				t.Errorf("detector must not be called for invalid input, got %d calls", detector.DetectCalls)
			}
		})
	}
}

func TestDetectionUsecase_Detect_InferenceFailure(t *testing.T) {
	ctx := context.Background()

	detector := &mockDetector{DetectFunc: func(ctx context.Context, imageData []byte) ([]entity.Detection, error) {
		return nil, ErrModel
	}}
	uc := usecase.NewDetectionUsecase(detector, testTaxonomy(), nil, 0.5)

	_, err := uc.Detect(ctx, pngImage)
	if !errors.Is(err, usecase.ErrInferenceFailed) {
		t.Fatalf("expected ErrInferenceFailed, got %v", err)
	}
	if !strings.Contains(err.Error(), ErrModel.Error()) {
		t.Errorf("wrapped error should carry the model failure: %v", err)
	}
}

func TestDetectionUsecase_DefaultThreshold(t *testing.T) {
	ctx := context.Background()

	detector := &mockDetector{DetectFunc: func(ctx context.Context, imageData []byte) ([]entity.Detection, error) {
		return []entity.Detection{{Label: "cotton_bacterial_blight", Confidence: 0.69}}, nil
	}}
	// 不正な閾値は既定値（0.70）へフォールバックする
	uc := usecase.NewDetectionUsecase(detector, testTaxonomy(), nil, 0)

	verdict, err := uc.Detect(ctx, pngImage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict.Accepted {
		t.Error("0.69 must be rejected under the default 0.70 threshold")
	}
}

func TestThresholdFromEnv(t *testing.T) {
	testCases := []struct {
		name     string
		value    string
		expected float32
	}{
		{name: "unset uses default", value: "", expected: usecase.DefaultConfidenceThreshold},
		{name: "valid override", value: "0.5", expected: 0.5},
		{name: "non-numeric falls back", value: "high", expected: usecase.DefaultConfidenceThreshold},
		{name: "out of range falls back", value: "1.5", expected: usecase.DefaultConfidenceThreshold},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("DETECT_CONF_THRESHOLD", tc.value)
			if got := usecase.ThresholdFromEnv(); got != tc.expected {
				t.Errorf("got %v, want %v", got, tc.expected)
			}
		})
	}
}
