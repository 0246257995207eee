package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"plantsight_backend/internal/feature/detection/usecase"
	taxonomyusecase "plantsight_backend/internal/feature/taxonomy/usecase"
)

// mockAdvisor はAdvisorインターフェースのモック実装です。
type mockAdvisor struct {
	GenerateFunc func(ctx context.Context, prompt string) (string, error)
	LastPrompt   string
}

func (m *mockAdvisor) Generate(ctx context.Context, prompt string) (string, error) {
	m.LastPrompt = prompt
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, prompt)
	}
	return "", errors.New("GenerateFunc is not implemented")
}

func TestAdvisoryUsecase_Advise(t *testing.T) {
	ctx := context.Background()

	t.Run("success: prompt names the disease and crop", func(t *testing.T) {
		advisor := &mockAdvisor{GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
			return "spray copper oxychloride", nil
		}}
		uc := usecase.NewAdvisoryUsecase(advisor, testTaxonomy())

		advisory, err := uc.Advise(ctx, "cotton_bacterial_blight")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if advisory.Advice != "spray copper oxychloride" {
			t.Errorf("advice mismatch: %q", advisory.Advice)
		}
		if advisory.Crop != "cotton" || advisory.Disease != "bacterial blight" {
			t.Errorf("taxonomy fields mismatch: %+v", advisory)
		}
		if !strings.Contains(advisor.LastPrompt, "bacterial blight") || !strings.Contains(advisor.LastPrompt, "cotton") {
			t.Errorf("prompt should name disease and crop: %q", advisor.LastPrompt)
		}
	})

	t.Run("error: unknown label", func(t *testing.T) {
		uc := usecase.NewAdvisoryUsecase(&mockAdvisor{}, testTaxonomy())

		_, err := uc.Advise(ctx, "cat")
		if !errors.Is(err, taxonomyusecase.ErrLabelNotFound) {
			t.Fatalf("expected ErrLabelNotFound, got %v", err)
		}
	})

	t.Run("error: advisor not configured", func(t *testing.T) {
		uc := usecase.NewAdvisoryUsecase(nil, testTaxonomy())

		_, err := uc.Advise(ctx, "cotton_bacterial_blight")
		if !errors.Is(err, usecase.ErrAdvisorUnavailable) {
			t.Fatalf("expected ErrAdvisorUnavailable, got %v", err)
		}
	})

	t.Run("error: advisor failure is wrapped", func(t *testing.T) {
		advisor := &mockAdvisor{GenerateFunc: func(ctx context.Context, prompt string) (string, error) {
			return "", ErrModel
		}}
		uc := usecase.NewAdvisoryUsecase(advisor, testTaxonomy())

		_, err := uc.Advise(ctx, "cotton_bacterial_blight")
		if !errors.Is(err, ErrModel) {
			t.Fatalf("expected wrapped model error, got %v", err)
		}
	})
}
