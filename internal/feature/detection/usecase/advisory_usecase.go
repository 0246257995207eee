package usecase

import (
	"context"
	"errors"
	"fmt"

	taxonomyusecase "plantsight_backend/internal/feature/taxonomy/usecase"
)

// AdvisoryPromptTemplate は詳細ガイダンス生成のプロンプトテンプレートです。
const AdvisoryPromptTemplate = "You are an agricultural extension advisor. Give concise, practical treatment guidance " +
	"for %s affecting %s. Cover cultural, biological and chemical control, and remind the farmer to confirm " +
	"chemicals and dosages with the local extension office."

// ErrAdvisorUnavailable is returned when no advisory generator is configured.
var ErrAdvisorUnavailable = errors.New("advisory generator is not configured")

// Advisor は防除ガイダンスのテキストを生成するリポジトリインターフェースです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type Advisor interface {
	// Generate はプロンプトからガイダンス本文を生成します。
	Generate(ctx context.Context, prompt string) (string, error)
}

// advisoryUsecase はタクソノミー内の病害に対する詳細ガイダンス生成を提供します。
type advisoryUsecase struct {
	advisor  Advisor
	taxonomy TaxonomyIndex
}

// NewAdvisoryUsecase はadvisoryUsecaseの新しいインスタンスを生成します。
// advisorはnil可（その場合AdviseはErrAdvisorUnavailableを返します）。
func NewAdvisoryUsecase(advisor Advisor, idx TaxonomyIndex) *advisoryUsecase {
	return &advisoryUsecase{advisor: advisor, taxonomy: idx}
}

// Advisory はラベル1件に対するAI生成の詳細ガイダンスです。
type Advisory struct {
	Label   string
	Crop    string
	Disease string
	Advice  string
}

// Advise はタクソノミー内のラベルに対して詳細な防除ガイダンスを生成します。
// タクソノミー外のラベルはErrLabelNotFoundで拒否されます。
func (u *advisoryUsecase) Advise(ctx context.Context, label string) (*Advisory, error) {
	entry, ok := u.taxonomy.Lookup(label)
	if !ok {
		return nil, taxonomyusecase.ErrLabelNotFound
	}
	if u.advisor == nil {
		return nil, ErrAdvisorUnavailable
	}

	prompt := fmt.Sprintf(AdvisoryPromptTemplate, entry.Disease, entry.Crop)
	advice, err := u.advisor.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("advisor failed for %q: %w", entry.Label, err)
	}
	return &Advisory{
		Label:   entry.Label,
		Crop:    entry.Crop,
		Disease: entry.Disease,
		Advice:  advice,
	}, nil
}
