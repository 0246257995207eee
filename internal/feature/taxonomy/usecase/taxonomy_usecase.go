// Package usecase はtaxonomyフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"plantsight_backend/internal/feature/taxonomy/domain/entity"
)

// EntryRepository はタクソノミーエントリの永続化層を抽象化します。
// Goの慣例に従い、インターフェースはプロバイダー（adapters）ではなくコンシューマー（usecase）が定義します。
type EntryRepository interface {
	// FindAll は登録済みの全エントリを取得します。
	FindAll(ctx context.Context) ([]entity.Entry, error)

	// UpsertBatch はエントリをラベルをキーとして挿入または更新します。
	UpsertBatch(ctx context.Context, entries []entity.Entry) error
}

// Snapshot は起動時に読み込まれた不変のタクソノミー参照表です。
// リクエスト間で共有されますが、読み取り専用のため同期は不要です。
type Snapshot struct {
	byLabel map[string]entity.Entry
	ordered []entity.Entry
}

// Lookup はラベルに一致するエントリを返します。
// ラベルはケースインセンシティブに照合されます。
func (s *Snapshot) Lookup(label string) (entity.Entry, bool) {
	e, ok := s.byLabel[strings.ToLower(label)]
	return e, ok
}

// Entries は作物名・ラベル順にソートされた全エントリを返します。
func (s *Snapshot) Entries() []entity.Entry {
	return s.ordered
}

// Len は登録されているエントリ数を返します。
func (s *Snapshot) Len() int {
	return len(s.byLabel)
}

// taxonomyUsecase はタクソノミー参照データのビジネスロジックを提供します。
type taxonomyUsecase struct {
	entries EntryRepository
}

// NewTaxonomyUsecase はtaxonomyUsecaseの新しいインスタンスを生成します。
func NewTaxonomyUsecase(entries EntryRepository) *taxonomyUsecase {
	return &taxonomyUsecase{entries: entries}
}

// LoadSnapshot は全エントリを読み込み、不変のSnapshotを構築します。
// サーバー起動時に一度だけ呼び出されます。
func (u *taxonomyUsecase) LoadSnapshot(ctx context.Context) (*Snapshot, error) {
	entries, err := u.entries.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load taxonomy: %w", err)
	}
	if len(entries) == 0 {
		return nil, ErrEmptyTaxonomy
	}

	byLabel := make(map[string]entity.Entry, len(entries))
	for _, e := range entries {
		byLabel[strings.ToLower(e.Label)] = e
	}

	ordered := make([]entity.Entry, len(entries))
	copy(ordered, entries)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Crop != ordered[j].Crop {
			return ordered[i].Crop < ordered[j].Crop
		}
		return ordered[i].Label < ordered[j].Label
	})

	return &Snapshot{byLabel: byLabel, ordered: ordered}, nil
}

// Seed はエントリをバリデーションした上で一括登録します。
// seedコマンドから呼び出されます。
func (u *taxonomyUsecase) Seed(ctx context.Context, entries []entity.Entry) error {
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.Label == "" || e.Crop == "" || e.Disease == "" {
			return fmt.Errorf("taxonomy entry %q: label, crop and disease are required", e.Label)
		}
		key := strings.ToLower(e.Label)
		if _, dup := seen[key]; dup {
			return fmt.Errorf("taxonomy entry %q: duplicate label", e.Label)
		}
		seen[key] = struct{}{}
	}
	return u.entries.UpsertBatch(ctx, entries)
}
