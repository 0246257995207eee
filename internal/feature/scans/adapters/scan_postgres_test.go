package adapters_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	detectionentity "plantsight_backend/internal/feature/detection/domain/entity"
	"plantsight_backend/internal/feature/scans/adapters"
	"plantsight_backend/internal/feature/scans/domain/entity"
	"plantsight_backend/internal/feature/scans/usecase"
	taxonomyentity "plantsight_backend/internal/feature/taxonomy/domain/entity"
)

// setupTestDB はテスト用のインメモリSQLiteデータベースをセットアップします。
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&adapters.ScanModel{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func newScan(id string, userID uint, createdAt time.Time) *entity.Scan {
	return &entity.Scan{
		ID:            id,
		UserID:        userID,
		Accepted:      true,
		TopLabel:      "wheat_leaf_rust",
		TopConfidence: 0.91,
		Findings: []detectionentity.Finding{
			{
				Detection: detectionentity.Detection{
					Label:      "wheat_leaf_rust",
					Confidence: 0.91,
					Box:        [4]float64{0.1, 0.2, 0.8, 0.9},
				},
				Crop:    "wheat",
				Disease: "leaf rust",
				Remedy:  taxonomyentity.Remedy{Chemical: "propiconazole"},
			},
		},
		CreatedAt: createdAt,
	}
}

func TestScanRepository_CreateAndFindByID(t *testing.T) {
	db := setupTestDB(t)
	repo := adapters.NewScanRepository(db)
	ctx := context.Background()

	want := newScan("scan-1", 7, time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC))
	if err := repo.Create(ctx, want); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.FindByID(ctx, 7, "scan-1")
	if err != nil {
		t.Fatalf("FindByID failed: %v", err)
	}
	if got.TopLabel != "wheat_leaf_rust" || got.TopConfidence != 0.91 {
		t.Errorf("unexpected top fields: %q %.2f", got.TopLabel, got.TopConfidence)
	}
	if len(got.Findings) != 1 {
		t.Fatalf("expected 1 finding round-tripped, got %d", len(got.Findings))
	}
	f := got.Findings[0]
	if f.Disease != "leaf rust" || f.Remedy.Chemical != "propiconazole" {
		t.Errorf("finding not round-tripped: %+v", f)
	}
	if f.Detection.Box != [4]float64{0.1, 0.2, 0.8, 0.9} {
		t.Errorf("box not round-tripped: %v", f.Detection.Box)
	}
}

func TestScanRepository_FindByID_WrongUser(t *testing.T) {
	db := setupTestDB(t)
	repo := adapters.NewScanRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, newScan("scan-1", 7, time.Now().UTC())); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// 他人のスキャンは存在しないものとして扱う
	if _, err := repo.FindByID(ctx, 8, "scan-1"); !errors.Is(err, usecase.ErrScanNotFound) {
		t.Errorf("expected ErrScanNotFound for wrong user, got %v", err)
	}
	if _, err := repo.FindByID(ctx, 7, "missing"); !errors.Is(err, usecase.ErrScanNotFound) {
		t.Errorf("expected ErrScanNotFound for unknown id, got %v", err)
	}
}

func TestScanRepository_FindByUser(t *testing.T) {
	db := setupTestDB(t)
	repo := adapters.NewScanRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"scan-1", "scan-2", "scan-3"} {
		if err := repo.Create(ctx, newScan(id, 7, base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatalf("Create %s failed: %v", id, err)
		}
	}
	if err := repo.Create(ctx, newScan("scan-other", 8, base)); err != nil {
		t.Fatalf("Create scan-other failed: %v", err)
	}

	got, err := repo.FindByUser(ctx, 7, 2)
	if err != nil {
		t.Fatalf("FindByUser failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected limit 2 applied, got %d scans", len(got))
	}
	// 新しい順
	if got[0].ID != "scan-3" || got[1].ID != "scan-2" {
		t.Errorf("unexpected ordering: %q, %q", got[0].ID, got[1].ID)
	}
	for _, s := range got {
		if s.UserID != 7 {
			t.Errorf("expected only user 7 scans, got user %d", s.UserID)
		}
	}
}
