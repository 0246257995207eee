// Command seed はlabels_remedies.yamlを読み込み、タクソノミー参照データを
// データベースに投入します。サーバー起動前に一度実行してください。
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"sort"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	taxonomyadapters "plantsight_backend/internal/feature/taxonomy/adapters"
	"plantsight_backend/internal/feature/taxonomy/domain/entity"
	taxonomyusecase "plantsight_backend/internal/feature/taxonomy/usecase"
	infradb "plantsight_backend/internal/platform/db"
)

// yamlRemedy はYAMLファイル中の対処法ブロックです。
type yamlRemedy struct {
	Cultural   string `yaml:"cultural"`
	Biological string `yaml:"biological"`
	Chemical   string `yaml:"chemical"`
}

// yamlEntry はYAMLファイル中のタクソノミーエントリ1件です。
// トップレベルのキーが検出モデルのクラスラベルになります。
type yamlEntry struct {
	Crop    string     `yaml:"crop"`
	Disease string     `yaml:"disease"`
	Remedy  yamlRemedy `yaml:"remedy"`
}

func main() {
	var path string
	flag.StringVar(&path, "file", "labels_remedies.yaml", "path to the labels/remedies YAML file")
	flag.Parse()

	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("failed to read %s: %v", path, err)
	}

	var doc map[string]yamlEntry
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		log.Fatalf("failed to parse %s: %v", path, err)
	}
	if len(doc) == 0 {
		log.Fatalf("%s contains no entries", path)
	}

	entries := make([]entity.Entry, 0, len(doc))
	for label, e := range doc {
		entries = append(entries, entity.Entry{
			Label:   label,
			Crop:    e.Crop,
			Disease: e.Disease,
			Remedy: entity.Remedy{
				Cultural:   e.Remedy.Cultural,
				Biological: e.Remedy.Biological,
				Chemical:   e.Remedy.Chemical,
			},
		})
	}
	// マップ順は不定のため、投入順を安定させる
	sort.Slice(entries, func(i, j int) bool { return entries[i].Label < entries[j].Label })

	db := infradb.OpenDB()
	uc := taxonomyusecase.NewTaxonomyUsecase(taxonomyadapters.NewEntryRepository(db))
	if err := uc.Seed(context.Background(), entries); err != nil {
		log.Fatalf("failed to seed taxonomy: %v", err)
	}

	log.Printf("seeded %d taxonomy entries from %s", len(entries), path)
}
