// Package rejectstore は拒否された画像のレビュー用アーカイブを提供します。
package rejectstore

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// DirStore は拒否された画像をローカルディレクトリに保存します。
// 保存はベストエフォートで、失敗は記録するのみで呼び出し元には伝播しません。
type DirStore struct {
	dir string
}

// NewDirStore は保存先ディレクトリを作成し、DirStoreの新しいインスタンスを生成します。
func NewDirStore(dir string) (*DirStore, error) {
	if dir == "" {
		dir = "rejected"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create reject dir: %w", err)
	}
	return &DirStore{dir: dir}, nil
}

// Archive は画像をタイムスタンプ付きファイル名で保存します。
func (s *DirStore) Archive(imageData []byte, reason string) {
	ts := time.Now().UTC().Format("20060102T150405Z")
	name := filepath.Join(s.dir, fmt.Sprintf("%s_%s.png", reason, ts))
	if err := os.WriteFile(name, imageData, 0o644); err != nil {
		slog.Warn("failed to archive rejected image", "error", err, "path", name)
	}
}
