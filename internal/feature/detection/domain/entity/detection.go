// Package entity はdetectionフィーチャーのドメインモデルを定義します。
package entity

import taxonomy "plantsight_backend/internal/feature/taxonomy/domain/entity"

// Detection は検出モデルが返したバウンディングボックス1件を表します。
// モデルから返された後は不変です。
type Detection struct {
	Label      string     // クラスラベル（タクソノミー外の場合もある）
	Confidence float32    // 信頼度スコア（0.0 ~ 1.0）
	Box        [4]float64 // バウンディングボックス座標（xmin, ymin, xmax, ymax）
}

// Finding は受理された検出と、ラベルに対応する参照データの組です。
type Finding struct {
	Detection Detection
	Crop      string
	Disease   string
	Remedy    taxonomy.Remedy
}

// Verdict は画像1枚に対する受理/拒否の判定結果です。
// リクエストごとに生成され、レスポンス描画後は破棄されます。
type Verdict struct {
	Accepted        bool
	Findings        []Finding // 信頼度の降順（同値は検出順を維持）
	RejectionReason string    // Accepted=false の場合のみ設定
}
