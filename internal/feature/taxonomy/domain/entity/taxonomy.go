// Package entity はtaxonomyフィーチャーのドメインモデルを定義します。
package entity

// Remedy は病害に対する対処法の参照データです。
type Remedy struct {
	Cultural   string // 耕種的防除（輪作・圃場衛生など）
	Biological string // 生物的防除（天敵・微生物資材など）
	Chemical   string // 化学的防除（薬剤名・散布指針など）
}

// Entry はシステムが認識する（作物, 病害）ペアひとつを表します。
// 起動時に読み込まれた後は変更されない参照データです。
type Entry struct {
	Label   string // 検出モデルが返すクラスラベル（例: "cotton_bacterial_blight"）
	Crop    string // 作物名（例: "cotton"）
	Disease string // 病害名（例: "bacterial blight"）
	Remedy  Remedy
}
