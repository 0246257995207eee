// Package handler はtaxonomyフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"plantsight_backend/internal/api"
	"plantsight_backend/internal/feature/taxonomy/usecase"
)

// TaxonomyHandler はサポート対象タクソノミーのHTTPリクエストを処理します。
// Snapshotは起動時に確定した読み取り専用データのため、そのまま保持します。
type TaxonomyHandler struct {
	snapshot *usecase.Snapshot
}

// NewTaxonomyHandler はTaxonomyHandlerの新しいインスタンスを生成します。
func NewTaxonomyHandler(snapshot *usecase.Snapshot) *TaxonomyHandler {
	return &TaxonomyHandler{snapshot: snapshot}
}

// List はサポート対象の（作物, 病害）ペアの一覧を返します。
//
// エンドポイント: GET /v1/taxonomy
func (h *TaxonomyHandler) List(c *gin.Context) {
	entries := h.snapshot.Entries()
	out := make([]api.TaxonomyEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, api.TaxonomyEntryResponse{
			Label:   e.Label,
			Crop:    e.Crop,
			Disease: e.Disease,
			Remedy: api.RemedyResponse{
				Cultural:   e.Remedy.Cultural,
				Biological: e.Remedy.Biological,
				Chemical:   e.Remedy.Chemical,
			},
		})
	}
	c.JSON(http.StatusOK, out)
}
