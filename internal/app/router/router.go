package router

import (
	authhandler "plantsight_backend/internal/feature/auth/transport/handler"
	detectionhandler "plantsight_backend/internal/feature/detection/transport/handler"
	scanshandler "plantsight_backend/internal/feature/scans/transport/handler"
	taxonomyhandler "plantsight_backend/internal/feature/taxonomy/transport/handler"
	platformhandler "plantsight_backend/internal/platform/http/handler"
	jwtmw "plantsight_backend/internal/platform/jwt"

	"github.com/gin-gonic/gin"
)

func NewRouter(auth *authhandler.AuthHandler, detection *detectionhandler.DetectionHandler,
	taxonomy *taxonomyhandler.TaxonomyHandler, scans *scanshandler.ScansHandler) *gin.Engine {
	r := gin.Default()

	// 認証不要
	// 導通確認用
	r.GET("/healthz", platformhandler.Health)
	// 新規ユーザー登録
	r.POST("/signup", auth.Signup)
	// ログイン（トークンペア発行）
	r.POST("/login", auth.Login)
	// リフレッシュトークンのローテーション
	r.POST("/refresh", auth.Refresh)
	// ログアウト（リフレッシュトークン失効）
	r.POST("/logout", auth.Logout)

	// 認証必須のルート
	v1 := r.Group("/v1")
	v1.Use(jwtmw.AuthRequired())
	{
		// 画像アップロード → 判定
		v1.POST("/detect", detection.Detect)
		// 病害の詳細ガイダンス生成
		v1.POST("/detect/advise", detection.Advise)
		// サポート対象の（作物, 病害）一覧
		v1.GET("/taxonomy", taxonomy.List)
		// スキャン履歴
		v1.GET("/scans", scans.List)
		// スキャン結果のテキストサマリー
		v1.GET("/scans/:id/summary", scans.Summary)
	}

	return r
}
