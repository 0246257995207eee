package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/joho/godotenv"

	"plantsight_backend/internal/app/router"
	authadapters "plantsight_backend/internal/feature/auth/adapters"
	authhandler "plantsight_backend/internal/feature/auth/transport/handler"
	authusecase "plantsight_backend/internal/feature/auth/usecase"
	detectiongemini "plantsight_backend/internal/feature/detection/adapters/gemini"
	detectionvision "plantsight_backend/internal/feature/detection/adapters/vision"
	detectionyolo "plantsight_backend/internal/feature/detection/adapters/yolo"
	detectionhandler "plantsight_backend/internal/feature/detection/transport/handler"
	detectionusecase "plantsight_backend/internal/feature/detection/usecase"
	scanadapters "plantsight_backend/internal/feature/scans/adapters"
	scanshandler "plantsight_backend/internal/feature/scans/transport/handler"
	scansusecase "plantsight_backend/internal/feature/scans/usecase"
	taxonomyadapters "plantsight_backend/internal/feature/taxonomy/adapters"
	taxonomyhandler "plantsight_backend/internal/feature/taxonomy/transport/handler"
	taxonomyusecase "plantsight_backend/internal/feature/taxonomy/usecase"
	"plantsight_backend/internal/platform/cache"
	infradb "plantsight_backend/internal/platform/db"
	platformhttp "plantsight_backend/internal/platform/http"
	jwtmw "plantsight_backend/internal/platform/jwt"
	infraredis "plantsight_backend/internal/platform/redis"
	"plantsight_backend/internal/platform/rejectstore"
	"plantsight_backend/internal/platform/session"
	"plantsight_backend/internal/shared/ratelimiter"
)

func main() {
	// .envを読み込む
	if err := godotenv.Load(".env"); err != nil {
		log.Println("[INFO] .env not found; using system environment variables")
	}

	ctx := context.Background()

	// db
	db := infradb.OpenDB()

	// Redis（リフレッシュセッションの保存先のため必須）
	rdb, err := infraredis.NewRedisClient()
	if err != nil {
		log.Fatalf("Redis is required for refresh sessions: %v", err)
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Println("[ERROR] Failed to close Redis client:", err)
		}
	}()

	// タクソノミー参照データ（Redisキャッシュでラップし、起動時にSnapshotへ固定）
	entryRepo := taxonomyadapters.NewEntryRepository(db)
	cachedEntryRepo := cache.NewCachingEntryRepository(rdb, 24*time.Hour, entryRepo, "taxonomy")
	taxonomyUC := taxonomyusecase.NewTaxonomyUsecase(cachedEntryRepo)
	snapshot, err := taxonomyUC.LoadSnapshot(ctx)
	if err != nil {
		log.Fatalf("failed to load taxonomy snapshot: %v", err)
	}
	log.Printf("taxonomy loaded: %d entries", snapshot.Len())

	// 検出モデル（DETECTOR=visionでCloud Visionに切り替え）
	var detector detectionusecase.Detector
	if os.Getenv("DETECTOR") == "vision" {
		vd, err := detectionvision.NewVisionDetector(ctx)
		if err != nil {
			log.Fatalf("failed to init vision detector: %v", err)
		}
		defer func() {
			if err := vd.Close(); err != nil {
				log.Println("[ERROR] Failed to close vision client:", err)
			}
		}()
		detector = vd
	} else {
		cfg := detectionyolo.LoadConfig()
		limiter := ratelimiter.NewRateLimiter(60, time.Minute)
		yd := detectionyolo.NewYOLODetector(cfg, platformhttp.NewHTTPClient(cfg.Timeout), limiter)

		// 疎通確認。失敗しても起動は継続する（推論サービスが後から上がるケース）
		healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := yd.CheckHealth(healthCtx); err != nil {
			log.Println("[WARN] Inference service unreachable at startup:", err)
		}
		cancel()

		detector = yd
	}

	// 拒否画像のアーカイブ（ベストエフォート）
	var archiver detectionusecase.RejectArchiver
	if store, err := rejectstore.NewDirStore(os.Getenv("REJECTED_DIR")); err != nil {
		log.Println("[WARN] Reject archive unavailable:", err)
	} else {
		archiver = store
	}

	// 詳細ガイダンス生成（未設定でも起動可能）
	var advisor detectionusecase.Advisor
	if ga, err := detectiongemini.NewGeminiAdvisor(ctx); err != nil {
		log.Println("[WARN] Gemini unavailable. Advisory endpoint disabled:", err)
	} else {
		advisor = ga
	}

	// Repository
	userRepo := authadapters.NewUserRepository(db)
	scanRepo := scanadapters.NewScanRepository(db)
	sessionRepo := session.NewSessionRedis(rdb, "sessions")

	// Usecase
	jwtGen := jwtmw.NewGenerator(os.Getenv(jwtmw.EnvKeyJWTSecret), 15*time.Minute)
	authUC := authusecase.NewAuthUsecase(userRepo, sessionRepo, jwtGen)
	detectUC := detectionusecase.NewDetectionUsecase(detector, snapshot, archiver, detectionusecase.ThresholdFromEnv())
	advisoryUC := detectionusecase.NewAdvisoryUsecase(advisor, snapshot)
	scansUC := scansusecase.NewScansUsecase(scanRepo)

	// Handler
	authH := authhandler.NewAuthHandler(authUC)
	detectionH := detectionhandler.NewDetectionHandler(detectUC, advisoryUC, scansUC)
	taxonomyH := taxonomyhandler.NewTaxonomyHandler(snapshot)
	scansH := scanshandler.NewScansHandler(scansUC)

	// ルータ生成
	router := router.NewRouter(authH, detectionH, taxonomyH, scansH)

	// CORS追加
	router.Use(cors.Default())

	// JWT_SECRETチェック（開発中の注意喚起）
	if os.Getenv(jwtmw.EnvKeyJWTSecret) == "" {
		log.Println("[WARN] JWT_SECRET is not set. Set a strong secret in production.")
	}

	if err := router.Run(":8080"); err != nil {
		log.Fatal(err)
	}
}
