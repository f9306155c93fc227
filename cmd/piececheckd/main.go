// piececheckd serves the assembly piece verification API. The detector
// model is loaded once at startup and shared, read only, across requests.
package main

import (
	"flag"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bricklab/piececheck/internal/api"
	"github.com/bricklab/piececheck/internal/config"
	"github.com/bricklab/piececheck/internal/detect"
	"github.com/bricklab/piececheck/internal/logger"
	"github.com/bricklab/piececheck/internal/metrics"
	"github.com/bricklab/piececheck/internal/pipeline"
)

func main() {

	cfg := config.Load()

	// cli flags override the environment for the model files
	modelFile := flag.String("m", cfg.ModelPath, "YOLO pose ONNX model file")
	labelFile := flag.String("l", cfg.LabelsPath, "class labels file, one name per line")

	flag.Parse()

	log := logger.New(cfg.LogLevel, cfg.LogPath)
	defer log.Sync()

	pool, err := detect.NewPool(cfg.PoolSize, *modelFile, *labelFile,
		detect.DefaultYOLOPoseParams())

	if err != nil {
		log.Fatal("error loading detector", zap.Error(err))
	}
	defer pool.Close()

	log.Info("detector loaded",
		zap.String("model", *modelFile),
		zap.Int("classes", len(pool.Names())),
		zap.Int("pool_size", cfg.PoolSize))

	sink, err := pipeline.NewFileSink(cfg.SaveDir, log)

	if err != nil {
		log.Fatal("error creating debug sink", zap.Error(err))
	}

	m := metrics.New()

	checker := pipeline.NewChecker(pool, sink, pipeline.Params{
		TopCutRatio:    cfg.TopCutRatio,
		BottomCutRatio: cfg.BottomCutRatio,
		MatchThreshold: float32(cfg.MatchThreshold),
	}, log, m)

	gin.SetMode(gin.ReleaseMode)

	router := api.Router(api.NewHandler(checker, log), m.Handler())

	addr := ":" + cfg.Port
	log.Info("piece check server listening", zap.String("addr", addr))

	if err := router.Run(addr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
