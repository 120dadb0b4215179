package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-xray-sdk-go/xray"
	opensearch "github.com/opensearch-project/opensearch-go/v2"
	requestsigner "github.com/opensearch-project/opensearch-go/v2/signer/awsv2"
	"github.com/redis/go-redis/v9"

	"github.com/karino-t/dining-concierge/internal/common/config"
	"github.com/karino-t/dining-concierge/internal/common/database"
	"github.com/karino-t/dining-concierge/internal/common/logger"
	"github.com/karino-t/dining-concierge/internal/common/utils"
	"github.com/karino-t/dining-concierge/internal/repository"
	"github.com/karino-t/dining-concierge/internal/service/batch"
)

const (
	projectName = "dining-concierge"
	lockKey     = "dining-concierge:suggestion-batch"
)

func main() {
	// コマンドライン引数のパース
	timeout := flag.Duration("timeout", 5*time.Minute, "バッチ処理のタイムアウト時間")
	flag.Parse()

	// 最後の引数として渡されたタスクトークンを取得
	// ENV=LOCALの場合はタスクトークンを取得しない
	taskToken := "DUMMY_TASK_TOKEN"
	if os.Getenv("ENV") != "LOCAL" {
		taskToken = flag.Arg(flag.NArg() - 1)
		if taskToken == "" {
			logger.Fatal().Msg("task token is required")
		}
	}

	// 設定の読み込み
	cfg, err := config.LoadConfig(taskToken)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(cfg.Env)

	// X-Ray設定
	if cfg.EnableTracing {
		if err := xray.Configure(xray.Config{
			DaemonAddr:     "127.0.0.1:2000", // X-Rayデーモンのアドレス
			ServiceVersion: "1.0.0",
		}); err != nil {
			logger.Warn().Err(err).Msg("failed to configure X-Ray")
			// X-Ray設定失敗時はデフォルトの設定を使用
			if configErr := xray.Configure(xray.Config{}); configErr != nil {
				logger.Fatal().Err(configErr).Msg("failed to configure default X-Ray settings")
			}
		}
		os.Setenv("AWS_XRAY_CONTEXT_MISSING", "LOG_ERROR")
	}

	// AWSクライアント群の初期化
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load AWS config")
	}

	queue := repository.NewSQSReservationQueue(sqs.NewFromConfig(awsCfg), cfg.Queue.URL, cfg.Queue.WaitTimeSeconds)
	businessRepo := repository.NewDynamoDBBusinessRepository(dynamodb.NewFromConfig(awsCfg), cfg.Business.TableName)
	notifier := repository.NewSNSNotifier(sns.NewFromConfig(awsCfg))

	signer, err := requestsigner.NewSignerWithService(awsCfg, "es")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create search request signer")
	}
	osClient, err := opensearch.NewClient(opensearch.Config{
		Addresses: []string{cfg.Search.Endpoint},
		Signer:    signer,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create search client")
	}
	index := repository.NewOpenSearchSuggestionIndex(osClient, cfg.Search.Index)

	// 冪等性ストア（有効時のみ）
	var processed repository.ProcessedSet
	if cfg.DB.Enabled {
		db, err := database.NewDB(cfg.DatabaseConfig())
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to create database connection")
		}
		defer db.Close()
		processed = repository.NewPostgresProcessedSet(db)
	}

	// 分散ロック（有効時のみ）
	var lock repository.BatchLock
	if cfg.Lock.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.Lock.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to parse redis url")
		}
		rdb := redis.NewClient(opts)
		defer rdb.Close()
		lock = repository.NewRedisBatchLock(rdb, lockKey, time.Duration(cfg.Lock.TTLSeconds)*time.Second)
	}

	// Step Functionsクライアントの初期化
	var sfnClient *sfn.Client
	if !cfg.IsLocal() {
		sfnClient = sfn.NewFromConfig(awsCfg)
	}

	// サービスの初期化
	service := batch.NewSuggestionBatchService(cfg, queue, index, businessRepo, notifier, processed, lock, sfnClient)

	// コンテキストの作成
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	// X-Rayセグメントの作成
	if cfg.EnableTracing {
		var seg *xray.Segment
		ctx, seg = xray.BeginSegment(ctx, projectName)
		defer seg.Close(nil)

		// セグメントにメタデータを追加
		if err := seg.AddMetadata("task_token", taskToken); err != nil {
			logger.Warn().Err(err).Msg("failed to add task_token metadata")
		}
		if err := seg.AddMetadata("timeout", timeout.String()); err != nil {
			logger.Warn().Err(err).Msg("failed to add timeout metadata")
		}
	}

	// シグナルハンドリングの設定
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// バッチ処理の実行
	errChan := make(chan error, 1)
	go func() {
		errChan <- utils.RunWithTimeout(ctx, *timeout, service.Run)
	}()

	// シグナルまたはエラーの待機
	select {
	case sig := <-sigChan:
		logger.Info().Str("signal", sig.String()).Msg("received signal")
		cancel()
	case err := <-errChan:
		if err != nil {
			logger.Error().Err(err).Msg("batch process failed")

			// ローカル環境以外の場合のみStep Functionsのエラー通知を行う
			if !cfg.IsLocal() && sfnClient != nil {
				input := &sfn.SendTaskFailureInput{
					TaskToken: aws.String(taskToken),
					Error:     aws.String("Batch process failed"),
				}

				if _, err := sfnClient.SendTaskFailure(ctx, input); err != nil {
					logger.Error().Err(err).Msg("failed to send task failure")
				}
			}

			os.Exit(1)
		}
		logger.Info().Msg("batch process completed successfully")
	}
}
