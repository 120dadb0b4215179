package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/karino-t/dining-concierge/internal/common/config"
	"github.com/karino-t/dining-concierge/internal/common/logger"
	"github.com/karino-t/dining-concierge/internal/dialog"
	"github.com/karino-t/dining-concierge/internal/model"
	"github.com/karino-t/dining-concierge/internal/repository"
)

func main() {
	// 設定の読み込み
	cfg, err := config.LoadConfig("")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	logger.Init(cfg.Env)

	// AWSクライアントの初期化
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load AWS config")
	}
	queue := repository.NewSQSReservationQueue(sqs.NewFromConfig(awsCfg), cfg.Queue.URL, cfg.Queue.WaitTimeSeconds)

	policy, err := cfg.DialogPolicy()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build dialog policy")
	}
	service := dialog.NewService(policy, queue)

	// ENV=LOCALの場合はLambdaランタイムを使わず標準入力の1イベントを処理する
	if cfg.IsLocal() {
		runLocal(service)
		return
	}

	lambda.Start(service.HandleEvent)
}

// runLocal は標準入力からイベントを読み込み、ディレクティブを標準出力へ書き出します
func runLocal(service *dialog.Service) {
	var req model.IntentRequest
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		logger.Fatal().Err(err).Msg("failed to decode event from stdin")
	}

	res, err := service.HandleEvent(context.Background(), req)
	if err != nil {
		logger.Fatal().Err(err).Msg("turn failed")
	}

	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to encode response")
	}
	fmt.Println(string(out))
}
