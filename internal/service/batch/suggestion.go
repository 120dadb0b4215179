// Package batch はキューに積まれた予約リクエストの非同期処理を実装します
package batch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sfn"
	"github.com/aws/aws-xray-sdk-go/xray"

	"github.com/karino-t/dining-concierge/internal/common/config"
	"github.com/karino-t/dining-concierge/internal/common/logger"
	"github.com/karino-t/dining-concierge/internal/common/utils"
	"github.com/karino-t/dining-concierge/internal/model"
	"github.com/karino-t/dining-concierge/internal/repository"
)

// 1件の予約につき通知する候補の上限
const topSuggestions = 5

const failureMessage = "Sorry, we fail to get the result. Please try again with the appropriate requirements!"

// SuggestionBatchService はレストラン提案バッチ処理を担当します
// キューを1バッチ分ドレインし、候補を解決してSMSで通知します
type SuggestionBatchService struct {
	queue        repository.ReservationQueue
	index        repository.SuggestionIndex
	businessRepo repository.BusinessRepository
	notifier     repository.Notifier
	// processed がnilの場合、冪等性チェックは行いません
	processed repository.ProcessedSet
	// lock がnilの場合、多重起動の抑止は行いません
	lock      repository.BatchLock
	sfnClient *sfn.Client
	cfg       *config.Config
}

// NewSuggestionBatchService は新しいSuggestionBatchServiceを作成します
func NewSuggestionBatchService(
	cfg *config.Config,
	queue repository.ReservationQueue,
	index repository.SuggestionIndex,
	businessRepo repository.BusinessRepository,
	notifier repository.Notifier,
	processed repository.ProcessedSet,
	lock repository.BatchLock,
	sfnClient *sfn.Client,
) *SuggestionBatchService {
	return &SuggestionBatchService{
		queue:        queue,
		index:        index,
		businessRepo: businessRepo,
		notifier:     notifier,
		processed:    processed,
		lock:         lock,
		sfnClient:    sfnClient,
		cfg:          cfg,
	}
}

// Run は提案バッチ処理を実行します
func (s *SuggestionBatchService) Run(ctx context.Context) error {
	// X-Rayセグメントの作成
	ctx, seg := xray.BeginSubsegment(ctx, "SuggestionBatchService.Run")
	defer seg.Close(nil)

	startTime := time.Now()

	if s.lock != nil {
		acquired, err := s.lock.Acquire(ctx)
		if err != nil {
			seg.Close(err)
			return utils.GetStackWithError(fmt.Errorf("failed to acquire batch lock: %w", err))
		}
		if !acquired {
			logger.Info().Msg("another invocation holds the batch lock, skipping this run")
			return nil
		}
		defer func() {
			if err := s.lock.Release(context.WithoutCancel(ctx)); err != nil {
				logger.Warn().Err(err).Msg("failed to release batch lock")
			}
		}()
	}

	messages, err := s.queue.Receive(ctx, s.cfg.Queue.BatchSize)
	if err != nil {
		seg.Close(err)
		return utils.GetStackWithError(fmt.Errorf("failed to receive messages: %w", err))
	}

	if len(messages) == 0 {
		logger.Info().Msg("queue is now empty")
	}

	processedCount := 0
	for _, msg := range messages {
		if err := s.process(ctx, msg); err != nil {
			// 1件の失敗でバッチ全体を落とさない。メッセージはキューに残す
			logger.Warn().Err(err).Str("message_id", msg.MessageID).Msg("skipping message")
			continue
		}
		processedCount++
	}

	if err := s.sendTaskSuccess(ctx, processedCount); err != nil {
		return utils.GetStackWithError(fmt.Errorf("failed to send task success: %w", err))
	}

	duration := time.Since(startTime)

	// セグメントにメタデータを追加
	if err := seg.AddMetadata("message_count", len(messages)); err != nil {
		logger.Warn().Err(err).Msg("failed to add message_count metadata")
	}
	if err := seg.AddMetadata("duration", duration.String()); err != nil {
		logger.Warn().Err(err).Msg("failed to add duration metadata")
	}

	logger.Info().
		Int("messages", len(messages)).
		Int("processed", processedCount).
		Dur("duration", duration).
		Msg("suggestion batch process completed")
	return nil
}

// process は1件の予約メッセージを処理し、完了後にキューから削除します
// ペイロードが壊れている場合は削除せずエラーを返します
func (s *SuggestionBatchService) process(ctx context.Context, msg repository.QueueMessage) error {
	var reservation model.Reservation
	if err := json.Unmarshal([]byte(msg.Body), &reservation); err != nil {
		return fmt.Errorf("malformed reservation payload: %w", err)
	}

	key := idempotencyKey(msg.Body)
	if s.processed != nil {
		seen, err := s.processed.Seen(ctx, key)
		if err != nil {
			// 冪等性ストアの障害は通知より優先しない。at-least-once側に倒す
			logger.Warn().Err(err).Msg("processed-set lookup failed, proceeding without dedup")
		} else if seen {
			logger.Info().Str("message_id", msg.MessageID).Msg("reservation already notified, dropping duplicate")
			return s.queue.Delete(ctx, msg.ReceiptHandle)
		}
	}

	if err := s.notify(ctx, reservation); err != nil {
		return err
	}

	if s.processed != nil {
		if err := s.processed.Mark(ctx, key); err != nil {
			logger.Warn().Err(err).Msg("failed to mark reservation as processed")
		}
	}

	// 削除は「成功」ではなく「処理済み」に対して行う。候補ゼロでも削除する
	if err := s.queue.Delete(ctx, msg.ReceiptHandle); err != nil {
		return err
	}

	return nil
}

// notify は候補を解決してSMSを送信します
func (s *SuggestionBatchService) notify(ctx context.Context, reservation model.Reservation) error {
	cuisine := strValue(reservation.Cuisine)

	matches, err := s.index.MatchCuisine(ctx, cuisine)
	if err != nil {
		return fmt.Errorf("failed to query suggestion index: %w", err)
	}

	// スコア降順で上位のみ残す
	sort.Slice(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if len(matches) > topSuggestions {
		matches = matches[:topSuggestions]
	}

	var businesses []repository.Business
	for _, match := range matches {
		business, err := s.businessRepo.GetByID(ctx, match.BusinessID)
		if err != nil {
			// 解決できない候補は結果から外すだけでよい
			logger.Warn().Err(err).Str("business_id", match.BusinessID).Msg("skipping unresolved candidate")
			continue
		}
		businesses = append(businesses, *business)
	}

	if len(businesses) == 0 {
		return s.notifyFailure(ctx)
	}

	destination := s.cfg.Notify.CountryCode + strValue(reservation.PhoneNumber)
	return s.notifier.SendSMS(ctx, destination, composeSuggestions(reservation, businesses))
}

// notifyFailure は候補が1件も解決できなかった場合の通知です
// フォールバック先が未設定の場合は送信せずログに残します
func (s *SuggestionBatchService) notifyFailure(ctx context.Context) error {
	fallback := s.cfg.Notify.FallbackPhoneNumber
	if fallback == "" {
		logger.Warn().Msg("no candidates resolved and no fallback destination configured, suppressing notification")
		return nil
	}
	return s.notifier.SendSMS(ctx, fallback, failureMessage)
}

// sendTaskSuccess は、Step Functionsのタスク成功を通知します
func (s *SuggestionBatchService) sendTaskSuccess(ctx context.Context, processedCount int) error {
	// ローカルの場合はStep Functionsの処理をスキップ
	if s.cfg.IsLocal() || s.sfnClient == nil {
		logger.Debug().Msg("local environment detected, skipping Step Functions task success notification")
		return nil
	}

	taskToken := s.cfg.SFN.TaskToken
	if taskToken == "" {
		return fmt.Errorf("task token is not set in config")
	}

	output, err := json.Marshal(map[string]any{
		"processed": processedCount,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal task output: %w", err)
	}

	input := &sfn.SendTaskSuccessInput{
		TaskToken: aws.String(taskToken),
		Output:    aws.String(string(output)),
	}

	if _, err := s.sfnClient.SendTaskSuccess(ctx, input); err != nil {
		return fmt.Errorf("failed to send task success: %w", err)
	}

	return nil
}

// composeSuggestions は通知メッセージ本文を組み立てます
func composeSuggestions(reservation model.Reservation, businesses []repository.Business) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello! Here are your %s suggestions for %s people.\n",
		strValue(reservation.Cuisine), strValue(reservation.NumberOfPeople))
	for i, business := range businesses {
		fmt.Fprintf(&b, "%d. %s located at %s, rating as %s\n",
			i+1, business.Name, business.Address, business.Rating)
	}
	return b.String()
}

// idempotencyKey はメッセージ本文から冪等性キーを導出します
func idempotencyKey(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}

func strValue(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
