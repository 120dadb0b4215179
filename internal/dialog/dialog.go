package dialog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/karino-t/dining-concierge/internal/common/logger"
	"github.com/karino-t/dining-concierge/internal/model"
)

// ErrIntentNotSupported は未対応のインテント名を受け取ったことを表します
// 検証エラーと異なり、このエラーは呼び出し元へそのまま伝播させます
var ErrIntentNotSupported = errors.New("intent not supported")

// ReservationQueue は確定した予約スナップショットの引き渡し先です
type ReservationQueue interface {
	Send(ctx context.Context, body string) error
}

// Service はダイアログコントローラ本体です
// ターン間の状態はセッション属性バッグのみで持ち回り、プロセス内には保持しません
type Service struct {
	policy Policy
	queue  ReservationQueue
	now    func() time.Time
}

// NewService は新しいServiceを作成します
func NewService(policy Policy, queue ReservationQueue) *Service {
	return &Service{
		policy: policy,
		queue:  queue,
		now:    time.Now,
	}
}

// HandleEvent は1ターン分のイベントをインテント名でディスパッチします
func (s *Service) HandleEvent(ctx context.Context, req model.IntentRequest) (*model.IntentResponse, error) {
	logger.Debug().
		Str("user_id", req.UserID).
		Str("bot", req.Bot.Name).
		Str("intent", req.CurrentIntent.Name).
		Msg("dispatching intent")

	switch req.CurrentIntent.Name {
	case model.IntentDiningSuggestions:
		return s.orderDining(ctx, req)
	case model.IntentGreeting:
		return s.fixedReply(req, "Hi there. May I help you?"), nil
	case model.IntentThanks:
		return s.fixedReply(req, "You are welcome!"), nil
	}

	return nil, fmt.Errorf("%w: %s", ErrIntentNotSupported, req.CurrentIntent.Name)
}

// orderDining はDiningSuggestionsインテントの状態機械です
// (invocationSource, confirmationStatus, 検証結果) の組でターンの扱いを決めます
func (s *Service) orderDining(ctx context.Context, req model.IntentRequest) (*model.IntentResponse, error) {
	slots := req.CurrentIntent.Slots
	if slots == nil {
		slots = model.EmptySlots()
	}
	now := s.now()

	// 相対日付はスロットをインプレースで書き換えてから検証する
	if raw := slots[model.SlotDiningDate]; raw != nil {
		if normalized, ok := NormalizeRelativeDate(s.policy, *raw, now); ok {
			slots[model.SlotDiningDate] = &normalized
		}
	}

	state := model.ParseSessionState(req.SessionAttributes)
	reservation := model.ReservationFromSlots(slots)
	state.CurrentReservation = &reservation

	// 検証はフルフィルメントターンを含む毎ターン実行する
	result := Validate(s.policy, reservation, now)
	if !result.Valid {
		slots[result.ViolatedSlot] = nil
		return elicitSlot(state, req.CurrentIntent.Name, slots, result.ViolatedSlot, result.Message), nil
	}

	if req.InvocationSource == model.InvocationSourceDialogCodeHook {
		switch req.CurrentIntent.ConfirmationStatus {
		case model.ConfirmationStatusDenied:
			// 自動入力の提案を拒否された場合は全スロットを破棄して最初からヒアリングする
			wasAutoPopulated := state.ConfirmationContext == model.ConfirmationContextAutoPopulate
			state.ConfirmationContext = ""
			if wasAutoPopulated {
				state.CurrentReservation = nil
				return elicitSlot(state, req.CurrentIntent.Name, model.EmptySlots(), model.SlotLocation,
					"Where would you like to make your dining reservation?"), nil
			}
			return delegate(state, slots), nil

		case model.ConfirmationStatusConfirmed:
			state.ConfirmationContext = ""
			if err := s.enqueue(ctx, reservation); err != nil {
				return nil, err
			}
			return delegate(state, slots), nil

		default:
			// None（および未知の確認状態）はフロントエンドのスロット収集を継続させる
			return delegate(state, slots), nil
		}
	}

	// フルフィルメント。スナップショットをキューへ引き渡し、セッション状態を付け替える
	state.CurrentReservation = nil
	state.LastConfirmedReservation = &reservation
	if err := s.enqueue(ctx, reservation); err != nil {
		return nil, err
	}

	logger.Debug().Str("user_id", req.UserID).Msg("reservation handed off for fulfillment")
	return closeTurn(state, model.FulfillmentStateFulfilled, "Thanks, I have placed your reservation."), nil
}

func (s *Service) enqueue(ctx context.Context, reservation model.Reservation) error {
	body, err := reservation.Encode()
	if err != nil {
		return fmt.Errorf("failed to encode reservation: %w", err)
	}
	if err := s.queue.Send(ctx, body); err != nil {
		return fmt.Errorf("failed to enqueue reservation: %w", err)
	}
	return nil
}

func (s *Service) fixedReply(req model.IntentRequest, message string) *model.IntentResponse {
	state := model.ParseSessionState(req.SessionAttributes)
	return closeTurn(state, model.FulfillmentStateFulfilled, message)
}
