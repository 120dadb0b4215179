package dialog

import (
	"github.com/karino-t/dining-concierge/internal/model"
)

// レスポンスビルダー群
// 1ターンにつき必ず1つのディレクティブを返します

// elicitSlot は指定スロットの再ヒアリングを指示します
// messageが空の場合はフロントエンドの既定リプロンプトに委ねます
func elicitSlot(state model.SessionState, intentName string, slots map[string]*string, slotToElicit, message string) *model.IntentResponse {
	action := model.DialogAction{
		Type:         model.DialogActionElicitSlot,
		IntentName:   intentName,
		Slots:        slots,
		SlotToElicit: slotToElicit,
	}
	if message != "" {
		action.Message = model.PlainText(message)
	}
	return &model.IntentResponse{
		SessionAttributes: state.Attributes(),
		DialogAction:      action,
	}
}

// confirmIntent は実行前のYes/No確認を指示します
// 検証済みパスからは到達しませんが、ディレクティブ契約の一部として保持します
func confirmIntent(state model.SessionState, intentName string, slots map[string]*string, message string) *model.IntentResponse {
	return &model.IntentResponse{
		SessionAttributes: state.Attributes(),
		DialogAction: model.DialogAction{
			Type:       model.DialogActionConfirmIntent,
			IntentName: intentName,
			Slots:      slots,
			Message:    model.PlainText(message),
		},
	}
}

// delegate は次のアクションの決定をフロントエンド側のポリシーへ委ねます
func delegate(state model.SessionState, slots map[string]*string) *model.IntentResponse {
	return &model.IntentResponse{
		SessionAttributes: state.Attributes(),
		DialogAction: model.DialogAction{
			Type:  model.DialogActionDelegate,
			Slots: slots,
		},
	}
}

// closeTurn は最終メッセージとともにターンを終了します
func closeTurn(state model.SessionState, fulfillmentState model.FulfillmentState, message string) *model.IntentResponse {
	return &model.IntentResponse{
		SessionAttributes: state.Attributes(),
		DialogAction: model.DialogAction{
			Type:             model.DialogActionClose,
			FulfillmentState: fulfillmentState,
			Message:          model.PlainText(message),
		},
	}
}
