package model

// InvocationSource はボットフロントエンドがコードフックを呼び出した契機を表します
type InvocationSource string

const (
	// InvocationSourceDialogCodeHook はスロット収集中の検証フックを表します
	InvocationSourceDialogCodeHook InvocationSource = "DialogCodeHook"
	// InvocationSourceFulfillmentCodeHook はフルフィルメント確定時のフックを表します
	InvocationSourceFulfillmentCodeHook InvocationSource = "FulfillmentCodeHook"
)

// ConfirmationStatus はインテントの確認状態を表します
// 未知の値は「未確認」として扱い、ターンを落とさないようにします
type ConfirmationStatus string

const (
	ConfirmationStatusNone      ConfirmationStatus = "None"
	ConfirmationStatusDenied    ConfirmationStatus = "Denied"
	ConfirmationStatusConfirmed ConfirmationStatus = "Confirmed"
)

// サポートするインテント名
const (
	IntentDiningSuggestions = "DiningSuggestions"
	IntentGreeting          = "Greeting"
	IntentThanks            = "Thanks"
)

// Bot は呼び出し元ボットの識別情報です
type Bot struct {
	Name    string `json:"name"`
	Alias   string `json:"alias,omitempty"`
	Version string `json:"version,omitempty"`
}

// Intent は1ターン分のインテントとスロット値のスナップショットです
// スロット値は未収集を表すためにnullを許容します
type Intent struct {
	Name               string             `json:"name"`
	Slots              map[string]*string `json:"slots"`
	ConfirmationStatus ConfirmationStatus `json:"confirmationStatus,omitempty"`
}

// IntentRequest はダイアログコントローラへの1ターン分の入力イベントです
type IntentRequest struct {
	MessageVersion    string            `json:"messageVersion,omitempty"`
	InvocationSource  InvocationSource  `json:"invocationSource"`
	UserID            string            `json:"userId"`
	InputTranscript   string            `json:"inputTranscript,omitempty"`
	SessionAttributes map[string]string `json:"sessionAttributes"`
	Bot               Bot               `json:"bot"`
	OutputDialogMode  string            `json:"outputDialogMode,omitempty"`
	CurrentIntent     Intent            `json:"currentIntent"`
}

// Slot は指定されたスロット値を安全に取得します
// キーが存在しない場合やスロットマップ自体がnilの場合はnilを返します
func (r *IntentRequest) Slot(name string) *string {
	if r.CurrentIntent.Slots == nil {
		return nil
	}
	return r.CurrentIntent.Slots[name]
}

// DialogActionType はコントローラが返すディレクティブの種別です
type DialogActionType string

const (
	DialogActionElicitSlot    DialogActionType = "ElicitSlot"
	DialogActionConfirmIntent DialogActionType = "ConfirmIntent"
	DialogActionDelegate      DialogActionType = "Delegate"
	DialogActionClose         DialogActionType = "Close"
)

// FulfillmentState はCloseディレクティブに付与する結果です
type FulfillmentState string

const (
	FulfillmentStateFulfilled FulfillmentState = "Fulfilled"
	FulfillmentStateFailed    FulfillmentState = "Failed"
)

// Message はユーザーに提示するプレーンテキストメッセージです
type Message struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// PlainText はプレーンテキストのMessageを作成します
func PlainText(content string) *Message {
	return &Message{ContentType: "PlainText", Content: content}
}

// DialogAction は1ターンにつき1つ返されるディレクティブ本体です
type DialogAction struct {
	Type             DialogActionType   `json:"type"`
	IntentName       string             `json:"intentName,omitempty"`
	Slots            map[string]*string `json:"slots,omitempty"`
	SlotToElicit     string             `json:"slotToElicit,omitempty"`
	FulfillmentState FulfillmentState   `json:"fulfillmentState,omitempty"`
	Message          *Message           `json:"message,omitempty"`
}

// IntentResponse はダイアログコントローラの出力です
// セッション属性は（更新された上で）必ず往復させます
type IntentResponse struct {
	SessionAttributes map[string]string `json:"sessionAttributes"`
	DialogAction      DialogAction      `json:"dialogAction"`
}
