package model

// セッション属性のうちコントローラが所有するキー
const (
	sessionKeyCurrentReservation       = "currentReservation"
	sessionKeyLastConfirmedReservation = "lastConfirmedReservation"
	sessionKeyConfirmationContext      = "confirmationContext"
)

// ConfirmationContextAutoPopulate は自動入力された提案に対する確認中であることを表します
const ConfirmationContextAutoPopulate = "AutoPopulate"

// SessionState はセッション属性バッグの型付き表現です
// コントローラが認識しないキーは素通しで往復させます
type SessionState struct {
	CurrentReservation       *Reservation
	LastConfirmedReservation *Reservation
	ConfirmationContext      string

	extra map[string]string
}

// ParseSessionState はワイヤ形式のセッション属性から状態を復元します
// 壊れたJSONは「値なし」として扱い、ターンを失敗させません
func ParseSessionState(attrs map[string]string) SessionState {
	state := SessionState{}
	for key, value := range attrs {
		switch key {
		case sessionKeyCurrentReservation:
			if r, err := DecodeReservation(value); err == nil {
				state.CurrentReservation = &r
			}
		case sessionKeyLastConfirmedReservation:
			if r, err := DecodeReservation(value); err == nil {
				state.LastConfirmedReservation = &r
			}
		case sessionKeyConfirmationContext:
			state.ConfirmationContext = value
		default:
			if state.extra == nil {
				state.extra = make(map[string]string)
			}
			state.extra[key] = value
		}
	}
	return state
}

// Attributes は状態をワイヤ形式のセッション属性に戻します
// 空のフィールドはキーごと省略します
func (s SessionState) Attributes() map[string]string {
	attrs := make(map[string]string, len(s.extra)+3)
	for key, value := range s.extra {
		attrs[key] = value
	}
	if s.CurrentReservation != nil {
		if encoded, err := s.CurrentReservation.Encode(); err == nil {
			attrs[sessionKeyCurrentReservation] = encoded
		}
	}
	if s.LastConfirmedReservation != nil {
		if encoded, err := s.LastConfirmedReservation.Encode(); err == nil {
			attrs[sessionKeyLastConfirmedReservation] = encoded
		}
	}
	if s.ConfirmationContext != "" {
		attrs[sessionKeyConfirmationContext] = s.ConfirmationContext
	}
	return attrs
}
