package model

import "encoding/json"

// 予約フォームのスロット名
const (
	SlotLocation       = "Location"
	SlotCuisine        = "Cuisine"
	SlotDiningTime     = "DiningTime"
	SlotDiningDate     = "DiningDate"
	SlotNumberOfPeople = "NumberOfPeople"
	SlotPhoneNumber    = "PhoneNumber"
)

// SlotNames は全スロット名を列挙します
var SlotNames = []string{
	SlotLocation,
	SlotCuisine,
	SlotDiningTime,
	SlotDiningDate,
	SlotNumberOfPeople,
	SlotPhoneNumber,
}

// Reservation は収集途中の予約フォームのスナップショットです
// 各フィールドは未収集を表すnullを許容し、キューへもこの形のまま書き込まれます
type Reservation struct {
	Location       *string `json:"Location"`
	Cuisine        *string `json:"Cuisine"`
	DiningTime     *string `json:"DiningTime"`
	DiningDate     *string `json:"DiningDate"`
	NumberOfPeople *string `json:"NumberOfPeople"`
	PhoneNumber    *string `json:"PhoneNumber"`
}

// ReservationFromSlots はスロットマップから予約スナップショットを作成します
func ReservationFromSlots(slots map[string]*string) Reservation {
	return Reservation{
		Location:       slots[SlotLocation],
		Cuisine:        slots[SlotCuisine],
		DiningTime:     slots[SlotDiningTime],
		DiningDate:     slots[SlotDiningDate],
		NumberOfPeople: slots[SlotNumberOfPeople],
		PhoneNumber:    slots[SlotPhoneNumber],
	}
}

// Encode は予約スナップショットをキュー／セッション属性用のJSONに変換します
func (r Reservation) Encode() (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// DecodeReservation はJSON文字列から予約スナップショットを復元します
func DecodeReservation(s string) (Reservation, error) {
	var r Reservation
	err := json.Unmarshal([]byte(s), &r)
	return r, err
}

// EmptySlots は全スロットをnullにしたスロットマップを返します
// 確認拒否後の再ヒアリングで使用します
func EmptySlots() map[string]*string {
	slots := make(map[string]*string, len(SlotNames))
	for _, name := range SlotNames {
		slots[name] = nil
	}
	return slots
}
