package dialog

import (
	"strings"
	"testing"
	"time"

	"github.com/karino-t/dining-concierge/internal/model"
)

func strPtr(s string) *string { return &s }

// 2026-09-01 15:00 UTC 固定。検証はこの時点を「今」として行う
var fixedNow = time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC)

func testPolicy() Policy {
	return Policy{
		Cuisines:           []string{"french", "italian", "chinese", "thailand", "japanese"},
		PopularCuisine:     "Chinese",
		Cities:             []string{"new york"},
		CheckLocation:      true,
		AllowRelativeDates: true,
		DateLayout:         "2006-01-02",
		OpenHour:           10,
		CloseHour:          17,
		MaxPartySize:       50,
		TimeZone:           time.UTC,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name         string
		reservation  model.Reservation
		wantValid    bool
		wantSlot     string
		wantContains string
	}{
		{
			name:        "全スロット未入力は有効",
			reservation: model.Reservation{},
			wantValid:   true,
		},
		{
			name:         "許可リスト外のキュイジーヌ",
			reservation:  model.Reservation{Cuisine: strPtr("mexican")},
			wantValid:    false,
			wantSlot:     model.SlotCuisine,
			wantContains: "mexican",
		},
		{
			name:        "キュイジーヌは大文字小文字を区別しない",
			reservation: model.Reservation{Cuisine: strPtr("CHINESE")},
			wantValid:   true,
		},
		{
			name:         "日付のフォーマット違反",
			reservation:  model.Reservation{DiningDate: strPtr("04/01/2026")},
			wantValid:    false,
			wantSlot:     model.SlotDiningDate,
			wantContains: "recognize the date",
		},
		{
			name:         "当日は予約できない",
			reservation:  model.Reservation{DiningDate: strPtr("2026-09-01")},
			wantValid:    false,
			wantSlot:     model.SlotDiningDate,
			wantContains: "from tomorrow onwards",
		},
		{
			name:        "過去の日付",
			reservation: model.Reservation{DiningDate: strPtr("2026-08-31")},
			wantValid:   false,
			wantSlot:    model.SlotDiningDate,
		},
		{
			name:        "翌日は有効",
			reservation: model.Reservation{DiningDate: strPtr("2026-09-02")},
			wantValid:   true,
		},
		{
			name:         "時刻のフォーマット違反",
			reservation:  model.Reservation{DiningTime: strPtr("1230")},
			wantValid:    false,
			wantSlot:     model.SlotDiningTime,
			wantContains: "recognize the time",
		},
		{
			name:        "存在しない時刻",
			reservation: model.Reservation{DiningTime: strPtr("25:00")},
			wantValid:   false,
			wantSlot:    model.SlotDiningTime,
		},
		{
			name:         "営業時間前",
			reservation:  model.Reservation{DiningTime: strPtr("9:30")},
			wantValid:    false,
			wantSlot:     model.SlotDiningTime,
			wantContains: "business hours",
		},
		{
			name:         "営業時間後",
			reservation:  model.Reservation{DiningTime: strPtr("18:00")},
			wantValid:    false,
			wantSlot:     model.SlotDiningTime,
			wantContains: "business hours",
		},
		{
			name:        "開店時刻ちょうどは有効",
			reservation: model.Reservation{DiningTime: strPtr("10:00")},
			wantValid:   true,
		},
		{
			name:        "閉店窓の最終分は有効",
			reservation: model.Reservation{DiningTime: strPtr("17:59")},
			wantValid:   true,
		},
		{
			name:        "先頭ゼロなしの時刻も受け付ける",
			reservation: model.Reservation{DiningTime: strPtr("1:05")},
			wantValid:   false,
			wantSlot:    model.SlotDiningTime,
		},
		{
			name:        "電話番号が9桁",
			reservation: model.Reservation{PhoneNumber: strPtr("123456789")},
			wantValid:   false,
			wantSlot:    model.SlotPhoneNumber,
		},
		{
			name:        "電話番号が11桁",
			reservation: model.Reservation{PhoneNumber: strPtr("12345678901")},
			wantValid:   false,
			wantSlot:    model.SlotPhoneNumber,
		},
		{
			name:        "電話番号に数字以外",
			reservation: model.Reservation{PhoneNumber: strPtr("12345678x0")},
			wantValid:   false,
			wantSlot:    model.SlotPhoneNumber,
		},
		{
			name:        "電話番号が10桁ちょうど",
			reservation: model.Reservation{PhoneNumber: strPtr("1234567890")},
			wantValid:   true,
		},
		{
			name:         "人数ゼロ",
			reservation:  model.Reservation{NumberOfPeople: strPtr("0")},
			wantValid:    false,
			wantSlot:     model.SlotNumberOfPeople,
			wantContains: "larger than zero",
		},
		{
			name:        "人数が負",
			reservation: model.Reservation{NumberOfPeople: strPtr("-3")},
			wantValid:   false,
			wantSlot:    model.SlotNumberOfPeople,
		},
		{
			name:         "人数が上限超過",
			reservation:  model.Reservation{NumberOfPeople: strPtr("51")},
			wantValid:    false,
			wantSlot:     model.SlotNumberOfPeople,
			wantContains: "up to 50",
		},
		{
			name:        "人数が整数でない",
			reservation: model.Reservation{NumberOfPeople: strPtr("four")},
			wantValid:   false,
			wantSlot:    model.SlotNumberOfPeople,
		},
		{
			name:        "人数が上限ちょうど",
			reservation: model.Reservation{NumberOfPeople: strPtr("50")},
			wantValid:   true,
		},
		{
			name:         "許可リスト外の都市",
			reservation:  model.Reservation{Location: strPtr("boston")},
			wantValid:    false,
			wantSlot:     model.SlotLocation,
			wantContains: "new york",
		},
		{
			name:        "都市は大文字小文字を区別しない",
			reservation: model.Reservation{Location: strPtr("New York")},
			wantValid:   true,
		},
		{
			name: "複数違反時はキュイジーヌが先に報告される",
			reservation: model.Reservation{
				Cuisine:     strPtr("mexican"),
				PhoneNumber: strPtr("12"),
			},
			wantValid: false,
			wantSlot:  model.SlotCuisine,
		},
		{
			name: "全スロットが有効な完全なスナップショット",
			reservation: model.Reservation{
				Location:       strPtr("new york"),
				Cuisine:        strPtr("japanese"),
				DiningDate:     strPtr("2026-09-02"),
				DiningTime:     strPtr("12:30"),
				NumberOfPeople: strPtr("4"),
				PhoneNumber:    strPtr("1234567890"),
			},
			wantValid: true,
		},
	}

	policy := testPolicy()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(policy, tt.reservation, fixedNow)
			if result.Valid != tt.wantValid {
				t.Fatalf("Validate() valid = %v, want %v (slot=%q message=%q)",
					result.Valid, tt.wantValid, result.ViolatedSlot, result.Message)
			}
			if result.ViolatedSlot != tt.wantSlot {
				t.Errorf("Validate() violated slot = %q, want %q", result.ViolatedSlot, tt.wantSlot)
			}
			if tt.wantContains != "" && !strings.Contains(result.Message, tt.wantContains) {
				t.Errorf("Validate() message = %q, want it to contain %q", result.Message, tt.wantContains)
			}
		})
	}
}

func TestValidateIsIdempotent(t *testing.T) {
	policy := testPolicy()
	reservation := model.Reservation{
		Cuisine:        strPtr("chinese"),
		DiningDate:     strPtr("2026-09-02"),
		NumberOfPeople: strPtr("2"),
	}

	first := Validate(policy, reservation, fixedNow)
	second := Validate(policy, reservation, fixedNow)

	if first != second {
		t.Errorf("Validate() is not idempotent: first = %+v, second = %+v", first, second)
	}
	if !first.Valid {
		t.Errorf("Validate() = %+v, want valid", first)
	}
}

func TestValidateWithoutLocationCheck(t *testing.T) {
	policy := testPolicy()
	policy.CheckLocation = false

	result := Validate(policy, model.Reservation{Location: strPtr("atlantis")}, fixedNow)
	if !result.Valid {
		t.Errorf("Validate() = %+v, want valid when location check is off", result)
	}
}

func TestNormalizeRelativeDate(t *testing.T) {
	policy := testPolicy()

	tests := []struct {
		name           string
		value          string
		allowRelative  bool
		want           string
		wantNormalized bool
	}{
		{
			name:           "todayは当日のISO日付へ",
			value:          "today",
			allowRelative:  true,
			want:           "2026-09-01",
			wantNormalized: true,
		},
		{
			name:           "tomorrowは翌日のISO日付へ",
			value:          "tomorrow",
			allowRelative:  true,
			want:           "2026-09-02",
			wantNormalized: true,
		},
		{
			name:           "大文字混じりでも正規化する",
			value:          "Tomorrow",
			allowRelative:  true,
			want:           "2026-09-02",
			wantNormalized: true,
		},
		{
			name:          "リテラル日付はそのまま",
			value:         "2026-09-10",
			allowRelative: true,
			want:          "2026-09-10",
		},
		{
			name:          "無効化されたポリシーでは変換しない",
			value:         "tomorrow",
			allowRelative: false,
			want:          "tomorrow",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy.AllowRelativeDates = tt.allowRelative
			got, normalized := NormalizeRelativeDate(policy, tt.value, fixedNow)
			if got != tt.want {
				t.Errorf("NormalizeRelativeDate() = %q, want %q", got, tt.want)
			}
			if normalized != tt.wantNormalized {
				t.Errorf("NormalizeRelativeDate() normalized = %v, want %v", normalized, tt.wantNormalized)
			}
		})
	}
}
