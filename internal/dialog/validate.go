package dialog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/karino-t/dining-concierge/internal/model"
)

// H:MM または HH:MM（分は00〜59）
var timePattern = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):([0-5][0-9])$`)

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

// ValidationResult は1スナップショット分の検証結果です
// Messageが空の場合は、フロントエンド側の既定リプロンプトを使うことを意味します
type ValidationResult struct {
	Valid        bool
	ViolatedSlot string
	Message      string
}

func valid() ValidationResult {
	return ValidationResult{Valid: true}
}

func invalid(slot, message string) ValidationResult {
	return ValidationResult{Valid: false, ViolatedSlot: slot, Message: message}
}

// NormalizeRelativeDate はtoday/tomorrowをポリシーのタイムゾーンでISO日付へ展開します
// 展開した場合は第2戻り値がtrueになります
func NormalizeRelativeDate(p Policy, value string, now time.Time) (string, bool) {
	if !p.AllowRelativeDates {
		return value, false
	}
	today := now.In(p.location())
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "today":
		return today.Format(p.dateLayout()), true
	case "tomorrow":
		return today.AddDate(0, 0, 1).Format(p.dateLayout()), true
	}
	return value, false
}

// Validate は予約スナップショットを検証します
// 入力された項目のみを対象に、キュイジーヌ→日付→時刻→電話番号→人数→都市の
// 固定順で検査し、最初の違反で打ち切ります
func Validate(p Policy, r model.Reservation, now time.Time) ValidationResult {
	if r.Cuisine != nil {
		if !containsFold(p.Cuisines, *r.Cuisine) {
			return invalid(model.SlotCuisine, fmt.Sprintf(
				"We do not have %s, would you like a different type of dinner? Our most popular cuisine are %s",
				*r.Cuisine, p.PopularCuisine))
		}
	}

	if r.DiningDate != nil {
		date, err := time.ParseInLocation(p.dateLayout(), *r.DiningDate, p.location())
		if err != nil {
			return invalid(model.SlotDiningDate,
				"Sorry. We don't recognize the date you entered, use a format 2018-04-01. Can you enter again?")
		}
		today := now.In(p.location())
		today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, p.location())
		// 当日予約は受け付けない。予約は翌日以降
		if !date.After(today) {
			return invalid(model.SlotDiningDate,
				"You can reserve a seat from tomorrow onwards. What day would you like to choose?")
		}
	}

	if r.DiningTime != nil {
		match := timePattern.FindStringSubmatch(*r.DiningTime)
		if match == nil {
			return invalid(model.SlotDiningTime,
				"Sorry. We don't recognize the time you entered, use the format 18:00. Can you enter again?")
		}
		hour, err := strconv.Atoi(match[1])
		if err != nil {
			// 正規表現を通過した時点で数値のはずだが、既定リプロンプトに委ねる
			return invalid(model.SlotDiningTime, "")
		}
		if hour < p.OpenHour || hour > p.CloseHour {
			return invalid(model.SlotDiningTime, fmt.Sprintf(
				"Our business hours are from %d:00 to %d:59. Can you specify a time during this range?",
				p.OpenHour, p.CloseHour))
		}
	}

	if r.PhoneNumber != nil {
		if !phonePattern.MatchString(*r.PhoneNumber) {
			return invalid(model.SlotPhoneNumber, "Please input a valid phone number!")
		}
	}

	if r.NumberOfPeople != nil {
		people, err := strconv.Atoi(*r.NumberOfPeople)
		if err != nil || people <= 0 {
			return invalid(model.SlotNumberOfPeople,
				"Please input a valid integer number larger than zero!")
		}
		if people > p.MaxPartySize {
			return invalid(model.SlotNumberOfPeople, fmt.Sprintf(
				"Sorry we only provide restaurant recommendations for up to %d people.", p.MaxPartySize))
		}
	}

	if p.CheckLocation && r.Location != nil {
		if !containsFold(p.Cities, *r.Location) {
			example := "new york"
			if len(p.Cities) > 0 {
				example = p.Cities[0]
			}
			return invalid(model.SlotLocation, fmt.Sprintf(
				"Please input a valid location in USA, for example %s", example))
		}
	}

	return valid()
}
