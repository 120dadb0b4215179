// Package dialog はレストラン予約ボットのスロットフィリング状態機械を実装します
// 振る舞いの差分（許可するキュイジーヌ、都市チェックの有無、相対日付の扱いなど）は
// すべてPolicyの設定値として表現し、状態機械本体は1つだけ持ちます
package dialog

import (
	"strings"
	"time"
)

// Policy はスロット検証と対話フローの業務ルールを束ねた設定です
type Policy struct {
	// Cuisines は受け付けるキュイジーヌの許可リスト（小文字）です
	Cuisines []string
	// PopularCuisine はキュイジーヌ違反時に提案する代替です
	PopularCuisine string
	// Cities は受け付ける都市の許可リスト（小文字）です
	Cities []string
	// CheckLocation がfalseの場合、Locationスロットは検証しません
	CheckLocation bool
	// AllowRelativeDates がtrueの場合、today/tomorrowをISO日付に正規化します
	AllowRelativeDates bool
	// DateLayout は日付スロットのフォーマットです
	DateLayout string
	// OpenHour/CloseHour は営業時間帯（時、両端含む）です
	OpenHour  int
	CloseHour int
	// MaxPartySize は受け付ける最大人数です
	MaxPartySize int
	// TimeZone は「今日」「明日」を解決するタイムゾーンです
	TimeZone *time.Location
}

// DefaultPolicy は本番構成に対応する既定のポリシーを返します
func DefaultPolicy() Policy {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.UTC
	}
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
		TimeZone:           loc,
	}
}

// location はタイムゾーン未設定時にUTCへフォールバックします
func (p Policy) location() *time.Location {
	if p.TimeZone != nil {
		return p.TimeZone
	}
	return time.UTC
}

// dateLayout はフォーマット未設定時にISO-8601へフォールバックします
func (p Policy) dateLayout() string {
	if p.DateLayout != "" {
		return p.DateLayout
	}
	return "2006-01-02"
}

func containsFold(list []string, value string) bool {
	lower := strings.ToLower(value)
	for _, item := range list {
		if item == lower {
			return true
		}
	}
	return false
}
