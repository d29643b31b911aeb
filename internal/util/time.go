package util

import "time"

const dayKeyLayout = "2006-01-02"

// DayKey: 주어진 시간을 UTC 기준 일자 키(YYYY-MM-DD)로 변환합니다.
// 일별 통계 키는 노드 로컬 타임존과 무관하게 항상 UTC 날짜를 사용한다.
func DayKey(t time.Time) string {
	return t.UTC().Format(dayKeyLayout)
}

// LastNDayKeys: 기준 시간(reference)을 포함한 최근 n일의 일자 키를
// 오래된 날짜부터 순서대로 반환합니다.
func LastNDayKeys(reference time.Time, n int) []string {
	if n <= 0 {
		return nil
	}

	keys := make([]string, 0, n)
	day := reference.UTC().Truncate(24 * time.Hour)
	for i := n - 1; i >= 0; i-- {
		keys = append(keys, day.AddDate(0, 0, -i).Format(dayKeyLayout))
	}
	return keys
}
