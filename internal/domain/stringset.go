package domain

import (
	"sort"

	"github.com/goccy/go-json"
)

// StringSet: 중복 없는 사용자 이름 집합. JSON으로는 정렬된 배열로 직렬화되므로
// 같은 집합은 항상 같은 바이트로 저장된다.
type StringSet map[string]struct{}

// NewStringSet: 주어진 멤버들로 집합을 생성한다.
func NewStringSet(members ...string) StringSet {
	s := make(StringSet, len(members))
	for _, m := range members {
		s[m] = struct{}{}
	}
	return s
}

// Add: 멤버를 추가하고, 새로 추가된 경우 true를 반환한다.
func (s StringSet) Add(member string) bool {
	if _, ok := s[member]; ok {
		return false
	}
	s[member] = struct{}{}
	return true
}

// Contains: 멤버 포함 여부를 반환한다.
func (s StringSet) Contains(member string) bool {
	_, ok := s[member]
	return ok
}

// Len: 집합 크기를 반환한다.
func (s StringSet) Len() int {
	return len(s)
}

// Members: 정렬된 멤버 목록을 반환한다.
func (s StringSet) Members() []string {
	members := make([]string, 0, len(s))
	for m := range s {
		members = append(members, m)
	}
	sort.Strings(members)
	return members
}

// MarshalJSON 는 동작을 수행한다.
func (s StringSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Members())
}

// UnmarshalJSON 는 동작을 수행한다.
func (s *StringSet) UnmarshalJSON(data []byte) error {
	var members []string
	if err := json.Unmarshal(data, &members); err != nil {
		return err
	}
	*s = NewStringSet(members...)
	return nil
}
