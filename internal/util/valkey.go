package util

import (
	"errors"

	"github.com/valkey-io/valkey-go"
)

// IsValkeyNil: 키 부재(nil reply)로 끝난 에러인지 판별한다.
// fmt.Errorf("%w", ...)로 래핑된 경우까지 전부 언랩해서 확인한다.
func IsValkeyNil(err error) bool {
	for ; err != nil; err = errors.Unwrap(err) {
		if valkey.IsValkeyNil(err) {
			return true
		}
	}
	return false
}
