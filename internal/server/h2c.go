package server

import (
	"net/http"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/fanerrL/lunatv-live-go/internal/constants"
)

// WrapH2C: TLS 없이 HTTP/2(cleartext)를 받을 수 있도록 핸들러를 래핑한다.
// 하트비트처럼 짧은 요청이 반복되는 트래픽에서 연결 재사용 효과가 크다.
func WrapH2C(handler http.Handler) http.Handler {
	srv := &http2.Server{
		IdleTimeout: constants.ServerTimeout.Idle,
	}
	return h2c.NewHandler(handler, srv)
}
