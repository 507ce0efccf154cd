package infra

import (
	"time"

	"github.com/imroc/req/v3"
)

// ProvideHttpClient builds the shared HTTP client used for snapshot polling
// and the scan relay. Retries are handled by the sync client's own backoff,
// so only a per-request timeout is set here.
func ProvideHttpClient() *req.Client {
	return req.C().
		SetTimeout(10 * time.Second)
}
