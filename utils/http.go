// utils/http.go
package utils

import (
	"net/http"
	"time"
)

// HTTPClient is shared by every outbound RPC/API call. Public chain RPCs
// can be slow, so the timeout is generous; no call is ever retried.
var HTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}
