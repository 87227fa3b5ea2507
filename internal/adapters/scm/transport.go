package scm

import (
	"crypto/tls"
	"net/http"
)

// BaseTransport clones the default transport for provider clients. insecure
// drops TLS verification, matching the DISABLE_SSL_VERIFICATION escape hatch
// for intercepting proxies
func BaseTransport(insecure bool) http.RoundTripper {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConnsPerHost = 20
	if insecure {
		if t.TLSClientConfig == nil {
			t.TLSClientConfig = &tls.Config{} // #nosec G402 -- operator opt-in
		}
		t.TLSClientConfig.InsecureSkipVerify = true
	}
	return t
}
