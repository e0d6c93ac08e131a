package forwarder

import (
	"net/http"
	"strings"
)

// Hop-by-hop headers, removed in both directions.
var hopHeaders = []string{
	"Connection",
	"Proxy-Connection",
	"Keep-Alive",
	"Proxy-Authenticate",
	"Proxy-Authorization",
	"Te",
	"Trailer",
	"Transfer-Encoding",
	"Upgrade",
}

// copyHeaders clones src without hop-by-hop headers, anything listed in its
// Connection header, and the extra names given
func copyHeaders(src http.Header, drop ...string) http.Header {
	dst := src.Clone()
	if dst == nil {
		dst = make(http.Header)
	}

	for _, value := range src.Values("Connection") {
		for _, name := range strings.Split(value, ",") {
			if name = strings.TrimSpace(name); name != "" {
				dst.Del(name)
			}
		}
	}
	for _, name := range hopHeaders {
		dst.Del(name)
	}
	for _, name := range drop {
		dst.Del(name)
	}
	return dst
}
