package handlers

import (
	"net"
	"net/http"
	"strings"

	"github.com/appforge-ai/appforge-engine/pkg/models"
)

// ClientKey derives the anonymous grouping key for a request: an explicit
// value from the body when present, otherwise the first X-Forwarded-For hop,
// otherwise the socket address. Best-effort and spoofable; see models.AnonKey.
func ClientKey(r *http.Request, explicit string) models.AnonKey {
	if explicit != "" {
		return models.AnonKey(explicit)
	}

	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first := strings.TrimSpace(strings.Split(fwd, ",")[0])
		if first != "" {
			return models.AnonKey(first)
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return models.AnonKey(r.RemoteAddr)
	}
	return models.AnonKey(host)
}
