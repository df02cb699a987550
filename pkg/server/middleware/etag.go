package middleware

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"net/http"
	"strings"
)

// DefaultMaxAge is the Cache-Control max-age of tagged responses
const DefaultMaxAge = "86400"

type bufferedWriter struct {
	header     http.Header
	statusCode int
	body       bytes.Buffer
}

func (b *bufferedWriter) Header() http.Header {
	return b.header
}

func (b *bufferedWriter) WriteHeader(code int) {
	if b.statusCode == 0 {
		b.statusCode = code
	}
}

func (b *bufferedWriter) Write(p []byte) (int, error) {
	if b.statusCode == 0 {
		b.statusCode = http.StatusOK
	}
	return b.body.Write(p)
}

// ETag buffers GET and HEAD responses and tags successful ones with a hash
// of the body. If-None-Match answers 304 and a failed If-Match answers 412.
func ETag(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}

		buf := &bufferedWriter{header: w.Header()}
		next.ServeHTTP(buf, r)
		if buf.statusCode == 0 {
			buf.statusCode = http.StatusOK
		}

		if buf.statusCode != http.StatusOK {
			w.WriteHeader(buf.statusCode)
			_, _ = w.Write(buf.body.Bytes())
			return
		}

		sum := md5.Sum(buf.body.Bytes())
		etag := `"` + hex.EncodeToString(sum[:]) + `"`
		w.Header().Set("ETag", etag)
		if w.Header().Get("Cache-Control") == "" {
			w.Header().Set("Cache-Control", "private, max-age="+DefaultMaxAge)
		}

		if ifMatch := r.Header.Get("If-Match"); ifMatch != "" && !matchesETag(ifMatch, etag) {
			respondWithError(w, http.StatusPreconditionFailed, "Precondition failed")
			return
		}
		if ifNoneMatch := r.Header.Get("If-None-Match"); ifNoneMatch != "" && matchesETag(ifNoneMatch, etag) {
			w.Header().Del("Content-Length")
			w.WriteHeader(http.StatusNotModified)
			return
		}

		w.WriteHeader(http.StatusOK)
		if r.Method == http.MethodGet {
			_, _ = w.Write(buf.body.Bytes())
		}
	})
}

// matchesETag reports whether a comma separated If-Match or If-None-Match
// value lists etag. Weak validators compare equal to strong ones.
func matchesETag(header, etag string) bool {
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" {
			return true
		}
		if strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
