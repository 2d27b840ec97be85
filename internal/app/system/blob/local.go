// internal/app/system/blob/local.go

// Package blob provides a local-disk object store with HMAC-signed,
// expiring download URLs. Deployments that outgrow a single disk swap in
// an S3-backed store behind the same interface.
package blob

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"go.uber.org/zap"
)

// Local stores objects under a base directory. URLs returned by
// PresignedURL are served by ServeHTTP, which verifies the signature and
// the expiry.
type Local struct {
	dir     string
	baseURL string // e.g. "http://localhost:8080/files"
	secret  []byte
	log     *zap.Logger
}

// NewLocal creates a Local store rooted at dir.
func NewLocal(dir, baseURL string, secret []byte, logger *zap.Logger) (*Local, error) {
	if len(secret) == 0 {
		return nil, fmt.Errorf("blob: signing secret is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("blob: create base dir: %w", err)
	}
	return &Local{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
		log:     logger,
	}, nil
}

// Put writes an object. Parent directories are created as needed.
func (l *Local) Put(ctx context.Context, p string, r io.Reader, opts *storage.PutOptions) error {
	full, err := l.fullPath(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}

	f, err := os.Create(full)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(full)
		return err
	}
	return f.Close()
}

// PresignedURL returns a download URL that expires after opts.Expires.
func (l *Local) PresignedURL(ctx context.Context, p string, opts *storage.PresignOptions) (string, error) {
	if _, err := l.fullPath(p); err != nil {
		return "", err
	}

	expires := 15 * time.Minute
	disposition := ""
	if opts != nil {
		if opts.Expires > 0 {
			expires = opts.Expires
		}
		disposition = opts.ContentDisposition
	}
	exp := time.Now().UTC().Add(expires).Unix()

	q := url.Values{}
	q.Set("exp", strconv.FormatInt(exp, 10))
	if disposition != "" {
		q.Set("dl", disposition)
	}
	q.Set("sig", l.sign(p, exp, disposition))

	return l.baseURL + "/" + p + "?" + q.Encode(), nil
}

// ServeHTTP serves signed downloads. Mount under the path PresignedURL
// builds URLs against, stripping the prefix first.
func (l *Local) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p := strings.TrimPrefix(r.URL.Path, "/")

	exp, err := strconv.ParseInt(r.URL.Query().Get("exp"), 10, 64)
	if err != nil || time.Now().UTC().Unix() > exp {
		http.Error(w, "link expired", http.StatusForbidden)
		return
	}
	disposition := r.URL.Query().Get("dl")
	if !hmac.Equal([]byte(r.URL.Query().Get("sig")), []byte(l.sign(p, exp, disposition))) {
		l.log.Warn("signed download rejected", zap.String("path", p))
		http.Error(w, "invalid signature", http.StatusForbidden)
		return
	}

	full, err := l.fullPath(p)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	if disposition != "" {
		w.Header().Set("Content-Disposition", disposition)
	}
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	http.ServeFile(w, r, full)
}

// fullPath resolves p under the base dir, refusing traversal outside it.
func (l *Local) fullPath(p string) (string, error) {
	if p == "" || strings.Contains(p, "..") || strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("blob: invalid path %q", p)
	}
	return filepath.Join(l.dir, filepath.FromSlash(path.Clean(p))), nil
}

func (l *Local) sign(p string, exp int64, disposition string) string {
	mac := hmac.New(sha256.New, l.secret)
	fmt.Fprintf(mac, "%s\x00%d\x00%s", p, exp, disposition)
	return hex.EncodeToString(mac.Sum(nil))
}
