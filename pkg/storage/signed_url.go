package storage

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Token validation failures.
var (
	ErrTokenMalformed = errors.New("download token is malformed")
	ErrTokenSignature = errors.New("download token signature mismatch")
	ErrTokenExpired   = errors.New("download token expired")
)

// DownloadToken is the metadata carried by a signed download token.
type DownloadToken struct {
	ExportID  string
	Path      string
	ExpiresAt time.Time
}

// SignedURLSigner issues and verifies HMAC-SHA256 download tokens of the form
// exportID.expiry.base64(path).signature.
type SignedURLSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSignedURLSigner constructs a signer with the provided secret and TTL.
func NewSignedURLSigner(secret string, ttl time.Duration) *SignedURLSigner {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SignedURLSigner{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Generate signs a token for the stored export.
func (s *SignedURLSigner) Generate(exportID, relPath string) (string, time.Time, error) {
	if exportID == "" || relPath == "" {
		return "", time.Time{}, fmt.Errorf("export id and path are required")
	}
	if strings.Contains(exportID, ".") {
		return "", time.Time{}, fmt.Errorf("export id must not contain '.'")
	}
	if len(s.secret) == 0 {
		return "", time.Time{}, fmt.Errorf("signing secret missing")
	}
	expiresAt := s.now().Add(s.ttl).Truncate(time.Second)
	ts := strconv.FormatInt(expiresAt.Unix(), 10)
	encodedPath := base64.RawURLEncoding.EncodeToString([]byte(relPath))
	token := strings.Join([]string{exportID, ts, encodedPath, s.sign(exportID, ts, encodedPath)}, ".")
	return token, expiresAt, nil
}

// Parse verifies the signature and, unless allowExpired is set, the expiry.
func (s *SignedURLSigner) Parse(token string, allowExpired bool) (DownloadToken, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 4 {
		return DownloadToken{}, ErrTokenMalformed
	}
	exportID, ts, encodedPath, signature := parts[0], parts[1], parts[2], parts[3]

	if !hmac.Equal([]byte(s.sign(exportID, ts, encodedPath)), []byte(signature)) {
		return DownloadToken{}, ErrTokenSignature
	}
	rawPath, err := base64.RawURLEncoding.DecodeString(encodedPath)
	if err != nil {
		return DownloadToken{}, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
	}
	expUnix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return DownloadToken{}, fmt.Errorf("%w: invalid expiry", ErrTokenMalformed)
	}
	out := DownloadToken{ExportID: exportID, Path: string(rawPath), ExpiresAt: time.Unix(expUnix, 0)}
	if !allowExpired && s.now().After(out.ExpiresAt) {
		return DownloadToken{}, ErrTokenExpired
	}
	return out, nil
}

func (s *SignedURLSigner) sign(exportID, ts, encodedPath string) string {
	mac := hmac.New(sha256.New, s.secret)
	_, _ = mac.Write([]byte(exportID + "|" + ts + "|" + encodedPath))
	return hex.EncodeToString(mac.Sum(nil))
}
