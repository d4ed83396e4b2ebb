package auth

import (
    "crypto/hmac"
    "crypto/sha256"
    "encoding/base64"
    "encoding/hex"
    "errors"
    "strconv"
    "strings"
    "time"
)

var (
    ErrTokenFormat = errors.New("invalid token format")
    ErrTokenSig    = errors.New("invalid token signature")
    ErrTokenExp    = errors.New("token expired")
    ErrTokenCode   = errors.New("session code mismatch")
)

// GenerateFeedToken builds a change-feed access token for a session.
// Format: base64url(session_code + "." + exp_unix + "." + hex(hmac_sha256(secret, session_code+"."+exp)))
func GenerateFeedToken(secret, sessionCode string, expUnix int64) string {
    msg := sessionCode + "." + strconv.FormatInt(expUnix, 10)
    mac := hmac.New(sha256.New, []byte(secret))
    mac.Write([]byte(msg))
    sig := hex.EncodeToString(mac.Sum(nil))
    return base64.RawURLEncoding.EncodeToString([]byte(msg + "." + sig))
}

// ValidateFeedToken parses and validates the token, returning the embedded
// session code and expiry.
func ValidateFeedToken(secret, token, expectCode string, now time.Time, skewSeconds int) (string, int64, error) {
    b, err := base64.RawURLEncoding.DecodeString(token)
    if err != nil {
        return "", 0, ErrTokenFormat
    }
    parts := strings.Split(string(b), ".")
    if len(parts) != 3 {
        return "", 0, ErrTokenFormat
    }
    code, expStr, sigHex := parts[0], parts[1], parts[2]
    exp, err := strconv.ParseInt(expStr, 10, 64)
    if err != nil {
        return "", 0, ErrTokenFormat
    }
    if expectCode != "" && code != expectCode {
        return "", 0, ErrTokenCode
    }
    mac := hmac.New(sha256.New, []byte(secret))
    mac.Write([]byte(code + "." + expStr))
    want := mac.Sum(nil)
    got, err := hex.DecodeString(sigHex)
    if err != nil {
        return "", 0, ErrTokenFormat
    }
    // constant-time compare
    if !hmac.Equal(want, got) {
        return "", 0, ErrTokenSig
    }
    skew := int64(skewSeconds)
    if now.Unix() > exp+skew {
        return "", 0, ErrTokenExp
    }
    return code, exp, nil
}
