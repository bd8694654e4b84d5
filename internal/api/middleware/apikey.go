package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/fernet/fernet-go"

	"github.com/finledger/transactions-service/internal/api/response"
)

// timeTokenTTL bounds how long a generated time token stays valid.
const timeTokenTTL = 5 * time.Minute

// APIKey returns a middleware guarding destructive endpoints with the
// configured internal API key. Requests authenticate with either the raw key
// in X-API-Key or a short-lived fernet time token in X-API-Token. When no key
// is configured the middleware passes everything through.
func APIKey(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			if provided := r.Header.Get("X-API-Key"); provided != "" {
				if subtle.ConstantTimeCompare([]byte(provided), []byte(apiKey)) == 1 {
					next.ServeHTTP(w, r)
					return
				}
				response.RespondError(w, http.StatusUnauthorized, response.CodeDomainError, "unauthorized", "Invalid API key")
				return
			}

			if token := r.Header.Get("X-API-Token"); token != "" {
				key := tokenKey(apiKey)
				msg := fernet.VerifyAndDecrypt([]byte(token), timeTokenTTL, []*fernet.Key{key})
				if msg != nil && subtle.ConstantTimeCompare(msg, []byte(apiKey)) == 1 {
					next.ServeHTTP(w, r)
					return
				}
				response.RespondError(w, http.StatusUnauthorized, response.CodeDomainError, "unauthorized", "Invalid or expired API token")
				return
			}

			response.RespondError(w, http.StatusUnauthorized, response.CodeDomainError, "unauthorized", "Missing API key")
		})
	}
}

// GenerateTimeToken creates a fernet token carrying the API key, valid for
// timeTokenTTL. Clients that do not want to send the raw key on every request
// can exchange it for short-lived tokens out of band.
func GenerateTimeToken(apiKey string) (string, error) {
	token, err := fernet.EncryptAndSign([]byte(apiKey), tokenKey(apiKey))
	if err != nil {
		return "", err
	}
	return string(token), nil
}

// tokenKey derives the fernet key from the configured API key.
func tokenKey(apiKey string) *fernet.Key {
	sum := sha256.Sum256([]byte(apiKey))
	key := fernet.Key(sum)
	return &key
}
