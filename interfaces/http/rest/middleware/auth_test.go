package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"ideaforge-backend/pkg/auth"
)

const testSecret = "test-secret-key-for-middleware"

func newTestValidator(t *testing.T) *auth.JWTValidator {
	t.Helper()
	validator, err := auth.NewJWTValidator(auth.JWTConfig{
		SigningMethod: "HS256",
		SecretKey:     testSecret,
		Issuer:        defaultIssuer,
		Audience:      defaultAudience,
	})
	require.NoError(t, err)
	return validator
}

func mintToken(t *testing.T, userID string, expiry time.Duration) string {
	t.Helper()
	generator, err := auth.NewJWTGenerator(auth.JWTGeneratorConfig{
		SigningMethod: "HS256",
		SecretKey:     testSecret,
		Issuer:        defaultIssuer,
		Audience:      defaultAudience,
		ExpiryTime:    expiry,
	})
	require.NoError(t, err)
	token, err := generator.GenerateToken(userID, "user@example.com", nil)
	require.NoError(t, err)
	return token
}

func userEchoHandler(t *testing.T, sawUser *string) http.Handler {
	t.Helper()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := auth.GetUserFromContext(r.Context())
		require.NoError(t, err)
		*sawUser = user.UserID
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticateTrustsGatewayHeadersInLambda(t *testing.T) {
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "ideaforge-api")

	var sawUser string
	handler := Authenticate(nil, zap.NewNop())(userEchoHandler(t, &sawUser))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ideas", nil)
	req.Header.Set("X-API-Gateway-Authorized", "true")
	req.Header.Set("X-User-ID", "user-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", sawUser)
}

func TestAuthenticateInLambdaRejectsUnauthorizedRequests(t *testing.T) {
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "ideaforge-api")

	handler := Authenticate(nil, zap.NewNop())(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("request must not reach the handler")
		}))

	// A locally signed token is not enough without the gateway headers
	req := httptest.NewRequest(http.MethodGet, "/api/v1/ideas", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, "user-1", time.Hour))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticateValidatesLocallyOutsideLambda(t *testing.T) {
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "")

	var sawUser string
	handler := Authenticate(newTestValidator(t), zap.NewNop())(userEchoHandler(t, &sawUser))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ideas", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, "user-2", time.Hour))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-2", sawUser)

	// Gateway headers alone carry no weight outside Lambda
	req = httptest.NewRequest(http.MethodGet, "/api/v1/ideas", nil)
	req.Header.Set("X-API-Gateway-Authorized", "true")
	req.Header.Set("X-User-ID", "user-2")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshTokenReissuesForExpiredToken(t *testing.T) {
	refresh, err := NewTokenRefreshMiddleware(testSecret)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, "user-1", -time.Minute))
	rec := httptest.NewRecorder()
	refresh.RefreshToken(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)

	claims, err := newTestValidator(t).ValidateToken(body.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}

func TestRefreshTokenRejectsExpiredTokenWithoutSubject(t *testing.T) {
	refresh, err := NewTokenRefreshMiddleware(testSecret)
	require.NoError(t, err)

	// An expired token minted without a subject has no claims to re-issue
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, "", -time.Minute))
	rec := httptest.NewRecorder()
	refresh.RefreshToken(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshTokenRejectsGarbage(t *testing.T) {
	refresh, err := NewTokenRefreshMiddleware(testSecret)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	refresh.RefreshToken(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
