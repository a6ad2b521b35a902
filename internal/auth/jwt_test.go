package auth_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jcourtner/taskdeck-be/internal/auth"
	"github.com/jcourtner/taskdeck-be/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

// fakeResolver stands in for the user service behind the guard.
type fakeResolver map[string]models.User

func (f fakeResolver) GetUserByID(id string) (models.User, error) {
	user, ok := f[id]
	if !ok {
		return models.User{}, errors.New("user not found")
	}
	return user, nil
}

func TestTokenRoundTrip(t *testing.T) {
	tm := auth.NewTokenManager(testSecret, time.Hour)
	user := models.User{ID: "u-1", Username: "alice"}

	token, err := tm.Generate(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "u-1", claims.Subject)
}

func TestExpiredTokenRejected(t *testing.T) {
	tm := auth.NewTokenManager(testSecret, -time.Minute)
	token, err := tm.Generate(models.User{ID: "u-1", Username: "alice"})
	require.NoError(t, err)

	_, err = tm.Validate(token)
	assert.Error(t, err)
}

func TestForeignSignatureRejected(t *testing.T) {
	other := auth.NewTokenManager([]byte("another-secret-another-secret-ab"), time.Hour)
	token, err := other.Generate(models.User{ID: "u-1", Username: "alice"})
	require.NoError(t, err)

	tm := auth.NewTokenManager(testSecret, time.Hour)
	_, err = tm.Validate(token)
	assert.Error(t, err)
}

func TestMiddleware(t *testing.T) {
	tm := auth.NewTokenManager(testSecret, time.Hour)
	alice := models.User{ID: "u-1", Username: "alice"}
	users := fakeResolver{alice.ID: alice}

	token, err := tm.Generate(alice)
	require.NoError(t, err)

	orphanToken, err := tm.Generate(models.User{ID: "gone", Username: "ghost"})
	require.NoError(t, err)

	var gotClaims *auth.Claims
	handler := auth.Middleware(tm, users)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = auth.ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	cases := []struct {
		name       string
		header     string
		query      string
		wantStatus int
	}{
		{"no token", "", "", http.StatusUnauthorized},
		{"malformed header", "Token abc", "", http.StatusUnauthorized},
		{"prefixed bearer scheme", "XBearer " + token, "", http.StatusUnauthorized},
		{"garbage token", "Bearer not.a.jwt", "", http.StatusUnauthorized},
		{"deleted user", "Bearer " + orphanToken, "", http.StatusUnauthorized},
		{"valid header token", "Bearer " + token, "", http.StatusOK},
		{"valid query token", "", token, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gotClaims = nil
			url := "/protected"
			if tc.query != "" {
				url += "?token=" + tc.query
			}
			req := httptest.NewRequest(http.MethodGet, url, nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			if tc.wantStatus == http.StatusOK {
				require.NotNil(t, gotClaims)
				assert.Equal(t, alice.ID, gotClaims.UserID)
			} else {
				assert.Nil(t, gotClaims)
				assert.JSONEq(t, `{"status":401,"message":"Invalid or missing auth token"}`, rec.Body.String())
			}
		})
	}
}
