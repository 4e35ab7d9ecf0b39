package captcha

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func siteverify(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "shh", r.PostForm.Get("secret"))
		assert.Equal(t, "tok", r.PostForm.Get("response"))
		assert.Equal(t, "10.0.0.1", r.PostForm.Get("remoteip"))
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRecaptchaVerifier_Verify(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		want    bool
		wantErr bool
	}{
		{name: "v2 success", status: http.StatusOK, body: `{"success":true}`, want: true},
		{name: "rejected", status: http.StatusOK, body: `{"success":false,"error-codes":["invalid-input-response"]}`, want: false},
		{name: "v3 score above threshold", status: http.StatusOK, body: `{"success":true,"score":0.9}`, want: true},
		{name: "v3 score below threshold", status: http.StatusOK, body: `{"success":true,"score":0.1}`, want: false},
		{name: "service error", status: http.StatusInternalServerError, body: `oops`, wantErr: true},
		{name: "malformed body", status: http.StatusOK, body: `{`, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := siteverify(t, tc.status, tc.body)
			v, err := NewRecaptchaVerifier("shh", srv.URL, 0.5, time.Second)
			require.NoError(t, err)

			ok, err := v.Verify(context.Background(), "tok", "10.0.0.1")
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, ok)
		})
	}
}

func TestRecaptchaVerifier_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	v, err := NewRecaptchaVerifier("shh", url, 0.5, time.Second)
	require.NoError(t, err)

	_, err = v.Verify(context.Background(), "tok", "")
	assert.Error(t, err)
}

func TestRecaptchaVerifier_EmptyResponseIsRejectedLocally(t *testing.T) {
	v, err := NewRecaptchaVerifier("shh", "http://127.0.0.1:1", 0.5, time.Second)
	require.NoError(t, err)

	ok, err := v.Verify(context.Background(), "", "")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestNewRecaptchaVerifier_RequiresSecret(t *testing.T) {
	_, err := NewRecaptchaVerifier(" ", "", 0.5, 0)
	assert.ErrorIs(t, err, ErrMissingSecret)
}
