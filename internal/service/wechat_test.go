package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWechatServer(t *testing.T, handler http.HandlerFunc) WechatClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewWechatClient(srv.URL, "app-id", "app-secret", time.Second)
}

func TestWechatClient_Code2Session(t *testing.T) {
	client := newWechatServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/sns/jscode2session", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "app-id", q.Get("appid"))
		assert.Equal(t, "app-secret", q.Get("secret"))
		assert.Equal(t, "the-code", q.Get("js_code"))
		assert.Equal(t, "authorization_code", q.Get("grant_type"))
		// 微信接口返回 text/plain
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(`{"openid":"o-1","unionid":"u-1","session_key":"k"}`))
	})

	session, err := client.Code2Session(context.Background(), "the-code")
	require.NoError(t, err)
	assert.Equal(t, "o-1", session.OpenID)
	assert.Equal(t, "u-1", session.UnionID)
}

func TestWechatClient_Errors(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"errcode": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"errcode":40029,"errmsg":"invalid code"}`))
		},
		"missing openid": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{}`))
		},
		"http error": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
		},
	}
	for name, handler := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := newWechatServer(t, handler).Code2Session(context.Background(), "c")
			assert.ErrorIs(t, err, ErrWechatLogin)
		})
	}
}
