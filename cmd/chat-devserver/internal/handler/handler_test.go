package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"free-chat-client/cmd/chat-devserver/internal/handler"
	"free-chat-client/cmd/chat-devserver/internal/middleware"
	"free-chat-client/cmd/chat-devserver/internal/service"
	"free-chat-client/cmd/chat-devserver/internal/store"
)

func newRouter(t *testing.T) (*gin.Engine, *store.MessageStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := store.NewUserStore()
	_, err := users.CreateUser("alice", "alice-pw", "Alice")
	require.NoError(t, err)

	messages := store.NewMessageStore()
	jwtService := service.NewJWTService("test-secret", 1)

	router := gin.New()
	router.POST("/token", handler.TokenHandler(users, jwtService))
	authorized := router.Group("/", middleware.BearerAuth(jwtService))
	authorized.GET("/users/me", handler.MeHandler(users))
	authorized.GET("/messages/", handler.ListMessagesHandler(messages))
	authorized.POST("/messages/", handler.PostMessageHandler(messages))
	return router, messages
}

func postForm(router *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func login(t *testing.T, router *gin.Engine) string {
	t.Helper()
	recorder := postForm(router, "/token", url.Values{
		"username": {"alice"},
		"password": {"alice-pw"},
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	var body struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.NotEmpty(t, body.AccessToken)
	require.Equal(t, "bearer", body.TokenType)
	return body.AccessToken
}

func TestTokenRejectsBadCredentials(t *testing.T) {
	router, _ := newRouter(t)

	recorder := postForm(router, "/token", url.Values{
		"username": {"alice"},
		"password": {"wrong"},
	})
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)

	recorder = postForm(router, "/token", url.Values{"username": {"alice"}})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestMeReturnsAuthenticatedUser(t *testing.T) {
	router, _ := newRouter(t)
	token := login(t, router)

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	require.Equal(t, http.StatusOK, recorder.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "alice", body["username"])
	assert.Equal(t, "Alice", body["display_name"])
}

func TestProtectedEndpointsRequireToken(t *testing.T) {
	router, _ := newRouter(t)

	for _, tc := range []struct {
		name  string
		token string
	}{
		{"missing header", ""},
		{"malformed header", "tok-without-scheme"},
		{"bad signature", "Bearer not-a-real-token"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/messages/", nil)
			if tc.token != "" {
				req.Header.Set("Authorization", tc.token)
			}
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)
			assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		})
	}
}

func TestPostThenListMessages(t *testing.T) {
	router, _ := newRouter(t)
	token := login(t, router)

	post := func(content string) *httptest.ResponseRecorder {
		payload, _ := json.Marshal(map[string]string{"content": content, "sender": "spoofed"})
		req := httptest.NewRequest(http.MethodPost, "/messages/", strings.NewReader(string(payload)))
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)
		return recorder
	}

	recorder := post("hello")
	require.Equal(t, http.StatusCreated, recorder.Code)

	var created store.Message
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "alice", created.Sender, "sender comes from the token, not the body")
	assert.Equal(t, "hello", created.Content)

	require.Equal(t, http.StatusCreated, post("and again").Code)

	req := httptest.NewRequest(http.MethodGet, "/messages/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	recorder = httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	require.Equal(t, http.StatusOK, recorder.Code)

	var listed []store.Message
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &listed))
	require.Len(t, listed, 2)
	assert.Equal(t, "hello", listed[0].Content)
	assert.Equal(t, "and again", listed[1].Content)
}

func TestPostMessageRequiresContent(t *testing.T) {
	router, messages := newRouter(t)
	token := login(t, router)

	req := httptest.NewRequest(http.MethodPost, "/messages/", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Empty(t, messages.List())
}
