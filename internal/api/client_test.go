package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// roundTripperFunc adapts a function to http.RoundTripper for mocking.
type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestHTTPClient(fn roundTripperFunc) *http.Client {
	return &http.Client{Transport: fn}
}

type fakeTokens struct {
	token   string
	cleared bool
}

func (f *fakeTokens) Token() string { return f.token }

func (f *fakeTokens) Clear() error {
	f.token = ""
	f.cleared = true
	return nil
}

type fakeNotifier struct {
	connectivity []string
}

func (f *fakeNotifier) ConnectivityLost(message string) {
	f.connectivity = append(f.connectivity, message)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestDiscover_PicksFirstHealthy(t *testing.T) {
	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer dead.Close()

	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	alive := httptest.NewServer(r)
	defer alive.Close()

	base, err := Discover(context.Background(), alive.Client(),
		[]string{dead.URL, alive.URL}, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, alive.URL, base)
}

func TestDiscover_AllCandidatesDown(t *testing.T) {
	_, err := Discover(context.Background(), &http.Client{},
		[]string{"http://127.0.0.1:1"}, zap.NewNop())
	require.Error(t, err)
	var connErr *ConnectivityError
	assert.True(t, errors.As(err, &connErr))
}

func TestCall_DecodesSuccess(t *testing.T) {
	client := New(newTestHTTPClient(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "http://api.test/categories/", req.URL.String())
		assert.Equal(t, "application/json", req.Header.Get("Accept"))
		assert.NotEmpty(t, req.Header.Get("X-Request-Id"))
		return jsonResponse(http.StatusOK, `{"categories":[{"id":1,"name":"Electronics"}]}`), nil
	}), "http://api.test", &fakeTokens{}, &fakeNotifier{}, zap.NewNop())

	var out struct {
		Categories []struct {
			ID   int64  `json:"id"`
			Name string `json:"name"`
		} `json:"categories"`
	}
	require.NoError(t, client.Call(context.Background(), http.MethodGet, "/categories/", nil, &out))
	require.Len(t, out.Categories, 1)
	assert.Equal(t, "Electronics", out.Categories[0].Name)
}

func TestCall_AuthHeaderOnlyWithToken(t *testing.T) {
	var got string
	fn := func(req *http.Request) (*http.Response, error) {
		got = req.Header.Get("Authorization")
		return jsonResponse(http.StatusOK, `{}`), nil
	}

	anon := New(newTestHTTPClient(fn), "http://api.test", &fakeTokens{}, &fakeNotifier{}, zap.NewNop())
	require.NoError(t, anon.Call(context.Background(), http.MethodGet, "/products/", nil, nil))
	assert.Empty(t, got)

	authed := New(newTestHTTPClient(fn), "http://api.test", &fakeTokens{token: "tok-123"}, &fakeNotifier{}, zap.NewNop())
	require.NoError(t, authed.Call(context.Background(), http.MethodGet, "/products/", nil, nil))
	assert.Equal(t, "Bearer tok-123", got)
}

func TestCall_SerializesNonGETBody(t *testing.T) {
	client := New(newTestHTTPClient(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
		var payload map[string]string
		require.NoError(t, json.NewDecoder(req.Body).Decode(&payload))
		assert.Equal(t, "a@b.com", payload["email"])
		return jsonResponse(http.StatusOK, `{}`), nil
	}), "http://api.test", &fakeTokens{}, &fakeNotifier{}, zap.NewNop())

	body := map[string]string{"email": "a@b.com", "password": "secret"}
	require.NoError(t, client.Call(context.Background(), http.MethodPost, "/auth/login", body, nil))
}

func TestCall_UnauthorizedClearsSessionAndFires(t *testing.T) {
	tokens := &fakeTokens{token: "stale"}
	var lost bool
	client := New(newTestHTTPClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusUnauthorized, `{"message":"Token is invalid"}`), nil
	}), "http://api.test", tokens, &fakeNotifier{}, zap.NewNop())
	client.OnAuthLost(func() { lost = true })

	err := client.Call(context.Background(), http.MethodGet, "/auth/me", nil, nil)
	assert.True(t, errors.Is(err, ErrAuth))
	assert.True(t, tokens.cleared)
	assert.Empty(t, tokens.token)
	assert.True(t, lost)
}

func TestCall_ServerMessageSurfaced(t *testing.T) {
	client := New(newTestHTTPClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusBadRequest, `{"message":"Email already registered"}`), nil
	}), "http://api.test", &fakeTokens{}, &fakeNotifier{}, zap.NewNop())

	err := client.Call(context.Background(), http.MethodPost, "/auth/register", map[string]string{}, nil)
	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusBadRequest, reqErr.Status)
	assert.Equal(t, "Email already registered", reqErr.Message)
}

func TestCall_GenericMessageWithoutBody(t *testing.T) {
	client := New(newTestHTTPClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusInternalServerError, ``), nil
	}), "http://api.test", &fakeTokens{}, &fakeNotifier{}, zap.NewNop())

	err := client.Call(context.Background(), http.MethodGet, "/products/", nil, nil)
	var reqErr *RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, "Request failed with status 500", reqErr.Message)
}

func TestCall_MalformedJSON(t *testing.T) {
	client := New(newTestHTTPClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `not-json`), nil
	}), "http://api.test", &fakeTokens{}, &fakeNotifier{}, zap.NewNop())

	var out map[string]any
	err := client.Call(context.Background(), http.MethodGet, "/products/", nil, &out)
	var parseErr *ParseError
	assert.True(t, errors.As(err, &parseErr))
}

func TestCall_NetworkFailureNotifies(t *testing.T) {
	notifier := &fakeNotifier{}
	client := New(newTestHTTPClient(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("connection refused")
	}), "http://api.test", &fakeTokens{}, notifier, zap.NewNop())

	err := client.Call(context.Background(), http.MethodGet, "/products/", nil, nil)
	var connErr *ConnectivityError
	require.True(t, errors.As(err, &connErr))
	assert.Len(t, notifier.connectivity, 1)
}
