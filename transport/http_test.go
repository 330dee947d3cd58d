package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConf() Conf {
	return Conf{Timeout: time.Second, MaxRetries: 2, Backoff: time.Millisecond}
}

func TestDo_PostJSON(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		json.NewEncoder(w).Encode(map[string]string{"echo": in["say"]})
	}))
	defer ts.Close()

	c := NewHTTPClientWith(ts.Client(), testConf())
	var out map[string]string
	err := c.Do(context.Background(), Post(ts.URL, map[string]string{"say": "hi"}).WithBearer("secret"), &out)
	require.NoError(t, err)
	assert.Equal(t, "hi", out["echo"])
}

func TestDo_RetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer ts.Close()

	c := NewHTTPClientWith(ts.Client(), testConf())
	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, c.Do(context.Background(), Get(ts.URL), &out))
	assert.True(t, out.OK)
	assert.Equal(t, int32(3), calls.Load())
}

func TestDo_ClientErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer ts.Close()

	c := NewHTTPClientWith(ts.Client(), testConf())
	err := c.Do(context.Background(), Get(ts.URL), nil)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
	assert.Contains(t, se.Body, "bad key")
	assert.Equal(t, int32(1), calls.Load())
}

func TestDo_GivesUpAfterMaxRetries(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer ts.Close()

	c := NewHTTPClientWith(ts.Client(), testConf())
	err := c.Do(context.Background(), Get(ts.URL), nil)
	require.Error(t, err)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
}

func TestWithBearer_Empty(t *testing.T) {
	r := Get("http://example.com").WithBearer("")
	assert.Nil(t, r.Header)
}
