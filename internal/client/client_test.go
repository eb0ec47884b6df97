package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/student-records/internal/types"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, time.Second)
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{"http", "http://localhost:5000", false},
		{"https with path", "https://example.com/students/", false},
		{"empty", "  ", true},
		{"no scheme", "localhost:5000", true},
		{"ftp", "ftp://example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.baseURL, 0)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	_, err := New("", 0)
	assert.ErrorIs(t, err, ErrNoBaseURL)
}

func TestRequestsUseBasePath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		writeJSON(w, http.StatusOK, []types.Student{})
	}))
	defer srv.Close()

	c, err := New(srv.URL+"/v1/", 0)
	require.NoError(t, err)

	_, err = c.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/v1/api/students", gotPath)
}

func TestList(t *testing.T) {
	t.Run("records", func(t *testing.T) {
		want := []types.Student{{ID: 1, Name: "An", Age: 10, Class: "5A"}}
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			writeJSON(w, http.StatusOK, want)
		})

		got, err := c.List(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("null body becomes empty", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("null"))
		})

		got, err := c.List(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})
}

func TestCreateSendsCandidate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/students", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"name":"An","age":10,"class":"5A"}`, string(body))

		writeJSON(w, http.StatusCreated, types.Student{ID: 3, Name: "An", Age: 10, Class: "5A"})
	})

	got, err := c.Create(context.Background(), Candidate{Name: "An", Age: 10, Class: "5A"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.ID)
}

func TestUpdateTargetsID(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/students/42", r.URL.Path)
		writeJSON(w, http.StatusOK, types.Student{ID: 42, Name: "Binh", Age: 11, Class: "5B"})
	})

	got, err := c.Update(context.Background(), 42, Candidate{Name: "Binh", Age: 11, Class: "5B"})
	require.NoError(t, err)
	assert.Equal(t, "Binh", got.Name)
}

func TestDelete(t *testing.T) {
	t.Run("acknowledged", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodDelete, r.Method)
			writeJSON(w, http.StatusOK, types.DeleteResult{Success: true})
		})
		assert.NoError(t, c.Delete(context.Background(), 1))
	})

	t.Run("not acknowledged", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, types.DeleteResult{Success: false})
		})

		err := c.Delete(context.Background(), 1)
		var transportErr *TransportError
		assert.ErrorAs(t, err, &transportErr)
	})
}

func TestAPIError(t *testing.T) {
	t.Run("envelope message", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusNotFound, map[string]string{"status": "error", "error": "student 9 not found"})
		})

		_, err := c.Update(context.Background(), 9, Candidate{Name: "An", Age: 10, Class: "5A"})

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusNotFound, apiErr.Status)
		assert.Equal(t, "student 9 not found", Message(err))
		assert.True(t, IsNotFound(err))
	})

	t.Run("no envelope falls back to status text", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		})

		_, err := c.List(context.Background())

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "Bad Gateway", apiErr.Message)
		assert.False(t, IsNotFound(err))
	})
}

func TestTransportError(t *testing.T) {
	t.Run("server unreachable", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		c, err := New(url, time.Second)
		require.NoError(t, err)

		_, err = c.List(context.Background())

		var transportErr *TransportError
		require.ErrorAs(t, err, &transportErr)
		assert.Equal(t, FallbackMessage, err.Error())
		assert.Equal(t, FallbackMessage, Message(err))
		assert.Contains(t, transportErr.Detail(), "list students")
	})

	t.Run("undecodable body", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>"))
		})

		_, err := c.Create(context.Background(), Candidate{Name: "An", Age: 10, Class: "5A"})
		var transportErr *TransportError
		assert.ErrorAs(t, err, &transportErr)
	})

	t.Run("cancelled context", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, []types.Student{})
		})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := c.List(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "", Message(nil))
	assert.Equal(t, "plain", Message(errors.New("plain")))
	assert.Equal(t, "Not Found", Message(&APIError{Status: 404, Message: "Not Found"}))
}
