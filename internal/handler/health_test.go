package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHealthReturnsOKWithoutTouchingStores(t *testing.T) {
	h := NewHealthHandler(nil, nil)

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Status string `json:"status"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, "ok", body.Data.Status)
}

func TestPingCheck(t *testing.T) {
	tests := []struct {
		name string
		ping func(context.Context) error
		want string
	}{
		{
			name: "healthy store",
			ping: func(context.Context) error { return nil },
			want: "ok",
		},
		{
			name: "failing store",
			ping: func(context.Context) error { return errors.New("connection refused") },
			want: "failed: connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pingCheck(context.Background(), tt.ping))
		})
	}
}

func TestPingCheckBoundsTheWait(t *testing.T) {
	result := pingCheck(context.Background(), func(ctx context.Context) error {
		deadline, ok := ctx.Deadline()
		require.True(t, ok)
		assert.False(t, deadline.IsZero())
		return nil
	})
	assert.Equal(t, "ok", result)
}
