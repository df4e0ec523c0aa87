package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tourledger/internal/auth"
	"github.com/mmynk/tourledger/internal/models"
	"github.com/mmynk/tourledger/internal/rpc"
)

type whoAmIRequest struct{}

type whoAmIResponse struct {
	UserID string      `json:"userId"`
	Role   models.Role `json:"role"`
}

func setupWhoAmI(t *testing.T, jwtManager *auth.JWTManager) *connect.Client[whoAmIRequest, whoAmIResponse] {
	t.Helper()

	m := rpc.NewMux("test.v1.AuthService", connect.WithInterceptors(RequireAuth(jwtManager), LoggingInterceptor()))
	rpc.Handle(m, "WhoAmI", func(ctx context.Context, _ *connect.Request[whoAmIRequest]) (*connect.Response[whoAmIResponse], error) {
		actor, _ := ActorFromContext(ctx)
		return connect.NewResponse(&whoAmIResponse{UserID: actor.UserID, Role: actor.Role}), nil
	})

	mux := http.NewServeMux()
	mux.Handle(m.Path(), m)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return rpc.NewClient[whoAmIRequest, whoAmIResponse](http.DefaultClient, server.URL, "/test.v1.AuthService/WhoAmI")
}

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	client := setupWhoAmI(t, jwtManager)
	ctx := context.Background()

	t.Run("missing token", func(t *testing.T) {
		_, err := client.CallUnary(ctx, connect.NewRequest(&whoAmIRequest{}))
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	})

	t.Run("malformed header", func(t *testing.T) {
		req := connect.NewRequest(&whoAmIRequest{})
		req.Header().Set("Authorization", "Token abc")
		_, err := client.CallUnary(ctx, req)
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := jwtManager.Generate(models.Actor{UserID: "host-1", Role: models.RoleHost})
		require.NoError(t, err)

		req := connect.NewRequest(&whoAmIRequest{})
		req.Header().Set("Authorization", "Bearer "+token)
		resp, err := client.CallUnary(ctx, req)
		require.NoError(t, err)
		assert.Equal(t, "host-1", resp.Msg.UserID)
		assert.Equal(t, models.RoleHost, resp.Msg.Role)
	})
}

func TestRequireAdminHTTP(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	handler := RequireAdminHTTP(jwtManager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		if !ok || !actor.IsAdmin() {
			t.Error("expected admin actor in context")
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	tokenFor := func(role models.Role) string {
		token, err := jwtManager.Generate(models.Actor{UserID: "u", Role: role})
		require.NoError(t, err)
		return "Bearer " + token
	}

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"host", tokenFor(models.RoleHost), http.StatusForbidden},
		{"admin", tokenFor(models.RoleAdmin), http.StatusNoContent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/tours/t1/settlements.xlsx", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
