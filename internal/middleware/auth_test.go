package middleware

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/fatemameem/technest-backend/internal/auth"
)

type staticAdmins struct {
	roles map[string]string
}

func (s *staticAdmins) RoleByEmail(_ context.Context, email string) (string, error) {
	role, ok := s.roles[email]
	if !ok {
		return "", mongo.ErrNoDocuments
	}
	return role, nil
}

func testKeyAndVerifier(t *testing.T) (*rsa.PrivateKey, *auth.JWTVerifier) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	pubPath := filepath.Join(t.TempDir(), "session.pub")
	require.NoError(t, os.WriteFile(pubPath, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}), 0o600))

	verifier, err := auth.NewJWTVerifier(pubPath)
	require.NoError(t, err)
	return key, verifier
}

func signToken(t *testing.T, key *rsa.PrivateKey, email string) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"email": email,
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	s, err := tok.SignedString(key)
	require.NoError(t, err)
	return s
}

func testApp(verifier *auth.JWTVerifier, resolver *auth.Resolver, roles ...string) *fiber.App {
	app := fiber.New()
	app.Post("/guarded", RequireRole(verifier, resolver, zap.NewNop().Sugar(), roles...), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"role": c.Locals("role")})
	})
	return app
}

func TestRequireRole(t *testing.T) {
	key, verifier := testKeyAndVerifier(t)
	resolver := auth.NewResolver(&staticAdmins{roles: map[string]string{
		"admin@technest.org": auth.RoleAdmin,
		"mod@technest.org":   auth.RoleModerator,
	}}, nil, 0)

	editors := testApp(verifier, resolver, auth.RoleAdmin, auth.RoleModerator)
	adminsOnly := testApp(verifier, resolver, auth.RoleAdmin)

	cases := []struct {
		name   string
		app    *fiber.App
		token  string
		status int
	}{
		{"missing token", editors, "", http.StatusUnauthorized},
		{"garbage token", editors, "not-a-jwt", http.StatusUnauthorized},
		{"admin allowed", editors, signToken(t, key, "admin@technest.org"), http.StatusOK},
		{"moderator allowed", editors, signToken(t, key, "mod@technest.org"), http.StatusOK},
		{"not on allow-list", editors, signToken(t, key, "stranger@example.com"), http.StatusUnauthorized},
		{"moderator blocked from admin route", adminsOnly, signToken(t, key, "mod@technest.org"), http.StatusForbidden},
		{"admin on admin route", adminsOnly, signToken(t, key, "admin@technest.org"), http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/guarded", nil)
			if tc.token != "" {
				req.Header.Set("Authorization", "Bearer "+tc.token)
			}
			resp, err := tc.app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.status, resp.StatusCode)
		})
	}
}
