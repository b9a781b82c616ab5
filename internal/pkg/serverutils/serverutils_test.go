package serverutils

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "response error", err: ErrorResponse(409, "conflict"), want: 409},
		{name: "wrapped not found", err: fmt.Errorf("lookup: %w", NotFound("content")), want: 404},
		{name: "bad request", err: BadRequest("content is required"), want: 400},
		{name: "unauthorized", err: ErrUnauthorized, want: 401},
		{name: "fiber error", err: fiber.ErrMethodNotAllowed, want: 405},
		{name: "unknown", err: fmt.Errorf("boom"), want: 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func TestNotFoundMessage(t *testing.T) {
	assert.Equal(t, "content not found", NotFound("content").Error())
}

type sampleRequest struct {
	Name  string `json:"name" validate:"required,max=5"`
	Level string `json:"level" validate:"omitempty,oneof=beginner expert"`
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(sampleRequest{Name: "ok"}))

	err := ValidateRequest(sampleRequest{Name: "too-long", Level: "guru"})
	require.Error(t, err)
	assert.Equal(t, 400, StatusFor(err))
	assert.Contains(t, err.Error(), "name must be at most 5")
	assert.Contains(t, err.Error(), "level must be one of")
}

func signed(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestJwtMiddleware(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	app.Get("/me", NewJwtMiddleware("secret"), func(ctx *fiber.Ctx) error {
		userId, err := UserIdFromContext(ctx)
		if err != nil {
			return err
		}
		return ctx.JSON(SuccessResponse("ok", userId.String()))
	})

	userId := uuid.New()
	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "missing", header: "", want: 401},
		{name: "wrong secret", header: "Bearer " + signed(t, "other", jwt.MapClaims{"user_id": userId.String()}), want: 401},
		{name: "no user claim", header: "Bearer " + signed(t, "secret", jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}), want: 401},
		{name: "valid", header: "Bearer " + signed(t, "secret", jwt.MapClaims{"user_id": userId.String()}), want: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)

			body, _ := io.ReadAll(resp.Body)
			var parsed BaseResponse[string]
			require.NoError(t, json.Unmarshal(body, &parsed))
			if tt.want == 200 {
				assert.Equal(t, userId.String(), parsed.Data)
			} else {
				assert.False(t, parsed.Success)
			}
		})
	}
}
