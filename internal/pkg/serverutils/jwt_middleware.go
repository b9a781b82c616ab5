package serverutils

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const userIdLocal = "user_id"

// NewJwtMiddleware verifies HS256 bearer tokens and stores the user_id claim in Locals.
// Token issuance happens elsewhere.
func NewJwtMiddleware(secret string) fiber.Handler {
	key := []byte(secret)
	return func(ctx *fiber.Ctx) error {
		authHeader := ctx.Get("Authorization")
		if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
			return ErrorResponse(fiber.StatusUnauthorized, "Missing token")
		}
		tokenStr := authHeader[7:]

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
			}
			return key, nil
		})
		if err != nil || !token.Valid {
			return ErrorResponse(fiber.StatusUnauthorized, "Invalid token")
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return ErrorResponse(fiber.StatusUnauthorized, "Invalid claims")
		}
		userId, ok := claims["user_id"].(string)
		if !ok || userId == "" {
			return ErrorResponse(fiber.StatusUnauthorized, "Invalid claims")
		}

		ctx.Locals(userIdLocal, userId)
		return ctx.Next()
	}
}

func UserIdFromContext(ctx *fiber.Ctx) (uuid.UUID, error) {
	raw, _ := ctx.Locals(userIdLocal).(string)
	userId, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrorResponse(fiber.StatusUnauthorized, "Invalid user ID")
	}
	return userId, nil
}

// ParamUUID parses a path parameter, answering 400 on malformed ids
func ParamUUID(ctx *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params(name))
	if err != nil {
		return uuid.Nil, ErrorResponse(fiber.StatusBadRequest, fmt.Sprintf("Invalid %s", name))
	}
	return id, nil
}
