// Package middleware provides the JWT guard protecting every authenticated
// route.
package middleware

import (
	"github.com/amirasaad/banking/pkg/config"
	"github.com/amirasaad/banking/webapi/common"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
)

// JwtProtected returns the middleware enforcing a valid bearer token. The
// parsed token is stored in c.Locals("user").
func JwtProtected(cfg *config.Jwt) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.Secret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return common.ErrorResponseJSON(c, fiber.StatusUnauthorized,
				"Unauthorized", "missing or malformed token")
		},
	})
}
