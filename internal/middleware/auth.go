package middleware

import (
	"estate-backend/internal/pkg/constants"
	"estate-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

const userLocal = "user"

// Principal is the authenticated caller derived from the session. The core
// consumes only ID, Role and equality for ownership checks.
type Principal struct {
	ID       uint
	UserName string
	Email    string
	Role     string
}

func (p *Principal) IsAdmin() bool {
	return p != nil && p.Role == constants.RoleAdmin
}

func (p *Principal) IsRealtor() bool {
	return p != nil && p.Role == constants.RoleRealtor
}

// Owns reports whether the principal owns a resource created by ownerID.
// Admins do not implicitly own; combine with IsAdmin at the call site.
func (p *Principal) Owns(ownerID uint) bool {
	return p != nil && p.ID == ownerID
}

// CurrentUser decodes the session user from Locals. Returns nil for
// anonymous requests.
func CurrentUser(c *fiber.Ctx) *Principal {
	user := c.Locals(userLocal)
	if user == nil {
		return nil
	}
	m, ok := user.(map[string]interface{})
	if !ok {
		return nil
	}
	id, ok := asUint(m["id"])
	if !ok || id == 0 {
		return nil
	}
	p := &Principal{ID: id}
	p.UserName, _ = m["user_name"].(string)
	p.Email, _ = m["email"].(string)
	p.Role, _ = m["role"].(string)
	return p
}

// RequireAuth ensures a user is in the session. Returns 401 with the
// standard error format if not.
func RequireAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentUser(c) == nil {
			return response.Unauthorized(c, "Unauthorized")
		}
		return c.Next()
	}
}

// asUint handles both float64 (JSON round trip through Redis) and uint
// (set in-process by SetSessionUser in tests).
func asUint(v interface{}) (uint, bool) {
	switch n := v.(type) {
	case float64:
		if n < 0 {
			return 0, false
		}
		return uint(n), true
	case uint:
		return n, true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint(n), true
	default:
		return 0, false
	}
}
