package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Role names recognized by the system. Every user carries exactly one.
const (
	RoleAdmin        = "Admin"
	RoleDoctor       = "Doctor"
	RolePatient      = "Patient"
	RolePharmacist   = "Pharmacist"
	RoleReceptionist = "Receptionist"
	RoleNurse        = "Nurse"
)

// ValidRoles is the set of roles a user account may be created with. Nurse is
// recognized by record access checks but has no registration path.
var ValidRoles = map[string]bool{
	RoleAdmin:        true,
	RoleDoctor:       true,
	RolePatient:      true,
	RolePharmacist:   true,
	RoleReceptionist: true,
}

// RequireRole returns middleware that admits only callers whose role is in the
// given allowed set. Each route declares its allowed roles exactly once here;
// there is no implicit admin override, Admin must be listed where it applies.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userRole := RoleFromContext(c.Request().Context())
			for _, required := range roles {
				if userRole == required {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}
