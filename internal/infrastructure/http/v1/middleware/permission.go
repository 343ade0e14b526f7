package middleware

import (
	"github.com/gin-gonic/gin"

	"jobdesk/internal/core/apperror"
	appctx "jobdesk/internal/core/context"
	"jobdesk/internal/domain/profile"
)

// RequireProfile middleware resolves the caller's profile from the profile
// store and checks it with the given predicate. The token only proves
// identity; role assignments live in the profile store and may change
// between requests, so they are looked up fresh here.
func RequireProfile(profiles profile.Repo, allowed func(*profile.Profile) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := appctx.GetUser(c.Request.Context())
		if user == nil {
			_ = c.Error(apperror.NewUnauthorized("authentication required"))
			c.Abort()
			return
		}

		p, err := profiles.GetByUID(c.Request.Context(), user.UserID)
		if err != nil {
			if apperror.IsNotFound(err) {
				_ = c.Error(apperror.NewForbidden("no profile for user"))
			} else {
				_ = c.Error(err)
			}
			c.Abort()
			return
		}

		if !allowed(p) {
			_ = c.Error(
				apperror.NewForbidden("insufficient permissions").
					WithDetail("role", string(p.Role)),
			)
			c.Abort()
			return
		}

		c.Set("profile_role", string(p.Role))
		c.Next()
	}
}

// RequireCloseJobs gates routes that close and archive jobs.
func RequireCloseJobs(profiles profile.Repo) gin.HandlerFunc {
	return RequireProfile(profiles, (*profile.Profile).CanCloseJobs)
}

// RequireMigration gates the bulk archive migration route.
func RequireMigration(profiles profile.Repo) gin.HandlerFunc {
	return RequireProfile(profiles, (*profile.Profile).CanRunMigration)
}
