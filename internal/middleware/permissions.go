// internal/middleware/permissions.go

package middleware

import (
	"net/http"

	"devtogether-backend/internal/models"

	"github.com/gin-gonic/gin"
)

// RequirePermission створює middleware для перевірки конкретного дозволення
// 🔒 Використовується для захисту ендпоінтів на рівні Backend
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Отримуємо роль з контексту (встановлюється AuthMiddleware)
		roleInterface, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "User not authenticated",
			})
			c.Abort()
			return
		}

		roleStr, ok := roleInterface.(string)
		if !ok || roleStr == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid user role",
			})
			c.Abort()
			return
		}

		userRole := models.UserRole(roleStr)

		if !userRole.IsValid() {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Invalid role",
			})
			c.Abort()
			return
		}

		// Перевіряємо чи користувач має необхідне дозволення
		if !userRole.HasPermission(models.Permission(permission)) {
			c.JSON(http.StatusForbidden, gin.H{
				"error":     "Insufficient permissions",
				"required":  permission,
				"user_role": roleStr,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireAnyRole створює middleware для перевірки однієї з можливих ролей
// 🔒 Використовується коли endpoint доступний для кількох ролей
func RequireAnyRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleInterface, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "User not authenticated",
			})
			c.Abort()
			return
		}

		roleStr, ok := roleInterface.(string)
		if !ok || roleStr == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid user role",
			})
			c.Abort()
			return
		}

		userRole := models.UserRole(roleStr)

		// Перевіряємо чи користувач має одну з дозволених ролей
		hasRole := false
		for _, allowedRole := range roles {
			if userRole == models.UserRole(allowedRole) {
				hasRole = true
				break
			}
		}

		// Адміністратор проходить будь-яку рольову перевірку
		if userRole == models.RoleAdmin {
			hasRole = true
		}

		if !hasRole {
			c.JSON(http.StatusForbidden, gin.H{
				"error":         "Insufficient permissions",
				"allowed_roles": roles,
				"user_role":     roleStr,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
