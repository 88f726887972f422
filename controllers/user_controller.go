package controllers

import (
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/washbook/washbook-api/config"
	"github.com/washbook/washbook-api/middleware"
	"github.com/washbook/washbook-api/models"
	"github.com/washbook/washbook-api/validation"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

// CreateUserRequest represents the request body for creating a user
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// UpdateUserRequest represents the request body for updating a user.
// Empty fields are left unchanged.
type UpdateUserRequest struct {
	Password string `json:"password"`
	Role     string `json:"role"`
}

// usernameRules is the declared rule list for usernames
func usernameRules() []validation.Rule {
	return []validation.Rule{
		validation.Required("Username is required"),
		validation.MinLength(3, "Username must be at least 3 characters"),
		validation.MaxLength(50, "Username must be at most 50 characters"),
		validation.Pattern(usernamePattern, "Username may only contain letters, digits and underscores"),
	}
}

// CreateUser handles POST /api/v1/users - creates a staff account
// (super_admin only, enforced by route middleware).
func CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	errs := make(map[string]string)
	if msg := validation.ValidateValue(req.Username, usernameRules()); msg != "" {
		errs["username"] = msg
	}
	if msg := validation.ValidateValue(req.Password, []validation.Rule{
		validation.Required("Password is required"),
		validation.MinLength(8, "Password must be at least 8 characters"),
	}); msg != "" {
		errs["password"] = msg
	}
	if !models.IsValidRole(req.Role) {
		errs["role"] = "Role must be employee, admin or super_admin"
	}
	if len(errs) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "User data is invalid",
				"details": errs,
			},
		})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		logrus.Errorf("failed to hash password: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INTERNAL_ERROR",
				"message": "Failed to hash password",
			},
		})
		return
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         req.Role,
	}

	db := config.GetDB()
	if err := db.Create(&user).Error; err != nil {
		// Duplicate username detection that works with both PostgreSQL and SQLite
		errMsg := strings.ToLower(err.Error())
		if strings.Contains(errMsg, "duplicate") || strings.Contains(errMsg, "unique") {
			c.JSON(http.StatusConflict, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "USER_EXISTS",
					"message": "A user with this username already exists",
				},
			})
			return
		}

		logrus.Errorf("failed to create user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create user",
			},
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    user,
	})
}

// ListUsers handles GET /api/v1/users
func ListUsers(c *gin.Context) {
	db := config.GetDB()
	var users []models.User
	if err := db.Order("username ASC").Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load users",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    users,
	})
}

// UpdateUser handles PUT /api/v1/users/:id - updates role and/or password
func UpdateUser(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "User id must be numeric",
			},
		})
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "User not found",
			},
		})
		return
	}

	updates := make(map[string]interface{})
	if req.Role != "" {
		if !models.IsValidRole(req.Role) {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": "Role must be employee, admin or super_admin",
				},
			})
			return
		}
		updates["role"] = req.Role
	}
	if req.Password != "" {
		if msg := validation.ValidateValue(req.Password, []validation.Rule{
			validation.MinLength(8, "Password must be at least 8 characters"),
		}); msg != "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "VALIDATION_ERROR",
					"message": msg,
				},
			})
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INTERNAL_ERROR",
					"message": "Failed to hash password",
				},
			})
			return
		}
		updates["password_hash"] = string(hash)
	}

	if len(updates) == 0 {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"data":    user,
		})
		return
	}

	if err := db.Model(&user).Updates(updates).Error; err != nil {
		logrus.Errorf("failed to update user %d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update user",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

// DeleteUser handles DELETE /api/v1/users/:id. Deleting your own account
// is refused so a shop can never lock itself out entirely.
func DeleteUser(c *gin.Context) {
	actor, err := middleware.CurrentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "User id must be numeric",
			},
		})
		return
	}

	if uint(id) == actor.ID {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "You cannot delete your own account",
			},
		})
		return
	}

	db := config.GetDB()
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "USER_NOT_FOUND",
				"message": "User not found",
			},
		})
		return
	}

	if err := db.Delete(&user).Error; err != nil {
		logrus.Errorf("failed to delete user %d: %v", user.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete user",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User deleted",
	})
}
