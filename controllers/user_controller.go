package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hosteldesk/messmate/models"
	"github.com/hosteldesk/messmate/utils"
)

// UserController exposes admin user management: listing accounts and
// changing roles.
type UserController struct {
	db *gorm.DB
}

// NewUserController creates a UserController.
func NewUserController(db *gorm.DB) *UserController {
	return &UserController{db: db}
}

// ListUsers returns paginated accounts, newest first.
func (u *UserController) ListUsers(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))

	var users []models.User
	var total int64

	query := u.db.Model(&models.User{})
	if search := strings.TrimSpace(ctx.Query("search")); search != "" {
		query = query.Where("name LIKE ? OR email LIKE ?", "%"+search+"%", "%"+search+"%")
	}
	if err := query.Count(&total).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to count users")
		return
	}
	if err := query.Order("created_at DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&users).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to retrieve users")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      users,
		"pagination": paginationMeta(page, pageSize, total),
	})
}

// UpdateRole changes a user's role; only the three known roles are accepted.
func (u *UserController) UpdateRole(ctx *gin.Context) {
	userID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil || userID <= 0 {
		utils.Error(ctx, http.StatusBadRequest, 40011, "invalid user id")
		return
	}

	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40012, "invalid request payload")
		return
	}
	if !models.ValidRole(req.Role) {
		utils.Error(ctx, http.StatusBadRequest, 40013, "invalid role")
		return
	}

	var user models.User
	if err := u.db.First(&user, userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.Error(ctx, http.StatusNotFound, 40410, "user not found")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to load user")
		return
	}

	if err := u.db.Model(&user).Update("role", req.Role).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to update role")
		return
	}

	utils.Success(ctx, user)
}

// parsePagination normalizes page/page_size query values.
func parsePagination(pageStr, sizeStr string) (int, int) {
	page, pageSize := 1, 10
	if v := strings.TrimSpace(pageStr); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			page = n
		}
	}
	if v := strings.TrimSpace(sizeStr); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			pageSize = n
		}
	}
	return page, pageSize
}

func paginationMeta(page, pageSize int, total int64) gin.H {
	return gin.H{
		"page":        page,
		"page_size":   pageSize,
		"total":       total,
		"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
	}
}
