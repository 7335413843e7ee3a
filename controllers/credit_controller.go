package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hosteldesk/messmate/middleware"
	"github.com/hosteldesk/messmate/models"
	"github.com/hosteldesk/messmate/services"
	"github.com/hosteldesk/messmate/utils"
)

// CreditController exposes read access to balances and the ledger. Nothing
// here writes; credits are only granted by the attendance workflow.
type CreditController struct {
	credits *services.CreditService
}

// NewCreditController creates a CreditController.
func NewCreditController(credits *services.CreditService) *CreditController {
	return &CreditController{credits: credits}
}

// Balance returns the caller's current credit balance.
func (c *CreditController) Balance(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	balance, err := c.credits.GetBalance(userID)
	if err != nil {
		if errors.Is(err, services.ErrUnknownUser) {
			utils.Error(ctx, http.StatusInternalServerError, 50040, "account record missing")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to load balance")
		return
	}

	utils.Success(ctx, gin.H{"credits": balance})
}

// Transactions returns ledger entries, newest first. Students see their own
// history; admins may pass user_id to inspect any ledger.
func (c *CreditController) Transactions(ctx *gin.Context) {
	userID, ok := middleware.UserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	if raw := strings.TrimSpace(ctx.Query("user_id")); raw != "" {
		if ctx.GetString(middleware.ContextRoleKey) != models.RoleAdmin {
			utils.Error(ctx, http.StatusForbidden, 40340, "only admins may query other ledgers")
			return
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			utils.Error(ctx, http.StatusBadRequest, 40041, "invalid user id")
			return
		}
		userID = uint(n)
	}

	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	txns, total, err := c.credits.ListTransactions(userID, page, pageSize)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to list transactions")
		return
	}

	utils.Success(ctx, gin.H{
		"items":      txns,
		"pagination": paginationMeta(page, pageSize, total),
	})
}
