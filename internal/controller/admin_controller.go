package controller

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"baryabazaar-api/internal/middleware"
	"baryabazaar-api/internal/models"
	"baryabazaar-api/internal/repository"
	"baryabazaar-api/internal/service"
)

// AdminController serves the user roster, registries, audit trail and
// session endpoints.
type AdminController struct {
	adminService   service.AdminService
	sessionService service.SessionService
}

func NewAdminController(adminService service.AdminService, sessionService service.SessionService) *AdminController {
	return &AdminController{
		adminService:   adminService,
		sessionService: sessionService,
	}
}

func (c *AdminController) CreateUser(ctx *gin.Context) {
	var req CreateUserRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request format",
			Message: err.Error(),
		})
		return
	}

	user := &models.User{
		UserID:        req.UserID,
		Name:          req.Name,
		Email:         req.Email,
		Role:          req.Role,
		AssignedBanks: req.AssignedBanks,
	}

	if err := c.adminService.CreateUser(ctx.Request.Context(), user, middleware.ActorName(ctx)); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repository.ErrDuplicate) {
			status = http.StatusConflict
		}
		ctx.JSON(status, ErrorResponse{
			Error:   "Failed to create user",
			Message: err.Error(),
		})
		return
	}

	ctx.JSON(http.StatusCreated, user)
}

func (c *AdminController) GetUsers(ctx *gin.Context) {
	users, err := c.adminService.GetUsers(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to list users",
			Message: err.Error(),
		})
		return
	}
	ctx.JSON(http.StatusOK, users)
}

func (c *AdminController) GetUser(ctx *gin.Context) {
	user, err := c.adminService.GetUser(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "User not found",
				Message: err.Error(),
			})
			return
		}
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to get user",
			Message: err.Error(),
		})
		return
	}
	ctx.JSON(http.StatusOK, user)
}

func (c *AdminController) UpdateUser(ctx *gin.Context) {
	var req service.UserUpdate
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request format",
			Message: err.Error(),
		})
		return
	}

	user, err := c.adminService.UpdateUser(ctx.Request.Context(), ctx.Param("id"), &req, middleware.ActorName(ctx))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repository.ErrNotFound) {
			status = http.StatusNotFound
		}
		ctx.JSON(status, ErrorResponse{
			Error:   "Failed to update user",
			Message: err.Error(),
		})
		return
	}
	ctx.JSON(http.StatusOK, user)
}

func (c *AdminController) ChangeRole(ctx *gin.Context) {
	var req ChangeRoleRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request format",
			Message: err.Error(),
		})
		return
	}

	err := c.adminService.ChangeRole(ctx.Request.Context(), ctx.Param("id"), req.Role, middleware.ActorName(ctx), req.Reason)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, service.ErrReasonRequired):
			status = http.StatusBadRequest
		case errors.Is(err, repository.ErrNotFound):
			status = http.StatusNotFound
		}
		ctx.JSON(status, ErrorResponse{
			Error:   "Failed to change role",
			Message: err.Error(),
		})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

func (c *AdminController) DeleteUser(ctx *gin.Context) {
	var req ReasonRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request format",
			Message: err.Error(),
		})
		return
	}

	err := c.adminService.DeleteUser(ctx.Request.Context(), ctx.Param("id"), middleware.ActorName(ctx), req.Reason)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, service.ErrReasonRequired):
			status = http.StatusBadRequest
		case errors.Is(err, repository.ErrNotFound):
			status = http.StatusNotFound
		default:
			// Deletion guards (balances, pending transactions) surface as 409.
			status = http.StatusConflict
		}
		ctx.JSON(status, ErrorResponse{
			Error:   "Failed to delete user",
			Message: err.Error(),
		})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

func (c *AdminController) AddPlatform(ctx *gin.Context) {
	var req NameRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request format",
			Message: err.Error(),
		})
		return
	}

	platform, err := c.adminService.AddPlatform(ctx.Request.Context(), req.Name, middleware.ActorName(ctx))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repository.ErrDuplicate) {
			status = http.StatusConflict
		}
		ctx.JSON(status, ErrorResponse{
			Error:   "Failed to add platform",
			Message: err.Error(),
		})
		return
	}
	ctx.JSON(http.StatusCreated, platform)
}

func (c *AdminController) DeletePlatform(ctx *gin.Context) {
	err := c.adminService.DeletePlatform(ctx.Request.Context(), ctx.Param("name"), middleware.ActorName(ctx))
	if err != nil {
		status := http.StatusConflict
		if errors.Is(err, repository.ErrNotFound) {
			status = http.StatusNotFound
		}
		ctx.JSON(status, ErrorResponse{
			Error:   "Failed to delete platform",
			Message: err.Error(),
		})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

func (c *AdminController) AddBank(ctx *gin.Context) {
	var req NameRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request format",
			Message: err.Error(),
		})
		return
	}

	bank, err := c.adminService.AddBank(ctx.Request.Context(), req.Name, middleware.ActorName(ctx))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repository.ErrDuplicate) {
			status = http.StatusConflict
		}
		ctx.JSON(status, ErrorResponse{
			Error:   "Failed to add bank",
			Message: err.Error(),
		})
		return
	}
	ctx.JSON(http.StatusCreated, bank)
}

func (c *AdminController) GetBanks(ctx *gin.Context) {
	banks, err := c.adminService.GetBanks(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to list banks",
			Message: err.Error(),
		})
		return
	}
	ctx.JSON(http.StatusOK, banks)
}

func (c *AdminController) DeleteBank(ctx *gin.Context) {
	err := c.adminService.DeleteBank(ctx.Request.Context(), ctx.Param("name"), middleware.ActorName(ctx))
	if err != nil {
		status := http.StatusConflict
		if errors.Is(err, repository.ErrNotFound) {
			status = http.StatusNotFound
		}
		ctx.JSON(status, ErrorResponse{
			Error:   "Failed to delete bank",
			Message: err.Error(),
		})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"success": true})
}

func (c *AdminController) GetAuditTrail(ctx *gin.Context) {
	limit, offset := paginationParams(ctx)

	filter := &models.AuditFilter{
		Type:   ctx.Query("type"),
		Actor:  ctx.Query("actor"),
		Target: ctx.Query("target"),
	}
	if v := ctx.Query("start"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.StartDate = t
		}
	}
	if v := ctx.Query("end"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.EndDate = t
		}
	}

	entries, err := c.adminService.GetAuditTrail(ctx.Request.Context(), filter, limit, offset)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to get audit trail",
			Message: err.Error(),
		})
		return
	}
	ctx.JSON(http.StatusOK, AuditTrailResponse{
		Entries: entries,
		Count:   len(entries),
	})
}

func (c *AdminController) RecordLogin(ctx *gin.Context) {
	session, err := c.sessionService.RecordLogin(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repository.ErrNotFound) {
			status = http.StatusNotFound
		}
		ctx.JSON(status, ErrorResponse{
			Error:   "Failed to record login",
			Message: err.Error(),
		})
		return
	}
	ctx.JSON(http.StatusCreated, session)
}

func (c *AdminController) RecordLogout(ctx *gin.Context) {
	session, err := c.sessionService.RecordLogout(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repository.ErrNotFound) {
			status = http.StatusNotFound
		}
		ctx.JSON(status, ErrorResponse{
			Error:   "Failed to record logout",
			Message: err.Error(),
		})
		return
	}
	ctx.JSON(http.StatusOK, session)
}

func (c *AdminController) GetUserSessions(ctx *gin.Context) {
	limit, _ := paginationParams(ctx)
	sessions, err := c.sessionService.GetUserSessions(ctx.Request.Context(), ctx.Param("id"), limit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "Failed to list sessions",
			Message: err.Error(),
		})
		return
	}
	ctx.JSON(http.StatusOK, sessions)
}

// Request/response DTOs

type CreateUserRequest struct {
	UserID        string   `json:"user_id" binding:"required"`
	Name          string   `json:"name" binding:"required"`
	Email         string   `json:"email" binding:"required,email"`
	Role          string   `json:"role" binding:"required"`
	AssignedBanks []string `json:"assigned_banks"`
}

type ChangeRoleRequest struct {
	Role   string `json:"role" binding:"required"`
	Reason string `json:"reason" binding:"required"`
}

type NameRequest struct {
	Name string `json:"name" binding:"required"`
}

type AuditTrailResponse struct {
	Entries []*models.AuditLog `json:"entries"`
	Count   int                `json:"count"`
}
