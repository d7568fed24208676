package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/Baaaki/message-board/internal/models"
	"github.com/Baaaki/message-board/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

// AccountDirectory is the account operations the handler needs.
type AccountDirectory interface {
	ListAccounts(ctx context.Context, limit int) ([]models.Account, error)
	GetAccountByID(ctx context.Context, id uuid.UUID) (*models.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
	CreateAccount(ctx context.Context, in service.AccountInput) (*models.Account, error)
	UpdateAccount(ctx context.Context, id uuid.UUID, patch service.AccountPatch) (*models.Account, error)
	DeleteAccount(ctx context.Context, id uuid.UUID) error
}

// ListLimits bounds the ?limit= parameter of the account listing.
type ListLimits struct {
	Default int
	Max     int
}

type AccountHandler struct {
	accounts AccountDirectory
	limits   ListLimits
}

func NewAccountHandler(accounts AccountDirectory, limits ListLimits) *AccountHandler {
	return &AccountHandler{
		accounts: accounts,
		limits:   limits,
	}
}

type CreateAccountRequest struct {
	Name  string `json:"name" binding:"required,max=255"`
	Email string `json:"email" binding:"required,email,max=255"`
}

// UpdateAccountRequest leaves absent (or null) fields untouched.
type UpdateAccountRequest struct {
	Name  *string `json:"name" binding:"omitnil,min=1,max=255"`
	Email *string `json:"email" binding:"omitnil,email,max=255"`
}

// GET /api/accounts?limit=N
func (h *AccountHandler) List(c *gin.Context) {
	limit := h.limits.Default
	if raw, ok := c.GetQuery("limit"); ok {
		n, err := strconv.Atoi(raw)
		switch {
		case err != nil:
			respondValidation(c, []string{fmt.Sprintf("%s -> limit: Input should be a valid integer", locQuery)})
			return
		case n < 1:
			respondValidation(c, []string{fmt.Sprintf("%s -> limit: Input should be greater than or equal to 1", locQuery)})
			return
		case n > h.limits.Max:
			respondValidation(c, []string{fmt.Sprintf("%s -> limit: Input should be less than or equal to %d", locQuery, h.limits.Max)})
			return
		}
		limit = n
	}

	accounts, err := h.accounts.ListAccounts(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, lo.Map(accounts, toAccountResponse))
}

// GET /api/accounts/:account_id
func (h *AccountHandler) Get(c *gin.Context) {
	id, ok := pathUUID(c, "account_id")
	if !ok {
		return
	}

	account, err := h.accounts.GetAccountByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toAccountResponse(*account, 0))
}

// GET /api/accounts/by-email/:email
func (h *AccountHandler) GetByEmail(c *gin.Context) {
	email := c.Param("email")

	v := binding.Validator.Engine().(*validator.Validate)
	if err := v.Var(email, "required,email,max=255"); err != nil {
		respondValidation(c, []string{fmt.Sprintf("%s -> email: value is not a valid email address", locPath)})
		return
	}

	account, err := h.accounts.GetAccountByEmail(c.Request.Context(), email)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toAccountResponse(*account, 0))
}

// POST /api/accounts
func (h *AccountHandler) Create(c *gin.Context) {
	var req CreateAccountRequest
	if !bindJSON(c, &req) {
		return
	}

	account, err := h.accounts.CreateAccount(c.Request.Context(), service.AccountInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toAccountResponse(*account, 0))
}

// PATCH /api/accounts/:account_id
func (h *AccountHandler) Update(c *gin.Context) {
	id, ok := pathUUID(c, "account_id")
	if !ok {
		return
	}

	var req UpdateAccountRequest
	if !bindJSON(c, &req) {
		return
	}

	account, err := h.accounts.UpdateAccount(c.Request.Context(), id, service.AccountPatch{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toAccountResponse(*account, 0))
}

// DELETE /api/accounts/:account_id
func (h *AccountHandler) Delete(c *gin.Context) {
	id, ok := pathUUID(c, "account_id")
	if !ok {
		return
	}

	if err := h.accounts.DeleteAccount(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully."})
}
