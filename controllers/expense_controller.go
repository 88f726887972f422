package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/washbook/washbook-api/authz"
	"github.com/washbook/washbook-api/config"
	"github.com/washbook/washbook-api/middleware"
	"github.com/washbook/washbook-api/models"
	"github.com/washbook/washbook-api/services"
	"github.com/washbook/washbook-api/validation"
)

// UpdateExpenseRequest represents the request body for updating an expense
type UpdateExpenseRequest struct {
	ExpenseType string  `json:"expense_type"`
	Amount      float64 `json:"amount"`
	ExpenseDate string  `json:"expense_date"` // YYYY-MM-DD
}

// validateExpenseFields runs the declarative rules over the expense fields
func validateExpenseFields(expenseType, amount, expenseDate string) (bool, map[string]string) {
	form := validation.NewForm(map[string][]validation.Rule{
		"expense_type": {
			validation.Required("Expense type is required"),
			validation.MaxLength(100, ""),
		},
		"amount": {
			validation.Required("Amount is required"),
			validation.PositiveNumber("Amount must be greater than zero"),
		},
		"expense_date": {
			validation.Required("Expense date is required"),
			validation.Custom(func(value string) bool {
				d, err := time.Parse("2006-01-02", value)
				if err != nil {
					return false
				}
				// Not in the future; compare against the end of today
				return !d.After(time.Now())
			}, "Expense date cannot be in the future"),
		},
	})
	form.SetValue("expense_type", expenseType)
	form.SetValue("amount", amount)
	form.SetValue("expense_date", expenseDate)
	return form.ValidateAll()
}

// CreateExpense handles POST /api/v1/expenses - records an expense with
// an optional bill attachment. Any authenticated role may create.
func CreateExpense(c *gin.Context) {
	user, err := middleware.CurrentUser(c)
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

	expenseType := c.PostForm("expense_type")
	amountStr := c.PostForm("amount")
	expenseDateStr := c.PostForm("expense_date")

	if valid, errs := validateExpenseFields(expenseType, amountStr, expenseDateStr); !valid {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Expense data is invalid",
				"details": errs,
			},
		})
		return
	}

	amount, _ := strconv.ParseFloat(amountStr, 64)
	expenseDate, _ := time.Parse("2006-01-02", expenseDateStr)

	expense := models.Expense{
		ExpenseType: expenseType,
		Amount:      amount,
		ExpenseDate: expenseDate,
		CreatedByID: user.ID,
	}

	// Bill attachment is optional
	if fileHeader, err := c.FormFile("attachment"); err == nil {
		key, err := services.GetAttachmentService().Upload(fileHeader, services.PrefixExpenseBills)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "UPLOAD_ERROR",
					"message": err.Error(),
				},
			})
			return
		}
		expense.AttachmentKey = &key
	}

	db := config.GetDB()
	if err := db.Create(&expense).Error; err != nil {
		logrus.Errorf("failed to create expense: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to create expense",
			},
		})
		return
	}

	if err := db.Preload("CreatedBy").First(&expense, expense.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load expense details",
			},
		})
		return
	}

	attachExpenseURL(&expense)

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    expense,
	})
}

// ListExpenses handles GET /api/v1/expenses
func ListExpenses(c *gin.Context) {
	db := config.GetDB()
	query := db.Preload("CreatedBy").Order("expense_date DESC")

	if expenseType := c.Query("expense_type"); expenseType != "" {
		query = query.Where("expense_type = ?", expenseType)
	}

	var expenses []models.Expense
	if err := query.Find(&expenses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to load expenses",
			},
		})
		return
	}

	for i := range expenses {
		attachExpenseURL(&expenses[i])
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    expenses,
	})
}

// UpdateExpense handles PUT /api/v1/expenses/:id - admin roles only;
// employees are create-only on expenses.
func UpdateExpense(c *gin.Context) {
	expense, ok := loadExpenseForEdit(c)
	if !ok {
		return
	}

	var req UpdateExpenseRequest
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

	amountStr := strconv.FormatFloat(req.Amount, 'f', -1, 64)
	if valid, errs := validateExpenseFields(req.ExpenseType, amountStr, req.ExpenseDate); !valid {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Expense data is invalid",
				"details": errs,
			},
		})
		return
	}

	expenseDate, _ := time.Parse("2006-01-02", req.ExpenseDate)

	db := config.GetDB()
	if err := db.Model(expense).Updates(map[string]interface{}{
		"expense_type": req.ExpenseType,
		"amount":       req.Amount,
		"expense_date": expenseDate,
	}).Error; err != nil {
		logrus.Errorf("failed to update expense %d: %v", expense.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update expense",
			},
		})
		return
	}

	attachExpenseURL(expense)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    expense,
	})
}

// DeleteExpense handles DELETE /api/v1/expenses/:id - admin roles only.
// The stored bill attachment is removed along with the record.
func DeleteExpense(c *gin.Context) {
	expense, ok := loadExpenseForEdit(c)
	if !ok {
		return
	}

	if expense.AttachmentKey != nil {
		if err := services.GetAttachmentService().Delete(*expense.AttachmentKey); err != nil {
			// The record still goes away; orphaned objects age out of the bucket
			logrus.Warnf("failed to delete attachment for expense %d: %v", expense.ID, err)
		}
	}

	db := config.GetDB()
	if err := db.Delete(expense).Error; err != nil {
		logrus.Errorf("failed to delete expense %d: %v", expense.ID, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to delete expense",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Expense deleted",
	})
}

// loadExpenseForEdit resolves :id and enforces the expense edit rule.
// It writes the error response itself when it returns !ok.
func loadExpenseForEdit(c *gin.Context) (*models.Expense, bool) {
	user, err := middleware.CurrentUser(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UNAUTHORIZED",
				"message": "Could not extract user information",
			},
		})
		return nil, false
	}

	if !authz.CanEditExpense(user.Role) {
		c.JSON(http.StatusForbidden, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "FORBIDDEN",
				"message": "Employees cannot edit or delete expenses",
			},
		})
		return nil, false
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "Expense id must be numeric",
			},
		})
		return nil, false
	}

	db := config.GetDB()
	var expense models.Expense
	if err := db.Preload("CreatedBy").First(&expense, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "EXPENSE_NOT_FOUND",
				"message": "Expense not found",
			},
		})
		return nil, false
	}

	return &expense, true
}

// attachExpenseURL fills the computed presigned URL for the attachment
func attachExpenseURL(expense *models.Expense) {
	if expense.AttachmentKey == nil {
		return
	}
	url, err := services.GetAttachmentService().URL(*expense.AttachmentKey)
	if err != nil {
		logrus.Warnf("failed to presign attachment for expense %d: %v", expense.ID, err)
		return
	}
	if url != "" {
		expense.AttachmentURL = &url
	}
}
