package services

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/washbook/washbook-api/models"
	"github.com/washbook/washbook-api/pricing"
)

// BuildAnalyticsWorkbook renders orders and expenses into an Excel
// workbook with one sheet per entity. Amounts are written as formatted
// strings so the workbook matches what the SPA displays.
func BuildAnalyticsWorkbook(orders []models.Order, expenses []models.Expense) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := writeOrdersSheet(f, orders); err != nil {
		return nil, err
	}
	if err := writeExpensesSheet(f, expenses); err != nil {
		return nil, err
	}

	// NewFile creates a default Sheet1 we don't want
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}

	return f, nil
}

func writeOrdersSheet(f *excelize.File, orders []models.Order) error {
	const sheet = "Orders"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("failed to create orders sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headers := []string{"Order Number", "Customer", "Contact", "Order Date", "Status", "Payment", "Total"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}

	for row, order := range orders {
		values := []any{
			order.OrderNumber,
			order.CustomerName,
			order.ContactNumber,
			order.OrderDate.Format("2006-01-02"),
			order.Status,
			order.PaymentStatus,
			pricing.FormatAmount(order.TotalAmount),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	return nil
}

func writeExpensesSheet(f *excelize.File, expenses []models.Expense) error {
	const sheet = "Expenses"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to create expenses sheet: %w", err)
	}

	headers := []string{"Type", "Amount", "Expense Date", "Recorded By"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return err
		}
	}

	for row, expense := range expenses {
		values := []any{
			expense.ExpenseType,
			pricing.FormatAmount(expense.Amount),
			expense.ExpenseDate.Format("2006-01-02"),
			expense.CreatedBy.Username,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return err
			}
		}
	}

	return nil
}
