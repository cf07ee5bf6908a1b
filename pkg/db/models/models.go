package models

// All returns every model for schema auto-migration.
func All() []any {
	return []any{
		&ProductGroup{},
		&ProductVariant{},
		&StockLog{},
		&Sale{},
		&SaleItem{},
		&Payment{},
		&StoreSettings{},
		&User{},
		&Expense{},
		&Employee{},
		&SalaryRecord{},
		&Attendance{},
	}
}
