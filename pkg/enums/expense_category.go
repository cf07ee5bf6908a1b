package enums

// ExpenseCategory buckets shop expenses for reporting.
type ExpenseCategory string

const (
	ExpenseCategoryTransport ExpenseCategory = "transport"
	ExpenseCategoryFood      ExpenseCategory = "food"
	ExpenseCategoryUtility   ExpenseCategory = "utility"
	ExpenseCategorySalary    ExpenseCategory = "salary"
	ExpenseCategoryOther     ExpenseCategory = "other"
)

func (c ExpenseCategory) IsValid() bool {
	switch c {
	case ExpenseCategoryTransport, ExpenseCategoryFood, ExpenseCategoryUtility,
		ExpenseCategorySalary, ExpenseCategoryOther:
		return true
	}
	return false
}
