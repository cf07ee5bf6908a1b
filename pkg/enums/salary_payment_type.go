package enums

// SalaryPaymentType distinguishes monthly salary payouts from advances.
type SalaryPaymentType string

const (
	SalaryPaymentSalary  SalaryPaymentType = "salary"
	SalaryPaymentAdvance SalaryPaymentType = "advance"
)

func (t SalaryPaymentType) IsValid() bool {
	switch t {
	case SalaryPaymentSalary, SalaryPaymentAdvance:
		return true
	}
	return false
}
