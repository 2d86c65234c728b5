package services

import (
	"fmt"

	"github.com/MuhamadAgungGumelar/financeiro-max-be/internal/modules/finance/models"
)

// saleTransitions lists every move an installment sale may make.
// pending -> pending is a token regeneration.
var saleTransitions = map[models.SaleStatus]map[models.SaleStatus]bool{
	models.SalePending: {
		models.SalePending:   true,
		models.SaleConfirmed: true,
	},
	models.SaleConfirmed: {
		models.SaleApproved: true,
		models.SaleRejected: true,
		models.SalePending:  true,
	},
	models.SaleRejected: {
		models.SalePending: true,
	},
	models.SaleApproved: {},
}

func canTransition(from, to models.SaleStatus) bool {
	return saleTransitions[from][to]
}

// transition moves the sale or returns err wrapped with both states.
func transition(sale *models.InstallmentSale, to models.SaleStatus, err error) error {
	if !canTransition(sale.Status, to) {
		return fmt.Errorf("%w: sale is %s, cannot move to %s", err, sale.Status, to)
	}
	sale.Status = to
	return nil
}
