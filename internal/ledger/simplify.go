package ledger

import "github.com/mmynk/splitledger/internal/money"

// DebtEdge is a single transfer in a simplified settlement plan: From pays To
// the given amount.
type DebtEdge struct {
	From   string
	To     string
	Amount money.Amount
}

// SimplifyDebts produces a minimal-ish set of transfers that settles the
// whole sheet, by greedily matching debtors against creditors in sorted
// order. The plan settles every member's net position, which may route money
// through different pairs than the underlying debts.
func SimplifyDebts(sheet *GroupBalanceSheet) []DebtEdge {
	var debtors, creditors []string
	owes := make(map[string]money.Amount)
	owed := make(map[string]money.Amount)

	for _, m := range sheet.Members() {
		net := sheet.MemberNet(m)
		switch {
		case net.IsPositive():
			creditors = append(creditors, m)
			owed[m] = net
		case net.IsNegative():
			debtors = append(debtors, m)
			owes[m] = -net
		}
	}

	var edges []DebtEdge
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		debtor, creditor := debtors[i], creditors[j]

		amount := owes[debtor]
		if owed[creditor] < amount {
			amount = owed[creditor]
		}
		edges = append(edges, DebtEdge{From: debtor, To: creditor, Amount: amount})

		owes[debtor] -= amount
		owed[creditor] -= amount
		if owes[debtor].IsZero() {
			i++
		}
		if owed[creditor].IsZero() {
			j++
		}
	}
	return edges
}
