package ledger

import (
	"sort"

	"github.com/mmynk/splitledger/internal/money"
)

// GroupSummary is one group's subtotal within a user's balance summary.
type GroupSummary struct {
	GroupID    string
	OwedToUser money.Amount
	UserOwes   money.Amount
}

// UserBalanceSummary aggregates a user's position across all their groups:
// the Home-screen "Total Owed" / "Total Owe" numbers plus a per-group
// breakdown for drill-down.
type UserBalanceSummary struct {
	UserID          string
	TotalOwedToUser money.Amount
	TotalUserOwes   money.Amount
	Groups          []GroupSummary
}

// ComputeUserSummary combines per-group balance sheets into one summary for
// the user. Pure aggregation, no I/O; groups are listed sorted by id, zero
// subtotals included so the breakdown covers every group supplied.
func ComputeUserSummary(userID string, sheets map[string]*GroupBalanceSheet) UserBalanceSummary {
	summary := UserBalanceSummary{UserID: userID}

	groupIDs := make([]string, 0, len(sheets))
	for id := range sheets {
		groupIDs = append(groupIDs, id)
	}
	sort.Strings(groupIDs)

	for _, groupID := range groupIDs {
		sheet := sheets[groupID]
		group := GroupSummary{GroupID: groupID}
		for _, counterparty := range sheet.Members() {
			net := sheet.Net(userID, counterparty)
			switch {
			case net.IsPositive():
				group.OwedToUser += net
			case net.IsNegative():
				group.UserOwes += -net
			}
		}
		summary.TotalOwedToUser += group.OwedToUser
		summary.TotalUserOwes += group.UserOwes
		summary.Groups = append(summary.Groups, group)
	}
	return summary
}
