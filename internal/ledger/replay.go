package ledger

import (
	"sort"

	"github.com/shopspring/decimal"

	"baryabazaar-api/internal/models"
)

// Effect is the balance impact of a single transaction: the delta applied to
// the user's bank balance and to the platform's USDT holding. BUY credits
// both sides (fiat received by the business, USDT acquired); SELL debits
// them. An internal transfer debits the source platform by amount plus fee
// and credits the destination by the amount.
type Effect struct {
	Bank          string
	BankDelta     decimal.Decimal
	Platform      string
	PlatformDelta decimal.Decimal

	// Second platform leg, populated only for internal transfers.
	ToPlatform      string
	ToPlatformDelta decimal.Decimal
}

// TransactionEffect derives the balance effect of a transaction. Pending and
// rejected transactions have no effect.
func TransactionEffect(tx *models.Transaction) Effect {
	if tx.Status != models.StatusCompleted {
		return Effect{Bank: tx.Bank, Platform: tx.Platform}
	}

	switch tx.Type {
	case models.TypeBuy:
		return Effect{
			Bank:          tx.Bank,
			BankDelta:     tx.PHPAmount,
			Platform:      tx.Platform,
			PlatformDelta: tx.USDTAmount,
		}
	case models.TypeSell:
		return Effect{
			Bank:          tx.Bank,
			BankDelta:     tx.PHPAmount.Neg(),
			Platform:      tx.Platform,
			PlatformDelta: tx.USDTAmount.Neg(),
		}
	case models.TypeInternalTransfer:
		return Effect{
			Platform:        tx.Platform,
			PlatformDelta:   tx.USDTAmount.Add(tx.Fee).Neg(),
			ToPlatform:      tx.ToPlatform,
			ToPlatformDelta: tx.USDTAmount,
		}
	default:
		return Effect{Bank: tx.Bank, Platform: tx.Platform}
	}
}

// ReplayUserBalances derives per-user per-bank balances by applying all
// transaction effects in timestamp order from zero. The projector's stored
// state must always be reconcilable against this replay.
func ReplayUserBalances(txs []*models.Transaction) map[string]map[string]decimal.Decimal {
	ordered := chronological(txs)

	balances := make(map[string]map[string]decimal.Decimal)
	for _, tx := range ordered {
		effect := TransactionEffect(tx)
		if effect.Bank == "" || effect.BankDelta.IsZero() {
			continue
		}
		userBalances, ok := balances[tx.UserID]
		if !ok {
			userBalances = make(map[string]decimal.Decimal)
			balances[tx.UserID] = userBalances
		}
		userBalances[effect.Bank] = userBalances[effect.Bank].Add(effect.BankDelta)
	}
	return balances
}

// ReplayPlatformBalances derives per-platform USDT holdings by replaying all
// transaction effects in timestamp order from zero.
func ReplayPlatformBalances(txs []*models.Transaction) map[string]decimal.Decimal {
	ordered := chronological(txs)

	balances := make(map[string]decimal.Decimal)
	for _, tx := range ordered {
		effect := TransactionEffect(tx)
		if effect.Platform != "" && !effect.PlatformDelta.IsZero() {
			balances[effect.Platform] = balances[effect.Platform].Add(effect.PlatformDelta)
		}
		if effect.ToPlatform != "" && !effect.ToPlatformDelta.IsZero() {
			balances[effect.ToPlatform] = balances[effect.ToPlatform].Add(effect.ToPlatformDelta)
		}
	}
	return balances
}

func chronological(txs []*models.Transaction) []*models.Transaction {
	ordered := make([]*models.Transaction, len(txs))
	copy(ordered, txs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})
	return ordered
}
