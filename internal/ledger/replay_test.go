package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"baryabazaar-api/internal/models"
)

func TestTransactionEffect(t *testing.T) {
	tests := []struct {
		name            string
		tx              *models.Transaction
		bankDelta       string
		platformDelta   string
		toPlatformDelta string
	}{
		{
			name: "buy credits bank and platform",
			tx: &models.Transaction{
				Type:       models.TypeBuy,
				Status:     models.StatusCompleted,
				Bank:       "BDO",
				Platform:   "Binance",
				USDTAmount: decimal.NewFromInt(100),
				PHPAmount:  decimal.NewFromInt(5600),
			},
			bankDelta:     "5600",
			platformDelta: "100",
		},
		{
			name: "sell debits bank and platform",
			tx: &models.Transaction{
				Type:       models.TypeSell,
				Status:     models.StatusCompleted,
				Bank:       "BDO",
				Platform:   "Binance",
				USDTAmount: decimal.NewFromInt(50),
				PHPAmount:  decimal.NewFromInt(2850),
			},
			bankDelta:     "-2850",
			platformDelta: "-50",
		},
		{
			name: "pending transaction has no effect",
			tx: &models.Transaction{
				Type:       models.TypeBuy,
				Status:     models.StatusPending,
				Bank:       "BDO",
				Platform:   "Binance",
				USDTAmount: decimal.NewFromInt(100),
				PHPAmount:  decimal.NewFromInt(5600),
			},
			bankDelta:     "0",
			platformDelta: "0",
		},
		{
			name: "completed transfer debits source and credits destination",
			tx: &models.Transaction{
				Type:       models.TypeInternalTransfer,
				Status:     models.StatusCompleted,
				Platform:   "Binance",
				ToPlatform: "Bybit",
				USDTAmount: decimal.NewFromInt(100),
				Fee:        decimal.NewFromInt(1),
			},
			bankDelta:       "0",
			platformDelta:   "-101",
			toPlatformDelta: "100",
		},
		{
			name: "pending transfer has no effect",
			tx: &models.Transaction{
				Type:       models.TypeInternalTransfer,
				Status:     models.StatusPending,
				Platform:   "Binance",
				ToPlatform: "Bybit",
				USDTAmount: decimal.NewFromInt(100),
			},
			bankDelta:       "0",
			platformDelta:   "0",
			toPlatformDelta: "0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			effect := TransactionEffect(tt.tx)
			assert.True(t, effect.BankDelta.Equal(decimal.RequireFromString(tt.bankDelta)),
				"bank delta: expected %s, got %s", tt.bankDelta, effect.BankDelta.String())
			assert.True(t, effect.PlatformDelta.Equal(decimal.RequireFromString(tt.platformDelta)),
				"platform delta: expected %s, got %s", tt.platformDelta, effect.PlatformDelta.String())
			if tt.toPlatformDelta != "" {
				assert.True(t, effect.ToPlatformDelta.Equal(decimal.RequireFromString(tt.toPlatformDelta)),
					"destination delta: expected %s, got %s", tt.toPlatformDelta, effect.ToPlatformDelta.String())
			}
		})
	}
}

func TestReplayUserBalances(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	txs := []*models.Transaction{
		{
			Type: models.TypeSell, Status: models.StatusCompleted,
			UserID: "alice", Bank: "BDO",
			USDTAmount: decimal.NewFromInt(50), PHPAmount: decimal.NewFromInt(2850),
			Timestamp: base.Add(2 * time.Hour),
		},
		{
			Type: models.TypeBuy, Status: models.StatusCompleted,
			UserID: "alice", Bank: "BDO",
			USDTAmount: decimal.NewFromInt(100), PHPAmount: decimal.NewFromInt(5600),
			Timestamp: base,
		},
		{
			Type: models.TypeBuy, Status: models.StatusCompleted,
			UserID: "bob", Bank: "GCash",
			USDTAmount: decimal.NewFromInt(10), PHPAmount: decimal.NewFromInt(570),
			Timestamp: base.Add(time.Hour),
		},
		{
			Type: models.TypeBuy, Status: models.StatusRejected,
			UserID: "bob", Bank: "GCash",
			USDTAmount: decimal.NewFromInt(999), PHPAmount: decimal.NewFromInt(99999),
			Timestamp: base.Add(3 * time.Hour),
		},
	}

	balances := ReplayUserBalances(txs)

	assert.True(t, balances["alice"]["BDO"].Equal(decimal.NewFromInt(2750)),
		"got %s", balances["alice"]["BDO"].String())
	assert.True(t, balances["bob"]["GCash"].Equal(decimal.NewFromInt(570)))
}

func TestReplayPlatformBalances(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	txs := []*models.Transaction{
		{
			Type: models.TypeBuy, Status: models.StatusCompleted,
			UserID: "alice", Bank: "BDO", Platform: "Binance",
			USDTAmount: decimal.NewFromInt(100), PHPAmount: decimal.NewFromInt(5600),
			Timestamp: base,
		},
		{
			Type: models.TypeSell, Status: models.StatusCompleted,
			UserID: "alice", Bank: "BDO", Platform: "Binance",
			USDTAmount: decimal.NewFromInt(30), PHPAmount: decimal.NewFromInt(1710),
			Timestamp: base.Add(time.Hour),
		},
	}

	balances := ReplayPlatformBalances(txs)
	assert.True(t, balances["Binance"].Equal(decimal.NewFromInt(70)))
}

func TestReplayPlatformBalances_TransfersSurviveRebuild(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	txs := []*models.Transaction{
		{
			Type: models.TypeBuy, Status: models.StatusCompleted,
			UserID: "alice", Bank: "BDO", Platform: "Binance",
			USDTAmount: decimal.NewFromInt(500), PHPAmount: decimal.NewFromInt(28000),
			Timestamp: base,
		},
		{
			Type: models.TypeInternalTransfer, Status: models.StatusCompleted,
			UserID: "alice", Platform: "Binance", ToPlatform: "Bybit",
			USDTAmount: decimal.NewFromInt(100), Fee: decimal.NewFromInt(1),
			Timestamp: base.Add(time.Hour),
		},
		{
			Type: models.TypeBuy, Status: models.StatusCompleted,
			UserID: "bob", Bank: "GCash", Platform: "Bybit",
			USDTAmount: decimal.NewFromInt(50), PHPAmount: decimal.NewFromInt(2850),
			Timestamp: base.Add(2 * time.Hour),
		},
	}

	balances := ReplayPlatformBalances(txs)

	assert.True(t, balances["Binance"].Equal(decimal.NewFromInt(399)),
		"got %s", balances["Binance"].String())
	assert.True(t, balances["Bybit"].Equal(decimal.NewFromInt(150)),
		"got %s", balances["Bybit"].String())
}

func TestReplay_OrderIndependent(t *testing.T) {
	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	forward := []*models.Transaction{
		{
			Type: models.TypeBuy, Status: models.StatusCompleted,
			UserID: "alice", Bank: "BDO",
			USDTAmount: decimal.NewFromInt(100), PHPAmount: decimal.NewFromInt(5600),
			Timestamp: base,
		},
		{
			Type: models.TypeSell, Status: models.StatusCompleted,
			UserID: "alice", Bank: "BDO",
			USDTAmount: decimal.NewFromInt(100), PHPAmount: decimal.NewFromInt(5700),
			Timestamp: base.Add(time.Hour),
		},
	}
	reversed := []*models.Transaction{forward[1], forward[0]}

	a := ReplayUserBalances(forward)
	b := ReplayUserBalances(reversed)
	assert.True(t, a["alice"]["BDO"].Equal(b["alice"]["BDO"]))
}
