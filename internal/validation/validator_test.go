package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"baryabazaar-api/internal/models"
)

func testLimits() Limits {
	return Limits{
		MinUSDTAmount:        decimal.NewFromFloat(0.01),
		MaxUSDTAmount:        decimal.NewFromInt(1000000),
		RateDeviationPercent: decimal.NewFromInt(5),
		LargeTransactionPHP:  decimal.NewFromInt(500000),
	}
}

func buyInput(usdt, php, rate float64) *models.TransactionInput {
	return &models.TransactionInput{
		Type:       models.TypeBuy,
		UserID:     "alice",
		USDTAmount: decimal.NewFromFloat(usdt),
		PHPAmount:  decimal.NewFromFloat(php),
		Rate:       decimal.NewFromFloat(rate),
		Platform:   "Binance",
		Bank:       "BDO",
	}
}

func TestValidateTrade(t *testing.T) {
	v := NewTradeValidator(testLimits())

	richBalances := Balances{
		BankBalance:     decimal.NewFromInt(1000000),
		PlatformBalance: decimal.NewFromInt(100000),
	}

	tests := []struct {
		name          string
		input         *models.TransactionInput
		balances      Balances
		referenceRate decimal.Decimal
		valid         bool
		errorField    string
		warnings      int
	}{
		{
			name:     "valid buy",
			input:    buyInput(100, 5600, 56),
			balances: richBalances,
			valid:    true,
		},
		{
			name: "missing user",
			input: &models.TransactionInput{
				Type:       models.TypeBuy,
				USDTAmount: decimal.NewFromInt(100),
				PHPAmount:  decimal.NewFromInt(5600),
				Rate:       decimal.NewFromInt(56),
				Platform:   "Binance",
				Bank:       "BDO",
			},
			balances:   richBalances,
			valid:      false,
			errorField: "user_id",
		},
		{
			name: "missing platform on buy",
			input: &models.TransactionInput{
				Type:       models.TypeBuy,
				UserID:     "alice",
				USDTAmount: decimal.NewFromInt(100),
				PHPAmount:  decimal.NewFromInt(5600),
				Rate:       decimal.NewFromInt(56),
				Bank:       "BDO",
			},
			balances:   richBalances,
			valid:      false,
			errorField: "platform",
		},
		{
			name:       "below minimum amount",
			input:      buyInput(0.001, 0.056, 56),
			balances:   richBalances,
			valid:      false,
			errorField: "usdt_amount",
		},
		{
			name:       "above maximum amount",
			input:      buyInput(2000000, 112000000, 56),
			balances:   richBalances,
			valid:      false,
			errorField: "usdt_amount",
		},
		{
			name:  "buy exceeding platform balance",
			input: buyInput(100, 5600, 56),
			balances: Balances{
				BankBalance:     decimal.NewFromInt(1000000),
				PlatformBalance: decimal.NewFromInt(50),
			},
			valid:      false,
			errorField: "usdt_amount",
		},
		{
			name: "sell exceeding bank balance",
			input: &models.TransactionInput{
				Type:       models.TypeSell,
				UserID:     "alice",
				USDTAmount: decimal.NewFromInt(100),
				PHPAmount:  decimal.NewFromInt(5700),
				Rate:       decimal.NewFromInt(57),
				Platform:   "Binance",
				Bank:       "BDO",
			},
			balances: Balances{
				BankBalance:     decimal.NewFromInt(1000),
				PlatformBalance: decimal.NewFromInt(100000),
			},
			valid:      false,
			errorField: "php_amount",
		},
		{
			name:          "rate deviation warns but does not block",
			input:         buyInput(100, 7000, 70),
			balances:      richBalances,
			referenceRate: decimal.NewFromInt(56),
			valid:         true,
			warnings:      1,
		},
		{
			name:     "large transaction warns but does not block",
			input:    buyInput(10000, 560000, 56),
			balances: richBalances,
			valid:    true,
			warnings: 1,
		},
		{
			name: "unknown type",
			input: &models.TransactionInput{
				Type:       "SWAP",
				UserID:     "alice",
				USDTAmount: decimal.NewFromInt(100),
				PHPAmount:  decimal.NewFromInt(5600),
				Rate:       decimal.NewFromInt(56),
			},
			balances:   richBalances,
			valid:      false,
			errorField: "type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := v.ValidateTrade(tt.input, tt.balances, tt.referenceRate)

			assert.Equal(t, tt.valid, result.Valid)
			if tt.errorField != "" {
				assert.Contains(t, result.Errors, tt.errorField)
			}
			assert.Len(t, result.Warnings, tt.warnings)
		})
	}
}

func TestValidateTrade_InternalTransferSkipsBounds(t *testing.T) {
	v := NewTradeValidator(testLimits())

	input := &models.TransactionInput{
		Type:       models.TypeInternalTransfer,
		UserID:     "alice",
		USDTAmount: decimal.NewFromInt(100),
	}

	result := v.ValidateTrade(input, Balances{}, decimal.Zero)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidateTrade_ZeroReferenceDisablesDeviationCheck(t *testing.T) {
	v := NewTradeValidator(testLimits())

	result := v.ValidateTrade(buyInput(100, 9000, 90), Balances{
		BankBalance:     decimal.NewFromInt(1000000),
		PlatformBalance: decimal.NewFromInt(100000),
	}, decimal.Zero)

	assert.True(t, result.Valid)
	assert.Empty(t, result.Warnings)
}
