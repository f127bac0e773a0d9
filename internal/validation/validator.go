package validation

import (
	"fmt"

	"github.com/shopspring/decimal"

	"baryabazaar-api/internal/models"
)

// Limits are the configurable validation bounds for trade submissions.
type Limits struct {
	MinUSDTAmount        decimal.Decimal
	MaxUSDTAmount        decimal.Decimal
	RateDeviationPercent decimal.Decimal
	LargeTransactionPHP  decimal.Decimal
}

// Balances is the projector state a trade is checked against.
type Balances struct {
	BankBalance     decimal.Decimal
	PlatformBalance decimal.Decimal
}

// Result is the outcome of a pre-submission check. Errors block submission
// and are keyed per field; warnings are advisory and require explicit
// acknowledgment by the caller before the trade proceeds.
type Result struct {
	Valid    bool              `json:"valid"`
	Errors   map[string]string `json:"errors"`
	Warnings []string          `json:"warnings"`
}

// TradeValidator performs pure pre-submission checks. It never mutates state
// and never errors; all findings are reported through the Result.
type TradeValidator struct {
	limits Limits
}

func NewTradeValidator(limits Limits) *TradeValidator {
	return &TradeValidator{limits: limits}
}

// ValidateTrade checks a trade intent against the configured limits, the
// current balances, and an optional reference market rate (zero disables the
// deviation check).
func (v *TradeValidator) ValidateTrade(input *models.TransactionInput, balances Balances, referenceRate decimal.Decimal) Result {
	result := Result{
		Errors:   make(map[string]string),
		Warnings: nil,
	}

	v.checkRequired(input, &result)
	v.checkBounds(input, &result)
	v.checkSufficiency(input, balances, &result)
	v.checkRateDeviation(input, referenceRate, &result)
	v.checkLargeTransaction(input, &result)

	result.Valid = len(result.Errors) == 0
	return result
}

func (v *TradeValidator) checkRequired(input *models.TransactionInput, result *Result) {
	if input.UserID == "" {
		result.Errors["user_id"] = "user is required"
	}

	switch input.Type {
	case models.TypeBuy, models.TypeSell:
		if input.Platform == "" {
			result.Errors["platform"] = "platform is required"
		}
		if input.Bank == "" {
			result.Errors["bank"] = "bank is required"
		}
	case models.TypeInternalTransfer:
	default:
		result.Errors["type"] = fmt.Sprintf("unknown transaction type: %s", input.Type)
	}
}

func (v *TradeValidator) checkBounds(input *models.TransactionInput, result *Result) {
	if input.Type == models.TypeInternalTransfer {
		return
	}

	if input.USDTAmount.LessThan(v.limits.MinUSDTAmount) {
		result.Errors["usdt_amount"] = fmt.Sprintf("amount must be at least %s USDT", v.limits.MinUSDTAmount.String())
	}
	if !v.limits.MaxUSDTAmount.IsZero() && input.USDTAmount.GreaterThan(v.limits.MaxUSDTAmount) {
		result.Errors["usdt_amount"] = fmt.Sprintf("amount exceeds maximum of %s USDT", v.limits.MaxUSDTAmount.String())
	}
	if !input.PHPAmount.IsPositive() {
		result.Errors["php_amount"] = "fiat amount must be positive"
	}
	if !input.Rate.IsPositive() {
		result.Errors["rate"] = "rate must be positive"
	}
	if input.Fee.IsNegative() {
		result.Errors["fee"] = "fee cannot be negative"
	}
}

func (v *TradeValidator) checkSufficiency(input *models.TransactionInput, balances Balances, result *Result) {
	switch input.Type {
	case models.TypeSell:
		// A SELL pays fiat out of the selected bank.
		if input.PHPAmount.GreaterThan(balances.BankBalance) {
			result.Errors["php_amount"] = fmt.Sprintf(
				"insufficient bank balance: required %s, available %s",
				input.PHPAmount.String(), balances.BankBalance.String())
		}
	case models.TypeBuy:
		// A BUY is settled against USDT already held on the platform.
		if input.USDTAmount.GreaterThan(balances.PlatformBalance) {
			result.Errors["usdt_amount"] = fmt.Sprintf(
				"insufficient platform balance: required %s, available %s",
				input.USDTAmount.String(), balances.PlatformBalance.String())
		}
	}
}

func (v *TradeValidator) checkRateDeviation(input *models.TransactionInput, referenceRate decimal.Decimal, result *Result) {
	if referenceRate.IsZero() || input.Rate.IsZero() || v.limits.RateDeviationPercent.IsZero() {
		return
	}

	deviation := input.Rate.Sub(referenceRate).Abs().Div(referenceRate).Mul(decimal.NewFromInt(100))
	if deviation.GreaterThan(v.limits.RateDeviationPercent) {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"rate %s deviates %s%% from reference rate %s",
			input.Rate.String(), deviation.Round(2).String(), referenceRate.String()))
	}
}

func (v *TradeValidator) checkLargeTransaction(input *models.TransactionInput, result *Result) {
	if v.limits.LargeTransactionPHP.IsZero() {
		return
	}
	if input.PHPAmount.GreaterThan(v.limits.LargeTransactionPHP) {
		result.Warnings = append(result.Warnings, fmt.Sprintf(
			"large transaction: %s PHP exceeds the %s PHP advisory threshold",
			input.PHPAmount.String(), v.limits.LargeTransactionPHP.String()))
	}
}
