package payroll

import (
	"testing"

	"github.com/cmlabs-hris/hris-payroll-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjustmentKindAllows(t *testing.T) {
	assert.True(t, KindBonus.Allows(BonusPerformance))
	assert.True(t, KindBonus.Allows(AdjustmentOther))
	assert.False(t, KindBonus.Allows(DeductionTax))
	assert.True(t, KindDeduction.Allows(DeductionLate))
	assert.False(t, KindDeduction.Allows(BonusHoliday))
	assert.False(t, AdjustmentKind("gift").Allows(AdjustmentOther))
}

func TestProcessPayrollRequestValidate(t *testing.T) {
	req := ProcessPayrollRequest{
		Month: "2025-01",
		Adjustments: map[string][]Adjustment{
			"emp-1": {
				{Kind: KindBonus, Type: BonusPerformance, Amount: decimal.NewFromInt(50)},
				{Kind: KindDeduction, Type: DeductionLate, Amount: decimal.NewFromInt(10)},
			},
		},
	}
	assert.NoError(t, req.Validate())
}

func TestProcessPayrollRequestValidateRejectsBadInput(t *testing.T) {
	req := ProcessPayrollRequest{
		Month: "2025-1",
		Adjustments: map[string][]Adjustment{
			"emp-1": {
				{Kind: KindBonus, Type: DeductionTax, Amount: decimal.NewFromInt(50)},
				{Kind: "gift", Type: AdjustmentOther, Amount: decimal.Zero},
			},
		},
	}

	var verrs validator.ValidationErrors
	require.ErrorAs(t, req.Validate(), &verrs)
	fields := verrs.ToMap()
	assert.Contains(t, fields, "month")
	assert.Contains(t, fields, "adjustments.emp-1[0].type")
	assert.Contains(t, fields, "adjustments.emp-1[1].kind")
	assert.Contains(t, fields, "adjustments.emp-1[1].amount")
}

func TestToResponseNeverReturnsNilSlices(t *testing.T) {
	resp := ToResponse(Entry{ID: "p-1"})
	assert.NotNil(t, resp.Bonuses)
	assert.NotNil(t, resp.Deductions)
	assert.NotNil(t, resp.AdvanceIDs)
	assert.NotNil(t, resp.OvertimeEntryIDs)
}
