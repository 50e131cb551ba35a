package crm

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/sealops/api-strategist/internal/commission"
	"github.com/sealops/api-strategist/internal/profile"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&profile.Profile{}, &Lead{}, &commission.Commission{}))
	return db
}

func newOperationalProfile(t *testing.T, db *gorm.DB) *profile.Profile {
	t.Helper()
	p := &profile.Profile{
		AuthKey:              "a3bb1898-1f55-4bbe-9e39-1dd6069cb1f4",
		Email:                "operator@example.com",
		FullName:             "Test Operator",
		OnboardingStep:       profile.StepOperational,
		CommissionPercentage: 5,
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func moveLead(t *testing.T, db *gorm.DB, pl *Pipeline, p *profile.Profile, lead *Lead, to string) {
	t.Helper()
	old := lead.Status
	lead.Status = to
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(lead).Error; err != nil {
			return err
		}
		return pl.ApplyTransition(tx, p, lead, old)
	})
	require.NoError(t, err)
}

func commissionsFor(t *testing.T, db *gorm.DB, profileID uint) []commission.Commission {
	t.Helper()
	var list []commission.Commission
	require.NoError(t, db.Where("profile_id = ?", profileID).Find(&list).Error)
	return list
}

func TestRescueEntryCreatesCommissionAndBalance(t *testing.T) {
	db := newTestDB(t)
	p := newOperationalProfile(t, db)
	pl := NewPipeline(false)

	lead := &Lead{ProfileID: p.ID, Name: "Family A", Status: StatusRadar, PotentialValue: 1000}
	require.NoError(t, db.Create(lead).Error)

	moveLead(t, db, pl, p, lead, StatusRescue)

	require.Equal(t, 1, p.FamiliesSavedCount)

	records := commissionsFor(t, db, p.ID)
	require.Len(t, records, 1)
	require.Equal(t, commission.StatusPending, records[0].Status)
	require.InDelta(t, 50.0, records[0].Amount, 1e-9) // 1000 × 5%
	require.InDelta(t, 50.0, p.CurrentCommission, 1e-9)
}

func TestRescueTwiceInARowCreatesOneCommission(t *testing.T) {
	db := newTestDB(t)
	p := newOperationalProfile(t, db)
	pl := NewPipeline(false)

	lead := &Lead{ProfileID: p.ID, Name: "Family B", Status: StatusCombat, PotentialValue: 2000}
	require.NoError(t, db.Create(lead).Error)

	moveLead(t, db, pl, p, lead, StatusRescue)
	moveLead(t, db, pl, p, lead, StatusRescue)

	require.Equal(t, 1, p.FamiliesSavedCount)
	require.Len(t, commissionsFor(t, db, p.ID), 1)
}

func TestRescueReentryKeepsOriginalAmount(t *testing.T) {
	db := newTestDB(t)
	p := newOperationalProfile(t, db)
	pl := NewPipeline(false)

	lead := &Lead{ProfileID: p.ID, Name: "Family C", Status: StatusExtraction, PotentialValue: 1000}
	require.NoError(t, db.Create(lead).Error)

	moveLead(t, db, pl, p, lead, StatusRescue)
	moveLead(t, db, pl, p, lead, StatusCombat)

	// Value changes between exit and re-entry must not touch the ledger.
	lead.PotentialValue = 9999
	require.NoError(t, db.Save(lead).Error)

	moveLead(t, db, pl, p, lead, StatusRescue)

	records := commissionsFor(t, db, p.ID)
	require.Len(t, records, 1)
	require.InDelta(t, 50.0, records[0].Amount, 1e-9)
	require.Equal(t, 1, p.FamiliesSavedCount)
}

func TestExitDoesNotRetractCommissionByDefault(t *testing.T) {
	db := newTestDB(t)
	p := newOperationalProfile(t, db)
	pl := NewPipeline(false)

	lead := &Lead{ProfileID: p.ID, Name: "Family D", Status: StatusRadar, PotentialValue: 800}
	require.NoError(t, db.Create(lead).Error)

	moveLead(t, db, pl, p, lead, StatusRescue)
	moveLead(t, db, pl, p, lead, StatusRadar)

	require.Equal(t, 0, p.FamiliesSavedCount)

	records := commissionsFor(t, db, p.ID)
	require.Len(t, records, 1)
	require.Equal(t, commission.StatusPending, records[0].Status)
	// Balance keeps the earned amount: the commission survives the reversal.
	require.InDelta(t, 40.0, p.CurrentCommission, 1e-9)
}

func TestExitCancelsCommissionWhenConfigured(t *testing.T) {
	db := newTestDB(t)
	p := newOperationalProfile(t, db)
	pl := NewPipeline(true)

	lead := &Lead{ProfileID: p.ID, Name: "Family E", Status: StatusRadar, PotentialValue: 800}
	require.NoError(t, db.Create(lead).Error)

	moveLead(t, db, pl, p, lead, StatusRescue)
	moveLead(t, db, pl, p, lead, StatusRadar)

	records := commissionsFor(t, db, p.ID)
	require.Len(t, records, 1)
	require.Equal(t, commission.StatusCancelled, records[0].Status)
	require.InDelta(t, 0.0, p.CurrentCommission, 1e-9)
}

func TestExitNeverRetractsPaidCommission(t *testing.T) {
	db := newTestDB(t)
	p := newOperationalProfile(t, db)
	pl := NewPipeline(true)

	lead := &Lead{ProfileID: p.ID, Name: "Family F", Status: StatusRadar, PotentialValue: 800}
	require.NoError(t, db.Create(lead).Error)

	moveLead(t, db, pl, p, lead, StatusRescue)

	require.NoError(t, db.Model(&commission.Commission{}).
		Where("profile_id = ?", p.ID).
		Update("status", commission.StatusPaid).Error)

	moveLead(t, db, pl, p, lead, StatusRadar)

	records := commissionsFor(t, db, p.ID)
	require.Len(t, records, 1)
	require.Equal(t, commission.StatusPaid, records[0].Status)
}

func TestCounterNeverGoesNegative(t *testing.T) {
	db := newTestDB(t)
	p := newOperationalProfile(t, db)
	pl := NewPipeline(false)

	lead := &Lead{ProfileID: p.ID, Name: "Family G", Status: StatusRescue, PotentialValue: 100}
	require.NoError(t, db.Create(lead).Error)

	// The counter was never incremented for this lead; leaving RESCUE twice
	// through different paths must still floor at zero.
	moveLead(t, db, pl, p, lead, StatusRadar)
	require.Equal(t, 0, p.FamiliesSavedCount)

	lead.Status = StatusRescue
	require.NoError(t, db.Save(lead).Error)
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		return pl.ApplyDeletion(tx, p, lead)
	}))
	require.Equal(t, 0, p.FamiliesSavedCount)
}

func TestBalanceAlwaysMatchesOutstandingSum(t *testing.T) {
	db := newTestDB(t)
	p := newOperationalProfile(t, db)
	pl := NewPipeline(false)

	values := []float64{1000, 2500, 400}
	for _, v := range values {
		lead := &Lead{ProfileID: p.ID, Name: "Lead", Status: StatusRadar, PotentialValue: v}
		require.NoError(t, db.Create(lead).Error)
		moveLead(t, db, pl, p, lead, StatusRescue)
	}

	total, err := commission.NewRepository().OutstandingTotal(db, p.ID)
	require.NoError(t, err)
	require.InDelta(t, total, p.CurrentCommission, 1e-9)
	require.InDelta(t, (1000+2500+400)*0.05, p.CurrentCommission, 1e-9)
	require.Equal(t, 3, p.FamiliesSavedCount)
}

func TestDeletingRescuedLeadKeepsCommission(t *testing.T) {
	db := newTestDB(t)
	p := newOperationalProfile(t, db)
	pl := NewPipeline(false)

	lead := &Lead{ProfileID: p.ID, Name: "Family H", Status: StatusRadar, PotentialValue: 600}
	require.NoError(t, db.Create(lead).Error)
	moveLead(t, db, pl, p, lead, StatusRescue)
	require.Equal(t, 1, p.FamiliesSavedCount)

	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		if err := pl.ApplyDeletion(tx, p, lead); err != nil {
			return err
		}
		return tx.Delete(lead).Error
	}))

	require.Equal(t, 0, p.FamiliesSavedCount)

	records := commissionsFor(t, db, p.ID)
	require.Len(t, records, 1)
	require.Nil(t, records[0].LeadID) // reference cleared, money kept
	require.InDelta(t, 30.0, records[0].Amount, 1e-9)
}

func TestCreateDirectlyInRescue(t *testing.T) {
	db := newTestDB(t)
	p := newOperationalProfile(t, db)
	pl := NewPipeline(false)

	lead := &Lead{ProfileID: p.ID, Name: "Family I", Status: StatusRescue, PotentialValue: 1200}
	require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(lead).Error; err != nil {
			return err
		}
		return pl.ApplyTransition(tx, p, lead, "")
	}))

	require.Equal(t, 1, p.FamiliesSavedCount)
	records := commissionsFor(t, db, p.ID)
	require.Len(t, records, 1)
	require.Equal(t, commission.StatusPending, records[0].Status)
	require.InDelta(t, 60.0, records[0].Amount, 1e-9)
}
