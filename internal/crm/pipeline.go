package crm

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/sealops/api-strategist/internal/commission"
	"github.com/sealops/api-strategist/internal/profile"
)

// Pipeline applies the compound side effects of leads entering and leaving
// the RESCUE column. The three write paths (create, update, move) and the
// delete path all funnel through here so their semantics cannot drift.
//
// ReverseCommissionOnExit controls whether pulling a lead back out of RESCUE
// also cancels a still-outstanding commission. The historical behavior is
// false: once earned, a commission survives pipeline reversals. A PAID
// commission is never retracted either way.
type Pipeline struct {
	Commissions             commission.Repository
	Profiles                profile.Repository
	ReverseCommissionOnExit bool
}

func NewPipeline(reverseOnExit bool) *Pipeline {
	return &Pipeline{
		Commissions:             commission.NewRepository(),
		Profiles:                profile.NewRepository(),
		ReverseCommissionOnExit: reverseOnExit,
	}
}

// ApplyTransition reconciles the owner's counters and ledger after a lead's
// status changed from oldStatus to lead.Status. For a freshly created lead
// oldStatus is empty. Must run inside the same transaction as the lead
// write.
func (pl *Pipeline) ApplyTransition(tx *gorm.DB, prof *profile.Profile, lead *Lead, oldStatus string) error {
	entered := lead.Status == StatusRescue && oldStatus != StatusRescue
	left := oldStatus == StatusRescue && lead.Status != StatusRescue

	switch {
	case entered:
		prof.FamiliesSavedCount++
		if err := pl.Profiles.Save(tx, prof); err != nil {
			return err
		}
		if err := pl.ensureCommission(tx, prof, lead); err != nil {
			return err
		}
		return pl.recomputeBalance(tx, prof)

	case left:
		if prof.FamiliesSavedCount > 0 {
			prof.FamiliesSavedCount--
		}
		if err := pl.Profiles.Save(tx, prof); err != nil {
			return err
		}
		if pl.ReverseCommissionOnExit {
			return pl.cancelOutstanding(tx, prof, lead)
		}
		return nil
	}
	return nil
}

// ApplyDeletion settles the owner's state before a lead row goes away: the
// rescue counter drops if the lead was closed, and any commission keeps its
// money but loses the lead reference.
func (pl *Pipeline) ApplyDeletion(tx *gorm.DB, prof *profile.Profile, lead *Lead) error {
	if lead.Status == StatusRescue {
		if prof.FamiliesSavedCount > 0 {
			prof.FamiliesSavedCount--
		}
		if err := pl.Profiles.Save(tx, prof); err != nil {
			return err
		}
	}
	return pl.Commissions.ClearLeadReference(tx, lead.ID)
}

// ensureCommission guarantees at most one commission per (profile, lead).
// Re-entering RESCUE reuses the original record; the amount is never
// recomputed.
func (pl *Pipeline) ensureCommission(tx *gorm.DB, prof *profile.Profile, lead *Lead) error {
	_, err := pl.Commissions.FindByProfileAndLead(tx, prof.ID, lead.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	leadID := lead.ID
	return pl.Commissions.Create(tx, &commission.Commission{
		ProfileID:   prof.ID,
		LeadID:      &leadID,
		Amount:      lead.PotentialValue * prof.CommissionPercentage / 100,
		Status:      commission.StatusPending,
		Description: fmt.Sprintf("Automatic commission - lead: %s", lead.Name),
	})
}

func (pl *Pipeline) recomputeBalance(tx *gorm.DB, prof *profile.Profile) error {
	total, err := pl.Commissions.OutstandingTotal(tx, prof.ID)
	if err != nil {
		return err
	}
	prof.CurrentCommission = total
	return pl.Profiles.Save(tx, prof)
}

func (pl *Pipeline) cancelOutstanding(tx *gorm.DB, prof *profile.Profile, lead *Lead) error {
	c, err := pl.Commissions.FindByProfileAndLead(tx, prof.ID, lead.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if c.Status != commission.StatusPending && c.Status != commission.StatusApproved {
		return nil
	}
	c.Status = commission.StatusCancelled
	if err := pl.Commissions.Save(tx, c); err != nil {
		return err
	}
	return pl.recomputeBalance(tx, prof)
}
