package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/contract-payments-engine/internal/models"
)

func dec(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

func seeded() *Store {
	store := NewStore()
	store.SeedParty(models.Party{ID: 1, Balance: dec("100.00"), Role: models.RoleClient})
	store.SeedParty(models.Party{ID: 2, Balance: dec("0.00"), Role: models.RoleContractor})
	store.SeedContract(models.Contract{ID: 1, Status: models.ContractActive, ClientID: 1, ContractorID: 2})
	store.SeedJob(models.Job{ID: 1, ContractID: 1, Price: dec("60.00")})
	return store
}

func TestSettleJob_AllThreeWritesOrNone(t *testing.T) {
	store := seeded()
	ctx := context.Background()
	now := time.Now().UTC()

	if err := store.SettleJob(ctx, 1, 1, 2, dec("60.00"), now); err != nil {
		t.Fatalf("settle: %v", err)
	}

	client, _ := store.GetParty(ctx, 1)
	contractor, _ := store.GetParty(ctx, 2)
	if !client.Balance.Equal(dec("40.00")) || !contractor.Balance.Equal(dec("60.00")) {
		t.Errorf("balances %s / %s after settle", client.Balance, contractor.Balance)
	}
	job, _, err := store.GetJobWithContract(ctx, 1)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !job.Paid || job.PaymentDate == nil || !job.PaymentDate.Equal(now) {
		t.Errorf("job not settled correctly: %+v", job)
	}
}

func TestSettleJob_InsufficientFundsWritesNothing(t *testing.T) {
	store := seeded()
	ctx := context.Background()

	err := store.SettleJob(ctx, 1, 1, 2, dec("100.01"), time.Now())
	if !errors.Is(err, models.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	client, _ := store.GetParty(ctx, 1)
	contractor, _ := store.GetParty(ctx, 2)
	if !client.Balance.Equal(dec("100.00")) || !contractor.Balance.Equal(dec("0.00")) {
		t.Errorf("balances mutated on failed settle: %s / %s", client.Balance, contractor.Balance)
	}
	job, _, _ := store.GetJobWithContract(ctx, 1)
	if job.Paid || job.PaymentDate != nil {
		t.Errorf("job mutated on failed settle: %+v", job)
	}
}

func TestSettleJob_RepeatRejected(t *testing.T) {
	store := seeded()
	ctx := context.Background()

	if err := store.SettleJob(ctx, 1, 1, 2, dec("60.00"), time.Now()); err != nil {
		t.Fatalf("first settle: %v", err)
	}
	if err := store.SettleJob(ctx, 1, 1, 2, dec("60.00"), time.Now()); !errors.Is(err, models.ErrAlreadyPaid) {
		t.Fatalf("expected ErrAlreadyPaid, got %v", err)
	}
}

func TestUnpaidActiveTotal_Filters(t *testing.T) {
	store := seeded()
	store.SeedContract(models.Contract{ID: 2, Status: models.ContractNew, ClientID: 1, ContractorID: 2})
	store.SeedJob(models.Job{ID: 2, ContractID: 2, Price: dec("500.00")})            // not active
	store.SeedJob(models.Job{ID: 3, ContractID: 1, Price: dec("40.00")})             // counts
	store.SeedJob(models.Job{ID: 4, ContractID: 1, Price: dec("70.00"), Paid: true}) // paid

	total, err := store.UnpaidActiveTotal(context.Background(), 1)
	if err != nil {
		t.Fatalf("total: %v", err)
	}
	if !total.Equal(dec("100.00")) {
		t.Errorf("expected 100.00, got %s", total)
	}

	// Another client has no exposure here.
	total, err = store.UnpaidActiveTotal(context.Background(), 99)
	if err != nil {
		t.Fatalf("total for stranger: %v", err)
	}
	if !total.Equal(decimal.Zero) {
		t.Errorf("expected 0, got %s", total)
	}
}

func TestGetJobWithContract_ReturnsCopies(t *testing.T) {
	store := seeded()
	ctx := context.Background()

	job, contract, err := store.GetJobWithContract(ctx, 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	job.Paid = true
	contract.Status = models.ContractTerminated

	reloaded, _, err := store.GetJobWithContract(ctx, 1)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Paid {
		t.Error("caller mutation leaked into the store")
	}
}

func TestAddToBalance_ClientRoleRequired(t *testing.T) {
	store := seeded()

	if _, err := store.AddToBalance(context.Background(), 2, dec("10.00")); !errors.Is(err, models.ErrPartyNotFound) {
		t.Errorf("contractor: expected ErrPartyNotFound, got %v", err)
	}
	balance, err := store.AddToBalance(context.Background(), 1, dec("10.00"))
	if err != nil {
		t.Fatalf("client: %v", err)
	}
	if !balance.Equal(dec("110.00")) {
		t.Errorf("expected 110.00, got %s", balance)
	}
}
