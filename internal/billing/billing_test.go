package billing

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/contract-payments-engine/internal/models"
	"github.com/sheikh-saqib/contract-payments-engine/internal/storage/memory"
)

func dec(s string) decimal.Decimal {
	v, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return v
}

// newFixture seeds one client (id 1, balance 1000), one contractor
// (id 2, balance 50) and an active contract (id 1) between them.
func newFixture(t *testing.T) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	store.SeedParty(models.Party{ID: 1, FirstName: "Harry", LastName: "Potter", Profession: "Wizard", Balance: dec("1000.00"), Role: models.RoleClient})
	store.SeedParty(models.Party{ID: 2, FirstName: "John", LastName: "Lenon", Profession: "Musician", Balance: dec("50.00"), Role: models.RoleContractor})
	store.SeedContract(models.Contract{ID: 1, Terms: "terms", Status: models.ContractActive, ClientID: 1, ContractorID: 2})
	return NewService(store, nil, nil), store
}

func balanceOf(t *testing.T, store *memory.Store, id int64) decimal.Decimal {
	t.Helper()
	p, err := store.GetParty(context.Background(), id)
	if err != nil {
		t.Fatalf("get party %d: %v", id, err)
	}
	return p.Balance
}

// ─── Deposit ────────────────────────────────────────────────────────

func TestDeposit_WithinCapIncreasesBalance(t *testing.T) {
	svc, store := newFixture(t)
	store.SeedJob(models.Job{ID: 1, ContractID: 1, Description: "work", Price: dec("200.00")})

	// exposure 200.00 → cap 50.00, inclusive
	newBalance, err := svc.Deposit(context.Background(), 1, dec("50.00"))
	if err != nil {
		t.Fatalf("deposit: %v", err)
	}
	if !newBalance.Equal(dec("1050.00")) {
		t.Errorf("expected new balance 1050.00, got %s", newBalance)
	}
	if got := balanceOf(t, store, 1); !got.Equal(dec("1050.00")) {
		t.Errorf("expected stored balance 1050.00, got %s", got)
	}
}

func TestDeposit_AboveCapRejected(t *testing.T) {
	svc, store := newFixture(t)
	store.SeedJob(models.Job{ID: 1, ContractID: 1, Description: "work", Price: dec("200.00")})

	_, err := svc.Deposit(context.Background(), 1, dec("50.01"))
	var capErr *models.DepositCapError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected DepositCapError, got %v", err)
	}
	if !capErr.Cap.Equal(dec("50.00")) {
		t.Errorf("expected cap 50.00, got %s", capErr.Cap)
	}
	if got := balanceOf(t, store, 1); !got.Equal(dec("1000.00")) {
		t.Errorf("expected balance unchanged at 1000.00, got %s", got)
	}
}

func TestDeposit_ExposureOnlyCountsUnpaidActiveJobs(t *testing.T) {
	svc, store := newFixture(t)
	store.SeedContract(models.Contract{ID: 2, Status: models.ContractNew, ClientID: 1, ContractorID: 2})
	store.SeedContract(models.Contract{ID: 3, Status: models.ContractTerminated, ClientID: 1, ContractorID: 2})

	store.SeedJob(models.Job{ID: 1, ContractID: 1, Price: dec("100.00")})             // counts
	store.SeedJob(models.Job{ID: 2, ContractID: 1, Price: dec("300.00"), Paid: true}) // paid
	store.SeedJob(models.Job{ID: 3, ContractID: 2, Price: dec("400.00")})             // new contract
	store.SeedJob(models.Job{ID: 4, ContractID: 3, Price: dec("500.00")})             // terminated

	// exposure 100.00 → cap 25.00
	if _, err := svc.Deposit(context.Background(), 1, dec("25.00")); err != nil {
		t.Fatalf("deposit within cap: %v", err)
	}
	_, err := svc.Deposit(context.Background(), 1, dec("25.01"))
	var capErr *models.DepositCapError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected DepositCapError, got %v", err)
	}
}

func TestDeposit_NoExposureRejectsAnyAmount(t *testing.T) {
	svc, _ := newFixture(t)

	_, err := svc.Deposit(context.Background(), 1, dec("0.01"))
	var capErr *models.DepositCapError
	if !errors.As(err, &capErr) {
		t.Fatalf("expected DepositCapError, got %v", err)
	}
	if !capErr.Cap.Equal(decimal.Zero) {
		t.Errorf("expected cap 0, got %s", capErr.Cap)
	}
}

func TestDeposit_InvalidAmount(t *testing.T) {
	svc, _ := newFixture(t)

	for _, amount := range []string{"0", "-10.00"} {
		if _, err := svc.Deposit(context.Background(), 1, dec(amount)); !errors.Is(err, models.ErrInvalidRequest) {
			t.Errorf("amount %s: expected ErrInvalidRequest, got %v", amount, err)
		}
	}
}

func TestDeposit_TargetMustBeClient(t *testing.T) {
	svc, _ := newFixture(t)

	if _, err := svc.Deposit(context.Background(), 2, dec("10.00")); !errors.Is(err, models.ErrPartyNotFound) {
		t.Errorf("contractor target: expected ErrPartyNotFound, got %v", err)
	}
	if _, err := svc.Deposit(context.Background(), 99, dec("10.00")); !errors.Is(err, models.ErrPartyNotFound) {
		t.Errorf("unknown target: expected ErrPartyNotFound, got %v", err)
	}
}

// ─── PayJob ─────────────────────────────────────────────────────────

func caller(t *testing.T, store *memory.Store, id int64) models.Party {
	t.Helper()
	p, err := store.GetParty(context.Background(), id)
	if err != nil {
		t.Fatalf("get caller %d: %v", id, err)
	}
	return p
}

func TestPayJob_MovesPriceAndSettles(t *testing.T) {
	svc, store := newFixture(t)
	store.SeedJob(models.Job{ID: 1, ContractID: 1, Description: "work", Price: dec("200.00")})

	sumBefore := balanceOf(t, store, 1).Add(balanceOf(t, store, 2))

	if err := svc.PayJob(context.Background(), caller(t, store, 1), 1); err != nil {
		t.Fatalf("pay: %v", err)
	}

	if got := balanceOf(t, store, 1); !got.Equal(dec("800.00")) {
		t.Errorf("expected client balance 800.00, got %s", got)
	}
	if got := balanceOf(t, store, 2); !got.Equal(dec("250.00")) {
		t.Errorf("expected contractor balance 250.00, got %s", got)
	}
	if sumAfter := balanceOf(t, store, 1).Add(balanceOf(t, store, 2)); !sumAfter.Equal(sumBefore) {
		t.Errorf("balance sum changed: before %s, after %s", sumBefore, sumAfter)
	}

	job, _, err := store.GetJobWithContract(context.Background(), 1)
	if err != nil {
		t.Fatalf("reload job: %v", err)
	}
	if !job.Paid {
		t.Error("expected job marked paid")
	}
	if job.PaymentDate == nil {
		t.Error("expected payment date set")
	}
}

func TestPayJob_MissingAndInactiveLookIdentical(t *testing.T) {
	svc, store := newFixture(t)
	store.SeedContract(models.Contract{ID: 2, Status: models.ContractNew, ClientID: 1, ContractorID: 2})
	store.SeedJob(models.Job{ID: 5, ContractID: 2, Price: dec("100.00")})

	missingErr := svc.PayJob(context.Background(), caller(t, store, 1), 99)
	inactiveErr := svc.PayJob(context.Background(), caller(t, store, 1), 5)

	if !errors.Is(missingErr, models.ErrJobNotFound) {
		t.Fatalf("missing job: expected ErrJobNotFound, got %v", missingErr)
	}
	if !errors.Is(inactiveErr, models.ErrJobNotFound) {
		t.Fatalf("inactive contract: expected ErrJobNotFound, got %v", inactiveErr)
	}
	if missingErr.Error() != inactiveErr.Error() {
		t.Errorf("callers can distinguish the two cases: %q vs %q", missingErr, inactiveErr)
	}
}

func TestPayJob_SecondAttemptAlreadyPaid(t *testing.T) {
	svc, store := newFixture(t)
	store.SeedJob(models.Job{ID: 1, ContractID: 1, Price: dec("100.00")})

	if err := svc.PayJob(context.Background(), caller(t, store, 1), 1); err != nil {
		t.Fatalf("first pay: %v", err)
	}
	if err := svc.PayJob(context.Background(), caller(t, store, 1), 1); !errors.Is(err, models.ErrAlreadyPaid) {
		t.Fatalf("second pay: expected ErrAlreadyPaid, got %v", err)
	}
	if got := balanceOf(t, store, 2); !got.Equal(dec("150.00")) {
		t.Errorf("contractor credited more than once: balance %s", got)
	}
}

func TestPayJob_OnlyOwningClientMayPay(t *testing.T) {
	svc, store := newFixture(t)
	store.SeedParty(models.Party{ID: 3, Balance: dec("5000.00"), Role: models.RoleClient})
	store.SeedJob(models.Job{ID: 1, ContractID: 1, Price: dec("100.00")})

	// The contractor on the very contract being paid.
	if err := svc.PayJob(context.Background(), caller(t, store, 2), 1); !errors.Is(err, models.ErrNotAuthorized) {
		t.Errorf("contractor: expected ErrNotAuthorized, got %v", err)
	}
	// A different client with plenty of funds.
	if err := svc.PayJob(context.Background(), caller(t, store, 3), 1); !errors.Is(err, models.ErrNotAuthorized) {
		t.Errorf("other client: expected ErrNotAuthorized, got %v", err)
	}
	if got := balanceOf(t, store, 2); !got.Equal(dec("50.00")) {
		t.Errorf("contractor balance changed: %s", got)
	}
}

func TestPayJob_InsufficientFundsLeavesStateUntouched(t *testing.T) {
	svc, store := newFixture(t)
	store.SeedJob(models.Job{ID: 1, ContractID: 1, Price: dec("1000.01")})

	err := svc.PayJob(context.Background(), caller(t, store, 1), 1)
	if !errors.Is(err, models.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	if got := balanceOf(t, store, 1); !got.Equal(dec("1000.00")) {
		t.Errorf("client balance changed: %s", got)
	}
	if got := balanceOf(t, store, 2); !got.Equal(dec("50.00")) {
		t.Errorf("contractor balance changed: %s", got)
	}
	job, _, err := store.GetJobWithContract(context.Background(), 1)
	if err != nil {
		t.Fatalf("reload job: %v", err)
	}
	if job.Paid || job.PaymentDate != nil {
		t.Error("job settlement state changed on failed payment")
	}
}

func TestPayJob_InvalidJobID(t *testing.T) {
	svc, store := newFixture(t)

	if err := svc.PayJob(context.Background(), caller(t, store, 1), 0); !errors.Is(err, models.ErrInvalidRequest) {
		t.Errorf("expected ErrInvalidRequest, got %v", err)
	}
}

// ─── Concurrency ────────────────────────────────────────────────────

func TestPayJob_ConcurrentAttemptsSettleOnce(t *testing.T) {
	svc, store := newFixture(t)
	store.SeedJob(models.Job{ID: 1, ContractID: 1, Price: dec("200.00")})

	const attempts = 8
	client := caller(t, store, 1)
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.PayJob(context.Background(), client, 1)
		}(i)
	}
	wg.Wait()

	successes, alreadyPaid := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, models.ErrAlreadyPaid):
			alreadyPaid++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	if successes != 1 || alreadyPaid != attempts-1 {
		t.Errorf("expected 1 success and %d AlreadyPaid, got %d and %d", attempts-1, successes, alreadyPaid)
	}
	if got := balanceOf(t, store, 1); !got.Equal(dec("800.00")) {
		t.Errorf("expected client debited exactly once, balance %s", got)
	}
	if got := balanceOf(t, store, 2); !got.Equal(dec("250.00")) {
		t.Errorf("expected contractor credited exactly once, balance %s", got)
	}
}

func TestDeposit_ConcurrentDepositsSerialize(t *testing.T) {
	svc, store := newFixture(t)
	store.SeedJob(models.Job{ID: 1, ContractID: 1, Price: dec("1000.00")}) // cap 250.00

	const workers = 10
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Deposit(context.Background(), 1, dec("25.00"))
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("deposit %d: %v", i, err)
		}
	}
	// No lost updates: every accepted deposit is in the final balance.
	if got := balanceOf(t, store, 1); !got.Equal(dec("1250.00")) {
		t.Errorf("expected balance 1250.00, got %s", got)
	}
}

func TestPayJob_ConcurrentPaymentsShareOneBalance(t *testing.T) {
	store := memory.NewStore()
	store.SeedParty(models.Party{ID: 1, Balance: dec("100.00"), Role: models.RoleClient})
	store.SeedParty(models.Party{ID: 2, Balance: dec("0.00"), Role: models.RoleContractor})
	store.SeedContract(models.Contract{ID: 1, Status: models.ContractActive, ClientID: 1, ContractorID: 2})
	store.SeedJob(models.Job{ID: 1, ContractID: 1, Price: dec("60.00")})
	store.SeedJob(models.Job{ID: 2, ContractID: 1, Price: dec("60.00")})
	svc := NewService(store, nil, nil)

	client := caller(t, store, 1)
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.PayJob(context.Background(), client, int64(i+1))
		}(i)
	}
	wg.Wait()

	successes, insufficient := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, models.ErrInsufficientFunds):
			insufficient++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	// The balance only covers one job: the guards must never both
	// pass against the same snapshot.
	if successes != 1 || insufficient != 1 {
		t.Fatalf("expected exactly one success and one InsufficientFunds, got %d and %d", successes, insufficient)
	}
	if got := balanceOf(t, store, 1); !got.Equal(dec("40.00")) {
		t.Errorf("expected client balance 40.00, got %s", got)
	}
	if got := balanceOf(t, store, 2); !got.Equal(dec("60.00")) {
		t.Errorf("expected contractor balance 60.00, got %s", got)
	}
}
