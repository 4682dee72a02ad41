package billing

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sheikh-saqib/contract-payments-engine/internal/models"
	"github.com/sheikh-saqib/contract-payments-engine/internal/models/events"
)

type capturePublisher struct {
	mu     sync.Mutex
	topics []string
	events []any
	err    error
}

func (c *capturePublisher) Publish(ctx context.Context, topic string, event any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.topics = append(c.topics, topic)
	c.events = append(c.events, event)
	return nil
}

func TestPayJob_PublishesJobSettled(t *testing.T) {
	_, store := newFixture(t)
	store.SeedJob(models.Job{ID: 1, ContractID: 1, Price: dec("100.00")})
	pub := &capturePublisher{}
	svc := NewService(store, pub, nil)

	if err := svc.PayJob(context.Background(), caller(t, store, 1), 1); err != nil {
		t.Fatalf("pay: %v", err)
	}

	if len(pub.topics) != 1 || pub.topics[0] != events.TopicJobSettled {
		t.Fatalf("expected one %s event, got %v", events.TopicJobSettled, pub.topics)
	}
	settled, ok := pub.events[0].(events.JobSettled)
	if !ok {
		t.Fatalf("expected JobSettled payload, got %T", pub.events[0])
	}
	if settled.JobID != 1 || settled.ClientID != 1 || settled.ContractorID != 2 {
		t.Errorf("wrong event ids: %+v", settled)
	}
	if !settled.Amount.Equal(dec("100.00")) {
		t.Errorf("expected amount 100.00, got %s", settled.Amount)
	}
	if settled.EventID == "" {
		t.Error("expected a generated event id")
	}
}

func TestDeposit_PublishesDepositReceived(t *testing.T) {
	_, store := newFixture(t)
	store.SeedJob(models.Job{ID: 1, ContractID: 1, Price: dec("400.00")})
	pub := &capturePublisher{}
	svc := NewService(store, pub, nil)

	if _, err := svc.Deposit(context.Background(), 1, dec("100.00")); err != nil {
		t.Fatalf("deposit: %v", err)
	}

	if len(pub.topics) != 1 || pub.topics[0] != events.TopicDepositReceived {
		t.Fatalf("expected one %s event, got %v", events.TopicDepositReceived, pub.topics)
	}
	received := pub.events[0].(events.DepositReceived)
	if !received.NewBalance.Equal(dec("1100.00")) {
		t.Errorf("expected new balance 1100.00, got %s", received.NewBalance)
	}
}

func TestPayJob_PublishFailureDoesNotUndoSettlement(t *testing.T) {
	_, store := newFixture(t)
	store.SeedJob(models.Job{ID: 1, ContractID: 1, Price: dec("100.00")})
	pub := &capturePublisher{err: errors.New("broker down")}
	svc := NewService(store, pub, nil)

	if err := svc.PayJob(context.Background(), caller(t, store, 1), 1); err != nil {
		t.Fatalf("pay should succeed despite publish failure: %v", err)
	}
	job, _, err := store.GetJobWithContract(context.Background(), 1)
	if err != nil {
		t.Fatalf("reload job: %v", err)
	}
	if !job.Paid {
		t.Error("settlement rolled back on publish failure")
	}
}
