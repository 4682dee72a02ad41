// Package postgres implements the billing and reporting stores on
// PostgreSQL via lib/pq. Settlement runs as one transaction that locks
// the job row and both party rows, so the paid-flag check, the balance
// check and the three writes commit or roll back together.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/contract-payments-engine/internal/interfaces"
	"github.com/sheikh-saqib/contract-payments-engine/internal/models"
)

type Store struct {
	db *sql.DB
}

// New wraps an open database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects to PostgreSQL and verifies the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Store{db: db}, nil
}

// Migrate applies the schema statements.
func (p *Store) Migrate(ctx context.Context) error {
	for _, stmt := range Migrations() {
		if _, err := p.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Close releases the underlying connection pool.
func (p *Store) Close() error {
	return p.db.Close()
}

func (p *Store) GetParty(ctx context.Context, id int64) (models.Party, error) {
	const query = `SELECT id, first_name, last_name, profession, balance, role
	FROM parties WHERE id = $1`

	var party models.Party
	err := p.db.QueryRowContext(ctx, query, id).Scan(
		&party.ID, &party.FirstName, &party.LastName,
		&party.Profession, &party.Balance, &party.Role,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Party{}, models.ErrPartyNotFound
	}
	if err != nil {
		return models.Party{}, fmt.Errorf("get party %d: %w", id, err)
	}
	return party, nil
}

func (p *Store) GetJobWithContract(ctx context.Context, jobID int64) (models.Job, models.Contract, error) {
	// Filtering on status here makes not-found and not-active
	// indistinguishable to the caller.
	const query = `SELECT j.id, j.contract_id, j.description, j.price, j.paid, j.payment_date,
		c.id, c.terms, c.status, c.client_id, c.contractor_id
	FROM jobs j
	JOIN contracts c ON c.id = j.contract_id
	WHERE j.id = $1 AND c.status = 'active'`

	var (
		job      models.Job
		contract models.Contract
		paidAt   sql.NullTime
	)
	err := p.db.QueryRowContext(ctx, query, jobID).Scan(
		&job.ID, &job.ContractID, &job.Description, &job.Price, &job.Paid, &paidAt,
		&contract.ID, &contract.Terms, &contract.Status, &contract.ClientID, &contract.ContractorID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Job{}, models.Contract{}, models.ErrJobNotFound
	}
	if err != nil {
		return models.Job{}, models.Contract{}, fmt.Errorf("get job %d: %w", jobID, err)
	}
	if paidAt.Valid {
		t := paidAt.Time
		job.PaymentDate = &t
	}
	return job, contract, nil
}

func (p *Store) UnpaidActiveTotal(ctx context.Context, clientID int64) (decimal.Decimal, error) {
	const query = `SELECT COALESCE(SUM(j.price), 0)
	FROM jobs j
	JOIN contracts c ON c.id = j.contract_id
	WHERE c.client_id = $1 AND c.status = 'active' AND NOT j.paid`

	var total decimal.Decimal
	if err := p.db.QueryRowContext(ctx, query, clientID).Scan(&total); err != nil {
		return decimal.Zero, fmt.Errorf("unpaid total for client %d: %w", clientID, err)
	}
	return total, nil
}

func (p *Store) AddToBalance(ctx context.Context, clientID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	const query = `UPDATE parties SET balance = balance + $1
	WHERE id = $2 AND role = 'client'
	RETURNING balance`

	var balance decimal.Decimal
	err := p.db.QueryRowContext(ctx, query, amount, clientID).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, models.ErrPartyNotFound
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("add to balance of %d: %w", clientID, err)
	}
	return balance, nil
}

// SettleJob debits the client, credits the contractor and marks the
// job paid in one transaction. Party rows lock in id order; the
// balance and paid-flag guards run against the locked rows, so two
// racing settlements resolve to one success and one rejection.
func (p *Store) SettleJob(ctx context.Context, jobID, clientID, contractorID int64, price decimal.Decimal, settledAt time.Time) (err error) {
	dbTx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("settle job %d: begin: %w", jobID, err)
	}
	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	var paid bool
	err = dbTx.QueryRowContext(ctx,
		`SELECT paid FROM jobs WHERE id = $1 FOR UPDATE`, jobID).Scan(&paid)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ErrJobNotFound
	}
	if err != nil {
		return fmt.Errorf("settle job %d: lock job: %w", jobID, err)
	}
	if paid {
		return models.ErrAlreadyPaid
	}

	// ORDER BY id keeps the lock order stable across concurrent
	// settlements touching the same parties.
	rows, err := dbTx.QueryContext(ctx,
		`SELECT id, balance FROM parties WHERE id IN ($1, $2) ORDER BY id FOR UPDATE`,
		clientID, contractorID)
	if err != nil {
		return fmt.Errorf("settle job %d: lock parties: %w", jobID, err)
	}
	balances := make(map[int64]decimal.Decimal, 2)
	for rows.Next() {
		var id int64
		var balance decimal.Decimal
		if err = rows.Scan(&id, &balance); err != nil {
			rows.Close()
			return fmt.Errorf("settle job %d: scan party: %w", jobID, err)
		}
		balances[id] = balance
	}
	rows.Close()
	if err = rows.Err(); err != nil {
		return fmt.Errorf("settle job %d: read parties: %w", jobID, err)
	}

	clientBalance, ok := balances[clientID]
	if !ok {
		return models.ErrPartyNotFound
	}
	if _, ok = balances[contractorID]; !ok {
		return models.ErrPartyNotFound
	}
	if clientBalance.LessThan(price) {
		return models.ErrInsufficientFunds
	}

	if _, err = dbTx.ExecContext(ctx,
		`UPDATE parties SET balance = balance - $1 WHERE id = $2`, price, clientID); err != nil {
		return fmt.Errorf("settle job %d: debit client: %w", jobID, err)
	}
	if _, err = dbTx.ExecContext(ctx,
		`UPDATE parties SET balance = balance + $1 WHERE id = $2`, price, contractorID); err != nil {
		return fmt.Errorf("settle job %d: credit contractor: %w", jobID, err)
	}
	if _, err = dbTx.ExecContext(ctx,
		`UPDATE jobs SET paid = TRUE, payment_date = $1 WHERE id = $2`, settledAt, jobID); err != nil {
		return fmt.Errorf("settle job %d: mark paid: %w", jobID, err)
	}

	if err = dbTx.Commit(); err != nil {
		return fmt.Errorf("settle job %d: commit: %w", jobID, err)
	}
	return nil
}

func (p *Store) BestProfession(ctx context.Context, start, end time.Time) (models.ProfessionEarnings, error) {
	const query = `SELECT ct.profession, SUM(j.price) AS total
	FROM jobs j
	JOIN contracts c ON c.id = j.contract_id
	JOIN parties ct ON ct.id = c.contractor_id AND ct.role = 'contractor'
	WHERE j.paid AND j.payment_date BETWEEN $1 AND $2
	GROUP BY ct.profession
	ORDER BY total DESC
	LIMIT 1`

	var result models.ProfessionEarnings
	err := p.db.QueryRowContext(ctx, query, start, end).Scan(&result.Profession, &result.TotalEarnings)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ProfessionEarnings{}, models.ErrNoResults
	}
	if err != nil {
		return models.ProfessionEarnings{}, fmt.Errorf("best profession: %w", err)
	}
	return result, nil
}

func (p *Store) BestClients(ctx context.Context, start, end time.Time, limit int) ([]models.ClientPayment, error) {
	const query = `SELECT c.client_id, cl.first_name, cl.last_name, SUM(j.price) AS total
	FROM jobs j
	JOIN contracts c ON c.id = j.contract_id
	JOIN parties cl ON cl.id = c.client_id
	WHERE j.paid AND j.payment_date BETWEEN $1 AND $2
	GROUP BY c.client_id, cl.first_name, cl.last_name
	ORDER BY total DESC
	LIMIT $3`

	rows, err := p.db.QueryContext(ctx, query, start, end, limit)
	if err != nil {
		return nil, fmt.Errorf("best clients: %w", err)
	}
	defer rows.Close()

	var result []models.ClientPayment
	for rows.Next() {
		var row models.ClientPayment
		if err := rows.Scan(&row.ClientID, &row.FirstName, &row.LastName, &row.TotalPaid); err != nil {
			return nil, fmt.Errorf("best clients: scan: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (p *Store) ContractsForParty(ctx context.Context, partyID int64) ([]models.Contract, error) {
	const query = `SELECT id, terms, status, client_id, contractor_id
	FROM contracts
	WHERE status = 'active' AND (client_id = $1 OR contractor_id = $1)
	ORDER BY id`

	rows, err := p.db.QueryContext(ctx, query, partyID)
	if err != nil {
		return nil, fmt.Errorf("contracts for party %d: %w", partyID, err)
	}
	defer rows.Close()

	var result []models.Contract
	for rows.Next() {
		var c models.Contract
		if err := rows.Scan(&c.ID, &c.Terms, &c.Status, &c.ClientID, &c.ContractorID); err != nil {
			return nil, fmt.Errorf("contracts for party %d: scan: %w", partyID, err)
		}
		result = append(result, c)
	}
	return result, rows.Err()
}

func (p *Store) ContractByID(ctx context.Context, contractID, partyID int64) (models.Contract, error) {
	const query = `SELECT id, terms, status, client_id, contractor_id
	FROM contracts
	WHERE id = $1 AND (client_id = $2 OR contractor_id = $2)`

	var c models.Contract
	err := p.db.QueryRowContext(ctx, query, contractID, partyID).Scan(
		&c.ID, &c.Terms, &c.Status, &c.ClientID, &c.ContractorID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Contract{}, models.ErrNoResults
	}
	if err != nil {
		return models.Contract{}, fmt.Errorf("contract %d: %w", contractID, err)
	}
	return c, nil
}

func (p *Store) UnpaidJobsForParty(ctx context.Context, partyID int64) ([]models.Job, error) {
	const query = `SELECT j.id, j.contract_id, j.description, j.price, j.paid, j.payment_date
	FROM jobs j
	JOIN contracts c ON c.id = j.contract_id
	WHERE NOT j.paid AND c.status = 'active'
		AND (c.client_id = $1 OR c.contractor_id = $1)
	ORDER BY j.id`

	rows, err := p.db.QueryContext(ctx, query, partyID)
	if err != nil {
		return nil, fmt.Errorf("unpaid jobs for party %d: %w", partyID, err)
	}
	defer rows.Close()

	var result []models.Job
	for rows.Next() {
		var (
			j      models.Job
			paidAt sql.NullTime
		)
		if err := rows.Scan(&j.ID, &j.ContractID, &j.Description, &j.Price, &j.Paid, &paidAt); err != nil {
			return nil, fmt.Errorf("unpaid jobs for party %d: scan: %w", partyID, err)
		}
		if paidAt.Valid {
			t := paidAt.Time
			j.PaymentDate = &t
		}
		result = append(result, j)
	}
	return result, rows.Err()
}

// Compile-time checks: Store implements both store interfaces.
var (
	_ interfaces.BillingStore   = (*Store)(nil)
	_ interfaces.ReportingStore = (*Store)(nil)
)
