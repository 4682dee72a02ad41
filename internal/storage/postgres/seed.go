package postgres

import (
	"context"
	"fmt"
)

// Seed truncates all tables and loads the demo dataset. It exists for
// local development only; nothing in the server calls it.
func (p *Store) Seed(ctx context.Context) (err error) {
	dbTx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed: begin: %w", err)
	}
	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	if _, err = dbTx.ExecContext(ctx,
		`TRUNCATE jobs, contracts, parties RESTART IDENTITY CASCADE`); err != nil {
		return fmt.Errorf("seed: truncate: %w", err)
	}

	parties := []struct {
		id                               int64
		firstName, lastName, profession  string
		balance                          string
		role                             string
	}{
		{1, "Harry", "Potter", "Wizard", "1150.00", "client"},
		{2, "Mr", "Robot", "Hacker", "231.11", "client"},
		{3, "John", "Snow", "Knows nothing", "451.30", "client"},
		{4, "Ash", "Kethcum", "Pokemon master", "1.30", "client"},
		{5, "John", "Lenon", "Musician", "64.00", "contractor"},
		{6, "Linus", "Torvalds", "Programmer", "1214.00", "contractor"},
		{7, "Alan", "Turing", "Programmer", "22.00", "contractor"},
		{8, "Aragorn", "II Elessar Telcontarvalds", "Fighter", "314.00", "contractor"},
	}
	for _, row := range parties {
		if _, err = dbTx.ExecContext(ctx,
			`INSERT INTO parties (id, first_name, last_name, profession, balance, role)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			row.id, row.firstName, row.lastName, row.profession, row.balance, row.role); err != nil {
			return fmt.Errorf("seed: party %d: %w", row.id, err)
		}
	}

	contracts := []struct {
		id, clientID, contractorID int64
		status                     string
	}{
		{1, 1, 5, "active"},
		{2, 1, 6, "active"},
		{3, 2, 6, "active"},
		{4, 2, 7, "active"},
		{5, 3, 8, "new"},
		{6, 3, 7, "active"},
		{7, 4, 7, "active"},
		{8, 4, 6, "active"},
		{9, 4, 8, "active"},
	}
	for _, row := range contracts {
		if _, err = dbTx.ExecContext(ctx,
			`INSERT INTO contracts (id, terms, status, client_id, contractor_id)
			VALUES ($1, 'bla bla bla', $2, $3, $4)`,
			row.id, row.status, row.clientID, row.contractorID); err != nil {
			return fmt.Errorf("seed: contract %d: %w", row.id, err)
		}
	}

	jobs := []struct {
		id, contractID int64
		price          string
		paid           bool
		paymentDate    string // RFC3339, empty when unpaid
	}{
		{1, 1, "200.00", false, ""},
		{2, 2, "201.00", false, ""},
		{3, 3, "202.00", false, ""},
		{4, 4, "200.00", false, ""},
		{5, 7, "200.00", false, ""},
		{6, 7, "2020.00", true, "2020-08-15T19:11:26.737Z"},
		{7, 2, "200.00", true, "2020-08-15T19:11:26.737Z"},
		{8, 3, "200.00", true, "2020-08-16T19:11:26.737Z"},
		{9, 1, "200.00", true, "2020-08-17T19:11:26.737Z"},
		{10, 5, "200.00", true, "2020-08-17T19:11:26.737Z"},
		{11, 1, "21.00", true, "2020-08-10T19:11:26.737Z"},
		{12, 2, "21.00", true, "2020-08-15T19:11:26.737Z"},
		{13, 3, "121.00", true, "2020-08-15T19:11:26.737Z"},
		{14, 3, "121.00", true, "2020-08-14T23:11:26.737Z"},
	}
	for _, row := range jobs {
		var paymentDate any
		if row.paymentDate != "" {
			paymentDate = row.paymentDate
		}
		if _, err = dbTx.ExecContext(ctx,
			`INSERT INTO jobs (id, contract_id, description, price, paid, payment_date)
			VALUES ($1, $2, 'work', $3, $4, $5)`,
			row.id, row.contractID, row.price, row.paid, paymentDate); err != nil {
			return fmt.Errorf("seed: job %d: %w", row.id, err)
		}
	}

	for _, table := range []string{"parties", "contracts", "jobs"} {
		if _, err = dbTx.ExecContext(ctx, fmt.Sprintf(
			`SELECT setval(pg_get_serial_sequence('%s', 'id'), (SELECT MAX(id) FROM %s))`,
			table, table)); err != nil {
			return fmt.Errorf("seed: reset %s sequence: %w", table, err)
		}
	}

	if err = dbTx.Commit(); err != nil {
		return fmt.Errorf("seed: commit: %w", err)
	}
	return nil
}
