package postgres

// Migrations returns the schema statements in dependency order. Each
// string is a single statement.
func Migrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS parties (
			id          BIGSERIAL PRIMARY KEY,
			first_name  TEXT NOT NULL,
			last_name   TEXT NOT NULL,
			profession  TEXT NOT NULL,
			balance     NUMERIC(12,2) NOT NULL DEFAULT 0 CHECK (balance >= 0),
			role        TEXT NOT NULL CHECK (role IN ('client', 'contractor'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_parties_role ON parties(role)`,

		`CREATE TABLE IF NOT EXISTS contracts (
			id            BIGSERIAL PRIMARY KEY,
			terms         TEXT NOT NULL,
			status        TEXT NOT NULL CHECK (status IN ('new', 'active', 'terminated')),
			client_id     BIGINT NOT NULL REFERENCES parties(id),
			contractor_id BIGINT NOT NULL REFERENCES parties(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_contracts_status ON contracts(status)`,
		`CREATE INDEX IF NOT EXISTS idx_contracts_client ON contracts(client_id)`,
		`CREATE INDEX IF NOT EXISTS idx_contracts_contractor ON contracts(contractor_id)`,

		`CREATE TABLE IF NOT EXISTS jobs (
			id           BIGSERIAL PRIMARY KEY,
			contract_id  BIGINT NOT NULL REFERENCES contracts(id),
			description  TEXT NOT NULL,
			price        NUMERIC(12,2) NOT NULL CHECK (price > 0),
			paid         BOOLEAN NOT NULL DEFAULT FALSE,
			payment_date TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_paid ON jobs(paid)`,
		`CREATE INDEX IF NOT EXISTS idx_jobs_payment_date ON jobs(payment_date)`,
	}
}
