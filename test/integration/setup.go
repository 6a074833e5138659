package integration

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// SetupTestDB creates a PostgreSQL test container and connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	// Create PostgreSQL container
	postgresContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	// Get connection string
	connStr, err := postgresContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	// Create connection pool
	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		t.Fatalf("failed to parse connection string: %v", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	// Create schema
	createSchema(t, pool)

	t.Cleanup(func() {
		pool.Close()
		if err := postgresContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: postgresContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// createSchema creates the database schema for testing.
func createSchema(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	schema := `
		CREATE TABLE IF NOT EXISTS seller_levels (
			name TEXT PRIMARY KEY,
			xp_required BIGINT NOT NULL,
			next_level TEXT REFERENCES seller_levels(name)
		);

		CREATE TABLE IF NOT EXISTS sellers (
			id UUID PRIMARY KEY,
			seller_xp BIGINT NOT NULL DEFAULT 0,
			seller_level TEXT NOT NULL REFERENCES seller_levels(name)
		);

		CREATE TABLE IF NOT EXISTS orders (
			id UUID PRIMARY KEY,
			client_id UUID NOT NULL,
			seller_id UUID NOT NULL,
			package_id UUID NOT NULL,
			sub_total DECIMAL(10, 2) NOT NULL,
			total DECIMAL(10, 2) NOT NULL,
			status VARCHAR(20) NOT NULL,
			delivery_end_date TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS completion_requests (
			id UUID PRIMARY KEY,
			order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
			initiator_role VARCHAR(20) NOT NULL,
			status VARCHAR(20) NOT NULL,
			expires TIMESTAMPTZ NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_completion_requests_one_pending
			ON completion_requests(order_id) WHERE status = 'PENDING';

		CREATE TABLE IF NOT EXISTS reviews (
			id UUID PRIMARY KEY,
			post_id UUID NOT NULL,
			seller_id UUID NOT NULL,
			reviewer_id UUID NOT NULL,
			rating DOUBLE PRECISION NOT NULL,
			service_as_described DOUBLE PRECISION NOT NULL,
			seller_communication DOUBLE PRECISION NOT NULL,
			service_delivery DOUBLE PRECISION NOT NULL,
			body TEXT NOT NULL DEFAULT '',
			is_old_review BOOLEAN NOT NULL DEFAULT FALSE,
			found_helpful_count INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_reviews_pair ON reviews(post_id, seller_id) WHERE is_old_review = FALSE;

		CREATE TABLE IF NOT EXISTS review_helpful_votes (
			review_id UUID NOT NULL REFERENCES reviews(id) ON DELETE CASCADE,
			user_id UUID NOT NULL,
			PRIMARY KEY (review_id, user_id)
		);

		CREATE TABLE IF NOT EXISTS notifications (
			id UUID PRIMARY KEY,
			recipient_id UUID NOT NULL,
			title TEXT NOT NULL,
			text TEXT NOT NULL,
			navigate_to TEXT NOT NULL,
			xp BIGINT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_notifications_recipient ON notifications(recipient_id, created_at DESC);
	`

	_, err := pool.Exec(ctx, schema)
	if err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}
}

// SeedLadder inserts the default four-tier ladder.
func SeedLadder(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tiers := []struct {
		name       string
		xpRequired int64
		next       *string
	}{
		{"Newbie", 250, strPtr("Amateur")},
		{"Amateur", 500, strPtr("Highly Rated")},
		{"Highly Rated", 1000, strPtr("Guru")},
		{"Guru", 0, nil},
	}

	for _, tier := range tiers {
		_, err := pool.Exec(ctx,
			"INSERT INTO seller_levels (name, xp_required, next_level) VALUES ($1, $2, NULL) ON CONFLICT (name) DO NOTHING",
			tier.name, tier.xpRequired,
		)
		if err != nil {
			t.Fatalf("failed to seed level %s: %v", tier.name, err)
		}
	}
	for _, tier := range tiers {
		_, err := pool.Exec(ctx,
			"UPDATE seller_levels SET next_level = $1 WHERE name = $2",
			tier.next, tier.name,
		)
		if err != nil {
			t.Fatalf("failed to link level %s: %v", tier.name, err)
		}
	}
}

// SeedSeller inserts a seller row and returns its ID.
func SeedSeller(t *testing.T, pool *pgxpool.Pool, xp int64, level string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		"INSERT INTO sellers (id, seller_xp, seller_level) VALUES ($1, $2, $3)",
		id, xp, level,
	)
	if err != nil {
		t.Fatalf("failed to seed seller: %v", err)
	}
	return id
}

// SeedOrder inserts an order row between the given client and seller.
func SeedOrder(t *testing.T, pool *pgxpool.Pool, clientID, sellerID uuid.UUID, status string) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO orders (id, client_id, seller_id, package_id, sub_total, total, status, delivery_end_date, created_at)
		 VALUES ($1, $2, $3, $4, 100.00, 105.00, $5, $6, $7)`,
		id, clientID, sellerID, uuid.New(), status, time.Now().Add(7*24*time.Hour), time.Now(),
	)
	if err != nil {
		t.Fatalf("failed to seed order: %v", err)
	}
	return id
}

// CleanupDB cleans all data from test tables.
func CleanupDB(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()

	ctx := context.Background()

	tables := []string{"review_helpful_votes", "reviews", "notifications", "completion_requests", "orders", "sellers", "seller_levels"}
	for _, table := range tables {
		_, err := pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s", table))
		if err != nil {
			t.Logf("failed to clean table %s: %v", table, err)
		}
	}
}

// NewTestLogger returns a silent logger for test wiring.
func NewTestLogger() zerolog.Logger {
	return zerolog.Nop()
}

func strPtr(s string) *string { return &s }
