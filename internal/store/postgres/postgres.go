// Package postgres implements the store.Store interface backed by PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/shirkaty/portal/internal/model"
	"github.com/shirkaty/portal/internal/store"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore implements store.Store backed by a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// Compile-time check that PostgresStore implements store.Store.
var _ store.Store = (*PostgresStore)(nil)

// New opens a connection to the PostgreSQL database at the given URL,
// configures the connection pool, and runs any pending migrations.
func New(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

func runMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	dbDriver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("create migration db driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "postgres", dbDriver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}

// Close closes the underlying database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Users

func (s *PostgresStore) CreateUser(ctx context.Context, user *model.User) error {
	return queryCreateUser(ctx, s.db, user)
}

func (s *PostgresStore) GetUser(ctx context.Context, id string) (*model.User, error) {
	return queryGetUser(ctx, s.db, id)
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	return queryGetUserByEmail(ctx, s.db, email)
}

func (s *PostgresStore) ListUsers(ctx context.Context, filter model.UserFilter) ([]*model.User, int, error) {
	return queryListUsers(ctx, s.db, filter)
}

func (s *PostgresStore) UpdateUser(ctx context.Context, user *model.User) error {
	return queryUpdateUser(ctx, s.db, user)
}

// Companies

func (s *PostgresStore) CreateCompany(ctx context.Context, company *model.Company) error {
	return queryCreateCompany(ctx, s.db, company)
}

func (s *PostgresStore) GetCompany(ctx context.Context, id string) (*model.Company, error) {
	return queryGetCompany(ctx, s.db, `WHERE id = $1`, id)
}

func (s *PostgresStore) GetCompanyByUser(ctx context.Context, userID string) (*model.Company, error) {
	return queryGetCompany(ctx, s.db, `WHERE user_id = $1`, userID)
}

func (s *PostgresStore) ListCompanies(ctx context.Context) ([]*model.Company, error) {
	return queryListCompanies(ctx, s.db)
}

func (s *PostgresStore) UpdateCompany(ctx context.Context, company *model.Company) error {
	return queryUpdateCompany(ctx, s.db, company)
}

func (s *PostgresStore) UpsertSubscription(ctx context.Context, sub *model.Subscription) error {
	return queryUpsertSubscription(ctx, s.db, sub)
}

// Tickets

func (s *PostgresStore) CreateTicket(ctx context.Context, ticket *model.Ticket) error {
	return queryCreateTicket(ctx, s.db, ticket)
}

func (s *PostgresStore) GetTicket(ctx context.Context, id string) (*model.Ticket, error) {
	return queryGetTicket(ctx, s.db, id)
}

func (s *PostgresStore) ListTickets(ctx context.Context, filter model.TicketFilter) ([]*model.Ticket, int, error) {
	return queryListTickets(ctx, s.db, filter)
}

func (s *PostgresStore) UpdateTicket(ctx context.Context, ticket *model.Ticket) error {
	return queryUpdateTicket(ctx, s.db, ticket)
}

func (s *PostgresStore) DeleteTicket(ctx context.Context, id string) error {
	return queryDeleteTicket(ctx, s.db, id)
}

func (s *PostgresStore) AddMessage(ctx context.Context, msg *model.Message) error {
	return queryAddMessage(ctx, s.db, msg)
}

func (s *PostgresStore) GetMessages(ctx context.Context, ticketID string) ([]*model.Message, error) {
	return queryGetMessages(ctx, s.db, ticketID)
}

// Notifications

func (s *PostgresStore) CreateNotification(ctx context.Context, n *model.Notification) error {
	return queryCreateNotification(ctx, s.db, n)
}

func (s *PostgresStore) ListNotifications(ctx context.Context, filter model.NotificationFilter) ([]*model.Notification, error) {
	return queryListNotifications(ctx, s.db, filter)
}

func (s *PostgresStore) MarkNotificationsRead(ctx context.Context, userID, id string) error {
	return queryMarkNotificationsRead(ctx, s.db, userID, id)
}

// Documents

func (s *PostgresStore) CreateDocument(ctx context.Context, doc *model.Document) error {
	return queryCreateDocument(ctx, s.db, doc)
}

func (s *PostgresStore) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	return queryGetDocument(ctx, s.db, id)
}

func (s *PostgresStore) ListDocuments(ctx context.Context, filter model.DocumentFilter) ([]*model.Document, int, error) {
	return queryListDocuments(ctx, s.db, filter)
}

func (s *PostgresStore) UpdateDocument(ctx context.Context, doc *model.Document) error {
	return queryUpdateDocument(ctx, s.db, doc)
}

// Transactions

func (s *PostgresStore) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	return queryCreateTransaction(ctx, s.db, txn)
}

func (s *PostgresStore) GetTransaction(ctx context.Context, id string) (*model.Transaction, error) {
	return queryGetTransaction(ctx, s.db, id)
}

func (s *PostgresStore) ListTransactions(ctx context.Context, filter model.TransactionFilter) ([]*model.Transaction, int, error) {
	return queryListTransactions(ctx, s.db, filter)
}

func (s *PostgresStore) UpdateTransaction(ctx context.Context, txn *model.Transaction) error {
	return queryUpdateTransaction(ctx, s.db, txn)
}

func (s *PostgresStore) AddTransactionUpdate(ctx context.Context, upd *model.TransactionUpdate) error {
	return queryAddTransactionUpdate(ctx, s.db, upd)
}

func (s *PostgresStore) GetTransactionUpdates(ctx context.Context, transactionID string) ([]*model.TransactionUpdate, error) {
	return queryGetTransactionUpdates(ctx, s.db, transactionID)
}

// Admin aggregates

func (s *PostgresStore) GetStats(ctx context.Context) (*model.Stats, error) {
	return queryGetStats(ctx, s.db)
}
