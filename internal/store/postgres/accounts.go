package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/shirkaty/portal/internal/model"
	"github.com/shirkaty/portal/internal/store"
)

// userColumns is the column list used for SELECT statements on the users table.
const userColumns = `id, email, name, role, company_name, phone, password_hash, created_at`

// companyColumns is the column list used for SELECT statements on the companies table.
const companyColumns = `id, user_id, name, number, status, incorporated_at, created_at`

func queryCreateUser(ctx context.Context, db executor, u *model.User) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, role, company_name, phone, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID,
		u.Email,
		u.Name,
		string(u.Role),
		nullString(u.CompanyName),
		nullString(u.Phone),
		u.PasswordHash,
		u.CreatedAt,
	)
	return mapError(err)
}

func queryGetUser(ctx context.Context, db executor, id string) (*model.User, error) {
	row := db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func queryGetUserByEmail(ctx context.Context, db executor, email string) (*model.User, error) {
	row := db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	return scanUser(row)
}

func queryListUsers(ctx context.Context, db executor, filter model.UserFilter) ([]*model.User, int, error) {
	var (
		whereClauses []string
		args         []any
		argIdx       int
	)

	nextArg := func() string {
		argIdx++
		return fmt.Sprintf("$%d", argIdx)
	}

	if filter.Role != "" {
		whereClauses = append(whereClauses, "u.role = "+nextArg())
		args = append(args, string(filter.Role))
	}
	if filter.Search != "" {
		arg := nextArg()
		whereClauses = append(whereClauses, "(u.email ILIKE "+arg+" OR u.name ILIKE "+arg+")")
		args = append(args, "%"+filter.Search+"%")
	}

	where := ""
	if len(whereClauses) > 0 {
		where = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users u`+where, args...).Scan(&total); err != nil {
		return nil, 0, mapError(err)
	}

	query := `
		SELECT u.id, u.email, u.name, u.role, u.company_name, u.phone, u.password_hash, u.created_at,
			(SELECT COUNT(*) FROM documents d WHERE d.user_id = u.id),
			(SELECT COUNT(*) FROM tickets t WHERE t.user_id = u.id)
		FROM users u` + where + `
		ORDER BY u.created_at DESC`

	if filter.Limit > 0 {
		query += " LIMIT " + nextArg()
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query += " OFFSET " + nextArg()
		args = append(args, filter.Offset)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError(err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		var u model.User
		var companyName, phone sql.NullString
		err := rows.Scan(
			&u.ID, &u.Email, &u.Name, &u.Role, &companyName, &phone,
			&u.PasswordHash, &u.CreatedAt,
			&u.DocumentCount, &u.TicketCount,
		)
		if err != nil {
			return nil, 0, mapError(err)
		}
		u.CompanyName = companyName.String
		u.Phone = phone.String
		users = append(users, &u)
	}
	return users, total, mapError(rows.Err())
}

func queryUpdateUser(ctx context.Context, db executor, u *model.User) error {
	res, err := db.ExecContext(ctx, `
		UPDATE users SET
			email = $2, name = $3, role = $4, company_name = $5, phone = $6,
			password_hash = $7
		WHERE id = $1`,
		u.ID,
		u.Email,
		u.Name,
		string(u.Role),
		nullString(u.CompanyName),
		nullString(u.Phone),
		u.PasswordHash,
	)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func queryCreateCompany(ctx context.Context, db executor, c *model.Company) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO companies (id, user_id, name, number, status, incorporated_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID,
		c.UserID,
		c.Name,
		nullString(c.Number),
		string(c.Status),
		nullTimePtr(c.IncorporatedAt),
		c.CreatedAt,
	)
	return mapError(err)
}

// queryGetCompany fetches one company by an arbitrary WHERE clause with a
// single argument, and attaches its subscription when one exists.
func queryGetCompany(ctx context.Context, db executor, whereClause string, arg any) (*model.Company, error) {
	row := db.QueryRowContext(ctx, `SELECT `+companyColumns+` FROM companies `+whereClause, arg)
	c, err := scanCompany(row)
	if err != nil {
		return nil, err
	}

	sub, err := queryGetSubscription(ctx, db, c.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	c.Subscription = sub

	return c, nil
}

func queryListCompanies(ctx context.Context, db executor) ([]*model.Company, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+companyColumns+` FROM companies ORDER BY created_at DESC`)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var companies []*model.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, mapError(rows.Err())
}

func queryUpdateCompany(ctx context.Context, db executor, c *model.Company) error {
	res, err := db.ExecContext(ctx, `
		UPDATE companies SET
			name = $2, number = $3, status = $4, incorporated_at = $5
		WHERE id = $1`,
		c.ID,
		c.Name,
		nullString(c.Number),
		string(c.Status),
		nullTimePtr(c.IncorporatedAt),
	)
	if err != nil {
		return mapError(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func queryGetSubscription(ctx context.Context, db executor, companyID string) (*model.Subscription, error) {
	var s model.Subscription
	err := db.QueryRowContext(ctx, `
		SELECT id, company_id, plan, price, status, started_at, renewal_date
		FROM subscriptions WHERE company_id = $1`, companyID).Scan(
		&s.ID, &s.CompanyID, &s.Plan, &s.Price, &s.Status, &s.StartedAt, &s.RenewalDate,
	)
	if err != nil {
		return nil, mapError(err)
	}
	return &s, nil
}

func queryUpsertSubscription(ctx context.Context, db executor, s *model.Subscription) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO subscriptions (id, company_id, plan, price, status, started_at, renewal_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (company_id) DO UPDATE SET
			plan = EXCLUDED.plan,
			price = EXCLUDED.price,
			status = EXCLUDED.status,
			renewal_date = EXCLUDED.renewal_date`,
		s.ID,
		s.CompanyID,
		string(s.Plan),
		s.Price,
		string(s.Status),
		s.StartedAt,
		s.RenewalDate,
	)
	return mapError(err)
}
