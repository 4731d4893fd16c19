// Package storage persists the scheduling engine's entities in SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Chinweike99/expense-tracker-backend/internal/core"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Timestamps are stored as unix nanoseconds so period boundaries keep their
// millisecond precision. Zero maps to the zero time in both directions.
func toNanos(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromNanos(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

func joinTags(tags []string) string {
	return strings.Join(tags, ",")
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// CreateTemplate stores a recurring template and returns its ID.
func (r *SQLiteRepository) CreateTemplate(ctx context.Context, t core.RecurringTemplate) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO recurring_templates
			(user_id, account_id, category_id, description, amount_cents, type,
			 tags, notes, frequency, next_occurrence, series_id, is_recurring)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.UserID, t.AccountID, t.CategoryID, t.Description, t.Amount.Cents, string(t.Type),
		joinTags(t.Tags), t.Notes, string(t.Frequency), toNanos(t.NextOccurrence), t.SeriesID, t.IsRecurring)
	if err != nil {
		return 0, fmt.Errorf("create template: %w", err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepository) FindDueTemplates(ctx context.Context, asOf time.Time) ([]core.RecurringTemplate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, account_id, category_id, description, amount_cents, type,
		       tags, notes, frequency, next_occurrence, series_id, is_recurring
		FROM recurring_templates
		WHERE is_recurring = 1 AND next_occurrence > 0 AND next_occurrence <= ?
		ORDER BY next_occurrence, id`,
		toNanos(asOf))
	if err != nil {
		return nil, fmt.Errorf("find due templates: %w", err)
	}
	defer rows.Close()

	var out []core.RecurringTemplate
	for rows.Next() {
		var t core.RecurringTemplate
		var typ, tags, freq string
		var next int64
		if err := rows.Scan(&t.ID, &t.UserID, &t.AccountID, &t.CategoryID, &t.Description,
			&t.Amount.Cents, &typ, &tags, &t.Notes, &freq, &next, &t.SeriesID, &t.IsRecurring); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		t.Type = core.TransactionType(typ)
		t.Tags = splitTags(tags)
		t.Frequency = core.Frequency(freq)
		t.NextOccurrence = fromNanos(next)
		out = append(out, t)
	}
	return out, rows.Err()
}

// AdvanceNextOccurrence is a conditional update: it only moves the pointer
// when the stored value still matches from, so two workers racing on the
// same template cannot both materialize the instance.
func (r *SQLiteRepository) AdvanceNextOccurrence(ctx context.Context, templateID int64, from, to time.Time) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE recurring_templates
		SET next_occurrence = ?
		WHERE id = ? AND next_occurrence = ?`,
		toNanos(to), templateID, toNanos(from))
	if err != nil {
		return fmt.Errorf("advance next occurrence: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("advance next occurrence: %w", err)
	}
	if affected == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx,
			`SELECT EXISTS(SELECT 1 FROM recurring_templates WHERE id = ?)`,
			templateID).Scan(&exists); err != nil {
			return fmt.Errorf("check template %d: %w", templateID, err)
		}
		if !exists {
			return core.ErrNotFound
		}
		return core.ErrStaleOccurrence
	}
	return nil
}

func (r *SQLiteRepository) AppendTransaction(ctx context.Context, tx core.Transaction) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions
			(user_id, account_id, category_id, description, amount_cents, type,
			 date, tags, notes, series_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tx.UserID, tx.AccountID, tx.CategoryID, tx.Description, tx.Amount.Cents, string(tx.Type),
		toNanos(tx.Date), joinTags(tx.Tags), tx.Notes, tx.SeriesID)
	if err != nil {
		return 0, fmt.Errorf("append transaction: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("append transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", id,
		"description", tx.Description,
		"amount_cents", tx.Amount.Cents,
		"series_id", tx.SeriesID)

	return id, nil
}

func (r *SQLiteRepository) ClearSeries(ctx context.Context, seriesID int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE recurring_templates
		SET next_occurrence = 0, is_recurring = 0
		WHERE series_id = ? OR (series_id = 0 AND id = ?)`,
		seriesID, seriesID)
	if err != nil {
		return fmt.Errorf("clear series %d: %w", seriesID, err)
	}
	return nil
}

func (r *SQLiteRepository) SetSeriesFrequency(ctx context.Context, seriesID int64, f core.Frequency) error {
	if err := f.Validate(); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE recurring_templates
		SET frequency = ?
		WHERE series_id = ? OR (series_id = 0 AND id = ?)`,
		string(f), seriesID, seriesID)
	if err != nil {
		return fmt.Errorf("set series %d frequency: %w", seriesID, err)
	}
	return nil
}

const budgetColumns = `id, user_id, name, amount_cents, period, start_date, end_date,
	category_id, is_recurring, rollover_type, rollover_max_cents,
	notify_enabled, notify_threshold, predecessor_id`

func scanBudget(row interface{ Scan(...any) error }) (core.Budget, error) {
	var b core.Budget
	var period, rolloverType string
	var start, end int64
	err := row.Scan(&b.ID, &b.UserID, &b.Name, &b.Amount.Cents, &period, &start, &end,
		&b.CategoryID, &b.IsRecurring, &rolloverType, &b.Rollover.MaxAmount.Cents,
		&b.Notifications.Enabled, &b.Notifications.Threshold, &b.PredecessorID)
	if err != nil {
		return core.Budget{}, err
	}
	b.Period = core.PeriodKind(period)
	b.Rollover.Type = core.RolloverType(rolloverType)
	b.StartDate = fromNanos(start)
	b.EndDate = fromNanos(end)
	return b, nil
}

func (r *SQLiteRepository) CreateBudget(ctx context.Context, b core.Budget) (int64, error) {
	if err := b.Validate(); err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO budgets
			(user_id, name, amount_cents, period, start_date, end_date, category_id,
			 is_recurring, rollover_type, rollover_max_cents,
			 notify_enabled, notify_threshold, predecessor_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.UserID, b.Name, b.Amount.Cents, string(b.Period), toNanos(b.StartDate), toNanos(b.EndDate),
		b.CategoryID, b.IsRecurring, string(b.Rollover.Type), b.Rollover.MaxAmount.Cents,
		b.Notifications.Enabled, b.Notifications.Threshold, b.PredecessorID)
	if err != nil {
		return 0, fmt.Errorf("create budget: %w", err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepository) FindDueBudgets(ctx context.Context, asOf time.Time) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+budgetColumns+`
		FROM budgets
		WHERE is_recurring = 1 AND (end_date = 0 OR end_date <= ?)
		ORDER BY id`,
		toNanos(asOf))
	if err != nil {
		return nil, fmt.Errorf("find due budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// PeriodSpend sums expense transactions for the budget's category within its
// period bounds. Uncategorized budgets (category zero) track all of the
// owner's expenses; open-ended budgets have no upper bound.
func (r *SQLiteRepository) PeriodSpend(ctx context.Context, budgetID int64) (core.Money, error) {
	b, err := r.budget(ctx, budgetID)
	if err != nil {
		return core.Money{}, err
	}

	query := `SELECT COALESCE(SUM(amount_cents), 0) FROM transactions
		WHERE user_id = ? AND type = 'expense' AND date >= ?`
	args := []any{b.UserID, toNanos(b.StartDate)}
	if !b.EndDate.IsZero() {
		query += ` AND date <= ?`
		args = append(args, toNanos(b.EndDate))
	}
	if b.CategoryID != 0 {
		query += ` AND category_id = ?`
		args = append(args, b.CategoryID)
	}

	var cents int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&cents); err != nil {
		return core.Money{}, fmt.Errorf("period spend for budget %d: %w", budgetID, err)
	}
	return core.NewMoney(cents), nil
}

func (r *SQLiteRepository) budget(ctx context.Context, id int64) (core.Budget, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE id = ?`, id)
	b, err := scanBudget(row)
	if err == sql.ErrNoRows {
		return core.Budget{}, core.ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget %d: %w", id, err)
	}
	return b, nil
}

func (r *SQLiteRepository) SetRecurring(ctx context.Context, budgetID int64, recurring bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE budgets SET is_recurring = ? WHERE id = ?`,
		recurring, budgetID)
	if err != nil {
		return fmt.Errorf("set budget %d recurring: %w", budgetID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set budget %d recurring: %w", budgetID, err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) SuccessorExists(ctx context.Context, budgetID int64, startDate time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM budgets WHERE predecessor_id = ? AND start_date = ?)`,
		budgetID, toNanos(startDate)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check successor of budget %d: %w", budgetID, err)
	}
	return exists, nil
}

func (r *SQLiteRepository) ListNotifying(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+budgetColumns+` FROM budgets WHERE notify_enabled = 1 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list notifying budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan budget: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) MonthlyCategoryTotals(ctx context.Context, userID int64, from, to time.Time) (map[int64][]core.Money, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT category_id,
		       strftime('%Y-%m', date / 1000000000, 'unixepoch') AS month,
		       SUM(amount_cents)
		FROM transactions
		WHERE user_id = ? AND type = 'expense' AND date >= ? AND date < ?
		GROUP BY category_id, month
		ORDER BY category_id, month`,
		userID, toNanos(from), toNanos(to))
	if err != nil {
		return nil, fmt.Errorf("monthly category totals: %w", err)
	}
	defer rows.Close()

	type series struct {
		byMonth     map[string]int64
		first, last time.Time
	}
	perCategory := make(map[int64]*series)
	for rows.Next() {
		var categoryID, cents int64
		var month string
		if err := rows.Scan(&categoryID, &month, &cents); err != nil {
			return nil, fmt.Errorf("scan monthly total: %w", err)
		}
		m, err := time.Parse("2006-01", month)
		if err != nil {
			return nil, fmt.Errorf("parse month %q: %w", month, err)
		}
		s := perCategory[categoryID]
		if s == nil {
			s = &series{byMonth: make(map[string]int64), first: m}
			perCategory[categoryID] = s
		}
		s.byMonth[month] = cents
		s.last = m
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// Months with no expenses produce no row, so walk the calendar between
	// the first and last observed month and fill the gaps with zero totals.
	// That keeps slice indices mapping to consecutive months, which the
	// trend fit depends on.
	totals := make(map[int64][]core.Money, len(perCategory))
	for categoryID, s := range perCategory {
		var months []core.Money
		for m := s.first; !m.After(s.last); m = m.AddDate(0, 1, 0) {
			months = append(months, core.NewMoney(s.byMonth[m.Format("2006-01")]))
		}
		totals[categoryID] = months
	}
	return totals, nil
}

const debtColumns = `id, user_id, account_id, name, lender, initial_cents, current_cents,
	interest_rate, payment_frequency, payment_cents, start_date, end_date, is_paid, notes`

func scanDebt(row interface{ Scan(...any) error }) (core.Debt, error) {
	var d core.Debt
	var freq string
	var start, end int64
	err := row.Scan(&d.ID, &d.UserID, &d.AccountID, &d.Name, &d.Lender,
		&d.InitialAmount.Cents, &d.CurrentAmount.Cents, &d.InterestRate,
		&freq, &d.PaymentAmount.Cents, &start, &end, &d.IsPaid, &d.Notes)
	if err != nil {
		return core.Debt{}, err
	}
	d.PaymentFrequency = core.PaymentFrequency(freq)
	d.StartDate = fromNanos(start)
	d.EndDate = fromNanos(end)
	return d, nil
}

// CreateDebt stores a debt and returns its ID.
func (r *SQLiteRepository) CreateDebt(ctx context.Context, d core.Debt) (int64, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO debts
			(user_id, account_id, name, lender, initial_cents, current_cents,
			 interest_rate, payment_frequency, payment_cents, start_date, end_date, is_paid, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.UserID, d.AccountID, d.Name, d.Lender, d.InitialAmount.Cents, d.CurrentAmount.Cents,
		d.InterestRate, string(d.PaymentFrequency), d.PaymentAmount.Cents,
		toNanos(d.StartDate), toNanos(d.EndDate), d.IsPaid, d.Notes)
	if err != nil {
		return 0, fmt.Errorf("create debt: %w", err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepository) Debt(ctx context.Context, id int64) (core.Debt, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+debtColumns+` FROM debts WHERE id = ?`, id)
	d, err := scanDebt(row)
	if err == sql.ErrNoRows {
		return core.Debt{}, core.ErrNotFound
	}
	if err != nil {
		return core.Debt{}, fmt.Errorf("get debt %d: %w", id, err)
	}
	return d, nil
}

func (r *SQLiteRepository) SaveDebt(ctx context.Context, d core.Debt) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE debts
		SET current_cents = ?, interest_rate = ?, payment_frequency = ?, payment_cents = ?,
		    end_date = ?, is_paid = ?, notes = ?
		WHERE id = ?`,
		d.CurrentAmount.Cents, d.InterestRate, string(d.PaymentFrequency), d.PaymentAmount.Cents,
		toNanos(d.EndDate), d.IsPaid, d.Notes, d.ID)
	if err != nil {
		return fmt.Errorf("save debt %d: %w", d.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save debt %d: %w", d.ID, err)
	}
	if affected == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) FindUnpaidDebts(ctx context.Context) ([]core.Debt, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+debtColumns+` FROM debts WHERE is_paid = 0 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("find unpaid debts: %w", err)
	}
	defer rows.Close()

	var out []core.Debt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan debt: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
