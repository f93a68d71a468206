package expensereport

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/reisegeld/reisegeld/pkg/exchangerate"
	log "github.com/sirupsen/logrus"
)

var ErrReportNotFound = errors.New("expense report not found")

type Repo interface {
	// Create inserts the whole report aggregate and returns the new ID.
	Create(ctx context.Context, report ExpenseReport) (int, error)
	Get(ctx context.Context, id int) (ExpenseReport, error)
	// GetAll lists reports, optionally restricted to one owner. Historic
	// snapshots are excluded.
	GetAll(ctx context.Context, ownerId int) ([]ExpenseReport, error)
	// Update replaces the whole aggregate in a single transaction.
	Update(ctx context.Context, report ExpenseReport) error
	Delete(ctx context.Context, id int) error
}

type RepoImpl struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *RepoImpl {
	return &RepoImpl{db: db}
}

const reportColumns = `id, uid, owner_id, editor_id, name, comment, state, historic`

func (r *RepoImpl) Create(ctx context.Context, report ExpenseReport) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO expense_report (uid, owner_id, editor_id, name, comment, state, historic)
				VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	var id int
	err = tx.QueryRow(ctx, query,
		report.UID,
		report.OwnerID,
		report.EditorID,
		report.Name,
		report.Comment,
		report.State,
		report.Historic,
	).Scan(&id)
	if err != nil {
		log.Errorf("failed to insert expense report: %v", err)
		return 0, err
	}

	if err := insertAggregateParts(ctx, tx, id, report); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("could not commit expense report: %w", err)
	}
	return id, nil
}

func (r *RepoImpl) Update(ctx context.Context, report ExpenseReport) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `UPDATE expense_report SET editor_id = $1, name = $2, comment = $3, state = $4, historic = $5
				WHERE id = $6`
	tag, err := tx.Exec(ctx, query,
		report.EditorID,
		report.Name,
		report.Comment,
		report.State,
		report.Historic,
		report.ID,
	)
	if err != nil {
		log.Errorf("failed to update expense report: %v", err)
		return err
	}
	if tag.RowsAffected() != 1 {
		return ErrReportNotFound
	}

	for _, table := range []string{"expense_report_expense", "expense_report_history"} {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE report_id = $1`, report.ID); err != nil {
			log.Errorf("failed to clear %s: %v", table, err)
			return err
		}
	}
	if err := insertAggregateParts(ctx, tx, report.ID, report); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func insertAggregateParts(ctx context.Context, tx pgx.Tx, reportId int, report ExpenseReport) error {
	expenseQuery := `INSERT INTO expense_report_expense (report_id, position, description, cost_amount, cost_currency,
					cost_date, receipts, exchange_date, exchange_rate, exchange_amount)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	for i, expense := range report.Expenses {
		var exchangeDate, exchangeRate, exchangeAmount interface{}
		if expense.Cost.ExchangeRate != nil {
			exchangeDate = expense.Cost.ExchangeRate.Date
			exchangeRate = expense.Cost.ExchangeRate.Rate
			exchangeAmount = expense.Cost.ExchangeRate.Amount
		}
		_, err := tx.Exec(ctx, expenseQuery,
			reportId,
			i,
			expense.Description,
			expense.Cost.Amount,
			expense.Cost.Currency,
			expense.Cost.Date,
			receiptsToInt32(expense.Cost.Receipts),
			exchangeDate,
			exchangeRate,
			exchangeAmount,
		)
		if err != nil {
			log.Errorf("failed to insert expense: %v", err)
			return err
		}
	}

	historyQuery := `INSERT INTO expense_report_history (report_id, historic_report_id, position) VALUES ($1, $2, $3)`
	for i, historicId := range report.History {
		if _, err := tx.Exec(ctx, historyQuery, reportId, historicId, i); err != nil {
			log.Errorf("failed to insert history reference: %v", err)
			return err
		}
	}
	return nil
}

func (r *RepoImpl) Get(ctx context.Context, id int) (ExpenseReport, error) {
	query := `SELECT ` + reportColumns + ` FROM expense_report WHERE id = $1`
	report, err := scanReport(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return ExpenseReport{}, err
	}

	if report.Expenses, err = r.getExpenses(ctx, id); err != nil {
		return ExpenseReport{}, err
	}
	if report.History, err = r.getHistory(ctx, id); err != nil {
		return ExpenseReport{}, err
	}
	return report, nil
}

func (r *RepoImpl) GetAll(ctx context.Context, ownerId int) ([]ExpenseReport, error) {
	query := `SELECT ` + reportColumns + ` FROM expense_report WHERE historic = FALSE`
	args := []interface{}{}
	if ownerId != 0 {
		query += ` AND owner_id = $1`
		args = append(args, ownerId)
	}
	query += ` ORDER BY id DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		log.Errorf("failed to query expense reports: %v", err)
		return nil, err
	}
	defer rows.Close()

	var reports []ExpenseReport
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

func (r *RepoImpl) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM expense_report WHERE id = $1`, id)
	if err != nil {
		log.Errorf("failed to delete expense report: %v", err)
		return err
	}
	if tag.RowsAffected() != 1 {
		return ErrReportNotFound
	}
	return nil
}

func scanReport(row pgx.Row) (ExpenseReport, error) {
	var report ExpenseReport
	err := row.Scan(
		&report.ID,
		&report.UID,
		&report.OwnerID,
		&report.EditorID,
		&report.Name,
		&report.Comment,
		&report.State,
		&report.Historic,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return ExpenseReport{}, ErrReportNotFound
	} else if err != nil {
		log.Errorf("failed to scan expense report: %v", err)
		return ExpenseReport{}, err
	}
	return report, nil
}

// partialConversion scans the nullable exchange rate columns of a cost row.
type partialConversion struct {
	date   *time.Time
	rate   *float64
	amount *float64
}

func (p partialConversion) toConversion() *exchangerate.Conversion {
	if p.date == nil || p.rate == nil || p.amount == nil {
		return nil
	}
	return &exchangerate.Conversion{Date: *p.date, Rate: *p.rate, Amount: *p.amount}
}

func (r *RepoImpl) getExpenses(ctx context.Context, reportId int) ([]Expense, error) {
	query := `SELECT id, description, cost_amount, cost_currency, cost_date, receipts, exchange_date, exchange_rate,
				exchange_amount FROM expense_report_expense WHERE report_id = $1 ORDER BY position`
	rows, err := r.db.Query(ctx, query, reportId)
	if err != nil {
		log.Errorf("failed to query expenses: %v", err)
		return nil, err
	}
	defer rows.Close()

	var expenses []Expense
	for rows.Next() {
		var expense Expense
		var receipts []int32
		var conversion partialConversion
		if err := rows.Scan(
			&expense.ID,
			&expense.Description,
			&expense.Cost.Amount,
			&expense.Cost.Currency,
			&expense.Cost.Date,
			&receipts,
			&conversion.date,
			&conversion.rate,
			&conversion.amount,
		); err != nil {
			log.Errorf("failed to scan expense: %v", err)
			return nil, err
		}
		expense.Cost.Receipts = receiptsToInt(receipts)
		expense.Cost.ExchangeRate = conversion.toConversion()
		expenses = append(expenses, expense)
	}
	return expenses, rows.Err()
}

func (r *RepoImpl) getHistory(ctx context.Context, reportId int) ([]int, error) {
	query := `SELECT historic_report_id FROM expense_report_history WHERE report_id = $1 ORDER BY position`
	rows, err := r.db.Query(ctx, query, reportId)
	if err != nil {
		log.Errorf("failed to query report history: %v", err)
		return nil, err
	}
	defer rows.Close()

	var history []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			log.Errorf("failed to scan history reference: %v", err)
			return nil, err
		}
		history = append(history, id)
	}
	return history, rows.Err()
}

func receiptsToInt32(receipts []int) []int32 {
	out := make([]int32, len(receipts))
	for i, id := range receipts {
		out[i] = int32(id)
	}
	return out
}

func receiptsToInt(receipts []int32) []int {
	if len(receipts) == 0 {
		return nil
	}
	out := make([]int, len(receipts))
	for i, id := range receipts {
		out[i] = int(id)
	}
	return out
}
