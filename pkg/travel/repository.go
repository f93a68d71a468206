package travel

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

var ErrTravelNotFound = errors.New("travel not found")

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

type Repo interface {
	// Create inserts the whole travel aggregate and returns the new ID.
	Create(ctx context.Context, travel Travel) (int, error)
	// Get loads the full aggregate: records, catering days and history references.
	Get(ctx context.Context, id int) (Travel, error)
	// GetAll lists travels, optionally restricted to one traveler. Historic
	// snapshots are excluded.
	GetAll(ctx context.Context, travelerId int) ([]Travel, error)
	// Update replaces the whole aggregate in a single transaction.
	Update(ctx context.Context, travel Travel) error
	Delete(ctx context.Context, id int) error
}

type RepoImpl struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *RepoImpl {
	return &RepoImpl{db: db}
}

const travelColumns = `id, uid, traveler_id, editor_id, name, reason, destination_place, inside_of_eu, state, comment,
	start_date, end_date, advance_amount, advance_currency, professional_share, claim_overnight_lump_sum, historic`

func (r *RepoImpl) Create(ctx context.Context, travel Travel) (int, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO travel (uid, traveler_id, editor_id, name, reason, destination_place, inside_of_eu, state,
				comment, start_date, end_date, advance_amount, advance_currency, professional_share,
				claim_overnight_lump_sum, historic)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16) RETURNING id`
	var id int
	err = tx.QueryRow(ctx, query,
		travel.UID,
		travel.TravelerID,
		travel.EditorID,
		travel.Name,
		travel.Reason,
		travel.DestinationPlace,
		travel.InsideOfEU,
		travel.State,
		travel.Comment,
		travel.StartDate,
		travel.EndDate,
		travel.Advance.Amount,
		travel.Advance.Currency,
		travel.ProfessionalShare,
		travel.ClaimOvernightLumpSum,
		travel.Historic,
	).Scan(&id)
	if err != nil {
		log.Errorf("failed to insert travel: %v", err)
		return 0, err
	}

	if err := insertAggregateParts(ctx, tx, id, travel); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("could not commit travel: %w", err)
	}
	return id, nil
}

func (r *RepoImpl) Update(ctx context.Context, travel Travel) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("could not begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `UPDATE travel SET editor_id = $1, name = $2, reason = $3, destination_place = $4, inside_of_eu = $5,
				state = $6, comment = $7, start_date = $8, end_date = $9, advance_amount = $10, advance_currency = $11,
				professional_share = $12, claim_overnight_lump_sum = $13, historic = $14 WHERE id = $15`
	tag, err := tx.Exec(ctx, query,
		travel.EditorID,
		travel.Name,
		travel.Reason,
		travel.DestinationPlace,
		travel.InsideOfEU,
		travel.State,
		travel.Comment,
		travel.StartDate,
		travel.EndDate,
		travel.Advance.Amount,
		travel.Advance.Currency,
		travel.ProfessionalShare,
		travel.ClaimOvernightLumpSum,
		travel.Historic,
		travel.ID,
	)
	if err != nil {
		log.Errorf("failed to update travel: %v", err)
		return err
	}
	if tag.RowsAffected() != 1 {
		return ErrTravelNotFound
	}

	for _, table := range []string{"travel_record", "travel_catering_day", "travel_history"} {
		if _, err := tx.Exec(ctx, `DELETE FROM `+table+` WHERE travel_id = $1`, travel.ID); err != nil {
			log.Errorf("failed to clear %s: %v", table, err)
			return err
		}
	}
	if err := insertAggregateParts(ctx, tx, travel.ID, travel); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func insertAggregateParts(ctx context.Context, tx pgx.Tx, travelId int, travel Travel) error {
	recordQuery := `INSERT INTO travel_record (travel_id, position, type, start_date, end_date, start_location,
					end_location, location, distance, transport, purpose, cost_amount, cost_currency, cost_date,
					receipts, exchange_date, exchange_rate, exchange_amount)
					VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	for i, record := range travel.Records {
		var exchangeDate, exchangeRate, exchangeAmount interface{}
		if record.Cost.ExchangeRate != nil {
			exchangeDate = record.Cost.ExchangeRate.Date
			exchangeRate = record.Cost.ExchangeRate.Rate
			exchangeAmount = record.Cost.ExchangeRate.Amount
		}
		_, err := tx.Exec(ctx, recordQuery,
			travelId,
			i,
			record.Type,
			record.StartDate,
			record.EndDate,
			record.StartLocation,
			record.EndLocation,
			record.Location,
			record.Distance,
			record.Transport,
			record.Purpose,
			record.Cost.Amount,
			record.Cost.Currency,
			record.Cost.Date,
			receiptsToInt32(record.Cost.Receipts),
			exchangeDate,
			exchangeRate,
			exchangeAmount,
		)
		if err != nil {
			log.Errorf("failed to insert travel record: %v", err)
			return err
		}
	}

	dayQuery := `INSERT INTO travel_catering_day (travel_id, date, breakfast, lunch, dinner) VALUES ($1, $2, $3, $4, $5)`
	for _, d := range travel.CateringNoRefund {
		if _, err := tx.Exec(ctx, dayQuery, travelId, d.Date, d.Breakfast, d.Lunch, d.Dinner); err != nil {
			log.Errorf("failed to insert catering day: %v", err)
			return err
		}
	}

	historyQuery := `INSERT INTO travel_history (travel_id, historic_travel_id, position) VALUES ($1, $2, $3)`
	for i, historicId := range travel.History {
		if _, err := tx.Exec(ctx, historyQuery, travelId, historicId, i); err != nil {
			log.Errorf("failed to insert history reference: %v", err)
			return err
		}
	}
	return nil
}

func (r *RepoImpl) Get(ctx context.Context, id int) (Travel, error) {
	query := `SELECT ` + travelColumns + ` FROM travel WHERE id = $1`
	travel, err := scanTravel(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return Travel{}, err
	}

	if travel.Records, err = r.getRecords(ctx, id); err != nil {
		return Travel{}, err
	}
	if travel.CateringNoRefund, err = r.getCateringDays(ctx, id); err != nil {
		return Travel{}, err
	}
	if travel.History, err = r.getHistory(ctx, id); err != nil {
		return Travel{}, err
	}
	return travel, nil
}

func (r *RepoImpl) GetAll(ctx context.Context, travelerId int) ([]Travel, error) {
	query := `SELECT ` + travelColumns + ` FROM travel WHERE historic = FALSE`
	args := []interface{}{}
	if travelerId != 0 {
		query += ` AND traveler_id = $1`
		args = append(args, travelerId)
	}
	query += ` ORDER BY start_date DESC`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		log.Errorf("failed to query travels: %v", err)
		return nil, err
	}
	defer rows.Close()

	var travels []Travel
	for rows.Next() {
		travel, err := scanTravel(rows)
		if err != nil {
			return nil, err
		}
		travels = append(travels, travel)
	}
	return travels, rows.Err()
}

func (r *RepoImpl) Delete(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM travel WHERE id = $1`, id)
	if err != nil {
		log.Errorf("failed to delete travel: %v", err)
		return err
	}
	if tag.RowsAffected() != 1 {
		return ErrTravelNotFound
	}
	return nil
}

func scanTravel(row pgx.Row) (Travel, error) {
	var travel Travel
	err := row.Scan(
		&travel.ID,
		&travel.UID,
		&travel.TravelerID,
		&travel.EditorID,
		&travel.Name,
		&travel.Reason,
		&travel.DestinationPlace,
		&travel.InsideOfEU,
		&travel.State,
		&travel.Comment,
		&travel.StartDate,
		&travel.EndDate,
		&travel.Advance.Amount,
		&travel.Advance.Currency,
		&travel.ProfessionalShare,
		&travel.ClaimOvernightLumpSum,
		&travel.Historic,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Travel{}, ErrTravelNotFound
	} else if err != nil {
		log.Errorf("failed to scan travel: %v", err)
		return Travel{}, err
	}
	return travel, nil
}

func (r *RepoImpl) getRecords(ctx context.Context, travelId int) ([]Record, error) {
	query := `SELECT id, type, start_date, end_date, start_location, end_location, location, distance, transport,
				purpose, cost_amount, cost_currency, cost_date, receipts, exchange_date, exchange_rate, exchange_amount
				FROM travel_record WHERE travel_id = $1 ORDER BY position`
	rows, err := r.db.Query(ctx, query, travelId)
	if err != nil {
		log.Errorf("failed to query travel records: %v", err)
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var record Record
		var receipts []int32
		var conversion partialConversion
		if err := rows.Scan(
			&record.ID,
			&record.Type,
			&record.StartDate,
			&record.EndDate,
			&record.StartLocation,
			&record.EndLocation,
			&record.Location,
			&record.Distance,
			&record.Transport,
			&record.Purpose,
			&record.Cost.Amount,
			&record.Cost.Currency,
			&record.Cost.Date,
			&receipts,
			&conversion.date,
			&conversion.rate,
			&conversion.amount,
		); err != nil {
			log.Errorf("failed to scan travel record: %v", err)
			return nil, err
		}
		record.Cost.Receipts = receiptsToInt(receipts)
		record.Cost.ExchangeRate = conversion.toConversion()
		records = append(records, record)
	}
	return records, rows.Err()
}

func (r *RepoImpl) getCateringDays(ctx context.Context, travelId int) ([]CateringDay, error) {
	query := `SELECT date, breakfast, lunch, dinner FROM travel_catering_day WHERE travel_id = $1 ORDER BY date`
	rows, err := r.db.Query(ctx, query, travelId)
	if err != nil {
		log.Errorf("failed to query catering days: %v", err)
		return nil, err
	}
	defer rows.Close()

	var days []CateringDay
	for rows.Next() {
		var d CateringDay
		if err := rows.Scan(&d.Date, &d.Breakfast, &d.Lunch, &d.Dinner); err != nil {
			log.Errorf("failed to scan catering day: %v", err)
			return nil, err
		}
		days = append(days, d)
	}
	return days, rows.Err()
}

func (r *RepoImpl) getHistory(ctx context.Context, travelId int) ([]int, error) {
	query := `SELECT historic_travel_id FROM travel_history WHERE travel_id = $1 ORDER BY position`
	rows, err := r.db.Query(ctx, query, travelId)
	if err != nil {
		log.Errorf("failed to query travel history: %v", err)
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
