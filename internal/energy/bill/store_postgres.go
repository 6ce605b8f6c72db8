package bill

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fercen/fercen/internal/platform/dberr"
)

// PostgresRepository implements Repository using pgx. Consumption blocks and
// line items are stored as JSONB and round-tripped through pgx's JSON codec.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const billColumns = `
	id, year, month, peak_consumption, offpeak_consumption,
	total_price, items, created_at, updated_at`

func (repository *PostgresRepository) Create(ctx context.Context, record *Bill) error {
	const query = `
		INSERT INTO electricity_bills (
			id, year, month, peak_consumption, offpeak_consumption,
			total_price, items, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := repository.pool.Exec(ctx, query,
		record.ID, record.Year, record.Month,
		record.PeakConsumption, record.OffpeakConsumption,
		record.TotalPrice, record.Items,
		record.CreatedAt, record.UpdatedAt,
	)
	return dberr.Wrap(err, "STORE:ELECTRICITY:CREATE")
}

func (repository *PostgresRepository) List(ctx context.Context) ([]*Bill, error) {
	const query = `
		SELECT ` + billColumns + `
		FROM electricity_bills
		ORDER BY year DESC, month DESC`

	rows, err := repository.pool.Query(ctx, query)
	if err != nil {
		return nil, dberr.Wrap(err, "STORE:ELECTRICITY:LIST")
	}
	defer rows.Close()

	bills := make([]*Bill, 0)
	for rows.Next() {
		record := &Bill{}
		if err := rows.Scan(
			&record.ID, &record.Year, &record.Month,
			&record.PeakConsumption, &record.OffpeakConsumption,
			&record.TotalPrice, &record.Items,
			&record.CreatedAt, &record.UpdatedAt,
		); err != nil {
			return nil, dberr.Wrap(err, "STORE:ELECTRICITY:LIST:SCAN")
		}
		bills = append(bills, record)
	}

	return bills, dberr.Wrap(rows.Err(), "STORE:ELECTRICITY:LIST:ROWS")
}

func (repository *PostgresRepository) GetByID(ctx context.Context, id string) (*Bill, error) {
	const query = `SELECT ` + billColumns + ` FROM electricity_bills WHERE id = $1`
	return repository.scanOne(ctx, query, "STORE:ELECTRICITY:GET_BY_ID", id)
}

func (repository *PostgresRepository) GetByYearMonth(ctx context.Context, year, month int) (*Bill, error) {
	const query = `SELECT ` + billColumns + ` FROM electricity_bills WHERE year = $1 AND month = $2`

	record := &Bill{}
	err := repository.pool.QueryRow(ctx, query, year, month).Scan(
		&record.ID, &record.Year, &record.Month,
		&record.PeakConsumption, &record.OffpeakConsumption,
		&record.TotalPrice, &record.Items,
		&record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "STORE:ELECTRICITY:GET_BY_PERIOD")
	}
	return record, nil
}

func (repository *PostgresRepository) Update(ctx context.Context, record *Bill) error {
	const query = `
		UPDATE electricity_bills
		SET year = $2, month = $3, peak_consumption = $4, offpeak_consumption = $5,
		    total_price = $6, items = $7, updated_at = $8
		WHERE id = $1`

	_, err := repository.pool.Exec(ctx, query,
		record.ID, record.Year, record.Month,
		record.PeakConsumption, record.OffpeakConsumption,
		record.TotalPrice, record.Items, record.UpdatedAt,
	)
	return dberr.Wrap(err, "STORE:ELECTRICITY:UPDATE")
}

func (repository *PostgresRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM electricity_bills WHERE id = $1`

	_, err := repository.pool.Exec(ctx, query, id)
	return dberr.Wrap(err, "STORE:ELECTRICITY:DELETE")
}

func (repository *PostgresRepository) scanOne(ctx context.Context, query, locationCode string, argument any) (*Bill, error) {
	record := &Bill{}
	err := repository.pool.QueryRow(ctx, query, argument).Scan(
		&record.ID, &record.Year, &record.Month,
		&record.PeakConsumption, &record.OffpeakConsumption,
		&record.TotalPrice, &record.Items,
		&record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return nil, dberr.Wrap(err, locationCode)
	}
	return record, nil
}
