package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/service-booking/internal/model"
)

const bookingsSchema = `CREATE TABLE IF NOT EXISTS bookings (
	id              CHAR(6)       NOT NULL PRIMARY KEY,
	name            VARCHAR(255)  NOT NULL,
	whatsapp_number VARCHAR(64)   NOT NULL,
	email           VARCHAR(255)  NOT NULL DEFAULT '',
	service_title   VARCHAR(255)  NOT NULL,
	date            VARCHAR(64)   NOT NULL,
	addons          TEXT          NOT NULL,
	options         TEXT          NOT NULL,
	total_price     DECIMAL(10,2) NOT NULL,
	status          VARCHAR(16)   NOT NULL DEFAULT 'pending',
	created_at      DATETIME      NOT NULL DEFAULT CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

const bookingColumns = `id, name, whatsapp_number, email, service_title, date, addons, options, total_price, status, created_at`

// MySQLBookingRepo stores bookings in the bookings table. Add-ons and
// options are kept as JSON text so rows mirror the JSON file layout.
type MySQLBookingRepo struct {
	db    *sql.DB
	newID func() (string, error)
}

// NewMySQLBookingRepo returns a store bound to db.
func NewMySQLBookingRepo(db *sql.DB) *MySQLBookingRepo {
	return &MySQLBookingRepo{db: db, newID: NewShortID}
}

// Migrate creates the bookings table when it is missing.
func (r *MySQLBookingRepo) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, bookingsSchema); err != nil {
		return fmt.Errorf("%w: create bookings table: %v", ErrStorage, err)
	}
	return nil
}

// Create inserts the booking, drawing a new id whenever the primary key
// collides.
func (r *MySQLBookingRepo) Create(ctx context.Context, b model.Booking) (model.Booking, error) {
	if b.Status == "" {
		b.Status = model.BookingStatusPending
	}
	if b.Addons == nil {
		b.Addons = []model.BookingAddon{}
	}
	if b.Options == nil {
		b.Options = map[string]string{}
	}
	if b.CreatedAt == nil {
		now := time.Now().UTC().Truncate(time.Second)
		b.CreatedAt = &now
	}
	addons, err := json.Marshal(b.Addons)
	if err != nil {
		return model.Booking{}, err
	}
	options, err := json.Marshal(b.Options)
	if err != nil {
		return model.Booking{}, err
	}

	const q = `INSERT INTO bookings (` + bookingColumns + `) VALUES (?,?,?,?,?,?,?,?,?,?,?)`
	for i := 0; i < maxIDAttempts; i++ {
		id, err := r.newID()
		if err != nil {
			return model.Booking{}, err
		}
		_, err = r.db.ExecContext(ctx, q, id, b.Name, b.WhatsAppNumber, b.Email, b.ServiceTitle,
			b.Date, string(addons), string(options), b.TotalPrice, string(b.Status), *b.CreatedAt)
		if err == nil {
			b.ID = id
			return b, nil
		}
		if !isDuplicateKey(err) {
			return model.Booking{}, fmt.Errorf("%w: insert booking: %v", ErrStorage, err)
		}
	}
	return model.Booking{}, ErrIDExhausted
}

func (r *MySQLBookingRepo) List(ctx context.Context) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+bookingColumns+` FROM bookings ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("%w: list bookings: %v", ErrStorage, err)
	}
	defer rows.Close()

	out := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list bookings: %v", ErrStorage, err)
	}
	return out, nil
}

func (r *MySQLBookingRepo) Get(ctx context.Context, id string) (model.Booking, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ? LIMIT 1`, id)
	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, ErrNotFound
	}
	return b, err
}

func (r *MySQLBookingRepo) UpdateStatus(ctx context.Context, id string, status model.BookingStatus) (model.Booking, error) {
	if _, err := r.db.ExecContext(ctx, `UPDATE bookings SET status = ? WHERE id = ?`, string(status), id); err != nil {
		return model.Booking{}, fmt.Errorf("%w: update booking: %v", ErrStorage, err)
	}
	// RowsAffected is 0 for an unchanged status too, so existence is
	// decided by reading the row back.
	return r.Get(ctx, id)
}

func (r *MySQLBookingRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("%w: delete booking: %v", ErrStorage, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: delete booking: %v", ErrStorage, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanBooking(s rowScanner) (model.Booking, error) {
	var (
		b       model.Booking
		addons  string
		options string
		status  string
		created time.Time
	)
	err := s.Scan(&b.ID, &b.Name, &b.WhatsAppNumber, &b.Email, &b.ServiceTitle, &b.Date,
		&addons, &options, &b.TotalPrice, &status, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, err
	}
	if err != nil {
		return model.Booking{}, fmt.Errorf("%w: scan booking: %v", ErrStorage, err)
	}
	b.Status = model.BookingStatus(status)
	b.CreatedAt = &created
	if err := json.Unmarshal([]byte(addons), &b.Addons); err != nil {
		return model.Booking{}, fmt.Errorf("%w: decode addons of %s: %v", ErrStorage, b.ID, err)
	}
	if err := json.Unmarshal([]byte(options), &b.Options); err != nil {
		return model.Booking{}, fmt.Errorf("%w: decode options of %s: %v", ErrStorage, b.ID, err)
	}
	return b, nil
}

// isDuplicateKey reports MySQL error 1062 (ER_DUP_ENTRY).
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
