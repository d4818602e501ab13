package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"pantry/internal/models"
)

const itemColumns = `id, name, expiration_date, barcode, category, count, storage_location, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*models.Item, error) {
	var (
		item       models.Item
		expiration sql.NullInt64
		barcode    sql.NullString
	)
	err := row.Scan(&item.ID, &item.Name, &expiration, &barcode, &item.Category, &item.Count,
		&item.StorageLocation, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if expiration.Valid {
		t := time.UnixMilli(expiration.Int64)
		item.ExpirationDate = &t
	}
	item.Barcode = barcode.String
	return &item, nil
}

func expirationArg(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

func barcodeArg(code string) sql.NullString {
	code = strings.TrimSpace(code)
	return sql.NullString{String: code, Valid: code != ""}
}

func validateItem(item *models.Item) error {
	if item == nil {
		return fmt.Errorf("%w: nil item", ErrInvalidItem)
	}
	if strings.TrimSpace(item.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidItem)
	}
	if strings.TrimSpace(item.Category) == "" {
		return fmt.Errorf("%w: category is required", ErrInvalidItem)
	}
	if item.Count < 1 {
		return fmt.Errorf("%w: count must be at least 1", ErrInvalidItem)
	}
	return nil
}

func (db *DB) CreateItem(ctx context.Context, item *models.Item) error {
	if err := validateItem(item); err != nil {
		return err
	}
	if item.StorageLocation == "" {
		item.StorageLocation = models.DefaultLocation
	}

	now := time.Now()
	result, err := db.ExecContext(ctx,
		`INSERT INTO items (name, expiration_date, barcode, category, count, storage_location, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		item.Name,
		expirationArg(item.ExpirationDate),
		barcodeArg(item.Barcode),
		item.Category,
		item.Count,
		item.StorageLocation,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	item.ID = id
	item.CreatedAt = now
	item.UpdatedAt = now
	return nil
}

func (db *DB) UpdateItem(ctx context.Context, item *models.Item) error {
	if err := validateItem(item); err != nil {
		return err
	}
	if item.StorageLocation == "" {
		item.StorageLocation = models.DefaultLocation
	}

	now := time.Now()
	res, err := db.ExecContext(ctx,
		`UPDATE items SET name = ?, expiration_date = ?, barcode = ?, category = ?, count = ?, storage_location = ?, updated_at = ?
         WHERE id = ?`,
		item.Name,
		expirationArg(item.ExpirationDate),
		barcodeArg(item.Barcode),
		item.Category,
		item.Count,
		item.StorageLocation,
		now,
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrItemNotFound
	}
	item.UpdatedAt = now
	return nil
}

func (db *DB) DeleteItem(ctx context.Context, id int64) error {
	res, err := db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrItemNotFound
	}
	return nil
}

// ConsumeItem takes one unit of an item; the row is removed when the last unit goes.
func (db *DB) ConsumeItem(ctx context.Context, id int64) (*models.Item, bool, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("begin consume: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	item, err := scanItem(tx.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, ErrItemNotFound
	}
	if err != nil {
		return nil, false, fmt.Errorf("load item for consume: %w", err)
	}

	deleted := item.Count <= 1
	now := time.Now()
	if deleted {
		_, err = tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id)
		item.Count = 0
	} else {
		_, err = tx.ExecContext(ctx, `UPDATE items SET count = count - 1, updated_at = ? WHERE id = ?`, now, id)
		item.Count--
		item.UpdatedAt = now
	}
	if err != nil {
		return nil, false, fmt.Errorf("consume item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("commit consume: %w", err)
	}
	return item, deleted, nil
}

func (db *DB) GetItemByID(ctx context.Context, id int64) (*models.Item, error) {
	item, err := scanItem(db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ? LIMIT 1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrItemNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// GetAllItems returns every item in insertion order.
func (db *DB) GetAllItems(ctx context.Context) ([]*models.Item, error) {
	return db.queryItems(ctx, `SELECT `+itemColumns+` FROM items ORDER BY id`)
}

// GetItemsByLocation lists a location's items, dated ones first by ascending expiration.
func (db *DB) GetItemsByLocation(ctx context.Context, location string) ([]*models.Item, error) {
	return db.queryItems(ctx, `SELECT `+itemColumns+` FROM items WHERE storage_location = ?
        ORDER BY CASE WHEN expiration_date IS NULL THEN 1 ELSE 0 END, expiration_date ASC, id ASC`, location)
}

// GetNameByBarcode returns the name of some item already stored with the barcode.
func (db *DB) GetNameByBarcode(ctx context.Context, barcode string) (string, error) {
	var name string
	err := db.QueryRowContext(ctx, `SELECT name FROM items WHERE barcode = ? LIMIT 1`, strings.TrimSpace(barcode)).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrItemNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to get name by barcode: %w", err)
	}
	return name, nil
}

func (db *DB) DeleteItemsByCategoryAndLocation(ctx context.Context, category, location string) (int64, error) {
	res, err := db.ExecContext(ctx, `DELETE FROM items WHERE category = ? AND storage_location = ?`, category, location)
	if err != nil {
		return 0, fmt.Errorf("failed to delete items of category %q: %w", category, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("read rows affected: %w", err)
	}
	return n, nil
}

func (db *DB) queryItems(ctx context.Context, query string, args ...any) ([]*models.Item, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := make([]*models.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate items: %w", err)
	}
	return items, nil
}
