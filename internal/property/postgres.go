// internal/property/postgres.go
package property

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "rentflow/internal/common/errors"
	"rentflow/internal/common/logger"
)

type PostgresStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresStore(db *sql.DB, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "property-store"}),
	}
}

func (s *PostgresStore) Address(ctx context.Context, propertyID string) (string, error) {
	var address string
	err := s.db.QueryRowContext(ctx,
		`SELECT address FROM properties WHERE id = $1`, propertyID,
	).Scan(&address)
	if errors.Is(err, sql.ErrNoRows) {
		return "", apperrors.NewNotFoundError("property", propertyID)
	}
	if err != nil {
		return "", fmt.Errorf("query property: %w", err)
	}
	return address, nil
}

func (s *PostgresStore) SetTenant(ctx context.Context, propertyID, tenantUserID string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE properties SET tenant_user_id = $1, updated_at = NOW() WHERE id = $2`,
		tenantUserID, propertyID,
	)
	if err != nil {
		return fmt.Errorf("update property tenant: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NewNotFoundError("property", propertyID)
	}

	s.logger.Info("tenant recorded on property", map[string]interface{}{
		"propertyId":   propertyID,
		"tenantUserId": tenantUserID,
	})
	return nil
}
