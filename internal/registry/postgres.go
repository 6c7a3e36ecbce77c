// internal/registry/postgres.go
package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	wferrors "rentflow/internal/common/errors"
	"rentflow/internal/common/logger"
	"rentflow/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const selectColumns = `id, property_id, applicant_name, tenant_user_id, agent_id, landlord_id,
	status, step, task_id, linked_task_id, version, created_at, updated_at`

// PostgresStore implements Store on top of PostgreSQL.
type PostgresStore struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresStore(db *sql.DB, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "registry"}),
	}
}

func (s *PostgresStore) GetByID(ctx context.Context, id string) (models.Application, error) {
	row := s.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT %s FROM applications WHERE id = $1`, selectColumns), id)

	app, err := scanApplication(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Application{}, wferrors.NewNotFoundError("application", id)
	}
	if err != nil {
		return models.Application{}, fmt.Errorf("get application: %w", err)
	}
	return app, nil
}

func (s *PostgresStore) GetByProperty(ctx context.Context, propertyID string) ([]models.Application, error) {
	return s.queryApplications(ctx, `property_id`, propertyID)
}

func (s *PostgresStore) GetByLandlord(ctx context.Context, landlordID string) ([]models.Application, error) {
	return s.queryApplications(ctx, `landlord_id`, landlordID)
}

func (s *PostgresStore) GetByAgent(ctx context.Context, agentID string) ([]models.Application, error) {
	return s.queryApplications(ctx, `agent_id`, agentID)
}

func (s *PostgresStore) GetByTenant(ctx context.Context, tenantUserID string) ([]models.Application, error) {
	return s.queryApplications(ctx, `tenant_user_id`, tenantUserID)
}

func (s *PostgresStore) queryApplications(ctx context.Context, column, value string) ([]models.Application, error) {
	query := fmt.Sprintf(`SELECT %s FROM applications WHERE %s = $1 ORDER BY created_at`, selectColumns, column)

	rows, err := s.db.QueryContext(ctx, query, value)
	if err != nil {
		return nil, fmt.Errorf("query applications by %s: %w", column, err)
	}
	defer rows.Close()

	var apps []models.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func (s *PostgresStore) Insert(ctx context.Context, in NewApplication) (models.Application, error) {
	now := time.Now().UTC()
	app := models.Application{
		ID:            uuid.New().String(),
		PropertyID:    in.PropertyID,
		ApplicantName: in.ApplicantName,
		TenantUserID:  in.TenantUserID,
		AgentID:       in.AgentID,
		LandlordID:    in.LandlordID,
		Status:        models.StatusUndetermined,
		Step:          models.StepScreening,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO applications (
			id, property_id, applicant_name, tenant_user_id, agent_id, landlord_id,
			status, step, version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`,
		app.ID, app.PropertyID, app.ApplicantName, app.TenantUserID,
		app.AgentID, app.LandlordID, app.Status, app.Step, app.Version, now,
	)
	if err != nil {
		return models.Application{}, fmt.Errorf("insert application: %w", err)
	}

	s.logger.Info("application inserted", map[string]interface{}{
		"applicationId": app.ID,
		"propertyId":    app.PropertyID,
	})
	return app, nil
}

func (s *PostgresStore) UpdateStatus(ctx context.Context, id string, expectVersion int, to models.Status, step int) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE applications
		SET status = $1, step = $2, version = version + 1, updated_at = $3
		WHERE id = $4 AND version = $5`,
		to, step, time.Now().UTC(), id, expectVersion,
	)
	if err != nil {
		return fmt.Errorf("update application status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update application status: %w", err)
	}
	if affected == 0 {
		// Either the row is gone or someone raced us; disambiguate.
		if _, err := s.GetByID(ctx, id); err != nil {
			return err
		}
		return wferrors.NewVersionConflictError(id)
	}
	return nil
}

func (s *PostgresStore) UpdateStatuses(ctx context.Context, ids []string, from, to models.Status, step int, taskID string) (int, error) {
	if len(ids) == 0 {
		return 0, wferrors.NewValidationError("empty batch", "no application ids given")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin batch update: %w", err)
	}
	defer tx.Rollback()

	var res sql.Result
	if taskID != "" {
		res, err = tx.ExecContext(ctx, `
			UPDATE applications
			SET status = $1, step = $2, task_id = $3, version = version + 1, updated_at = $4
			WHERE id = ANY($5) AND status = $6`,
			to, step, taskID, time.Now().UTC(), pq.Array(ids), from,
		)
	} else {
		res, err = tx.ExecContext(ctx, `
			UPDATE applications
			SET status = $1, step = $2, version = version + 1, updated_at = $3
			WHERE id = ANY($4) AND status = $5`,
			to, step, time.Now().UTC(), pq.Array(ids), from,
		)
	}
	if err != nil {
		return 0, fmt.Errorf("batch status update: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("batch status update: %w", err)
	}
	if int(affected) != len(ids) {
		s.logger.Warn("batch transition mismatch, rolling back", map[string]interface{}{
			"want": len(ids),
			"got":  affected,
			"from": from,
			"to":   to,
		})
		return 0, wferrors.NewBatchConflictError(from, to, len(ids), int(affected))
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit batch update: %w", err)
	}
	return int(affected), nil
}

func (s *PostgresStore) UpdateLinkedTask(ctx context.Context, id, taskID string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE applications
		SET linked_task_id = $1, updated_at = $2
		WHERE id = $3`,
		taskID, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update linked task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update linked task: %w", err)
	}
	if affected == 0 {
		return wferrors.NewNotFoundError("application", id)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanApplication(row rowScanner) (models.Application, error) {
	var app models.Application
	var tenantUserID, taskID, linkedTaskID sql.NullString
	err := row.Scan(
		&app.ID, &app.PropertyID, &app.ApplicantName, &tenantUserID,
		&app.AgentID, &app.LandlordID, &app.Status, &app.Step,
		&taskID, &linkedTaskID, &app.Version, &app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		return models.Application{}, err
	}
	app.TenantUserID = tenantUserID.String
	app.TaskID = taskID.String
	app.LinkedTaskID = linkedTaskID.String
	return app, nil
}
