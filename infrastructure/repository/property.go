package repository

import (
	"database/sql"

	"github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"github.com/expodigital/analytics-manager-api/infrastructure/database/postgres"
	"github.com/expodigital/analytics-manager-api/internal/domain"
)

const propertiesTable = "properties p"

type PropertyRepository interface {
	GetPropertyByID(propertyID int64) (*domain.Property, error)
	GetPropertyBySourceID(sourceID string) (*domain.Property, error)
	ListActiveProperties() ([]*domain.Property, error)
}

type propertyRepository struct {
	conn *postgres.Connection
}

func NewPropertyRepository(conn *postgres.Connection) PropertyRepository {
	return &propertyRepository{
		conn: conn,
	}
}

func (r *propertyRepository) GetPropertyByID(propertyID int64) (*domain.Property, error) {
	return r.getProperty(squirrel.Eq{"p.id": propertyID})
}

func (r *propertyRepository) GetPropertyBySourceID(sourceID string) (*domain.Property, error) {
	return r.getProperty(squirrel.Eq{"p.source_id": sourceID})
}

func (r *propertyRepository) getProperty(whereClause map[string]interface{}) (*domain.Property, error) {
	propertySQL, propertyArgs, err := squirrel.
		Select("p.id, p.source_id, p.name, p.active, p.sync_frequency, p.rate_limit_per_hour, p.created_at, p.updated_at").
		From(propertiesTable).
		Where(whereClause).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	row := r.conn.QueryRow(propertySQL, propertyArgs...)

	property, err := r.deserializeProperty(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return property, nil
}

func (r *propertyRepository) deserializeProperty(row *sql.Row) (*domain.Property, error) {
	property := &domain.Property{}

	if err := row.Scan(
		&property.ID,
		&property.SourceID,
		&property.Name,
		&property.Active,
		&property.SyncFrequency,
		&property.RateLimitPerHour,
		&property.CreatedAt,
		&property.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return property, nil
}

func (r *propertyRepository) ListActiveProperties() ([]*domain.Property, error) {
	propertiesSQL, propertiesArgs, err := squirrel.
		Select("p.id, p.source_id, p.name, p.active, p.sync_frequency, p.rate_limit_per_hour, p.created_at, p.updated_at").
		From(propertiesTable).
		Where(squirrel.Eq{"p.active": true}).
		OrderBy("p.name ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.conn.Query(propertiesSQL, propertiesArgs...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	defer rows.Close()

	properties := make([]*domain.Property, 0)
	for rows.Next() {
		property := &domain.Property{}
		if err := rows.Scan(
			&property.ID,
			&property.SourceID,
			&property.Name,
			&property.Active,
			&property.SyncFrequency,
			&property.RateLimitPerHour,
			&property.CreatedAt,
			&property.UpdatedAt,
		); err != nil {
			return nil, err
		}

		properties = append(properties, property)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return properties, nil
}
