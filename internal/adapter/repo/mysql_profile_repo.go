package repo

import (
	"context"
	"database/sql"
	"errors"

	domain "github.com/nahuarce12/ecommerce/internal/entity"
	"github.com/nahuarce12/ecommerce/internal/usecase"
)

type MySQLProfileRepo struct{ db *sql.DB }

func NewMySQLProfileRepo(db *sql.DB) *MySQLProfileRepo { return &MySQLProfileRepo{db: db} }

func (r *MySQLProfileRepo) GetByUserID(ctx context.Context, userID string) (*domain.Profile, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT user_id,COALESCE(full_name,''),COALESCE(email,''),COALESCE(phone,''),
       COALESCE(address_line1,''),COALESCE(address_line2,''),COALESCE(city,''),
       COALESCE(state_province,''),COALESCE(postal_code,''),COALESCE(country,'')
FROM profiles WHERE user_id=?`, userID)

	var p domain.Profile
	if err := row.Scan(&p.UserID, &p.FullName, &p.Email, &p.Phone,
		&p.AddressLine1, &p.AddressLine2, &p.City, &p.Province,
		&p.PostalCode, &p.Country); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

var _ usecase.ProfileRepo = (*MySQLProfileRepo)(nil)
