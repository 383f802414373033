package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/cypheracademy/certvault/internal/cert/domain"
)

type certificatesRepo struct {
	db *sql.DB
}

const certColumns = `id, first_name, last_name, organization, course_name,
	recipient_email, template_id, assigned_on, expires_on, duration_years,
	ipfs_hash, tx_hash, issuer_id, created_at`

func (r *certificatesRepo) CreateCertificate(ctx context.Context, c domain.Certificate) error {
	var expires any
	if !c.ExpiresOn.IsZero() {
		expires = c.ExpiresOn.UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO certificates (id, first_name, last_name, organization, course_name,
			recipient_email, template_id, assigned_on, expires_on, duration_years,
			ipfs_hash, tx_hash, issuer_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.FirstName, c.LastName, c.Organization, c.CourseName,
		c.RecipientEmail, c.TemplateID,
		c.AssignedOn.UTC(), expires,
		c.DurationYears, c.IPFSHash, c.TxHash, c.IssuerID,
		time.Now().UTC(),
	)
	return mapConstraint(err)
}

func (r *certificatesRepo) GetCertificateByID(ctx context.Context, id string) (domain.Certificate, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+certColumns+` FROM certificates WHERE id = ?`, id)
	return scanCertificate(row)
}

func (r *certificatesRepo) GetCertificateByHash(ctx context.Context, ipfsHash string) (domain.Certificate, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+certColumns+` FROM certificates WHERE ipfs_hash = ?`, ipfsHash)
	return scanCertificate(row)
}

func (r *certificatesRepo) ListCertificatesByIssuer(ctx context.Context, issuerID string) ([]domain.Certificate, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+certColumns+` FROM certificates WHERE issuer_id = ? ORDER BY id DESC`, issuerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var certs []domain.Certificate
	for rows.Next() {
		var c domain.Certificate
		var expires sql.NullTime
		if err := rows.Scan(
			&c.ID, &c.FirstName, &c.LastName, &c.Organization, &c.CourseName,
			&c.RecipientEmail, &c.TemplateID, &c.AssignedOn, &expires,
			&c.DurationYears, &c.IPFSHash, &c.TxHash, &c.IssuerID, &c.CreatedAt,
		); err != nil {
			return nil, err
		}
		if expires.Valid {
			c.ExpiresOn = expires.Time
		}
		certs = append(certs, c)
	}
	return certs, rows.Err()
}

func (r *certificatesRepo) CountCertificates(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM certificates`).Scan(&count)
	return count, err
}

func scanCertificate(row *sql.Row) (domain.Certificate, error) {
	var c domain.Certificate
	var expires sql.NullTime
	err := row.Scan(
		&c.ID, &c.FirstName, &c.LastName, &c.Organization, &c.CourseName,
		&c.RecipientEmail, &c.TemplateID, &c.AssignedOn, &expires,
		&c.DurationYears, &c.IPFSHash, &c.TxHash, &c.IssuerID, &c.CreatedAt,
	)
	if err != nil {
		return domain.Certificate{}, mapNotFound(err)
	}
	if expires.Valid {
		c.ExpiresOn = expires.Time
	}
	return c, nil
}
