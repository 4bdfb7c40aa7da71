package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/panel-dashboard/internal/domain"
)

// WebsiteTotals aggregates usage over a set of websites, in megabytes.
type WebsiteTotals struct {
	Total         int
	Active        int
	StorageUsed   int64
	StorageLimit  int64
	BandwidthUsed int64
	Visitors      int64
}

// WebsiteRepository stores the local mirror of provisioned websites.
type WebsiteRepository interface {
	Create(ctx context.Context, website *domain.Website) error
	Update(ctx context.Context, website *domain.Website) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Website, error)
	GetByDomain(ctx context.Context, domain string) (*domain.Website, error)
	List(ctx context.Context) ([]domain.Website, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Website, error)
	Totals(ctx context.Context) (WebsiteTotals, error)
	UpdateUsage(ctx context.Context, usage domain.WebsiteUsage) (bool, error)
}

type websiteRepository struct {
	pool *pgxpool.Pool
}

// NewWebsiteRepository instantiates repository.
func NewWebsiteRepository(pool *pgxpool.Pool) WebsiteRepository {
	return &websiteRepository{pool: pool}
}

const websiteSelect = `
        SELECT w.id, w.domain, w.user_id, w.package, w.status, w.php_version, w.ssl_enabled,
               w.cyberpanel_id, w.ip_address, w.storage_used, w.storage_limit,
               w.bandwidth_used, w.bandwidth_limit, w.visitors_count, w.created_at, w.updated_at,
               u.email, u.name
        FROM websites w JOIN users u ON u.id = w.user_id`

func (r *websiteRepository) Create(ctx context.Context, website *domain.Website) error {
	const query = `
        INSERT INTO websites (domain, user_id, package, status, php_version, ssl_enabled, cyberpanel_id,
            ip_address, storage_used, storage_limit, bandwidth_used, bandwidth_limit, visitors_count)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
        RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, query,
		website.Domain,
		website.UserID,
		website.Package,
		website.Status,
		website.PHPVersion,
		website.SSLEnabled,
		website.CyberPanelID,
		website.IPAddress,
		website.StorageUsed,
		website.StorageLimit,
		website.BandwidthUsed,
		website.BandwidthLimit,
		website.VisitorsCount,
	).Scan(&website.ID, &website.CreatedAt, &website.UpdatedAt)
}

func (r *websiteRepository) Update(ctx context.Context, website *domain.Website) error {
	const query = `
        UPDATE websites SET package=$1, status=$2, php_version=$3, ssl_enabled=$4, storage_limit=$5,
            bandwidth_limit=$6, updated_at=NOW()
        WHERE id=$7
        RETURNING updated_at`
	err := r.pool.QueryRow(ctx, query,
		website.Package,
		website.Status,
		website.PHPVersion,
		website.SSLEnabled,
		website.StorageLimit,
		website.BandwidthLimit,
		website.ID,
	).Scan(&website.UpdatedAt)
	return err
}

func (r *websiteRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM websites WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *websiteRepository) GetByID(ctx context.Context, id string) (*domain.Website, error) {
	return r.fetchOne(ctx, websiteSelect+` WHERE w.id=$1`, id)
}

func (r *websiteRepository) GetByDomain(ctx context.Context, name string) (*domain.Website, error) {
	return r.fetchOne(ctx, websiteSelect+` WHERE lower(w.domain)=lower($1)`, name)
}

func (r *websiteRepository) List(ctx context.Context) ([]domain.Website, error) {
	return r.fetchMany(ctx, websiteSelect+` ORDER BY w.created_at DESC`)
}

func (r *websiteRepository) ListByUser(ctx context.Context, userID string) ([]domain.Website, error) {
	return r.fetchMany(ctx, websiteSelect+` WHERE w.user_id=$1 ORDER BY w.created_at DESC`, userID)
}

func (r *websiteRepository) Totals(ctx context.Context) (WebsiteTotals, error) {
	const query = `
        SELECT COUNT(*),
               COUNT(*) FILTER (WHERE status = 'ACTIVE'),
               COALESCE(SUM(storage_used), 0),
               COALESCE(SUM(storage_limit), 0),
               COALESCE(SUM(bandwidth_used), 0),
               COALESCE(SUM(visitors_count), 0)
        FROM websites`
	var t WebsiteTotals
	err := r.pool.QueryRow(ctx, query).Scan(&t.Total, &t.Active, &t.StorageUsed, &t.StorageLimit, &t.BandwidthUsed, &t.Visitors)
	return t, err
}

// UpdateUsage stores a usage sample. Storage is capped at the plan limit.
// It reports whether a website with that domain exists.
func (r *websiteRepository) UpdateUsage(ctx context.Context, usage domain.WebsiteUsage) (bool, error) {
	const query = `
        UPDATE websites
        SET storage_used = CASE WHEN storage_limit > 0 THEN LEAST($1, storage_limit) ELSE $1 END,
            bandwidth_used = $2,
            updated_at = NOW()
        WHERE lower(domain) = lower($3)`
	cmd, err := r.pool.Exec(ctx, query, usage.StorageUsed, usage.BandwidthUsed, usage.Domain)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *websiteRepository) fetchOne(ctx context.Context, query string, arg any) (*domain.Website, error) {
	website, err := scanWebsite(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		return nil, err
	}
	return &website, nil
}

func (r *websiteRepository) fetchMany(ctx context.Context, query string, args ...any) ([]domain.Website, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Website
	for rows.Next() {
		website, err := scanWebsite(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, website)
	}
	return result, rows.Err()
}

func scanWebsite(row pgx.Row) (domain.Website, error) {
	var w domain.Website
	err := row.Scan(
		&w.ID,
		&w.Domain,
		&w.UserID,
		&w.Package,
		&w.Status,
		&w.PHPVersion,
		&w.SSLEnabled,
		&w.CyberPanelID,
		&w.IPAddress,
		&w.StorageUsed,
		&w.StorageLimit,
		&w.BandwidthUsed,
		&w.BandwidthLimit,
		&w.VisitorsCount,
		&w.CreatedAt,
		&w.UpdatedAt,
		&w.OwnerEmail,
		&w.OwnerName,
	)
	return w, err
}
