package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"

	"github.com/erazemk/torba/internal/errs"
	"github.com/erazemk/torba/internal/model"
)

const siteColumns = `id, name, alert_recipients, created_at, updated_at`

// SiteFields are the mutable fields of a site. Absent and null fields are
// left unchanged.
type SiteFields struct {
	Name            model.Optional[string]
	AlertRecipients model.Optional[[]string]
}

// ValidateRecipients checks that recipients holds at least one e-mail-like
// address.
func ValidateRecipients(recipients []string) (model.Recipients, error) {
	if len(recipients) == 0 {
		return nil, errs.Invalid("alert_recipients must contain at least one email")
	}
	for _, r := range recipients {
		if strings.TrimSpace(r) == "" {
			return nil, errs.Invalid("alert_recipients entries must be non-empty strings")
		}
		if !strings.Contains(r, "@") || !strings.Contains(r, ".") {
			return nil, errs.Invalid("alert_recipients entries must contain '@' and '.'")
		}
	}
	return model.Recipients(recipients), nil
}

// CreateSite creates a new site.
func CreateSite(ctx context.Context, db *sqlx.DB, name string, recipients []string) (*model.Site, error) {
	name, err := cleanName(name)
	if err != nil {
		return nil, err
	}
	list, err := ValidateRecipients(recipients)
	if err != nil {
		return nil, err
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO sites (name, alert_recipients) VALUES (?, ?)`,
		name, list,
	)
	if err != nil {
		return nil, fmt.Errorf("creating site: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("getting site id: %w", err)
	}

	return GetSite(ctx, db, id)
}

// GetSite returns a site by ID.
func GetSite(ctx context.Context, db *sqlx.DB, id int64) (*model.Site, error) {
	return getSite(ctx, db, id)
}

func getSite(ctx context.Context, q sqlx.QueryerContext, id int64) (*model.Site, error) {
	s := &model.Site{}
	err := sqlx.GetContext(ctx, q, s,
		`SELECT `+siteColumns+` FROM sites WHERE id = ?`, id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.NotFound("site not found")
	}
	if err != nil {
		return nil, fmt.Errorf("getting site: %w", err)
	}
	return s, nil
}

// ListSites returns all sites, newest first.
func ListSites(ctx context.Context, db *sqlx.DB) ([]model.Site, error) {
	sites := []model.Site{}
	err := db.SelectContext(ctx, &sites,
		`SELECT `+siteColumns+` FROM sites ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing sites: %w", err)
	}
	return sites, nil
}

// UpdateSite applies the present fields of f to a site.
func UpdateSite(ctx context.Context, db *sqlx.DB, id int64, f SiteFields) (*model.Site, error) {
	var site *model.Site
	err := withTx(ctx, db, func(tx *sqlx.Tx) error {
		if _, err := getSite(ctx, tx, id); err != nil {
			return err
		}

		q := psql.Update("sites").Set("updated_at", now).Where(sq.Eq{"id": id})
		fields := 0

		if f.Name.Present() {
			name, err := cleanName(f.Name.Value)
			if err != nil {
				return err
			}
			q = q.Set("name", name)
			fields++
		}
		if f.AlertRecipients.Present() {
			list, err := ValidateRecipients(f.AlertRecipients.Value)
			if err != nil {
				return err
			}
			q = q.Set("alert_recipients", list)
			fields++
		}
		if fields == 0 {
			return errs.Invalid("at least one field (name or alert_recipients) must be provided")
		}

		if err := execUpdate(ctx, tx, q); err != nil {
			return fmt.Errorf("updating site: %w", err)
		}

		var err error
		site, err = getSite(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return site, nil
}

// DeleteSite deletes a site. Fails if the site still owns bags.
func DeleteSite(ctx context.Context, db *sqlx.DB, id int64) error {
	return withTx(ctx, db, func(tx *sqlx.Tx) error {
		if _, err := getSite(ctx, tx, id); err != nil {
			return err
		}

		bags, err := count(ctx, tx, `SELECT COUNT(*) FROM bags WHERE site_id = ?`, id)
		if err != nil {
			return fmt.Errorf("checking site bags: %w", err)
		}
		if bags > 0 {
			return errs.Conflict("cannot delete site with existing bags")
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM sites WHERE id = ?`, id); err != nil {
			return fmt.Errorf("deleting site: %w", constraintErr(err))
		}
		return nil
	})
}
