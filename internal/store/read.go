package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/transition/internal/model"
)

const appColumns = `
	t.name, a.name, a.author, a.version, a.description, a.path,
	a.sha256, a.sha512, a.blake3`

const appFrom = `
	FROM app a
	JOIN app_type t ON t.id = a.id_app_type`

// AppTypes returns every registered app type ordered by name.
func (s *Store) AppTypes(ctx context.Context) ([]model.AppType, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `
		SELECT name, path FROM app_type
		ORDER BY name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query app types: %w", err)
	}
	defer rows.Close()

	types := []model.AppType{}
	for rows.Next() {
		var at model.AppType
		if err := rows.Scan(&at.Name, &at.Path); err != nil {
			return nil, fmt.Errorf("scan app type: %w", err)
		}
		types = append(types, at)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate app types: %w", err)
	}
	return types, nil
}

// AppType looks up one app type by name.
func (s *Store) AppType(ctx context.Context, name string) (model.AppType, model.Outcome, error) {
	db, err := s.conn()
	if err != nil {
		return model.AppType{}, model.OutcomeNotFound, err
	}
	var at model.AppType
	err = db.QueryRowContext(ctx,
		`SELECT name, path FROM app_type WHERE name = ?`, name,
	).Scan(&at.Name, &at.Path)
	if errors.Is(err, sql.ErrNoRows) {
		return model.AppType{}, model.OutcomeNotFound, nil
	}
	if err != nil {
		return model.AppType{}, model.OutcomeNotFound, fmt.Errorf("query app type: %w", err)
	}
	return at, model.OutcomeFound, nil
}

// HostApps returns every registered host short name, sorted.
func (s *Store) HostApps(ctx context.Context) ([]string, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, `
		SELECT short_name FROM com_app
		ORDER BY short_name COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query hosts: %w", err)
	}
	defer rows.Close()

	hosts := []string{}
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("scan host: %w", err)
		}
		hosts = append(hosts, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate hosts: %w", err)
	}
	return hosts, nil
}

// HasHostApp reports whether a host short name is registered.
func (s *Store) HasHostApp(ctx context.Context, name string) (bool, error) {
	db, err := s.conn()
	if err != nil {
		return false, err
	}
	_, ok, err := lookupID(ctx, db, `SELECT id FROM com_app WHERE short_name = ?`, model.HostName(name))
	return ok, err
}

// App looks up one app by (type, name).
func (s *Store) App(ctx context.Context, appType, name string) (model.App, model.Outcome, error) {
	db, err := s.conn()
	if err != nil {
		return model.App{}, model.OutcomeNotFound, err
	}
	row := db.QueryRowContext(ctx,
		`SELECT `+appColumns+appFrom+` WHERE t.name = ? AND a.name = ?`,
		appType, model.AppName(name),
	)
	return scanAppRow(row)
}

// AppByPath looks up an app by its filesystem path.
func (s *Store) AppByPath(ctx context.Context, path string) (model.App, model.Outcome, error) {
	db, err := s.conn()
	if err != nil {
		return model.App{}, model.OutcomeNotFound, err
	}
	row := db.QueryRowContext(ctx,
		`SELECT `+appColumns+appFrom+` WHERE a.path = ? ORDER BY t.name, a.name LIMIT 1`,
		path,
	)
	return scanAppRow(row)
}

// Apps returns the registered apps of one type, or of every type when
// appType is empty. Ordered by type then name.
func (s *Store) Apps(ctx context.Context, appType string) ([]model.App, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + appColumns + appFrom
	var args []any
	if appType != "" {
		query += ` WHERE t.name = ?`
		args = append(args, appType)
	}
	query += ` ORDER BY t.name COLLATE BINARY ASC, a.name COLLATE BINARY ASC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query apps: %w", err)
	}
	defer rows.Close()

	apps := []model.App{}
	for rows.Next() {
		app, err := scanApp(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate apps: %w", err)
	}
	return apps, nil
}

// AppHosts returns the hosts an app is linked to, sorted.
// An unknown app yields an empty slice.
func (s *Store) AppHosts(ctx context.Context, appType, name string) ([]string, error) {
	items, err := s.Links(ctx, model.ListFilter{AppType: &appType, AppName: &name})
	if err != nil {
		return nil, err
	}
	hosts := make([]string, 0, len(items))
	for _, it := range items {
		hosts = append(hosts, it.Host)
	}
	return hosts, nil
}

// Links returns the app × host enablement view narrowed by f.
// Results are ordered by type, app name, then host.
func (s *Store) Links(ctx context.Context, f model.ListFilter) ([]model.AppListItem, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	query, params, err := compileLinkQuery(f)
	if err != nil {
		return nil, fmt.Errorf("compile link query: %w", err)
	}

	rows, err := db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("query links: %w", err)
	}
	defer rows.Close()

	items := []model.AppListItem{}
	for rows.Next() {
		var it model.AppListItem
		if err := rows.Scan(&it.AppType, &it.AppName, &it.Host, &it.Enabled); err != nil {
			return nil, fmt.Errorf("scan link: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate links: %w", err)
	}
	return items, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanApp(r rowScanner) (model.App, error) {
	var a model.App
	err := r.Scan(
		&a.Type, &a.Name, &a.Author, &a.Version, &a.Description, &a.Path,
		&a.Digests.SHA256, &a.Digests.SHA512, &a.Digests.BLAKE3,
	)
	if err != nil {
		return model.App{}, fmt.Errorf("scan app: %w", err)
	}
	return a, nil
}

func scanAppRow(row *sql.Row) (model.App, model.Outcome, error) {
	a, err := scanApp(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.App{}, model.OutcomeNotFound, nil
	}
	if err != nil {
		return model.App{}, model.OutcomeNotFound, err
	}
	return a, model.OutcomeFound, nil
}

// lookupID runs a single-column id query. ok is false when no row matched.
func lookupID(ctx context.Context, q querier, query string, args ...any) (int64, bool, error) {
	var id int64
	err := q.QueryRowContext(ctx, query, args...).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("lookup id: %w", err)
	}
	return id, true, nil
}

func appTypeID(ctx context.Context, q querier, name string) (int64, bool, error) {
	return lookupID(ctx, q, `SELECT id FROM app_type WHERE name = ?`, name)
}

func appID(ctx context.Context, q querier, appType, name string) (int64, bool, error) {
	return lookupID(ctx, q, `
		SELECT a.id FROM app a
		JOIN app_type t ON t.id = a.id_app_type
		WHERE t.name = ? AND a.name = ?
	`, appType, model.AppName(name))
}
