package store

import (
	"context"
	"fmt"

	"github.com/roach88/transition/internal/model"
)

// AddAppType registers an app type. An existing name is left untouched.
func (s *Store) AddAppType(ctx context.Context, at model.AppType) (model.Outcome, error) {
	db, err := s.conn()
	if err != nil {
		return model.OutcomeNotFound, err
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO app_type (name, path) VALUES (?, ?) ON CONFLICT DO NOTHING`,
		at.Name, at.Path,
	)
	if err != nil {
		return model.OutcomeNotFound, fmt.Errorf("add app type: %w", err)
	}
	return insertOutcome(res.RowsAffected())
}

// AddHostApp registers a host short name (canonicalised).
func (s *Store) AddHostApp(ctx context.Context, name string) (model.Outcome, error) {
	db, err := s.conn()
	if err != nil {
		return model.OutcomeNotFound, err
	}
	res, err := db.ExecContext(ctx,
		`INSERT INTO com_app (short_name) VALUES (?) ON CONFLICT DO NOTHING`,
		model.HostName(name),
	)
	if err != nil {
		return model.OutcomeNotFound, fmt.Errorf("add host: %w", err)
	}
	return insertOutcome(res.RowsAffected())
}

func insertOutcome(n int64, err error) (model.Outcome, error) {
	if err != nil {
		return model.OutcomeNotFound, fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return model.OutcomeAlreadyExists, nil
	}
	return model.OutcomeCreated, nil
}

// InsertApp registers app and links it, disabled, to each declared host.
//
// Hosts that are not registered are skipped. An app already registered
// under (type, name) yields model.OutcomeAlreadyExists and nothing changes.
// An unknown app type is a *model.ConfigError.
func (s *Store) InsertApp(ctx context.Context, app model.App, hosts []string) (model.Outcome, error) {
	db, err := s.conn()
	if err != nil {
		return model.OutcomeNotFound, err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return model.OutcomeNotFound, fmt.Errorf("insert app: begin: %w", err)
	}
	defer tx.Rollback()

	typeID, ok, err := appTypeID(ctx, tx, app.Type)
	if err != nil {
		return model.OutcomeNotFound, fmt.Errorf("insert app: %w", err)
	}
	if !ok {
		return model.OutcomeNotFound, &model.ConfigError{
			Code:    model.ErrCodeUnknownAppType,
			Message: "app type is not registered",
			AppType: app.Type,
			AppName: app.Name,
		}
	}

	name := model.AppName(app.Name)
	if _, exists, err := appID(ctx, tx, app.Type, name); err != nil {
		return model.OutcomeNotFound, fmt.Errorf("insert app: %w", err)
	} else if exists {
		return model.OutcomeAlreadyExists, nil
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO app
		(id_app_type, name, author, version, description, path, sha256, sha512, blake3)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		typeID,
		name,
		app.Author,
		app.Version,
		app.Description,
		app.Path,
		app.Digests.SHA256,
		app.Digests.SHA512,
		app.Digests.BLAKE3,
	); err != nil {
		return model.OutcomeNotFound, fmt.Errorf("insert app: %w", err)
	}

	// Re-lookup instead of LastInsertId.
	id, ok, err := appID(ctx, tx, app.Type, name)
	if err != nil {
		return model.OutcomeNotFound, fmt.Errorf("insert app: %w", err)
	}
	if !ok {
		return model.OutcomeNotFound, fmt.Errorf("insert app: row for %s/%s vanished", app.Type, name)
	}

	if err := s.insertLinks(ctx, tx, id, hosts, nil); err != nil {
		return model.OutcomeNotFound, fmt.Errorf("insert app: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.OutcomeNotFound, fmt.Errorf("insert app: commit: %w", err)
	}
	return model.OutcomeCreated, nil
}

// UpdateApp rewrites the metadata and digests of a registered app and
// rebuilds its host links according to policy.
//
// Returns model.OutcomeNotFound when (type, name) is not registered.
func (s *Store) UpdateApp(ctx context.Context, app model.App, hosts []string, policy model.LinkPolicy) (model.Outcome, error) {
	db, err := s.conn()
	if err != nil {
		return model.OutcomeNotFound, err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return model.OutcomeNotFound, fmt.Errorf("update app: begin: %w", err)
	}
	defer tx.Rollback()

	id, ok, err := appID(ctx, tx, app.Type, app.Name)
	if err != nil {
		return model.OutcomeNotFound, fmt.Errorf("update app: %w", err)
	}
	if !ok {
		return model.OutcomeNotFound, nil
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE app
		SET author = ?, version = ?, description = ?, path = ?,
		    sha256 = ?, sha512 = ?, blake3 = ?
		WHERE id = ?
	`,
		app.Author,
		app.Version,
		app.Description,
		app.Path,
		app.Digests.SHA256,
		app.Digests.SHA512,
		app.Digests.BLAKE3,
		id,
	); err != nil {
		return model.OutcomeNotFound, fmt.Errorf("update app: %w", err)
	}

	var keep map[string]bool
	if policy == model.LinkPolicyPreserve {
		keep, err = enabledHosts(ctx, tx, id)
		if err != nil {
			return model.OutcomeNotFound, fmt.Errorf("update app: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM app_works_with_com_app WHERE id_app = ?`, id); err != nil {
		return model.OutcomeNotFound, fmt.Errorf("update app: clear links: %w", err)
	}
	if err := s.insertLinks(ctx, tx, id, hosts, keep); err != nil {
		return model.OutcomeNotFound, fmt.Errorf("update app: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.OutcomeNotFound, fmt.Errorf("update app: commit: %w", err)
	}
	return model.OutcomeUpdated, nil
}

// DeleteApp removes an app and its host links.
func (s *Store) DeleteApp(ctx context.Context, appType, name string) (model.Outcome, error) {
	db, err := s.conn()
	if err != nil {
		return model.OutcomeNotFound, err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return model.OutcomeNotFound, fmt.Errorf("delete app: begin: %w", err)
	}
	defer tx.Rollback()

	id, ok, err := appID(ctx, tx, appType, name)
	if err != nil {
		return model.OutcomeNotFound, fmt.Errorf("delete app: %w", err)
	}
	if !ok {
		return model.OutcomeNotFound, nil
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM app_works_with_com_app WHERE id_app = ?`, id); err != nil {
		return model.OutcomeNotFound, fmt.Errorf("delete app: links: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM app WHERE id = ?`, id); err != nil {
		return model.OutcomeNotFound, fmt.Errorf("delete app: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return model.OutcomeNotFound, fmt.Errorf("delete app: commit: %w", err)
	}
	return model.OutcomeDeleted, nil
}

// SetEnabled sets the enabled flag of the app's links to the given hosts.
//
// Links already in the requested state are left alone. Returns the hosts
// whose flag actually changed, in the order given. Hosts the app is not
// linked to are ignored.
func (s *Store) SetEnabled(ctx context.Context, appType, name string, hosts []string, enabled bool) ([]string, error) {
	db, err := s.conn()
	if err != nil {
		return nil, err
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("set enabled: begin: %w", err)
	}
	defer tx.Rollback()

	id, ok, err := appID(ctx, tx, appType, name)
	if err != nil {
		return nil, fmt.Errorf("set enabled: %w", err)
	}
	if !ok {
		return []string{}, nil
	}

	flipped := []string{}
	for _, host := range model.HostNames(hosts) {
		res, err := tx.ExecContext(ctx, `
			UPDATE app_works_with_com_app SET enabled = ?
			WHERE id_app = ?
			  AND id_com_app = (SELECT id FROM com_app WHERE short_name = ?)
			  AND enabled <> ?
		`, enabled, id, host, enabled)
		if err != nil {
			return nil, fmt.Errorf("set enabled %s: %w", host, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("set enabled %s: %w", host, err)
		}
		if n > 0 {
			flipped = append(flipped, host)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("set enabled: commit: %w", err)
	}
	return flipped, nil
}

// insertLinks links app id to each registered host in hosts.
// A host present in enabled starts enabled; every other link starts disabled.
func (s *Store) insertLinks(ctx context.Context, q querier, id int64, hosts []string, enabled map[string]bool) error {
	for _, host := range model.HostNames(hosts) {
		hostID, ok, err := lookupID(ctx, q, `SELECT id FROM com_app WHERE short_name = ?`, host)
		if err != nil {
			return fmt.Errorf("link %s: %w", host, err)
		}
		if !ok {
			s.logger.Warn("skipping unknown host", "host", host)
			continue
		}
		if _, err := q.ExecContext(ctx,
			`INSERT INTO app_works_with_com_app (id_app, id_com_app, enabled) VALUES (?, ?, ?)`,
			id, hostID, enabled[host],
		); err != nil {
			return fmt.Errorf("link %s: %w", host, err)
		}
	}
	return nil
}

// enabledHosts returns the hosts currently enabled for app id.
func enabledHosts(ctx context.Context, q querier, id int64) (map[string]bool, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT c.short_name FROM app_works_with_com_app l
		JOIN com_app c ON c.id = l.id_com_app
		WHERE l.id_app = ? AND l.enabled = 1
	`, id)
	if err != nil {
		return nil, fmt.Errorf("query enabled hosts: %w", err)
	}
	defer rows.Close()

	out := map[string]bool{}
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("scan enabled host: %w", err)
		}
		out[h] = true
	}
	return out, rows.Err()
}
