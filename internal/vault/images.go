// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package vault

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/pdiddy/imagecrypt/pkg/types"
)

// Unlocked is a decoded image ready to be written out.
type Unlocked struct {
	Image types.Image
	Ext   string
	Data  []byte
}

// FileName returns the image name with its original extension.
func (u Unlocked) FileName() string {
	return u.Image.Name + u.Ext
}

// LockImage reads the file at path, encodes it with the vault key, and
// stores it. Only files with an extension in types.DefaultExtensions are
// accepted. An empty name defaults to the file's base name without
// extension.
func (s *Store) LockImage(ctx context.Context, vaultID int64, path, name string) (types.Image, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return types.Image{}, fmt.Errorf("resolving %s: %w", path, err)
	}
	if !lo.Contains(types.DefaultExtensions, strings.ToLower(filepath.Ext(abs))) {
		return types.Image{}, fmt.Errorf("%s: %w", filepath.Base(abs), ErrUnsupportedImage)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return types.Image{}, fmt.Errorf("reading image: %w", err)
	}

	ext := filepath.Ext(abs)
	if name = strings.TrimSpace(name); name == "" {
		name = strings.TrimSuffix(filepath.Base(abs), ext)
	}

	key, err := s.vaultKey(ctx, vaultID)
	if err != nil {
		return types.Image{}, err
	}

	now := time.Now().UTC().Truncate(time.Second)
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO image (vault_id, image_name, image_ext, image_crypt_key, size, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		vaultID, name, strings.ToLower(ext), Encode(key, data), len(data), formatTime(now),
	)
	if err != nil {
		return types.Image{}, fmt.Errorf("inserting image: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return types.Image{}, fmt.Errorf("reading image id: %w", err)
	}

	log.WithField("vault_id", vaultID).WithField("image_id", id).Debugf("locked %s", abs)
	return types.Image{ID: id, VaultID: vaultID, Name: name, CreatedAt: now, Size: int64(len(data))}, nil
}

// ListImages returns the images of a vault ordered by id.
func (s *Store) ListImages(ctx context.Context, vaultID int64) ([]types.Image, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, image_name, size, created_at, last_accessed FROM image WHERE vault_id = ? ORDER BY id`,
		vaultID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing images: %w", err)
	}
	defer rows.Close()

	var images []types.Image
	for rows.Next() {
		var (
			img          types.Image
			createdAt    string
			lastAccessed sql.NullString
		)
		if err := rows.Scan(&img.ID, &img.Name, &img.Size, &createdAt, &lastAccessed); err != nil {
			return nil, fmt.Errorf("scanning image: %w", err)
		}
		img.VaultID = vaultID
		img.CreatedAt = parseTime(createdAt)
		img.LastAccessed = parseTime(lastAccessed.String)
		images = append(images, img)
	}
	return images, rows.Err()
}

// UnlockImage decodes an image of the vault and records the access.
func (s *Store) UnlockImage(ctx context.Context, vaultID, imageID int64) (Unlocked, error) {
	var (
		u         Unlocked
		payload   string
		createdAt string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT image_name, image_ext, image_crypt_key, size, created_at FROM image WHERE vault_id = ? AND id = ?`,
		vaultID, imageID,
	).Scan(&u.Image.Name, &u.Ext, &payload, &u.Image.Size, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Unlocked{}, fmt.Errorf("image %d: %w", imageID, ErrNotFound)
	}
	if err != nil {
		return Unlocked{}, fmt.Errorf("reading image: %w", err)
	}

	key, err := s.vaultKey(ctx, vaultID)
	if err != nil {
		return Unlocked{}, err
	}
	data, err := Decode(key, payload)
	if err != nil {
		return Unlocked{}, fmt.Errorf("image %d: %w", imageID, err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	if _, err := s.db.ExecContext(ctx,
		`UPDATE image SET last_accessed = ? WHERE id = ?`, formatTime(now), imageID,
	); err != nil {
		return Unlocked{}, fmt.Errorf("recording access: %w", err)
	}

	u.Image.ID = imageID
	u.Image.VaultID = vaultID
	u.Image.CreatedAt = parseTime(createdAt)
	u.Image.LastAccessed = now
	u.Data = data
	return u, nil
}

// DeleteImage removes an image from the vault.
func (s *Store) DeleteImage(ctx context.Context, vaultID, imageID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM image WHERE vault_id = ? AND id = ?`, vaultID, imageID)
	if err != nil {
		return fmt.Errorf("deleting image: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting image: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("image %d: %w", imageID, ErrNotFound)
	}
	log.WithField("vault_id", vaultID).WithField("image_id", imageID).Debug("image deleted")
	return nil
}
