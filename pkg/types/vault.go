// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for imagecrypt: the locate
// configuration and the records kept by the vault store.
package types

import "time"

// Vault is a password-gated collection of locked images.
type Vault struct {
	ID        int64     `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// LastLogin is zero until the first login completes.
	LastLogin time.Time `json:"last_login,omitempty" yaml:"last_login,omitempty"`
}

// Session is returned by a successful login.
type Session struct {
	Vault Vault `json:"vault" yaml:"vault"`

	// PreviousLogin is the login recorded before this one (zero on first login).
	PreviousLogin time.Time `json:"previous_login,omitempty" yaml:"previous_login,omitempty"`

	// LoginAt is the time recorded for this login.
	LoginAt time.Time `json:"login_at" yaml:"login_at"`
}

// Image is a locked image record. The encoded payload is never exposed here.
type Image struct {
	ID        int64     `json:"id" yaml:"id"`
	VaultID   int64     `json:"vault_id" yaml:"vault_id"`
	Name      string    `json:"name" yaml:"name"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`

	// LastAccessed is set each time the image is unlocked.
	LastAccessed time.Time `json:"last_accessed,omitempty" yaml:"last_accessed,omitempty"`

	// Size is the decoded size in bytes.
	Size int64 `json:"size" yaml:"size"`
}
