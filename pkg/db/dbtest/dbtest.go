// Package dbtest opens throwaway in-memory SQLite databases for repository
// and service tests. The schema mirrors the goose migrations; SQLite cannot
// evaluate the Postgres column defaults in the model tags, so tables are
// created with explicit DDL and tests assign IDs themselves.
package dbtest

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var schema = []string{
	`CREATE TABLE variants (
		id text PRIMARY KEY,
		sku text NOT NULL UNIQUE,
		name text NOT NULL,
		size text,
		color text,
		pack_type text,
		on_hand integer NOT NULL DEFAULT 0,
		allocated integer NOT NULL DEFAULT 0,
		safety_stock integer NOT NULL DEFAULT 0,
		low_stock_threshold integer NOT NULL DEFAULT 0,
		state text NOT NULL DEFAULT 'active',
		created_at datetime,
		updated_at datetime
	)`,
	`CREATE TABLE price_tiers (
		id text PRIMARY KEY,
		variant_id text NOT NULL,
		min_qty integer NOT NULL,
		unit_price numeric NOT NULL,
		created_at datetime
	)`,
	`CREATE TABLE channel_buffers (
		variant_id text NOT NULL,
		channel text NOT NULL,
		buffer_qty integer NOT NULL DEFAULT 0,
		updated_at datetime,
		PRIMARY KEY (variant_id, channel)
	)`,
	`CREATE TABLE ledger_entries (
		id text PRIMARY KEY,
		variant_id text NOT NULL,
		sku text NOT NULL,
		reason text NOT NULL,
		channel text,
		on_hand_before integer NOT NULL,
		on_hand_after integer NOT NULL,
		on_hand_change integer NOT NULL,
		allocated_before integer NOT NULL,
		allocated_after integer NOT NULL,
		allocated_change integer NOT NULL,
		reference_id text,
		reference_type text,
		notes text,
		created_by text,
		created_at datetime
	)`,
	`CREATE TABLE coupons (
		id text PRIMARY KEY,
		code text NOT NULL UNIQUE,
		discount_type text NOT NULL,
		discount_value numeric NOT NULL,
		usage_type text NOT NULL,
		usage_limit integer,
		usage_count integer NOT NULL DEFAULT 0,
		minimum_order_amount numeric NOT NULL DEFAULT 0,
		maximum_discount_amount numeric,
		expires_at datetime,
		state text NOT NULL DEFAULT 'active',
		created_at datetime,
		updated_at datetime
	)`,
	`CREATE TABLE coupon_usages (
		id text PRIMARY KEY,
		coupon_id text NOT NULL,
		user_id text,
		order_id text NOT NULL,
		discount_applied numeric NOT NULL,
		order_total numeric NOT NULL,
		used_at datetime,
		UNIQUE (coupon_id, order_id)
	)`,
	`CREATE TABLE gift_tiers (
		id text PRIMARY KEY,
		name text NOT NULL,
		spending_threshold numeric NOT NULL,
		gift_limit integer NOT NULL DEFAULT 1,
		state text NOT NULL DEFAULT 'active',
		created_at datetime,
		updated_at datetime
	)`,
	`CREATE TABLE gift_items (
		id text PRIMARY KEY,
		name text NOT NULL,
		stock_quantity integer NOT NULL DEFAULT 0,
		state text NOT NULL DEFAULT 'active',
		created_at datetime,
		updated_at datetime
	)`,
	`CREATE TABLE gift_tier_items (
		gift_tier_id text NOT NULL,
		gift_item_id text NOT NULL,
		PRIMARY KEY (gift_tier_id, gift_item_id)
	)`,
	`CREATE TABLE channel_mappings (
		id text PRIMARY KEY,
		channel text NOT NULL,
		external_sku text NOT NULL,
		variant_id text NOT NULL,
		state text NOT NULL DEFAULT 'active',
		created_at datetime,
		updated_at datetime,
		UNIQUE (channel, external_sku)
	)`,
}

// Open returns an isolated in-memory database with the full schema applied.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:dbtest_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("apply test schema: %v", err)
		}
	}
	return db
}

// TxRunner adapts a raw test connection to the transaction-runner surface the
// services expect from the db client.
type TxRunner struct {
	DB *gorm.DB
}

// WithTx runs fn inside a transaction on the test connection.
func (r TxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.DB.WithContext(ctx).Transaction(fn)
}
