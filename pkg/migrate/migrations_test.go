package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()

	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration file matching %q", pattern)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestVariantsMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "*_create_variants.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS variants",
		"CHECK (on_hand >= 0)",
		"CHECK (allocated >= 0)",
		"CHECK (safety_stock >= 0)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_variants_sku",
		"CREATE TABLE IF NOT EXISTS price_tiers",
		"REFERENCES variants (id) ON DELETE CASCADE",
		"CHECK (min_qty >= 1)",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_price_tiers_variant_min_qty",
		"CREATE TABLE IF NOT EXISTS channel_buffers",
		"PRIMARY KEY (variant_id, channel)",
		"CHECK (buffer_qty >= 0)",
		"DROP TABLE IF EXISTS variants",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestEnumsMigrationDefinesClosedTypes(t *testing.T) {
	content := readMigration(t, "*_create_enums.sql")

	checks := []string{
		"CREATE TYPE lifecycle_state_enum AS ENUM",
		"CREATE TYPE movement_reason_enum AS ENUM",
		"CREATE TYPE channel_type_enum AS ENUM",
		"CREATE TYPE discount_type_enum AS ENUM",
		"CREATE TYPE coupon_usage_type_enum AS ENUM",
		"'order_created'",
		"'order_canceled'",
		"'order_fulfilled'",
		"'manual_adjustment'",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestPromotionsMigrationContainsSchemas(t *testing.T) {
	content := readMigration(t, "*_create_promotions.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS coupons",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_coupons_code",
		"CHECK (usage_count >= 0)",
		"CREATE TABLE IF NOT EXISTS coupon_usages",
		"CREATE UNIQUE INDEX IF NOT EXISTS idx_coupon_usages_coupon_order ON coupon_usages (coupon_id, order_id)",
		"CREATE TABLE IF NOT EXISTS gift_tiers",
		"CREATE TABLE IF NOT EXISTS gift_items",
		"CREATE TABLE IF NOT EXISTS gift_tier_items",
		"PRIMARY KEY (gift_tier_id, gift_item_id)",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestLedgerMigrationIsAppendOnlyShape(t *testing.T) {
	content := readMigration(t, "*_create_ledger_entries.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS ledger_entries",
		"reason movement_reason_enum NOT NULL",
		"on_hand_before INTEGER NOT NULL",
		"allocated_after INTEGER NOT NULL",
		"CREATE INDEX IF NOT EXISTS idx_ledger_entries_variant_created",
		"CREATE INDEX IF NOT EXISTS idx_ledger_entries_reference_id",
		"DROP TABLE IF EXISTS ledger_entries",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
