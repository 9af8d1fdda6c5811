package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/noah-isme/backend-drycleaning/internal/pricing"
)

// ErrStoreUnavailable indicates the database dependency is not configured.
var ErrStoreUnavailable = errors.New("catalog: store unavailable")

// DBTX is the subset of pgxpool.Pool, pgx.Conn and pgx.Tx used by PostgresStore.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore reads and writes the catalog tables.
type PostgresStore struct {
	db DBTX
}

// NewPostgresStore constructs a store backed by a pgx pool or transaction.
func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

const (
	selectPriceItem = `SELECT id, name, category, base_price, black_price, color_price FROM price_list_items`
	selectModifier  = `SELECT code, name, kind, value, category_restrictions, active, sort_order FROM price_modifiers`
	selectDiscount  = `SELECT code, name, percentage, excluded_categories, active, sort_order FROM discounts`
)

// GetByID implements pricing.PriceListLookup.
func (s *PostgresStore) GetByID(ctx context.Context, id uuid.UUID) (pricing.PriceListItemView, error) {
	if s == nil || s.db == nil {
		return pricing.PriceListItemView{}, ErrStoreUnavailable
	}
	item, err := scanPriceItem(s.db.QueryRow(ctx, selectPriceItem+` WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pricing.PriceListItemView{}, pricing.ErrItemNotFound
		}
		return pricing.PriceListItemView{}, fmt.Errorf("select price list item: %w", err)
	}
	return item, nil
}

// GetByCode implements pricing.ModifierCatalog.
func (s *PostgresStore) GetByCode(ctx context.Context, code string) (pricing.ModifierDefinition, error) {
	if s == nil || s.db == nil {
		return pricing.ModifierDefinition{}, ErrStoreUnavailable
	}
	def, err := scanModifier(s.db.QueryRow(ctx, selectModifier+` WHERE code = $1`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return pricing.ModifierDefinition{}, pricing.ErrModifierNotFound
		}
		return pricing.ModifierDefinition{}, fmt.Errorf("select modifier: %w", err)
	}
	return def, nil
}

// GetDiscount implements DiscountReader.
func (s *PostgresStore) GetDiscount(ctx context.Context, code string) (Discount, error) {
	if s == nil || s.db == nil {
		return Discount{}, ErrStoreUnavailable
	}
	d, err := scanDiscount(s.db.QueryRow(ctx, selectDiscount+` WHERE code = $1`, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Discount{}, ErrDiscountNotFound
		}
		return Discount{}, fmt.Errorf("select discount: %w", err)
	}
	return d, nil
}

// ListPriceItems returns price list items ordered by category then name.
func (s *PostgresStore) ListPriceItems(ctx context.Context) ([]pricing.PriceListItemView, error) {
	if s == nil || s.db == nil {
		return nil, ErrStoreUnavailable
	}
	rows, err := s.db.Query(ctx, selectPriceItem+` ORDER BY category, name`)
	if err != nil {
		return nil, fmt.Errorf("list price list items: %w", err)
	}
	defer rows.Close()

	items := make([]pricing.PriceListItemView, 0)
	for rows.Next() {
		item, err := scanPriceItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// ListModifiers returns all modifiers ordered by sort order then code.
func (s *PostgresStore) ListModifiers(ctx context.Context) ([]pricing.ModifierDefinition, error) {
	if s == nil || s.db == nil {
		return nil, ErrStoreUnavailable
	}
	rows, err := s.db.Query(ctx, selectModifier+` ORDER BY sort_order, code`)
	if err != nil {
		return nil, fmt.Errorf("list modifiers: %w", err)
	}
	defer rows.Close()

	defs := make([]pricing.ModifierDefinition, 0)
	for rows.Next() {
		def, err := scanModifier(rows)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, rows.Err()
}

// ListDiscounts returns all discounts ordered by sort order then code.
func (s *PostgresStore) ListDiscounts(ctx context.Context) ([]Discount, error) {
	if s == nil || s.db == nil {
		return nil, ErrStoreUnavailable
	}
	rows, err := s.db.Query(ctx, selectDiscount+` ORDER BY sort_order, code`)
	if err != nil {
		return nil, fmt.Errorf("list discounts: %w", err)
	}
	defer rows.Close()

	out := make([]Discount, 0)
	for rows.Next() {
		d, err := scanDiscount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// UpsertPriceItem implements Writer.
func (s *PostgresStore) UpsertPriceItem(ctx context.Context, item pricing.PriceListItemView) error {
	if s == nil || s.db == nil {
		return ErrStoreUnavailable
	}
	_, err := s.db.Exec(ctx, `INSERT INTO price_list_items (id, name, category, base_price, black_price, color_price)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, category = EXCLUDED.category, base_price = EXCLUDED.base_price,
  black_price = EXCLUDED.black_price, color_price = EXCLUDED.color_price, updated_at = now()`,
		item.ID, item.Name, string(item.Category), item.BasePrice, item.BlackPrice, item.ColorPrice)
	return err
}

// UpsertModifier implements Writer.
func (s *PostgresStore) UpsertModifier(ctx context.Context, def pricing.ModifierDefinition) error {
	if s == nil || s.db == nil {
		return ErrStoreUnavailable
	}
	_, err := s.db.Exec(ctx, `INSERT INTO price_modifiers (code, name, kind, value, category_restrictions, active, sort_order)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, kind = EXCLUDED.kind, value = EXCLUDED.value,
  category_restrictions = EXCLUDED.category_restrictions, active = EXCLUDED.active, sort_order = EXCLUDED.sort_order, updated_at = now()`,
		def.Code, def.Name, string(def.Kind), def.Value, categoryStrings(def.CategoryRestrictions), def.Active, def.SortOrder)
	return err
}

// UpsertDiscount implements Writer.
func (s *PostgresStore) UpsertDiscount(ctx context.Context, d Discount) error {
	if s == nil || s.db == nil {
		return ErrStoreUnavailable
	}
	_, err := s.db.Exec(ctx, `INSERT INTO discounts (code, name, percentage, excluded_categories, active, sort_order)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, percentage = EXCLUDED.percentage,
  excluded_categories = EXCLUDED.excluded_categories, active = EXCLUDED.active, sort_order = EXCLUDED.sort_order, updated_at = now()`,
		d.Code, d.Name, d.Percentage, categoryStrings(d.ExcludedCategories), d.Active, d.SortOrder)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPriceItem(row rowScanner) (pricing.PriceListItemView, error) {
	var (
		item     pricing.PriceListItemView
		category string
		black    *int64
		color    *int64
	)
	if err := row.Scan(&item.ID, &item.Name, &category, &item.BasePrice, &black, &color); err != nil {
		return pricing.PriceListItemView{}, err
	}
	item.Category = pricing.Category(category)
	item.BlackPrice = black
	item.ColorPrice = color
	return item, nil
}

func scanModifier(row rowScanner) (pricing.ModifierDefinition, error) {
	var (
		def          pricing.ModifierDefinition
		kind         string
		restrictions []string
	)
	if err := row.Scan(&def.Code, &def.Name, &kind, &def.Value, &restrictions, &def.Active, &def.SortOrder); err != nil {
		return pricing.ModifierDefinition{}, err
	}
	def.Kind = pricing.ModifierKind(kind)
	def.CategoryRestrictions = toCategories(restrictions)
	return def, nil
}

func scanDiscount(row rowScanner) (Discount, error) {
	var (
		d        Discount
		excluded []string
	)
	if err := row.Scan(&d.Code, &d.Name, &d.Percentage, &excluded, &d.Active, &d.SortOrder); err != nil {
		return Discount{}, err
	}
	d.ExcludedCategories = toCategories(excluded)
	return d, nil
}

// toCategories keeps nil distinct from empty: a NULL column means "use the default".
func toCategories(values []string) []pricing.Category {
	if values == nil {
		return nil
	}
	out := make([]pricing.Category, len(values))
	for i, v := range values {
		out[i] = pricing.Category(v)
	}
	return out
}

func categoryStrings(values []pricing.Category) []string {
	if values == nil {
		return nil
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
