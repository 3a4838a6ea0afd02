package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"unicode"

	"github.com/nimbuscommerce/catalogsync/internal/core"
)

// SearchFilters selects which fields a Search call matches against. The
// zero value defaults to name+sku+upc, per §4.2.
type SearchFilters struct {
	Name     bool
	SKU      bool
	UPC      bool
	Category bool
	CaseUPC  bool
}

func (f SearchFilters) orDefault() SearchFilters {
	if f.Name || f.SKU || f.UPC || f.Category || f.CaseUPC {
		return f
	}
	return SearchFilters{Name: true, SKU: true, UPC: true}
}

// tokenize lowercases s and splits on whitespace and -_,.:/\, dropping
// empties and duplicates, per §4.2's tokenization rule.
func tokenize(s string) []string {
	lower := strings.ToLower(s)
	parts := strings.FieldsFunc(lower, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(`-_,.:/\`, r)
	})

	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// matchesTokens implements the multi-token AND / single-token substring
// rule: a multi-token query matches only if every token is a substring of
// target (order-independent); a single-token query uses plain substring
// match.
func matchesTokens(target string, tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	lower := strings.ToLower(target)
	if len(tokens) == 1 {
		return strings.Contains(lower, tokens[0])
	}
	for _, t := range tokens {
		if !strings.Contains(lower, t) {
			return false
		}
	}
	return true
}

// Search implements §4.2's primitive filtered lookup: substring/AND-token
// matching against item names, variation SKUs/UPCs, and category names,
// tagging each hit with the field that matched.
func (s *Store) Search(ctx context.Context, tx *Tx, term string, filters SearchFilters, limit int) ([]core.MatchRow, error) {
	tokens := tokenize(term)
	if len(tokens) == 0 {
		return nil, nil
	}
	filters = filters.orDefault()

	var results []core.MatchRow
	fits := func() bool { return limit > 0 && len(results) >= limit }

	if filters.Name && !fits() {
		rows, err := s.conn(tx).QueryContext(ctx, `SELECT id, name FROM items WHERE is_deleted=0`)
		if err != nil {
			return nil, fmt.Errorf("search by name: %w", err)
		}
		for rows.Next() {
			var id, name string
			if err := rows.Scan(&id, &name); err != nil {
				rows.Close()
				return nil, err
			}
			if matchesTokens(name, tokens) {
				results = append(results, core.MatchRow{ItemID: id, MatchType: core.MatchName, MatchContext: name})
				if fits() {
					break
				}
			}
		}
		rows.Close()
	}

	if filters.SKU && !fits() {
		if err := s.searchVariationField(ctx, tx, "sku", core.MatchSKU, tokens, limit, &results); err != nil {
			return nil, err
		}
	}

	if filters.UPC && !fits() {
		if err := s.searchVariationField(ctx, tx, "upc", core.MatchBarcode, tokens, limit, &results); err != nil {
			return nil, err
		}
	}

	if filters.Category && !fits() {
		rows, err := s.conn(tx).QueryContext(ctx, `
			SELECT i.id, c.name FROM items i
			JOIN categories c ON c.id = i.category_id
			WHERE i.is_deleted=0 AND c.is_deleted=0`)
		if err != nil {
			return nil, fmt.Errorf("search by category: %w", err)
		}
		for rows.Next() {
			var id, name string
			if err := rows.Scan(&id, &name); err != nil {
				rows.Close()
				return nil, err
			}
			if matchesTokens(name, tokens) {
				results = append(results, core.MatchRow{ItemID: id, MatchType: core.MatchCategory, MatchContext: name})
				if fits() {
					break
				}
			}
		}
		rows.Close()
	}

	if filters.CaseUPC && !fits() {
		items, err := s.ItemsByCaseUPC(ctx, tx, term)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			results = append(results, core.MatchRow{ItemID: item.ID, MatchType: core.MatchBarcode, MatchContext: term})
			if fits() {
				break
			}
		}
	}

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *Store) searchVariationField(ctx context.Context, tx *Tx, column string, matchType core.MatchKind, tokens []string, limit int, results *[]core.MatchRow) error {
	query := fmt.Sprintf(`SELECT item_id, id, %s FROM item_variations WHERE is_deleted=0 AND %s IS NOT NULL`, column, column)
	rows, err := s.conn(tx).QueryContext(ctx, query)
	if err != nil {
		return fmt.Errorf("search by %s: %w", column, err)
	}
	defer rows.Close()

	for rows.Next() {
		var itemID, variationID string
		var value sql.NullString
		if err := rows.Scan(&itemID, &variationID, &value); err != nil {
			return err
		}
		if !value.Valid {
			continue
		}
		if matchesTokens(value.String, tokens) {
			vID := variationID
			*results = append(*results, core.MatchRow{ItemID: itemID, VariationID: &vID, MatchType: matchType, MatchContext: value.String})
			if limit > 0 && len(*results) >= limit {
				return nil
			}
		}
	}
	return rows.Err()
}
