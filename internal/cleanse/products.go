package cleanse

import (
	"cmp"
	"slices"
	"strings"
	"time"
)

// RawProduct is a row of raw.crm_prd_info.
type RawProduct struct {
	ID        *int64
	Key       *string
	Name      *string
	Cost      *int64
	Line      *string
	StartDate *time.Time
	EndDate   *time.Time
}

// Product is a row of cleansed.crm_prd_info.
type Product struct {
	ID         *int64
	CategoryID *string
	Key        *string
	Name       *string
	Cost       int64
	Line       string
	StartDate  *time.Time
	EndDate    *time.Time
}

func parseProduct(r Record) (RawProduct, error) {
	var p RawProduct
	var err error
	if p.ID, err = r.Int("prd_id"); err != nil {
		return p, err
	}
	if p.Key, err = r.String("prd_key"); err != nil {
		return p, err
	}
	if p.Name, err = r.String("prd_nm"); err != nil {
		return p, err
	}
	if p.Cost, err = r.Int("prd_cost"); err != nil {
		return p, err
	}
	if p.Line, err = r.String("prd_line"); err != nil {
		return p, err
	}
	if p.StartDate, err = r.Time("prd_start_dt"); err != nil {
		return p, err
	}
	p.EndDate, err = r.Time("prd_end_dt")
	return p, err
}

// splitProductKey derives the category id (first five characters, dashes
// replaced by underscores) and the product key (from the seventh character).
func splitProductKey(key *string) (category, product *string) {
	if key == nil {
		return nil, nil
	}
	runes := []rune(*key)
	cat := strings.ReplaceAll(string(runes[:min(5, len(runes))]), "-", "_")
	rest := ""
	if len(runes) > 6 {
		rest = string(runes[6:])
	}
	return &cat, &rest
}

// CleanProducts standardizes products and derives each record's end date
// from the next start date of the same product key. Within a key, records
// are ordered by start date (nulls first), then id, then the remaining
// cleansed fields, so only identical records tie. The latest record of a
// key has a null end date.
func CleanProducts(raw []RawProduct) []Product {
	out := make([]Product, len(raw))
	for i, p := range raw {
		category, key := splitProductKey(p.Key)
		cost := int64(0)
		if p.Cost != nil {
			cost = *p.Cost
		}
		out[i] = Product{
			ID:         p.ID,
			CategoryID: category,
			Key:        key,
			Name:       trim(p.Name),
			Cost:       cost,
			Line:       productLines.label(p.Line),
			StartDate:  truncateDate(p.StartDate),
		}
	}

	slices.SortFunc(out, func(a, b Product) int {
		if c := compareString(a.Key, b.Key); c != 0 {
			return c
		}
		if c := compareTime(a.StartDate, b.StartDate); c != 0 {
			return c
		}
		if c := compareInt(a.ID, b.ID); c != 0 {
			return c
		}
		if c := compareString(a.CategoryID, b.CategoryID); c != 0 {
			return c
		}
		if c := compareString(a.Name, b.Name); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Cost, b.Cost); c != 0 {
			return c
		}
		return strings.Compare(a.Line, b.Line)
	})

	for i := range out {
		if i+1 == len(out) || compareString(out[i].Key, out[i+1].Key) != 0 {
			continue
		}
		if next := out[i+1].StartDate; next != nil {
			end := next.AddDate(0, 0, -1)
			out[i].EndDate = &end
		}
	}
	return out
}

func (p Product) values(loadedAt time.Time) []any {
	return []any{
		nullable(p.ID),
		nullable(p.CategoryID),
		nullable(p.Key),
		nullable(p.Name),
		p.Cost,
		p.Line,
		nullable(p.StartDate),
		nullable(p.EndDate),
		loadedAt,
	}
}
