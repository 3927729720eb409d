package cleanse

import (
	"strings"
	"time"
)

// RawDemographic is a row of raw.erp_cust_az12.
type RawDemographic struct {
	CID       *string
	BirthDate *time.Time
	Gender    *string
}

// Demographic is a row of cleansed.erp_cust_az12.
type Demographic struct {
	CID       *string
	BirthDate *time.Time
	Gender    string
}

func parseDemographic(r Record) (RawDemographic, error) {
	var d RawDemographic
	var err error
	if d.CID, err = r.String("cid"); err != nil {
		return d, err
	}
	if d.BirthDate, err = r.Time("bdate"); err != nil {
		return d, err
	}
	d.Gender, err = r.String("gen")
	return d, err
}

// CleanDemographic strips the NAS prefix from the customer id, nulls birth
// dates later than now and maps gender codes.
func CleanDemographic(d RawDemographic, now time.Time) Demographic {
	var cid *string
	if d.CID != nil {
		s := strings.TrimPrefix(*d.CID, "NAS")
		cid = &s
	}
	bdate := truncateDate(d.BirthDate)
	if bdate != nil && bdate.After(now) {
		bdate = nil
	}
	return Demographic{
		CID:       cid,
		BirthDate: bdate,
		Gender:    demographicGenders.label(d.Gender),
	}
}

func (d Demographic) values(loadedAt time.Time) []any {
	return []any{nullable(d.CID), nullable(d.BirthDate), d.Gender, loadedAt}
}

// RawLocation is a row of raw.erp_loc_a101.
type RawLocation struct {
	CID     *string
	Country *string
}

// Location is a row of cleansed.erp_loc_a101.
type Location struct {
	CID     *string
	Country string
}

func parseLocation(r Record) (RawLocation, error) {
	var l RawLocation
	var err error
	if l.CID, err = r.String("cid"); err != nil {
		return l, err
	}
	l.Country, err = r.String("cntry")
	return l, err
}

// CleanLocation removes dashes from the customer id and standardizes the
// country. Unknown non-blank countries pass through trimmed.
func CleanLocation(l RawLocation) Location {
	var cid *string
	if l.CID != nil {
		s := strings.ReplaceAll(*l.CID, "-", "")
		cid = &s
	}
	return Location{CID: cid, Country: country(l.Country)}
}

func country(raw *string) string {
	t := trim(raw)
	if t == nil || *t == "" {
		return NotAvailable
	}
	if name, ok := countries[fold(*t)]; ok {
		return name
	}
	return *t
}

func (l Location) values(loadedAt time.Time) []any {
	return []any{nullable(l.CID), l.Country, loadedAt}
}

// Category is a row of both raw and cleansed erp_px_cat_g1v2.
type Category struct {
	ID          *string
	Category    *string
	Subcategory *string
	Maintenance *string
}

func parseCategory(r Record) (Category, error) {
	var c Category
	var err error
	if c.ID, err = r.String("id"); err != nil {
		return c, err
	}
	if c.Category, err = r.String("cat"); err != nil {
		return c, err
	}
	if c.Subcategory, err = r.String("subcat"); err != nil {
		return c, err
	}
	c.Maintenance, err = r.String("maintenance")
	return c, err
}

func (c Category) values(loadedAt time.Time) []any {
	return []any{
		nullable(c.ID),
		nullable(c.Category),
		nullable(c.Subcategory),
		nullable(c.Maintenance),
		loadedAt,
	}
}
