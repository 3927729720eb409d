package cleanse

import (
	"slices"
	"time"
)

// RawCustomer is a row of raw.crm_cust_info.
type RawCustomer struct {
	ID            *int64
	Key           *string
	FirstName     *string
	LastName      *string
	MaritalStatus *string
	Gender        *string
	CreateDate    *time.Time
}

// Customer is a row of cleansed.crm_cust_info.
type Customer struct {
	ID            int64
	Key           *string
	FirstName     *string
	LastName      *string
	MaritalStatus string
	Gender        string
	CreateDate    *time.Time
}

func parseCustomer(r Record) (RawCustomer, error) {
	var c RawCustomer
	var err error
	if c.ID, err = r.Int("cst_id"); err != nil {
		return c, err
	}
	if c.Key, err = r.String("cst_key"); err != nil {
		return c, err
	}
	if c.FirstName, err = r.String("cst_firstname"); err != nil {
		return c, err
	}
	if c.LastName, err = r.String("cst_lastname"); err != nil {
		return c, err
	}
	if c.MaritalStatus, err = r.String("cst_marital_status"); err != nil {
		return c, err
	}
	if c.Gender, err = r.String("cst_gndr"); err != nil {
		return c, err
	}
	c.CreateDate, err = r.Time("cst_create_date")
	return c, err
}

// CleanCustomers standardizes every row and keeps the most recently
// created one per customer id. Rows without an id are dropped. The result
// is ordered by id and does not depend on input order.
func CleanCustomers(raw []RawCustomer) []Customer {
	latest := make(map[int64]Customer, len(raw))
	for _, r := range raw {
		if r.ID == nil {
			continue
		}
		c := cleanCustomer(r)
		if cur, ok := latest[c.ID]; !ok || compareCustomers(c, cur) > 0 {
			latest[c.ID] = c
		}
	}

	out := make([]Customer, 0, len(latest))
	for _, c := range latest {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b Customer) int { return compareInt(&a.ID, &b.ID) })
	return out
}

// cleanCustomer trims the name fields and maps the coded ones. The key is
// kept as loaded since the curated joins match it against ERP ids.
func cleanCustomer(c RawCustomer) Customer {
	return Customer{
		ID:            *c.ID,
		Key:           c.Key,
		FirstName:     trim(c.FirstName),
		LastName:      trim(c.LastName),
		MaritalStatus: maritalStatuses.label(c.MaritalStatus),
		Gender:        customerGenders.label(c.Gender),
		CreateDate:    truncateDate(c.CreateDate),
	}
}

// compareCustomers orders cleansed candidates for the same id: later
// creation date wins, then the greatest key and text fields. Null dates
// sort lowest. Zero means the candidates are identical.
func compareCustomers(a, b Customer) int {
	if c := compareTime(a.CreateDate, b.CreateDate); c != 0 {
		return c
	}
	for _, pair := range [][2]*string{
		{a.Key, b.Key},
		{a.FirstName, b.FirstName},
		{a.LastName, b.LastName},
		{&a.MaritalStatus, &b.MaritalStatus},
		{&a.Gender, &b.Gender},
	} {
		if c := compareString(pair[0], pair[1]); c != 0 {
			return c
		}
	}
	return 0
}

func (c Customer) values(loadedAt time.Time) []any {
	return []any{
		c.ID,
		nullable(c.Key),
		nullable(c.FirstName),
		nullable(c.LastName),
		c.MaritalStatus,
		c.Gender,
		nullable(c.CreateDate),
		loadedAt,
	}
}
