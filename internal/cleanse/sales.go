package cleanse

import "time"

// RawSale is a row of raw.crm_sales_details. Dates are YYYYMMDD integers.
type RawSale struct {
	OrderNumber *string
	ProductKey  *string
	CustomerID  *int64
	OrderDate   *int64
	ShipDate    *int64
	DueDate     *int64
	Sales       *int64
	Quantity    *int64
	Price       *int64
}

// Sale is a row of cleansed.crm_sales_details.
type Sale struct {
	OrderNumber *string
	ProductKey  *string
	CustomerID  *int64
	OrderDate   *time.Time
	ShipDate    *time.Time
	DueDate     *time.Time
	Sales       *int64
	Quantity    *int64
	Price       *int64
}

func parseSale(r Record) (RawSale, error) {
	var s RawSale
	var err error
	if s.OrderNumber, err = r.String("sls_ord_num"); err != nil {
		return s, err
	}
	if s.ProductKey, err = r.String("sls_prd_key"); err != nil {
		return s, err
	}
	if s.CustomerID, err = r.Int("sls_cust_id"); err != nil {
		return s, err
	}
	if s.OrderDate, err = r.Int("sls_order_dt"); err != nil {
		return s, err
	}
	if s.ShipDate, err = r.Int("sls_ship_dt"); err != nil {
		return s, err
	}
	if s.DueDate, err = r.Int("sls_due_dt"); err != nil {
		return s, err
	}
	if s.Sales, err = r.Int("sls_sales"); err != nil {
		return s, err
	}
	if s.Quantity, err = r.Int("sls_quantity"); err != nil {
		return s, err
	}
	s.Price, err = r.Int("sls_price")
	return s, err
}

// CleanSale converts compact dates and repairs amounts.
//
// A missing or non-positive price becomes |sales| / quantity (integer
// division, null when quantity is zero or either input is null). A
// missing or non-positive sales amount, or one that differs from
// quantity * |price|, becomes quantity * |raw price|.
func CleanSale(s RawSale) Sale {
	return Sale{
		OrderNumber: s.OrderNumber,
		ProductKey:  s.ProductKey,
		CustomerID:  s.CustomerID,
		OrderDate:   compactDate(s.OrderDate),
		ShipDate:    compactDate(s.ShipDate),
		DueDate:     compactDate(s.DueDate),
		Sales:       repairSales(s.Sales, s.Quantity, s.Price),
		Quantity:    s.Quantity,
		Price:       repairPrice(s.Price, s.Sales, s.Quantity),
	}
}

// CleanSales applies CleanSale to every row, keeping input order.
func CleanSales(raw []RawSale) []Sale {
	out := make([]Sale, len(raw))
	for i, s := range raw {
		out[i] = CleanSale(s)
	}
	return out
}

func repairPrice(price, sales, qty *int64) *int64 {
	if price != nil && *price > 0 {
		return price
	}
	if sales == nil || qty == nil || *qty == 0 {
		return nil
	}
	p := abs(*sales) / *qty
	return &p
}

// repairSales keeps a positive amount unless it is known to disagree with
// quantity * |price|. With a null quantity or price the check is unknown
// and the amount is kept.
func repairSales(sales, qty, price *int64) *int64 {
	var expected *int64
	if qty != nil && price != nil {
		e := *qty * abs(*price)
		expected = &e
	}
	if sales != nil && *sales > 0 && (expected == nil || *sales == *expected) {
		return sales
	}
	return expected
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}
	return n
}

func (s Sale) values(loadedAt time.Time) []any {
	return []any{
		nullable(s.OrderNumber),
		nullable(s.ProductKey),
		nullable(s.CustomerID),
		nullable(s.OrderDate),
		nullable(s.ShipDate),
		nullable(s.DueDate),
		nullable(s.Sales),
		nullable(s.Quantity),
		nullable(s.Price),
		loadedAt,
	}
}
