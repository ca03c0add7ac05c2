package catalog

// Catalog is an immutable, ordered set of records. It is safe for concurrent
// readers once constructed.
type Catalog struct {
	records []Record
	tokens  [][]string
}

// New builds a catalog from records, preserving their order. Row token sets
// are computed once here so lookups only tokenize the query.
func New(records []Record) *Catalog {
	c := &Catalog{
		records: make([]Record, len(records)),
		tokens:  make([][]string, len(records)),
	}
	copy(c.records, records)
	for i, r := range c.records {
		c.tokens[i] = uniqueTokens(r.WineName)
	}
	return c
}

// Len returns the number of records.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.records)
}

// At returns the i-th record in load order.
func (c *Catalog) At(i int) Record {
	return c.records[i]
}
