package conversation

// Directory indexes contact records by phone number. Iteration follows the
// order in which each phone was first seen. Putting a record whose phone is
// already present replaces the stored record in place (last write wins).
type Directory struct {
	order   []string
	records map[string]ContactRecord
}

// NewDirectory returns an empty directory.
func NewDirectory() *Directory {
	return &Directory{records: make(map[string]ContactRecord)}
}

// DirectoryOf builds a directory from records in order.
func DirectoryOf(records ...ContactRecord) *Directory {
	d := NewDirectory()
	for _, r := range records {
		d.Put(r)
	}
	return d
}

// Put indexes rec under rec.Fields.Phone and reports whether it replaced an
// earlier record with the same phone.
func (d *Directory) Put(rec ContactRecord) bool {
	phone := rec.Fields.Phone
	_, replaced := d.records[phone]
	if !replaced {
		d.order = append(d.order, phone)
	}
	d.records[phone] = rec
	return replaced
}

// Get returns the record for phone.
func (d *Directory) Get(phone string) (ContactRecord, bool) {
	if d == nil {
		return ContactRecord{}, false
	}
	rec, ok := d.records[phone]
	return rec, ok
}

// Has reports whether phone is a registered contact.
func (d *Directory) Has(phone string) bool {
	_, ok := d.Get(phone)
	return ok
}

// Len returns the number of distinct phones.
func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.order)
}

// Phones returns the indexed phones in first-seen order.
func (d *Directory) Phones() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}
