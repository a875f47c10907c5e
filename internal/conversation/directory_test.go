package conversation

import (
	"testing"
	"time"
)

func TestDirectoryLastWriteWins(t *testing.T) {
	d := NewDirectory()
	if d.Put(ContactRecord{ID: "rec1", Fields: ContactFields{Name: "Old", Phone: "+1555"}}) {
		t.Error("first Put reported a replacement")
	}
	d.Put(ContactRecord{ID: "rec2", Fields: ContactFields{Name: "Bob", Phone: "+1666"}})
	if !d.Put(ContactRecord{ID: "rec3", Fields: ContactFields{Name: "New", Phone: "+1555"}}) {
		t.Error("duplicate Put did not report a replacement")
	}

	rec, ok := d.Get("+1555")
	if !ok || rec.ID != "rec3" || rec.Fields.Name != "New" {
		t.Errorf("Get(+1555) = %+v, want rec3", rec)
	}
	if d.Len() != 2 {
		t.Errorf("Len() = %d, want 2", d.Len())
	}
	phones := d.Phones()
	if len(phones) != 2 || phones[0] != "+1555" || phones[1] != "+1666" {
		t.Errorf("Phones() = %v, want first-seen order", phones)
	}
}

func TestDirectoryPhonesIsCopy(t *testing.T) {
	d := DirectoryOf(ContactRecord{Fields: ContactFields{Phone: "+1555"}})
	p := d.Phones()
	p[0] = "mutated"
	if !d.Has("+1555") || d.Phones()[0] != "+1555" {
		t.Error("Phones() exposed internal order slice")
	}
}

func TestNilDirectory(t *testing.T) {
	var d *Directory
	if d.Len() != 0 || d.Has("+1555") || d.Phones() != nil {
		t.Error("nil directory is not empty")
	}
}

func TestMergeUsesLastWriteForDuplicatePhones(t *testing.T) {
	dir := DirectoryOf(
		ContactRecord{ID: "first", Fields: ContactFields{Name: "First", Phone: "+1555"}},
		ContactRecord{ID: "second", Fields: ContactFields{Name: "Second", Phone: "+1555"}},
	)

	got := Merge(nil, dir, "+1000")
	if len(got) != 1 {
		t.Fatalf("got %d conversations, want 1", len(got))
	}
	if got[0].Contact.ID != "second" {
		t.Errorf("contact = %s, want second", got[0].Contact.ID)
	}
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2010, 8, 18, 20, 1, 40, 0, time.UTC)
	for _, in := range []string{
		"Wed, 18 Aug 2010 20:01:40 +0000",
		"Wed, 18 Aug 2010 20:01:40 UTC",
		"2010-08-18T20:01:40Z",
		"2010-08-18T20:01:40.000Z",
		"  2010-08-18T22:01:40+02:00 ",
	} {
		got, err := ParseTimestamp(in)
		if err != nil {
			t.Errorf("ParseTimestamp(%q) error = %v", in, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("ParseTimestamp(%q) = %v, want %v", in, got, want)
		}
	}

	for _, in := range []string{"", "yesterday", "18/08/2010"} {
		if _, err := ParseTimestamp(in); err == nil {
			t.Errorf("ParseTimestamp(%q) expected error", in)
		}
	}
}
