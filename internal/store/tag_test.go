package store

import (
	"testing"

	"github.com/google/uuid"
)

func TestTagStoreFindOrCreate(t *testing.T) {
	db := testDB(t)
	s := NewTagStore(db)

	name := "Streetwear " + uuid.NewString()[:8]

	first, err := s.FindOrCreate(name)
	if err != nil {
		t.Fatalf("FindOrCreate: %v", err)
	}
	t.Cleanup(func() { cleanTags(t, db, first.Slug) })

	if first.Name != name {
		t.Errorf("name: got %q", first.Name)
	}

	// Second call returns the existing row, not a duplicate.
	second, err := s.FindOrCreate(name)
	if err != nil {
		t.Fatalf("FindOrCreate again: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("IDs differ: %s vs %s", first.ID, second.ID)
	}

	all, err := s.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var seen int
	for _, tag := range all {
		if tag.ID == first.ID {
			seen++
		}
	}
	if seen != 1 {
		t.Errorf("tag appears %d times in List", seen)
	}
}
