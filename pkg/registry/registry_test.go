package registry

import (
	"testing"
)

type testItem struct {
	ID   string
	Name string
}

func TestBaseRegistry_Register(t *testing.T) {
	reg := NewBaseRegistry[testItem]()

	tests := []struct {
		name    string
		key     string
		item    testItem
		wantErr bool
	}{
		{
			name:    "register valid item",
			key:     "item-1",
			item:    testItem{ID: "item-1", Name: "Item 1"},
			wantErr: false,
		},
		{
			name:    "register item with empty name",
			key:     "",
			item:    testItem{Name: "unnamed"},
			wantErr: true,
		},
		{
			name:    "register duplicate item",
			key:     "item-1",
			item:    testItem{ID: "item-1", Name: "Item 1 again"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := reg.Register(tt.key, tt.item)
			if (err != nil) != tt.wantErr {
				t.Errorf("Register() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestBaseRegistry_Get(t *testing.T) {
	reg := NewBaseRegistry[testItem]()

	if err := reg.Register("item-1", testItem{ID: "item-1"}); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if _, ok := reg.Get("item-1"); !ok {
		t.Error("Get() did not find registered item")
	}
	if _, ok := reg.Get("missing"); ok {
		t.Error("Get() found item that was never registered")
	}
}

func TestBaseRegistry_ListIsSorted(t *testing.T) {
	reg := NewBaseRegistry[testItem]()

	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := reg.Register(name, testItem{ID: name}); err != nil {
			t.Fatalf("Register(%s) error = %v", name, err)
		}
	}

	names := reg.Names()
	want := []string{"alpha", "mid", "zeta"}
	for i, name := range want {
		if names[i] != name {
			t.Errorf("Names()[%d] = %s, want %s", i, names[i], name)
		}
	}

	items := reg.List()
	if len(items) != 3 {
		t.Fatalf("List() returned %d items, want 3", len(items))
	}
	for i, name := range want {
		if items[i].ID != name {
			t.Errorf("List()[%d].ID = %s, want %s", i, items[i].ID, name)
		}
	}

	if reg.Count() != 3 {
		t.Errorf("Count() = %d, want 3", reg.Count())
	}
}
