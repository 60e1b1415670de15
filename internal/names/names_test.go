package names

import (
	"context"
	"testing"

	apperrors "github.com/heavyhelms/playerindex/internal/platform/errors"
	"github.com/heavyhelms/playerindex/internal/storage"
)

type fakeNameStore struct {
	names map[string]string
	fail  error
}

func (f *fakeNameStore) GetName(_ context.Context, key string) (storage.Name, error) {
	if f.fail != nil {
		return storage.Name{}, f.fail
	}
	value, ok := f.names[key]
	if !ok {
		return storage.Name{}, storage.ErrNotFound
	}
	return storage.Name{Key: key, Value: value}, nil
}

func (f *fakeNameStore) PutName(_ context.Context, name storage.Name) error {
	f.names[name.Key] = name.Value
	return nil
}

func TestFirstNameKeySplitsByReservedFloor(t *testing.T) {
	tests := []struct {
		index uint16
		want  string
	}{
		{index: 0, want: "1-0"},
		{index: 999, want: "1-999"},
		{index: 1000, want: "0-1000"},
		{index: 1042, want: "0-1042"},
	}
	for _, tt := range tests {
		if got := FirstNameKey(tt.index); got != tt.want {
			t.Fatalf("FirstNameKey(%d) = %s, want %s", tt.index, got, tt.want)
		}
	}
}

func TestSurnameKey(t *testing.T) {
	if got := SurnameKey(77); got != "2-77" {
		t.Fatalf("SurnameKey(77) = %s, want 2-77", got)
	}
}

func TestResolveBothHalves(t *testing.T) {
	resolver := NewResolver(&fakeNameStore{names: map[string]string{
		"0-1042": "Ragnar",
		"2-77":   "the Bold",
	}})

	parts, err := resolver.Resolve(context.Background(), 1042, 77)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	want := Parts{FirstName: "Ragnar", Surname: "the Bold", FullName: "Ragnar the Bold"}
	if parts != want {
		t.Fatalf("Resolve() = %+v, want %+v", parts, want)
	}
}

func TestResolvePartialMissLeavesFullNameUnset(t *testing.T) {
	resolver := NewResolver(&fakeNameStore{names: map[string]string{
		"1-5": "Brynhild",
	}})

	parts, err := resolver.Resolve(context.Background(), 5, 9999)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if parts.FirstName != "Brynhild" || parts.Surname != "" || parts.FullName != "" {
		t.Fatalf("Resolve() = %+v, want first name only", parts)
	}
}

func TestResolveTotalMissIsNotAnError(t *testing.T) {
	resolver := NewResolver(&fakeNameStore{names: map[string]string{}})

	parts, err := resolver.Resolve(context.Background(), 1, 2)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if parts != (Parts{}) {
		t.Fatalf("Resolve() = %+v, want empty parts", parts)
	}
}

func TestResolvePropagatesStoreFailure(t *testing.T) {
	resolver := NewResolver(&fakeNameStore{
		fail: apperrors.New(apperrors.CodeStorageUnavailable, "database is locked"),
	})

	if _, err := resolver.Resolve(context.Background(), 1, 2); err == nil {
		t.Fatalf("Resolve() error = nil, want store failure")
	}
}
