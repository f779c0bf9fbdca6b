package gameid

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	id := Generate()

	if len(id) != Length {
		t.Errorf("expected %d characters, got %d", Length, len(id))
	}

	if err := Validate(id); err != nil {
		t.Errorf("generated ID failed validation: %v", err)
	}
}

func TestGenerateUnique(t *testing.T) {
	ids := make(map[string]bool)

	for i := 0; i < 1000; i++ {
		id := Generate()
		if ids[id] {
			t.Errorf("duplicate ID generated: %s", id)
		}
		ids[id] = true
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{
			name:    "valid ID",
			id:      "01h5n0et5q",
			wantErr: false,
		},
		{
			name:    "too short",
			id:      "01h5n",
			wantErr: true,
		},
		{
			name:    "too long",
			id:      "01h5n0et5q6m",
			wantErr: true,
		},
		{
			name:    "invalid character",
			id:      "01h5n0et5i",
			wantErr: true,
		},
		{
			name:    "uppercase not allowed",
			id:      "01H5N0ET5Q",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.id)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestAlphabet(t *testing.T) {
	if len(alphabet) != 32 {
		t.Errorf("alphabet should have 32 characters, got %d", len(alphabet))
	}

	seen := make(map[rune]bool)
	for _, char := range alphabet {
		if seen[char] {
			t.Errorf("duplicate character in alphabet: %c", char)
		}
		seen[char] = true
	}

	for _, char := range "ilou" {
		if strings.ContainsRune(alphabet, char) {
			t.Errorf("alphabet should not contain %c", char)
		}
	}
}

// MockRandSource for deterministic testing
type MockRandSource struct {
	values []int
	index  int
}

func NewMockRandSource(values ...int) *MockRandSource {
	return &MockRandSource{values: values}
}

func (m *MockRandSource) IntN(n int) int {
	if m.index >= len(m.values) {
		return 0
	}
	val := m.values[m.index] % n
	m.index++
	return val
}

func TestGeneratorDeterministic(t *testing.T) {
	values := []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}

	id1 := NewGenerator(NewMockRandSource(values...)).Generate()
	id2 := NewGenerator(NewMockRandSource(values...)).Generate()

	if id1 != id2 {
		t.Errorf("same random source should give the same ID: %s != %s", id1, id2)
	}
	if id1 != "123456789a" {
		t.Errorf("unexpected ID %s", id1)
	}
}
