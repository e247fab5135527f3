package catalog

import "testing"

func TestNewSchema_ComputesOffsets(t *testing.T) {
	s := NewSchema([]Column{
		NewInt32Column("id"),
		NewVarcharColumn("name"),
		NewInt32Column("age"),
	})

	if s.GetColumn(0).Offset != 0 {
		t.Fatalf("id offset = %d, want 0", s.GetColumn(0).Offset)
	}
	wantNameOffset := uint32(4)
	if s.GetColumn(1).Offset != wantNameOffset {
		t.Fatalf("name offset = %d, want %d", s.GetColumn(1).Offset, wantNameOffset)
	}
	wantAgeOffset := wantNameOffset + (4 + VarcharMaxLen)
	if s.GetColumn(2).Offset != wantAgeOffset {
		t.Fatalf("age offset = %d, want %d", s.GetColumn(2).Offset, wantAgeOffset)
	}
	if s.Length() != wantAgeOffset+4 {
		t.Fatalf("schema length = %d, want %d", s.Length(), wantAgeOffset+4)
	}
}

func TestSchema_GetColIdx(t *testing.T) {
	s := NewSchema([]Column{NewInt32Column("id"), NewVarcharColumn("name")})

	idx, err := s.GetColIdx("name")
	if err != nil || idx != 1 {
		t.Fatalf("GetColIdx(name) = (%d, %v), want (1, nil)", idx, err)
	}

	if _, err := s.GetColIdx("nope"); err == nil {
		t.Fatal("expected error for unknown column")
	}
}
