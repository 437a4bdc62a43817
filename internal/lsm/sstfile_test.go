package lsm

import (
	"testing"

	"github.com/hummockdb/compactsel/internal/checksum"
)

func TestSstFileOverlaps(t *testing.T) {
	f := &SstFile{Smallest: FixtureKey(10), Largest: FixtureKey(20)}

	cases := []struct {
		name        string
		begin, end  []byte
		wantOverlap bool
	}{
		{"fully contained", FixtureKey(5), FixtureKey(25), true},
		{"touches left edge", nil, FixtureKey(10), true},
		{"touches right edge", FixtureKey(20), nil, true},
		{"strictly left", nil, FixtureKey(5), false},
		{"strictly right", FixtureKey(25), nil, false},
		{"unbounded", nil, nil, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := f.Overlaps(tc.begin, tc.end); got != tc.wantOverlap {
				t.Errorf("Overlaps(%s) = %v, want %v", tc.name, got, tc.wantOverlap)
			}
		})
	}
}

func TestSstFileHasLiveTable(t *testing.T) {
	f := &SstFile{TableIDs: []uint32{1, 2, 3}}

	live := map[uint32]struct{}{2: {}}
	if !f.HasLiveTable(live) {
		t.Error("expected file with table 2 live to report HasLiveTable true")
	}

	dead := map[uint32]struct{}{99: {}}
	if f.HasLiveTable(dead) {
		t.Error("expected file with no live tables to report HasLiveTable false")
	}

	if f.HasLiveTable(nil) {
		t.Error("expected HasLiveTable false against an empty live set")
	}
}

func TestCompareKeys(t *testing.T) {
	cases := []struct {
		a, b []byte
		want int
	}{
		{[]byte("a"), []byte("b"), -1},
		{[]byte("b"), []byte("a"), 1},
		{[]byte("abc"), []byte("abc"), 0},
		{[]byte("ab"), []byte("abc"), -1},
		{[]byte("abc"), []byte("ab"), 1},
	}
	for _, tc := range cases {
		if got := CompareKeys(tc.a, tc.b); got != tc.want {
			t.Errorf("CompareKeys(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestFooterChecksumDetectsMutatedKeyRange(t *testing.T) {
	f := NewSstFileFixture(1, 0, FixtureKey(0), FixtureKey(10), 100)
	if !f.VerifyFooterChecksum() {
		t.Fatal("expected a freshly stamped checksum to verify")
	}

	f.Largest = FixtureKey(999)
	if f.VerifyFooterChecksum() {
		t.Error("expected VerifyFooterChecksum to fail after the key range changed without restamping")
	}
}

func TestStampFooterChecksumHonorsConfiguredType(t *testing.T) {
	f := &SstFile{Smallest: FixtureKey(0), Largest: FixtureKey(10)}

	f.StampFooterChecksum(checksum.TypeCRC32C)
	if f.FooterChecksumType != checksum.TypeCRC32C {
		t.Fatalf("FooterChecksumType = %s, want CRC32C", f.FooterChecksumType)
	}
	crc32cSum := f.FooterChecksum
	if !f.VerifyFooterChecksum() {
		t.Error("expected a CRC32C-stamped checksum to verify")
	}

	f.StampFooterChecksum(checksum.TypeXXH3)
	if f.FooterChecksumType != checksum.TypeXXH3 {
		t.Fatalf("FooterChecksumType = %s, want XXH3", f.FooterChecksumType)
	}
	if !f.VerifyFooterChecksum() {
		t.Error("expected an XXH3-stamped checksum to verify")
	}
	if f.FooterChecksum == crc32cSum {
		t.Error("expected CRC32C and XXH3 to disagree on the same key range")
	}
}

func TestNewSstFileFixtureDeterministic(t *testing.T) {
	a := NewSstFileFixture(2, 5, FixtureKey(0), FixtureKey(10), 1024)
	b := NewSstFileFixture(2, 5, FixtureKey(0), FixtureKey(10), 2048)
	if a.ID != b.ID {
		t.Errorf("expected fixtures built from the same (level, ordinal) to share an id, got %d != %d", a.ID, b.ID)
	}

	c := NewSstFileFixture(2, 6, FixtureKey(0), FixtureKey(10), 1024)
	if a.ID == c.ID {
		t.Error("expected fixtures with different ordinals to get different ids")
	}
}
