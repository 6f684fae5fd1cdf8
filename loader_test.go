package main

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateListingRejectsNULByte(t *testing.T) {
	data := []byte("1     0100 3E 42       LD A,42H\n2  \x00  0102\n")
	if err := ValidateListing(data); err == nil {
		t.Fatal("expected error for NUL byte in listing")
	}
}

func TestValidateListingRejectsOverlongLine(t *testing.T) {
	data := []byte(strings.Repeat("X", listingMaxLineBytes+1) + "\n")
	if err := ValidateListing(data); err == nil {
		t.Fatal("expected error for line exceeding 300 bytes")
	}
}

func TestValidateListingAcceptsWellFormedFile(t *testing.T) {
	data := []byte("1     0100 3E 42       LD A,42H\n2     0102 C9          RET\n")
	if err := ValidateListing(data); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseListingLine(t *testing.T) {
	entry, ok := parseListingLine("12+   0100 3E 42       LD A,42H")
	if !ok {
		t.Fatal("expected line to parse")
	}
	if entry.LineNumber != 12 {
		t.Fatalf("LineNumber = %d, want 12", entry.LineNumber)
	}
	if entry.Address != 0x0100 {
		t.Fatalf("Address = %04X, want 0100", entry.Address)
	}
	if len(entry.Bytes) != 2 || entry.Bytes[0] != 0x3E || entry.Bytes[1] != 0x42 {
		t.Fatalf("Bytes = %v, want [3E 42]", entry.Bytes)
	}
	if entry.Source != "LD A,42H" {
		t.Fatalf("Source = %q, want %q", entry.Source, "LD A,42H")
	}
}

func TestParseListingLineRejectsMalformed(t *testing.T) {
	if _, ok := parseListingLine("not a listing line"); ok {
		t.Fatal("expected malformed line to be rejected")
	}
	if _, ok := parseListingLine("12"); ok {
		t.Fatal("expected line with only a number to be rejected")
	}
}

func TestParseListingMultipleLines(t *testing.T) {
	src := "1     0100 3E 42       LD A,42H\n2     0102 C9          RET\n"
	entries, err := ParseListing(bufio.NewReader(strings.NewReader(src)))
	if err != nil {
		t.Fatalf("ParseListing error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[1].Address != 0x0102 || entries[1].Source != "RET" {
		t.Fatalf("entries[1] = %+v, want Address=0102 Source=RET", entries[1])
	}
}

func TestLoadVideoRegsReverseIndexed(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "regs.txt")
	writeTestFile(t, path, "01\n02\n03\n")

	v := NewVideoCoprocessor(nil)
	if err := loadVideoRegs(v, path); err != nil {
		t.Fatalf("loadVideoRegs error: %v", err)
	}
	if v.regs[0xFF] != 0x01 {
		t.Fatalf("regs[FF] = %02X, want 01", v.regs[0xFF])
	}
	if v.regs[0xFE] != 0x02 {
		t.Fatalf("regs[FE] = %02X, want 02", v.regs[0xFE])
	}
	if v.regs[0xFD] != 0x03 {
		t.Fatalf("regs[FD] = %02X, want 03", v.regs[0xFD])
	}
}

func TestLoadVideoRegsSkipsBlankAndCommentLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "regs.txt")
	writeTestFile(t, path, "- comment\n\n01\n")

	v := NewVideoCoprocessor(nil)
	if err := loadVideoRegs(v, path); err != nil {
		t.Fatalf("loadVideoRegs error: %v", err)
	}
	if v.regs[0xFF] != 0x01 {
		t.Fatalf("regs[FF] = %02X, want 01", v.regs[0xFF])
	}
}

func TestLoadPaletteParsesHexWords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pal.txt")
	writeTestFile(t, path, "7C00\n03E0\n001F\n")

	var pal [256]uint16
	if err := loadPalette(pal[:], path); err != nil {
		t.Fatalf("loadPalette error: %v", err)
	}
	if pal[0] != 0x7C00 || pal[1] != 0x03E0 || pal[2] != 0x001F {
		t.Fatalf("pal[0:3] = %04X %04X %04X, want 7C00 03E0 001F", pal[0], pal[1], pal[2])
	}
}

func TestLoadBinaryRoutesByOffset(t *testing.T) {
	dir := t.TempDir()
	romPath := filepath.Join(dir, "rom.bin")
	writeTestBytes(t, romPath, []byte{0x11, 0x22, 0x33})

	m := NewMemoryMap()
	if err := LoadBinary(m, romPath, 0); err != nil {
		t.Fatalf("LoadBinary error: %v", err)
	}
	if got := m.Read(0x0000, 0); got != 0x11 {
		t.Fatalf("ROM[0] after load = %02X, want 11", got)
	}
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	writeTestBytes(t, path, []byte(content))
}

func writeTestBytes(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("writing test fixture %s: %v", path, err)
	}
}
