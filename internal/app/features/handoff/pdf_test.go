package handoff

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func samplePacket() packetInfo {
	return packetInfo{
		ChamberName: "Springfield Chamber",
		Region:      "Midwest",
		MemberCount: 42,
		GeneratedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRenderPacket_Structure(t *testing.T) {
	pdf := renderPacket(samplePacket())

	if !bytes.HasPrefix(pdf, []byte("%PDF-1.4\n")) {
		t.Error("missing PDF header")
	}
	if !bytes.HasSuffix(pdf, []byte("%%EOF\n")) {
		t.Error("missing EOF marker")
	}
	for _, want := range []string{"Springfield Chamber", "Midwest", "Member businesses: 42", "2026-03-01T12:00:00Z"} {
		if !bytes.Contains(pdf, []byte(want)) {
			t.Errorf("rendered packet missing %q", want)
		}
	}
}

func TestRenderPacket_Deterministic(t *testing.T) {
	a := renderPacket(samplePacket())
	b := renderPacket(samplePacket())
	if !bytes.Equal(a, b) {
		t.Error("same input must render identical bytes")
	}
}

func TestRenderPacket_DiffersByInput(t *testing.T) {
	a := renderPacket(samplePacket())
	modified := samplePacket()
	modified.MemberCount = 43
	b := renderPacket(modified)
	if bytes.Equal(a, b) {
		t.Error("different input must render different bytes")
	}
}

func TestEscapePDFText(t *testing.T) {
	got := escapePDFText(`Smith (and) Sons \ Co`)
	want := `Smith \(and\) Sons \\ Co`
	if got != want {
		t.Errorf("escape: got %q, want %q", got, want)
	}
	if strings.ContainsAny(escapePDFText("line\nbreak"), "\n") {
		t.Error("raw newline must not survive escaping")
	}
}
