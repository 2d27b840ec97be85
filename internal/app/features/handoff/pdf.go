// internal/app/features/handoff/pdf.go
package handoff

import (
	"bytes"
	"fmt"
	"strings"
	"time"
)

// packetInfo holds the fields rendered into the handoff document.
type packetInfo struct {
	ChamberName string
	Region      string
	MemberCount int64
	GeneratedAt time.Time
}

// renderPacket produces a fixed-layout single-page PDF. The output is
// byte-for-byte deterministic for the same input, so the integrity digest
// can be recomputed from the fields alone.
func renderPacket(info packetInfo) []byte {
	content := contentStream(info)

	var buf bytes.Buffer
	offsets := make([]int, 0, 5)

	buf.WriteString("%PDF-1.4\n")

	writeObj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	writeObj("<< /Type /Catalog /Pages 2 0 R >>")
	writeObj("<< /Type /Pages /Kids [3 0 R] /Count 1 >>")
	writeObj("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] " +
		"/Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>")
	writeObj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content))
	writeObj("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>")

	xrefStart := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(offsets)+1, xrefStart)

	return buf.Bytes()
}

func contentStream(info packetInfo) string {
	var b strings.Builder
	b.WriteString("BT\n/F1 18 Tf\n72 712 Td\n")
	fmt.Fprintf(&b, "(%s) Tj\n", escapePDFText("Membership Handoff Packet"))
	b.WriteString("/F1 12 Tf\n0 -36 Td\n")

	lines := []string{
		fmt.Sprintf("Chamber: %s", info.ChamberName),
		fmt.Sprintf("Region: %s", info.Region),
		fmt.Sprintf("Member businesses: %d", info.MemberCount),
		fmt.Sprintf("Generated: %s", info.GeneratedAt.UTC().Format(time.RFC3339)),
	}
	for _, line := range lines {
		fmt.Fprintf(&b, "(%s) Tj\n0 -18 Td\n", escapePDFText(line))
	}

	b.WriteString("ET")
	return b.String()
}

// escapePDFText escapes the delimiters that would break a PDF literal
// string. Chamber names come from imported data and may contain anything.
func escapePDFText(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `(`, `\(`, `)`, `\)`, "\n", `\n`, "\r", `\r`)
	return r.Replace(s)
}
