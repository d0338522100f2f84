package services

import (
	"bytes"
	"fmt"
	"strings"
)

// renderSimplePDF writes a single-page PDF with a title line and body
// lines in a monospaced font. The generated file uses only base-14 fonts
// and uncompressed streams, so it needs no external PDF library.
func renderSimplePDF(title string, lines []string) []byte {
	var content strings.Builder
	content.WriteString("BT\n/F1 16 Tf\n50 780 Td\n")
	content.WriteString(fmt.Sprintf("(%s) Tj\n", escapePDFText(title)))
	content.WriteString("/F1 10 Tf\n0 -28 Td\n")
	for _, line := range lines {
		content.WriteString(fmt.Sprintf("(%s) Tj\n0 -14 Td\n", escapePDFText(line)))
	}
	content.WriteString("ET\n")
	stream := content.String()

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%sendstream", len(stream), stream),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Courier >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	offsets := make([]int, len(objects)+1)
	for i, obj := range objects {
		offsets[i+1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xrefStart := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= len(objects); i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		len(objects)+1, xrefStart)

	return buf.Bytes()
}

func escapePDFText(s string) string {
	r := strings.NewReplacer("\\", "\\\\", "(", "\\(", ")", "\\)")
	return r.Replace(s)
}
