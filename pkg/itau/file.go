package itau

import (
	"fmt"
	"strings"
	"time"
)

// JoinLines assembles encoded record lines into the upload artifact. The
// bank's file convention is CRLF-joined fixed-width ASCII with no header.
func JoinLines(lines []string) string {
	return strings.Join(lines, "\r\n")
}

// FileName returns the date-stamped artifact name, e.g.
// pago_proveedores_20260830.txt.
func FileName(date time.Time) string {
	return fmt.Sprintf("pago_proveedores_%s.txt", date.Format("20060102"))
}
