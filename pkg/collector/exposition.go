package collector

import (
	"math"
	"strconv"
	"strings"
)

// ContentType is the media type of Report output.
const ContentType = "text/plain; version=0.0.4; charset=utf-8"

// writeSnapshot renders one collector:
//
//	# HELP <name> <help>
//	# TYPE <name> <type>
//	<series>{<k>="<v>",...} <value>[ <timestamp>]
//
// Help text and label values are written verbatim.
func writeSnapshot(b *strings.Builder, s Snapshot) {
	b.WriteString("# HELP ")
	b.WriteString(s.Name)
	b.WriteByte(' ')
	b.WriteString(s.Help)
	b.WriteByte('\n')

	b.WriteString("# TYPE ")
	b.WriteString(s.Name)
	b.WriteByte(' ')
	b.WriteString(string(s.Type))
	b.WriteByte('\n')

	for _, v := range s.Values {
		if v.Name != "" {
			b.WriteString(v.Name)
		} else {
			b.WriteString(s.Name)
		}

		if len(v.Labels) > 0 {
			b.WriteByte('{')
			for i, l := range v.Labels {
				if i > 0 {
					b.WriteByte(',')
				}
				b.WriteString(l.Name)
				b.WriteString(`="`)
				b.WriteString(l.Value)
				b.WriteByte('"')
			}
			b.WriteByte('}')
		}

		b.WriteByte(' ')
		b.WriteString(formatFloat(v.Value))
		if v.HasTimestamp {
			b.WriteByte(' ')
			b.WriteString(strconv.FormatInt(v.Timestamp, 10))
		}
		b.WriteByte('\n')
	}
}

// formatFloat renders v in its shortest round-trip form, the way JavaScript
// prints numbers: plain decimals from 1e-6 up to 1e21, exponent notation
// without zero padding (1e-7, 1.5e+21) outside that range.
func formatFloat(v float64) string {
	switch {
	case v == 0:
		return "0"
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	case math.IsNaN(v):
		return "NaN"
	}
	if a := math.Abs(v); a >= 1e-6 && a < 1e21 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	mantissa, exp, _ := strings.Cut(strconv.FormatFloat(v, 'e', -1, 64), "e")
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	return mantissa + "e" + sign + digits
}
