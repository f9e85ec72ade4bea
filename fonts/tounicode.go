package fonts

import (
	"bufio"
	"bytes"
	"fmt"
	"sort"
	"strings"
	"unicode/utf16"

	"github.com/wudi/formfill/pdfobj"
)

// toUnicodeMap maps character codes, as byte strings, to the text they show.
type toUnicodeMap struct {
	entries map[string]string
	lengths []int
}

func parseToUnicodeCMap(data []byte) *toUnicodeMap {
	lineScanner := bufio.NewScanner(bytes.NewReader(data))
	lineScanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	result := &toUnicodeMap{entries: make(map[string]string)}
	lengthSet := make(map[int]struct{})
	state := ""
	for lineScanner.Scan() {
		line := strings.TrimSpace(lineScanner.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		switch {
		case strings.HasSuffix(line, "begincodespacerange"):
			state = "codespace"
			continue
		case strings.HasSuffix(line, "beginbfchar"):
			state = "bfchar"
			continue
		case strings.HasSuffix(line, "beginbfrange"):
			state = "bfrange"
			continue
		case strings.HasSuffix(line, "endcodespacerange"),
			strings.HasSuffix(line, "endbfchar"),
			strings.HasSuffix(line, "endbfrange"):
			state = ""
			continue
		}
		switch state {
		case "codespace":
			hexes := extractHexTokens(line)
			if len(hexes) >= 1 {
				if b := pdfobj.DecodeHex(hexes[0]); len(b) > 0 {
					lengthSet[len(b)] = struct{}{}
				}
			}
		case "bfchar":
			hexes := extractHexTokens(line)
			for i := 0; i+1 < len(hexes); i += 2 {
				src := pdfobj.DecodeHex(hexes[i])
				if len(src) == 0 {
					continue
				}
				result.entries[string(src)] = decodeUTF16BE(pdfobj.DecodeHex(hexes[i+1]))
				lengthSet[len(src)] = struct{}{}
			}
		case "bfrange":
			line = accumulateUntil(line, lineScanner)
			hexes := extractHexTokens(line)
			if len(hexes) < 3 {
				continue
			}
			srcStart := pdfobj.DecodeHex(hexes[0])
			length := len(srcStart)
			lengthSet[length] = struct{}{}
			startVal := bytesToInt(srcStart)
			endVal := bytesToInt(pdfobj.DecodeHex(hexes[1]))
			if strings.Contains(line, "[") {
				for i := 0; i <= endVal-startVal && 2+i < len(hexes); i++ {
					src := intToBytes(startVal+i, length)
					result.entries[string(src)] = decodeUTF16BE(pdfobj.DecodeHex(hexes[2+i]))
				}
				continue
			}
			dstStart := pdfobj.DecodeHex(hexes[2])
			dstVal := bytesToInt(dstStart)
			for i := 0; i <= endVal-startVal; i++ {
				src := intToBytes(startVal+i, length)
				result.entries[string(src)] = decodeUTF16BE(intToBytes(dstVal+i, len(dstStart)))
			}
		}
	}
	if len(lengthSet) == 0 {
		for k := range result.entries {
			lengthSet[len(k)] = struct{}{}
		}
	}
	for l := range lengthSet {
		result.lengths = append(result.lengths, l)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(result.lengths)))
	return result
}

// reverse returns the code for every single-character entry. The lowest
// code wins when several codes show the same character.
func (m *toUnicodeMap) reverse() map[rune][]byte {
	keys := make([]string, 0, len(m.entries))
	for k := range m.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(map[rune][]byte, len(keys))
	for _, k := range keys {
		runes := []rune(m.entries[k])
		if len(runes) != 1 {
			continue
		}
		if _, seen := out[runes[0]]; !seen {
			out[runes[0]] = []byte(k)
		}
	}
	return out
}

func accumulateUntil(line string, lineScanner *bufio.Scanner) string {
	if !strings.Contains(line, "[") || strings.Contains(line, "]") {
		return line
	}
	for lineScanner.Scan() {
		next := strings.TrimSpace(lineScanner.Text())
		line += " " + next
		if strings.Contains(next, "]") {
			break
		}
	}
	return line
}

func extractHexTokens(line string) []string {
	var tokens []string
	for {
		start := strings.Index(line, "<")
		if start == -1 {
			break
		}
		end := strings.Index(line[start+1:], ">")
		if end == -1 {
			break
		}
		segment := line[start+1 : start+1+end]
		tokens = append(tokens, strings.ReplaceAll(segment, " ", ""))
		line = line[start+1+end+1:]
	}
	return tokens
}

func bytesToInt(b []byte) int {
	val := 0
	for _, by := range b {
		val = (val << 8) | int(by)
	}
	return val
}

func intToBytes(value int, length int) []byte {
	buf := make([]byte, length)
	for i := length - 1; i >= 0; i-- {
		buf[i] = byte(value & 0xFF)
		value >>= 8
	}
	return buf
}

func decodeUTF16BE(data []byte) string {
	if len(data)%2 != 0 {
		data = data[:len(data)-1]
	}
	if len(data) == 0 {
		return ""
	}
	buf := make([]uint16, len(data)/2)
	for i := range buf {
		buf[i] = uint16(data[2*i])<<8 | uint16(data[2*i+1])
	}
	return string(utf16.Decode(buf))
}

// buildToUnicodeCMap writes a two-byte ToUnicode CMap for cids.
func buildToUnicodeCMap(name string, cids map[int]rune) []byte {
	if len(cids) == 0 {
		return nil
	}
	keys := make([]int, 0, len(cids))
	for cid := range cids {
		keys = append(keys, cid)
	}
	sort.Ints(keys)
	name = strings.ReplaceAll(name, " ", "") + "-UTF16"
	var buf bytes.Buffer
	buf.WriteString("/CIDInit /ProcSet findresource begin\n")
	buf.WriteString("12 dict begin\n")
	buf.WriteString("begincmap\n")
	buf.WriteString("/CIDSystemInfo << /Registry (Adobe) /Ordering (UCS) /Supplement 0 >> def\n")
	buf.WriteString(fmt.Sprintf("/CMapName /%s def\n", name))
	buf.WriteString("/CMapType 2 def\n")
	buf.WriteString("1 begincodespacerange\n<0000> <FFFF>\nendcodespacerange\n")
	for i := 0; i < len(keys); {
		chunk := len(keys) - i
		if chunk > 100 {
			chunk = 100
		}
		buf.WriteString(fmt.Sprintf("%d beginbfchar\n", chunk))
		for j := 0; j < chunk; j++ {
			cid := keys[i+j]
			buf.WriteString(fmt.Sprintf("<%04X> <%s>\n", cid, utf16Hex(cids[cid])))
		}
		buf.WriteString("endbfchar\n")
		i += chunk
	}
	buf.WriteString("endcmap\n")
	buf.WriteString("CMapName currentdict /CMap defineresource pop\n")
	buf.WriteString("end\nend\n")
	return buf.Bytes()
}

func utf16Hex(r rune) string {
	var b strings.Builder
	for _, u := range utf16.Encode([]rune{r}) {
		b.WriteString(fmt.Sprintf("%04X", u))
	}
	return b.String()
}
