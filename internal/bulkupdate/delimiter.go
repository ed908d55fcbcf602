package bulkupdate

import (
	"bufio"
	"bytes"
	"strings"
)

var delimiters = []rune{',', ';', '\t'}

// sampleLines is how many non-blank lines the delimiter sniffing looks at.
const sampleLines = 10

// detectDelimiter picks the delimiter that splits the first lines into the
// most consistent column counts. Spreadsheets exported with a comma decimal
// separator use ';'.
func detectDelimiter(data []byte) rune {
	var lines []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for len(lines) < sampleLines && scanner.Scan() {
		if line := scanner.Text(); strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}

	best, bestScore := ',', 0.0
	for _, d := range delimiters {
		if score := delimiterScore(lines, d); score > bestScore {
			best, bestScore = d, score
		}
	}
	return best
}

func delimiterScore(lines []string, delimiter rune) float64 {
	if len(lines) == 0 {
		return 0
	}
	sep := string(delimiter)
	first := len(strings.Split(lines[0], sep))
	if first < 2 {
		return 0
	}

	consistent := 0
	for _, line := range lines {
		// ±1 column tolerates trailing empty fields.
		n := len(strings.Split(line, sep))
		if n >= first-1 && n <= first+1 {
			consistent++
		}
	}

	bonus := float64(first) * 0.1
	if bonus > 0.3 {
		bonus = 0.3
	}
	return float64(consistent)/float64(len(lines)) + bonus
}
