package qna

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// ParseCSV reads question/answer pairs from a two-column CSV sheet.
// A first row whose cells read "question" and "answer" (any case) is
// treated as a header and skipped. Rows with a blank question or answer
// are rejected so a half-filled sheet cannot silently thin the index.
func ParseCSV(r io.Reader) ([]Entry, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 2
	reader.TrimLeadingSpace = true

	var entries []Entry
	row := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", row+1, err)
		}
		row++

		question := strings.TrimSpace(record[0])
		answer := strings.TrimSpace(record[1])

		if row == 1 && strings.EqualFold(question, "question") && strings.EqualFold(answer, "answer") {
			continue
		}
		if question == "" || answer == "" {
			return nil, fmt.Errorf("csv row %d: question and answer must both be non-empty", row)
		}

		entries = append(entries, Entry{Question: question, Answer: answer})
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("csv contains no question/answer pairs")
	}
	return entries, nil
}
