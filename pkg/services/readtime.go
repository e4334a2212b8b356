package services

import (
	"fmt"
	"strings"
)

const wordsPerMinute = 200

// ReadingMinutes estimates minutes to read body at wordsPerMinute, never less than one.
func ReadingMinutes(body string) int {
	words := len(strings.Fields(body))
	minutes := (words + wordsPerMinute - 1) / wordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// ReadingTime formats ReadingMinutes as "N min read".
func ReadingTime(body string) string {
	return fmt.Sprintf("%d min read", ReadingMinutes(body))
}
