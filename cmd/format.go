package cmd

import (
	"strconv"
	"time"

	"github.com/tedivm/fedimapper/model"
)

const nullDisplay = "<none>"

func formatString(s *string) string {
	if s == nil {
		return nullDisplay
	}
	return *s
}

func formatInt(i *int) string {
	if i == nil {
		return nullDisplay
	}
	return strconv.Itoa(*i)
}

func formatBool(b *bool) string {
	if b == nil {
		return nullDisplay
	}
	if *b {
		return "true"
	}
	return "false"
}

func formatTime(t *time.Time) string {
	if t == nil {
		return nullDisplay
	}
	return t.Format(time.RFC3339)
}

func formatStatus(s *model.Status) string {
	if s == nil {
		return nullDisplay
	}
	return string(*s)
}
