package utils

import (
	"context"
	"fmt"
	"strings"
	"time"
)

var sleep = time.Sleep

// WaitFor sleeps for the given duration unless the context is cancelled first.
func WaitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		sleep(d)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

// TruncateForLog shortens the provided string to the specified limit, appending an ellipsis when truncated.
func TruncateForLog(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

// FormatUSD renders an integer amount as a dollar figure with thousands
// separators, e.g. 70000 -> "$70,000".
func FormatUSD(amount int) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	digits := fmt.Sprintf("%d", amount)
	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)

	return sign + "$" + strings.Join(groups, ",")
}

// SalaryLine formats a salary range for display and embedding texts.
// A zero max yields an open-ended range ("$70,000+").
func SalaryLine(minSalary, maxSalary int) string {
	if maxSalary > 0 {
		return fmt.Sprintf("%s - %s", FormatUSD(minSalary), FormatUSD(maxSalary))
	}
	return FormatUSD(minSalary) + "+"
}
