package service

import "time"

// truncateRunes обрезает строку до max рун, не разрывая многобайтовые символы
func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
