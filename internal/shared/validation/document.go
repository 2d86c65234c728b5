package validation

import "strings"

// OnlyDigits strips punctuation from CPF/CNPJ/phone input.
func OnlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsCPF validates an individual taxpayer number (11 digits, two check digits).
func IsCPF(s string) bool {
	d := OnlyDigits(s)
	if len(d) != 11 || allSame(d) {
		return false
	}
	return checkDigit(d[:9], weights(10, 9)) == d[9] &&
		checkDigit(d[:10], weights(11, 10)) == d[10]
}

// IsCNPJ validates a company registration number (14 digits, two check digits).
func IsCNPJ(s string) bool {
	d := OnlyDigits(s)
	if len(d) != 14 || allSame(d) {
		return false
	}
	first := []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	second := append([]int{6}, first...)
	return checkDigit(d[:12], first) == d[12] && checkDigit(d[:13], second) == d[13]
}

// FormatDocument renders 000.000.000-00 or 00.000.000/0000-00; anything
// else is returned as given.
func FormatDocument(s string) string {
	d := OnlyDigits(s)
	switch len(d) {
	case 11:
		return d[0:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:]
	case 14:
		return d[0:2] + "." + d[2:5] + "." + d[5:8] + "/" + d[8:12] + "-" + d[12:]
	}
	return s
}

func weights(from, n int) []int {
	w := make([]int, n)
	for i := range w {
		w[i] = from - i
	}
	return w
}

func checkDigit(digits string, w []int) byte {
	sum := 0
	for i := range digits {
		sum += int(digits[i]-'0') * w[i]
	}
	rest := sum % 11
	if rest < 2 {
		return '0'
	}
	return byte('0' + 11 - rest)
}

func allSame(d string) bool {
	return strings.Count(d, d[:1]) == len(d)
}
