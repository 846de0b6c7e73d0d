package date

// Age returns the number of completed years between birth and on.
// A Feb 29 birthday is celebrated on Mar 1 in non-leap years.
func Age(birth, on Date) int {
	age := on.y - birth.y
	// New normalizes Feb 29 to Mar 1 in non-leap years.
	if New(on.y, birth.m, birth.d).After(on) {
		age--
	}
	return age
}

// YearsOnly returns the age computed from the years alone, as used by tax
// forms that say "if born in 1955 or earlier".
func YearsOnly(birth Date, year int) int { return year - birth.y }

// MonthsBetween counts the monthly steps needed to go from a to b. The result
// is negative when b is before a.
func MonthsBetween(a, b Date) int {
	if a == b {
		return 0
	}
	start, end, sign := a, b, 1
	if b.Before(a) {
		start, end, sign = b, a, -1
	}
	n := 0
	for start.Before(end) {
		n++
		start = start.AddMonths(1)
	}
	return sign * n
}

// MonthAfterYouTurn returns the first day of the month following the
// birthday at the given age.
func MonthAfterYouTurn(age int, birth Date) Date {
	return New(birth.y+age, birth.m+1, 1)
}

// MonthYouTurn returns the first day of the month of the birthday at the given age.
func MonthYouTurn(age int, birth Date) Date {
	return Date{birth.y + age, birth.m, 1}
}
