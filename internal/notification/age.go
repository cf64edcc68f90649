package notification

import "time"

const dateLayout = "2006-01-02"

// AgeAtDeath returns the whole years between birth and death, one less when
// the birthday had not come yet in the year of death. ok is false when
// either date is missing or unparseable.
func AgeAtDeath(birth, death string) (age int, ok bool) {
	if birth == "" || death == "" {
		return 0, false
	}
	b, err := time.Parse(dateLayout, birth)
	if err != nil {
		return 0, false
	}
	d, err := time.Parse(dateLayout, death)
	if err != nil {
		return 0, false
	}
	age = d.Year() - b.Year()
	if d.Month() < b.Month() || (d.Month() == b.Month() && d.Day() < b.Day()) {
		age--
	}
	return age, true
}
