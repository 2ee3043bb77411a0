package models

// Cities technicians can be listed in
var Cities = []string{
	"Douala",
	"Yaoundé",
	"Bamenda",
	"Bafoussam",
	"Garoua",
	"Maroua",
	"Ngaoundéré",
	"Bertoua",
	"Buea",
	"Limbe",
	"Kribi",
	"Ebolowa",
}

// IsKnownCity reports whether name is one of Cities
func IsKnownCity(name string) bool {
	for _, c := range Cities {
		if c == name {
			return true
		}
	}
	return false
}
