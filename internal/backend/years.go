package backend

// academicYearIDs maps academic-year labels to the backend's fixed row
// ids. The mapping is an external convention and must be honored exactly
// when constructing persistence requests.
var academicYearIDs = map[string]int{
	"2019-2020": 22,
	"2020-2021": 23,
	"2021-2022": 24,
	"2022-2023": 25,
	"2023-2024": 26,
	"2024-2025": 27,
	"2025-2026": 28,
}

// mostRecentYearID is the fallback for labels the table does not know.
const mostRecentYearID = 28

// AcademicYearID resolves a "YYYY-YYYY" label to its backend id. Unmapped
// labels fall back to the most recent known id rather than failing.
func AcademicYearID(label string) int {
	if id, ok := academicYearIDs[label]; ok {
		return id
	}
	return mostRecentYearID
}
