package dashboard

import (
	"encoding/csv"
	"io"
	"time"

	"github.com/isdelr/user-directory-be/internal/models"
)

// exportDateLayout is the short date format used for the dob column.
const exportDateLayout = "1/2/2006"

// ExportCSV writes the user list as CSV with RFC-4180 quoting. The date of
// birth is reformatted when it parses; otherwise the raw value is kept.
func ExportCSV(w io.Writer, users []models.User) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"Name", "Email", "Mobile", "Date of Birth", "Photo"}); err != nil {
		return err
	}

	for _, u := range users {
		dob := u.DOB
		if parsed, err := time.Parse("2006-01-02", u.DOB); err == nil {
			dob = parsed.Format(exportDateLayout)
		}
		if err := cw.Write([]string{u.Name, u.Email, u.Mobile, dob, u.Photo}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
