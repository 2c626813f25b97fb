package closing

import (
	"fmt"

	"github.com/datsun80zx/fechamento/internal/parser"
)

// checkUpload reports data quality problems that do not stop the closing
func checkUpload(res *parser.Result) []string {
	warnings := make([]string, 0, len(res.Warnings)+2)
	warnings = append(warnings, res.Warnings...)

	if res.Dropped > 0 {
		warnings = append(warnings,
			fmt.Sprintf("Dropped %d rows without a customer name", res.Dropped))
	}

	var noPayDate []int
	for _, job := range res.Jobs {
		if job.PayDate == nil {
			noPayDate = append(noPayDate, job.Row)
		}
		if job.Labor.LessThan(job.Expenses) {
			warnings = append(warnings,
				fmt.Sprintf("Row %d (%s): expenses %s exceed labor %s",
					job.Row, job.CustomerName, job.Expenses.StringFixed(2), job.Labor.StringFixed(2)))
		}
		if job.JobDate == nil && job.JobDateRaw != "" {
			warnings = append(warnings,
				fmt.Sprintf("Row %d (%s): job date %q is not a date and is stored empty",
					job.Row, job.CustomerName, job.JobDateRaw))
		}
	}
	if len(noPayDate) > 0 {
		warnings = append(warnings,
			fmt.Sprintf("Found %d rows without a valid pay date (rows %v)", len(noPayDate), noPayDate))
	}

	return warnings
}
