package report

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"cloud.google.com/go/civil"

	"github.com/nconklindev/qareport/internal/types"
)

// FileName is the exported workbook name, e.g. QA_Report_6399_06Nov25.xlsx.
func FileName(campaign string, d civil.Date) string {
	return fmt.Sprintf("QA_Report_%s_%s.xlsx", campaign, d.In(time.UTC).Format("02Jan06"))
}

// Title is the heading written into the workbook, e.g. QA_Report_6399_06-Nov-25.
func Title(campaign string, d civil.Date) string {
	return fmt.Sprintf("QA_Report_%s_%s", campaign, d.In(time.UTC).Format("02-Jan-06"))
}

// ValidateCampaignID trims id and accepts letters, digits, '_' and '-', with at
// least one letter or digit.
func ValidateCampaignID(id string) (string, error) {
	id = strings.TrimSpace(id)
	stripped := strings.NewReplacer("_", "", "-", "").Replace(id)
	if stripped == "" {
		return "", types.Invalid(types.ErrInvalidCampaign, "Campaign ID is required and must contain letters or digits")
	}
	for _, r := range stripped {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return "", types.Invalid(types.ErrInvalidCampaign, "Campaign ID %q may only contain letters, numbers, underscores and hyphens", id)
		}
	}
	return id, nil
}
