// lifecycle/validate.go
package lifecycle

import "github.com/gig-portal/eqrf_backend/models"

// ValidateSubmission checks that the mandatory form fields and supporting
// documents are present before a QRF may move to SUBMITTED.
func ValidateSubmission(qrf models.QRF) error {
	fields := map[string]string{}

	if qrf.HasType(models.TypeMedical) {
		required := map[string]string{
			"accountName":      qrf.Data.AccountName,
			"quoteDate":        qrf.Data.QuoteDate,
			"existingInsurer":  qrf.Data.ExistingInsurer,
			"natureOfBusiness": qrf.Data.NatureOfBusiness,
			"countMembers":     qrf.Data.CountMembers,
		}
		for name, value := range required {
			if value == "" {
				fields[name] = "required"
			}
		}
	}
	if len(qrf.Data.Attachments) == 0 {
		fields["attachments"] = "at least one supporting document is required"
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ValidateApproval blocks an APPROVE unless a final proposal document has
// been uploaded.
func ValidateApproval(qrf models.QRF) error {
	if len(qrf.Data.ProposalAttachments) == 0 {
		return &ValidationError{Fields: map[string]string{
			"proposalAttachments": "a final proposal document is required before approval",
		}}
	}
	return nil
}

// ValidateRejectionReason checks the reason against the allowed vocabulary.
func ValidateRejectionReason(reason string) error {
	for _, r := range models.RejectionReasons {
		if r == reason {
			return nil
		}
	}
	return &ValidationError{Fields: map[string]string{"reason": "unknown rejection reason"}}
}
