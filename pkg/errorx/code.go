package errorx

// Message IDs resolved against the embedded locale bundles. Every key
// here must exist in locales/en.toml; other languages fall back to
// English when a key is missing.
const (
	MsgInternal                     = "error_internal"
	MsgMalformedJSON                = "error_malformed_json"
	MsgValidationFailed             = "error_validation_failed"
	MsgConcurrencyConflict          = "error_concurrency_conflict"
	MsgEnrollmentNotFound           = "error_enrollment_not_found"
	MsgAlreadySubmitted             = "error_already_submitted"
	MsgEnrollmentClosed             = "error_enrollment_closed"
	MsgTrainingAlreadyAccepted      = "error_training_already_accepted"
	MsgInvitationAlreadyRefused     = "error_invitation_already_refused"
	MsgTrainingNotPreferred         = "error_training_not_preferred"
	MsgTrainingNotAccepted          = "error_training_not_accepted"
	MsgAlreadyResignedPermanently   = "error_already_resigned_permanently"
	MsgLecturerRightsAlreadyGranted = "error_lecturer_rights_already_granted"
	MsgResignationActive            = "error_resignation_active"
	MsgNoAttendedTraining           = "error_no_attended_training"
	MsgCampaignNotFound             = "error_campaign_not_found"
	MsgCampaignClosed               = "error_campaign_closed"
	MsgTrainingNotFound             = "error_training_not_found"
)
