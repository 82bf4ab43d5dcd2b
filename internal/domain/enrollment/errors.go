package enrollment

import (
	"gitlab.com/teachcorps/recruitment-backend/pkg/apperr"
	"gitlab.com/teachcorps/recruitment-backend/pkg/errorx"
)

var (
	ErrEnrollmentNotFound = apperr.NewNotFound("enrollment not found").
				WithI18n(errorx.MsgEnrollmentNotFound)
	ErrAlreadySubmitted = apperr.NewConflict("form already submitted for this enrollment").
				WithI18n(errorx.MsgAlreadySubmitted)
	ErrEnrollmentClosed = apperr.NewInvalidTransition("enrollment is permanently closed").
				WithI18n(errorx.MsgEnrollmentClosed)
	ErrUnknownChannel = apperr.NewInvalid("unknown contact channel").
				WithField("channel")
	ErrTrainingAlreadyAccepted = apperr.NewInvalidTransition("a training invitation was already accepted").
					WithI18n(errorx.MsgTrainingAlreadyAccepted)
	ErrInvitationAlreadyRefused = apperr.NewInvalidTransition("the training invitation was already refused").
					WithI18n(errorx.MsgInvitationAlreadyRefused)
	ErrTrainingNotPreferred = apperr.NewInvalid("training is not among the candidate's preferences").
				WithField("training_id").
				WithI18n(errorx.MsgTrainingNotPreferred)
	ErrTrainingNotAccepted = apperr.NewInvalidTransition("no accepted invitation for this training").
				WithI18n(errorx.MsgTrainingNotAccepted)
	ErrAlreadyResignedPermanently = apperr.NewInvalidTransition("candidate already resigned permanently").
					WithI18n(errorx.MsgAlreadyResignedPermanently)
	ErrUnknownResignationKind = apperr.NewInvalid("unknown resignation kind").
					WithField("kind")
	ErrLecturerRightsAlreadyGranted = apperr.NewInvalidTransition("lecturer rights already granted").
					WithI18n(errorx.MsgLecturerRightsAlreadyGranted)
	ErrResignationActive = apperr.NewInvalidTransition("candidate has an active resignation").
				WithI18n(errorx.MsgResignationActive)
	ErrNoAttendedTraining = apperr.NewInvalidTransition("candidate has not attended any training").
				WithI18n(errorx.MsgNoAttendedTraining)
)
