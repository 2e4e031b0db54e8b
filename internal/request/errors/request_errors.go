package requesterrors

import (
	"net/http"

	"github.com/SebastienDelgado/detachements-backend/internal/shared/apperror"
)

// User-facing messages are French: applicants and admins read them
// directly in the front-end.
var (
	ErrApplicantNameRequired = apperror.NewField(
		apperror.CodeInvalidInput,
		"Le nom du demandeur est obligatoire.",
		http.StatusBadRequest,
		"applicant_name",
	)
	ErrEntityRequired = apperror.NewField(
		apperror.CodeInvalidInput,
		"L'entité est obligatoire.",
		http.StatusBadRequest,
		"entity",
	)
	ErrPlaceRequired = apperror.NewField(
		apperror.CodeInvalidInput,
		"Le lieu du détachement est obligatoire.",
		http.StatusBadRequest,
		"place",
	)
	ErrDateFromRequired = apperror.NewField(
		apperror.CodeInvalidInput,
		"La date de début est obligatoire.",
		http.StatusBadRequest,
		"date_from",
	)
	ErrInvalidDateFormat = apperror.New(
		apperror.CodeInvalidInput,
		"Format de date invalide, attendu AAAA-MM-JJ ou JJ/MM/AAAA.",
		http.StatusBadRequest,
	)
	ErrInvalidDateFrom = apperror.NewField(
		apperror.CodeInvalidInput,
		"La date de début est invalide, attendu AAAA-MM-JJ ou JJ/MM/AAAA.",
		http.StatusBadRequest,
		"date_from",
	)
	ErrInvalidDateTo = apperror.NewField(
		apperror.CodeInvalidInput,
		"La date de fin est invalide, attendu AAAA-MM-JJ ou JJ/MM/AAAA.",
		http.StatusBadRequest,
		"date_to",
	)
	ErrInvalidDateRange = apperror.NewField(
		apperror.CodeInvalidInput,
		"La date de fin est antérieure à la date de début.",
		http.StatusBadRequest,
		"date_to",
	)
	ErrImpossibleHalfDayOrder = apperror.NewField(
		apperror.CodeInvalidInput,
		"Sur une même journée, le début ne peut pas être l'après-midi et la fin le matin.",
		http.StatusBadRequest,
		"start_period",
	)
	ErrInvalidStartPeriod = apperror.NewField(
		apperror.CodeInvalidInput,
		"La demi-journée de début doit être AM, PM ou FULL.",
		http.StatusBadRequest,
		"start_period",
	)
	ErrInvalidEndPeriod = apperror.NewField(
		apperror.CodeInvalidInput,
		"La demi-journée de fin doit être AM, PM ou FULL.",
		http.StatusBadRequest,
		"end_period",
	)
	ErrInvalidType = apperror.NewField(
		apperror.CodeInvalidInput,
		"Le type de détachement est invalide.",
		http.StatusBadRequest,
		"type",
	)
	ErrInvalidApplicantEmail = apperror.NewField(
		apperror.CodeInvalidInput,
		"L'adresse e-mail du demandeur est invalide.",
		http.StatusBadRequest,
		"applicant_email",
	)
	ErrInvalidManagerEmail = apperror.NewField(
		apperror.CodeInvalidInput,
		"L'adresse e-mail du responsable est invalide.",
		http.StatusBadRequest,
		"manager_email",
	)
	ErrInvalidHREmail = apperror.NewField(
		apperror.CodeInvalidInput,
		"L'adresse e-mail du service RH est invalide.",
		http.StatusBadRequest,
		"hr_email",
	)
	ErrReasonRequired = apperror.NewField(
		apperror.CodeInvalidInput,
		"Le motif est obligatoire.",
		http.StatusBadRequest,
		"reason",
	)
	ErrInvalidRequestID = apperror.NewField(
		apperror.CodeInvalidInput,
		"Identifiant de demande invalide.",
		http.StatusBadRequest,
		"id",
	)
	ErrRequestNotFound = apperror.New(
		apperror.CodeNotFound,
		"Demande introuvable.",
		http.StatusNotFound,
	)
	ErrInvalidStatusTransition = apperror.New(
		apperror.CodeInvalidState,
		"La demande a déjà été traitée et ne peut plus changer d'état.",
		http.StatusConflict,
	)
)
