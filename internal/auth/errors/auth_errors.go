package autherrors

import (
	"net/http"

	"github.com/SebastienDelgado/detachements-backend/internal/shared/apperror"
)

var (
	ErrInvalidCredentials = apperror.New(
		apperror.CodeUnauthorized,
		"Adresse e-mail ou mot de passe incorrect.",
		http.StatusUnauthorized,
	)

	ErrInvalidToken = apperror.New(
		apperror.CodeUnauthorized,
		"Jeton d'authentification invalide.",
		http.StatusUnauthorized,
	)

	ErrTokenExpired = apperror.New(
		apperror.CodeUnauthorized,
		"Session expirée, veuillez vous reconnecter.",
		http.StatusUnauthorized,
	)

	ErrAccountDisabled = apperror.New(
		apperror.CodeForbidden,
		"Ce compte est désactivé.",
		http.StatusForbidden,
	)

	ErrForbidden = apperror.New(
		apperror.CodeForbidden,
		"Accès réservé aux administrateurs.",
		http.StatusForbidden,
	)

	ErrAdminNotFound = apperror.New(
		apperror.CodeNotFound,
		"Administrateur introuvable.",
		http.StatusNotFound,
	)

	ErrInvalidAdminID = apperror.New(
		apperror.CodeInvalidInput,
		"Identifiant administrateur invalide.",
		http.StatusBadRequest,
	)

	ErrEmailAlreadyRegistered = apperror.New(
		apperror.CodeConflict,
		"Cette adresse e-mail est déjà enregistrée.",
		http.StatusConflict,
	)

	ErrTokenGenerationFailed = apperror.New(
		apperror.CodeInternalError,
		"Impossible de générer le jeton d'authentification.",
		http.StatusInternalServerError,
	)
)
